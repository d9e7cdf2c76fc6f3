package llm

import "strings"

// StripFences removes a markdown code fence wrapping the whole text
// (```json ... ``` or ``` ... ```) and trims surrounding whitespace.
// Text without a fence is only trimmed.
func StripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	// Drop the opening fence line, including any language tag.
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 && isFenceTag(strings.TrimSpace(s[:nl])) {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}

	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func isFenceTag(tag string) bool {
	for _, r := range tag {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '_') {
			return false
		}
	}
	return true
}
