package story

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/abdulachik/whatif/internal/llm"
)

// DecodeChapter parses model output into a Chapter. Code fences are
// stripped first; if the remainder is not a JSON object, every balanced
// object in the text is tried in order and the first valid chapter wins.
// Any failure is returned as an *llm.MalformedResponseError carrying raw.
func DecodeChapter(raw string) (Chapter, error) {
	text := llm.StripFences(raw)

	var ch Chapter
	if err := json.Unmarshal([]byte(text), &ch); err != nil {
		recovered, recoverErr := recoverChapter(text)
		if recoverErr != nil {
			return Chapter{}, &llm.MalformedResponseError{Raw: raw, Reason: "no usable JSON object", Err: recoverErr}
		}
		return recovered, nil
	}

	if err := validateChapter(ch); err != nil {
		return Chapter{}, &llm.MalformedResponseError{Raw: raw, Reason: err.Error()}
	}
	return ch, nil
}

// recoverChapter scans the objects embedded in prose, left to right. The
// error of the first candidate is reported when none is usable.
func recoverChapter(text string) (Chapter, error) {
	var firstErr error
	for offset := 0; ; {
		i := strings.IndexByte(text[offset:], '{')
		if i == -1 {
			break
		}
		start := offset + i
		offset = start + 1

		obj, err := extractObject(text[start:])
		if err == nil {
			var ch Chapter
			if err = json.Unmarshal([]byte(obj), &ch); err == nil {
				if err = validateChapter(ch); err == nil {
					return ch, nil
				}
			}
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	if firstErr == nil {
		firstErr = errors.New("no JSON object found in response")
	}
	return Chapter{}, firstErr
}

// DecodeLetter strips fences and surrounding whitespace from letter output.
func DecodeLetter(raw string) (string, error) {
	letter := llm.StripFences(raw)
	if letter == "" {
		return "", &llm.MalformedResponseError{Raw: raw, Reason: "empty letter"}
	}
	return letter, nil
}

func validateChapter(ch Chapter) error {
	if strings.TrimSpace(ch.Title) == "" {
		return errors.New("missing title")
	}
	if strings.TrimSpace(ch.StoryText) == "" {
		return errors.New("missing story_text")
	}
	if ch.MiniChoice != nil {
		if strings.TrimSpace(ch.MiniChoice.Question) == "" {
			return errors.New("mini_choice without question")
		}
		if len(ch.MiniChoice.Options) == 0 {
			return errors.New("mini_choice without options")
		}
	}
	return nil
}

// extractObject returns the first balanced {...} object in s. Braces inside
// JSON strings are ignored.
func extractObject(s string) (string, error) {
	start := strings.IndexByte(s, '{')
	if start == -1 {
		return "", errors.New("no JSON object found in response")
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], nil
			}
		}
	}
	return "", fmt.Errorf("unterminated JSON object starting at offset %d", start)
}
