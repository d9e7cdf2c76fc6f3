package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding whitespace", "\n\n  ```json\n{\"a\":1}\n```  \n", `{"a":1}`},
		{"single line fence", "```json{\"a\":1}```", `{"a":1}`},
		{"text fence", "```text\nDear me,\nhello.\n```", "Dear me,\nhello."},
		{"trimmed prose", "  Dear me  ", "Dear me"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripFences(tt.in))
		})
	}

	t.Run("idempotent", func(t *testing.T) {
		once := StripFences("```json\n{\"a\":1}\n```")
		assert.Equal(t, once, StripFences(once))
	})
}
