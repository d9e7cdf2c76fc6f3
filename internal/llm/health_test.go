package llm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	t.Run("unknown model", func(t *testing.T) {
		h := NewHealth()
		assert.Nil(t, h.Status("gemini/x"))
		assert.True(t, h.AnyHealthy())
	})

	t.Run("records success and failure", func(t *testing.T) {
		h := NewHealth()
		key := HealthKey(ProviderGemini, "gemini-2.5-flash")
		assert.Equal(t, "gemini/gemini-2.5-flash", key)

		h.Record(key, OutcomeQuotaExceeded, errors.New("429 quota"))
		status := h.Status(key)
		require.NotNil(t, status)
		assert.False(t, status.Healthy)
		assert.Equal(t, "429 quota", status.Message)
		assert.True(t, status.LastSuccess.IsZero())
		assert.False(t, h.AnyHealthy())

		h.Record(key, OutcomeSuccess, nil)
		status = h.Status(key)
		assert.True(t, status.Healthy)
		assert.False(t, status.LastSuccess.IsZero())
		assert.True(t, h.AnyHealthy())
	})

	t.Run("malformed output keeps model healthy", func(t *testing.T) {
		h := NewHealth()
		h.Record("openai/gpt-4o-mini", OutcomeMalformed, errors.New("bad json"))
		assert.True(t, h.Status("openai/gpt-4o-mini").Healthy)
	})

	t.Run("returns copies", func(t *testing.T) {
		h := NewHealth()
		h.Record("a/b", OutcomeSuccess, nil)

		all := h.All()
		all["a/b"].Healthy = false
		assert.True(t, h.Status("a/b").Healthy)
	})
}
