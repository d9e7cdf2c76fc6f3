package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnthropicClient_Complete(t *testing.T) {
	t.Run("successful completion", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/v1/messages", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			assert.Equal(t, "test-api-key", r.Header.Get("x-api-key"))
			assert.Equal(t, anthropicAPIVersion, r.Header.Get("anthropic-version"))

			var body anthropicRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "claude-test", body.Model)
			assert.Equal(t, "system prompt", body.System)
			assert.Equal(t, 8192, body.MaxTokens)
			assert.Equal(t, 40, body.TopK)
			require.Len(t, body.Messages, 1)
			assert.Equal(t, "user", body.Messages[0].Role)
			assert.Equal(t, "hello", body.Messages[0].Content)

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"Hello, "},{"type":"text","text":"world!"}],"stop_reason":"end_turn"}`))
		}))
		defer server.Close()

		client := NewAnthropicClient(AnthropicConfig{APIKey: "test-api-key", Model: "claude-test", BaseURL: server.URL})
		text, err := client.Complete(context.Background(), Request{System: "system prompt", Prompt: "hello", Params: DefaultParams()})
		require.NoError(t, err)
		assert.Equal(t, "Hello, world!", text)
	})

	t.Run("rate limit becomes a status error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`))
		}))
		defer server.Close()

		client := NewAnthropicClient(AnthropicConfig{APIKey: "k", Model: "claude-test", BaseURL: server.URL})
		_, err := client.Complete(context.Background(), Request{Prompt: "hi", Params: DefaultParams()})
		require.Error(t, err)

		var status *StatusError
		require.ErrorAs(t, err, &status)
		assert.Equal(t, 429, status.StatusCode)
		assert.Equal(t, "rate_limit_error", status.Status)
		assert.Equal(t, "slow down", status.Message)
		assert.Equal(t, OutcomeQuotaExceeded, Classify(err))
	})

	t.Run("unknown model", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"type":"error","error":{"type":"not_found_error","message":"model: claude-nope"}}`))
		}))
		defer server.Close()

		client := NewAnthropicClient(AnthropicConfig{APIKey: "k", Model: "claude-nope", BaseURL: server.URL})
		_, err := client.Complete(context.Background(), Request{Prompt: "hi", Params: DefaultParams()})
		assert.Equal(t, OutcomeModelUnavailable, Classify(err))
	})

	t.Run("empty content", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"content":[],"stop_reason":"max_tokens"}`))
		}))
		defer server.Close()

		client := NewAnthropicClient(AnthropicConfig{APIKey: "k", Model: "m", BaseURL: server.URL})
		_, err := client.Complete(context.Background(), Request{Prompt: "hi", Params: DefaultParams()})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_tokens")
	})
}
