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

func TestOpenAIClient_Complete(t *testing.T) {
	t.Run("sends messages and json format", func(t *testing.T) {
		var hits int
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits++
			assert.Equal(t, "/chat/completions", r.URL.Path)
			assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "gpt-test", body["model"])
			assert.Equal(t, map[string]any{"type": "json_object"}, body["response_format"])
			messages, ok := body["messages"].([]any)
			require.True(t, ok)
			require.Len(t, messages, 2)
			assert.Equal(t, "system", messages[0].(map[string]any)["role"])

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"gpt-test",` +
				`"choices":[{"index":0,"message":{"role":"assistant","content":"{\"title\":\"X\"}"},"finish_reason":"stop"}]}`))
		}))
		defer server.Close()

		client, err := NewOpenAIClient(OpenAIConfig{APIKey: "sk-test", Model: "gpt-test", BaseURL: server.URL})
		require.NoError(t, err)

		text, err := client.Complete(context.Background(), Request{System: "sys", Prompt: "p", Format: FormatJSON, Params: DefaultParams()})
		require.NoError(t, err)
		assert.Equal(t, `{"title":"X"}`, text)
		assert.Equal(t, 1, hits)
	})

	t.Run("no retries on rate limit", func(t *testing.T) {
		var hits int
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits++
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"message":"Rate limit reached","type":"requests","code":"rate_limit_exceeded"}}`))
		}))
		defer server.Close()

		client, err := NewOpenAIClient(OpenAIConfig{APIKey: "sk-test", Model: "gpt-test", BaseURL: server.URL})
		require.NoError(t, err)

		_, err = client.Complete(context.Background(), Request{Prompt: "p", Params: DefaultParams()})
		require.Error(t, err)

		var status *StatusError
		require.ErrorAs(t, err, &status)
		assert.Equal(t, 429, status.StatusCode)
		assert.Equal(t, OutcomeQuotaExceeded, Classify(err))
		assert.Equal(t, 1, hits)
	})

	t.Run("rejects empty key", func(t *testing.T) {
		_, err := NewOpenAIClient(OpenAIConfig{Model: "gpt-test"})
		assert.Error(t, err)
	})
}
