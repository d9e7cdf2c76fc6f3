package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeminiClient_Complete(t *testing.T) {
	t.Run("successful completion", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.True(t, strings.HasSuffix(r.URL.Path, "/models/gemini-test:generateContent"), r.URL.Path)

			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			config, ok := body["generationConfig"].(map[string]any)
			require.True(t, ok)
			assert.Equal(t, "application/json", config["responseMimeType"])
			assert.EqualValues(t, 8192, config["maxOutputTokens"])
			assert.NotNil(t, body["systemInstruction"])

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"title\":\"X\"}"}]},"finishReason":"STOP"}]}`))
		}))
		defer server.Close()

		client, err := NewGeminiClient(GeminiConfig{APIKey: "key", Model: "gemini-test", BaseURL: server.URL, HTTPClient: server.Client()})
		require.NoError(t, err)

		text, err := client.Complete(context.Background(), Request{System: "sys", Prompt: "p", Format: FormatJSON, Params: DefaultParams()})
		require.NoError(t, err)
		assert.Equal(t, `{"title":"X"}`, text)
	})

	t.Run("quota exhausted", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"code":429,"message":"You exceeded your current quota","status":"RESOURCE_EXHAUSTED"}}`))
		}))
		defer server.Close()

		client, err := NewGeminiClient(GeminiConfig{APIKey: "key", Model: "gemini-test", BaseURL: server.URL, HTTPClient: server.Client()})
		require.NoError(t, err)

		_, err = client.Complete(context.Background(), Request{Prompt: "p", Params: DefaultParams()})
		require.Error(t, err)
		assert.Equal(t, OutcomeQuotaExceeded, Classify(err))
	})

	t.Run("empty candidates", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"candidates":[]}`))
		}))
		defer server.Close()

		client, err := NewGeminiClient(GeminiConfig{APIKey: "key", Model: "gemini-test", BaseURL: server.URL, HTTPClient: server.Client()})
		require.NoError(t, err)

		_, err = client.Complete(context.Background(), Request{Prompt: "p", Params: DefaultParams()})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "empty response")
	})

	t.Run("rejects empty key", func(t *testing.T) {
		_, err := NewGeminiClient(GeminiConfig{Model: "gemini-test"})
		assert.Error(t, err)
	})
}

func TestNewFactory(t *testing.T) {
	for _, p := range []Provider{ProviderGemini, ProviderOpenAI, ProviderAnthropic} {
		t.Run(string(p), func(t *testing.T) {
			factory, err := NewFactory(p, ClientOptions{BaseURL: "http://127.0.0.1:1"})
			require.NoError(t, err)

			client, err := factory("key-123456789", "some-model")
			require.NoError(t, err)
			assert.NotNil(t, client)
		})
	}

	_, err := NewFactory("cohere", ClientOptions{})
	assert.Error(t, err)
}
