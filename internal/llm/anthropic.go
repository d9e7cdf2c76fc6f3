package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	anthropicBaseURL    = "https://api.anthropic.com"
	anthropicAPIVersion = "2023-06-01"
)

// AnthropicClient is a client for the Claude messages API.
type AnthropicClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	model      string
}

// AnthropicConfig holds configuration for the Claude client.
type AnthropicConfig struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// NewAnthropicClient creates a new Claude API client.
func NewAnthropicClient(cfg AnthropicConfig) *AnthropicClient {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = anthropicBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 120 * time.Second}
	}

	return &AnthropicClient{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: httpClient,
		model:      cfg.Model,
	}
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	Temperature float32            `json:"temperature"`
	TopP        float32            `json:"top_p,omitempty"`
	TopK        int                `json:"top_k,omitempty"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Error      *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Complete sends a completion request to Claude. The messages API has no
// JSON mode, so FormatJSON relies on the prompt alone.
func (c *AnthropicClient) Complete(ctx context.Context, req Request) (string, error) {
	body, err := json.Marshal(anthropicRequest{
		Model:       c.model,
		MaxTokens:   req.Params.MaxOutputTokens,
		System:      req.System,
		Messages:    []anthropicMessage{{Role: "user", Content: req.Prompt}},
		Temperature: req.Params.Temperature,
		TopP:        req.Params.TopP,
		TopK:        req.Params.TopK,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicAPIVersion)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("anthropic: send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("anthropic: read response: %w", err)
	}

	var out anthropicResponse
	decodeErr := json.Unmarshal(respBody, &out)

	if resp.StatusCode != http.StatusOK {
		se := &StatusError{
			Provider:   string(ProviderAnthropic),
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(respBody)),
		}
		if decodeErr == nil && out.Error != nil {
			se.Status = out.Error.Type
			se.Message = out.Error.Message
		}
		return "", se
	}
	if decodeErr != nil {
		return "", fmt.Errorf("anthropic: unmarshal response: %w", decodeErr)
	}
	if out.Error != nil {
		return "", fmt.Errorf("anthropic: API error: %s - %s", out.Error.Type, out.Error.Message)
	}

	var sb strings.Builder
	for _, block := range out.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("anthropic: empty response (stop reason %s)", out.StopReason)
	}
	return sb.String(), nil
}
