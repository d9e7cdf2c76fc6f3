package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// OpenAIClient completes prompts against any OpenAI-compatible chat
// completions endpoint (OpenAI itself, or Gemini's compatibility layer).
type OpenAIClient struct {
	client openai.Client
	model  string
}

// OpenAIConfig holds configuration for the OpenAI-compatible client.
type OpenAIConfig struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// NewOpenAIClient creates a client bound to cfg.Model.
func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("openai: API key must not be empty")
	}
	if cfg.Model == "" {
		return nil, errors.New("openai: model must not be empty")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		// Retrying is the orchestrator's job.
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	return &OpenAIClient{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
	}, nil
}

// Complete sends a system+user message pair. top-k has no equivalent in the
// chat completions API and is not sent.
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (string, error) {
	var messages []openai.ChatCompletionMessageParamUnion
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	params := openai.ChatCompletionNewParams{
		Model:       shared.ChatModel(c.model),
		Messages:    messages,
		Temperature: openai.Float(float64(req.Params.Temperature)),
		TopP:        openai.Float(float64(req.Params.TopP)),
	}
	if req.Params.MaxOutputTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.Params.MaxOutputTokens))
	}
	if req.Format == FormatJSON {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", &StatusError{
				Provider:   string(ProviderOpenAI),
				StatusCode: apiErr.StatusCode,
				Status:     apiErr.Code,
				Message:    apiErr.Message,
				Err:        err,
			}
		}
		return "", fmt.Errorf("openai: %w", err)
	}

	if len(completion.Choices) == 0 {
		return "", errors.New("openai: no choices in response")
	}
	text := completion.Choices[0].Message.Content
	if text == "" {
		return "", fmt.Errorf("openai: empty response (finish reason %s)", completion.Choices[0].FinishReason)
	}
	return text, nil
}
