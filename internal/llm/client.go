// Package llm hides a pool of generative-model credentials and models behind
// a single call. Each attempt uses a fresh, stateless client for one
// credential/model pair; the orchestrator walks the pairs until one produces
// output that the caller's decoder accepts.
package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Format is the output shape requested from the model.
type Format int

const (
	FormatJSON Format = iota
	FormatText
)

func (f Format) String() string {
	if f == FormatText {
		return "text"
	}
	return "json"
}

// GenerationParams are the sampling parameters sent with every attempt.
type GenerationParams struct {
	Temperature     float32
	TopP            float32
	TopK            int
	MaxOutputTokens int
}

// DefaultParams returns the fixed parameters used for narrative generation.
func DefaultParams() GenerationParams {
	return GenerationParams{
		Temperature:     0.7,
		TopP:            0.95,
		TopK:            40,
		MaxOutputTokens: 8192,
	}
}

// Request is one prompt submission with no prior conversation history.
type Request struct {
	System string
	Prompt string
	Format Format
	Params GenerationParams
}

// Completer submits a single request and returns the model's raw text.
// Implementations must not retry; failures are returned as they are.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Factory builds a client bound to one credential and one model.
type Factory func(credential, model string) (Completer, error)

// ClientOptions configure the built-in provider factories.
type ClientOptions struct {
	// BaseURL overrides the provider endpoint. Empty uses the provider default.
	BaseURL string
	// HTTPClient is shared by every client the factory builds.
	HTTPClient *http.Client
}

// NewFactory returns the client factory for a provider.
func NewFactory(p Provider, opts ClientOptions) (Factory, error) {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 120 * time.Second}
	}

	switch p {
	case ProviderGemini:
		return func(credential, model string) (Completer, error) {
			return NewGeminiClient(GeminiConfig{
				APIKey:     credential,
				Model:      model,
				BaseURL:    opts.BaseURL,
				HTTPClient: opts.HTTPClient,
			})
		}, nil
	case ProviderOpenAI:
		return func(credential, model string) (Completer, error) {
			return NewOpenAIClient(OpenAIConfig{
				APIKey:     credential,
				Model:      model,
				BaseURL:    opts.BaseURL,
				HTTPClient: opts.HTTPClient,
			})
		}, nil
	case ProviderAnthropic:
		return func(credential, model string) (Completer, error) {
			return NewAnthropicClient(AnthropicConfig{
				APIKey:     credential,
				Model:      model,
				BaseURL:    opts.BaseURL,
				HTTPClient: opts.HTTPClient,
			}), nil
		}, nil
	default:
		return nil, fmt.Errorf("unknown provider %q", p)
	}
}
