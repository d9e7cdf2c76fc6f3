package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

// GeminiClient completes prompts with one Gemini model and one API key.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// GeminiConfig holds configuration for the Gemini client.
type GeminiConfig struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// NewGeminiClient creates a Gemini client bound to cfg.Model.
func NewGeminiClient(cfg GeminiConfig) (*GeminiClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("gemini: API key must not be empty")
	}
	if cfg.Model == "" {
		return nil, errors.New("gemini: model must not be empty")
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	// NewClient does no I/O for the Gemini API backend.
	client, err := genai.NewClient(context.Background(), cc)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	return &GeminiClient{client: client, model: cfg.Model}, nil
}

// Complete sends a single-turn request and returns the concatenated text of
// the first candidate.
func (c *GeminiClient) Complete(ctx context.Context, req Request) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(req.Params.Temperature),
		TopP:            genai.Ptr(req.Params.TopP),
		TopK:            genai.Ptr(float32(req.Params.TopK)),
		MaxOutputTokens: int32(req.Params.MaxOutputTokens),
	}
	if req.System != "" {
		config.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.Format == FormatJSON {
		config.ResponseMIMEType = "application/json"
	} else {
		config.ResponseMIMEType = "text/plain"
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(req.Prompt), config)
	if err != nil {
		return "", wrapGeminiError(err)
	}

	text := resp.Text()
	if text == "" {
		reason := "no candidates"
		if len(resp.Candidates) > 0 {
			reason = "finish reason " + string(resp.Candidates[0].FinishReason)
		}
		return "", fmt.Errorf("gemini: empty response (%s)", reason)
	}
	return text, nil
}

// ListModels returns the names of models that support content generation
// for this client's API key.
func (c *GeminiClient) ListModels(ctx context.Context) ([]string, error) {
	page, err := c.client.Models.List(ctx, &genai.ListModelsConfig{PageSize: 100})
	if err != nil {
		return nil, wrapGeminiError(err)
	}

	var names []string
	for {
		for _, m := range page.Items {
			if !supportsGenerate(m.SupportedActions) {
				continue
			}
			names = append(names, strings.TrimPrefix(m.Name, "models/"))
		}
		if page.NextPageToken == "" {
			break
		}
		page, err = page.Next(ctx)
		if errors.Is(err, genai.ErrPageDone) {
			break
		}
		if err != nil {
			return nil, wrapGeminiError(err)
		}
	}
	return names, nil
}

func supportsGenerate(actions []string) bool {
	for _, a := range actions {
		if a == "generateContent" {
			return true
		}
	}
	return false
}

func wrapGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &StatusError{
			Provider:   string(ProviderGemini),
			StatusCode: apiErr.Code,
			Status:     apiErr.Status,
			Message:    apiErr.Message,
			Err:        err,
		}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return &StatusError{
			Provider:   string(ProviderGemini),
			StatusCode: apiErrPtr.Code,
			Status:     apiErrPtr.Status,
			Message:    apiErrPtr.Message,
			Err:        err,
		}
	}
	return fmt.Errorf("gemini: %w", err)
}
