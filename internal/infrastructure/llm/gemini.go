package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"TenderScanner/internal/config"
	"TenderScanner/internal/ports"
	"TenderScanner/internal/redact"
)

// GeminiClient implements ports.LLMClient with Google Search and URL context grounding.
type GeminiClient struct {
	client *genai.Client
	model  string
}

var _ ports.LLMClient = (*GeminiClient)(nil)

// NewGeminiClient builds a Gemini API client. Endpoint, when set, overrides the API base URL.
func NewGeminiClient(ctx context.Context, cfg config.LLMConfig) (*GeminiClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("gemini model is required")
	}

	cc := &genai.ClientConfig{
		APIKey:  strings.TrimSpace(cfg.APIKey),
		Backend: genai.BackendGeminiAPI,
	}
	if strings.TrimSpace(cfg.Endpoint) != "" {
		cc.HTTPOptions.BaseURL = strings.TrimSpace(cfg.Endpoint)
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %s", redact.Secrets(err.Error()))
	}
	return &GeminiClient{client: client, model: strings.TrimSpace(cfg.Model)}, nil
}

// Complete sends the prompt and returns the grounded text answer.
func (g *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(
		ctx,
		g.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{GoogleSearch: &genai.GoogleSearch{}},
				{URLContext: &genai.URLContext{}},
			},
			CandidateCount: 1,
		},
	)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %s", redact.Secrets(err.Error()))
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("empty gemini response")
	}
	return text, nil
}
