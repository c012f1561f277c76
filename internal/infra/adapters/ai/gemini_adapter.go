// File: internal/infra/adapters/ai/gemini_adapter.go
package ai

import (
	"context"
	"errors"

	"google.golang.org/genai"

	"telegram-news-editor/internal/domain/ports/adapter"
)

var _ adapter.GenerationGateway = (*GeminiAdapter)(nil)
var _ adapter.Describer = (*GeminiAdapter)(nil)

type GeminiAdapter struct {
	client      *genai.Client
	model       string
	maxOut      int
	temperature float64
}

// NewGeminiAdapter creates a Gemini adapter using the official SDK.
func NewGeminiAdapter(ctx context.Context, apiKey, baseURL, model string, maxOut int, temperature float64) (*GeminiAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: empty api key")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: baseURL,
		},
	})
	if err != nil {
		return nil, err
	}
	return &GeminiAdapter{client: c, model: model, maxOut: maxOut, temperature: temperature}, nil
}

func (g *GeminiAdapter) Describe() adapter.ModelInfo {
	return adapter.ModelInfo{Provider: "gemini", Name: g.model}
}

func (g *GeminiAdapter) Generate(ctx context.Context, prompt string) (string, error) {
	cfg := &genai.GenerateContentConfig{}
	if g.maxOut > 0 {
		cfg.MaxOutputTokens = int32(g.maxOut)
	}
	if g.temperature > 0 {
		cfg.Temperature = genai.Ptr(float32(g.temperature))
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", err
	}
	text := resp.Text()
	if text == "" {
		return "", errors.New("gemini: empty candidate")
	}
	return text, nil
}
