package ai

import (
	"context"
	"errors"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"telegram-news-editor/internal/domain/ports/adapter"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.GenerationGateway = (*OpenAIAdapter)(nil)
var _ adapter.Describer = (*OpenAIAdapter)(nil)

// OpenAIAdapter implements adapter.GenerationGateway using the Chat Completions API.
type OpenAIAdapter struct {
	client      openai.Client
	model       string
	maxTokens   int
	temperature float64
}

type OpenAIOptions struct {
	APIKey      string
	BaseURL     string // optional, for compatible gateways
	Model       string
	MaxTokens   int
	Temperature float64
}

func NewOpenAIAdapter(o OpenAIOptions) (*OpenAIAdapter, error) {
	if o.APIKey == "" {
		return nil, errors.New("openai api key empty")
	}
	if o.Model == "" {
		o.Model = "gpt-4"
	}
	opts := []option.RequestOption{option.WithAPIKey(o.APIKey)}
	if o.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(o.BaseURL))
	}
	return &OpenAIAdapter{
		client:      openai.NewClient(opts...),
		model:       o.Model,
		maxTokens:   o.MaxTokens,
		temperature: o.Temperature,
	}, nil
}

func (o *OpenAIAdapter) Describe() adapter.ModelInfo {
	return adapter.ModelInfo{Provider: "openai", Name: o.model}
}

// Generate sends the prompt as a single user message. One attempt, no retries.
func (o *OpenAIAdapter) Generate(ctx context.Context, prompt string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	}
	if o.maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(o.maxTokens))
	}
	if o.temperature > 0 {
		params.Temperature = openai.Float(o.temperature)
	}

	resp, err := o.client.Chat.Completions.New(ctx, params, option.WithMaxRetries(0))
	if err != nil {
		return "", err
	}
	for _, c := range resp.Choices {
		if strings.TrimSpace(c.Message.Content) != "" {
			return c.Message.Content, nil
		}
	}
	return "", errors.New("openai: no choice content")
}
