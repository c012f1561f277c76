package adapter

import "context"

// GenerationGateway is the port for the text-generation service: one prompt in, text out.
// Implementations bound the call by ctx and never retry.
type GenerationGateway interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ModelInfo describes the model behind a gateway; used for logs and metrics labels.
type ModelInfo struct {
	Provider string
	Name     string
}

// Describer is optionally implemented by gateways that can name their provider/model.
type Describer interface {
	Describe() ModelInfo
}
