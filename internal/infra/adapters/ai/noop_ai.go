package ai

import (
	"context"
	"strings"
	"time"

	"telegram-news-editor/internal/domain/ports/adapter"
)

var _ adapter.GenerationGateway = (*NoopAIAdapter)(nil)
var _ adapter.Describer = (*NoopAIAdapter)(nil)

// NoopAIAdapter implements adapter.GenerationGateway for local/dev testing.
// It answers with a canned post built around the quoted seed of the prompt.
type NoopAIAdapter struct {
	delay time.Duration
}

func NewNoopAIAdapter() *NoopAIAdapter {
	return &NoopAIAdapter{delay: 100 * time.Millisecond}
}

func (a *NoopAIAdapter) Describe() adapter.ModelInfo {
	return adapter.ModelInfo{Provider: "noop", Name: "noop-ai-model"}
}

func (a *NoopAIAdapter) Generate(ctx context.Context, prompt string) (string, error) {
	// Simulate processing and respect ctx
	select {
	case <-time.After(a.delay):
	case <-ctx.Done():
		return "", ctx.Err()
	}
	headline := "Тестовая новость"
	for _, line := range strings.Split(prompt, "\n") {
		line = strings.TrimSpace(line)
		if len(line) > 2 && strings.HasPrefix(line, `"`) {
			headline = strings.Trim(line, `"`)
			break
		}
	}
	return "📰 " + headline + "\n🤖 Мой комментарий:\nЭто черновик без генерации.", nil
}
