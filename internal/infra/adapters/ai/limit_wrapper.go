package ai

import (
	"context"
	"time"

	"telegram-news-editor/internal/domain/ports/adapter"
)

// Compile-time check
var _ adapter.GenerationGateway = (*limitedAI)(nil)

// limitedAI bounds concurrent calls and the duration of each call.
type limitedAI struct {
	inner   adapter.GenerationGateway
	sem     chan struct{}
	timeout time.Duration
}

func NewLimitedAI(inner adapter.GenerationGateway, maxConcurrent int, timeout time.Duration) adapter.GenerationGateway {
	if maxConcurrent <= 0 && timeout <= 0 {
		return inner
	}
	l := &limitedAI{inner: inner, timeout: timeout}
	if maxConcurrent > 0 {
		l.sem = make(chan struct{}, maxConcurrent)
	}
	return l
}

func (l *limitedAI) Describe() adapter.ModelInfo {
	return describe(l.inner)
}

func (l *limitedAI) Generate(ctx context.Context, prompt string) (string, error) {
	if l.sem != nil {
		select {
		case l.sem <- struct{}{}:
			defer func() { <-l.sem }()
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}
	return l.inner.Generate(ctx, prompt)
}

func describe(g adapter.GenerationGateway) adapter.ModelInfo {
	if d, ok := g.(adapter.Describer); ok {
		return d.Describe()
	}
	return adapter.ModelInfo{Provider: "unknown", Name: "unknown"}
}
