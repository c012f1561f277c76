package ai

import (
	"context"
	"time"

	"github.com/pkoukk/tiktoken-go"
	"github.com/rs/zerolog"

	"telegram-news-editor/internal/domain/ports/adapter"
	"telegram-news-editor/internal/infra/metrics"
)

var _ adapter.GenerationGateway = (*instrumentedAI)(nil)

// TokenCounter returns the number of prompt tokens in text.
type TokenCounter func(text string) int

// NewTiktokenCounter picks the encoding for model, falling back to cl100k_base.
// Returns nil when no encoding can be loaded; callers then skip token accounting.
func NewTiktokenCounter(model string) TokenCounter {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil
		}
	}
	return func(text string) int {
		return len(enc.Encode(text, nil, nil))
	}
}

type instrumentedAI struct {
	inner adapter.GenerationGateway
	info  adapter.ModelInfo
	count TokenCounter
	log   *zerolog.Logger
}

// NewInstrumentedAI records latency, outcome and prompt size of every generation call.
func NewInstrumentedAI(inner adapter.GenerationGateway, count TokenCounter, logger *zerolog.Logger) adapter.GenerationGateway {
	return &instrumentedAI{inner: inner, info: describe(inner), count: count, log: logger}
}

func (i *instrumentedAI) Describe() adapter.ModelInfo { return i.info }

func (i *instrumentedAI) Generate(ctx context.Context, prompt string) (string, error) {
	tokens := 0
	if i.count != nil {
		tokens = i.count(prompt)
	}
	start := time.Now()
	out, err := i.inner.Generate(ctx, prompt)
	elapsed := time.Since(start)

	metrics.ObserveGeneration(i.info.Provider, i.info.Name, tokens, elapsed.Milliseconds(), err == nil)
	ev := i.log.Debug()
	if err != nil {
		ev = i.log.Warn().Err(err)
	}
	ev.Str("provider", i.info.Provider).Str("model", i.info.Name).
		Int("prompt_tokens", tokens).Dur("latency", elapsed).Msg("generation call")
	return out, err
}
