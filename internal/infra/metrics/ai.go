package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		aiPromptTokens,
		aiGenerationsTotal,
		aiCallsLatencyMs,
	)
}

var (
	aiPromptTokens = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_prompt_tokens",
			Help: "Sum of prompt (input) tokens per provider/model, counted locally.",
		},
		[]string{"provider", "model"},
	)

	aiGenerationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_generations_total",
			Help: "Generation calls per provider/model and outcome.",
		},
		[]string{"provider", "model", "success"},
	)

	aiCallsLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_calls_latency_ms",
			Help:    "AI call latency distribution in milliseconds.",
			Buckets: []float64{100, 250, 500, 1000, 2000, 4000, 8000, 16000, 30000, 60000},
		},
		[]string{"provider", "model", "success"},
	)
)

func ObserveGeneration(provider, model string, promptTokens int, latencyMs int64, success bool) {
	ok := strconv.FormatBool(success)
	if promptTokens > 0 {
		aiPromptTokens.WithLabelValues(norm(provider), norm(model)).Add(float64(promptTokens))
	}
	aiGenerationsTotal.WithLabelValues(norm(provider), norm(model), ok).Inc()
	aiCallsLatencyMs.WithLabelValues(norm(provider), norm(model), ok).Observe(float64(latencyMs))
}
