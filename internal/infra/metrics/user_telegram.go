package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		telegramUpdatesTotal,
		telegramUnauthorizedTotal,
		telegramDroppedUpdatesTotal,
	)
}

var (
	telegramUpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_updates_received_total",
			Help: "Counts incoming messages, commands and button presses.",
		},
		[]string{"kind"},
	)

	telegramUnauthorizedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "telegram_unauthorized_total",
			Help: "Updates refused because they did not come from the operator.",
		},
	)

	telegramDroppedUpdatesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "telegram_dropped_updates_total",
			Help: "Updates dropped because the dispatch queue was full.",
		},
	)
)

func IncTelegramUpdate(kind string) {
	telegramUpdatesTotal.WithLabelValues(norm(kind)).Inc()
}

func IncUnauthorized() {
	telegramUnauthorizedTotal.Inc()
}

func IncDroppedUpdate() {
	telegramDroppedUpdatesTotal.Inc()
}
