package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		draftsTotal,
		revisionsTotal,
		publishesTotal,
		undoTotal,
		auditFailuresTotal,
	)
}

var (
	draftsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "editor_drafts_total",
			Help: "Drafts generated from a new seed, by mode kind.",
		},
		[]string{"kind"}, // news_commentary | free_copy
	)

	revisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "editor_revisions_total",
			Help: "Successful draft revisions, by revision kind.",
		},
		[]string{"kind"}, // style | custom
	)

	publishesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "editor_publishes_total",
			Help: "Publish attempts to the broadcast channel, by status.",
		},
		[]string{"status"},
	)

	undoTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "editor_undo_total",
			Help: "Retraction attempts of the last publish, by status.",
		},
		[]string{"status"},
	)

	auditFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "editor_audit_failures_total",
			Help: "Publishes whose audit row could not be appended.",
		},
	)
)

func IncDraft(kind string)     { draftsTotal.WithLabelValues(norm(kind)).Inc() }
func IncRevision(kind string)  { revisionsTotal.WithLabelValues(norm(kind)).Inc() }
func IncPublish(status string) { publishesTotal.WithLabelValues(norm(status)).Inc() }
func IncUndo(status string)    { undoTotal.WithLabelValues(norm(status)).Inc() }
func IncAuditFailure()         { auditFailuresTotal.Inc() }
