package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Latency of document store calls per collection and operation
	StoreOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "docstore_operation_duration_seconds",
			Help:    "Duration of document store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"collection", "operation"},
	)

	StoreOperationErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docstore_operation_errors_total",
			Help: "Number of failed document store operations",
		},
		[]string{"collection", "operation"},
	)

	// Alerts shown to users, labelled by alert title
	AlertsShown = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alerts_shown_total",
			Help: "Number of blocking alerts surfaced to users",
		},
		[]string{"title"},
	)

	NoteEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "note_events_total",
			Help: "Number of note and category events consumed, by event type",
		},
		[]string{"type"},
	)
)

func Init() {
	prometheus.MustRegister(StoreOperationDuration)
	prometheus.MustRegister(StoreOperationErrors)
	prometheus.MustRegister(AlertsShown)
	prometheus.MustRegister(NoteEvents)
}

func ObserveStoreOperation(collection, operation string, elapsed time.Duration, err error) {
	StoreOperationDuration.WithLabelValues(collection, operation).Observe(elapsed.Seconds())
	if err != nil {
		StoreOperationErrors.WithLabelValues(collection, operation).Inc()
	}
}
