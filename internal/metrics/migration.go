package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MigrationRows tracks migrated rows by outcome
	MigrationRows = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "migration",
			Name:      "rows_total",
			Help:      "Total number of rows processed by the migration runner",
		},
		[]string{"status"}, // migrated, skipped, failed
	)

	// MigrationBatchDuration tracks per-batch durations
	MigrationBatchDuration = promauto.With(Registry).NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "migration",
			Name:      "batch_duration_seconds",
			Help:      "Migration batch duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 15),
		},
	)
)
