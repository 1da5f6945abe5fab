package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "askdata",
			Subsystem: "pipeline",
			Name:      "requests_total",
			Help:      "Pipeline runs by classified intent",
		},
		[]string{"intent"},
	)

	GenerationErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "askdata",
			Subsystem: "pipeline",
			Name:      "generation_errors_total",
			Help:      "Generation failures by kind",
		},
		[]string{"kind"},
	)

	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "askdata",
			Subsystem: "pipeline",
			Name:      "generation_duration_seconds",
			Help:      "Generation service round trip in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"client"},
	)

	FallbackDecksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "askdata",
			Subsystem: "pipeline",
			Name:      "fallback_decks_total",
			Help:      "Decks that took the fallback path",
		},
	)
)
