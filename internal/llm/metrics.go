package llm

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Limiter outcomes.
const (
	limiterImmediate = "immediate"
	limiterWaited    = "waited"
	limiterAborted   = "aborted"
)

var (
	LimiterAcquiresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "askdata",
			Subsystem: "llm",
			Name:      "limiter_acquires_total",
			Help:      "Rate limiter acquisitions by outcome",
		},
		[]string{"outcome"},
	)

	LimiterWaitSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "askdata",
			Subsystem: "llm",
			Name:      "limiter_wait_seconds",
			Help:      "Time spent waiting for a rate limiter token",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
		},
	)
)
