package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "anisearch"

// Search, store and reclaim metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_requests_total",
			Help:      "Total number of similarity searches",
		},
		[]string{"domain", "model", "status"},
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Similarity search duration in seconds, encoding included",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"domain"},
	)

	StoreLoadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_loads_total",
			Help:      "Embedding matrix loads by result",
		},
		[]string{"result"}, // "hit" / "loaded" / "error"
	)

	StoreResidentBytes = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "store_resident_bytes",
			Help:      "Bytes of embedding matrices currently held in memory",
		},
	)

	ReclaimTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reclaim_total",
			Help:      "Idle memory reclaim cycles that released resources",
		},
	)
)

var registerOnce sync.Once

// Register registers the service metrics with the default registry. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			EmbeddingRequestsTotal,
			EmbeddingRequestDuration,
			EmbeddingTokensTotal,
			EmbeddingErrorsTotal,
			EmbeddingCacheTotal,
			BreakerState,
			SearchRequestsTotal,
			SearchDuration,
			StoreLoadsTotal,
			StoreResidentBytes,
			ReclaimTotal,
		)
	})
}
