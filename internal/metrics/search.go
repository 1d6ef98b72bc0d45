package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Search Prometheus metrics.
var (
	SearchQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "paramsearch",
			Name:      "search_queries_total",
			Help:      "Total number of executed search queries",
		},
		[]string{"index", "status"},
	)

	SearchQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "paramsearch",
			Name:      "search_query_duration_seconds",
			Help:      "Search backend query duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"index"},
	)

	CompileDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "paramsearch",
			Name:      "compile_duration_seconds",
			Help:      "Parameter compilation duration in seconds",
			Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
		},
		[]string{"status"},
	)

	DroppedParamsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "paramsearch",
			Name:      "dropped_params_total",
			Help:      "Parameters ignored because no predicate matched",
		},
		[]string{"index"},
	)

	SchemaCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "paramsearch",
			Name:      "schema_cache_total",
			Help:      "Schema discovery cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	BatchSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "paramsearch",
			Name:      "batch_size",
			Help:      "Number of searches per batch request",
			Buckets:   []float64{1, 2, 5, 10, 25, 50, 100},
		},
	)
)

var registerSearch sync.Once

// RegisterSearchMetrics registers the search collectors with the default registry.
// Safe to call more than once.
func RegisterSearchMetrics() {
	registerSearch.Do(func() {
		prometheus.MustRegister(
			SearchQueriesTotal,
			SearchQueryDuration,
			CompileDuration,
			DroppedParamsTotal,
			SchemaCacheTotal,
			BatchSize,
		)
	})
}
