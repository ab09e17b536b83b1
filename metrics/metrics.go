// Package metrics provides Prometheus observability metrics for the
// analytics engine. It covers loader health (records, errors, cache
// behavior) and engine query visibility.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry is the custom prometheus registry for our application
var Registry = prometheus.NewRegistry()

// factory allows us to register metrics to our custom Registry directly
var factory = promauto.With(Registry)

// =============================================================================
// LOADER METRICS - Ingestion Health
// =============================================================================

// LoaderRecordsTotal tracks records successfully loaded, by table.
var LoaderRecordsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "loader",
	Name:      "records_total",
	Help:      "Total records successfully loaded, by table",
}, []string{"table"})

// LoaderErrorsTotal tracks load failures by table and error category.
var LoaderErrorsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "loader",
	Name:      "errors_total",
	Help:      "Total load failures by table and error category",
}, []string{"table", "category"})

// LoaderDurationSeconds tracks time to parse and validate a source table.
var LoaderDurationSeconds = factory.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "loader",
	Name:      "duration_seconds",
	Help:      "Time taken to parse and validate a source table",
	Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
}, []string{"table"})

// CacheHitsTotal tracks loads served from the in-memory cache.
var CacheHitsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "loader",
	Name:      "cache_hits_total",
	Help:      "Loads served from the in-memory cache, by table",
}, []string{"table"})

// CacheMissesTotal tracks loads that had to read the source.
var CacheMissesTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "loader",
	Name:      "cache_misses_total",
	Help:      "Loads that had to read and validate the source, by table",
}, []string{"table"})

// CacheClearsTotal tracks explicit cache invalidations.
var CacheClearsTotal = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "loader",
	Name:      "cache_clears_total",
	Help:      "Explicit cache invalidations",
})

// =============================================================================
// ENGINE METRICS - Query Visibility
// =============================================================================

// EngineQueriesTotal tracks metric queries by operation.
var EngineQueriesTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "engine",
	Name:      "queries_total",
	Help:      "Total metric queries by operation",
}, []string{"operation"})

// EngineQueryErrorsTotal tracks failed queries by operation.
var EngineQueryErrorsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "engine",
	Name:      "query_errors_total",
	Help:      "Failed metric queries by operation",
}, []string{"operation"})

// EngineQueryDurationSeconds tracks time to answer a metric query.
var EngineQueryDurationSeconds = factory.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "engine",
	Name:      "query_duration_seconds",
	Help:      "Time taken to answer a metric query",
	Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
}, []string{"operation"})

// EngineBucketsReturned tracks bucket counts per aggregation query.
var EngineBucketsReturned = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "engine",
	Name:      "buckets_returned",
	Help:      "Number of period buckets returned per aggregation query",
	Buckets:   []float64{1, 7, 14, 31, 52, 90, 180, 366},
})
