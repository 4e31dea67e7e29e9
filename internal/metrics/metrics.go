package metrics

import (
	"errors"
	"time"

	"shorturl/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
// Using promauto automatically registers metrics with the default registry

var (
	// ==================== HTTP METRICS ====================

	// HTTPRequestDuration tracks the duration of HTTP requests
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint", "status"},
	)

	// HTTPRequestsTotal counts total HTTP requests
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// HTTPRequestsInFlight tracks currently processing requests
	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	// ==================== CACHE METRICS ====================

	// CacheHitsTotal counts cache hits
	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
	)

	// CacheMissesTotal counts cache misses
	CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
	)

	// CacheOperationDuration tracks cache operation latency
	CacheOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cache_operation_duration_seconds",
			Help:    "Duration of cache operations in seconds",
			Buckets: []float64{.0001, .0005, .001, .0025, .005, .01, .025, .05},
		},
		[]string{"operation"}, // get, set
	)

	// ==================== BUSINESS METRICS ====================

	// IDsAllocatedTotal counts successful Shorten calls
	// outcome is "created" for a new row, "existing" when the URL was already mapped
	IDsAllocatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shorturl_ids_allocated_total",
			Help: "Total number of short ids returned by shorten",
		},
		[]string{"outcome"},
	)

	// IDCollisionsTotal counts candidate ids rejected because another URL owns them
	IDCollisionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shorturl_id_collisions_total",
			Help: "Total number of short id collisions",
		},
	)

	// IDSpaceExhaustedTotal counts Shorten calls that ran out of attempts
	IDSpaceExhaustedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shorturl_id_space_exhausted_total",
			Help: "Total number of shorten calls that exhausted their attempts",
		},
	)

	// ResolvesTotal counts Resolve calls by outcome: hit, miss, not_found
	ResolvesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shorturl_resolves_total",
			Help: "Total number of resolve calls",
		},
		[]string{"outcome"},
	)

	// ==================== DATABASE METRICS ====================

	// DatabaseQueryDuration tracks database query latency
	DatabaseQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "database_query_duration_seconds",
			Help:    "Duration of database queries in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation"}, // insert_or_get, lookup_by_id
	)

	// DatabaseErrorsTotal counts database errors
	DatabaseErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "database_errors_total",
			Help: "Total number of database errors",
		},
		[]string{"operation"},
	)
)

// RecordCacheHit increments cache hit counter
func RecordCacheHit() {
	CacheHitsTotal.Inc()
}

// RecordCacheMiss increments cache miss counter
func RecordCacheMiss() {
	CacheMissesTotal.Inc()
}

// RecordIDAllocated increments the allocation counter
func RecordIDAllocated(created bool) {
	if created {
		IDsAllocatedTotal.WithLabelValues("created").Inc()
		return
	}
	IDsAllocatedTotal.WithLabelValues("existing").Inc()
}

// RecordCollision increments the collision counter
func RecordCollision() {
	IDCollisionsTotal.Inc()
}

// RecordIDSpaceExhausted increments the exhaustion counter
func RecordIDSpaceExhausted() {
	IDSpaceExhaustedTotal.Inc()
}

// RecordResolve increments the resolve counter for outcome
func RecordResolve(outcome string) {
	ResolvesTotal.WithLabelValues(outcome).Inc()
}

// ObserveQuery records the latency of a store operation started at start
// Meant to be deferred with a pointer to the named error result.
// Only storage failures count as errors; not-found and conflicts are outcomes.
func ObserveQuery(operation string, start time.Time, errp *error) {
	DatabaseQueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if errp != nil && *errp != nil && errors.Is(*errp, domain.ErrStorage) {
		DatabaseErrorsTotal.WithLabelValues(operation).Inc()
	}
}
