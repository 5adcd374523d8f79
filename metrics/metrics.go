package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks lookups served from the audit store
	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "profile_cache_hits_total",
		Help: "Total number of lookups served from the audit store",
	})

	// CacheMisses tracks lookups that fell through to the upstream fetch
	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "profile_cache_misses_total",
		Help: "Total number of lookups that required an upstream fetch",
	})

	// UpstreamErrors tracks failed upstream fetches
	UpstreamErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "profile_cache_upstream_errors_total",
		Help: "Total number of failed upstream profile fetches",
	})

	// RecordsWritten tracks audit records persisted by cache population
	RecordsWritten = promauto.NewCounter(prometheus.CounterOpts{
		Name: "profile_cache_records_written_total",
		Help: "Total number of audit records written to the store",
	})

	// LookupDuration tracks end-to-end lookup latency
	LookupDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "profile_cache_lookup_duration_seconds",
		Help:    "End-to-end duration of profile lookups",
		Buckets: prometheus.DefBuckets,
	})

	// CircuitBreakerState tracks the upstream circuit breaker state
	// 0=closed, 1=open, 2=half-open
	CircuitBreakerState = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "profile_cache_circuit_breaker_state",
		Help: "Current state of the upstream circuit breaker (0=closed, 1=open, 2=half-open)",
	})

	// CircuitBreakerTrips tracks transitions of the breaker to OPEN
	CircuitBreakerTrips = promauto.NewCounter(prometheus.CounterOpts{
		Name: "profile_cache_circuit_breaker_trips_total",
		Help: "Total number of times the upstream circuit breaker opened",
	})
)

// RecordCacheHit increments the cache hit counter
func RecordCacheHit() {
	CacheHits.Inc()
}

// RecordCacheMiss increments the cache miss counter
func RecordCacheMiss() {
	CacheMisses.Inc()
}

// RecordUpstreamError increments the upstream error counter
func RecordUpstreamError() {
	UpstreamErrors.Inc()
}

// RecordWrite increments the persisted record counter
func RecordWrite() {
	RecordsWritten.Inc()
}

// ObserveLookup records the duration of one lookup
func ObserveLookup(d time.Duration) {
	LookupDuration.Observe(d.Seconds())
}

// SetCircuitBreakerState updates the circuit breaker state gauge
// state should be one of: "CLOSED" (0), "OPEN" (1), "HALF-OPEN" (2)
func SetCircuitBreakerState(state string) {
	var value float64
	switch state {
	case "CLOSED":
		value = 0
	case "OPEN":
		value = 1
	case "HALF-OPEN":
		value = 2
	}
	CircuitBreakerState.Set(value)
}

// RecordCircuitBreakerTrip increments the breaker trip counter
func RecordCircuitBreakerTrip() {
	CircuitBreakerTrips.Inc()
}
