package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal tracks the number of outbound calls to Battle.net (token and data endpoints).
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bnet_api_requests_total",
			Help: "Total number of Battle.net API requests made (by endpoint, method, and status).",
		},
		[]string{"endpoint", "method", "status"},
	)

	// RequestDuration measures the duration of outbound Battle.net calls.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bnet_api_request_duration_seconds",
			Help:    "Duration of Battle.net API requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms → ~16s
		},
		[]string{"endpoint", "method"},
	)

	// CacheLookups counts response cache hits and misses by endpoint.
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bnet_cache_lookups_total",
			Help: "Response cache lookups by endpoint and result (hit, miss, error).",
		},
		[]string{"endpoint", "result"},
	)
)

// IncRequest increments the request counter.
func IncRequest(endpoint, method, status string) {
	RequestsTotal.WithLabelValues(endpoint, method, status).Inc()
}

// ObserveDuration records elapsed time since start into a HistogramVec or SummaryVec.
func ObserveDuration(v any, start time.Time, labels ...string) {
	duration := time.Since(start).Seconds()
	switch metric := v.(type) {
	case *prometheus.HistogramVec:
		metric.WithLabelValues(labels...).Observe(duration)
	case *prometheus.SummaryVec:
		metric.WithLabelValues(labels...).Observe(duration)
	}
}

// IncCacheLookup increments the cache lookup counter.
func IncCacheLookup(endpoint, result string) {
	CacheLookups.WithLabelValues(endpoint, result).Inc()
}
