// Package metrics exposes the gateway's Prometheus collectors. Label sets are
// kept small and bounded: endpoints are chi route patterns, never raw paths.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "prooflens_http_requests_total",
		Help: "HTTP requests handled, by method, endpoint pattern, and status.",
	}, []string{"method", "endpoint", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "prooflens_http_request_duration_seconds",
		Help:    "HTTP request latency, by method and endpoint pattern.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "endpoint"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "prooflens_errors_total",
		Help: "Error responses, by error code and HTTP status.",
	}, []string{"error_code", "http_status"})

	rateLimitDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "prooflens_ratelimit_decisions_total",
		Help: "Rate limiter decisions, by route and outcome.",
	}, []string{"route", "outcome"})

	upstreamResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "prooflens_upstream_results_total",
		Help: "Upstream analysis call outcomes.",
	}, []string{"outcome"})

	panicsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "prooflens_panics_total",
		Help: "Panics recovered by the HTTP middleware.",
	})
)

// RecordRequest records a completed HTTP request.
func RecordRequest(method, endpoint string, status int, duration time.Duration) {
	requestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	requestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordError records an error response by taxonomy code.
func RecordError(errorCode string, httpStatus int) {
	errorsTotal.WithLabelValues(errorCode, strconv.Itoa(httpStatus)).Inc()
}

// RecordRateLimitDecision records a limiter outcome. Store failures are
// reported as their own outcome regardless of the fail direction taken.
func RecordRateLimitDecision(route string, allowed bool, storeFailed bool) {
	outcome := "denied"
	switch {
	case storeFailed:
		outcome = "store_error"
	case allowed:
		outcome = "allowed"
	}
	rateLimitDecisions.WithLabelValues(route, outcome).Inc()
}

// RecordUpstreamResult records the outcome of one upstream analysis call:
// "ok", "upstream_4xx", "upstream_5xx", or "transport".
func RecordUpstreamResult(outcome string) {
	upstreamResults.WithLabelValues(outcome).Inc()
}

// RecordPanic records a recovered panic.
func RecordPanic() {
	panicsTotal.Inc()
}
