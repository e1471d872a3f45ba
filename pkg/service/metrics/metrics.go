// Package metrics exposes Prometheus counters for the intake pipeline
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Submission results
const (
	ResultSaved      = "saved"
	ResultDryRun     = "dry_run"
	ResultIncomplete = "incomplete"
	ResultFailed     = "failed"
)

var (
	submissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_submissions_total",
			Help: "Total number of incident submissions by result",
		},
		[]string{"source", "result"},
	)

	repairsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "intake_repair_advisories_total",
			Help: "Total number of corrections applied by the column repair pass",
		},
	)

	codeFallbacksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "intake_code_fallbacks_total",
			Help: "Total number of fallback codes issued because the code lookup failed",
		},
	)

	prefillTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_llm_prefill_total",
			Help: "Total number of language model prefill calls by result",
		},
		[]string{"result"},
	)

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "intake_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// RecordSubmission counts one submission. source is "text" or "row".
func RecordSubmission(source, result string) {
	submissionsTotal.WithLabelValues(source, result).Inc()
}

// RecordRepairs adds the number of advisories raised for one record
func RecordRepairs(n int) {
	if n > 0 {
		repairsTotal.Add(float64(n))
	}
}

// RecordCodeFallback counts one fallback code
func RecordCodeFallback() {
	codeFallbacksTotal.Inc()
}

// RecordPrefill counts one prefill call, result is "ok" or "error"
func RecordPrefill(result string) {
	prefillTotal.WithLabelValues(result).Inc()
}

// ObserveHTTP records one served request
func ObserveHTTP(method, path string, status int, elapsed time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

// Handler serves the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
