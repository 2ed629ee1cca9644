// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bits_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bits_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Business metrics
	QuotesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bits_quotes_total",
			Help: "Total number of route quotes computed",
		},
		[]string{"weather", "peak"},
	)

	IncidentChangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bits_incident_changes_total",
			Help: "Total number of incident ledger changes",
		},
		[]string{"change", "status"},
	)

	AuditWriteFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bits_audit_write_failures_total",
			Help: "Total number of pricing audit rows that could not be written",
		},
	)

	LiveConnectionsGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bits_live_connections",
			Help: "Current number of live feed WebSocket connections",
		},
	)
)

// RecordHTTPRequest records HTTP request metrics.
func RecordHTTPRequest(method, path string, statusCode int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordQuote counts a computed quote.
func RecordQuote(weather string, isPeak bool) {
	QuotesTotal.WithLabelValues(weather, strconv.FormatBool(isPeak)).Inc()
}

// RecordIncidentChange counts an add or remove on the incident ledger.
func RecordIncidentChange(change string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	IncidentChangesTotal.WithLabelValues(change, status).Inc()
}
