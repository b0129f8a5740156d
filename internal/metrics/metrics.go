package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	auditWriteFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "audit_write_failures_total",
		Help: "Audit entries that could not be persisted after a committed mutation.",
	})

	smsSendsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sms_sends_total",
			Help: "SMS provider send attempts by outcome.",
		},
		[]string{"status"},
	)
)

// Init registers the collectors in the default registry. Call once at
// startup.
func Init() {
	prometheus.MustRegister(httpRequestsTotal, httpRequestDuration, auditWriteFailures, smsSendsTotal)
}

// Handler serves the Prometheus exposition endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveRequest records one completed request.
func ObserveRequest(method, route string, status int, latency time.Duration) {
	code := strconv.Itoa(status)
	httpRequestsTotal.WithLabelValues(method, route, code).Inc()
	httpRequestDuration.WithLabelValues(method, route, code).Observe(latency.Seconds())
}

// CountAuditWriteFailure records a failed audit append.
func CountAuditWriteFailure() {
	auditWriteFailures.Inc()
}

// CountSMSSend records one provider send outcome ("sent"/"failed").
func CountSMSSend(status string) {
	smsSendsTotal.WithLabelValues(status).Inc()
}
