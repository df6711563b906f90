// Package metrics exposes Prometheus counters for the session broker.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector is what the service and transport layers record into.
type MetricsCollector interface {
	RecordSessionIssued(provider string)
	RecordVerificationFailure(provider string)
	RecordServiceMerge(backend string)
	RecordHTTPRequest(method, route string, status int, duration time.Duration)
}

// Collector is the Prometheus-backed MetricsCollector.
type Collector struct {
	sessionsIssued       *prometheus.CounterVec
	verificationFailures *prometheus.CounterVec
	serviceMerges        *prometheus.CounterVec
	httpRequests         *prometheus.CounterVec
	httpLatency          *prometheus.HistogramVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		sessionsIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "filegate_sessions_issued_total",
			Help: "Sessions issued, by identity provider or application.",
		}, []string{"provider"}),
		verificationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "filegate_identity_verification_failures_total",
			Help: "Rejected identity assertions, by provider.",
		}, []string{"provider"}),
		serviceMerges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "filegate_service_merges_total",
			Help: "Backend credential records merged into sessions.",
		}, []string{"backend"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "filegate_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status_code"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "filegate_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		c.sessionsIssued,
		c.verificationFailures,
		c.serviceMerges,
		c.httpRequests,
		c.httpLatency,
	)

	return c
}

func (c *Collector) RecordSessionIssued(provider string) {
	c.sessionsIssued.WithLabelValues(provider).Inc()
}

func (c *Collector) RecordVerificationFailure(provider string) {
	c.verificationFailures.WithLabelValues(provider).Inc()
}

func (c *Collector) RecordServiceMerge(backend string) {
	c.serviceMerges.WithLabelValues(backend).Inc()
}

func (c *Collector) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpLatency.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
