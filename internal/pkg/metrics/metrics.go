// Package metrics exposes the gateway's Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fhirgate"

// Flow outcomes recorded by RequestsTotal.
const (
	OutcomeRejected  = "rejected"
	OutcomeLocal     = "local"
	OutcomeForwarded = "forwarded"
	OutcomeFailed    = "failed"
)

// Metrics holds the collectors and the registry they are registered on
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	ErrorResponses  *prometheus.CounterVec
	UpstreamMapped  *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// New creates collectors on a fresh registry, so tests never collide.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Requests handled by the flow, by outcome.",
		}, []string{"outcome"}),
		ErrorResponses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "error_responses_total",
			Help:      "Catalog error responses sent, by catalog key and status.",
		}, []string{"key", "status"}),
		UpstreamMapped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_errors_mapped_total",
			Help:      "Upstream error bodies rewritten, by issue code.",
		}, []string{"code"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Time spent handling a request, by outcome.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.RequestsTotal,
		m.ErrorResponses,
		m.UpstreamMapped,
		m.RequestDuration,
	)
	return m
}

// ObserveError counts a catalog error response.
func (m *Metrics) ObserveError(key string, status int) {
	m.ErrorResponses.WithLabelValues(key, strconv.Itoa(status)).Inc()
}

// ObserveRequest counts a finished request.
func (m *Metrics) ObserveRequest(outcome string, seconds float64) {
	m.RequestsTotal.WithLabelValues(outcome).Inc()
	m.RequestDuration.WithLabelValues(outcome).Observe(seconds)
}

// Registry returns the registry backing Handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
