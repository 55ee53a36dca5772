// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the access-control collectors.
type Metrics struct {
	registry *prometheus.Registry

	AuthzDecisionsTotal *prometheus.CounterVec
	AuthzDuration       *prometheus.HistogramVec
	HTTPRequestsTotal   *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them, with the Go and
// process collectors, on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		AuthzDecisionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bizdesk_authz_decisions_total",
				Help: "Authorization decisions by deciding rule and outcome",
			},
			[]string{"rule", "allowed"},
		),
		AuthzDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bizdesk_authz_duration_seconds",
				Help:    "Time spent resolving an authorization decision",
				Buckets: prometheus.ExponentialBuckets(0.0005, 4, 7),
			},
			[]string{"variant"},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bizdesk_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
	}

	m.registry.MustRegister(
		m.AuthzDecisionsTotal,
		m.AuthzDuration,
		m.HTTPRequestsTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// RecordDecision counts one authorization outcome.
func (m *Metrics) RecordDecision(rule string, allowed bool, variant string, took time.Duration) {
	m.AuthzDecisionsTotal.WithLabelValues(rule, strconv.FormatBool(allowed)).Inc()
	m.AuthzDuration.WithLabelValues(variant).Observe(took.Seconds())
}

// RecordRequest counts one served request. route is the matched pattern, not
// the raw path, to bound label cardinality.
func (m *Metrics) RecordRequest(method, route string, status int) {
	if route == "" {
		route = "unmatched"
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
