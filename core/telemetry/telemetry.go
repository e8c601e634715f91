// Package telemetry provides Prometheus metrics for request dispatch, response
// normalization and background tasks.
//
// A nil *Metrics is valid and records nothing, so callers never check for it.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Response kinds reported by the normalizer.
const (
	KindPage     = "page"
	KindFragment = "fragment"
	KindHTML     = "html"
	KindJSON     = "json"
	KindClass    = "class"
	KindRaw      = "passthrough"
	KindError    = "error"
)

// Metrics groups the collectors registered for one application.
type Metrics struct {
	registry *prometheus.Registry

	responses     *prometheus.CounterVec
	shortCircuits prometheus.Counter
	tasks         *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	warnings      prometheus.Counter
}

// New registers the hyperkit collectors with reg. A nil reg gets a fresh registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		registry: reg,
		responses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hyperkit_responses_total",
				Help: "Responses produced by the normalizer, by kind",
			},
			[]string{"kind"},
		),
		shortCircuits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "hyperkit_before_short_circuits_total",
				Help: "Requests answered by a before interceptor instead of the handler",
			},
		),
		tasks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hyperkit_background_tasks_total",
				Help: "Background tasks run after the response, by result",
			},
			[]string{"result"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hyperkit_handler_duration_seconds",
				Help:    "Time spent resolving, invoking and normalizing a route",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		warnings: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "hyperkit_unresolved_params_total",
				Help: "Parameters that matched no source and resolved to nil",
			},
		),
	}

	reg.MustRegister(m.responses, m.shortCircuits, m.tasks, m.duration, m.warnings)
	return m
}

// Response counts one normalized response of the given kind.
func (m *Metrics) Response(kind string) {
	if m == nil {
		return
	}
	m.responses.WithLabelValues(kind).Inc()
}

// ShortCircuit counts a before-interceptor that answered the request.
func (m *Metrics) ShortCircuit() {
	if m == nil {
		return
	}
	m.shortCircuits.Inc()
}

// Task counts a finished background task.
func (m *Metrics) Task(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.tasks.WithLabelValues(result).Inc()
}

// Unresolved counts a parameter that resolved to nil with a warning.
func (m *Metrics) Unresolved() {
	if m == nil {
		return
	}
	m.warnings.Inc()
}

// Observe records the time spent serving route.
func (m *Metrics) Observe(route string, d time.Duration) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(route).Observe(d.Seconds())
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
