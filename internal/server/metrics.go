package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/goliatone/go-jobform/pkg/form"
)

// Metrics holds the server's prometheus collectors on a private registry.
type Metrics struct {
	registry         *prometheus.Registry
	submissions      *prometheus.CounterVec
	validationErrors *prometheus.CounterVec
	sessions         prometheus.Gauge
	rateLimited      prometheus.Counter
}

// NewMetrics registers the collectors on registry, or on a fresh registry
// when nil.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	m := &Metrics{
		registry: registry,
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jobform",
			Name:      "submissions_total",
			Help:      "Submit attempts by outcome.",
		}, []string{"outcome"}),
		validationErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jobform",
			Name:      "validation_errors_total",
			Help:      "Validation errors reported by rejected submissions, by field.",
		}, []string{"field"}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "jobform",
			Name:      "sessions_active",
			Help:      "Form sessions currently held in memory.",
		}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "jobform",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the per-client rate limiter.",
		}),
	}
	registry.MustRegister(m.submissions, m.validationErrors, m.sessions, m.rateLimited)
	return m
}

// Observer returns the submit hook attached to every new session.
func (m *Metrics) Observer() form.Observer {
	return form.ObserverFunc(func(attempt form.SubmitAttempt) {
		if attempt.Accepted {
			m.submissions.WithLabelValues("accepted").Inc()
			return
		}
		m.submissions.WithLabelValues("rejected").Inc()
		for _, field := range attempt.Errors.Fields() {
			m.validationErrors.WithLabelValues(field).Inc()
		}
	})
}

// Handler exposes the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
