package observability

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/aidbuddy/pkg/domain"
)

const namespace = "aidbuddy"

// Metrics holds the Prometheus collectors fed by engine lifecycle hooks.
type Metrics struct {
	registry *prometheus.Registry

	turns        *prometheus.CounterVec
	flowChanges  *prometheus.CounterVec
	turnDuration prometheus.Histogram
	estimates    *prometheus.CounterVec
	sensitive    prometheus.Counter
	resets       prometheus.Counter
}

// NewMetrics registers the collectors on a private registry, together with
// the Go runtime and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		turns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Turns handled, by the routing rule that answered them.",
		}, []string{"intent"}),
		flowChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flow_changes_total",
			Help:      "Turns that moved a session into another mode.",
		}, []string{"to"}),
		turnDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "turn_duration_seconds",
			Help:      "Time spent handling a turn, including persistence.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
		estimates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "estimates_total",
			Help:      "Pell estimates produced, by likelihood label.",
		}, []string{"likelihood"}),
		sensitive: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sensitive_inputs_total",
			Help:      "Turns intercepted by the sensitive data guard.",
		}),
		resets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_resets_total",
			Help:      "Explicit session resets.",
		}),
	}
	m.registry.MustRegister(
		m.turns, m.flowChanges, m.turnDuration, m.estimates, m.sensitive, m.resets,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry, e.g. for extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Hooks returns lifecycle hooks that record into the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTurn: func(_ context.Context, e *domain.TurnEvent) {
			m.turns.WithLabelValues(e.Intent).Inc()
			m.turnDuration.Observe(e.Duration.Seconds())
			if e.From.Mode() != e.To.Mode() {
				m.flowChanges.WithLabelValues(string(e.To.Mode())).Inc()
			}
		},
		OnEstimate: func(_ context.Context, e *domain.EstimateEvent) {
			m.estimates.WithLabelValues(e.Likelihood).Inc()
		},
		OnSensitive: func(context.Context, *domain.EventBase) {
			m.sensitive.Inc()
		},
		OnReset: func(context.Context, *domain.EventBase) {
			m.resets.Inc()
		},
	}
}
