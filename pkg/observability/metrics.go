package observability

import (
	"context"

	"github.com/aretw0/turing/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the service collectors.
type Metrics struct {
	SessionsOpened prometheus.Counter
	SessionsActive prometheus.Gauge
	Steps          *prometheus.CounterVec
	Halts          *prometheus.CounterVec
	RunSteps       prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SessionsOpened: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "turing_sessions_opened_total",
			Help: "Total number of opened machine instances",
		}),
		SessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "turing_sessions_active",
			Help: "Instances opened and not yet closed by this process",
		}),
		Steps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "turing_steps_total",
				Help: "Total number of applied transitions",
			},
			[]string{"definition"},
		),
		Halts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "turing_halts_total",
				Help: "Total number of instances that halted, by halting state",
			},
			[]string{"definition", "state"},
		),
		RunSteps: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "turing_run_steps",
			Help:    "Transitions applied per run call",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		}),
	}
	reg.MustRegister(m.SessionsOpened, m.SessionsActive, m.Steps, m.Halts, m.RunSteps)
	return m
}

// Hooks returns lifecycle hooks that record into the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnOpen: func(ctx context.Context, e *domain.SessionEvent) {
			m.SessionsOpened.Inc()
			m.SessionsActive.Inc()
		},
		OnClose: func(ctx context.Context, e *domain.SessionEvent) {
			m.SessionsActive.Dec()
		},
		OnStep: func(ctx context.Context, e *domain.StepEvent) {
			m.Steps.WithLabelValues(e.DefinitionID).Inc()
		},
		OnHalt: func(ctx context.Context, e *domain.HaltEvent) {
			m.Halts.WithLabelValues(e.DefinitionID, e.State).Inc()
		},
		OnRun: func(ctx context.Context, e *domain.RunEvent) {
			m.RunSteps.Observe(float64(e.Applied))
		},
	}
}
