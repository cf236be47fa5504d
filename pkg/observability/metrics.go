package observability

import (
	"context"

	"github.com/aretw0/bpmngen/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the bpmngen collectors.
type Metrics struct {
	Generated *prometheus.CounterVec
	Duration  prometheus.Histogram
	Discarded prometheus.Counter
	Renders   *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Generated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bpmngen_generate_total",
				Help: "Finished compilation requests by outcome",
			},
			[]string{"outcome"},
		),
		Duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "bpmngen_generate_duration_seconds",
				Help:    "Duration of compilation requests",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
		),
		Discarded: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "bpmngen_results_discarded_total",
				Help: "Compilation results dropped because a newer request was issued",
			},
		),
		Renders: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bpmngen_render_total",
				Help: "Render attempts by final sandbox status",
			},
			[]string{"status"},
		),
	}

	for _, c := range []prometheus.Collector{m.Generated, m.Duration, m.Discarded, m.Renders} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnGenerateEnd: func(_ context.Context, e *domain.GenerateEvent) {
			m.Generated.WithLabelValues(e.Outcome).Inc()
			m.Duration.Observe(e.Duration.Seconds())
		},
		OnResultDiscarded: func(context.Context, *domain.GenerateEvent) {
			m.Discarded.Inc()
		},
		OnRender: func(_ context.Context, e *domain.RenderEvent) {
			m.Renders.WithLabelValues(e.Status).Inc()
		},
	}
}

// WriteTextfile writes every metric gathered by g to path in the text
// exposition format, for node_exporter's textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
