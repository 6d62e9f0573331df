package ai

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics instruments the LLM adapter. Outcome labels: "ok", "error",
// "fallback".
type Metrics struct {
	Requests  *prometheus.CounterVec
	Fallbacks *prometheus.CounterVec
	Duration  *prometheus.HistogramVec
}

// NewMetrics registers the adapter metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "planea",
			Subsystem: "llm",
			Name:      "requests_total",
			Help:      "LLM calls by operation and outcome.",
		}, []string{"operation", "outcome"}),
		Fallbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "planea",
			Subsystem: "llm",
			Name:      "fallbacks_total",
			Help:      "Deterministic fallbacks served after retry exhaustion.",
		}, []string{"operation"}),
		Duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "planea",
			Subsystem: "llm",
			Name:      "request_duration_seconds",
			Help:      "Wall time of individual LLM calls.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 90},
		}, []string{"operation"}),
	}
}

func (m *Metrics) observe(operation, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(operation, outcome).Inc()
	m.Duration.WithLabelValues(operation).Observe(seconds)
}

func (m *Metrics) fallback(operation string) {
	if m == nil {
		return
	}
	m.Fallbacks.WithLabelValues(operation).Inc()
}
