package llm

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the orchestrator's prometheus collectors. Collectors are
// registered on the registry passed to NewMetrics, never the global one.
type Metrics struct {
	attempts        *prometheus.CounterVec
	attemptDuration *prometheus.HistogramVec
	calls           *prometheus.CounterVec
}

// NewMetrics registers the collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		attempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "whatif_llm_attempts_total",
				Help: "Total number of credential/model attempts, partitioned by outcome.",
			},
			[]string{"provider", "model", "outcome"},
		),
		attemptDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "whatif_llm_attempt_duration_seconds",
				Help:    "Duration of a single completion attempt, including decoding.",
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 60},
			},
			[]string{"provider", "model"},
		),
		calls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "whatif_llm_calls_total",
				Help: "Total number of orchestration calls, partitioned by result.",
			},
			[]string{"result"},
		),
	}
}

func (m *Metrics) observeAttempt(p Provider, model string, outcome Outcome, d time.Duration) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(string(p), model, outcome.String()).Inc()
	m.attemptDuration.WithLabelValues(string(p), model).Observe(d.Seconds())
}

func (m *Metrics) observeCall(result string) {
	if m == nil {
		return
	}
	m.calls.WithLabelValues(result).Inc()
}
