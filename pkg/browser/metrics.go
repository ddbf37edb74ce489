package browser

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the prometheus collectors for the session lifecycle.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	ConnectAttempts  *prometheus.CounterVec
	SessionsCreated  prometheus.Counter
	SessionsReused   prometheus.Counter
	Validations      *prometheus.CounterVec
	Teardowns        prometheus.Counter
	Rejections       *prometheus.CounterVec
	BreakerState     prometheus.Gauge
	ConnectDurations prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg when non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ConnectAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "brave_mcp",
			Name:      "connect_attempts_total",
			Help:      "Browser connection attempts by strategy and result.",
		}, []string{"strategy", "result"}),
		SessionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "brave_mcp",
			Name:      "sessions_created_total",
			Help:      "Sessions established by the connection supervisor.",
		}),
		SessionsReused: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "brave_mcp",
			Name:      "sessions_reused_total",
			Help:      "Initialize calls answered by a validated existing session.",
		}),
		Validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "brave_mcp",
			Name:      "session_validations_total",
			Help:      "Liveness probes by result.",
		}, []string{"result"}),
		Teardowns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "brave_mcp",
			Name:      "session_teardowns_total",
			Help:      "Sessions torn down.",
		}),
		Rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "brave_mcp",
			Name:      "initialize_rejections_total",
			Help:      "Initialize calls rejected before any connection I/O.",
		}, []string{"reason"}),
		BreakerState: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "brave_mcp",
			Name:      "circuit_breaker_state",
			Help:      "0 closed, 1 open, 2 half-open.",
		}),
		ConnectDurations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "brave_mcp",
			Name:      "connect_duration_seconds",
			Help:      "Time for a supervisor run to connect or give up.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
	}
	if reg != nil {
		reg.MustRegister(
			m.ConnectAttempts,
			m.SessionsCreated,
			m.SessionsReused,
			m.Validations,
			m.Teardowns,
			m.Rejections,
			m.BreakerState,
			m.ConnectDurations,
		)
	}
	return m
}

func (m *Metrics) attempt(strategy string, err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.ConnectAttempts.WithLabelValues(strategy, result).Inc()
}

func (m *Metrics) created() {
	if m == nil {
		return
	}
	m.SessionsCreated.Inc()
}

func (m *Metrics) reused() {
	if m == nil {
		return
	}
	m.SessionsReused.Inc()
}

func (m *Metrics) validated(ok bool) {
	if m == nil {
		return
	}
	result := "valid"
	if !ok {
		result = "invalid"
	}
	m.Validations.WithLabelValues(result).Inc()
}

func (m *Metrics) tornDown() {
	if m == nil {
		return
	}
	m.Teardowns.Inc()
}

func (m *Metrics) rejected(reason Category) {
	if m == nil {
		return
	}
	m.Rejections.WithLabelValues(string(reason)).Inc()
}

func (m *Metrics) breaker(s BreakerState) {
	if m == nil {
		return
	}
	m.BreakerState.Set(float64(s))
}

func (m *Metrics) connectDuration(seconds float64) {
	if m == nil {
		return
	}
	m.ConnectDurations.Observe(seconds)
}
