package browser

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.attempt("custom", nil)
		m.created()
		m.reused()
		m.validated(true)
		m.tornDown()
		m.rejected(CategoryCircuitOpen)
		m.breaker(BreakerOpen)
		m.connectDuration(1.5)
	})
}

func TestMetrics_RegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.attempt("minimal", errors.New("boom"))
	m.validated(false)
	m.breaker(BreakerHalfOpen)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "brave_mcp_connect_attempts_total")
	assert.Contains(t, names, "brave_mcp_session_validations_total")
	assert.Contains(t, names, "brave_mcp_circuit_breaker_state")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConnectAttempts.WithLabelValues("minimal", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Validations.WithLabelValues("invalid")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.BreakerState))
}

func TestMetrics_UnregisteredStillCounts(t *testing.T) {
	m := NewMetrics(nil)
	m.created()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsCreated))
}
