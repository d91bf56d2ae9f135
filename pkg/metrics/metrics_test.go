package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()

	m.ObserveRequest("POST", "/analyze", 200, 10*time.Millisecond)
	m.ObserveRequest("POST", "/analyze", 200, 20*time.Millisecond)
	m.ObserveRequest("POST", "/analyze", 401, time.Millisecond)
	m.IncRateLimited()
	m.IncAuthFailure()
	m.IncAuthFailure()
	m.IncLimiterError()
	m.ObserveAgentCall("financialAgent", "success", time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("POST", "/analyze", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("POST", "/analyze", "401")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rateLimited))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.authFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.limiterErrors))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.agentCalls.WithLabelValues("financialAgent", "success")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveRequest("GET", "/", 200, time.Millisecond)
		m.IncRateLimited()
		m.IncLimiterError()
		m.IncAuthFailure()
		m.ObserveAgentCall("financialAgent", "error", time.Millisecond)
	})
}

func TestHandler(t *testing.T) {
	m := New()
	m.IncAuthFailure()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(string(body), "agent_falcon_auth_failures_total 1"))
	assert.True(t, strings.Contains(string(body), "go_goroutines"))
}
