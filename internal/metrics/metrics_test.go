package metrics

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/alexanderramin/strengthscope/internal/llm"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_LLMCalls(t *testing.T) {
	m, err := New(prometheus.NewRegistry())
	require.NoError(t, err)

	m.OnCallComplete(llm.LLMCallEvent{Provider: llm.ProviderOllama, Success: true, LatencyMs: 1200})
	m.OnCallComplete(llm.LLMCallEvent{Provider: llm.ProviderOllama, Success: false, ErrorCode: "TIMEOUT"})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.llmCalls.WithLabelValues("ollama", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.llmCalls.WithLabelValues("ollama", "TIMEOUT")))
}

func TestMetrics_Counters(t *testing.T) {
	m, err := New(prometheus.NewRegistry())
	require.NoError(t, err)

	m.SessionStarted("full")
	m.SessionStarted("full")
	m.ReportGenerated(true)
	m.Rendered("pdf", errors.New("no font"))
	m.ObserveHTTP(http.MethodGet, "/healthz", 200, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.sessionsStarted.WithLabelValues("full")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reports.WithLabelValues("placeholder")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.renders.WithLabelValues("pdf", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/healthz", "200")))
}

func TestMetrics_SharedRegistryReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := New(reg)
	require.NoError(t, err)
	second, err := New(reg)
	require.NoError(t, err)

	first.SessionStarted("starter")
	second.SessionStarted("starter")
	assert.Equal(t, 2.0, testutil.ToFloat64(first.sessionsStarted.WithLabelValues("starter")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.OnCallComplete(llm.LLMCallEvent{})
		m.SessionStarted("x")
		m.ReportGenerated(false)
		m.Rendered("md", nil)
		m.ObserveHTTP("GET", "/", 200, 0)
	})
}
