package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/strengthscope/internal/llm"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "strengthscope"

// Metrics exports assessment and narrative activity to Prometheus.
type Metrics struct {
	llmCalls        *prometheus.CounterVec
	llmLatency      *prometheus.HistogramVec
	sessionsStarted *prometheus.CounterVec
	reports         *prometheus.CounterVec
	renders         *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// New registers all collectors with reg. Collectors that are already
// registered are reused so several instances can share one registry.
func New(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		llmCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "calls_total",
			Help:      "Narrative generation calls by provider and outcome.",
		}, []string{"provider", "status"}),
		llmLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "call_duration_seconds",
			Help:      "Latency of narrative generation calls.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 45, 90},
		}, []string{"provider"}),
		sessionsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_started_total",
			Help:      "Questionnaire sessions assembled, by edition.",
		}, []string{"edition"}),
		reports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_generated_total",
			Help:      "Reports assembled, by narrative outcome.",
		}, []string{"narrative"}),
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "renders_total",
			Help:      "Report renders by output format and outcome.",
		}, []string{"format", "status"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"method", "route", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	var err error
	if m.llmCalls, err = register(reg, m.llmCalls); err != nil {
		return nil, err
	}
	if m.llmLatency, err = register(reg, m.llmLatency); err != nil {
		return nil, err
	}
	if m.sessionsStarted, err = register(reg, m.sessionsStarted); err != nil {
		return nil, err
	}
	if m.reports, err = register(reg, m.reports); err != nil {
		return nil, err
	}
	if m.renders, err = register(reg, m.renders); err != nil {
		return nil, err
	}
	if m.httpRequests, err = register(reg, m.httpRequests); err != nil {
		return nil, err
	}
	if m.httpDuration, err = register(reg, m.httpDuration); err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, fmt.Errorf("register collector: %w", err)
	}
	return c, nil
}

// OnCallComplete implements llm.Observer.
func (m *Metrics) OnCallComplete(e llm.LLMCallEvent) {
	if m == nil {
		return
	}
	status := "ok"
	if !e.Success {
		status = e.ErrorCode
	}
	m.llmCalls.WithLabelValues(string(e.Provider), status).Inc()
	m.llmLatency.WithLabelValues(string(e.Provider)).Observe(float64(e.LatencyMs) / 1000)
}

// SessionStarted counts an assembled questionnaire.
func (m *Metrics) SessionStarted(edition string) {
	if m == nil {
		return
	}
	m.sessionsStarted.WithLabelValues(edition).Inc()
}

// ReportGenerated counts an assembled report.
func (m *Metrics) ReportGenerated(fallback bool) {
	if m == nil {
		return
	}
	outcome := "generated"
	if fallback {
		outcome = "placeholder"
	}
	m.reports.WithLabelValues(outcome).Inc()
}

// Rendered counts one render in the given format.
func (m *Metrics) Rendered(format string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.renders.WithLabelValues(format, status).Inc()
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(method, route string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, fmt.Sprint(code)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

var _ llm.Observer = (*Metrics)(nil)
