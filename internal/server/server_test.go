package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/strengthscope/internal/metrics"
	"github.com/alexanderramin/strengthscope/internal/narrative"
	"github.com/alexanderramin/strengthscope/internal/render"
	"github.com/alexanderramin/strengthscope/internal/report"
	"github.com/alexanderramin/strengthscope/internal/repository"
	"github.com/alexanderramin/strengthscope/internal/service"
	"github.com/alexanderramin/strengthscope/internal/testutil"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type testServer struct {
	t       *testing.T
	handler http.Handler
	gen     *testutil.StubGenerator
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gen := &testutil.StubGenerator{Text: "### Profile\n- **Driven** finisher"}
	svc := service.NewAssessmentService(
		testutil.ExampleCatalog(t),
		repository.NewMemorySessionRepo(16, time.Hour),
		narrative.NewService(gen, narrative.WithModel("stub")),
		nil,
	)
	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.NoError(t, err)

	srv, err := New(svc, DefaultConfig(), WithMetrics(m, reg))
	require.NoError(t, err)
	return &testServer{t: t, handler: srv.Handler(), gen: gen}
}

func (ts *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	ts.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, data any) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	if data != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

func (ts *testServer) startSession() sessionView {
	ts.t.Helper()
	rec := ts.do(http.MethodPost, "/api/sessions", `{"edition":"full","subject":"Taro","seed":7}`)
	require.Equal(ts.t, http.StatusCreated, rec.Code, rec.Body.String())
	var v sessionView
	decode(ts.t, rec, &v)
	return v
}

const completeAnswers = `{"answers":{"a.1":5,"a.2":5,"a.3":5,"b.1":1,"b.2":1}}`

func TestHealthz(t *testing.T) {
	rec := newTestServer(t).do(http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestListEditions(t *testing.T) {
	rec := newTestServer(t).do(http.MethodGet, "/api/editions", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var editions []service.EditionInfo
	decode(t, rec, &editions)
	require.NotEmpty(t, editions)
	assert.Equal(t, "full", editions[0].ID)
	assert.Equal(t, 2, editions[0].TraitCount)
	assert.Equal(t, 5, editions[0].StatementCount)
}

func TestStartSession(t *testing.T) {
	ts := newTestServer(t)
	v := ts.startSession()

	assert.NotEmpty(t, v.ID)
	assert.Equal(t, uint64(7), v.Seed)
	assert.Len(t, v.Items, 5)
	assert.Equal(t, 1, v.Items[0].Number)
	assert.Equal(t, 5, v.Unanswered)

	again := ts.startSession()
	assert.Equal(t, v.Items, again.Items, "same seed yields the same order")
	assert.NotEqual(t, v.ID, again.ID)
}

func TestStartSession_EmptyBodyUsesDefaults(t *testing.T) {
	rec := newTestServer(t).do(http.MethodPost, "/api/sessions", "")
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestStartSession_UnknownEdition(t *testing.T) {
	rec := newTestServer(t).do(http.MethodPost, "/api/sessions", `{"edition":"nope"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	env := decode(t, rec, nil)
	assert.False(t, env.Success)
	assert.Contains(t, env.Error, "unknown edition")
}

func TestStartSession_MalformedBody(t *testing.T) {
	rec := newTestServer(t).do(http.MethodPost, "/api/sessions", `{"edition":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetSession_NotFound(t *testing.T) {
	rec := newTestServer(t).do(http.MethodGet, "/api/sessions/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSaveAnswers_Validation(t *testing.T) {
	ts := newTestServer(t)
	id := ts.startSession().ID

	tests := []struct {
		name string
		body string
		code int
	}{
		{"out of range", `{"answers":{"a.1":9}}`, http.StatusUnprocessableEntity},
		{"zero", `{"answers":{"a.1":0}}`, http.StatusUnprocessableEntity},
		{"unknown statement", `{"answers":{"zz.1":3}}`, http.StatusUnprocessableEntity},
		{"positional length", `{"positional":[1,2]}`, http.StatusUnprocessableEntity},
		{"partial", `{"answers":{"a.1":4}}`, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(http.MethodPut, "/api/sessions/"+id+"/answers", tt.body)
			assert.Equal(t, tt.code, rec.Code, rec.Body.String())
		})
	}
}

func TestGenerateReport_Incomplete(t *testing.T) {
	ts := newTestServer(t)
	id := ts.startSession().ID

	rec := ts.do(http.MethodPost, "/api/sessions/"+id+"/report", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Zero(t, ts.gen.Calls.Load(), "no narrative call for incomplete answers")
}

func TestReportFlow(t *testing.T) {
	ts := newTestServer(t)
	id := ts.startSession().ID

	rec := ts.do(http.MethodGet, "/api/sessions/"+id+"/report.md", "")
	assert.Equal(t, http.StatusNotFound, rec.Code, "no report yet")

	rec = ts.do(http.MethodPut, "/api/sessions/"+id+"/answers", completeAnswers)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var v sessionView
	decode(t, rec, &v)
	assert.Zero(t, v.Unanswered)

	rec = ts.do(http.MethodPost, "/api/sessions/"+id+"/report", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var rep report.Report
	decode(t, rec, &rep)
	assert.Equal(t, "Taro", rep.Subject)
	require.NotEmpty(t, rep.Summary.Top)
	assert.Equal(t, "Alpha", rep.Summary.Top[0].Trait)
	assert.Equal(t, 15, rep.Summary.Top[0].Score)
	assert.False(t, rep.Narrative.Fallback)

	rec = ts.do(http.MethodGet, "/api/sessions/"+id, "")
	decode(t, rec, &v)
	assert.True(t, v.HasReport)

	rec = ts.do(http.MethodGet, "/api/sessions/"+id+"/report.md", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="Taro_strength_report.md"`)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/markdown")
	assert.Contains(t, rec.Body.String(), "| 1 | Alpha | X | 15 |")

	rec = ts.do(http.MethodGet, "/api/sessions/"+id+"/report.html", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<svg")

	rec = ts.do(http.MethodGet, "/api/sessions/"+id+"/report.pdf", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code, "pdf needs a font")
}

func TestReportFlow_NarrativeFailureStillSucceeds(t *testing.T) {
	ts := newTestServer(t)
	ts.gen.Err = testutil.ErrStubFailure
	id := ts.startSession().ID
	ts.do(http.MethodPut, "/api/sessions/"+id+"/answers", completeAnswers)

	rec := ts.do(http.MethodPost, "/api/sessions/"+id+"/report", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var rep report.Report
	decode(t, rec, &rep)
	assert.True(t, rep.Narrative.Fallback)
	assert.Equal(t, narrative.Placeholder, rep.Narrative.Raw)
}

func TestSaveAnswers_ClearsStoredReport(t *testing.T) {
	ts := newTestServer(t)
	id := ts.startSession().ID
	ts.do(http.MethodPut, "/api/sessions/"+id+"/answers", completeAnswers)
	ts.do(http.MethodPost, "/api/sessions/"+id+"/report", "")

	ts.do(http.MethodPut, "/api/sessions/"+id+"/answers", `{"answers":{"b.1":2}}`)
	rec := ts.do(http.MethodGet, "/api/sessions/"+id+"/report", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.do(http.MethodGet, "/api/editions", "")

	rec := ts.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "strengthscope_http_requests_total")
	assert.Contains(t, body, `route="/api/editions"`)
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/editions", nil)
	req.Header.Set("Origin", "http://example.test")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestNew_InvalidFont(t *testing.T) {
	path := filepath.Join(t.TempDir(), "font.ttf")
	require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte("x"), 64), 0o644))

	cfg := DefaultConfig()
	cfg.FontPath = path
	_, err := New(nil, cfg)
	assert.ErrorIs(t, err, render.ErrInvalidFont)
}

func TestConfig_EffectiveWriteTimeout(t *testing.T) {
	tests := []struct {
		name      string
		write     time.Duration
		narrative time.Duration
		want      time.Duration
	}{
		{"no narrative bound", 120 * time.Second, 0, 120 * time.Second},
		{"default narrative fits", 120 * time.Second, 90 * time.Second, 120 * time.Second},
		{"long narrative raises it", 120 * time.Second, 300 * time.Second, 330 * time.Second},
		{"equal to write timeout", 60 * time.Second, 60 * time.Second, 90 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.WriteTimeout = tt.write
			cfg.NarrativeTimeout = tt.narrative
			assert.Equal(t, tt.want, cfg.EffectiveWriteTimeout())
			assert.Greater(t, cfg.EffectiveWriteTimeout(), tt.narrative)
		})
	}
}
