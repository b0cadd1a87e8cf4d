package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codelens/internal/core/app"
	"codelens/internal/core/config"
)

type stubHealth struct {
	status string
}

func (h stubHealth) Check(context.Context) app.HealthStatus {
	return app.HealthStatus{Status: h.status, Components: map[string]string{"pipeline": "ok"}}
}

func newTestServer(t *testing.T, mutate func(*config.Server)) (*Server, string) {
	t.Helper()
	cfg := config.Default().Server
	cfg.Metrics = true
	if mutate != nil {
		mutate(&cfg)
	}
	static := t.TempDir()
	srv, err := NewServer(cfg, app.NewPipeline(), stubHealth{status: "up"}, static)
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Stop(context.Background()) })
	return srv, static
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/compile_and_run", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCompileAndRun_ReturnsPayload(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := post(t, srv.Handler(), `{"code": "int x = 5;\nSystem.out.println(x);", "skip_visualization": true}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "Correct", payload["syntax_result"])
	assert.Equal(t, "O(1)", payload["time_complexity"])
	assert.Equal(t, "Execution Skipped", payload["execution_status"])
	assert.Equal(t, []any{}, payload["syntax_errors"])
	for _, key := range []string{"lexical", "invalid_tokens", "lexical_time", "syntax_time", "summary", "suggestions", "ast_image"} {
		assert.Contains(t, payload, key)
	}
}

func TestCompileAndRun_IncorrectSyntaxReportsErrors(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := post(t, srv.Handler(), `{"code": "{ ( } )"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		SyntaxResult    string   `json:"syntax_result"`
		SyntaxErrors    []string `json:"syntax_errors"`
		ExecutionStatus string   `json:"execution_status"`
		ExecutionOutput string   `json:"execution_output"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "Incorrect", payload.SyntaxResult)
	assert.Len(t, payload.SyntaxErrors, 3)
	assert.Equal(t, "Incorrect Syntax", payload.ExecutionStatus)
	assert.Equal(t, strings.Join(payload.SyntaxErrors, "\n"), payload.ExecutionOutput)
}

func TestCompileAndRun_MissingCodeAnalyzesEmptySource(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := post(t, srv.Handler(), `{}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"syntax_result":"Incorrect"`)
}

func TestCompileAndRun_RejectsWrongFieldType(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := post(t, srv.Handler(), `{"code": 42}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error"`)
}

func TestCompileAndRun_MalformedJSONWithoutValidation(t *testing.T) {
	off := false
	srv, _ := newTestServer(t, func(c *config.Server) { c.ValidateOpenAPI = &off })

	rec := post(t, srv.Handler(), `{"code":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCompileAndRun_BodyTooLarge(t *testing.T) {
	off := false
	srv, _ := newTestServer(t, func(c *config.Server) {
		c.MaxBodyBytes = 16
		c.ValidateOpenAPI = &off
	})

	rec := post(t, srv.Handler(), `{"code": "`+strings.Repeat("x", 64)+`"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestRateLimit_RejectsAfterBurst(t *testing.T) {
	srv, _ := newTestServer(t, func(c *config.Server) {
		c.RateLimit = config.RateLimit{Enabled: true, RequestsPerMinute: 1, Burst: 1}
	})

	first := post(t, srv.Handler(), `{"code": ""}`)
	require.Equal(t, http.StatusOK, first.Code)

	second := post(t, srv.Handler(), `{"code": ""}`)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "60", second.Header().Get("Retry-After"))

	health := httptest.NewRecorder()
	srv.Handler().ServeHTTP(health, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, health.Code)
}

func TestStatic_ServesRenderedFiles(t *testing.T) {
	srv, static := newTestServer(t, nil)
	require.NoError(t, os.WriteFile(filepath.Join(static, "ast_1.dot"), []byte("digraph AST {}"), 0o644))

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/ast_1.dot", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "digraph AST {}", rec.Body.String())

	missing := httptest.NewRecorder()
	srv.Handler().ServeHTTP(missing, httptest.NewRequest(http.MethodGet, "/static/nope.png", nil))
	assert.Equal(t, http.StatusNotFound, missing.Code)
}

func TestHealth_DegradedIsUnavailable(t *testing.T) {
	static := t.TempDir()
	srv, err := NewServer(config.Default().Server, app.NewPipeline(), stubHealth{status: "degraded"}, static)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"degraded"`)
}

func TestOpenAPIAndMetricsEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/openapi.json", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Contains(t, doc["paths"], "/compile_and_run")

	metrics := httptest.NewRecorder()
	srv.Handler().ServeHTTP(metrics, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, metrics.Code)
	assert.Contains(t, metrics.Body.String(), "codelens_http_requests_total")
}

func TestRequestID_EchoesCallerValue(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestStartStop(t *testing.T) {
	srv, _ := newTestServer(t, func(c *config.Server) { c.Address = "127.0.0.1:0" })
	require.NoError(t, srv.Start(context.Background()))
	require.NoError(t, srv.Stop(context.Background()))
}
