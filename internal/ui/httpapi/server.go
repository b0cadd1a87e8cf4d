// Package httpapi serves the analysis pipeline over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"codelens/internal/core/app"
	"codelens/internal/core/config"
	"codelens/internal/core/ports"
	"codelens/internal/shared/util"
	"codelens/internal/ui/report"
)

const limiterTTL = 10 * time.Minute

// HealthChecker reports component availability for /health.
type HealthChecker interface {
	Check(ctx context.Context) app.HealthStatus
}

type Server struct {
	cfg       config.Server
	service   ports.AnalysisService
	health    HealthChecker
	staticDir string

	spec     *apiSpec
	limiters *util.LimiterRegistry
	handler  http.Handler

	server *http.Server
}

type compileRequest struct {
	Code              string `json:"code"`
	SkipExecution     bool   `json:"skip_execution"`
	SkipVisualization bool   `json:"skip_visualization"`
}

type errorBody struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func NewServer(cfg config.Server, service ports.AnalysisService, health HealthChecker, staticDir string) (*Server, error) {
	if service == nil {
		return nil, fmt.Errorf("analysis service is required")
	}
	spec, err := loadSpec()
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:       cfg,
		service:   service,
		health:    health,
		staticDir: staticDir,
		spec:      spec,
	}
	if cfg.RateLimit.Enabled {
		s.limiters = util.NewLimiterRegistry(util.PerMinute(cfg.RateLimit.RequestsPerMinute), cfg.RateLimit.Burst, limiterTTL)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /compile_and_run", s.handleCompileAndRun)
	mux.HandleFunc("GET /static/{file}", s.handleStatic)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /openapi.json", s.handleOpenAPI)
	if cfg.Metrics {
		mux.Handle("GET /metrics", promhttp.Handler())
	}

	var h http.Handler = mux
	if cfg.OpenAPIValidationEnabled() {
		h = s.withValidation(h)
	}
	h = s.withBodyLimit(h)
	h = s.withRateLimit(h)
	h = withMetrics(h)
	s.handler = withRequestID(h)
	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start binds the listener and serves in the background.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Address, err)
	}
	s.server = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	slog.Info("http server starting", "addr", ln.Addr().String())

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", "error", err)
		}
	}()
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	if s.limiters != nil {
		s.limiters.Close()
	}
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) handleCompileAndRun(w http.ResponseWriter, r *http.Request) {
	var req compileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, r, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	res, err := s.service.Analyze(r.Context(), ports.AnalysisRequest{
		Source:            req.Code,
		SkipExecution:     req.SkipExecution,
		SkipVisualization: req.SkipVisualization,
	})
	if err != nil {
		slog.Warn("analysis aborted", "request_id", requestID(r), "error", err)
		writeError(w, r, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report.BuildPayload(res))
}

func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	path, err := util.SafeJoin(s.staticDir, r.PathValue("file"))
	if err != nil {
		writeError(w, r, http.StatusNotFound, "not found")
		return
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		writeError(w, r, http.StatusNotFound, "not found")
		return
	}
	http.ServeFile(w, r, path)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "up"})
		return
	}
	status := s.health.Check(r.Context())
	code := http.StatusOK
	if status.Status != "up" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, status)
}

func (s *Server) handleOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(s.spec.json)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("write response failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	writeJSON(w, code, errorBody{Error: msg, RequestID: requestID(r)})
}
