package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"subsyncarr/internal/api"
	"subsyncarr/internal/config"
	"subsyncarr/internal/logging"
	"subsyncarr/internal/services"
	"subsyncarr/internal/syncrun"
)

const maxRequestBody = 1 << 20

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon
	cfg    *config.Config

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) *apiServer {
	srv := &apiServer{
		bind:   strings.TrimSpace(cfg.Paths.APIBind),
		logger: logger,
		daemon: d,
		cfg:    cfg,
	}
	srv.server = &http.Server{
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// No WriteTimeout: POST /sync answers only when the run has finished.
		IdleTimeout: 60 * time.Second,
	}
	return srv
}

func (s *apiServer) routes() http.Handler {
	token := strings.TrimSpace(s.cfg.Paths.APIToken)
	mux := http.NewServeMux()
	mux.HandleFunc("/paths", s.requireToken(token, s.handlePaths))
	mux.HandleFunc("/sync", s.requireToken(token, s.handleSync))
	mux.HandleFunc("/unlock", s.requireToken(token, s.handleUnlock))
	mux.HandleFunc("/api/status", s.requireToken(token, s.handleStatus))
	mux.HandleFunc("/api/runs", s.requireToken(token, s.handleRuns))
	return requestIDMiddleware(mux)
}

func (s *apiServer) start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) address() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handlePaths(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	orch := s.daemon.Orchestrator()
	result, err := orch.ScanDirectories(orch.ScanConfig(nil))
	if err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.PathsResponse{Directories: result})
}

func (s *apiServer) handleSync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req api.SyncRequest
	body := http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	env, err := api.EnvFromHeaders(r.Header)
	if err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}

	result, err := s.daemon.Orchestrator().Sync(r.Context(), syncrun.Request{
		Engines: req.Engine,
		Paths:   req.Path,
		Env:     env,
		Trigger: "api",
	})
	if err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromSyncResult(req, result))
}

func (s *apiServer) handleUnlock(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	orch := s.daemon.Orchestrator()
	before := orch.Status()
	orch.ForceUnlock()
	resp := api.UnlockResponse{Message: "Sync lock released", WasHeld: before.Held}
	if before.Held {
		resp.HeldFor = before.HeldFor.Round(time.Second).String()
	} else {
		resp.Message = "Sync lock was not held"
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	status := s.daemon.Status(r.Context())
	s.writeJSON(w, http.StatusOK, api.DaemonStatus{
		Running:        status.Running,
		PID:            status.PID,
		HistoryDBPath:  status.HistoryDBPath,
		LockFilePath:   status.LockFilePath,
		MaxConcurrent:  s.cfg.Sync.MaxConcurrent,
		IncludeEngines: s.cfg.Sync.IncludeEngines,
		Lock:           api.FromLockStatus(status.Lock),
		Dependencies:   api.FromDependencies(status.Dependencies),
	})
}

func (s *apiServer) handleRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	query := r.URL.Query()
	limit, _ := strconv.Atoi(query.Get("limit"))
	withReport := query.Get("report") == "1" || strings.EqualFold(query.Get("report"), "true")

	runs, err := s.daemon.ListRuns(r.Context(), limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := api.RunsResponse{Runs: make([]api.RunSummary, 0, len(runs))}
	for _, run := range runs {
		resp.Runs = append(resp.Runs, api.FromRun(run, withReport))
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *apiServer) writeServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	status := services.HTTPStatus(err)
	payload := api.ErrorResponse{Error: services.UserMessage(err)}
	var busy *services.LockBusyError
	if errors.As(err, &busy) {
		payload.HeldForSeconds = busy.HeldFor.Seconds()
	}
	if status >= http.StatusInternalServerError {
		logging.ErrorWithContext(logging.WithContext(ctx, s.log()), "request failed", "api_request_failed",
			logging.Error(err),
		)
		if errors.Is(err, services.ErrDiscovery) {
			payload.Error = "Scan failed: " + payload.Error
		}
	}
	s.writeJSON(w, status, payload)
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, api.ErrorResponse{Error: message})
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return s.logger.With(logging.String(logging.FieldComponent, "api-server"))
	}
	return logging.NewNop()
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(services.WithRequestID(r.Context(), id)))
	})
}
