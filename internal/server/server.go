// Package server exposes the auditor over HTTP: single unit, batch and
// liveness endpoints.
package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"rule628/internal/auditor"
	"rule628/internal/config"
	"rule628/internal/logger"
	"rule628/internal/model"
)

// Health is the fixed liveness payload.
type Health struct {
	OK      bool   `json:"ok"`
	Rule    int    `json:"rule"`
	Version string `json:"version"`
}

type Server struct {
	auditor *auditor.Auditor
	cfg     config.ServerConfig
	logger  logger.Interface
}

func New(a *auditor.Auditor, cfg config.ServerConfig, log logger.Interface) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{auditor: a, cfg: cfg, logger: log}
}

// Handler returns the routes wrapped in request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /remediate", s.handleSingle)
	mux.HandleFunc("POST /remediate-array", s.handleBatch)
	mux.HandleFunc("GET /health", s.handleHealth)
	return s.logRequests(mux)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
// within the configured timeout.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", s.cfg.Listen)
	}
	return s.Serve(ctx, ln)
}

func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", ln.Addr().String())
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		return errors.Wrap(err, "server stopped")
	case <-ctx.Done():
	}

	s.logger.Info("shutting down", "timeout", s.cfg.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "graceful shutdown failed")
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server stopped")
	}
	return nil
}

func (s *Server) handleSingle(w http.ResponseWriter, r *http.Request) {
	var req model.UnitRequest
	if !s.decode(w, r, &req) {
		return
	}
	units, problems := validate([]model.UnitRequest{req}, false)
	if len(problems) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Detail: problems})
		return
	}

	writeJSON(w, http.StatusOK, s.auditor.Audit(units[0]))
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var reqs []model.UnitRequest
	if !s.decode(w, r, &reqs) {
		return
	}
	units, problems := validate(reqs, true)
	if len(problems) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Detail: problems})
		return
	}

	results, err := s.auditor.AuditBatch(r.Context(), units, s.cfg.BatchConcurrency)
	if err != nil {
		s.logger.Warn("batch aborted", "units", len(units), logger.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Detail: "request cancelled"})
		return
	}
	s.logger.Debug("batch audited", "units", len(units), "with_findings", len(results))
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, Health{OK: true, Rule: model.RuleNumber, Version: model.RuleVersion})
}

// decode reads a single JSON value from the body into v and writes the
// error response itself when that fails. Anything after the value is
// rejected.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	dec := json.NewDecoder(body)
	err := dec.Decode(v)
	if err == nil {
		if err = dec.Decode(&json.RawMessage{}); errors.Is(err, io.EOF) {
			return true
		}
		if err == nil {
			err = errors.New("unexpected data after the JSON value")
		}
	}

	var (
		tooLarge *http.MaxBytesError
		typeErr  *json.UnmarshalTypeError
	)
	switch {
	case errors.As(err, &tooLarge):
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Detail: "request body too large"})
	case errors.As(err, &typeErr):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Detail: []fieldError{{
			Loc:  []any{"body", typeErr.Field},
			Msg:  "expected " + typeErr.Type.String(),
			Type: "type_error",
		}}})
	default:
		writeJSON(w, http.StatusBadRequest, errorBody{Detail: "malformed JSON body: " + err.Error()})
	}
	return false
}

type errorBody struct {
	Detail any `json:"detail"`
}

type fieldError struct {
	Loc  []any  `json:"loc"`
	Msg  string `json:"msg"`
	Type string `json:"type"`
}

// validate converts requests to units. Only absent or null mandatory
// fields are reported; empty strings are valid.
func validate(reqs []model.UnitRequest, indexed bool) ([]model.SourceUnit, []fieldError) {
	var problems []fieldError
	units := make([]model.SourceUnit, 0, len(reqs))
	for i, req := range reqs {
		for _, field := range req.MissingFields() {
			loc := []any{"body", field}
			if indexed {
				loc = []any{"body", i, field}
			}
			problems = append(problems, fieldError{Loc: loc, Msg: "field required", Type: "value_error.missing"})
		}
		units = append(units, req.Unit())
	}
	return units, problems
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
