// Package api serves the read-only status endpoints.
//
// DESIGN: Not an alert destination — delivery stays on the single webhook.
// These endpoints exist so an operator (or a compose healthcheck) can see
// what the watcher is tracking without grepping logs. Disabled unless
// STATUS_ADDR is set.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/edgeops/poolwatch/internal/monitoring"
	"github.com/edgeops/poolwatch/internal/watcher"
)

// StatusSource provides the engine state served on /status.
type StatusSource interface {
	Snapshot() watcher.Snapshot
}

// Server is the status HTTP server.
type Server struct {
	srv    *http.Server
	logger *monitoring.Logger
}

// New creates a status server bound to addr.
func New(addr string, source StatusSource, metrics *monitoring.Metrics, logger *monitoring.Logger) *Server {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/status", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, source.Snapshot())
	})
	r.Get("/metrics", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, metrics.Stats())
	})

	return &Server{
		srv: &http.Server{
			Addr:         addr,
			Handler:      r,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Handler returns the route handler.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

// Start serves until Shutdown; it filters the normal close error.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.srv.Addr).Msg("status API listening")
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
