// Package health serves liveness, readiness and Prometheus metrics.
//
// /healthz answers 200 once the daemon is up. /readyz additionally reports
// "degraded" (still 200) when the daemon runs without a Gemini credential,
// since the UI and API are served but every capability call will fail.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server is a lightweight HTTP server for liveness, readiness and metrics.
type Server struct {
	port   int
	ready  atomic.Bool
	server *http.Server

	mu       sync.RWMutex
	degraded string
}

// New creates a new health check server.
func New(port int) *Server {
	return &Server{port: port}
}

// SetReady marks the daemon as ready to accept traffic.
func (s *Server) SetReady(ready bool) {
	s.ready.Store(ready)
}

// SetDegraded records why the daemon runs with reduced function.
// An empty reason clears it.
func (s *Server) SetDegraded(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.degraded = reason
}

func (s *Server) degradedReason() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.degraded
}

// Handler returns the health check and metrics routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if !s.ready.Load() {
			writeStatus(w, http.StatusServiceUnavailable, map[string]string{"status": "not_ready"})
			return
		}
		writeStatus(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if !s.ready.Load() {
			writeStatus(w, http.StatusServiceUnavailable, map[string]string{"status": "not_ready"})
			return
		}
		if reason := s.degradedReason(); reason != "" {
			writeStatus(w, http.StatusOK, map[string]string{"status": "degraded", "reason": reason})
			return
		}
		writeStatus(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}

func writeStatus(w http.ResponseWriter, code int, body map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

// ListenAndServe starts the health check HTTP server.
// It blocks until the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	slog.Info("health server listening", "port", s.port)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("health server: %w", err)
	}
	return nil
}
