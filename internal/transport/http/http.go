// Package http serves the agentkit web UI and JSON API.
//
// The UI is a single server-rendered page with three forms (agent query,
// invoice PDFs, audio transcription). Form posts re-render the page. The
// JSON API under /api exposes the same operations plus direct capability
// invocation, documented with swagger at /swagger/.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/nadzzz/agentkit/docs"
	"github.com/nadzzz/agentkit/internal/agent"
	"github.com/nadzzz/agentkit/internal/batch"
	"github.com/nadzzz/agentkit/internal/capability"
	"github.com/nadzzz/agentkit/internal/memory"
)

const sessionCookie = "agentkit_session"

// Asker answers free-text queries.
type Asker interface {
	Ask(ctx context.Context, sessionID, query string) (agent.Response, error)
}

// InvoiceProcessor answers one query against many PDFs.
type InvoiceProcessor interface {
	Process(ctx context.Context, docs []batch.Document, query string) (batch.Result, error)
}

// AudioTranscriber turns audio into a transcription result.
type AudioTranscriber interface {
	Transcribe(ctx context.Context, audio []byte, contentType string) (capability.Result, error)
}

// Options wires the transport to the rest of the daemon.
type Options struct {
	Port        int
	MaxUploadMB int64
	Agent       Asker
	Registry    *capability.Registry
	Invoices    InvoiceProcessor
	Audio       AudioTranscriber
	Sessions    *memory.Store

	// MissingKey shows a warning banner on every page.
	MissingKey bool
}

// Transport implements transport.Transport over HTTP.
type Transport struct {
	opts      Options
	maxUpload int64
	server    *http.Server
}

// New creates a new HTTP transport.
func New(opts Options) *Transport {
	if opts.MaxUploadMB < 1 {
		opts.MaxUploadMB = 25
	}
	return &Transport{opts: opts, maxUpload: opts.MaxUploadMB << 20}
}

// Name returns the transport identifier.
func (t *Transport) Name() string { return "http" }

// Handler returns every UI, API and swagger route.
func (t *Transport) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", t.handleIndex)
	mux.HandleFunc("POST /ask", t.handleAskForm)
	mux.HandleFunc("POST /invoices", t.handleInvoicesForm)
	mux.HandleFunc("POST /transcribe", t.handleTranscribeForm)
	mux.HandleFunc("GET /transcription.txt", t.handleDownload)

	mux.HandleFunc("POST /api/ask", t.handleAPIAsk)
	mux.HandleFunc("GET /api/capabilities", t.handleAPICapabilities)
	mux.HandleFunc("POST /api/capabilities/{name}", t.handleAPIInvoke)
	mux.HandleFunc("POST /api/invoices", t.handleAPIInvoices)
	mux.HandleFunc("POST /api/transcribe", t.handleAPITranscribe)

	// Swagger UI for the generated OpenAPI docs.
	mux.Handle("GET /swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	return requestLogger(mux)
}

// Serve starts the HTTP server and blocks until ctx is cancelled.
func (t *Transport) Serve(ctx context.Context) error {
	t.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", t.opts.Port),
		Handler:           t.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("http transport listening", "port", t.opts.Port)

	go func() {
		<-ctx.Done()
		slog.Info("http transport shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = t.server.Shutdown(shutdownCtx)
	}()

	if err := t.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("http listen: %w", err)
	}
	return nil
}

// Close gracefully shuts down the HTTP server.
func (t *Transport) Close() error {
	if t.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return t.server.Shutdown(ctx)
	}
	return nil
}

// session returns the caller's session ID, issuing a cookie for new callers.
func (t *Transport) session(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil && memory.ValidSessionID(c.Value) {
		return c.Value
	}
	id := memory.NewSessionID()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// requestLogger tags each request with an X-Request-ID and logs its outcome.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		slog.Debug("http request",
			"request_id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}
