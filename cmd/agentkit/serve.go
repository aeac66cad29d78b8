package main

import (
	"context"
	"errors"
	"log/slog"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nadzzz/agentkit/internal/health"
	"github.com/nadzzz/agentkit/internal/transport"
	grpctransport "github.com/nadzzz/agentkit/internal/transport/grpc"
	httptransport "github.com/nadzzz/agentkit/internal/transport/http"
)

func serveCmd(cfgPath func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web UI, JSON API and health endpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Create root context with signal handling for graceful shutdown.
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			a, err := newApp(ctx, cfgPath())
			if err != nil {
				return err
			}
			return a.serve(ctx)
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	slog.Info("agentkit starting", "version", version)

	var (
		transports []transport.Transport
		grpcT      *grpctransport.Transport
	)
	if a.cfg.Transports.HTTP.Enabled {
		transports = append(transports, httptransport.New(httptransport.Options{
			Port:        a.cfg.Transports.HTTP.Port,
			MaxUploadMB: a.cfg.Transports.HTTP.MaxUploadMB,
			Agent:       a.dispatcher,
			Registry:    a.registry,
			Invoices:    a.batcher,
			Audio:       a.service,
			Sessions:    a.sessions,
			MissingKey:  a.missingKey,
		}))
	}
	if a.cfg.Transports.GRPC.Enabled {
		grpcT = grpctransport.New(a.cfg.Transports.GRPC.Port)
		transports = append(transports, grpcT)
	}
	if len(transports) == 0 {
		return errors.New("no transports enabled, enable at least one in config")
	}

	go a.sessions.Run(ctx, sweepInterval(a.cfg.Sessions.IdleTTL))

	// Start health check server.
	healthServer := health.New(a.cfg.Server.HealthPort)
	if a.missingKey {
		healthServer.SetDegraded("gemini api key not configured")
	}
	go func() {
		if err := healthServer.ListenAndServe(ctx); err != nil {
			slog.Error("health server failed", "error", err)
		}
	}()

	// Start all transports.
	var wg sync.WaitGroup
	for _, t := range transports {
		wg.Add(1)
		go func(t transport.Transport) {
			defer wg.Done()
			slog.Info("starting transport", "name", t.Name())
			if err := t.Serve(ctx); err != nil {
				slog.Error("transport failed", "name", t.Name(), "error", err)
			}
		}(t)
	}

	healthServer.SetReady(true)
	if grpcT != nil {
		grpcT.SetServing(true)
	}
	slog.Info("agentkit ready",
		"transports", len(transports),
		"health_port", a.cfg.Server.HealthPort,
		"capabilities", len(a.registry.List()))

	// Block until shutdown signal.
	<-ctx.Done()
	slog.Info("shutdown signal received, draining...")

	if grpcT != nil {
		grpcT.SetServing(false)
	}
	for _, t := range transports {
		if err := t.Close(); err != nil {
			slog.Error("transport close error", "name", t.Name(), "error", err)
		}
	}

	wg.Wait()
	slog.Info("agentkit stopped")
	return nil
}

// sweepInterval checks for idle sessions a few times per TTL, at most once a
// minute.
func sweepInterval(ttl time.Duration) time.Duration {
	return min(max(ttl/4, time.Second), time.Minute)
}
