// Package grpc exposes the standard gRPC health service and server
// reflection so orchestrators and grpcurl can health check agentkit.
package grpc

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the health service name reported alongside the overall status.
const ServiceName = "agentkit"

// Transport serves gRPC health and reflection.
type Transport struct {
	port   int
	server *grpc.Server
	health *grpchealth.Server
}

// New creates a gRPC transport on the given port.
func New(port int) *Transport {
	t := &Transport{
		port:   port,
		server: grpc.NewServer(),
		health: grpchealth.NewServer(),
	}
	healthpb.RegisterHealthServer(t.server, t.health)
	reflection.Register(t.server)
	t.SetServing(false)
	return t
}

// Name returns the transport identifier.
func (t *Transport) Name() string { return "grpc" }

// SetServing flips the reported health status.
func (t *Transport) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	t.health.SetServingStatus("", status)
	t.health.SetServingStatus(ServiceName, status)
}

// Serve listens on the configured port until ctx is cancelled.
func (t *Transport) Serve(ctx context.Context) error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", t.port))
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}
	return t.ServeListener(ctx, lis)
}

// ServeListener serves on an existing listener.
func (t *Transport) ServeListener(ctx context.Context, lis net.Listener) error {
	slog.Info("grpc transport listening", "addr", lis.Addr().String())

	go func() {
		<-ctx.Done()
		slog.Info("grpc transport shutting down")
		t.health.Shutdown()
		t.server.GracefulStop()
	}()

	if err := t.server.Serve(lis); err != nil && err != grpc.ErrServerStopped {
		return fmt.Errorf("grpc serve: %w", err)
	}
	return nil
}

// Close gracefully stops the gRPC server.
func (t *Transport) Close() error {
	t.health.Shutdown()
	t.server.GracefulStop()
	return nil
}
