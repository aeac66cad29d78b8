// Package transport defines the contract shared by agentkit's network
// front-ends (HTTP UI/API and gRPC health).
//
// main starts every enabled transport with Serve and stops them with Close
// on shutdown. Transports reach capabilities only through the collaborators
// they were built with: the dispatcher, the batcher, the capability registry
// and the transcription service.
package transport

import "context"

// Transport is a long-running network listener.
type Transport interface {
	// Name returns the transport identifier (e.g., "http", "grpc").
	Name() string

	// Serve accepts connections until ctx is cancelled.
	Serve(ctx context.Context) error

	// Close gracefully shuts down the transport, draining in-flight work.
	Close() error
}
