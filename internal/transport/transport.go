// Package transport defines the interface for pluggable request transports.
//
// Each transport (HTTP REST, WebSocket) accepts chat requests and hands them
// to the relay. The relay doesn't care how requests arrive — it only works
// with the Handler contract.
package transport

import (
	"context"

	"github.com/voxrelay/voxrelay/internal/message"
)

// Handler is a function that processes an incoming chat request and returns
// a response. The relay provides this handler to each transport.
type Handler func(ctx context.Context, req *message.ChatRequest) (*message.ChatResponse, error)

// Transport is the interface that every transport adapter must implement.
type Transport interface {
	// Name returns the transport identifier (e.g., "http").
	Name() string

	// Listen starts accepting incoming requests and dispatches them to the
	// handler. It blocks until the context is cancelled.
	Listen(ctx context.Context, handler Handler) error

	// Close gracefully shuts down the transport, draining in-flight work.
	Close() error
}
