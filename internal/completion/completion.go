// Package completion defines the interface for hosted text-generation backends.
//
// A client takes the composed turn sequence and returns a single completion
// string. voxrelay ships with two backends: Groq (OpenAI-compatible chat
// completions) and Gemini (Google genai SDK). One attempt per request, no
// retries — a failed completion fails the request.
package completion

import (
	"context"
	"fmt"

	"github.com/voxrelay/voxrelay/internal/message"
)

// Client is the interface for text-generation backends.
type Client interface {
	// Name returns the backend identifier (e.g., "groq", "gemini").
	Name() string

	// Complete sends the turn sequence and returns the first choice's text.
	Complete(ctx context.Context, turns []message.Turn) (string, error)

	// Close releases any resources held by the client.
	Close() error
}

// UpstreamError carries a provider-side failure (quota, malformed turns,
// oversized input). It is distinct from configuration errors, which are
// detected before any provider call.
type UpstreamError struct {
	Provider string
	Status   int
	Message  string
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s completion failed (status %d): %s", e.Provider, e.Status, e.Message)
	}
	return fmt.Sprintf("%s completion failed: %s", e.Provider, e.Message)
}
