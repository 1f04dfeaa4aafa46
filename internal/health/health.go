// Package health provides liveness endpoints for the voxrelay daemon.
//
// Docker, Kubernetes, and the hosting platform's probes use these to monitor
// the daemon. Two surfaces are exposed: an HTTP server with /healthz and
// /readyz, and an optional gRPC health service (grpc.health.v1) for probes
// that speak gRPC.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"
)

// Server is a lightweight HTTP server that exposes /healthz and /readyz.
type Server struct {
	port   int
	ready  atomic.Bool
	server *http.Server
	grpc   *GRPCServer // nil when the gRPC listener is disabled
}

// New creates a new health check server. grpcPort of 0 disables the gRPC
// health listener.
func New(port, grpcPort int) *Server {
	s := &Server{port: port}
	if grpcPort > 0 {
		s.grpc = newGRPCServer(grpcPort)
	}
	return s
}

// SetReady marks the daemon as ready to accept traffic on both surfaces.
func (s *Server) SetReady(ready bool) {
	s.ready.Store(ready)
	if s.grpc != nil {
		s.grpc.setReady(ready)
	}
}

// ListenAndServe starts the health check servers.
// It blocks until the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s.grpc != nil {
		go func() {
			if err := s.grpc.listenAndServe(ctx); err != nil {
				slog.Error("grpc health server failed", "error", err)
			}
		}()
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleProbe)
	mux.HandleFunc("GET /readyz", s.handleProbe)

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           mux,
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

func (s *Server) handleProbe(w http.ResponseWriter, _ *http.Request) {
	if !s.ready.Load() {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "not_ready"})
		return
	}
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
