package health

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// GRPCServer exposes the standard grpc.health.v1 service so infrastructure
// that probes over gRPC can watch the daemon without an HTTP round trip.
type GRPCServer struct {
	port   int
	server *grpc.Server
	health *grpchealth.Server
}

func newGRPCServer(port int) *GRPCServer {
	return &GRPCServer{
		port:   port,
		health: grpchealth.NewServer(),
	}
}

func (g *GRPCServer) setReady(ready bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if ready {
		status = healthpb.HealthCheckResponse_SERVING
	}
	// Empty service name covers the whole daemon.
	g.health.SetServingStatus("", status)
}

func (g *GRPCServer) listenAndServe(ctx context.Context) error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", g.port))
	if err != nil {
		return fmt.Errorf("grpc health listen: %w", err)
	}

	g.server = grpc.NewServer()
	healthpb.RegisterHealthServer(g.server, g.health)

	slog.Info("grpc health server listening", "port", g.port)

	go func() {
		<-ctx.Done()
		g.server.GracefulStop()
	}()

	return g.server.Serve(lis)
}
