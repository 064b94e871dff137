// Package grpc serves the standard grpc.health.v1 service so orchestrators
// can probe the marketplace over gRPC.
package grpc

import (
	"context"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/businessinrwanda/marketplace/internal/logging"
)

const defaultCheckInterval = 10 * time.Second

// HealthServer reports SERVING while ping succeeds and NOT_SERVING
// otherwise and during shutdown.
type HealthServer struct {
	address       string
	logger        logging.Logger
	ping          func(ctx context.Context) error
	health        *health.Server
	checkInterval time.Duration
}

func NewHealthServer(a string, l logging.Logger, ping func(ctx context.Context) error) *HealthServer {
	return &HealthServer{
		address:       a,
		logger:        l.With("module", "grpc_health"),
		ping:          ping,
		health:        health.NewServer(),
		checkInterval: defaultCheckInterval,
	}
}

func (s *HealthServer) Run(ctx context.Context) error {
	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.serve(ctx, listen)
}

func (s *HealthServer) serve(ctx context.Context, listen net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor))
	healthpb.RegisterHealthServer(srv, s.health)

	s.refresh(ctx)
	go s.watch(ctx)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC health server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC health server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil {
		return err
	}
	return nil
}

func (s *HealthServer) watch(ctx context.Context) {
	t := time.NewTicker(s.checkInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.refresh(ctx)
		}
	}
}

// refresh sets the overall ("") service status from one ping.
func (s *HealthServer) refresh(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	status := healthpb.HealthCheckResponse_SERVING
	if err := s.ping(ctx); err != nil {
		s.logger.Warn(ctx, "database ping failed", "error", err)
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus("", status)
}
