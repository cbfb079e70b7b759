package api

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"shareit/internal/config"
	"shareit/internal/logging"
)

// HealthService is the service name reported alongside the overall ("") status.
const HealthService = "shareit"

// GRPCServer exposes the standard gRPC health protocol backed by the database ping.
type GRPCServer struct {
	cfg      *config.APIConfig
	db       Pinger
	server   *grpc.Server
	health   *health.Server
	listener net.Listener
	log      zerolog.Logger
}

func NewGRPCServer(cfg *config.APIConfig, db Pinger, logger *zerolog.Logger) (*GRPCServer, error) {
	addr := fmt.Sprintf(":%d", cfg.GRPC.Port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("grpc listen %s: %w", addr, err)
	}
	return newGRPCServer(cfg, db, lis, logger), nil
}

func newGRPCServer(cfg *config.APIConfig, db Pinger, lis net.Listener, logger *zerolog.Logger) *GRPCServer {
	unary := ChainUnaryInterceptors(
		RecoveryUnaryInterceptor(logger),
		LoggingUnaryInterceptor(logger),
	)
	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(unary))

	hs := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, hs)

	if cfg.GRPC.Reflection {
		reflection.Register(grpcServer)
	}

	return &GRPCServer{
		cfg:      cfg,
		db:       db,
		server:   grpcServer,
		health:   hs,
		listener: lis,
		log:      logging.Component(logger, "grpc"),
	}
}

func (s *GRPCServer) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *GRPCServer) Serve() error {
	s.log.Info().Str("addr", s.Addr()).Msg("gRPC API listening")
	return s.server.Serve(s.listener)
}

// CheckReadiness pings the database and publishes the result as the health status.
func (s *GRPCServer) CheckReadiness(ctx context.Context) {
	status := healthpb.HealthCheckResponse_SERVING
	if s.db != nil {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := s.db.PingContext(pingCtx)
		cancel()
		if err != nil {
			s.log.Warn().Err(err).Msg("database ping failed")
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(HealthService, status)
}

// WatchReadiness refreshes the health status every interval until ctx is done.
func (s *GRPCServer) WatchReadiness(ctx context.Context, interval time.Duration) {
	s.CheckReadiness(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.CheckReadiness(ctx)
		}
	}
}

func (s *GRPCServer) Shutdown(ctx context.Context) {
	if s.server == nil {
		return
	}
	s.health.Shutdown()

	done := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.log.Warn().Msg("gRPC graceful shutdown timed out; forcing stop")
		s.server.Stop()
	case <-time.After(10 * time.Second):
		s.log.Warn().Msg("gRPC graceful shutdown timed out; forcing stop")
		s.server.Stop()
	}
}
