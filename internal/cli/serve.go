package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"shareit/internal/api"
	"shareit/internal/broker"
	"shareit/internal/config"
	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/metrics"
	"shareit/internal/ratelimit"
	"shareit/internal/worker"
)

const readinessInterval = 15 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the REST and gRPC APIs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	cfg, logger, closer, err := loadConfigAndLogger("serve")
	if err != nil {
		return err
	}
	defer closeQuietly(closer)

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.Database, &logger)
	if err != nil {
		logger.Error().Err(err).Str("driver", cfg.Database.Driver).Msg("init database")
		return err
	}
	defer db.Close()

	bus := events.NewEventBus()
	if cfg.Monitoring.PrometheusEnabled {
		metrics.Register()
		metrics.Subscribe(bus)
	}

	var wg sync.WaitGroup
	publisher := startOutbox(ctx, &wg, cfg, db, bus, &logger)
	defer closeQuietly(publisher)

	limiter, redisClient := initLimiter(ctx, cfg, &logger)
	defer closeQuietly(redisClient)

	// Background loops must exit before their dependencies are closed.
	defer func() {
		stop()
		wg.Wait()
	}()

	httpServer := api.NewHTTPServer(&cfg.API, newServices(db, bus, cfg, &logger), db, limiter, &logger)

	var grpcServer *api.GRPCServer
	if cfg.API.GRPC.Enabled {
		grpcServer, err = api.NewGRPCServer(&cfg.API, db, &logger)
		if err != nil {
			logger.Error().Err(err).Msg("create grpc server")
			return err
		}
	}

	backups := database.NewBackupService(db, cfg.Backup, &logger)
	wg.Add(1)
	go func() {
		defer wg.Done()
		backups.Start(ctx)
	}()

	startMetrics(ctx, &wg, cfg, &logger)

	return startServers(ctx, &wg, grpcServer, httpServer, cfg, &logger)
}

// initLimiter prefers a redis-backed limiter with in-memory fallback.
func initLimiter(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (domain.RateLimiter, io.Closer) {
	rl := cfg.API.RateLimit
	if !rl.Enabled {
		return nil, nil
	}

	window := time.Duration(rl.WindowSeconds) * time.Second
	memory := ratelimit.NewMemoryLimiter(rl.Requests, window, rl.Burst)
	if cfg.Redis.Address == "" {
		return memory, nil
	}

	client := ratelimit.NewRedisClient(cfg.Redis)
	if err := ratelimit.Ping(ctx, client); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, rate limiting in memory until it recovers")
	} else {
		logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	}
	redisLimiter := ratelimit.NewRedisLimiter(client, rl.Requests, window)
	return ratelimit.NewFailover(redisLimiter, memory, logger), client
}

// startOutbox records events and relays them to Kafka when a broker is configured.
func startOutbox(
	ctx context.Context,
	wg *sync.WaitGroup,
	cfg *config.Config,
	db *database.DB,
	bus *events.EventBus,
	logger *zerolog.Logger,
) io.Closer {
	if !cfg.Kafka.Enabled() {
		logger.Info().Msg("kafka is not configured, domain events stay in process")
		return nil
	}

	bus.SubscribeAll(worker.NewOutboxRecorder(db, logger))

	publisher := broker.NewKafkaPublisher(cfg.Kafka, logger)
	retry := worker.DefaultRetryPolicy()
	retry.MaxRetries = cfg.Kafka.MaxRetries

	relay := worker.NewOutboxWorker(
		db,
		publisher,
		retry,
		time.Duration(cfg.Kafka.PollInterval)*time.Millisecond,
		cfg.Kafka.BatchSize,
		logger,
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		relay.Start(ctx)
	}()
	return publisher
}

func startMetrics(ctx context.Context, wg *sync.WaitGroup, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	srv := metrics.NewServer(cfg.Monitoring.PrometheusPort)
	wg.Add(2)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	go func() {
		defer wg.Done()
		logger.Info().Str("addr", srv.Addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("metrics server error")
		}
	}()
}

func startServers(
	ctx context.Context,
	wg *sync.WaitGroup,
	grpcServer *api.GRPCServer,
	httpServer *api.HTTPServer,
	cfg *config.Config,
	logger *zerolog.Logger,
) error {
	errCh := make(chan error, 2)

	if grpcServer != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			grpcServer.WatchReadiness(ctx, readinessInterval)
		}()
		go func() {
			if err := grpcServer.Serve(); err != nil {
				errCh <- fmt.Errorf("grpc server: %w", err)
			}
		}()
	}

	go func() {
		if err := httpServer.Start(); err != nil {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	logger.Info().
		Int("http_port", cfg.API.HTTP.Port).
		Bool("grpc_enabled", grpcServer != nil).
		Msg("shareit started")

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case runErr = <-errCh:
		logger.Error().Err(runErr).Msg("server stopped unexpectedly")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if grpcServer != nil {
		grpcServer.Shutdown(shutdownCtx)
	}
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("http shutdown")
	}

	logger.Info().Msg("shareit stopped")
	return runErr
}
