package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"shareit/internal/config"
	"shareit/internal/domain"
	"shareit/internal/dto"
	"shareit/internal/logging"
	"shareit/internal/metrics"
)

// Services bundles the business services the HTTP API delegates to.
type Services struct {
	Users    domain.UserService
	Items    domain.ItemService
	Bookings domain.BookingService
	Requests domain.RequestService
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HTTPServer exposes the REST API.
type HTTPServer struct {
	cfg       config.APIConfig
	services  Services
	validator *dto.Validator
	limiter   domain.RateLimiter
	health    Pinger
	router    chi.Router
	server    *http.Server
	logger    zerolog.Logger
}

// NewHTTPServer wires the router. limiter and health may be nil.
func NewHTTPServer(
	cfg *config.APIConfig,
	services Services,
	health Pinger,
	limiter domain.RateLimiter,
	logger *zerolog.Logger,
) *HTTPServer {
	srv := &HTTPServer{
		cfg:       *cfg,
		services:  services,
		validator: dto.NewValidator(),
		limiter:   limiter,
		health:    health,
		logger:    logging.Component(logger, "http"),
	}
	if srv.cfg.UserHeader == "" {
		srv.cfg.UserHeader = config.DefaultUserHeader
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.Middleware(logger, srv.cfg.UserHeader))
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)
	if cfg.HTTP.RequestTimeout > 0 {
		r.Use(middleware.Timeout(time.Duration(cfg.HTTP.RequestTimeout) * time.Second))
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/healthz", srv.handleHealth)
	r.Get("/readyz", srv.handleReady)

	r.Group(func(r chi.Router) {
		if srv.limiter != nil && cfg.RateLimit.Enabled {
			r.Use(srv.rateLimit)
		}
		srv.registerUsers(r)
		srv.registerItems(r)
		srv.registerBookings(r)
		srv.registerRequests(r)
	})

	srv.router = r
	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
	return srv
}

// Handler returns the router, mainly for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.router
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.health.PingContext(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("readiness check failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// rateLimit throttles per caller id, falling back to the client address.
// Limiter errors let the request through.
func (s *HTTPServer) rateLimit(next http.Handler) http.Handler {
	retryAfter := strconv.Itoa(max(s.cfg.RateLimit.WindowSeconds, 1))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, err := s.limiter.Allow(r.Context(), s.clientKey(r))
		if err != nil {
			s.logger.Warn().Err(err).Msg("rate limiter unavailable, allowing request")
			next.ServeHTTP(w, r)
			return
		}
		if !allowed {
			metrics.IncRateLimited()
			w.Header().Set("Retry-After", retryAfter)
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientKey buckets by the parsed caller id so "1", "01" and "+1" share a
// bucket. Headers that do not parse fall back to the client address.
func (s *HTTPServer) clientKey(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get(s.cfg.UserHeader))
	if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
		return "user:" + strconv.FormatInt(id, 10)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return "ip:" + host
	}
	if r.RemoteAddr != "" {
		return "ip:" + r.RemoteAddr
	}
	return "unknown"
}
