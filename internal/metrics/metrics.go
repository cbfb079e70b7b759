package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"shareit/internal/events"
)

const namespace = "shareit"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	rateLimited = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_rate_limited_total",
			Help:      "Requests rejected by the rate limiter.",
		},
	)

	domainEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "domain_events_total",
			Help:      "Domain events published, by type.",
		},
		[]string{"type"},
	)

	outboxDeliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_deliveries_total",
			Help:      "Outbox relay attempts by result.",
		},
		[]string{"result"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, rateLimited, domainEvents, outboxDeliveries)
	})
}

// ObserveHTTP records one finished request.
func ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func IncRateLimited() {
	rateLimited.Inc()
}

// IncOutbox counts a relay attempt; result is completed, retry or failed.
func IncOutbox(result string) {
	outboxDeliveries.WithLabelValues(result).Inc()
}

// Middleware measures every request under its chi route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		ObserveHTTP(r.Method, routeLabel(r), status, time.Since(start))
	})
}

// routeLabel keeps label cardinality bounded for paths no route matched.
func routeLabel(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}

// Subscribe counts every event published on bus.
func Subscribe(bus *events.EventBus) {
	bus.SubscribeAll(func(ev *events.Event) error {
		domainEvents.WithLabelValues(strings.ToLower(ev.Type)).Inc()
		return nil
	})
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// NewServer builds the standalone metrics server.
func NewServer(port int) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	return &http.Server{
		Addr:              ":" + strconv.Itoa(port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
