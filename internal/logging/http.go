package logging

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Middleware logs one line per HTTP request. userHeader names the caller id header.
func Middleware(logger *zerolog.Logger, userHeader string) func(http.Handler) http.Handler {
	base := Component(logger, "http")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			var event *zerolog.Event
			switch {
			case status >= http.StatusInternalServerError:
				event = base.Error()
			case status >= http.StatusBadRequest:
				event = base.Warn()
			default:
				event = base.Info()
			}

			event.
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("route", RoutePattern(r)).
				Int("status", status).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("user_id", r.Header.Get(userHeader)).
				Msg("http request")
		})
	}
}

// RoutePattern returns the matched chi route, or the raw path outside a chi router.
func RoutePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}
