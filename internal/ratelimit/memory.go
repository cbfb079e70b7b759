package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// MemoryLimiter keeps one token bucket per key in process memory.
type MemoryLimiter struct {
	limiters sync.Map // map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewMemoryLimiter allows requests per window with the given burst.
func NewMemoryLimiter(requests int, window time.Duration, burst int) *MemoryLimiter {
	if window <= 0 {
		window = time.Second
	}
	if burst <= 0 {
		burst = requests
	}
	if burst <= 0 {
		burst = 1
	}
	return &MemoryLimiter{
		limit: rate.Limit(float64(requests) / window.Seconds()),
		burst: burst,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	return l.getLimiter(key).Allow(), nil
}

func (l *MemoryLimiter) getLimiter(key string) *rate.Limiter {
	if v, ok := l.limiters.Load(key); ok {
		if lim, ok := v.(*rate.Limiter); ok {
			return lim
		}
	}

	lim := rate.NewLimiter(l.limit, l.burst)
	actual, loaded := l.limiters.LoadOrStore(key, lim)
	if loaded {
		if actualLim, ok := actual.(*rate.Limiter); ok {
			return actualLim
		}
	}
	return lim
}
