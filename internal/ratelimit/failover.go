package ratelimit

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"shareit/internal/domain"
	"shareit/internal/logging"
)

const recoveryInterval = time.Minute

// Failover uses primary until it errors, then serves from fallback and
// retries primary once per recovery interval.
type Failover struct {
	primary   domain.RateLimiter
	fallback  domain.RateLimiter
	logger    zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64
	now       func() time.Time
}

func NewFailover(primary, fallback domain.RateLimiter, logger *zerolog.Logger) *Failover {
	return &Failover{
		primary:  primary,
		fallback: fallback,
		logger:   logging.Component(logger, "ratelimit"),
		now:      time.Now,
	}
}

func (f *Failover) Allow(ctx context.Context, key string) (bool, error) {
	if !f.isDown.Load() {
		allowed, err := f.primary.Allow(ctx, key)
		if err == nil {
			return allowed, nil
		}
		f.logger.Error().Err(err).Msg("primary rate limiter failed, falling back to memory")
		f.markDown()
	} else if f.now().Sub(time.Unix(0, f.lastCheck.Load())) > recoveryInterval {
		allowed, err := f.primary.Allow(ctx, key)
		if err == nil {
			f.logger.Info().Msg("primary rate limiter recovered")
			f.isDown.Store(false)
			return allowed, nil
		}
		f.markDown()
	}

	return f.fallback.Allow(ctx, key)
}

// Degraded reports whether requests are currently served by the fallback.
func (f *Failover) Degraded() bool {
	return f.isDown.Load()
}

func (f *Failover) markDown() {
	f.isDown.Store(true)
	f.lastCheck.Store(f.now().UnixNano())
}
