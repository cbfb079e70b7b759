package worker

import (
	"math"
	"time"
)

// RetryPolicy defines exponential backoff for outbox deliveries.
type RetryPolicy struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// DefaultRetryPolicy returns the policy used when the config leaves fields unset.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:    5,
		InitialDelay:  2 * time.Second,
		MaxDelay:      time.Minute,
		BackoffFactor: 2,
	}
}

// withDefaults fills zero fields from DefaultRetryPolicy.
func (r RetryPolicy) withDefaults() RetryPolicy {
	d := DefaultRetryPolicy()
	if r.MaxRetries <= 0 {
		r.MaxRetries = d.MaxRetries
	}
	if r.InitialDelay <= 0 {
		r.InitialDelay = d.InitialDelay
	}
	if r.MaxDelay <= 0 {
		r.MaxDelay = d.MaxDelay
	}
	if r.BackoffFactor <= 0 {
		r.BackoffFactor = d.BackoffFactor
	}
	return r
}

// NextDelay returns the delay before attempt (1-based), clamped to MaxDelay.
func (r RetryPolicy) NextDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if r.InitialDelay <= 0 {
		r.InitialDelay = time.Second
	}
	if r.BackoffFactor <= 0 {
		r.BackoffFactor = 2
	}

	delay := float64(r.InitialDelay) * math.Pow(r.BackoffFactor, float64(attempt-1))
	if r.MaxDelay > 0 && delay > float64(r.MaxDelay) {
		return r.MaxDelay
	}
	d := time.Duration(delay)
	if d <= 0 {
		d = time.Second
	}
	return d
}
