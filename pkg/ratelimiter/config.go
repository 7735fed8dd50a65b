package ratelimiter

import (
	"fmt"
	"time"
)

// Config defines the token bucket parameters.
type Config struct {
	Capacity       int           `env:"RATELIMIT_CAPACITY" envDefault:"5"`
	RefillRate     int           `env:"RATELIMIT_REFILL_RATE" envDefault:"1"`
	RefillInterval time.Duration `env:"RATELIMIT_REFILL_INTERVAL" envDefault:"1m"`
}

func (c Config) validate() error {
	if c.Capacity <= 0 {
		return fmt.Errorf("%w: capacity must be positive, got %d", ErrInvalidConfig, c.Capacity)
	}
	if c.RefillRate <= 0 {
		return fmt.Errorf("%w: refill rate must be positive, got %d", ErrInvalidConfig, c.RefillRate)
	}
	if c.RefillInterval <= 0 {
		return fmt.Errorf("%w: refill interval must be positive, got %v", ErrInvalidConfig, c.RefillInterval)
	}
	return nil
}

// fullRefillIntervals is the number of intervals after which any bucket is
// full again. Used to cap refill arithmetic and to expire idle state.
func (c Config) fullRefillIntervals() int64 {
	return int64(c.Capacity/c.RefillRate + 1)
}

// Result contains the outcome of a rate limit check.
type Result struct {
	Limit     int
	Remaining int // negative when the attempt was denied
	ResetAt   time.Time
	now       time.Time
}

func (r *Result) Allowed() bool {
	return r.Remaining >= 0
}

// RetryAfter returns how long to wait before the next attempt can succeed.
// Zero when the attempt was allowed.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed() {
		return 0
	}
	now := r.now
	if now.IsZero() {
		now = time.Now()
	}
	if d := r.ResetAt.Sub(now); d > 0 {
		return d
	}
	return 0
}
