package ratelimiter

import (
	"context"
	"time"
)

// Store persists bucket state.
type Store interface {
	// ConsumeTokens refills the bucket for key as of now and takes tokens from
	// it when enough are available. remaining is the balance after the
	// attempt; a negative value means the attempt was denied and the bucket was
	// left untouched. tokens == 0 only reports the current balance.
	ConsumeTokens(ctx context.Context, key string, tokens int, now time.Time, cfg Config) (remaining int, resetAt time.Time, err error)

	// Reset clears the state for key.
	Reset(ctx context.Context, key string) error
}
