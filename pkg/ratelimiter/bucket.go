package ratelimiter

import (
	"context"
	"fmt"
	"time"
)

// Limiter is the behaviour consumed by services and the HTTP middleware.
type Limiter interface {
	Allow(ctx context.Context, key string) (*Result, error)
	Reset(ctx context.Context, key string) error
}

// BucketOption configures a Bucket.
type BucketOption func(*Bucket)

// WithClock overrides the time source.
func WithClock(now func() time.Time) BucketOption {
	return func(b *Bucket) {
		if now != nil {
			b.now = now
		}
	}
}

// WithKeyPrefix namespaces every key passed to the store.
func WithKeyPrefix(prefix string) BucketOption {
	return func(b *Bucket) { b.prefix = prefix }
}

// Bucket is a token bucket limiter backed by a Store.
type Bucket struct {
	store  Store
	config Config
	prefix string
	now    func() time.Time
}

func NewBucket(store Store, config Config, opts ...BucketOption) (*Bucket, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store is required", ErrInvalidConfig)
	}
	if err := config.validate(); err != nil {
		return nil, err
	}

	b := &Bucket{store: store, config: config, now: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

func (b *Bucket) Allow(ctx context.Context, key string) (*Result, error) {
	return b.AllowN(ctx, key, 1)
}

func (b *Bucket) AllowN(ctx context.Context, key string, n int) (*Result, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: must be positive, got %d", ErrInvalidTokenCount, n)
	}
	return b.consume(ctx, key, n)
}

// Status reports the current balance without consuming.
func (b *Bucket) Status(ctx context.Context, key string) (*Result, error) {
	return b.consume(ctx, key, 0)
}

func (b *Bucket) Reset(ctx context.Context, key string) error {
	return b.store.Reset(ctx, b.prefix+key)
}

func (b *Bucket) Config() Config {
	return b.config
}

func (b *Bucket) consume(ctx context.Context, key string, n int) (*Result, error) {
	now := b.now()
	remaining, resetAt, err := b.store.ConsumeTokens(ctx, b.prefix+key, n, now, b.config)
	if err != nil {
		return nil, err
	}
	return &Result{
		Limit:     b.config.Capacity,
		Remaining: remaining,
		ResetAt:   resetAt,
		now:       now,
	}, nil
}
