package ratelimiter_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/lifevault/pkg/ratelimiter"
)

func TestMemoryStoreRemoveStale(t *testing.T) {
	t.Parallel()

	store := ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(0), ratelimiter.WithStaleAfter(time.Minute))
	t.Cleanup(store.Close)

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	ctx := context.Background()

	_, _, err := store.ConsumeTokens(ctx, "old", 1, now, testConfig)
	require.NoError(t, err)
	_, _, err = store.ConsumeTokens(ctx, "fresh", 1, now.Add(50*time.Second), testConfig)
	require.NoError(t, err)
	require.Equal(t, 2, store.Len())

	store.RemoveStale(now.Add(90 * time.Second))
	assert.Equal(t, 1, store.Len())
}

func TestMemoryStoreCloseTwice(t *testing.T) {
	t.Parallel()

	store := ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(time.Millisecond))
	assert.NotPanics(t, func() {
		store.Close()
		store.Close()
	})
}
