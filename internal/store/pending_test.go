package store_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/lifevault/internal/store"
)

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func runPendingContract(t *testing.T, s store.PendingStore) {
	ctx := context.Background()
	userID := uuid.New()

	_, err := s.GetPending(ctx, userID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	codes := []string{"AAAA0000", "BBBB1111"}
	require.NoError(t, s.PutPending(ctx, userID, codes, time.Minute))

	got, err := s.GetPending(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, codes, got)

	require.NoError(t, s.PutPending(ctx, userID, []string{"CCCC2222"}, time.Minute))
	got, err = s.GetPending(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, []string{"CCCC2222"}, got)

	require.NoError(t, s.DeletePending(ctx, userID))
	_, err = s.GetPending(ctx, userID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	require.NoError(t, s.DeletePending(ctx, userID))
}

func TestMemoryPendingStore(t *testing.T) {
	t.Parallel()

	runPendingContract(t, store.NewMemoryPendingStore(nil))

	t.Run("expires", func(t *testing.T) {
		t.Parallel()
		clock := &manualClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
		s := store.NewMemoryPendingStore(clock.Now)
		userID := uuid.New()

		require.NoError(t, s.PutPending(context.Background(), userID, []string{"AAAA0000"}, time.Minute))
		clock.Advance(59 * time.Second)
		_, err := s.GetPending(context.Background(), userID)
		require.NoError(t, err)

		clock.Advance(time.Second)
		_, err = s.GetPending(context.Background(), userID)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestRedisPendingStore(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	opts, err := goredis.ParseURL(url)
	require.NoError(t, err)
	client := goredis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })

	runPendingContract(t, store.NewRedisPendingStore(client, "test:pending:"+uuid.NewString()+":"))
}
