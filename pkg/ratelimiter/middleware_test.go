package ratelimiter_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/lifevault/pkg/ratelimiter"
)

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (*ratelimiter.Result, error) {
	return nil, ratelimiter.ErrStoreUnavailable
}

func (failingLimiter) Reset(context.Context, string) error { return nil }

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	b := newTestBucket(t, newMemoryStore(t), newFakeClock())
	var limitedCalled bool
	h := ratelimiter.Middleware(b, ratelimiter.Static("login"),
		ratelimiter.WithLimitedHandler(func(w http.ResponseWriter, _ *http.Request, res *ratelimiter.Result) {
			limitedCalled = true
			w.WriteHeader(http.StatusTooManyRequests)
		}),
	)(okHandler())

	for range testConfig.Capacity {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
		require.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.True(t, limitedCalled)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
}

func TestMiddlewareEmptyKeySkips(t *testing.T) {
	t.Parallel()

	h := ratelimiter.Middleware(failingLimiter{}, ratelimiter.Static(""))(okHandler())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestMiddlewareStoreError(t *testing.T) {
	t.Parallel()

	var got error
	h := ratelimiter.Middleware(failingLimiter{}, ratelimiter.Static("k"),
		ratelimiter.WithErrorHandler(func(w http.ResponseWriter, _ *http.Request, err error) {
			got = err
			w.WriteHeader(http.StatusServiceUnavailable)
		}),
	)(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.True(t, errors.Is(got, ratelimiter.ErrStoreUnavailable))
}

func TestComposite(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)

	assert.Equal(t, "", ratelimiter.Composite(ratelimiter.Static(""))(req))
	assert.Equal(t, "a:b", ratelimiter.Composite(ratelimiter.Static("a"), ratelimiter.Static(""), ratelimiter.Static("b"))(req))

	long := ratelimiter.Composite(ratelimiter.Static(strings.Repeat("x", 40)), ratelimiter.Static(strings.Repeat("y", 40)))(req)
	assert.LessOrEqual(t, len(long), 13)
	assert.NotContains(t, long, ":")
}
