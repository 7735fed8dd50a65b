// Package ratelimiter throttles repeated attempts with a token bucket whose
// state lives in a pluggable Store.
//
// Each key (typically "2fa:<user id>") owns a bucket of Capacity tokens that
// refills by RefillRate tokens every RefillInterval. An attempt consumes one
// token; when the bucket cannot cover the request the attempt is denied and
// nothing is consumed, so a flood of rejected attempts does not extend the
// lockout.
//
// Two stores are provided:
//
//   - MemoryStore keeps buckets in a mutex-guarded map and evicts stale ones
//     in the background. Suitable for a single process and for tests.
//   - RedisStore runs the refill-and-consume step as one Lua script, so
//     several processes share one budget per key.
//
// Usage:
//
//	limiter, err := ratelimiter.NewBucket(ratelimiter.NewMemoryStore(), ratelimiter.Config{
//	    Capacity:       5,
//	    RefillRate:     1,
//	    RefillInterval: time.Minute,
//	})
//	res, err := limiter.Allow(ctx, "2fa:"+userID)
//	if !res.Allowed() {
//	    // reject, advertise res.RetryAfter()
//	}
//
// Middleware applies a Bucket to HTTP handlers keyed by a KeyFunc.
package ratelimiter
