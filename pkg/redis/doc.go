// Package redis connects to Redis with retries and exposes a readiness probe.
//
// Connect parses a redis:// URL, pings until the server answers or the retry
// budget runs out, and returns a *redis.Client from go-redis. The client backs
// the shared rate limiter and the pending two-factor enrollment cache.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
package redis
