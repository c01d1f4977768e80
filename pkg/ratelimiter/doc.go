// Package ratelimiter implements a keyed token bucket.
//
// The gateway uses it to throttle outgoing messages per session: each send
// consumes one token from the bucket keyed by the session id, and a bucket
// refills RefillRate tokens every RefillInterval up to Capacity. Messaging
// networks ban accounts that burst, so the limit lives in front of the client
// rather than in the automation binary.
//
// # Usage
//
//	store := ratelimiter.NewMemoryStore()
//	defer store.Close()
//
//	limiter, err := ratelimiter.NewBucket(store, ratelimiter.Config{
//	    Capacity:       20,
//	    RefillRate:     1,
//	    RefillInterval: 3 * time.Second,
//	})
//
//	res, err := limiter.Allow(ctx, sessionID)
//	if err == nil && !res.Allowed() {
//	    // retry after res.RetryAfter()
//	}
package ratelimiter
