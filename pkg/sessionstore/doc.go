// Package sessionstore keeps the index of known sessions so the gateway can
// restore them after a restart.
//
// Only the last snapshot of each session is stored: id, state, last error,
// retry count and update time. Pairing payloads are never persisted; a
// restored session asks the client for a fresh one.
//
// Two implementations of session.Store are provided:
//
//   - MemoryStore keeps records in process memory (the default).
//   - RedisStore keeps records in one Redis hash, each value CBOR encoded.
//
// Example:
//
//	client, _ := redis.Connect(ctx, cfg)
//	store := sessionstore.NewRedisStore(client, sessionstore.WithKey("sessiongate:sessions"))
//	mgr := session.NewManager(factory, enc, session.WithStore(store))
//	n, err := mgr.Restore(ctx)
package sessionstore
