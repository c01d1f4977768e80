// Package cache provides a generic, thread-safe LRU cache whose entries
// expire after a fixed time to live.
//
// The automation client keeps resolved chat ids in it so repeated sends to
// the same number skip the lookup round trip:
//
//	resolved := cache.New[string, string](1024, cache.WithTTL(time.Hour))
//	resolved.Put("15551234567", "15551234567@c.us")
//	chatID, ok := resolved.Get("15551234567")
//
// Get treats an expired entry as missing and drops it. When the cache is
// full, Put evicts the least recently used entry.
package cache
