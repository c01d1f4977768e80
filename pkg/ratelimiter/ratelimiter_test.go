package ratelimiter_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessiongate/pkg/ratelimiter"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestNewBucket_Validation(t *testing.T) {
	t.Parallel()

	store := ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(0))
	tests := []struct {
		name   string
		config ratelimiter.Config
	}{
		{name: "zero capacity", config: ratelimiter.Config{Capacity: 0, RefillRate: 1, RefillInterval: time.Second}},
		{name: "zero refill rate", config: ratelimiter.Config{Capacity: 1, RefillRate: 0, RefillInterval: time.Second}},
		{name: "zero interval", config: ratelimiter.Config{Capacity: 1, RefillRate: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ratelimiter.NewBucket(store, tt.config)
			require.ErrorIs(t, err, ratelimiter.ErrInvalidConfig)
		})
	}
}

func TestBucket_AllowAndRefill(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	store := ratelimiter.NewMemoryStore(
		ratelimiter.WithCleanupInterval(0),
		ratelimiter.WithClock(clock.Now),
	)
	defer store.Close()

	b, err := ratelimiter.NewBucket(store, ratelimiter.Config{Capacity: 2, RefillRate: 1, RefillInterval: time.Second})
	require.NoError(t, err)

	ctx := context.Background()
	for range 2 {
		res, err := b.Allow(ctx, "s1")
		require.NoError(t, err)
		assert.True(t, res.Allowed())
	}

	res, err := b.Allow(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, res.Allowed())
	assert.Equal(t, 2, res.Limit)

	other, err := b.Allow(ctx, "s2")
	require.NoError(t, err)
	assert.True(t, other.Allowed(), "buckets are keyed per session")

	clock.Advance(time.Second)
	res, err = b.Allow(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, res.Allowed())
	assert.Equal(t, 0, res.Remaining)
}

func TestBucket_DeniedRequestsDoNotConsume(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	store := ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(0), ratelimiter.WithClock(clock.Now))
	b, err := ratelimiter.NewBucket(store, ratelimiter.Config{Capacity: 1, RefillRate: 1, RefillInterval: time.Second})
	require.NoError(t, err)

	ctx := context.Background()
	_, err = b.Allow(ctx, "s1")
	require.NoError(t, err)
	for range 5 {
		res, err := b.Allow(ctx, "s1")
		require.NoError(t, err)
		assert.False(t, res.Allowed())
	}

	clock.Advance(time.Second)
	res, err := b.Allow(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, res.Allowed())
}

func TestBucket_ResetAndInvalidCount(t *testing.T) {
	t.Parallel()

	store := ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(0))
	b, err := ratelimiter.NewBucket(store, ratelimiter.Config{Capacity: 1, RefillRate: 1, RefillInterval: time.Hour})
	require.NoError(t, err)

	ctx := context.Background()
	_, err = b.AllowN(ctx, "s1", 0)
	require.ErrorIs(t, err, ratelimiter.ErrInvalidTokenCount)

	_, _ = b.Allow(ctx, "s1")
	res, _ := b.Allow(ctx, "s1")
	require.False(t, res.Allowed())
	assert.Greater(t, res.RetryAfter(), time.Duration(0))

	require.NoError(t, b.Reset(ctx, "s1"))
	res, err = b.Allow(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, res.Allowed())
	assert.Zero(t, res.RetryAfter())
}

func TestMemoryStore_CloseIsIdempotent(t *testing.T) {
	t.Parallel()

	store := ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(time.Millisecond))
	store.Close()
	store.Close()
}
