package session_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessiongate/pkg/session"
)

func TestRegistry_GetOrCreate(t *testing.T) {
	t.Parallel()

	r := session.NewRegistry()

	h, created := r.GetOrCreate("s1")
	require.True(t, created)
	assert.Equal(t, "s1", h.ID())
	assert.Equal(t, session.StateInitializing, h.Snapshot().State)

	again, created := r.GetOrCreate("s1")
	assert.False(t, created)
	assert.Same(t, h, again)

	got, ok := r.Get("s1")
	require.True(t, ok)
	assert.Same(t, h, got)

	_, ok = r.Get("s2")
	assert.False(t, ok)
}

func TestRegistry_ConcurrentGetOrCreate(t *testing.T) {
	t.Parallel()

	r := session.NewRegistry()

	const workers = 64
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		handles = make(map[*session.Handle]struct{})
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h, c := r.GetOrCreate("shared")
			mu.Lock()
			defer mu.Unlock()
			handles[h] = struct{}{}
			if c {
				created++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Len(t, handles, 1)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_ListIsSorted(t *testing.T) {
	t.Parallel()

	r := session.NewRegistry()
	for _, id := range []string{"c", "a", "b"} {
		r.GetOrCreate(id)
	}

	var ids []string
	for _, h := range r.List() {
		ids = append(ids, h.ID())
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}

func TestRegistry_RemoveComparesHandle(t *testing.T) {
	t.Parallel()

	r := session.NewRegistry()
	old, _ := r.GetOrCreate("s1")
	require.True(t, r.Remove("s1", old))

	fresh, created := r.GetOrCreate("s1")
	require.True(t, created)

	assert.False(t, r.Remove("s1", old), "a stale handle must not evict its replacement")
	got, ok := r.Get("s1")
	require.True(t, ok)
	assert.Same(t, fresh, got)
}
