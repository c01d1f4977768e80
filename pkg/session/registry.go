package session

import (
	"slices"
	"strings"
	"sync"
	"time"
)

// Registry maps session ids to handles. Insertion is exclusive, so racing
// callers for the same id always observe the same handle.
type Registry struct {
	mu      sync.Mutex
	handles map[string]*Handle
	now     func() time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		handles: make(map[string]*Handle),
		now:     time.Now,
	}
}

// GetOrCreate returns the handle for id, inserting a new one if needed.
// created is true only for the caller that inserted it.
func (r *Registry) GetOrCreate(id string) (h *Handle, created bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if h, ok := r.handles[id]; ok {
		return h, false
	}
	h = newHandle(id, r.now())
	r.handles[id] = h
	return h, true
}

// Get looks up a handle without creating it.
func (r *Registry) Get(id string) (*Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.handles[id]
	return h, ok
}

// List returns all handles ordered by id.
func (r *Registry) List() []*Handle {
	r.mu.Lock()
	out := make([]*Handle, 0, len(r.handles))
	for _, h := range r.handles {
		out = append(out, h)
	}
	r.mu.Unlock()

	slices.SortFunc(out, func(a, b *Handle) int { return strings.Compare(a.id, b.id) })
	return out
}

// Remove deletes id only if it still maps to h.
func (r *Registry) Remove(id string, h *Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cur, ok := r.handles[id]; ok && cur == h {
		delete(r.handles, id)
		return true
	}
	return false
}

// Len returns the number of registered sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handles)
}
