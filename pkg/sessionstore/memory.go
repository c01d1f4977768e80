package sessionstore

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/dmitrymomot/sessiongate/pkg/session"
)

// MemoryStore implements session.Store in process memory. Records are kept
// in their encoded form so both stores share one representation.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string][]byte
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string][]byte)}
}

func (s *MemoryStore) Save(_ context.Context, snap session.Snapshot) error {
	data, err := encodeSnapshot(snap)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.records[snap.ID] = data
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.records, id)
	s.mu.Unlock()
	return nil
}

// List returns every record ordered by session id.
func (s *MemoryStore) List(_ context.Context) ([]session.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]session.Snapshot, 0, len(s.records))
	for _, data := range s.records {
		snap, err := decodeSnapshot(data)
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	slices.SortFunc(out, func(a, b session.Snapshot) int { return strings.Compare(a.ID, b.ID) })
	return out, nil
}
