package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

const inboxSize = 16

// Handle is the registry entry of one session. Its snapshot is written only
// by the session's controller.
type Handle struct {
	id   string
	snap atomic.Pointer[Snapshot]

	mu     sync.RWMutex
	client Client

	inbox   chan Event
	done    chan struct{}
	ctx     context.Context
	cancel  context.CancelFunc
	started atomic.Bool
}

func newHandle(id string, now time.Time) *Handle {
	ctx, cancel := context.WithCancel(context.Background())
	h := &Handle{
		id:     id,
		inbox:  make(chan Event, inboxSize),
		done:   make(chan struct{}),
		ctx:    ctx,
		cancel: cancel,
	}
	h.snap.Store(&Snapshot{ID: id, State: StateInitializing, UpdatedAt: now})
	return h
}

// ID returns the session id.
func (h *Handle) ID() string { return h.id }

// Snapshot returns the current state without blocking.
func (h *Handle) Snapshot() Snapshot { return *h.snap.Load() }

// Done is closed once the controller has stopped.
func (h *Handle) Done() <-chan struct{} { return h.done }

func (h *Handle) currentClient() Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.client
}

func (h *Handle) setClient(c Client) {
	h.mu.Lock()
	h.client = c
	h.mu.Unlock()
}

// post queues ev for the controller. It returns false if the controller has
// stopped or ctx ended first.
func (h *Handle) post(ctx context.Context, ev Event) bool {
	select {
	case h.inbox <- ev:
		return true
	case <-h.done:
		return false
	case <-ctx.Done():
		return false
	}
}

// command posts ev and waits until the controller has applied it.
func (h *Handle) command(ctx context.Context, kind EventKind) error {
	ev := Event{Kind: kind, ack: make(chan struct{})}
	if !h.post(ctx, ev) {
		if err := ctx.Err(); err != nil {
			return err
		}
		return ErrSessionClosed
	}
	select {
	case <-ev.ack:
		return nil
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
