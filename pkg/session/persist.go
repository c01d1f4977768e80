package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/sessiongate/pkg/logger"
)

// storeWriter applies store operations on its own goroutine so neither
// callers nor controllers wait for the store. Saves queued for the same
// session are coalesced; only the newest snapshot is written.
type storeWriter struct {
	store   Store
	logger  *slog.Logger
	timeout time.Duration

	mu      sync.Mutex
	pending map[string]*storeOp
	order   []string
	closed  bool

	wake chan struct{}
	quit chan struct{}
	done chan struct{}
}

type storeOp struct {
	snap    Snapshot
	remove  bool
	waiters []chan error
}

func newStoreWriter(store Store, log *slog.Logger, timeout time.Duration) *storeWriter {
	w := &storeWriter{
		store:   store,
		logger:  log,
		timeout: timeout,
		pending: make(map[string]*storeOp),
		wake:    make(chan struct{}, 1),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go w.run()
	return w
}

// save queues snap and returns immediately.
func (w *storeWriter) save(snap Snapshot) {
	if !w.enqueue(snap.ID, func(op *storeOp) {
		op.snap = snap
		op.remove = false
	}) {
		_ = w.apply(snap.ID, &storeOp{snap: snap})
	}
}

// remove queues the deletion of id behind any pending save and waits for it.
func (w *storeWriter) remove(ctx context.Context, id string) error {
	ack := make(chan error, 1)
	if !w.enqueue(id, func(op *storeOp) {
		op.remove = true
		op.waiters = append(op.waiters, ack)
	}) {
		return w.apply(id, &storeOp{remove: true})
	}
	select {
	case err := <-ack:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *storeWriter) enqueue(id string, update func(*storeOp)) bool {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return false
	}
	op, ok := w.pending[id]
	if !ok {
		op = &storeOp{}
		w.pending[id] = op
		w.order = append(w.order, id)
	}
	update(op)
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
	return true
}

func (w *storeWriter) run() {
	defer close(w.done)
	for {
		select {
		case <-w.wake:
			w.flush()
		case <-w.quit:
			w.flush()
			return
		}
	}
}

func (w *storeWriter) flush() {
	w.mu.Lock()
	pending, order := w.pending, w.order
	w.pending, w.order = make(map[string]*storeOp), nil
	w.mu.Unlock()

	for _, id := range order {
		op := pending[id]
		err := w.apply(id, op)
		for _, ack := range op.waiters {
			ack <- err
		}
	}
}

// apply runs op detached from any request context, bounded by timeout.
func (w *storeWriter) apply(id string, op *storeOp) error {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	if op.remove {
		err := w.store.Delete(ctx, id)
		if err != nil {
			w.logger.Warn("failed to delete persisted session", logger.SessionID(id), logger.Error(err))
		}
		return err
	}
	err := w.store.Save(ctx, op.snap)
	if err != nil {
		w.logger.Warn("failed to persist session", logger.SessionID(id), logger.Error(err))
	}
	return err
}

// close flushes what is queued and stops the writer. Later operations run
// synchronously.
func (w *storeWriter) close(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()
	close(w.quit)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
