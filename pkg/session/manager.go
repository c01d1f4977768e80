package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/sessiongate/pkg/backoff"
	"github.com/dmitrymomot/sessiongate/pkg/broadcast"
	"github.com/dmitrymomot/sessiongate/pkg/logger"
	"github.com/dmitrymomot/sessiongate/pkg/validator"
)

const (
	defaultSendTimeout = 30 * time.Second
	changesBufferSize  = 32
	storeTimeout       = 5 * time.Second
	pairingContentType = "image/png"
)

// Manager is the entry point for every session operation.
type Manager struct {
	registry    *Registry
	factory     ClientFactory
	encoder     Encoder
	policy      backoff.Policy
	store       Store
	writer      *storeWriter
	limiter     Limiter
	logger      *slog.Logger
	sendTimeout time.Duration
	printer     func(sessionID, payload string)
	now         func() time.Time

	changes *broadcast.MemoryBroadcaster[Change]
	started time.Time

	// lifecycle orders session creation against Shutdown.
	lifecycle sync.RWMutex
	closed    atomic.Bool
}

// NewManager creates a manager that builds clients with factory and renders
// pairing codes with encoder.
func NewManager(factory ClientFactory, encoder Encoder, opts ...Option) *Manager {
	m := &Manager{
		registry:    NewRegistry(),
		factory:     factory,
		encoder:     encoder,
		policy:      backoff.Default(),
		logger:      slog.Default(),
		sendTimeout: defaultSendTimeout,
		now:         time.Now,
		changes:     broadcast.NewMemoryBroadcaster[Change](changesBufferSize),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With(logger.Component("session"))
	m.started = m.now()
	if m.store != nil {
		m.writer = newStoreWriter(m.store, m.logger, storeTimeout)
	}
	return m
}

// ValidateID reports ErrInvalidSessionID for ids that cannot be used as a
// credential directory name.
func ValidateID(id string) error {
	if err := validator.Apply(validator.ValidSessionID("id", id)); err != nil {
		return errors.Join(ErrInvalidSessionID, err)
	}
	return nil
}

// CreateOrGet returns the session for id, creating and initializing it on
// first use. Concurrent callers for the same id share one session.
func (m *Manager) CreateOrGet(ctx context.Context, id string) (Snapshot, error) {
	h, err := m.handle(ctx, id)
	if err != nil {
		return Snapshot{}, err
	}
	return h.Snapshot(), nil
}

func (m *Manager) handle(ctx context.Context, id string) (*Handle, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}

	for {
		h, err := m.getOrCreate(id)
		if err != nil {
			return nil, err
		}
		if h.Snapshot().State != StateClosed {
			return h, nil
		}

		// A concurrent Close is tearing this handle down; wait and replace it.
		select {
		case <-h.done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		m.registry.Remove(id, h)
	}
}

func (m *Manager) getOrCreate(id string) (*Handle, error) {
	m.lifecycle.RLock()
	defer m.lifecycle.RUnlock()
	if m.closed.Load() {
		return nil, ErrManagerClosed
	}
	h, created := m.registry.GetOrCreate(id)
	if created {
		m.start(h)
	}
	return h, nil
}

func (m *Manager) start(h *Handle) {
	if !h.started.CompareAndSwap(false, true) {
		return
	}
	m.logger.Info("session created", logger.SessionID(h.id))
	m.persist(h.Snapshot())

	c := &controller{
		h:        h,
		factory:  m.factory,
		policy:   m.policy,
		logger:   m.logger,
		now:      m.now,
		onChange: m.onChange,
	}
	go c.run()
}

func (m *Manager) onChange(prev, next Snapshot, ev Event) {
	if m.printer != nil && next.PairingPayload != "" && next.PairingPayload != prev.PairingPayload {
		m.printer(next.ID, next.PairingPayload)
	}
	if next.State != StateClosed {
		m.persist(next)
	}
	m.changes.Broadcast(broadcast.Message[Change]{Data: Change{
		Previous: prev.State,
		Event:    ev.Kind,
		Snapshot: next,
	}})
}

func (m *Manager) persist(snap Snapshot) {
	if m.writer != nil {
		m.writer.save(snap)
	}
}

// Get returns the current snapshot without creating the session.
func (m *Manager) Get(id string) (Snapshot, error) {
	h, ok := m.registry.Get(id)
	if !ok {
		return Snapshot{}, ErrSessionNotFound
	}
	return h.Snapshot(), nil
}

// PairingArtifact renders the current pairing payload of id, creating the
// session if needed. It fails with ErrPairingNotAvailable unless the session
// is awaiting pairing and the client has produced a payload.
func (m *Manager) PairingArtifact(ctx context.Context, id string) (Artifact, error) {
	snap, err := m.CreateOrGet(ctx, id)
	if err != nil {
		return Artifact{}, err
	}
	return m.EncodePairing(snap)
}

// EncodePairing renders the pairing payload carried by snap. It never
// creates or touches a session.
func (m *Manager) EncodePairing(snap Snapshot) (Artifact, error) {
	if !snap.QRNeeded() {
		return Artifact{}, errors.Join(ErrPairingNotAvailable, fmt.Errorf("session %q is %s", snap.ID, snap.State))
	}

	img, err := m.encoder.Encode(snap.PairingPayload)
	if err != nil {
		return Artifact{}, fmt.Errorf("encode pairing payload: %w", err)
	}

	return Artifact{
		SessionID:   snap.ID,
		Payload:     snap.PairingPayload,
		Image:       img,
		ContentType: pairingContentType,
	}, nil
}

// Send delivers text to rawRecipient through a ready session.
func (m *Manager) Send(ctx context.Context, id, rawRecipient, text string) (Confirmation, error) {
	h, ok := m.registry.Get(id)
	if !ok {
		return Confirmation{}, ErrSessionNotFound
	}

	snap := h.Snapshot()
	client := h.currentClient()
	if !snap.Ready() || client == nil {
		return Confirmation{}, errors.Join(ErrSessionNotReady, fmt.Errorf("session %q is %s", id, snap.State))
	}

	recipient := strings.TrimSpace(rawRecipient)
	if recipient == "" {
		return Confirmation{}, ErrInvalidRecipient
	}

	if m.limiter != nil {
		res, err := m.limiter.Allow(ctx, id)
		if err != nil {
			return Confirmation{}, errors.Join(ErrSendFailed, err)
		}
		if !res.Allowed() {
			return Confirmation{}, errors.Join(ErrRateLimited, RetryAfterError{After: res.RetryAfter()})
		}
	}

	ctx, cancel := context.WithTimeout(ctx, m.sendTimeout)
	defer cancel()

	chatID, found, err := client.ResolveCanonicalID(ctx, recipient)
	if err != nil {
		return Confirmation{}, errors.Join(ErrSendFailed, fmt.Errorf("resolve recipient: %w", err))
	}
	if !found || chatID == "" {
		return Confirmation{}, errors.Join(ErrInvalidRecipient, fmt.Errorf("%q is not registered", recipient))
	}

	start := m.now()
	if err := client.SendMessage(ctx, chatID, text); err != nil {
		m.logger.Warn("message delivery failed",
			logger.SessionID(id),
			logger.Recipient(chatID),
			logger.Error(err),
		)
		return Confirmation{}, errors.Join(ErrSendFailed, err)
	}

	sentAt := m.now()
	m.logger.Info("message sent",
		logger.SessionID(id),
		logger.Recipient(chatID),
		logger.Duration(sentAt.Sub(start)),
	)
	return Confirmation{SessionID: id, Recipient: chatID, SentAt: sentAt}, nil
}

// Health summarizes every registered session.
func (m *Manager) Health() Health {
	handles := m.registry.List()
	snaps := make([]Snapshot, 0, len(handles))
	for _, h := range handles {
		snaps = append(snaps, h.Snapshot())
	}
	return Health{
		Status:   summarize(snaps),
		Sessions: snaps,
		Uptime:   m.now().Sub(m.started),
	}
}

// Repair restarts a session stuck in auth_failed or disconnected. Other
// states are left untouched.
func (m *Manager) Repair(ctx context.Context, id string) (Snapshot, error) {
	h, ok := m.registry.Get(id)
	if !ok {
		return Snapshot{}, ErrSessionNotFound
	}
	if err := h.command(ctx, EventRepair); err != nil {
		return Snapshot{}, err
	}
	return h.Snapshot(), nil
}

// Close stops the session, closes its client and forgets it. The next
// CreateOrGet for the same id builds a fresh session.
func (m *Manager) Close(ctx context.Context, id string) error {
	h, ok := m.registry.Get(id)
	if !ok {
		return ErrSessionNotFound
	}
	if err := m.stop(ctx, h); err != nil {
		return err
	}

	if m.writer != nil {
		_ = m.writer.remove(ctx, id)
	}
	if r, ok := m.limiter.(interface {
		Reset(ctx context.Context, key string) error
	}); ok {
		if err := r.Reset(ctx, id); err != nil {
			m.logger.Warn("failed to reset send limit", logger.SessionID(id), logger.Error(err))
		}
	}
	m.registry.Remove(id, h)
	m.logger.Info("session closed", logger.SessionID(id))
	return nil
}

func (m *Manager) stop(ctx context.Context, h *Handle) error {
	if err := h.command(ctx, EventClose); err != nil && !errors.Is(err, ErrSessionClosed) {
		return err
	}
	select {
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Restore recreates every session found in the store.
func (m *Manager) Restore(ctx context.Context) (int, error) {
	if m.store == nil {
		return 0, nil
	}
	snaps, err := m.store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list persisted sessions: %w", err)
	}

	var restored int
	for _, s := range snaps {
		if _, err := m.CreateOrGet(ctx, s.ID); err != nil {
			m.logger.Warn("failed to restore session", logger.SessionID(s.ID), logger.Error(err))
			continue
		}
		restored++
	}
	return restored, nil
}

// Subscribe streams snapshot changes until ctx ends or the subscriber is closed.
func (m *Manager) Subscribe(ctx context.Context) broadcast.Subscriber[Change] {
	return m.changes.Subscribe(ctx)
}

// Shutdown closes every session. Persisted sessions are kept so they can be
// restored on the next start.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.lifecycle.Lock()
	first := m.closed.CompareAndSwap(false, true)
	handles := m.registry.List()
	m.lifecycle.Unlock()
	if !first {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, h := range handles {
		g.Go(func() error {
			return m.stop(gctx, h)
		})
	}
	err := g.Wait()

	if m.writer != nil {
		if werr := m.writer.close(ctx); werr != nil {
			err = errors.Join(err, werr)
		}
	}

	if cerr := m.changes.Close(); cerr != nil {
		err = errors.Join(err, cerr)
	}
	return err
}
