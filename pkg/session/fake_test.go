package session_test

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessiongate/pkg/backoff"
	"github.com/dmitrymomot/sessiongate/pkg/logger"
	"github.com/dmitrymomot/sessiongate/pkg/ratelimiter"
	"github.com/dmitrymomot/sessiongate/pkg/session"
)

const waitFor = 2 * time.Second

type sentMessage struct {
	ChatID string
	Text   string
}

type fakeClient struct {
	id     string
	events chan session.Event

	initCalls    atomic.Int32
	resolveCalls atomic.Int32
	sendCalls    atomic.Int32
	closed       atomic.Bool

	mu       sync.Mutex
	initFn   func(ctx context.Context) error
	contacts map[string]string
	sendErr  error
	sent     []sentMessage
}

func newFakeClient(id string) *fakeClient {
	return &fakeClient{
		id:       id,
		events:   make(chan session.Event, 64),
		contacts: map[string]string{"+15551234567": "15551234567@c.us"},
	}
}

func (c *fakeClient) Initialize(ctx context.Context) error {
	c.initCalls.Add(1)
	c.mu.Lock()
	fn := c.initFn
	c.mu.Unlock()
	if fn != nil {
		return fn(ctx)
	}
	return nil
}

func (c *fakeClient) SendMessage(ctx context.Context, chatID, text string) error {
	c.sendCalls.Add(1)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendErr != nil {
		return c.sendErr
	}
	c.sent = append(c.sent, sentMessage{ChatID: chatID, Text: text})
	return nil
}

func (c *fakeClient) ResolveCanonicalID(ctx context.Context, raw string) (string, bool, error) {
	c.resolveCalls.Add(1)
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.contacts[raw]
	return id, ok, nil
}

func (c *fakeClient) Events() <-chan session.Event { return c.events }

func (c *fakeClient) Close() error {
	c.closed.Store(true)
	return nil
}

func (c *fakeClient) emit(ev session.Event) { c.events <- ev }

func (c *fakeClient) setInit(fn func(ctx context.Context) error) {
	c.mu.Lock()
	c.initFn = fn
	c.mu.Unlock()
}

func (c *fakeClient) messages() []sentMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.sent)
}

// fakeFactory records every client it builds. prepare runs before a client
// is handed to the controller so tests can script Initialize.
type fakeFactory struct {
	mu            sync.Mutex
	clients       map[string][]*fakeClient
	constructions atomic.Int32
	err           error
	prepare       func(*fakeClient)
}

func newFakeFactory() *fakeFactory {
	return &fakeFactory{clients: make(map[string][]*fakeClient)}
}

func (f *fakeFactory) New(id string) (session.Client, error) {
	f.constructions.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	c := newFakeClient(id)
	if f.prepare != nil {
		f.prepare(c)
	}
	f.clients[id] = append(f.clients[id], c)
	return c, nil
}

func (f *fakeFactory) setErr(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

// client waits for the latest client built for id.
func (f *fakeFactory) client(t *testing.T, id string) *fakeClient {
	t.Helper()
	var c *fakeClient
	require.Eventually(t, func() bool {
		f.mu.Lock()
		defer f.mu.Unlock()
		if list := f.clients[id]; len(list) > 0 {
			c = list[len(list)-1]
			return true
		}
		return false
	}, waitFor, 5*time.Millisecond)
	return c
}

type fakeEncoder struct{}

func (fakeEncoder) Encode(content string) ([]byte, error) {
	if content == "" {
		return nil, errors.New("empty")
	}
	return []byte("png:" + content), nil
}

type fakeStore struct {
	mu      sync.Mutex
	records map[string]session.Snapshot
	deleted []string
}

func newFakeStore(ids ...string) *fakeStore {
	s := &fakeStore{records: make(map[string]session.Snapshot)}
	for _, id := range ids {
		s.records[id] = session.Snapshot{ID: id, State: session.StateReady}
	}
	return s
}

func (s *fakeStore) Save(_ context.Context, snap session.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[snap.ID] = snap
	return nil
}

func (s *fakeStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, id)
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *fakeStore) List(context.Context) ([]session.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]session.Snapshot, 0, len(s.records))
	for _, snap := range s.records {
		out = append(out, snap)
	}
	return out, nil
}

func (s *fakeStore) get(id string) (session.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.records[id]
	return snap, ok
}

// slowStore blocks every Save until release is called.
type slowStore struct {
	*fakeStore
	gate chan struct{}
	once sync.Once
}

func newSlowStore() *slowStore {
	return &slowStore{fakeStore: newFakeStore(), gate: make(chan struct{})}
}

func (s *slowStore) Save(ctx context.Context, snap session.Snapshot) error {
	select {
	case <-s.gate:
	case <-ctx.Done():
		return ctx.Err()
	}
	return s.fakeStore.Save(ctx, snap)
}

func (s *slowStore) release() { s.once.Do(func() { close(s.gate) }) }

type denyLimiter struct{}

func (denyLimiter) Allow(context.Context, string) (*ratelimiter.Result, error) {
	return &ratelimiter.Result{Limit: 1, Remaining: -1, ResetAt: time.Now().Add(time.Minute)}, nil
}

// fastPolicy retries after backoff.MinInterval.
func fastPolicy(attempts int) backoff.Policy {
	return backoff.Policy{Strategy: backoff.Constant{Interval: time.Millisecond}, MaxAttempts: attempts}
}

func newTestManager(t *testing.T, f *fakeFactory, opts ...session.Option) *session.Manager {
	t.Helper()
	opts = append([]session.Option{
		session.WithLogger(logger.Discard()),
		session.WithPolicy(fastPolicy(5)),
	}, opts...)
	m := session.NewManager(f.New, fakeEncoder{}, opts...)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), waitFor)
		defer cancel()
		_ = m.Shutdown(ctx)
	})
	return m
}

func waitState(t *testing.T, m *session.Manager, id string, want session.State) session.Snapshot {
	t.Helper()
	var snap session.Snapshot
	require.Eventually(t, func() bool {
		s, err := m.Get(id)
		if err != nil {
			return false
		}
		snap = s
		return s.State == want
	}, waitFor, 5*time.Millisecond, "session %s never reached %s", id, want)
	return snap
}

func backoff200ms() backoff.Policy {
	return backoff.Policy{Strategy: backoff.Constant{Interval: 200 * time.Millisecond}, MaxAttempts: 5}
}
