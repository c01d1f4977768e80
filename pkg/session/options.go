package session

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/sessiongate/pkg/backoff"
)

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithPolicy sets the reconnect policy. Defaults to backoff.Default().
func WithPolicy(p backoff.Policy) Option {
	return func(m *Manager) {
		m.policy = p
	}
}

// WithRegistry injects a registry, e.g. to share it with a test.
func WithRegistry(r *Registry) Option {
	return func(m *Manager) {
		if r != nil {
			m.registry = r
		}
	}
}

// WithStore persists known sessions so Restore can recreate them.
func WithStore(s Store) Option {
	return func(m *Manager) {
		m.store = s
	}
}

// WithLimiter throttles Send per session.
func WithLimiter(l Limiter) Option {
	return func(m *Manager) {
		m.limiter = l
	}
}

// WithSendTimeout bounds recipient resolution plus delivery. Defaults to 30s.
func WithSendTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.sendTimeout = d
		}
	}
}

// WithPairingPrinter is called with every new pairing payload, e.g. to
// render the QR code in a terminal.
func WithPairingPrinter(fn func(sessionID, payload string)) Option {
	return func(m *Manager) {
		m.printer = fn
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}
