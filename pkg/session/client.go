package session

import (
	"context"

	"github.com/dmitrymomot/sessiongate/pkg/ratelimiter"
)

// Client is the messaging client owned by a single session.
type Client interface {
	// Initialize starts (or restarts) the client. It may block until the
	// client is up; progress is reported through Events.
	Initialize(ctx context.Context) error

	// SendMessage delivers text to a canonical chat id.
	SendMessage(ctx context.Context, chatID, text string) error

	// ResolveCanonicalID maps a raw destination (e.g. a phone number) to the
	// network's chat id. found is false when the destination is not registered.
	ResolveCanonicalID(ctx context.Context, raw string) (chatID string, found bool, err error)

	// Events returns the ordered lifecycle event stream. The channel must stay
	// the same for the lifetime of the client.
	Events() <-chan Event

	Close() error
}

// ClientFactory constructs the client for a session id. It is called at most
// once per handle, unless construction fails and the session is repaired.
type ClientFactory func(sessionID string) (Client, error)

// Encoder renders a pairing payload as an image.
type Encoder interface {
	Encode(content string) ([]byte, error)
}

// Store persists the set of known sessions so they can be restored at boot.
type Store interface {
	Save(ctx context.Context, snap Snapshot) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]Snapshot, error)
}

// Limiter throttles outgoing messages per session.
type Limiter interface {
	Allow(ctx context.Context, key string) (*ratelimiter.Result, error)
}
