package session

import "time"

// State is the lifecycle state of a session.
type State string

const (
	StateInitializing          State = "initializing"
	StateAwaitingPairing       State = "awaiting_pairing"
	StateReady                 State = "ready"
	StateAuthFailed            State = "auth_failed"
	StateDisconnected          State = "disconnected"
	StateDisconnectedPermanent State = "disconnected_permanent"
	StateClosed                State = "closed"
)

func (s State) String() string { return string(s) }

func (s State) in(states ...State) bool {
	for _, st := range states {
		if s == st {
			return true
		}
	}
	return false
}

// Snapshot is an immutable view of a session at a point in time.
type Snapshot struct {
	ID             string    `json:"id"`
	State          State     `json:"state"`
	PairingPayload string    `json:"-"`
	LastError      string    `json:"last_error,omitempty"`
	RetryCount     int       `json:"retry_count"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Ready reports whether messages can be sent through the session.
func (s Snapshot) Ready() bool {
	return s.State == StateReady
}

// QRNeeded reports whether a pairing payload is waiting to be scanned.
func (s Snapshot) QRNeeded() bool {
	return s.State == StateAwaitingPairing && s.PairingPayload != ""
}

// Change is published every time a session snapshot changes.
type Change struct {
	Previous State     `json:"previous"`
	Event    EventKind `json:"event"`
	Snapshot Snapshot  `json:"snapshot"`
}
