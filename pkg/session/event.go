package session

// EventKind names what happened to a session.
type EventKind string

// Client events.
const (
	EventQR           EventKind = "qr"
	EventReady        EventKind = "ready"
	EventAuthFailure  EventKind = "auth_failure"
	EventDisconnected EventKind = "disconnected"
)

// Internal events produced by the controller and the manager.
const (
	EventInitFailed EventKind = "init_failed"
	EventReconnect  EventKind = "reconnect"
	EventRepair     EventKind = "repair"
	EventClose      EventKind = "close"
)

// Event is a single lifecycle input. Clients emit QR, Ready, AuthFailure and
// Disconnected events on their Events channel.
type Event struct {
	Kind    EventKind
	Payload string // pairing payload for EventQR
	Reason  string // diagnostic for failures and disconnects

	gen uint64        // attempt generation for reconnect and init_failed
	ack chan struct{} // closed once the event has been applied
}

// QR reports a new pairing payload. An empty payload is ignored.
func QR(payload string) Event { return Event{Kind: EventQR, Payload: payload} }

// Ready reports that the client is authenticated.
func Ready() Event { return Event{Kind: EventReady} }

// AuthFailure reports that stored credentials were rejected.
func AuthFailure(reason string) Event { return Event{Kind: EventAuthFailure, Reason: reason} }

// Disconnected reports that the client lost its connection.
func Disconnected(reason string) Event { return Event{Kind: EventDisconnected, Reason: reason} }
