package session

import "time"

// Artifact is a renderable pairing code.
type Artifact struct {
	SessionID   string
	Payload     string
	Image       []byte
	ContentType string
}

// Confirmation acknowledges a delivered message.
type Confirmation struct {
	SessionID string    `json:"session_id"`
	Recipient string    `json:"recipient"`
	SentAt    time.Time `json:"sent_at"`
}
