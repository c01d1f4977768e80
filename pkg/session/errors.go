package session

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionNotReady      = errors.New("session not ready")
	ErrPairingNotAvailable  = errors.New("pairing code not available")
	ErrInvalidRecipient     = errors.New("invalid recipient")
	ErrSendFailed           = errors.New("failed to send message")
	ErrAuthFailure          = errors.New("authentication failure")
	ErrInitializationFailed = errors.New("client initialization failed")
	ErrInvalidSessionID     = errors.New("invalid session id")
	ErrRateLimited          = errors.New("send rate limit exceeded")
	ErrSessionClosed        = errors.New("session closed")
	ErrManagerClosed        = errors.New("session manager is shut down")
)

// RetryAfterError is joined with ErrRateLimited and tells the caller when the
// next send may succeed.
type RetryAfterError struct {
	After time.Duration
}

func (e RetryAfterError) Error() string {
	return fmt.Sprintf("retry after %s", e.After.Round(time.Second))
}
