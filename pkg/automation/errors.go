package automation

import "errors"

var (
	ErrBinaryNotConfigured = errors.New("automation binary not configured")
	ErrBinaryNotFound      = errors.New("automation binary not found")
	ErrStartFailed         = errors.New("failed to start automation process")
	ErrNotRunning          = errors.New("automation process not running")
	ErrProcessExited       = errors.New("automation process exited")
	ErrCommandFailed       = errors.New("automation command failed")
	ErrClosed              = errors.New("automation client closed")
)
