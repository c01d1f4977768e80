package sessionstore

import "errors"

var (
	ErrEncodeRecord = errors.New("failed to encode session record")
	ErrDecodeRecord = errors.New("failed to decode session record")
	ErrStoreFailed  = errors.New("session store operation failed")
)
