package binder

import "errors"

// Common binding errors
var (
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrInvalidJSON          = errors.New("invalid JSON")
	ErrInvalidQuery         = errors.New("invalid query parameter")
	ErrInvalidPath          = errors.New("invalid path parameter")
	ErrMissingContentType   = errors.New("missing content type")

	// ErrBinderNotApplicable lets a binder opt out of a request it does not
	// handle, e.g. BindJSON on a request without a body.
	ErrBinderNotApplicable = errors.New("binder not applicable")
)
