package api

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitrymomot/sessiongate/handler"
	"github.com/dmitrymomot/sessiongate/pkg/session"
)

var (
	errInvalidSessionID    = handler.NewHTTPError(http.StatusBadRequest, "invalid_session_id")
	errSessionNotFound     = handler.NewHTTPError(http.StatusNotFound, "session_not_found")
	errPairingNotAvailable = handler.NewHTTPError(http.StatusConflict, "pairing_not_available")
	errInvalidRecipient    = handler.NewHTTPError(http.StatusUnprocessableEntity, "invalid_recipient")
	errRateLimited         = handler.NewHTTPError(http.StatusTooManyRequests, "rate_limited")
	errSendFailed          = handler.NewHTTPError(http.StatusBadGateway, "send_failed")
	errSessionNotReady     = handler.NewHTTPError(http.StatusServiceUnavailable, "session_not_ready")
	errUnavailable         = handler.NewHTTPError(http.StatusServiceUnavailable, "unavailable")
	errTimeout             = handler.NewHTTPError(http.StatusGatewayTimeout, "timeout")
)

// errorResponse maps session errors to HTTP errors. Unknown errors become
// a 500 without details.
func errorResponse(err error) handler.Response {
	switch {
	case errors.Is(err, session.ErrInvalidSessionID):
		return handler.JSONError(errInvalidSessionID.WithMessage(describe(err)))
	case errors.Is(err, session.ErrSessionNotFound):
		return handler.JSONError(errSessionNotFound.WithMessage(session.ErrSessionNotFound.Error()))
	case errors.Is(err, session.ErrPairingNotAvailable):
		return handler.JSONError(errPairingNotAvailable.WithMessage(describe(err)))
	case errors.Is(err, session.ErrInvalidRecipient):
		return handler.JSONError(errInvalidRecipient.WithMessage(describe(err)))
	case errors.Is(err, session.ErrRateLimited):
		var opts []handler.JSONOption
		var retry session.RetryAfterError
		if errors.As(err, &retry) {
			secs := int(math.Ceil(retry.After.Seconds()))
			opts = append(opts, handler.WithJSONHeader("Retry-After", strconv.Itoa(max(secs, 1))))
		}
		return handler.JSONError(errRateLimited.WithMessage(session.ErrRateLimited.Error()), opts...)
	case errors.Is(err, session.ErrSessionNotReady):
		return handler.JSONError(errSessionNotReady.WithMessage(describe(err)))
	case errors.Is(err, session.ErrSendFailed):
		if errors.Is(err, context.DeadlineExceeded) {
			return handler.JSONError(errTimeout.WithMessage("message delivery timed out"))
		}
		resp := errSendFailed.WithMessage(session.ErrSendFailed.Error())
		if c := cause(err, session.ErrSendFailed); c != "" {
			resp = resp.WithDetails(map[string][]string{"cause": {c}})
		}
		return handler.JSONError(resp)
	case errors.Is(err, session.ErrManagerClosed), errors.Is(err, session.ErrSessionClosed):
		return handler.JSONError(errUnavailable.WithMessage(describe(err)))
	default:
		return handler.JSONError(err)
	}
}

// cause describes what err joined to sentinel, or "" when nothing was.
func cause(err, sentinel error) string {
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return ""
	}
	var parts []string
	for _, e := range joined.Unwrap() {
		if e == nil || errors.Is(e, sentinel) {
			continue
		}
		parts = append(parts, describe(e))
	}
	return strings.Join(parts, ": ")
}

// describe flattens a joined error into one line.
func describe(err error) string {
	return strings.ReplaceAll(err.Error(), "\n", ": ")
}
