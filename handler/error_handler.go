package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/sessiongate/pkg/logger"
	"github.com/dmitrymomot/sessiongate/pkg/validator"
)

// statusOf maps err to the status code JSONError would use.
func statusOf(err error) int {
	if validator.IsValidationError(err) {
		return http.StatusUnprocessableEntity
	}
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code
	}
	return http.StatusInternalServerError
}

// NewErrorHandler logs the failed request and renders the JSON error
// envelope. Client errors are logged at warn level, server errors at error.
func NewErrorHandler(log *slog.Logger) ErrorHandler {
	if log == nil {
		log = slog.Default()
	}
	log = log.With(logger.Component("http"))

	return func(ctx Context, err error) {
		r := ctx.Request()
		status := statusOf(err)

		level := slog.LevelError
		if status < http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		log.LogAttrs(r.Context(), level, "request error",
			logger.Error(err),
			slog.Int("status_code", status),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)

		if IsDataStar(r) {
			// An open SSE stream cannot carry a status code anymore.
			return
		}
		if renderErr := JSONError(err).Render(ctx.ResponseWriter(), r); renderErr != nil {
			log.ErrorContext(r.Context(), "failed to render error response", logger.Error(renderErr))
		}
	}
}
