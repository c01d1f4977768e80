package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/sessiongate/binder"
	"github.com/dmitrymomot/sessiongate/handler"
)

var (
	bindPath  = handler.Bind(binder.Path(chi.URLParam))
	bindQuery = handler.Bind(binder.BindQuery())
	bindJSON  = handler.Bind(binder.BindJSON())
)

// wrap adapts a typed handler with the API error handler.
func wrap[R any](a *API, h func(handler.Context, R) handler.Response, binders ...handler.Bind) http.HandlerFunc {
	return handler.Wrap(handler.HandlerFunc[R](h),
		handler.WithBinders[R](binders...),
		handler.WithErrorHandler[R](handler.NewErrorHandler(a.logger)),
	)
}
