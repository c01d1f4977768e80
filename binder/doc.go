// Package binder populates request structs from JSON bodies, path
// parameters and query strings.
//
// Binders share the signature func(r *http.Request, v any) error and are
// applied in order by handler.Wrap:
//
//	type SendRequest struct {
//		SessionID string `path:"id" json:"-"`
//		Number    string `json:"number"`
//		Message   string `json:"message"`
//	}
//
//	r.Post("/sessions/{id}/messages", handler.Wrap(send,
//		handler.WithBinders[SendRequest](
//			binder.Path(chi.URLParam),
//			binder.BindJSON(),
//		),
//	))
package binder
