package binder

import (
	"net/http"
)

// BindQuery creates a query parameter binder function.
//
// It supports struct tags for custom parameter names:
//   - `query:"name"` - binds to query parameter "name"
//   - `query:"-"` - skips the field
//
// Example:
//
//	type QRRequest struct {
//		SessionID string `path:"id"`
//		Format    string `query:"format"` // ?format=png
//	}
func BindQuery() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		query := r.URL.Query()
		return bindFields(v, "query", ErrInvalidQuery, func(name string) []string {
			return query[name]
		})
	}
}
