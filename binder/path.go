package binder

import (
	"fmt"
	"net/http"
)

// Path creates a path parameter binder function using the provided extractor.
//
// It supports struct tags for custom parameter names:
//   - `path:"name"` - binds to path parameter "name"
//   - `path:"-"` - skips the field
//
// Example with chi router:
//
//	r.Get("/sessions/{id}", handler.Wrap(get,
//		handler.WithBinders[GetRequest](binder.Path(chi.URLParam)),
//	))
func Path(extractor func(r *http.Request, name string) string) func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		if extractor == nil {
			return fmt.Errorf("%w: extractor function is nil", ErrInvalidPath)
		}
		return bindFields(v, "path", ErrInvalidPath, func(name string) []string {
			if value := extractor(r, name); value != "" {
				return []string{value}
			}
			return nil
		})
	}
}
