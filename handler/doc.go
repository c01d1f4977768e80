// Package handler provides typed HTTP handlers that bind a request struct and
// return a Response.
//
// Handlers never write to the ResponseWriter directly. They return a
// Response (JSON, Templ, SSE, Blob or Empty) and Wrap renders it, routing
// binding and rendering failures through an ErrorHandler:
//
//	func getSession(ctx handler.Context, req GetRequest) handler.Response {
//		snap, err := manager.Get(req.SessionID)
//		if err != nil {
//			return handler.JSONError(err)
//		}
//		return handler.JSON(snap)
//	}
//
//	r.Get("/sessions/{id}", handler.Wrap(getSession,
//		handler.WithBinders[GetRequest](binder.Path(chi.URLParam)),
//	))
//
// # Errors
//
// JSONError renders the {"error": {...}} envelope. HTTPError values choose
// the status code and error code, validator.ValidationErrors become 422 with
// per-field details, and anything else is a 500 whose message is not exposed.
//
// # Streaming
//
// SSE keeps a DataStar connection open and hands the handler a
// StreamContext for pushing templ components and signals until the client
// goes away.
package handler
