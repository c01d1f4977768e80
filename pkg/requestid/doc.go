// Package requestid tags every HTTP request with a correlation id.
//
// Middleware reuses a well-formed X-Request-ID header sent by the client or
// generates a UUID, stores it in the request context and echoes it back in
// the response. LoggerExtractor plugs the id into pkg/logger so every record
// logged with the request context carries request_id:
//
//	log := logger.New(logger.WithContextExtractors(requestid.LoggerExtractor()))
//	r.Use(requestid.Middleware)
package requestid
