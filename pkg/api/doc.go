// Package api exposes the session manager over HTTP.
//
// Routes:
//
//	POST   /sessions/{id}              create or fetch a session
//	GET    /sessions/{id}              fetch a session without creating it
//	DELETE /sessions/{id}              close and forget a session
//	GET    /sessions/{id}/qr           pairing code as JSON, or PNG with ?format=png
//	GET    /sessions/{id}/pair         HTML pairing page
//	GET    /sessions/{id}/pair/stream  DataStar stream feeding the pairing page
//	POST   /sessions/{id}/messages     send {"number", "message"}
//	POST   /sessions/{id}/repair       restart a failed session
//	POST   /send-message               send through the default session
//	GET    /health                     summary of every session
//	GET    /livez, /readyz             probes
//
// Every JSON body uses the handler package envelope: {"data": ...} on
// success and {"error": {"code", "message", "details"}} on failure.
package api
