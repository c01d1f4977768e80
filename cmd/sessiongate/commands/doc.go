// Package commands wires the sessiongate CLI: configuration, logging,
// storage, the session manager and the HTTP server.
package commands
