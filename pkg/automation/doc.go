// Package automation drives the external messaging automation binary as a
// child process and adapts it to session.Client.
//
// One process runs per session. It is started with
//
//	<binary> [AUTOMATION_ARGS...] --session <id> --data-dir <dir>/<id> --qr-timeout <ms>
//
// and talks newline-delimited JSON. The binary writes lifecycle events and
// command results to stdout:
//
//	{"type":"qr","data":"2@abc..."}
//	{"type":"ready"}
//	{"type":"auth_failure","reason":"..."}
//	{"type":"disconnected","reason":"NAVIGATION"}
//	{"type":"result","id":"<uuid>","ok":true,"value":"15551234567@c.us"}
//
// and reads commands from stdin:
//
//	{"id":"<uuid>","cmd":"resolve","number":"15551234567"}
//	{"id":"<uuid>","cmd":"send","to":"15551234567@c.us","text":"hi"}
//
// Lines on stdout that are not protocol messages are logged and skipped;
// stderr is forwarded to the logger line by line. Credentials live in the
// per-session data directory and survive restarts of the process.
//
// Initialize (re)starts the process. An unexpected exit is reported as a
// disconnected event, which lets the session controller schedule a reconnect;
// an exit caused by Initialize or Close is not reported.
package automation
