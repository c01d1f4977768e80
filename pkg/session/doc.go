// Package session manages the lifecycle of messaging sessions.
//
// A session is one logged-in account of the external messaging client,
// addressed by a caller-chosen id. The Manager creates sessions lazily and
// exactly once through the Registry, exposes the pairing QR while the account
// awaits pairing, and dispatches messages once the session is ready.
//
// # Lifecycle
//
// Each Handle owns a single controller goroutine. It consumes the client's
// event stream together with internal commands (reconnect timer, repair,
// close) and applies them one at a time to the pure Transition function.
// Transition returns the next Snapshot and a list of effects (initialize the
// client, schedule or cancel a reconnect, close the client) that the
// controller then executes. Readers never block: the current Snapshot is
// published through an atomic pointer.
//
//	initializing ──qr──▶ awaiting_pairing ──ready──▶ ready
//	      │                     │                      │
//	      └──────────disconnected / init failure───────┘
//	                            ▼
//	                      disconnected ──timer──▶ initializing
//	                            │
//	                   (attempts exhausted)
//	                            ▼
//	                 disconnected_permanent ──repair──▶ initializing
//
// Reconnect delays come from a backoff.Policy: capped exponential growth with
// jitter and a maximum number of attempts. After the last attempt the session
// stays in disconnected_permanent until an operator calls Repair.
//
// # Usage
//
//	mgr := session.NewManager(factory, qrcode.NewEncoder(),
//	    session.WithLogger(log),
//	    session.WithPolicy(cfg.Policy()),
//	)
//	defer mgr.Shutdown(context.Background())
//
//	snap, _ := mgr.CreateOrGet(ctx, "s1")
//	art, err := mgr.PairingArtifact(ctx, "s1")  // ErrPairingNotAvailable until the QR arrives
//	conf, err := mgr.Send(ctx, "s1", "+15551234567", "hi")
package session
