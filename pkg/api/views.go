package api

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/sessiongate/pkg/session"
)

const datastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.5/bundles/datastar.js"

// pairingPage is the full HTML page. It opens the stream on load and lets
// the stream replace #pairing as the session moves through its states.
func pairingPage(sessionID string, status templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		id := templ.EscapeString(sessionID)
		if _, err := fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Pair %s</title>
<script type="module" src="%s"></script>
</head>
<body>
<main data-on-load="@get('/sessions/%s/pair/stream')">
<h1>Session %s</h1>
`, id, datastarScript, id, id); err != nil {
			return err
		}
		if err := status.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\n</main>\n</body>\n</html>\n")
		return err
	})
}

// pairingStatus renders the #pairing element for a snapshot. dataURL is the
// pairing image and is only shown while pairing is pending.
func pairingStatus(snap session.Snapshot, dataURL string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		state := templ.EscapeString(snap.State.String())
		if _, err := fmt.Fprintf(w, `<section id="pairing" data-state="%s"><p class="state">%s</p>`, state, statusText(snap.State)); err != nil {
			return err
		}
		if dataURL != "" {
			if _, err := fmt.Fprintf(w, `<img src="%s" alt="Pairing code" width="256" height="256">`, templ.EscapeString(dataURL)); err != nil {
				return err
			}
		}
		if snap.LastError != "" {
			if _, err := fmt.Fprintf(w, `<p class="error">%s</p>`, templ.EscapeString(snap.LastError)); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</section>`)
		return err
	})
}

func statusText(s session.State) string {
	switch s {
	case session.StateInitializing:
		return "Starting client..."
	case session.StateAwaitingPairing:
		return "Scan the code with your phone to link this session."
	case session.StateReady:
		return "Connected. You can close this page."
	case session.StateAuthFailed:
		return "Authentication failed. Repair the session to pair again."
	case session.StateDisconnected:
		return "Disconnected. Reconnecting..."
	case session.StateDisconnectedPermanent:
		return "Disconnected. Reconnect attempts exhausted."
	case session.StateClosed:
		return "Session closed."
	default:
		return templ.EscapeString(s.String())
	}
}
