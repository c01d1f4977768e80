package api

import (
	"context"
	"errors"

	"github.com/dmitrymomot/sessiongate/handler"
	"github.com/dmitrymomot/sessiongate/pkg/logger"
	"github.com/dmitrymomot/sessiongate/pkg/qrcode"
	"github.com/dmitrymomot/sessiongate/pkg/session"
)

// pairingPage creates the session if needed and serves the pairing page.
func (a *API) pairingPage(ctx handler.Context, req sessionRequest) handler.Response {
	snap, err := a.sessions.CreateOrGet(ctx, req.SessionID)
	if err != nil {
		return errorResponse(err)
	}
	return handler.Templ(pairingPage(snap.ID, pairingStatus(snap, a.pairingImage(ctx, snap))))
}

// pairingStream pushes #pairing every time the session changes until the
// client leaves or the session is closed.
func (a *API) pairingStream(ctx handler.Context, req sessionRequest) handler.Response {
	if _, err := a.sessions.Get(req.SessionID); err != nil {
		return errorResponse(err)
	}

	return handler.SSE(func(stream handler.StreamContext) error {
		sub := a.sessions.Subscribe(stream)
		defer sub.Close()

		// Subscribe first so no change slips between the read and the loop.
		snap, err := a.sessions.Get(req.SessionID)
		if err != nil {
			return err
		}
		if err := a.pushPairing(stream, snap); err != nil {
			return err
		}

		for {
			select {
			case <-stream.Done():
				return nil
			case msg, ok := <-sub.Receive():
				if !ok {
					return nil
				}
				next := msg.Data.Snapshot
				if next.ID != req.SessionID {
					continue
				}
				if err := a.pushPairing(stream, next); err != nil {
					return err
				}
				if next.State == session.StateClosed {
					return nil
				}
			}
		}
	})
}

func (a *API) pushPairing(stream handler.StreamContext, snap session.Snapshot) error {
	if err := stream.SendComponent(pairingStatus(snap, a.pairingImage(stream, snap))); err != nil {
		return err
	}
	return stream.SendSignals(map[string]any{
		"state":     snap.State,
		"qr_needed": snap.QRNeeded(),
	})
}

// pairingImage returns the pairing code of snap as a data URL, or "" when
// there is nothing to scan. It renders snap as given so a stream replaying
// old changes cannot bring a closed session back.
func (a *API) pairingImage(ctx context.Context, snap session.Snapshot) string {
	if snap.State == session.StateClosed || !snap.QRNeeded() {
		return ""
	}
	art, err := a.sessions.EncodePairing(snap)
	if err != nil {
		if !errors.Is(err, session.ErrPairingNotAvailable) {
			a.logger.WarnContext(ctx, "failed to render pairing code", logger.SessionID(snap.ID), logger.Error(err))
		}
		return ""
	}
	return qrcode.DataURI(art.Image)
}
