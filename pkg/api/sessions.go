package api

import (
	"time"

	"github.com/dmitrymomot/sessiongate/handler"
	"github.com/dmitrymomot/sessiongate/pkg/qrcode"
	"github.com/dmitrymomot/sessiongate/pkg/session"
	"github.com/dmitrymomot/sessiongate/pkg/validator"
)

// maxMessageLength bounds outgoing text.
const maxMessageLength = 4096

type sessionRequest struct {
	SessionID string `path:"id"`
}

type pairingCodeRequest struct {
	SessionID string `path:"id"`
	Format    string `query:"format"`
}

type sendRequest struct {
	SessionID string `path:"id" json:"-"`
	Number    string `json:"number"`
	Message   string `json:"message"`
}

func (r sendRequest) validate() error {
	return validator.Apply(
		validator.RequiredString("number", r.Number),
		validator.RequiredString("message", r.Message),
		validator.MaxLenString("message", r.Message, maxMessageLength),
	)
}

type sessionResponse struct {
	ID         string        `json:"id"`
	State      session.State `json:"state"`
	QRNeeded   bool          `json:"qr_needed"`
	LastError  string        `json:"last_error,omitempty"`
	RetryCount int           `json:"retry_count"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

func newSessionResponse(s session.Snapshot) sessionResponse {
	return sessionResponse{
		ID:         s.ID,
		State:      s.State,
		QRNeeded:   s.QRNeeded(),
		LastError:  s.LastError,
		RetryCount: s.RetryCount,
		UpdatedAt:  s.UpdatedAt,
	}
}

type pairingCodeResponse struct {
	SessionID string `json:"session_id"`
	Payload   string `json:"payload"`
	DataURL   string `json:"data_url"`
}

type sendResponse struct {
	Success   bool      `json:"success"`
	SessionID string    `json:"session_id"`
	Recipient string    `json:"recipient"`
	SentAt    time.Time `json:"sent_at"`
}

type healthResponse struct {
	Status   session.HealthStatus `json:"status"`
	Sessions []sessionResponse    `json:"sessions"`
	Uptime   float64              `json:"uptime"`
}

func (a *API) createSession(ctx handler.Context, req sessionRequest) handler.Response {
	snap, err := a.sessions.CreateOrGet(ctx, req.SessionID)
	if err != nil {
		return errorResponse(err)
	}
	return handler.JSON(newSessionResponse(snap))
}

func (a *API) getSession(_ handler.Context, req sessionRequest) handler.Response {
	snap, err := a.sessions.Get(req.SessionID)
	if err != nil {
		return errorResponse(err)
	}
	return handler.JSON(newSessionResponse(snap))
}

func (a *API) closeSession(ctx handler.Context, req sessionRequest) handler.Response {
	if err := a.sessions.Close(ctx, req.SessionID); err != nil {
		return errorResponse(err)
	}
	return handler.Empty()
}

func (a *API) repairSession(ctx handler.Context, req sessionRequest) handler.Response {
	snap, err := a.sessions.Repair(ctx, req.SessionID)
	if err != nil {
		return errorResponse(err)
	}
	return handler.JSON(newSessionResponse(snap))
}

func (a *API) pairingCode(ctx handler.Context, req pairingCodeRequest) handler.Response {
	art, err := a.sessions.PairingArtifact(ctx, req.SessionID)
	if err != nil {
		return errorResponse(err)
	}
	if req.Format == "png" {
		return handler.Blob(art.ContentType, art.Image)
	}
	return handler.JSON(pairingCodeResponse{
		SessionID: art.SessionID,
		Payload:   art.Payload,
		DataURL:   qrcode.DataURI(art.Image),
	})
}

func (a *API) sendMessage(ctx handler.Context, req sendRequest) handler.Response {
	if err := req.validate(); err != nil {
		return handler.JSONError(err)
	}
	conf, err := a.sessions.Send(ctx, req.SessionID, req.Number, req.Message)
	if err != nil {
		return errorResponse(err)
	}
	return handler.JSON(sendResponse{
		Success:   true,
		SessionID: conf.SessionID,
		Recipient: conf.Recipient,
		SentAt:    conf.SentAt,
	})
}

// sendDefault serves the single-session endpoint kept for existing clients.
func (a *API) sendDefault(ctx handler.Context, req sendRequest) handler.Response {
	req.SessionID = a.defaultSession
	return a.sendMessage(ctx, req)
}

func (a *API) health(_ handler.Context, _ struct{}) handler.Response {
	h := a.sessions.Health()
	sessions := make([]sessionResponse, 0, len(h.Sessions))
	for _, s := range h.Sessions {
		sessions = append(sessions, newSessionResponse(s))
	}
	return handler.JSON(healthResponse{
		Status:   h.Status,
		Sessions: sessions,
		Uptime:   h.Uptime.Seconds(),
	})
}
