package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/sessiongate/pkg/broadcast"
	"github.com/dmitrymomot/sessiongate/pkg/httpserver"
	"github.com/dmitrymomot/sessiongate/pkg/logger"
	"github.com/dmitrymomot/sessiongate/pkg/requestid"
	"github.com/dmitrymomot/sessiongate/pkg/session"
)

// Sessions is the subset of *session.Manager the API calls.
type Sessions interface {
	CreateOrGet(ctx context.Context, id string) (session.Snapshot, error)
	Get(id string) (session.Snapshot, error)
	PairingArtifact(ctx context.Context, id string) (session.Artifact, error)
	EncodePairing(snap session.Snapshot) (session.Artifact, error)
	Send(ctx context.Context, id, rawRecipient, text string) (session.Confirmation, error)
	Repair(ctx context.Context, id string) (session.Snapshot, error)
	Close(ctx context.Context, id string) error
	Health() session.Health
	Subscribe(ctx context.Context) broadcast.Subscriber[session.Change]
}

// API holds the HTTP handlers.
type API struct {
	sessions       Sessions
	logger         *slog.Logger
	defaultSession string
	readiness      []func(context.Context) error
}

// Option configures API.
type Option func(*API)

// WithLogger sets the logger used for request errors.
func WithLogger(l *slog.Logger) Option {
	return func(a *API) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithDefaultSession sets the session used by POST /send-message.
func WithDefaultSession(id string) Option {
	return func(a *API) {
		a.defaultSession = id
	}
}

// WithReadinessChecks adds checks run by GET /readyz, e.g. a Redis ping.
func WithReadinessChecks(checks ...func(context.Context) error) Option {
	return func(a *API) {
		a.readiness = append(a.readiness, checks...)
	}
}

// New creates the API over sessions.
func New(sessions Sessions, opts ...Option) *API {
	a := &API{
		sessions:       sessions,
		logger:         slog.Default(),
		defaultSession: "default",
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.With(logger.Component("api"))
	return a
}

// Router builds the chi router serving every route.
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RealIP,
		requestid.Middleware,
		middleware.Recoverer,
	)

	r.Get("/livez", httpserver.LivenessHandler())
	r.Get("/readyz", httpserver.ReadinessHandler(a.logger, a.readiness...))
	r.Get("/health", wrap(a, a.health))
	r.Post("/send-message", wrap(a, a.sendDefault, bindJSON))

	r.Route("/sessions/{id}", func(r chi.Router) {
		r.Post("/", wrap(a, a.createSession, bindPath))
		r.Get("/", wrap(a, a.getSession, bindPath))
		r.Delete("/", wrap(a, a.closeSession, bindPath))
		r.Get("/qr", wrap(a, a.pairingCode, bindPath, bindQuery))
		r.Get("/pair", wrap(a, a.pairingPage, bindPath))
		r.Get("/pair/stream", wrap(a, a.pairingStream, bindPath))
		r.Post("/messages", wrap(a, a.sendMessage, bindPath, bindJSON))
		r.Post("/repair", wrap(a, a.repairSession, bindPath))
	})

	return r
}
