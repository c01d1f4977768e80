package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/sessiongate/pkg/api"
	"github.com/dmitrymomot/sessiongate/pkg/automation"
	"github.com/dmitrymomot/sessiongate/pkg/httpserver"
	"github.com/dmitrymomot/sessiongate/pkg/logger"
	"github.com/dmitrymomot/sessiongate/pkg/qrcode"
	"github.com/dmitrymomot/sessiongate/pkg/ratelimiter"
	"github.com/dmitrymomot/sessiongate/pkg/redis"
	"github.com/dmitrymomot/sessiongate/pkg/requestid"
	"github.com/dmitrymomot/sessiongate/pkg/session"
	"github.com/dmitrymomot/sessiongate/pkg/sessionstore"
)

const serviceName = "sessiongate"

func serveCmd() *cobra.Command {
	var overrides flagOverrides

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP gateway",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(envFiles)
			if err != nil {
				return err
			}
			overrides.apply(&s)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, s, cmd.ErrOrStderr())
		},
	}

	overrides.register(cmd.Flags())
	return cmd
}

func newLogger(cfg appConfig) *slog.Logger {
	return logger.New(
		logger.WithEnvironment(cfg.Env, serviceName),
		logger.WithLevelName(cfg.LogLevel),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	)
}

// serve runs until ctx is cancelled. Sessions are closed on the way out but
// stay in the store, so the next start restores them.
func serve(ctx context.Context, s settings, stderr io.Writer) error {
	log := newLogger(s.App)
	logger.SetAsDefault(log)

	store, checks, closeStore, err := openStore(ctx, s.Redis, log)
	if err != nil {
		return err
	}
	defer closeStore()

	opts := []session.Option{
		session.WithLogger(log),
		session.WithPolicy(s.Session.Policy()),
		session.WithStore(store),
		session.WithSendTimeout(s.Session.SendTimeout),
	}
	if s.App.PrintQR {
		opts = append(opts, session.WithPairingPrinter(terminalPrinter(log, stderr)))
	}
	if s.RateLimit.Enabled {
		limits := ratelimiter.NewMemoryStore()
		defer limits.Close()
		bucket, err := ratelimiter.NewBucket(limits, s.RateLimit)
		if err != nil {
			return fmt.Errorf("send rate limit: %w", err)
		}
		opts = append(opts, session.WithLimiter(bucket))
	}

	manager := session.NewManager(
		automation.Factory(s.Automation, log),
		qrcode.NewEncoder(qrcode.WithSize(s.App.QRSize)),
		opts...,
	)

	bootSessions(ctx, manager, s.Session.DefaultSessionID, log)

	router := api.New(manager,
		api.WithLogger(log),
		api.WithDefaultSession(s.Session.DefaultSessionID),
		api.WithReadinessChecks(checks...),
	).Router()
	server := httpserver.NewFromConfig(s.HTTP, httpserver.WithLogger(log))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(gctx, router)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.HTTP.ShutdownTimeout+s.Automation.StopTimeout)
		defer cancel()
		return manager.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("gateway stopped")
	return nil
}

// bootSessions restores persisted sessions and starts the default one, so
// POST /send-message works and its pairing code is printed right after start.
func bootSessions(ctx context.Context, manager *session.Manager, defaultID string, log *slog.Logger) {
	restored, err := manager.Restore(ctx)
	if err != nil {
		log.Warn("failed to restore sessions", logger.Error(err))
	}
	log.Info("sessions restored", slog.Int("count", restored))

	if defaultID == "" {
		return
	}
	if _, err := manager.CreateOrGet(ctx, defaultID); err != nil {
		log.Warn("failed to start default session", logger.SessionID(defaultID), logger.Error(err))
	}
}

// openStore picks Redis when REDIS_URL is set and an in-memory index
// otherwise. The returned checks feed /readyz.
func openStore(ctx context.Context, cfg redis.Config, log *slog.Logger) (session.Store, []func(context.Context) error, func(), error) {
	if !cfg.Enabled() {
		log.Info("using in-memory session store")
		return sessionstore.NewMemoryStore(), nil, func() {}, nil
	}

	client, err := redis.Connect(ctx, cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect to redis: %w", err)
	}
	log.Info("using redis session store")

	store := sessionstore.NewRedisStore(client, sessionstore.WithKey(cfg.KeyPrefix+":sessions"))
	closeFn := func() {
		if err := client.Close(); err != nil {
			log.Warn("failed to close redis client", logger.Error(err))
		}
	}
	return store, []func(context.Context) error{redis.Healthcheck(client)}, closeFn, nil
}

// terminalPrinter renders pairing codes as text so an operator can scan
// them from the console.
func terminalPrinter(log *slog.Logger, w io.Writer) func(sessionID, payload string) {
	return func(sessionID, payload string) {
		code, err := qrcode.Terminal(payload)
		if err != nil {
			log.Warn("failed to render pairing code", logger.SessionID(sessionID), logger.Error(err))
			return
		}
		log.Info("pairing code ready, scan it with the phone", logger.SessionID(sessionID))
		_, _ = fmt.Fprintln(w, code)
	}
}
