// Package logger builds the service's *slog.Logger.
//
// New assembles a text or JSON handler from functional options and wraps it in
// a decorator that copies request-scoped values (for example the request id)
// from context.Context into every record. Attribute helpers in attr.go keep
// key names consistent across packages: session_id, state, retry_count and so on.
//
// # Usage
//
//	log := logger.New(
//	    logger.WithEnvironment(cfg.Env, "sessiongate"),
//	    logger.WithLevelName(cfg.LogLevel),
//	    logger.WithContextValue("request_id", requestid.ContextKey()),
//	)
//	logger.SetAsDefault(log)
//
//	log.InfoContext(ctx, "session ready",
//	    logger.SessionID(id),
//	    logger.State("ready"),
//	)
//
// Error and the id helpers return an empty slog.Attr for nil input, which slog
// drops, so callers never need a nil check before logging.
package logger
