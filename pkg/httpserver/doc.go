// Package httpserver runs an http.Handler until its context ends and then
// shuts it down gracefully.
//
// Construction uses functional options (WithAddr, WithReadTimeout,
// WithLogger, ...) or NewFromConfig with environment-driven Config. Run
// blocks until the context is cancelled; signal handling belongs to the
// caller, typically via signal.NotifyContext in main.
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//	    log.Error("server stopped", logger.Error(err))
//	}
//
// LivenessHandler and ReadinessHandler provide plain-text probes; the
// readiness variant runs dependency checks such as redis.Healthcheck.
//
// Run wraps listen errors with ErrStart and Shutdown wraps shutdown errors
// with ErrShutdown.
package httpserver
