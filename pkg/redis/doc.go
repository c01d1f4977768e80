// Package redis connects to a Redis server with retries and exposes a
// health check for it.
//
// Configuration is described by Config, whose fields are populated from the
// environment. Redis is optional for the gateway: when REDIS_URL is empty the
// caller keeps the session index in memory instead.
//
//	cfg := config.MustLoad[redis.Config]()
//	if cfg.Enabled() {
//	    client, err := redis.Connect(ctx, cfg)
//	    if err != nil {
//	        return err
//	    }
//	    defer client.Close()
//
//	    check := redis.Healthcheck(client)
//	    _ = check(ctx)
//	}
//
// Errors returned by Connect wrap the go-redis cause with errors.Join, so
// callers can match the sentinel with errors.Is and still log the cause.
package redis
