package session

import (
	"time"

	"github.com/dmitrymomot/sessiongate/pkg/backoff"
)

// Config holds lifecycle settings loaded from the environment.
type Config struct {
	ReconnectBaseDelay   time.Duration `env:"RECONNECT_BASE_DELAY" envDefault:"5s"`
	ReconnectMaxDelay    time.Duration `env:"RECONNECT_MAX_DELAY" envDefault:"5m"`
	ReconnectMaxAttempts int           `env:"RECONNECT_MAX_ATTEMPTS" envDefault:"10"`
	ReconnectJitter      float64       `env:"RECONNECT_JITTER" envDefault:"0.1"`
	SendTimeout          time.Duration `env:"SEND_TIMEOUT" envDefault:"30s"`
	DefaultSessionID     string        `env:"DEFAULT_SESSION_ID" envDefault:"default"`
}

// Policy builds the reconnect policy. The base delay never drops below
// backoff.MinInterval.
func (c Config) Policy() backoff.Policy {
	return backoff.Policy{
		Strategy: backoff.Exponential{
			Initial:    max(c.ReconnectBaseDelay, backoff.MinInterval),
			Max:        c.ReconnectMaxDelay,
			Multiplier: 2,
			Jitter:     c.ReconnectJitter,
		},
		MaxAttempts: c.ReconnectMaxAttempts,
	}
}
