package automation

import "time"

// Config describes how to launch the automation binary.
type Config struct {
	Binary         string        `env:"AUTOMATION_BINARY" envDefault:"wa-automation"`
	Args           []string      `env:"AUTOMATION_ARGS" envSeparator:" "`
	Env            []string      `env:"AUTOMATION_ENV" envSeparator:","`
	DataDir        string        `env:"SESSION_DATA_DIR" envDefault:"./data/sessions"`
	QRTimeout      time.Duration `env:"QR_TIMEOUT" envDefault:"30s"`
	RequestTimeout time.Duration `env:"AUTOMATION_REQUEST_TIMEOUT" envDefault:"30s"`
	StopTimeout    time.Duration `env:"AUTOMATION_STOP_TIMEOUT" envDefault:"10s"`

	// Resolved chat ids are cached per session.
	ResolveCacheSize int           `env:"RESOLVE_CACHE_SIZE" envDefault:"1024"`
	ResolveCacheTTL  time.Duration `env:"RESOLVE_CACHE_TTL" envDefault:"1h"`
}
