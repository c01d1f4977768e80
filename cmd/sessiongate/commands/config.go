package commands

import (
	"github.com/spf13/pflag"

	"github.com/dmitrymomot/sessiongate/pkg/automation"
	"github.com/dmitrymomot/sessiongate/pkg/config"
	"github.com/dmitrymomot/sessiongate/pkg/httpserver"
	"github.com/dmitrymomot/sessiongate/pkg/ratelimiter"
	"github.com/dmitrymomot/sessiongate/pkg/redis"
	"github.com/dmitrymomot/sessiongate/pkg/session"
)

type appConfig struct {
	Env      string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	QRSize   int    `env:"QR_SIZE" envDefault:"256"`
	PrintQR  bool   `env:"PRINT_QR" envDefault:"true"` // Render pairing codes on stderr
}

// settings is every configuration section the serve command needs.
type settings struct {
	App        appConfig
	Session    session.Config
	Automation automation.Config
	HTTP       httpserver.Config
	Redis      redis.Config
	RateLimit  ratelimiter.Config
}

// flagOverrides holds command line values that win over the environment.
type flagOverrides struct {
	addr           string
	dataDir        string
	binary         string
	defaultSession string
	logLevel       string
}

func (o *flagOverrides) register(fs *pflag.FlagSet) {
	fs.StringVar(&o.addr, "addr", "", "listen address (overrides HTTP_ADDR and PORT)")
	fs.StringVar(&o.dataDir, "data-dir", "", "session credential directory (overrides SESSION_DATA_DIR)")
	fs.StringVar(&o.binary, "automation-binary", "", "automation executable (overrides AUTOMATION_BINARY)")
	fs.StringVar(&o.defaultSession, "default-session", "", "session used by POST /send-message (overrides DEFAULT_SESSION_ID)")
	fs.StringVar(&o.logLevel, "log-level", "", "debug, info, warn or error (overrides LOG_LEVEL)")
}

func (o flagOverrides) apply(s *settings) {
	if o.addr != "" {
		s.HTTP.Addr = o.addr
	}
	if o.dataDir != "" {
		s.Automation.DataDir = o.dataDir
	}
	if o.binary != "" {
		s.Automation.Binary = o.binary
	}
	if o.defaultSession != "" {
		s.Session.DefaultSessionID = o.defaultSession
	}
	if o.logLevel != "" {
		s.App.LogLevel = o.logLevel
	}
}

func loadSettings(files []string) (settings, error) {
	var (
		s   settings
		err error
	)
	if err = config.LoadEnv(files...); err != nil {
		return s, err
	}
	if s.App, err = config.Load[appConfig](); err != nil {
		return s, err
	}
	if s.Session, err = config.Load[session.Config](); err != nil {
		return s, err
	}
	if s.Automation, err = config.Load[automation.Config](); err != nil {
		return s, err
	}
	if s.HTTP, err = config.Load[httpserver.Config](); err != nil {
		return s, err
	}
	if s.Redis, err = config.Load[redis.Config](); err != nil {
		return s, err
	}
	if s.RateLimit, err = config.Load[ratelimiter.Config](); err != nil {
		return s, err
	}
	return s, nil
}
