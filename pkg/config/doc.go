// Package config loads typed configuration from environment variables.
//
// It wraps github.com/joho/godotenv, which reads optional .env files into the
// process environment, and github.com/caarlos0/env/v11, which parses the
// environment into a struct using `env` and `envDefault` tags.
//
// # Usage
//
//	type Config struct {
//	    Addr        string        `env:"HTTP_ADDR" envDefault:":8080"`
//	    MaxAttempts int           `env:"RECONNECT_MAX_ATTEMPTS" envDefault:"10"`
//	    BaseDelay   time.Duration `env:"RECONNECT_BASE_DELAY" envDefault:"5s"`
//	}
//
//	if err := config.LoadEnv(); err != nil { ... } // optional .env
//	cfg, err := config.Load[Config]()
//
// Nested structs are parsed too, so a service-level struct can embed the
// Config types exported by individual packages.
//
// # Error Handling
//
//   - ErrParsingConfig – env vars could not be parsed into the struct.
//   - ErrLoadingEnvFile – a .env file named explicitly could not be read.
package config
