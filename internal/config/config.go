// Package config loads the server configuration from the environment.
//
// An optional .env file is read first; variables already set in the process
// environment take precedence over it. Fields are then parsed with
// caarlos0/env using the defaults declared in the struct tags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the server configuration.
type Config struct {
	// Host header values accepted by the origin interceptor. Matching is exact.
	AllowedHosts []string `env:"ALLOWED_HOSTS" envSeparator:"," envDefault:"localhost:8000,127.0.0.1:8000"`

	ServerHost string `env:"SERVER_HOST" envDefault:"127.0.0.1"`
	ServerPort int    `env:"SERVER_PORT" envDefault:"8000"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	Debug    bool   `env:"DEBUG" envDefault:"false"`

	// Directory served at /static/. A missing directory disables static files.
	StaticDir string `env:"STATIC_DIR" envDefault:"static"`

	MaxBodySize int64 `env:"MAX_BODY_SIZE" envDefault:"1048576"`

	// Requests per second allowed through the throttle; 0 disables it.
	RateLimit int `env:"RATE_LIMIT" envDefault:"0"`

	// When set, requests must carry one of these bearer tokens.
	AuthBearerTokens []string `env:"AUTH_BEARER_TOKENS" envSeparator:","`

	EnableMetrics bool `env:"ENABLE_METRICS" envDefault:"true"`
	EnableTraceID bool `env:"ENABLE_TRACE_ID" envDefault:"true"`

	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"5s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Upper bound on stored demo tasks and chat messages.
	DemoMaxItems int `env:"DEMO_MAX_ITEMS" envDefault:"100"`
}

// Load reads the given .env files (".env" when none are named), then parses
// and validates the process environment. Missing .env files are ignored.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return Parse(nil)
}

// Parse parses and validates the configuration from environment, or from the
// process environment when environment is nil.
func Parse(environment map[string]string) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environment}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values that the struct tags cannot.
func (c *Config) Validate() error {
	var errs []error

	if len(c.AllowedHosts) == 0 {
		errs = append(errs, errors.New("ALLOWED_HOSTS must list at least one host"))
	}
	if c.ServerPort < 1 || c.ServerPort > 65535 {
		errs = append(errs, fmt.Errorf("SERVER_PORT %d out of range", c.ServerPort))
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}
	if c.MaxBodySize < 0 {
		errs = append(errs, errors.New("MAX_BODY_SIZE must not be negative"))
	}
	if c.RateLimit < 0 {
		errs = append(errs, errors.New("RATE_LIMIT must not be negative"))
	}
	if c.DemoMaxItems <= 0 {
		errs = append(errs, errors.New("DEMO_MAX_ITEMS must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.ServerHost, strconv.Itoa(c.ServerPort))
}
