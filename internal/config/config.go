// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"regexp"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/hashicorp/go-hclog"
	"github.com/joho/godotenv"

	"github.com/matthewbaird/offboarding/internal/offboarding"
)

var currencyCode = regexp.MustCompile(`^[A-Z]{3}$`)

// Config holds all application configuration.
type Config struct {
	DatabaseURL          string        `env:"DATABASE_URL" envDefault:"file:offboarding.db?_pragma=foreign_keys(1)"`
	Port                 int           `env:"PORT" envDefault:"8080"`
	LogLevel             string        `env:"LOG_LEVEL" envDefault:"info"`
	StepTimeout          time.Duration `env:"STEP_TIMEOUT" envDefault:"10s"`
	RetryMaxAttempts     int           `env:"RETRY_MAX_ATTEMPTS" envDefault:"3"`
	RetryInitialInterval time.Duration `env:"RETRY_INITIAL_INTERVAL" envDefault:"50ms"`
	EventBufferSize      int           `env:"EVENT_BUFFER_SIZE" envDefault:"256"`
	DefaultCurrency      string        `env:"DEFAULT_CURRENCY" envDefault:"USD"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	// Attempt to load .env file for local development.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.RetryMaxAttempts < 1 {
		return fmt.Errorf("RETRY_MAX_ATTEMPTS must be at least 1, got %d", c.RetryMaxAttempts)
	}
	if c.StepTimeout <= 0 {
		return fmt.Errorf("STEP_TIMEOUT must be positive, got %s", c.StepTimeout)
	}
	if c.EventBufferSize < 1 {
		return fmt.Errorf("EVENT_BUFFER_SIZE must be at least 1, got %d", c.EventBufferSize)
	}
	if !currencyCode.MatchString(c.DefaultCurrency) {
		return fmt.Errorf("DEFAULT_CURRENCY must be a three-letter ISO 4217 code, got %q", c.DefaultCurrency)
	}
	if hclog.LevelFromString(c.LogLevel) == hclog.NoLevel {
		return fmt.Errorf("unknown LOG_LEVEL %q", c.LogLevel)
	}
	return nil
}

// Offboarding returns the orchestrator settings.
func (c *Config) Offboarding() offboarding.Config {
	return offboarding.Config{
		StepTimeout: c.StepTimeout,
		Retry:       c.Retry(),
	}
}

// Retry returns the transient-store retry policy.
func (c *Config) Retry() offboarding.RetryPolicy {
	return offboarding.RetryPolicy{
		MaxAttempts:     c.RetryMaxAttempts,
		InitialInterval: c.RetryInitialInterval,
	}
}

// Logger builds the root logger at the configured level.
func (c *Config) Logger(name string) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:  name,
		Level: hclog.LevelFromString(c.LogLevel),
	})
}
