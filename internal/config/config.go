// Package config loads authform settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Backends lists the accepted backend names.
var Backends = []string{BackendSQLite, BackendRedis, BackendMemory}

// Config is the runtime configuration. CLI flags override these values.
type Config struct {
	Database    string        `env:"AUTHFORM_DB" envDefault:"authform.db"`
	Backend     string        `env:"AUTHFORM_BACKEND" envDefault:"sqlite"`
	RedisAddr   string        `env:"AUTHFORM_REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPrefix string        `env:"AUTHFORM_REDIS_PREFIX"`
	Debounce    time.Duration `env:"AUTHFORM_DEBOUNCE" envDefault:"500ms"`
	LogLevel    string        `env:"AUTHFORM_LOG_LEVEL" envDefault:"info"`
}

// ParseEnv loads configuration from environment variables into target.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses the environment into a Config and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks enumerated and range-limited fields.
func (c Config) Validate() error {
	if !isBackend(c.Backend) {
		return fmt.Errorf("invalid backend %q: must be one of %v", c.Backend, Backends)
	}
	if c.Debounce <= 0 {
		return fmt.Errorf("invalid debounce %s: must be positive", c.Debounce)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLevel maps debug|info|warn|error to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

func isBackend(b string) bool {
	for _, known := range Backends {
		if known == b {
			return true
		}
	}
	return false
}
