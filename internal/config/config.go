// Package config loads tracker settings from the environment
package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/KirkDiggler/initiative-tracker/internal/errors"
)

// Backend selects where rosters and settings are persisted
type Backend string

// Supported storage backends
const (
	BackendSQLite Backend = "sqlite"
	BackendRedis  Backend = "redis"
	BackendMemory Backend = "memory"
)

// DefaultSQLiteFile is created in the user's home directory
const DefaultSQLiteFile = ".initiative-tracker.db"

// Config is the runtime configuration
type Config struct {
	Backend        Backend       `env:"TRACKER_STORAGE_BACKEND" envDefault:"sqlite"`
	SQLitePath     string        `env:"TRACKER_SQLITE_PATH"`
	RedisAddr      string        `env:"TRACKER_REDIS_ADDR" envDefault:"localhost:6379"`
	RedisKeyPrefix string        `env:"TRACKER_REDIS_KEY_PREFIX" envDefault:"tracker:"`
	LogLevel       string        `env:"TRACKER_LOG_LEVEL" envDefault:"info"`
	WriteTimeout   time.Duration `env:"TRACKER_WRITE_TIMEOUT" envDefault:"2s"`
}

// Load parses the environment and fills in the SQLite path when unset
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "parse env")
	}

	if cfg.SQLitePath == "" {
		cfg.SQLitePath = DefaultSQLitePath()
	}

	return cfg, nil
}

// DefaultSQLitePath returns ~/.initiative-tracker.db, or a file in the
// working directory when the home directory is unknown
func DefaultSQLitePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultSQLiteFile
	}
	return filepath.Join(home, DefaultSQLiteFile)
}

// Validate checks the configuration for the selected backend
func (c *Config) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config is required")
	}

	vb := errors.NewValidationBuilder()
	errors.ValidateEnum("Backend", string(c.Backend),
		[]string{string(BackendSQLite), string(BackendRedis), string(BackendMemory)}, vb)

	switch c.Backend {
	case BackendSQLite:
		errors.ValidateRequired("SQLitePath", c.SQLitePath, vb)
	case BackendRedis:
		errors.ValidateRequired("RedisAddr", c.RedisAddr, vb)
	}

	if _, err := ParseLevel(c.LogLevel); err != nil {
		vb.Fieldf("LogLevel", "unknown level %q", c.LogLevel)
	}
	if c.WriteTimeout <= 0 {
		vb.Field("WriteTimeout", "must be positive")
	}

	return vb.Build()
}

// SlogLevel returns the configured level, defaulting to info
func (c *Config) SlogLevel() slog.Level {
	level, err := ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

// ParseLevel accepts debug, info, warn or error in any case
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, errors.InvalidArgumentf("unknown log level %q", s)
	}
	return level, nil
}
