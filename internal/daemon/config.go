// Package daemon manages the Mentor daemon lifecycle and configuration.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/mentor-ia/mentor/internal/app/library"
)

// Store drivers.
const (
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

// Config holds all daemon configuration.
type Config struct {
	Store     StoreConfig     `toml:"store"`
	API       APIConfig       `toml:"api"`
	Logging   LoggingConfig   `toml:"logging"`
	Telemetry TelemetryConfig `toml:"telemetry"`
	Quota     QuotaConfig     `toml:"quota"`
}

// StoreConfig selects and configures the key-value backend.
type StoreConfig struct {
	Driver      string `toml:"driver"`
	Dir         string `toml:"dir"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password,omitempty"`
	RedisDB       int    `toml:"redis_db"`
	RedisPrefix   string `toml:"redis_prefix"`
}

// RedisPasswordEnv overrides store.redis_password when set.
const RedisPasswordEnv = "MENTOR_REDIS_PASSWORD"

// APIConfig controls the HTTP API server.
type APIConfig struct {
	Host        string   `toml:"host"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level       string `toml:"level"`
	Development bool   `toml:"development"`
}

// TelemetryConfig controls metrics exposure.
type TelemetryConfig struct {
	Prometheus bool `toml:"prometheus"`
}

// QuotaConfig controls the free daily allowance.
type QuotaConfig struct {
	DailyFreeLimit int `toml:"daily_free_limit"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		Store: StoreConfig{
			Driver:      DriverSQLite,
			Dir:         mentorHome(),
			RedisAddr:   "127.0.0.1:6379",
			RedisPrefix: "mentor:",
		},
		API: APIConfig{
			Host:        "127.0.0.1",
			Port:        8787,
			CORSOrigins: []string{"*"},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Quota: QuotaConfig{
			DailyFreeLimit: library.DefaultDailyLimit,
		},
	}
}

// Validate checks values the daemon cannot start with.
func (c Config) Validate() error {
	switch c.Store.Driver {
	case DriverSQLite, DriverRedis:
	default:
		return fmt.Errorf("store.driver %q: must be %q or %q", c.Store.Driver, DriverSQLite, DriverRedis)
	}
	if c.API.Port < 0 || c.API.Port > 65535 {
		return fmt.Errorf("api.port %d out of range", c.API.Port)
	}
	if c.Quota.DailyFreeLimit < 1 {
		return fmt.Errorf("quota.daily_free_limit must be positive, got %d", c.Quota.DailyFreeLimit)
	}
	return nil
}

// LoadConfig reads config from $MENTOR_HOME/config.toml, falling back to
// defaults. $MENTOR_REDIS_PASSWORD takes precedence over the file.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	path := ConfigPath()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return cfg, fmt.Errorf("stat config: %w", err)
	}

	if pw := os.Getenv(RedisPasswordEnv); pw != "" {
		cfg.Store.RedisPassword = pw
	}
	if cfg.Store.Dir == "" {
		cfg.Store.Dir = mentorHome()
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes the config to $MENTOR_HOME/config.toml.
func SaveConfig(cfg Config) error {
	path := ConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// ConfigPath is the config file location.
func ConfigPath() string {
	return filepath.Join(mentorHome(), "config.toml")
}

// mentorHome returns the Mentor data directory.
func mentorHome() string {
	if env := os.Getenv("MENTOR_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".mentor")
}
