package daemon

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	t.Setenv("MENTOR_HOME", "/tmp/mentor-home")
	cfg := DefaultConfig()

	if cfg.Store.Driver != DriverSQLite {
		t.Errorf("Store.Driver = %q, want %q", cfg.Store.Driver, DriverSQLite)
	}
	if cfg.Store.Dir != "/tmp/mentor-home" {
		t.Errorf("Store.Dir = %q, want MENTOR_HOME", cfg.Store.Dir)
	}
	if cfg.API.Host != "127.0.0.1" {
		t.Errorf("API.Host = %q, want %q", cfg.API.Host, "127.0.0.1")
	}
	if cfg.API.Port != 8787 {
		t.Errorf("API.Port = %d, want %d", cfg.API.Port, 8787)
	}
	if cfg.Quota.DailyFreeLimit != 5 {
		t.Errorf("Quota.DailyFreeLimit = %d, want 5", cfg.Quota.DailyFreeLimit)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("MENTOR_HOME", t.TempDir())

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.API.Port != DefaultConfig().API.Port {
		t.Errorf("API.Port = %d, want default", cfg.API.Port)
	}
}

func TestLoadConfig_OverridesFromFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("MENTOR_HOME", home)

	body := `
[store]
driver = "redis"
redis_addr = "cache:6379"
redis_password = "s3cret"
redis_db = 2

[api]
port = 9000

[logging]
level = "debug"

[telemetry]
prometheus = true

[quota]
daily_free_limit = 12
`
	if err := os.WriteFile(filepath.Join(home, "config.toml"), []byte(body), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.Store.Driver != DriverRedis || cfg.Store.RedisAddr != "cache:6379" || cfg.Store.RedisDB != 2 {
		t.Errorf("Store = %+v", cfg.Store)
	}
	if cfg.Store.RedisPassword != "s3cret" {
		t.Errorf("RedisPassword = %q, want from file", cfg.Store.RedisPassword)
	}
	if cfg.Store.RedisPrefix != "mentor:" {
		t.Errorf("RedisPrefix = %q, want default kept", cfg.Store.RedisPrefix)
	}
	if cfg.API.Port != 9000 || cfg.API.Host != "127.0.0.1" {
		t.Errorf("API = %+v", cfg.API)
	}
	if cfg.Logging.Level != "debug" || !cfg.Telemetry.Prometheus {
		t.Errorf("Logging/Telemetry = %+v %+v", cfg.Logging, cfg.Telemetry)
	}
	if cfg.Quota.DailyFreeLimit != 12 {
		t.Errorf("DailyFreeLimit = %d, want 12", cfg.Quota.DailyFreeLimit)
	}
}

func TestLoadConfig_ParseError(t *testing.T) {
	home := t.TempDir()
	t.Setenv("MENTOR_HOME", home)
	if err := os.WriteFile(filepath.Join(home, "config.toml"), []byte("[api\nport = "), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfig(); err == nil || !strings.Contains(err.Error(), "parse config") {
		t.Errorf("LoadConfig() error = %v, want parse error", err)
	}
}

func TestLoadConfig_InvalidDriver(t *testing.T) {
	home := t.TempDir()
	t.Setenv("MENTOR_HOME", home)
	if err := os.WriteFile(filepath.Join(home, "config.toml"), []byte("[store]\ndriver = \"etcd\"\n"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfig(); err == nil {
		t.Error("expected error for unknown driver")
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	t.Setenv("MENTOR_HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.API.Port = 9123
	cfg.Quota.DailyFreeLimit = 7
	if err := SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig() error: %v", err)
	}

	got, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if got.API.Port != 9123 || got.Quota.DailyFreeLimit != 7 {
		t.Errorf("round trip lost values: %+v", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"default", func(*Config) {}, true},
		{"redis", func(c *Config) { c.Store.Driver = DriverRedis }, true},
		{"bad driver", func(c *Config) { c.Store.Driver = "bolt" }, false},
		{"bad port", func(c *Config) { c.API.Port = 70000 }, false},
		{"zero quota", func(c *Config) { c.Quota.DailyFreeLimit = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err == nil) != tt.ok {
				t.Errorf("Validate() = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}

func TestLoadConfig_RedisPasswordFromEnv(t *testing.T) {
	home := t.TempDir()
	t.Setenv("MENTOR_HOME", home)
	t.Setenv(RedisPasswordEnv, "from-env")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.Store.RedisPassword != "from-env" {
		t.Errorf("RedisPassword = %q, want from-env without a file", cfg.Store.RedisPassword)
	}

	body := "[store]\nredis_password = \"from-file\"\n"
	if err := os.WriteFile(filepath.Join(home, "config.toml"), []byte(body), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err = LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.Store.RedisPassword != "from-env" {
		t.Errorf("RedisPassword = %q, env should win over the file", cfg.Store.RedisPassword)
	}
}
