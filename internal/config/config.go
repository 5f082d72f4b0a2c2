package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	AppEnv        string `yaml:"app_env"`
	HTTPAddr      string `yaml:"http_addr"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`

	// GatewayURL is the analysis gateway root; endpoints live under /api.
	GatewayURL string `yaml:"gateway_url"`

	PollInterval time.Duration `yaml:"poll_interval"`
	// RequestTimeout of zero leaves gateway requests without a deadline.
	RequestTimeout time.Duration `yaml:"request_timeout"`

	SnapshotsEnabled bool `yaml:"snapshots_enabled"`
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getenvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		// bare integers are milliseconds
		ms, convErr := strconv.Atoi(v)
		if convErr != nil {
			return def
		}
		return time.Duration(ms) * time.Millisecond
	}
	return d
}

func getenvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func defaults() Config {
	return Config{
		AppEnv:           "development",
		HTTPAddr:         ":8081",
		RedisAddr:        "127.0.0.1:6379",
		GatewayURL:       "http://127.0.0.1:8000",
		PollInterval:     2500 * time.Millisecond,
		SnapshotsEnabled: true,
	}
}

// Load builds the configuration from defaults, then the optional YAML file
// named by CONFIG_FILE, then environment variables.
func Load() (Config, error) {
	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.AppEnv = getenv("APP_ENV", cfg.AppEnv)
	cfg.HTTPAddr = getenv("HTTP_ADDR", cfg.HTTPAddr)
	cfg.RedisAddr = getenv("REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisPassword = getenv("REDIS_PASSWORD", cfg.RedisPassword)
	cfg.GatewayURL = getenv("GATEWAY_URL", cfg.GatewayURL)
	cfg.PollInterval = getenvDuration("POLL_INTERVAL", cfg.PollInterval)
	cfg.RequestTimeout = getenvDuration("REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.SnapshotsEnabled = getenvBool("SNAPSHOTS_ENABLED", cfg.SnapshotsEnabled)

	if cfg.GatewayURL == "" {
		return Config{}, fmt.Errorf("GATEWAY_URL is required")
	}
	if cfg.PollInterval <= 0 {
		return Config{}, fmt.Errorf("POLL_INTERVAL must be positive, got %s", cfg.PollInterval)
	}
	if cfg.SnapshotsEnabled && cfg.RedisAddr == "" {
		return Config{}, fmt.Errorf("REDIS_ADDR is required when snapshots are enabled")
	}
	return cfg, nil
}
