package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"
)

type AppConfig struct {
	ServerURL string `yaml:"server_url"`
	AssetURL  string `yaml:"asset_url"`
	AssetDir  string `yaml:"asset_dir"`

	PlayerName string `yaml:"player_name"`

	PollIntervalMs int `yaml:"poll_interval_ms"`
	ListIntervalMs int `yaml:"list_interval_ms"`
	GridSize       int `yaml:"grid_size"`
	FPS            int `yaml:"fps"`

	HTTPTimeoutMs int `yaml:"http_timeout_ms"`
	RetryMax      int `yaml:"retry_max"`

	RedisURL    string `yaml:"redis_url"`
	DatabaseURL string `yaml:"database_url"`

	MessagesDir string `yaml:"messages_dir"`
	StubAddr    string `yaml:"stub_addr"`
}

func defaults() *AppConfig {
	return &AppConfig{
		PollIntervalMs: 5000,
		ListIntervalMs: 2000,
		GridSize:       63,
		FPS:            60,
		HTTPTimeoutMs:  10000,
		RetryMax:       3,
		StubAddr:       ":8080",
	}
}

func (c *AppConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

func (c *AppConfig) ListInterval() time.Duration {
	return time.Duration(c.ListIntervalMs) * time.Millisecond
}

func (c *AppConfig) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutMs) * time.Millisecond
}

// Load reads the client configuration. Values come from built-in defaults,
// then the YAML file named by CHESS_CONFIG_FILE, then the environment.
func Load() (*AppConfig, error) {
	cfg, err := LoadPartial()
	if err != nil {
		return nil, err
	}
	if cfg.ServerURL == "" {
		return nil, errors.New("CHESS_SERVER_URL is required")
	}
	return cfg, nil
}

// LoadPartial is Load without the required-key checks. The stub server
// uses it since it has no upstream.
func LoadPartial() (*AppConfig, error) {
	cfg := defaults()

	if path := strings.TrimSpace(os.Getenv("CHESS_CONFIG_FILE")); path != "" {
		if err := applyFile(cfg, path); err != nil {
			return nil, err
		}
	}

	setString(&cfg.ServerURL, "CHESS_SERVER_URL")
	setString(&cfg.AssetURL, "CHESS_ASSET_URL")
	setString(&cfg.AssetDir, "CHESS_ASSET_DIR")
	setString(&cfg.PlayerName, "CHESS_PLAYER_NAME")
	setString(&cfg.RedisURL, "REDIS_URL")
	setString(&cfg.DatabaseURL, "DATABASE_URL")
	setString(&cfg.MessagesDir, "CHESS_MESSAGES_DIR")
	setString(&cfg.StubAddr, "CHESS_STUB_ADDR")

	setPositive(&cfg.PollIntervalMs, "CHESS_POLL_INTERVAL_MS")
	setPositive(&cfg.ListIntervalMs, "CHESS_LIST_INTERVAL_MS")
	setPositive(&cfg.GridSize, "CHESS_GRID_SIZE")
	setPositive(&cfg.FPS, "CHESS_FPS")
	setPositive(&cfg.HTTPTimeoutMs, "CHESS_HTTP_TIMEOUT_MS")
	setPositive(&cfg.RetryMax, "CHESS_RETRY_MAX")

	if cfg.AssetURL == "" {
		cfg.AssetURL = cfg.ServerURL
	}
	return cfg, nil
}

func applyFile(cfg *AppConfig, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

// setPositive ignores unparsable or non-positive values and keeps the current one.
func setPositive(dst *int, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			*dst = n
		}
	}
}
