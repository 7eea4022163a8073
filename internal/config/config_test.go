package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadRequiresServerURL(t *testing.T) {
	t.Setenv("CHESS_SERVER_URL", "")
	t.Setenv("CHESS_CONFIG_FILE", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error without CHESS_SERVER_URL")
	}
}

func TestDefaults(t *testing.T) {
	t.Setenv("CHESS_CONFIG_FILE", "")
	t.Setenv("CHESS_SERVER_URL", "http://localhost:8080")
	t.Setenv("CHESS_POLL_INTERVAL_MS", "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PollInterval() != 5*time.Second || cfg.ListInterval() != 2*time.Second {
		t.Fatalf("intervals %v %v", cfg.PollInterval(), cfg.ListInterval())
	}
	if cfg.GridSize != 63 || cfg.FPS != 60 || cfg.RetryMax != 3 {
		t.Fatalf("defaults %+v", cfg)
	}
	if cfg.AssetURL != "http://localhost:8080" {
		t.Fatalf("asset url should fall back to server url, got %q", cfg.AssetURL)
	}
}

func TestFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "client.yaml")
	body := "server_url: http://from-file\npoll_interval_ms: 1000\ngrid_size: 40\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CHESS_CONFIG_FILE", path)
	t.Setenv("CHESS_SERVER_URL", "")
	t.Setenv("CHESS_GRID_SIZE", "50")
	t.Setenv("CHESS_POLL_INTERVAL_MS", "-3")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ServerURL != "http://from-file" {
		t.Fatalf("server url %q", cfg.ServerURL)
	}
	if cfg.GridSize != 50 {
		t.Fatalf("env should win over file: %d", cfg.GridSize)
	}
	if cfg.PollIntervalMs != 1000 {
		t.Fatalf("bad env value should keep file value: %d", cfg.PollIntervalMs)
	}
}

func TestBadFile(t *testing.T) {
	t.Setenv("CHESS_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := LoadPartial(); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
