package configs

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewAppConfig_DefaultsAreValid(t *testing.T) {
	cfg := NewAppConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if cfg.RefreshInterval() != 2*time.Second {
		t.Fatalf("expected 2s refresh interval, got %v", cfg.RefreshInterval())
	}
	if cfg.Polling.DefaultAddress != "192.168.1.35:8080" {
		t.Fatalf("unexpected default address %q", cfg.Polling.DefaultAddress)
	}
}

func TestLoad_FileThenEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "queuewatch.yaml")
	content := `
log_level: debug
polling:
  refresh_interval_ms: 5000
  default_address: "10.0.0.5:9000"
store:
  type: redis
  redis_url: "redis://localhost:6379/0"
server:
  timeouts:
    idle: 30s
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("QUEUEWATCH_POLLING_REFRESH_INTERVAL_MS", "1000")
	t.Setenv("QUEUEWATCH_SERVER_ADDR", ":9999")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.LogLevel != "debug" {
		t.Fatalf("expected log level from file, got %q", cfg.LogLevel)
	}
	if cfg.Polling.RefreshIntervalMs != 1000 {
		t.Fatalf("expected env to override the file, got %d", cfg.Polling.RefreshIntervalMs)
	}
	if cfg.Polling.DefaultAddress != "10.0.0.5:9000" {
		t.Fatalf("expected default address from file, got %q", cfg.Polling.DefaultAddress)
	}
	if cfg.Polling.FetchTimeoutMs != 5000 {
		t.Fatalf("expected untouched default fetch timeout, got %d", cfg.Polling.FetchTimeoutMs)
	}
	if cfg.ServerConfig.Addr != ":9999" {
		t.Fatalf("expected server addr from env, got %q", cfg.ServerConfig.Addr)
	}
	if cfg.ServerConfig.Timeouts.Idle != 30*time.Second {
		t.Fatalf("expected idle timeout from file, got %v", cfg.ServerConfig.Timeouts.Idle)
	}
}

func TestLoad_ServerTimeoutsFollowFetchTimeout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queuewatch.yaml")
	content := `
polling:
  fetch_timeout_ms: 20000
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ServerConfig.Timeouts.Handle != 25*time.Second {
		t.Fatalf("expected the handle timeout to outlast the fetch, got %v", cfg.ServerConfig.Timeouts.Handle)
	}
	if cfg.ServerConfig.Timeouts.Write != 30*time.Second {
		t.Fatalf("expected the write timeout to outlast the handler, got %v", cfg.ServerConfig.Timeouts.Write)
	}
}

func TestNormalize_KeepsLargerTimeouts(t *testing.T) {
	cfg := NewAppConfig()
	cfg.ServerConfig.Timeouts.Handle = time.Minute
	cfg.ServerConfig.Timeouts.Write = 2 * time.Minute

	cfg.Normalize()

	if cfg.ServerConfig.Timeouts.Handle != time.Minute || cfg.ServerConfig.Timeouts.Write != 2*time.Minute {
		t.Fatalf("expected explicit timeouts to be kept, got %+v", cfg.ServerConfig.Timeouts)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *AppConfigs)
	}{
		{"zero refresh interval", func(c *AppConfigs) { c.Polling.RefreshIntervalMs = 0 }},
		{"zero fetch timeout", func(c *AppConfigs) { c.Polling.FetchTimeoutMs = 0 }},
		{"zero burst", func(c *AppConfigs) { c.Polling.ConnectBurst = 0 }},
		{"unknown store", func(c *AppConfigs) { c.Store.Type = "etcd" }},
		{"redis without url", func(c *AppConfigs) { c.Store.Type = "redis" }},
		{"postgres without url", func(c *AppConfigs) { c.Store.Type = "postgres" }},
		{"sqlite without optimize interval", func(c *AppConfigs) { c.Store.OptimizeIntervalMs = 0 }},
		{"bridge without url", func(c *AppConfigs) {
			c.Bridge.Enabled = true
			c.Bridge.ManagementURL = ""
		}},
		{"empty server addr", func(c *AppConfigs) { c.ServerConfig.Addr = "" }},
		{"handle timeout shorter than fetch", func(c *AppConfigs) { c.Polling.FetchTimeoutMs = 20 * 1000 }},
		{"write timeout shorter than handle", func(c *AppConfigs) { c.ServerConfig.Timeouts.Write = c.ServerConfig.Timeouts.Handle }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewAppConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}
