package configs

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/n0rdy/queuewatch/common"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const envPrefix = "QUEUEWATCH_"

type AppConfigs struct {
	LogLevel       string        `yaml:"log_level" env:"LOG_LEVEL"`
	LogFormat      string        `yaml:"log_format" env:"LOG_FORMAT"` // "json" or "console"
	AuthSecret     string        `yaml:"auth_secret" env:"AUTH_SECRET"`
	MetricsEnabled bool          `yaml:"metrics_enabled" env:"METRICS_ENABLED"`
	Polling        PollingConfig `yaml:"polling" envPrefix:"POLLING_"`
	Store          StoreConfig   `yaml:"store" envPrefix:"STORE_"`
	Bridge         BridgeConfig  `yaml:"bridge" envPrefix:"BRIDGE_"`
	ServerConfig   ServerConfig  `yaml:"server" envPrefix:"SERVER_"` // Configuration for the server, including timeouts
}

type PollingConfig struct {
	DefaultAddress    string `yaml:"default_address" env:"DEFAULT_ADDRESS"`         // Placeholder address used when nothing was persisted yet
	RefreshIntervalMs int64  `yaml:"refresh_interval_ms" env:"REFRESH_INTERVAL_MS"` // Period of the silent background refresh while live
	FetchTimeoutMs    int64  `yaml:"fetch_timeout_ms" env:"FETCH_TIMEOUT_MS"`       // Timeout of a single GET against the broker
	PersistTimeoutMs  int64  `yaml:"persist_timeout_ms" env:"PERSIST_TIMEOUT_MS"`   // Timeout of the address store write after a successful connect
	ConnectMinGapMs   int64  `yaml:"connect_min_gap_ms" env:"CONNECT_MIN_GAP_MS"`   // Minimum gap between user-initiated connects accepted over HTTP
	ConnectBurst      int    `yaml:"connect_burst" env:"CONNECT_BURST"`             // Connects allowed back to back before the gap applies
	AddressDebounceMs int64  `yaml:"address_debounce_ms" env:"ADDRESS_DEBOUNCE_MS"` // Delay the dashboard waits after the last keystroke before submitting an address edit
}

type StoreConfig struct {
	Type               string `yaml:"type" env:"TYPE"`               // sqlite, redis or postgres
	SQLitePath         string `yaml:"sqlite_path" env:"SQLITE_PATH"` // Empty means the per-OS default data directory
	RedisURL           string `yaml:"redis_url" env:"REDIS_URL"`
	PostgresURL        string `yaml:"postgres_url" env:"POSTGRES_URL"`
	OptimizeIntervalMs int64  `yaml:"optimize_interval_ms" env:"OPTIMIZE_INTERVAL_MS"` // SQLite only
}

type BridgeConfig struct {
	Enabled       bool   `yaml:"enabled" env:"ENABLED"`
	ManagementURL string `yaml:"management_url" env:"MANAGEMENT_URL"`
	Username      string `yaml:"username" env:"USERNAME"`
	Password      string `yaml:"password" env:"PASSWORD"`
}

type ServerConfig struct {
	Addr     string         `yaml:"addr" env:"ADDR"`
	Timeouts ServerTimeouts `yaml:"timeouts" envPrefix:"TIMEOUT_"`
}

type ServerTimeouts struct {
	Handle     time.Duration `yaml:"handle" env:"HANDLE"`
	Write      time.Duration `yaml:"write" env:"WRITE"`
	Read       time.Duration `yaml:"read" env:"READ"`
	ReadHeader time.Duration `yaml:"read_header" env:"READ_HEADER"`
	Idle       time.Duration `yaml:"idle" env:"IDLE"`
}

const handleTimeoutBuffer = 5 * time.Second

func NewAppConfig() *AppConfigs {
	fetchTimeoutMs := 5 * 1000

	return &AppConfigs{
		LogLevel:       "info",
		LogFormat:      "json",
		MetricsEnabled: true,
		Polling: PollingConfig{
			DefaultAddress:    "192.168.1.35:8080",
			RefreshIntervalMs: 2 * 1000,              // 2 seconds
			FetchTimeoutMs:    int64(fetchTimeoutMs), // 5 seconds
			PersistTimeoutMs:  2 * 1000,              // 2 seconds
			ConnectMinGapMs:   500,                   // 0.5 seconds
			ConnectBurst:      3,
			AddressDebounceMs: 500, // 0.5 seconds
		},
		Store: StoreConfig{
			Type:               common.SQLiteStore,
			OptimizeIntervalMs: 60 * 60 * 1000, // 1 hour
		},
		Bridge: BridgeConfig{
			ManagementURL: "http://localhost:15672",
			Username:      "guest",
			Password:      "guest",
		},
		ServerConfig: ServerConfig{
			Addr: "localhost:8080",
			Timeouts: ServerTimeouts{
				Handle:     time.Duration(fetchTimeoutMs)*time.Millisecond + handleTimeoutBuffer,   // 10s - connect fetch + buffer
				Write:      time.Duration(fetchTimeoutMs)*time.Millisecond + 2*handleTimeoutBuffer, // 15s - handle + write buffer
				Read:       10 * time.Second,                                                       // 10s - request bodies are tiny
				ReadHeader: 5 * time.Second,                                                        // 5s - headers shouldn't take long
				Idle:       5 * time.Minute,                                                        // 5m - keep connections alive for the dashboard polling
			},
		},
	}
}

// Load builds the configuration from defaults, then the optional YAML file, then the environment.
// A .env file in the working directory is read for local development.
func Load(path string) (*AppConfigs, error) {
	cfg := NewAppConfig()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	_ = godotenv.Load()

	// no envDefault tags on purpose: unset variables keep the file or default values
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: envPrefix}); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Normalize raises the server timeouts that would cut off a connect before its fetch times out.
// The defaults are computed from the default fetch timeout, so a larger configured one needs them moved.
func (c *AppConfigs) Normalize() {
	timeouts := &c.ServerConfig.Timeouts
	if timeouts.Handle <= c.FetchTimeout() {
		timeouts.Handle = c.FetchTimeout() + handleTimeoutBuffer
	}
	if timeouts.Write <= timeouts.Handle {
		timeouts.Write = timeouts.Handle + handleTimeoutBuffer
	}
}

// Validate checks configuration correctness. It does not mutate the configuration.
func (c *AppConfigs) Validate() error {
	if c.Polling.RefreshIntervalMs <= 0 {
		return errors.New("polling.refresh_interval_ms must be > 0")
	}
	if c.Polling.FetchTimeoutMs <= 0 {
		return errors.New("polling.fetch_timeout_ms must be > 0")
	}
	if c.Polling.PersistTimeoutMs <= 0 {
		return errors.New("polling.persist_timeout_ms must be > 0")
	}
	if c.Polling.ConnectMinGapMs < 0 || c.Polling.ConnectBurst < 1 {
		return errors.New("polling.connect_min_gap_ms must be >= 0 and polling.connect_burst >= 1")
	}

	if !common.SupportedStores[c.Store.Type] {
		return fmt.Errorf("store.type %q is not supported: use sqlite, redis or postgres", c.Store.Type)
	}
	if c.Store.Type == common.SQLiteStore && c.Store.OptimizeIntervalMs <= 0 {
		return errors.New("store.optimize_interval_ms must be > 0")
	}
	if c.Store.Type == common.RedisStore && c.Store.RedisURL == "" {
		return errors.New("store.redis_url is required for the redis store")
	}
	if c.Store.Type == common.PostgresStore && c.Store.PostgresURL == "" {
		return errors.New("store.postgres_url is required for the postgres store")
	}

	if c.Bridge.Enabled && c.Bridge.ManagementURL == "" {
		return errors.New("bridge.management_url is required when the bridge is enabled")
	}

	if c.ServerConfig.Addr == "" {
		return errors.New("server.addr is required")
	}
	if c.ServerConfig.Timeouts.Handle <= c.FetchTimeout() {
		return errors.New("server.timeouts.handle must be greater than polling.fetch_timeout_ms")
	}
	if c.ServerConfig.Timeouts.Write <= c.ServerConfig.Timeouts.Handle {
		return errors.New("server.timeouts.write must be greater than server.timeouts.handle")
	}
	return nil
}

func (c *AppConfigs) RefreshInterval() time.Duration {
	return time.Duration(c.Polling.RefreshIntervalMs) * time.Millisecond
}

func (c *AppConfigs) FetchTimeout() time.Duration {
	return time.Duration(c.Polling.FetchTimeoutMs) * time.Millisecond
}

func (c *AppConfigs) PersistTimeout() time.Duration {
	return time.Duration(c.Polling.PersistTimeoutMs) * time.Millisecond
}

func (c *AppConfigs) ConnectMinGap() time.Duration {
	return time.Duration(c.Polling.ConnectMinGapMs) * time.Millisecond
}
