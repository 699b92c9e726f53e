// Package config loads and validates service configuration via Viper.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces every environment override, e.g. STYLEGUIDE_SERVER_PORT.
const EnvPrefix = "STYLEGUIDE"

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Auth         AuthConfig         `mapstructure:"auth"`
	Logging      LoggingConfig      `mapstructure:"logging"`
	Browser      BrowserConfig      `mapstructure:"browser"`
	Orchestrator OrchestratorConfig `mapstructure:"orchestrator"`
	Probe        ProbeConfig        `mapstructure:"probe"`
	Store        StoreConfig        `mapstructure:"store"`
	Documents    DocumentsConfig    `mapstructure:"documents"`
	Notify       NotifyConfig       `mapstructure:"notify"`
	Telemetry    TelemetryConfig    `mapstructure:"telemetry"`
	Progress     ProgressConfig     `mapstructure:"progress"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// AuthConfig defines API authentication toggles.
type AuthConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// BrowserConfig configures the headless Chrome sessions.
type BrowserConfig struct {
	ExecPath          string        `mapstructure:"exec_path"`
	Headless          bool          `mapstructure:"headless"`
	MaxSessions       int           `mapstructure:"max_sessions"`
	UserAgent         string        `mapstructure:"user_agent"`
	ViewportWidth     int           `mapstructure:"viewport_width"`
	ViewportHeight    int           `mapstructure:"viewport_height"`
	DomainQPS         float64       `mapstructure:"domain_qps"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout"`
}

// OrchestratorConfig governs the job queue and worker pool.
type OrchestratorConfig struct {
	Concurrency int           `mapstructure:"concurrency"`
	QueueDepth  int           `mapstructure:"queue_depth"`
	JobTimeout  time.Duration `mapstructure:"job_timeout"`
}

// ProbeConfig controls the pre-navigation reachability check.
type ProbeConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// StoreConfig selects and configures the job store.
type StoreConfig struct {
	// Backend is memory, redis or postgres.
	Backend   string        `mapstructure:"backend"`
	TTL       time.Duration `mapstructure:"ttl"`
	Namespace string        `mapstructure:"namespace"`
	// Fallback keeps an in-memory store behind a remote backend.
	Fallback bool           `mapstructure:"fallback"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

// RedisConfig holds connection settings for the Redis job store.
type RedisConfig struct {
	Addr       string `mapstructure:"addr"`
	Password   string `mapstructure:"password"`
	DB         int    `mapstructure:"db"`
	MaxRetries int    `mapstructure:"max_retries"`
}

// PostgresConfig holds connection settings for the Postgres stores.
type PostgresConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	Table           string        `mapstructure:"table"`
	Migrate         bool          `mapstructure:"migrate"`
}

// DocumentsConfig selects where rendered documents are written.
type DocumentsConfig struct {
	// Backend is memory, local or gcs.
	Backend string `mapstructure:"backend"`
	Dir     string `mapstructure:"dir"`
	Bucket  string `mapstructure:"bucket"`
	Prefix  string `mapstructure:"prefix"`
}

// NotifyConfig selects the job event publisher.
type NotifyConfig struct {
	// Backend is none, memory, pubsub or kafka.
	Backend   string   `mapstructure:"backend"`
	Topic     string   `mapstructure:"topic"`
	ProjectID string   `mapstructure:"project_id"`
	Brokers   []string `mapstructure:"brokers"`
}

// TelemetryConfig controls tracing.
type TelemetryConfig struct {
	ServiceName string  `mapstructure:"service_name"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

// ProgressConfig tunes the progress hub batching.
type ProgressConfig struct {
	BufferSize     int           `mapstructure:"buffer_size"`
	MaxBatchEvents int           `mapstructure:"max_batch_events"`
	MaxBatchWait   time.Duration `mapstructure:"max_batch_wait"`
	SinkTimeout    time.Duration `mapstructure:"sink_timeout"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Notify.Brokers = splitList(cfg.Notify.Brokers)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadEnvFile exports the variables of a dotenv file into the process
// environment. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.request_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.api_key", "")
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.level", "info")
	v.SetDefault("browser.exec_path", "")
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.max_sessions", 2)
	v.SetDefault("browser.user_agent", "")
	v.SetDefault("browser.viewport_width", 1920)
	v.SetDefault("browser.viewport_height", 1080)
	v.SetDefault("browser.domain_qps", 0.5)
	v.SetDefault("browser.navigation_timeout", "30s")
	v.SetDefault("orchestrator.concurrency", 2)
	v.SetDefault("orchestrator.queue_depth", 64)
	v.SetDefault("orchestrator.job_timeout", "3m")
	v.SetDefault("probe.enabled", true)
	v.SetDefault("probe.user_agent", "style-guide-generator/0.1")
	v.SetDefault("probe.timeout", "15s")
	v.SetDefault("store.backend", "memory")
	v.SetDefault("store.ttl", "24h")
	v.SetDefault("store.namespace", "styleguide")
	v.SetDefault("store.fallback", true)
	v.SetDefault("store.redis.addr", "localhost:6379")
	v.SetDefault("store.redis.password", "")
	v.SetDefault("store.redis.db", 0)
	v.SetDefault("store.redis.max_retries", 10)
	v.SetDefault("store.postgres.dsn", "")
	v.SetDefault("store.postgres.max_conns", 8)
	v.SetDefault("store.postgres.min_conns", 0)
	v.SetDefault("store.postgres.max_conn_lifetime", "30m")
	v.SetDefault("store.postgres.table", "style_jobs")
	v.SetDefault("store.postgres.migrate", true)
	v.SetDefault("documents.backend", "memory")
	v.SetDefault("documents.dir", "data/documents")
	v.SetDefault("documents.bucket", "")
	v.SetDefault("documents.prefix", "")
	v.SetDefault("notify.backend", "none")
	v.SetDefault("notify.topic", "style-jobs")
	v.SetDefault("notify.project_id", "")
	v.SetDefault("notify.brokers", []string{})
	v.SetDefault("telemetry.service_name", "style-guide-generator")
	v.SetDefault("telemetry.sample_ratio", 1.0)
	v.SetDefault("progress.buffer_size", 4096)
	v.SetDefault("progress.max_batch_events", 1000)
	v.SetDefault("progress.max_batch_wait", "500ms")
	v.SetDefault("progress.sink_timeout", "10s")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("server.request_timeout must be > 0")
	}
	if c.Auth.Enabled && c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key must be set when auth is enabled")
	}
	if c.Orchestrator.Concurrency <= 0 {
		return fmt.Errorf("orchestrator.concurrency must be > 0")
	}
	if c.Orchestrator.QueueDepth <= 0 {
		return fmt.Errorf("orchestrator.queue_depth must be > 0")
	}
	if c.Orchestrator.JobTimeout <= 0 {
		return fmt.Errorf("orchestrator.job_timeout must be > 0")
	}
	if c.Browser.MaxSessions <= 0 {
		return fmt.Errorf("browser.max_sessions must be > 0")
	}
	if c.Store.TTL <= 0 {
		return fmt.Errorf("store.ttl must be > 0")
	}
	switch c.Store.Backend {
	case "memory":
	case "redis":
		if c.Store.Redis.Addr == "" {
			return fmt.Errorf("store.redis.addr must be set when store.backend is redis")
		}
	case "postgres":
		if c.Store.Postgres.DSN == "" {
			return fmt.Errorf("store.postgres.dsn must be set when store.backend is postgres")
		}
	default:
		return fmt.Errorf("unknown store.backend %q", c.Store.Backend)
	}
	switch c.Documents.Backend {
	case "memory":
	case "local":
		if c.Documents.Dir == "" {
			return fmt.Errorf("documents.dir must be set when documents.backend is local")
		}
	case "gcs":
		if c.Documents.Bucket == "" {
			return fmt.Errorf("documents.bucket must be set when documents.backend is gcs")
		}
	default:
		return fmt.Errorf("unknown documents.backend %q", c.Documents.Backend)
	}
	switch c.Notify.Backend {
	case "none", "memory":
	case "pubsub":
		if c.Notify.ProjectID == "" {
			return fmt.Errorf("notify.project_id must be set when notify.backend is pubsub")
		}
	case "kafka":
		if len(c.Notify.Brokers) == 0 {
			return fmt.Errorf("notify.brokers must be set when notify.backend is kafka")
		}
	default:
		return fmt.Errorf("unknown notify.backend %q", c.Notify.Backend)
	}
	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("telemetry.sample_ratio must be within [0,1]")
	}
	return nil
}

// Addr returns the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// splitList expands comma separated entries, which is how list values arrive
// from environment variables.
func splitList(in []string) []string {
	var out []string
	for _, entry := range in {
		for _, part := range strings.Split(entry, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
