package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Orchestrator.JobTimeout != 3*time.Minute {
		t.Fatalf("expected default job timeout 3m, got %v", cfg.Orchestrator.JobTimeout)
	}
	if cfg.Store.Backend != "memory" || cfg.Store.Namespace != "styleguide" {
		t.Fatalf("unexpected store defaults: %+v", cfg.Store)
	}
	if cfg.Store.TTL != 24*time.Hour {
		t.Fatalf("expected default ttl 24h, got %v", cfg.Store.TTL)
	}
	if cfg.Notify.Backend != "none" || cfg.Notify.Topic != "style-jobs" {
		t.Fatalf("unexpected notify defaults: %+v", cfg.Notify)
	}
	if cfg.Addr() != ":8080" {
		t.Fatalf("expected :8080, got %q", cfg.Addr())
	}
}

func TestLoadWithFileOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
server:
  port: 9090
  request_timeout: 30s
auth:
  enabled: true
  api_key: secret
logging:
  development: false
  level: debug
browser:
  max_sessions: 4
  domain_qps: 2
  navigation_timeout: 45s
orchestrator:
  concurrency: 6
  queue_depth: 128
  job_timeout: 90s
store:
  backend: redis
  ttl: 30m
  namespace: guides
  redis:
    addr: redis:6379
    db: 2
documents:
  backend: local
  dir: /tmp/docs
notify:
  backend: kafka
  topic: jobs
  brokers: ["k1:9092", "k2:9092"]
`
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 || cfg.Server.RequestTimeout != 30*time.Second {
		t.Fatalf("expected server overrides, got %+v", cfg.Server)
	}
	if !cfg.Auth.Enabled || cfg.Auth.APIKey != "secret" {
		t.Fatalf("expected auth enabled with secret key")
	}
	if cfg.Logging.Development || cfg.Logging.Level != "debug" {
		t.Fatalf("expected logging overrides, got %+v", cfg.Logging)
	}
	if cfg.Browser.MaxSessions != 4 || cfg.Browser.DomainQPS != 2 || cfg.Browser.NavigationTimeout != 45*time.Second {
		t.Fatalf("expected browser overrides, got %+v", cfg.Browser)
	}
	if cfg.Orchestrator.Concurrency != 6 || cfg.Orchestrator.JobTimeout != 90*time.Second {
		t.Fatalf("expected orchestrator overrides, got %+v", cfg.Orchestrator)
	}
	if cfg.Store.Backend != "redis" || cfg.Store.Redis.Addr != "redis:6379" || cfg.Store.Redis.DB != 2 {
		t.Fatalf("expected redis store, got %+v", cfg.Store)
	}
	if cfg.Store.TTL != 30*time.Minute || cfg.Store.Namespace != "guides" {
		t.Fatalf("expected store ttl/namespace overrides, got %+v", cfg.Store)
	}
	if cfg.Documents.Backend != "local" || cfg.Documents.Dir != "/tmp/docs" {
		t.Fatalf("expected local documents, got %+v", cfg.Documents)
	}
	if len(cfg.Notify.Brokers) != 2 || cfg.Notify.Brokers[1] != "k2:9092" {
		t.Fatalf("expected two brokers, got %v", cfg.Notify.Brokers)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("STYLEGUIDE_SERVER_PORT", "7070")
	t.Setenv("STYLEGUIDE_STORE_NAMESPACE", "envspace")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Fatalf("expected port 7070, got %d", cfg.Server.Port)
	}
	if cfg.Store.Namespace != "envspace" {
		t.Fatalf("expected namespace envspace, got %q", cfg.Store.Namespace)
	}
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("STYLEGUIDE_ORCHESTRATOR_CONCURRENCY=5\n"), 0o600); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}
	t.Setenv("STYLEGUIDE_ORCHESTRATOR_CONCURRENCY", "")
	if err := os.Unsetenv("STYLEGUIDE_ORCHESTRATOR_CONCURRENCY"); err != nil {
		t.Fatalf("unsetenv: %v", err)
	}

	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("LoadEnvFile() error = %v", err)
	}
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Orchestrator.Concurrency != 5 {
		t.Fatalf("expected concurrency 5 from env file, got %d", cfg.Orchestrator.Concurrency)
	}

	if err := LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("missing env file should be ignored, got %v", err)
	}
	if err := LoadEnvFile(""); err != nil {
		t.Fatalf("empty path should be ignored, got %v", err)
	}
}

func TestConfigValidateErrors(t *testing.T) {
	t.Parallel()

	base, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{name: "invalid port", mutate: func(c *Config) { c.Server.Port = 0 }, want: "server.port"},
		{name: "invalid request timeout", mutate: func(c *Config) { c.Server.RequestTimeout = 0 }, want: "server.request_timeout"},
		{name: "auth missing api key", mutate: func(c *Config) { c.Auth.Enabled = true }, want: "auth.api_key"},
		{name: "invalid concurrency", mutate: func(c *Config) { c.Orchestrator.Concurrency = 0 }, want: "orchestrator.concurrency"},
		{name: "invalid queue depth", mutate: func(c *Config) { c.Orchestrator.QueueDepth = 0 }, want: "orchestrator.queue_depth"},
		{name: "invalid job timeout", mutate: func(c *Config) { c.Orchestrator.JobTimeout = 0 }, want: "orchestrator.job_timeout"},
		{name: "invalid sessions", mutate: func(c *Config) { c.Browser.MaxSessions = 0 }, want: "browser.max_sessions"},
		{name: "invalid ttl", mutate: func(c *Config) { c.Store.TTL = 0 }, want: "store.ttl"},
		{name: "unknown store", mutate: func(c *Config) { c.Store.Backend = "etcd" }, want: "store.backend"},
		{name: "redis without addr", mutate: func(c *Config) {
			c.Store.Backend = "redis"
			c.Store.Redis.Addr = ""
		}, want: "store.redis.addr"},
		{name: "postgres without dsn", mutate: func(c *Config) { c.Store.Backend = "postgres" }, want: "store.postgres.dsn"},
		{name: "gcs without bucket", mutate: func(c *Config) { c.Documents.Backend = "gcs" }, want: "documents.bucket"},
		{name: "unknown documents", mutate: func(c *Config) { c.Documents.Backend = "s3" }, want: "documents.backend"},
		{name: "pubsub without project", mutate: func(c *Config) { c.Notify.Backend = "pubsub" }, want: "notify.project_id"},
		{name: "kafka without brokers", mutate: func(c *Config) { c.Notify.Backend = "kafka" }, want: "notify.brokers"},
		{name: "sample ratio", mutate: func(c *Config) { c.Telemetry.SampleRatio = 2 }, want: "telemetry.sample_ratio"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}
