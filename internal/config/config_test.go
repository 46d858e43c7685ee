package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{Addrs: []string{"localhost:6379"}},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"port zero", func(c *Config) { c.HTTP.Port = 0 }, "http.port"},
		{"port too large", func(c *Config) { c.HTTP.Port = 70000 }, "http.port"},
		{"unknown driver", func(c *Config) { c.Database.Driver = "valkey" }, "database.driver"},
		{"no addrs", func(c *Config) { c.Database.Addrs = nil }, "database.addrs"},
		{"bad mode", func(c *Config) { c.Retrieval.Mode = "fuzzy" }, "retrieval.mode"},
		{"semantic without key", func(c *Config) { c.Retrieval.Mode = "semantic" }, "requires embedding.api_key"},
		{"semantic with key", func(c *Config) {
			c.Retrieval.Mode = "semantic"
			c.Embedding.APIKey = "sk-test"
		}, ""},
		{"default over max", func(c *Config) { c.Retrieval.DefaultTopK = 500 }, "default_top_k"},
		{"bad budget action", func(c *Config) { c.Embedding.Budget.Action = "drop" }, "embedding.budget.action"},
		{"reject budget action", func(c *Config) { c.Embedding.Budget.Action = "reject" }, ""},
		{"bad timezone", func(c *Config) { c.Intelligence.Timezone = "Mars/Olympus" }, "intelligence.timezone"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 || cfg.HTTP.WriteTimeoutSec != 30 || cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("unexpected http defaults: %+v", cfg.HTTP)
	}
	if cfg.Database.Driver != "redis" || cfg.Database.ReadinessTimeout != 10 {
		t.Errorf("unexpected database defaults: %+v", cfg.Database)
	}
	if cfg.Embedding.Model != "text-embedding-3-small" || cfg.Embedding.Dimensions != 1536 {
		t.Errorf("unexpected embedding defaults: %+v", cfg.Embedding)
	}
	if cfg.Retrieval.Mode != "hybrid" || cfg.Retrieval.DefaultTopK != 5 || cfg.Retrieval.MaxTopK != 100 {
		t.Errorf("unexpected retrieval defaults: %+v", cfg.Retrieval)
	}
	if cfg.Retrieval.SnippetLength != 300 || cfg.Retrieval.MaxBatchSize != 100 {
		t.Errorf("unexpected retrieval defaults: %+v", cfg.Retrieval)
	}
	if cfg.Retrieval.HNSWM != 16 || cfg.Retrieval.HNSWEFConstruct != 200 {
		t.Errorf("unexpected hnsw defaults: %+v", cfg.Retrieval)
	}
	if cfg.Intelligence.Timezone != "UTC" {
		t.Errorf("expected UTC, got %q", cfg.Intelligence.Timezone)
	}
	if cfg.Embedding.Enabled() {
		t.Error("embedding must stay disabled without an api key")
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:      HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Retrieval: RetrievalConfig{Mode: "keyword", MaxTopK: 20, SnippetLength: 80},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Retrieval.Mode != "keyword" || cfg.Retrieval.MaxTopK != 20 || cfg.Retrieval.SnippetLength != 80 {
		t.Errorf("overrides lost: %+v", cfg.Retrieval)
	}
}

func TestEmbeddingCacheSettings(t *testing.T) {
	tests := []struct {
		ttl     int
		enabled bool
		secs    float64
	}{
		{0, true, 0},
		{3600, true, 3600},
		{-1, false, 0},
	}
	for _, tc := range tests {
		e := EmbeddingConfig{CacheTTLSec: tc.ttl}
		if e.CacheEnabled() != tc.enabled {
			t.Errorf("ttl %d: CacheEnabled() = %v", tc.ttl, e.CacheEnabled())
		}
		if e.CacheTTL().Seconds() != tc.secs {
			t.Errorf("ttl %d: CacheTTL() = %v", tc.ttl, e.CacheTTL())
		}
	}
}

func TestParse_ExpandsEnv(t *testing.T) {
	t.Setenv("MAILSENSE_TEST_PORT", "9090")
	t.Setenv("MAILSENSE_TEST_KEY", "")

	cfg, err := Parse([]byte(`
http:
  port: ${MAILSENSE_TEST_PORT}
database:
  addrs: ["${MAILSENSE_TEST_REDIS:-localhost:6379}"]
embedding:
  api_key: "${MAILSENSE_TEST_KEY}"
intelligence:
  timezone: America/Los_Angeles
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.HTTP.Port)
	}
	if len(cfg.Database.Addrs) != 1 || cfg.Database.Addrs[0] != "localhost:6379" {
		t.Errorf("default not applied: %v", cfg.Database.Addrs)
	}
	if cfg.Embedding.Enabled() {
		t.Error("empty api key must leave embedding disabled")
	}
	loc, err := cfg.Intelligence.Location()
	if err != nil || loc.String() != "America/Los_Angeles" {
		t.Errorf("unexpected location %v, %v", loc, err)
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse([]byte("http: [")); err == nil {
		t.Error("expected yaml error")
	}
	if _, err := Parse([]byte("http:\n  port: 8080\n")); err == nil {
		t.Error("expected validation error for missing addrs")
	}
}

func TestLoad_Local(t *testing.T) {
	t.Setenv("REDIS_ADDR", "")
	cfg, err := Load("local")
	if err != nil {
		t.Fatalf("load local: %v", err)
	}
	if cfg.HTTP.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.HTTP.Port)
	}
}
