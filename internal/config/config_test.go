package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Config{
		Database:  DatabaseConfig{Addrs: []string{"localhost:6379"}},
		Embedding: EmbeddingConfig{BaseURL: "https://api.openai.com/v1"},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if cfg.HTTP.Port != 8000 {
		t.Errorf("port = %d, want 8000", cfg.HTTP.Port)
	}
	if cfg.HTTP.MaxBodyBytes != 1<<20 {
		t.Errorf("max body = %d, want 1MB", cfg.HTTP.MaxBodyBytes)
	}
	if cfg.Embedding.Dimensions != 1536 {
		t.Errorf("dimensions = %d, want 1536", cfg.Embedding.Dimensions)
	}
	if cfg.Index.MaxTopK != 100 || cfg.Index.MaxShowURLs != 100 {
		t.Errorf("unexpected index limits: %+v", cfg.Index)
	}
	if cfg.Index.HNSWM != 16 || cfg.Index.HNSWEFConstruct != 200 {
		t.Errorf("unexpected hnsw: %+v", cfg.Index)
	}
}

func TestValidate_OK(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"port", func(c *Config) { c.HTTP.Port = 70000 }, "http.port must be between 1 and 65535, got 70000"},
		{"addrs", func(c *Config) { c.Database.Addrs = nil }, "database.addrs is required"},
		{"db", func(c *Config) { c.Database.DB = -1 }, "database.db must not be negative, got -1"},
		{"base url", func(c *Config) { c.Embedding.BaseURL = "" }, "embedding.base_url is required"},
		{"ttl", func(c *Config) { c.Embedding.Cache.TTLHour = -2 }, "embedding.cache.ttl_hours must not be negative, got -2"},
		{"empty api key", func(c *Config) { c.Auth.APIKeys = []string{"k1", " "} }, "auth.api_keys[1] must not be empty"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if err.Error() != tc.want {
				t.Errorf("got %q, want %q", err.Error(), tc.want)
			}
		})
	}
}

func TestParse_UnsetAPIKeyVarFails(t *testing.T) {
	t.Setenv("PASTTENSE_TEST_API_KEY", "")

	data := []byte(`
database:
  addrs: ["localhost:6379"]
embedding:
  base_url: https://api.openai.com/v1
auth:
  api_keys: ["${PASTTENSE_TEST_API_KEY}"]
`)
	_, err := Parse(data)
	if err == nil || !strings.Contains(err.Error(), "auth.api_keys[0] must not be empty") {
		t.Fatalf("expected empty key error, got %v", err)
	}
}

func TestParse_ExpandsEnv(t *testing.T) {
	t.Setenv("PASTTENSE_TEST_KEY", "sk-test")

	data := []byte(`
http:
  port: 9000
database:
  addrs: ["${PASTTENSE_TEST_REDIS:-localhost:6380}"]
embedding:
  base_url: https://api.openai.com/v1
  api_key: ${PASTTENSE_TEST_KEY}
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port != 9000 {
		t.Errorf("port = %d, want 9000", cfg.HTTP.Port)
	}
	if cfg.Database.Addrs[0] != "localhost:6380" {
		t.Errorf("addr = %q, want default", cfg.Database.Addrs[0])
	}
	if cfg.Embedding.APIKey != "sk-test" {
		t.Errorf("api key = %q", cfg.Embedding.APIKey)
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse([]byte("http: [")); err == nil {
		t.Fatal("expected yaml error")
	}
	if _, err := Parse([]byte("http:\n  port: 8000\n")); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLoad_FromConfigDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatal(err)
	}
	body := "database:\n  addrs: [\"redis:6379\"]\nembedding:\n  base_url: http://emb:8080/v1\n"
	if err := os.WriteFile(filepath.Join(dir, "config", "unittest.yaml"), []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)

	cfg, err := Load("unittest")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.Addrs[0] != "redis:6379" {
		t.Errorf("addr = %q", cfg.Database.Addrs[0])
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("ENV", "")
	if GetEnv() != "local" {
		t.Errorf("default env = %q", GetEnv())
	}
	t.Setenv("ENV", "prod")
	if GetEnv() != "prod" {
		t.Errorf("env = %q", GetEnv())
	}
}
