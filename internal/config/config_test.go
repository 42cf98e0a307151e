package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/buddyboard/buddyboard/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != config.DefaultPort || cfg.APIPrefix != "/api/v1" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if !cfg.EnableContactMasking || !cfg.EnableAuditLogging {
		t.Error("masking and audit logging should default on")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("BUDDYBOARD_PORT", "9090")
	t.Setenv("BUDDYBOARD_API_KEYS", "a, b,,c")
	t.Setenv("ENABLE_CONTACT_MASKING", "false")
	t.Setenv("ELASTICSEARCH_ENABLED", "TRUE")
	t.Setenv("ELASTICSEARCH_HOST", "es.internal")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Port)
	}
	if len(cfg.APIKeys) != 3 || cfg.APIKeys[1] != "b" {
		t.Errorf("api keys = %v", cfg.APIKeys)
	}
	if cfg.EnableContactMasking {
		t.Error("masking should be disabled")
	}
	if !cfg.ElasticsearchEnabled || cfg.ElasticsearchHost != "es.internal" {
		t.Error("elasticsearch overrides not applied")
	}
}

func TestLoadYAMLFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "buddyboard.yaml")
	body := "port: 8181\nenvironment: production\ncors_origins:\n  - https://buddyboard.example\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BUDDYBOARD_CONFIG", path)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 8181 || cfg.IsDevelopment() {
		t.Errorf("yaml not applied: %+v", cfg)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "https://buddyboard.example" {
		t.Errorf("cors origins = %v", cfg.CORSOrigins)
	}
}

func TestLoadJSONFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "buddyboard.json")
	if err := os.WriteFile(path, []byte(`{"rate_limit_per_minute": 5}`), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BUDDYBOARD_CONFIG", path)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RateLimitPerMinute != 5 {
		t.Errorf("rate limit = %d, want 5", cfg.RateLimitPerMinute)
	}
}

func TestValidate(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PUBSUB_PROJECT_ID", "proj")
	if _, err := config.Load(); err == nil {
		t.Error("pubsub project without topic should fail")
	}
}
