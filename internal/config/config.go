package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Server
	Host        string `json:"host" yaml:"host"`
	Port        int    `json:"port" yaml:"port"`
	Environment string `json:"environment" yaml:"environment"`
	APIPrefix   string `json:"api_prefix" yaml:"api_prefix"`
	LogLevel    string `json:"log_level" yaml:"log_level"`

	// CORS
	CORSOrigins []string `json:"cors_origins" yaml:"cors_origins"`

	// Auth
	APIKeyHeader string   `json:"api_key_header" yaml:"api_key_header"`
	APIKeys      []string `json:"api_keys" yaml:"api_keys"`
	AdminAPIKeys []string `json:"admin_api_keys" yaml:"admin_api_keys"`
	EnableAuth   bool     `json:"enable_auth" yaml:"enable_auth"`

	// Rate Limiting
	RateLimitPerMinute int `json:"rate_limit_per_minute" yaml:"rate_limit_per_minute"`

	// Postgres
	DatabaseURL      string `json:"database_url" yaml:"database_url"`
	DatabaseMaxConns int32  `json:"database_max_conns" yaml:"database_max_conns"`
	AutoMigrate      bool   `json:"auto_migrate" yaml:"auto_migrate"`

	// Content policy
	EnableAuditLogging   bool `json:"enable_audit_logging" yaml:"enable_audit_logging"`
	EnableContactMasking bool `json:"enable_contact_masking" yaml:"enable_contact_masking"`

	// Elasticsearch moderation index
	ElasticsearchEnabled     bool   `json:"elasticsearch_enabled" yaml:"elasticsearch_enabled"`
	ElasticsearchHost        string `json:"elasticsearch_host" yaml:"elasticsearch_host"`
	ElasticsearchPort        int    `json:"elasticsearch_port" yaml:"elasticsearch_port"`
	ElasticsearchScheme      string `json:"elasticsearch_scheme" yaml:"elasticsearch_scheme"`
	ElasticsearchUser        string `json:"elasticsearch_user" yaml:"elasticsearch_user"`
	ElasticsearchPassword    string `json:"elasticsearch_password" yaml:"elasticsearch_password"`
	ElasticsearchVerifyCerts bool   `json:"elasticsearch_verify_certs" yaml:"elasticsearch_verify_certs"`
	ElasticsearchMaxRetries  int    `json:"elasticsearch_max_retries" yaml:"elasticsearch_max_retries"`
	ModerationIndex          string `json:"moderation_index" yaml:"moderation_index"`

	// Pub/Sub rejection events
	PubSubProjectID              string `json:"pubsub_project_id" yaml:"pubsub_project_id"`
	PubSubTopicID                string `json:"pubsub_topic_id" yaml:"pubsub_topic_id"`
	GoogleApplicationCredentials string `json:"google_application_credentials" yaml:"google_application_credentials"`
}

func Load() (*Config, error) {
	// Best-effort: a missing .env is fine
	_ = godotenv.Load()

	cfg := &Config{
		Host:                     DefaultHost,
		Port:                     DefaultPort,
		Environment:              DefaultEnvironment,
		APIPrefix:                DefaultAPIPrefix,
		LogLevel:                 DefaultLogLevel,
		CORSOrigins:              DefaultCORSOrigins,
		APIKeyHeader:             "X-API-Key",
		EnableAuth:               true,
		RateLimitPerMinute:       DefaultRateLimitPerMinute,
		DatabaseMaxConns:         DefaultDatabaseMaxConns,
		AutoMigrate:              true,
		EnableAuditLogging:       true,
		EnableContactMasking:     true,
		ElasticsearchPort:        DefaultElasticsearchPort,
		ElasticsearchScheme:      DefaultElasticsearchScheme,
		ElasticsearchVerifyCerts: true,
		ElasticsearchMaxRetries:  DefaultElasticsearchMaxRetries,
		ModerationIndex:          DefaultModerationIndex,
	}

	if path := getEnv("BUDDYBOARD_CONFIG", ""); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("rate_limit_per_minute must be positive, got %d", c.RateLimitPerMinute)
	}
	if c.ElasticsearchEnabled && c.ElasticsearchHost == "" {
		return fmt.Errorf("elasticsearch enabled but elasticsearch_host is empty")
	}
	if (c.PubSubProjectID == "") != (c.PubSubTopicID == "") {
		return fmt.Errorf("pubsub_project_id and pubsub_topic_id must be set together")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// loadFile reads JSON, or YAML when the extension is .yaml/.yml
func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	default:
		return json.Unmarshal(data, cfg)
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := getEnv("BUDDYBOARD_HOST", ""); v != "" {
		cfg.Host = v
	}
	if v := getEnv("BUDDYBOARD_PORT", ""); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Port = p
		}
	}
	if v := getEnv("BUDDYBOARD_ENV", ""); v != "" {
		cfg.Environment = v
	}
	if v := getEnv("BUDDYBOARD_LOG_LEVEL", ""); v != "" {
		cfg.LogLevel = v
	}
	if v := getEnv("BUDDYBOARD_API_KEYS", ""); v != "" {
		cfg.APIKeys = splitList(v)
	}
	if v := getEnv("BUDDYBOARD_ADMIN_API_KEYS", ""); v != "" {
		cfg.AdminAPIKeys = splitList(v)
	}
	if v := getEnv("BUDDYBOARD_CORS_ORIGINS", ""); v != "" {
		cfg.CORSOrigins = splitList(v)
	}
	if v := getEnv("DATABASE_URL", ""); v != "" {
		cfg.DatabaseURL = v
	}
	if v := getEnv("AUTO_MIGRATE", ""); v != "" {
		cfg.AutoMigrate = truthy(v)
	}
	if v := getEnv("ELASTICSEARCH_ENABLED", ""); v != "" {
		cfg.ElasticsearchEnabled = truthy(v)
	}
	if v := getEnv("ELASTICSEARCH_HOST", ""); v != "" {
		cfg.ElasticsearchHost = v
	}
	if v := getEnv("ELASTICSEARCH_PORT", ""); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.ElasticsearchPort = p
		}
	}
	if v := getEnv("ELASTICSEARCH_SCHEME", ""); v != "" {
		cfg.ElasticsearchScheme = v
	}
	if v := getEnv("ELASTICSEARCH_USER", ""); v != "" {
		cfg.ElasticsearchUser = v
	}
	if v := getEnv("ELASTICSEARCH_PASSWORD", ""); v != "" {
		cfg.ElasticsearchPassword = v
	}
	if v := getEnv("ELASTICSEARCH_VERIFY_CERTS", ""); v != "" {
		cfg.ElasticsearchVerifyCerts = truthy(v)
	}
	if v := getEnv("MODERATION_INDEX", ""); v != "" {
		cfg.ModerationIndex = v
	}
	if v := getEnv("PUBSUB_PROJECT_ID", ""); v != "" {
		cfg.PubSubProjectID = v
	}
	if v := getEnv("PUBSUB_TOPIC_ID", ""); v != "" {
		cfg.PubSubTopicID = v
	}
	if v := getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""); v != "" {
		cfg.GoogleApplicationCredentials = v
	}
	if v := getEnv("RATE_LIMIT_PER_MINUTE", ""); v != "" {
		if r, err := strconv.Atoi(v); err == nil {
			cfg.RateLimitPerMinute = r
		}
	}
	if v := getEnv("ENABLE_AUTH", ""); v != "" {
		cfg.EnableAuth = truthy(v)
	}
	if v := getEnv("ENABLE_AUDIT_LOGGING", ""); v != "" {
		cfg.EnableAuditLogging = truthy(v)
	}
	if v := getEnv("ENABLE_CONTACT_MASKING", ""); v != "" {
		cfg.EnableContactMasking = truthy(v)
	}
}

func truthy(v string) bool {
	v = strings.TrimSpace(v)
	return v == "1" || strings.EqualFold(v, "true")
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}
