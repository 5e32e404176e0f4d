package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	Host        string `json:"host"`
	Port        int    `json:"port"`
	Environment string `json:"environment"`
	LogLevel    string `json:"log_level"`

	// CORS
	CORSOrigins []string `json:"cors_origins"`

	// Auth (HTTP surface only; the stdio transport has no auth layer)
	APIKeyHeader string   `json:"api_key_header"`
	APIKeys      []string `json:"api_keys"`
	EnableAuth   bool     `json:"enable_auth"`

	// Spool API
	SpoolAPIKey         string `json:"spool_api_key"`
	SpoolBaseURL        string `json:"spool_base_url"`
	SpoolTimeoutSeconds int    `json:"spool_timeout_seconds"`

	// Rate limiting (process-wide, across every tool invocation)
	RateLimitCalls    int `json:"rate_limit_calls"`
	RateLimitPeriodMS int `json:"rate_limit_period_ms"`

	// Inbound per-client HTTP limit. Zero disables the middleware.
	HTTPRateLimitPerMinute int `json:"http_rate_limit_per_minute"`

	// AI / LLM (agent subcommand only)
	AnthropicAPIKey  string `json:"anthropic_api_key"`
	AnthropicBaseURL string `json:"anthropic_base_url"` // override for custom proxy
	AgentModel       string `json:"agent_model"`
	AgentTimeout     int    `json:"agent_timeout"`
}

func Load() (*Config, error) {
	return LoadPath("")
}

// LoadPath is Load with an explicit config-file path taking precedence
// over SPOOLMCP_CONFIG.
func LoadPath(path string) (*Config, error) {
	cfg := &Config{
		Host:                   DefaultHost,
		Port:                   DefaultPort,
		Environment:            DefaultEnvironment,
		LogLevel:               DefaultLogLevel,
		CORSOrigins:            DefaultCORSOrigins,
		APIKeyHeader:           "X-API-Key",
		SpoolBaseURL:           DefaultSpoolBaseURL,
		SpoolTimeoutSeconds:    DefaultSpoolTimeoutSeconds,
		RateLimitCalls:         DefaultRateLimitCalls,
		RateLimitPeriodMS:      DefaultRateLimitPeriodMS,
		HTTPRateLimitPerMinute: DefaultHTTPRateLimitPerMinute,
		AgentModel:             DefaultAgentModel,
		AgentTimeout:           DefaultAgentTimeout,
	}

	// Load from JSON config file if specified
	if path == "" {
		path = getEnv("SPOOLMCP_CONFIG", "")
	}
	if path != "" {
		if err := loadJSON(path, cfg); err != nil {
			return nil, err
		}
	}

	// Environment overrides
	applyEnvOverrides(cfg)

	return cfg, nil
}

// Validate reports configuration that cannot produce a working process.
// The Spool credential is a startup requirement, not a per-call one.
func (c *Config) Validate() error {
	if c.SpoolAPIKey == "" {
		return fmt.Errorf("SPOOL_API_KEY is required")
	}
	if c.RateLimitCalls <= 0 {
		return fmt.Errorf("rate_limit_calls must be positive, got %d", c.RateLimitCalls)
	}
	if c.RateLimitPeriodMS <= 0 {
		return fmt.Errorf("rate_limit_period_ms must be positive, got %d", c.RateLimitPeriodMS)
	}
	return nil
}

// RateLimitPeriod returns the limiter window as a duration.
func (c *Config) RateLimitPeriod() time.Duration {
	return time.Duration(c.RateLimitPeriodMS) * time.Millisecond
}

// SpoolTimeout returns the remote-call timeout as a duration.
func (c *Config) SpoolTimeout() time.Duration {
	return time.Duration(c.SpoolTimeoutSeconds) * time.Second
}

func loadJSON(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, cfg)
}

func applyEnvOverrides(cfg *Config) {
	if v := getEnv("SPOOLMCP_HOST", ""); v != "" {
		cfg.Host = v
	}
	if v := getEnv("SPOOLMCP_PORT", ""); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Port = p
		}
	}
	if v := getEnv("SPOOLMCP_ENV", ""); v != "" {
		cfg.Environment = v
	}
	if v := getEnv("SPOOLMCP_LOG_LEVEL", ""); v != "" {
		cfg.LogLevel = v
	}
	if v := getEnv("SPOOLMCP_API_KEYS", ""); v != "" {
		cfg.APIKeys = strings.Split(v, ",")
	}
	if v := getEnv("SPOOL_API_KEY", ""); v != "" {
		cfg.SpoolAPIKey = v
	}
	if v := getEnv("SPOOL_BASE_URL", ""); v != "" {
		cfg.SpoolBaseURL = v
	}
	if v := getEnv("SPOOL_TIMEOUT_SECONDS", ""); v != "" {
		if t, err := strconv.Atoi(v); err == nil {
			cfg.SpoolTimeoutSeconds = t
		}
	}
	if v := getEnv("RATE_LIMIT_CALLS", ""); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RateLimitCalls = n
		}
	}
	if v := getEnv("RATE_LIMIT_PERIOD_MS", ""); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RateLimitPeriodMS = n
		}
	}
	if v := getEnv("SPOOLMCP_HTTP_RATE_LIMIT", ""); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.HTTPRateLimitPerMinute = n
		}
	}
	if v := getEnv("ENABLE_AUTH", ""); v != "" {
		cfg.EnableAuth = v == "true" || v == "1"
	}
	if v := getEnv("ANTHROPIC_API_KEY", ""); v != "" {
		cfg.AnthropicAPIKey = v
	}
	if v := getEnv("ANTHROPIC_BASE_URL", ""); v != "" {
		cfg.AnthropicBaseURL = v
	}
	if v := getEnv("SPOOLMCP_AGENT_MODEL", ""); v != "" {
		cfg.AgentModel = v
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}
