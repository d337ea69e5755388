// StemQuest - Student STEM Challenge Platform
// Copyright 2026 StemQuest Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stemquest/stemquest

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths searched for a config file, in order.
// The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/stemquest/config.yaml",
	"/etc/stemquest/config.yml",
}

// ConfigPathEnvVar overrides the config file search when set.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with all default values. Defaults load
// first and are overridden by the config file and environment variables.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        8080,
			Host:        "0.0.0.0",
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Database: DatabaseConfig{
			Path:      "/data/stemquest.duckdb",
			MaxMemory: "1GB",
			Threads:   0, // 0 = runtime.NumCPU()
		},
		Security: SecurityConfig{
			SessionSecret:      "",
			JWTSecret:          "",
			SessionMaxAge:      7 * 24 * time.Hour,
			StudentTokenTTL:    24 * time.Hour,
			BcryptCost:         12,
			CORSOrigins:        []string{"*"},
			TrustedProxies:     []string{},
			LockoutMaxAttempts: 5,
			LockoutWindow:      15 * time.Minute,
			LockoutDuration:    30 * time.Minute,
		},
		RateLimit: RateLimitConfig{
			Disabled: false,
			Backend:  "memory",
		},
		Redis: RedisConfig{
			Addr:     "",
			Password: "",
			DB:       0,
		},
		Mail: MailConfig{
			Enabled:           false, // campaigns record logs without delivery when disabled
			Host:              "",
			Port:              587,
			Username:          "",
			Password:          "",
			From:              "",
			UseTLS:            true,
			SendRatePerSecond: 10,
			Timeout:           30 * time.Second,
		},
		Campaigns: CampaignsConfig{
			SchedulerEnabled: false,
			CheckInterval:    time.Minute,
			SendTimeout:      5 * time.Minute,
		},
		API: APIConfig{
			DefaultPageSize: 20,
			MaxPageSize:     100,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Built-in defaults
//  2. Optional YAML config file
//  3. Environment variables (highest priority)
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Environment variable names map to koanf paths via envTransformFunc:
	// HTTP_PORT -> server.port, SESSION_SECRET -> security.session_secret.
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file path, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths lists config paths parsed as comma-separated slices
// when supplied via environment variables.
var sliceConfigPaths = []string{
	"security.cors_origins",
	"security.trusted_proxies",
}

// processSliceFields converts comma-separated strings to slices for known
// slice fields. Env vars arrive as strings but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}
		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envTransformFunc maps environment variable names to koanf config paths.
// Unmapped variables return "" and are skipped, so unrelated environment
// variables never pollute the config.
func envTransformFunc(key string) string {
	envMappings := map[string]string{
		// Server
		"http_port":    "server.port",
		"http_host":    "server.host",
		"http_timeout": "server.timeout",
		"environment":  "server.environment",

		// Database
		"duckdb_path":       "database.path",
		"duckdb_max_memory": "database.max_memory",
		"duckdb_threads":    "database.threads",

		// Security
		"session_secret":       "security.session_secret",
		"jwt_secret":           "security.jwt_secret",
		"session_max_age":      "security.session_max_age",
		"student_token_ttl":    "security.student_token_ttl",
		"bcrypt_cost":          "security.bcrypt_cost",
		"cors_origins":         "security.cors_origins",
		"trusted_proxies":      "security.trusted_proxies",
		"lockout_max_attempts": "security.lockout_max_attempts",
		"lockout_window":       "security.lockout_window",
		"lockout_duration":     "security.lockout_duration",

		// Rate limiting
		"disable_rate_limit": "rate_limit.disabled",
		"rate_limit_backend": "rate_limit.backend",
		"redis_addr":         "redis.addr",
		"redis_password":     "redis.password",
		"redis_db":           "redis.db",

		// Mail
		"mail_enabled":   "mail.enabled",
		"smtp_host":      "mail.host",
		"smtp_port":      "mail.port",
		"smtp_username":  "mail.username",
		"smtp_password":  "mail.password",
		"mail_from":      "mail.from",
		"mail_use_tls":   "mail.use_tls",
		"mail_send_rate": "mail.send_rate_per_second",
		"mail_timeout":   "mail.timeout",

		// Campaign scheduler
		"campaign_scheduler_enabled": "campaigns.scheduler_enabled",
		"campaign_check_interval":    "campaigns.check_interval",
		"campaign_send_timeout":      "campaigns.send_timeout",

		// API
		"api_default_page_size": "api.default_page_size",
		"api_max_page_size":     "api.max_page_size",

		// Logging
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
	}

	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
