// StemQuest - Student STEM Challenge Platform
// Copyright 2026 StemQuest Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stemquest/stemquest

// Package config loads and validates server configuration from layered
// sources: built-in defaults, an optional YAML file, and environment
// variables (highest priority).
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config is the root configuration for the StemQuest server.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Security  SecurityConfig  `koanf:"security"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	Redis     RedisConfig     `koanf:"redis"`
	Mail      MailConfig      `koanf:"mail"`
	Campaigns CampaignsConfig `koanf:"campaigns"`
	API       APIConfig       `koanf:"api"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port    int           `koanf:"port"`
	Host    string        `koanf:"host"`
	Timeout time.Duration `koanf:"timeout"`

	// Environment is "development" or "production". Production enforces
	// secret requirements and Secure session cookies.
	Environment string `koanf:"environment"`
}

// IsProduction reports whether the server runs in production mode.
func (s ServerConfig) IsProduction() bool {
	return s.Environment == "production"
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	// Path is the database file location. ":memory:" opens an in-memory
	// database (used by tests).
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`

	// Threads limits DuckDB worker threads. 0 uses runtime.NumCPU().
	Threads int `koanf:"threads"`
}

// SecurityConfig holds authentication and session settings.
type SecurityConfig struct {
	// SessionSecret signs the admin-session cookie (HMAC-SHA256).
	SessionSecret string `koanf:"session_secret"`

	// JWTSecret signs student access tokens.
	JWTSecret string `koanf:"jwt_secret"`

	// SessionMaxAge is the admin-session cookie lifetime.
	SessionMaxAge time.Duration `koanf:"session_max_age"`

	// StudentTokenTTL is the student JWT lifetime.
	StudentTokenTTL time.Duration `koanf:"student_token_ttl"`

	// BcryptCost is the password hashing cost factor.
	BcryptCost int `koanf:"bcrypt_cost"`

	CORSOrigins    []string `koanf:"cors_origins"`
	TrustedProxies []string `koanf:"trusted_proxies"`

	// Login lockout tracking.
	LockoutMaxAttempts int           `koanf:"lockout_max_attempts"`
	LockoutWindow      time.Duration `koanf:"lockout_window"`
	LockoutDuration    time.Duration `koanf:"lockout_duration"`
}

// RateLimitConfig selects the fixed-window rate limit backend.
type RateLimitConfig struct {
	Disabled bool `koanf:"disabled"`

	// Backend is "memory" (single instance) or "redis" (shared counters
	// across instances).
	Backend string `koanf:"backend"`
}

// RedisConfig holds connection settings for the redis rate limit backend.
type RedisConfig struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

// MailConfig holds SMTP delivery settings for email campaigns.
type MailConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	From     string `koanf:"from"`
	UseTLS   bool   `koanf:"use_tls"`

	// SendRatePerSecond paces outbound messages to stay under
	// provider limits. 0 disables pacing.
	SendRatePerSecond float64       `koanf:"send_rate_per_second"`
	Timeout           time.Duration `koanf:"timeout"`
}

// CampaignsConfig controls the scheduled-campaign dispatcher.
type CampaignsConfig struct {
	SchedulerEnabled bool          `koanf:"scheduler_enabled"`
	CheckInterval    time.Duration `koanf:"check_interval"`
	SendTimeout      time.Duration `koanf:"send_timeout"`
}

// APIConfig holds pagination settings.
type APIConfig struct {
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validation errors.
var (
	ErrInvalidPort          = errors.New("server port must be between 1 and 65535")
	ErrMissingSessionSecret = errors.New("security.session_secret is required in production")
	ErrMissingJWTSecret     = errors.New("security.jwt_secret is required in production")
	ErrWeakSecret           = errors.New("secrets must be at least 32 characters")
	ErrInvalidBcryptCost    = errors.New("security.bcrypt_cost must be between 10 and 15")
	ErrInvalidBackend       = errors.New("rate_limit.backend must be \"memory\" or \"redis\"")
	ErrMissingRedisAddr     = errors.New("redis.addr is required when rate_limit.backend is \"redis\"")
)

// Validate checks the configuration for fatal misconfiguration.
// Called once at startup; the server refuses to start on error.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: got %d", ErrInvalidPort, c.Server.Port)
	}

	if c.Server.IsProduction() {
		if c.Security.SessionSecret == "" {
			return ErrMissingSessionSecret
		}
		if c.Security.JWTSecret == "" {
			return ErrMissingJWTSecret
		}
		if len(c.Security.SessionSecret) < 32 || len(c.Security.JWTSecret) < 32 {
			return ErrWeakSecret
		}
	}

	if c.Security.BcryptCost < 10 || c.Security.BcryptCost > 15 {
		return fmt.Errorf("%w: got %d", ErrInvalidBcryptCost, c.Security.BcryptCost)
	}

	switch c.RateLimit.Backend {
	case "memory":
	case "redis":
		if c.Redis.Addr == "" {
			return ErrMissingRedisAddr
		}
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidBackend, c.RateLimit.Backend)
	}

	if c.API.DefaultPageSize < 1 {
		c.API.DefaultPageSize = 20
	}
	if c.API.MaxPageSize < c.API.DefaultPageSize {
		c.API.MaxPageSize = c.API.DefaultPageSize
	}

	return nil
}
