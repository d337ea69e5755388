// StemQuest - Student STEM Challenge Platform
// Copyright 2026 StemQuest Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stemquest/stemquest

package config

import (
	"errors"
	"strings"
	"testing"
)

func validTestConfig() *Config {
	cfg := defaultConfig()
	cfg.Server.Environment = "development"
	return cfg
}

func TestValidateDefaults(t *testing.T) {
	cfg := validTestConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default development config should validate: %v", err)
	}
}

func TestValidatePortRange(t *testing.T) {
	tests := []struct {
		name    string
		port    int
		wantErr bool
	}{
		{"valid low", 1, false},
		{"valid high", 65535, false},
		{"zero", 0, true},
		{"negative", -1, true},
		{"too large", 70000, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validTestConfig()
			cfg.Server.Port = tt.port
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() with port %d: err = %v, wantErr %v", tt.port, err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrInvalidPort) {
				t.Errorf("expected ErrInvalidPort, got %v", err)
			}
		})
	}
}

func TestValidateProductionSecrets(t *testing.T) {
	strong := strings.Repeat("s", 32)

	tests := []struct {
		name          string
		sessionSecret string
		jwtSecret     string
		wantErr       error
	}{
		{"both missing", "", "", ErrMissingSessionSecret},
		{"jwt missing", strong, "", ErrMissingJWTSecret},
		{"session too short", "short", strong, ErrWeakSecret},
		{"jwt too short", strong, "short", ErrWeakSecret},
		{"both strong", strong, strong, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validTestConfig()
			cfg.Server.Environment = "production"
			cfg.Security.SessionSecret = tt.sessionSecret
			cfg.Security.JWTSecret = tt.jwtSecret
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateSecretsNotRequiredInDevelopment(t *testing.T) {
	cfg := validTestConfig()
	cfg.Security.SessionSecret = ""
	cfg.Security.JWTSecret = ""
	if err := cfg.Validate(); err != nil {
		t.Errorf("development config without secrets should validate: %v", err)
	}
}

func TestValidateRateLimitBackend(t *testing.T) {
	cfg := validTestConfig()
	cfg.RateLimit.Backend = "memcached"
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidBackend) {
		t.Errorf("expected ErrInvalidBackend, got %v", err)
	}

	cfg = validTestConfig()
	cfg.RateLimit.Backend = "redis"
	cfg.Redis.Addr = ""
	if err := cfg.Validate(); !errors.Is(err, ErrMissingRedisAddr) {
		t.Errorf("expected ErrMissingRedisAddr, got %v", err)
	}

	cfg.Redis.Addr = "localhost:6379"
	if err := cfg.Validate(); err != nil {
		t.Errorf("redis backend with addr should validate: %v", err)
	}
}

func TestValidateBcryptCost(t *testing.T) {
	for _, cost := range []int{0, 9, 16} {
		cfg := validTestConfig()
		cfg.Security.BcryptCost = cost
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidBcryptCost) {
			t.Errorf("cost %d: expected ErrInvalidBcryptCost, got %v", cost, err)
		}
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"HTTP_PORT", "server.port"},
		{"DUCKDB_PATH", "database.path"},
		{"SESSION_SECRET", "security.session_secret"},
		{"JWT_SECRET", "security.jwt_secret"},
		{"RATE_LIMIT_BACKEND", "rate_limit.backend"},
		{"REDIS_ADDR", "redis.addr"},
		{"SMTP_HOST", "mail.host"},
		{"LOG_LEVEL", "logging.level"},
		{"PATH", ""},
		{"RANDOM_UNRELATED_VAR", ""},
	}

	for _, tt := range tests {
		if got := envTransformFunc(tt.env); got != tt.want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.env, got, tt.want)
		}
	}
}

func TestDefaultPageSizeFixup(t *testing.T) {
	cfg := validTestConfig()
	cfg.API.DefaultPageSize = 0
	cfg.API.MaxPageSize = 0
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	if cfg.API.DefaultPageSize != 20 {
		t.Errorf("DefaultPageSize = %d, want 20", cfg.API.DefaultPageSize)
	}
	if cfg.API.MaxPageSize < cfg.API.DefaultPageSize {
		t.Errorf("MaxPageSize %d below DefaultPageSize %d", cfg.API.MaxPageSize, cfg.API.DefaultPageSize)
	}
}
