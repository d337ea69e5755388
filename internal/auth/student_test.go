// StemQuest - Student STEM Challenge Platform
// Copyright 2026 StemQuest Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stemquest/stemquest

package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stemquest/stemquest/internal/models"
)

func newTestTokenManager(t *testing.T, ttl time.Duration) *TokenManager {
	t.Helper()
	m, err := NewTokenManager("student-jwt-secret-with-enough-length", ttl)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}
	return m
}

func TestStudentTokenRoundTrip(t *testing.T) {
	m := newTestTokenManager(t, time.Hour)

	token, err := m.Generate("u-42", "sam_b", models.RoleStudent)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if claims.Subject != "u-42" {
		t.Errorf("Subject = %q, want u-42", claims.Subject)
	}
	if claims.Username != "sam_b" {
		t.Errorf("Username = %q, want sam_b", claims.Username)
	}
	if claims.Role != models.RoleStudent {
		t.Errorf("Role = %q, want %q", claims.Role, models.RoleStudent)
	}
}

func TestStudentTokenExpiry(t *testing.T) {
	m := newTestTokenManager(t, time.Hour)
	m.ttl = time.Nanosecond

	token, err := m.Generate("u-42", "sam_b", models.RoleStudent)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	if _, err := m.Validate(token); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("Validate expired = %v, want ErrTokenExpired", err)
	}
}

func TestStudentTokenInvalid(t *testing.T) {
	m := newTestTokenManager(t, time.Hour)

	if _, err := m.Validate(""); !errors.Is(err, ErrNoToken) {
		t.Errorf("empty token = %v, want ErrNoToken", err)
	}
	if _, err := m.Validate("garbage.token.here"); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("garbage token = %v, want ErrTokenInvalid", err)
	}

	other, err := NewTokenManager("a-different-secret-used-by-an-attacker", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}
	forged, err := other.Generate("u-42", "sam_b", models.RoleStudent)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, err := m.Validate(forged); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("forged token = %v, want ErrTokenInvalid", err)
	}
}

func TestExtractToken(t *testing.T) {
	t.Run("bearer header", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/submissions", nil)
		r.Header.Set("Authorization", "Bearer abc123")
		if got := ExtractToken(r); got != "abc123" {
			t.Errorf("ExtractToken = %q, want abc123", got)
		}
	})

	t.Run("cookie fallback", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/submissions", nil)
		r.AddCookie(&http.Cookie{Name: StudentCookieName, Value: "cookie-token"})
		if got := ExtractToken(r); got != "cookie-token" {
			t.Errorf("ExtractToken = %q, want cookie-token", got)
		}
	})

	t.Run("header wins over cookie", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/submissions", nil)
		r.Header.Set("Authorization", "Bearer header-token")
		r.AddCookie(&http.Cookie{Name: StudentCookieName, Value: "cookie-token"})
		if got := ExtractToken(r); got != "header-token" {
			t.Errorf("ExtractToken = %q, want header-token", got)
		}
	})

	t.Run("non-bearer scheme ignored", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/submissions", nil)
		r.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		if got := ExtractToken(r); got != "" {
			t.Errorf("ExtractToken = %q, want empty", got)
		}
	})

	t.Run("nothing present", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/submissions", nil)
		if got := ExtractToken(r); got != "" {
			t.Errorf("ExtractToken = %q, want empty", got)
		}
	})
}
