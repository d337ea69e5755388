// StemQuest - Student STEM Challenge Platform
// Copyright 2026 StemQuest Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stemquest/stemquest

package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/stemquest/stemquest/internal/models"
)

// SessionCookieName carries the admin session between requests.
const SessionCookieName = "admin-session"

// Session is the authenticated admin identity reconstructed on every
// request from the signed cookie. There is no server-side session store;
// the cookie is the session.
type Session struct {
	UserID      string
	Email       string
	FirstName   string
	LastName    string
	Role        string
	Permissions []string
	IsAdmin     bool
}

// HasPermission reports whether the session may perform the operation
// guarded by perm. RoleSuperAdmin passes every check; all other roles
// need the literal permission string in their snapshot.
func (s Session) HasPermission(perm string) bool {
	if s.Role == models.RoleSuperAdmin {
		return true
	}
	for _, p := range s.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}

// sessionClaims is the JWT payload of the admin-session cookie.
type sessionClaims struct {
	Email       string   `json:"email"`
	FirstName   string   `json:"firstName,omitempty"`
	LastName    string   `json:"lastName,omitempty"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions,omitempty"`
	IsAdmin     bool     `json:"isAdmin"`
	jwt.RegisteredClaims
}

// SessionManager encodes and decodes the signed admin-session cookie.
//
// The cookie value is an HMAC-SHA256 signed JWT. Any decode failure,
// whether garbage bytes, a bad signature, an expired token, or missing
// identity claims, yields "no session" rather than an error: a tampered
// cookie must look exactly like an absent one.
type SessionManager struct {
	secret []byte
	maxAge time.Duration

	// secure marks cookies Secure (HTTPS only) in production.
	secure bool
}

// NewSessionManager creates a session manager.
// maxAge bounds both the JWT expiry and the cookie lifetime.
func NewSessionManager(secret string, maxAge time.Duration, secure bool) (*SessionManager, error) {
	if secret == "" {
		return nil, errors.New("session secret must not be empty")
	}
	if maxAge <= 0 {
		maxAge = 7 * 24 * time.Hour
	}
	return &SessionManager{secret: []byte(secret), maxAge: maxAge, secure: secure}, nil
}

// Encode signs the session into a cookie-ready token.
func (m *SessionManager) Encode(s Session) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		Email:       s.Email,
		FirstName:   s.FirstName,
		LastName:    s.LastName,
		Role:        s.Role,
		Permissions: s.Permissions,
		IsAdmin:     s.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.maxAge)),
			Issuer:    "stemquest",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session: %w", err)
	}
	return signed, nil
}

// Decode verifies a token and reconstructs the session.
// The second return is false for any invalid, expired, tampered, or
// incomplete token. Decode never panics and never returns an error to
// propagate; failure always means "treat as unauthenticated".
func (m *SessionManager) Decode(raw string) (Session, bool) {
	if raw == "" {
		return Session{}, false
	}

	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return Session{}, false
	}

	// A structurally valid token without identity is still no session.
	if claims.Subject == "" || claims.Email == "" || claims.Role == "" {
		return Session{}, false
	}

	return Session{
		UserID:      claims.Subject,
		Email:       claims.Email,
		FirstName:   claims.FirstName,
		LastName:    claims.LastName,
		Role:        claims.Role,
		Permissions: claims.Permissions,
		IsAdmin:     claims.IsAdmin,
	}, true
}

// SetCookie writes the session cookie on the response.
// HTTP-only and SameSite=Strict always; Secure in production.
func (m *SessionManager) SetCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.maxAge.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// ClearCookie expires the session cookie on the response.
func (m *SessionManager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// FromRequest decodes the session from the request's cookie.
// Missing cookie and invalid cookie are indistinguishable by design.
func (m *SessionManager) FromRequest(r *http.Request) (Session, bool) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return Session{}, false
	}
	return m.Decode(cookie.Value)
}
