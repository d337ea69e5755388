// StemQuest - Student STEM Challenge Platform
// Copyright 2026 StemQuest Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stemquest/stemquest

package auth

import (
	"context"
	"net/http"
	"net/url"

	"github.com/stemquest/stemquest/internal/logging"
	"github.com/stemquest/stemquest/internal/routes"
)

type contextKey string

const (
	sessionContextKey contextKey = "admin_session"
	studentContextKey contextKey = "student_claims"
)

// SessionFromContext returns the admin session stored by the gate
// middleware, if any.
func SessionFromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionContextKey).(Session)
	return s, ok
}

// StudentFromContext returns the student claims stored by the gate
// middleware, if any.
func StudentFromContext(ctx context.Context) (*StudentClaims, bool) {
	c, ok := ctx.Value(studentContextKey).(*StudentClaims)
	return c, ok
}

// Gate enforces the navigation access rules for page routes and injects
// whatever identity the request carries into the context for handlers.
//
// Rules by path class:
//   - public: pass through
//   - student auth page + valid student token: redirect to /dashboard
//   - student protected + no valid token: redirect to /login with the
//     original path in the redirect parameter
//   - admin auth page + valid admin session: redirect to /admin
//   - admin protected + no admin session: redirect to /admin/login
//
// A cookie that fails to decode behaves exactly like a missing cookie.
// Denials redirect; they are not logged as security events.
type Gate struct {
	sessions *SessionManager
	tokens   *TokenManager
}

// NewGate creates the auth gate middleware.
func NewGate(sessions *SessionManager, tokens *TokenManager) *Gate {
	return &Gate{sessions: sessions, tokens: tokens}
}

// Middleware wraps next with the gate's access rules.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		// Decode whatever identity is present, invalid meaning absent.
		session, hasSession := g.sessions.FromRequest(r)
		if hasSession {
			ctx = context.WithValue(ctx, sessionContextKey, session)
		}

		var student *StudentClaims
		if token := ExtractToken(r); token != "" {
			if claims, err := g.tokens.Validate(token); err == nil {
				student = claims
				ctx = context.WithValue(ctx, studentContextKey, claims)
			}
		}

		switch routes.Classify(r.URL.Path) {
		case routes.StudentAuthPage:
			if student != nil {
				http.Redirect(w, r, "/dashboard", http.StatusFound)
				return
			}
		case routes.StudentProtected:
			if student == nil {
				target := "/login?redirect=" + url.QueryEscape(r.URL.Path)
				http.Redirect(w, r, target, http.StatusFound)
				return
			}
		case routes.AdminAuthPage:
			if hasSession {
				http.Redirect(w, r, "/admin", http.StatusFound)
				return
			}
		case routes.AdminProtected:
			if !hasSession {
				http.Redirect(w, r, "/admin/login", http.StatusFound)
				return
			}
			logging.Ctx(ctx).Debug().
				Str("path", r.URL.Path).
				Str("role", session.Role).
				Msg("Admin page access")
		case routes.Public:
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// WithSession returns a context carrying the given admin session.
// Used by tests and by handlers that authenticate inline.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, s)
}

// WithStudent returns a context carrying the given student claims.
func WithStudent(ctx context.Context, c *StudentClaims) context.Context {
	return context.WithValue(ctx, studentContextKey, c)
}
