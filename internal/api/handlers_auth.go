// StemQuest - Student STEM Challenge Platform
// Copyright 2026 StemQuest Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stemquest/stemquest

package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/stemquest/stemquest/internal/auth"
	"github.com/stemquest/stemquest/internal/database"
	"github.com/stemquest/stemquest/internal/logging"
	"github.com/stemquest/stemquest/internal/metrics"
	"github.com/stemquest/stemquest/internal/models"
	"github.com/stemquest/stemquest/internal/ratelimit"
	"github.com/stemquest/stemquest/internal/validation"
)

// Signup abuse limits.
const (
	signupMaxPerWindow = 5
	signupWindow       = 15 * time.Minute
)

// Signup registers a new student account. Rate limited per client IP;
// duplicate email or username is a 409 regardless of timing, the unique
// indexes decide.
func (h *Handlers) Signup(w http.ResponseWriter, r *http.Request) {
	if !h.cfg.RateLimit.Disabled {
		ip := ratelimit.ClientIP(r)
		result, err := h.limiter.Allow(r.Context(), "signup:"+ip, signupMaxPerWindow, signupWindow)
		if err != nil {
			respondMappedError(w, r, err)
			return
		}
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt, 10))
		if !result.Allowed {
			metrics.RateLimitDenials.WithLabelValues("signup").Inc()
			respondError(w, http.StatusTooManyRequests,
				"Too many signup attempts, please try again later", models.CodeRateLimited)
			return
		}
	}

	var req models.SignupRequest
	if err := decodeBody(r, &req); err != nil {
		respondMappedError(w, r, err)
		return
	}
	if !validation.AcceptableUsername(req.Username) {
		respondError(w, http.StatusBadRequest, "This username is not available", models.CodeValidation)
		return
	}

	hash, err := auth.HashPassword(req.Password, h.cfg.Security.BcryptCost)
	if err != nil {
		respondMappedError(w, r, err)
		return
	}

	grade := req.Grade
	user := &models.User{
		Email:       strings.ToLower(req.Email),
		Username:    req.Username,
		Password:    hash,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Role:        models.RoleStudent,
		Grade:       &grade,
		State:       req.State,
		School:      req.School,
		ParentEmail: req.ParentEmail,
	}
	if err := h.db.CreateUser(r.Context(), user); err != nil {
		respondMappedError(w, r, err)
		return
	}

	metrics.Signups.Inc()
	logging.Ctx(r.Context()).Info().
		Str("user_id", user.ID).
		Str("username", user.Username).
		Msg("Student signed up")
	respondJSON(w, http.StatusCreated, user)
}

// StudentLogin exchanges email/password for a student access token. The
// token is returned in the body and mirrored into the session-token
// cookie for browser clients.
func (h *Handlers) StudentLogin(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeBody(r, &req); err != nil {
		respondMappedError(w, r, err)
		return
	}

	user, err := h.db.GetUserByEmail(r.Context(), strings.ToLower(req.Email))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			metrics.RecordLogin("student", false)
			respondError(w, http.StatusUnauthorized, "Invalid email or password", models.CodeUnauthenticated)
			return
		}
		respondMappedError(w, r, err)
		return
	}
	if err := auth.CheckPassword(user.Password, req.Password); err != nil {
		metrics.RecordLogin("student", false)
		respondError(w, http.StatusUnauthorized, "Invalid email or password", models.CodeUnauthenticated)
		return
	}

	token, err := h.tokens.Generate(user.ID, user.Username, user.Role)
	if err != nil {
		respondMappedError(w, r, err)
		return
	}
	if err := h.db.TouchLastLogin(r.Context(), user.ID); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Failed to record last login")
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.StudentCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cfg.Security.StudentTokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.Server.IsProduction(),
		SameSite: http.SameSiteStrictMode,
	})

	metrics.RecordLogin("student", true)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

// AdminLogin authenticates an admin-capable account and issues the
// signed admin-session cookie. Failures are lockout-tracked per email;
// a locked identity is refused before the password is even checked.
func (h *Handlers) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeBody(r, &req); err != nil {
		respondMappedError(w, r, err)
		return
	}
	email := strings.ToLower(req.Email)

	if locked, remaining := h.lockouts.IsLocked(email); locked {
		respondError(w, http.StatusTooManyRequests,
			"Account temporarily locked, try again in "+remaining.Round(time.Second).String(),
			models.CodeRateLimited)
		return
	}

	user, err := h.db.GetUserByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			h.failAdminLogin(w, r, email)
			return
		}
		respondMappedError(w, r, err)
		return
	}
	if err := auth.CheckPassword(user.Password, req.Password); err != nil {
		h.failAdminLogin(w, r, email)
		return
	}
	if !user.IsAdmin && !models.IsAdminRole(user.Role) {
		metrics.RecordLogin("admin", false)
		respondError(w, http.StatusForbidden, "Insufficient privileges", models.CodeForbidden)
		return
	}

	session := auth.Session{
		UserID:      user.ID,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		Role:        user.Role,
		Permissions: user.Permissions,
		IsAdmin:     user.IsAdmin,
	}
	token, err := h.sessions.Encode(session)
	if err != nil {
		respondMappedError(w, r, err)
		return
	}
	h.sessions.SetCookie(w, token)

	h.lockouts.RecordSuccess(email)
	if err := h.db.TouchLastLogin(r.Context(), user.ID); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Failed to record last login")
	}

	metrics.RecordLogin("admin", true)
	logging.Ctx(r.Context()).Info().
		Str("user_id", user.ID).
		Str("role", user.Role).
		Msg("Admin logged in")
	respondJSON(w, http.StatusOK, session)
}

func (h *Handlers) failAdminLogin(w http.ResponseWriter, r *http.Request, email string) {
	metrics.RecordLogin("admin", false)
	if justLocked := h.lockouts.RecordFailure(email); justLocked {
		logging.Ctx(r.Context()).Warn().
			Str("email", email).
			Msg("Admin account locked after repeated failures")
	}
	respondError(w, http.StatusUnauthorized, "Invalid email or password", models.CodeUnauthenticated)
}

// AdminLogout clears the admin-session cookie. Stateless sessions have
// nothing server-side to revoke.
func (h *Handlers) AdminLogout(w http.ResponseWriter, r *http.Request) {
	h.sessions.ClearCookie(w)
	respondJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// AdminSession returns the current session snapshot, or 401. A cookie
// that fails to decode is treated exactly like a missing one.
func (h *Handlers) AdminSession(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.SessionFromContext(r.Context())
	if !ok {
		session, ok = h.sessions.FromRequest(r)
	}
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required", models.CodeUnauthenticated)
		return
	}
	respondJSON(w, http.StatusOK, session)
}
