// StemQuest - Student STEM Challenge Platform
// Copyright 2026 StemQuest Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stemquest/stemquest

// Package api wires the HTTP surface: chi routing, request decoding,
// per-handler authorization via the authz gate, and the central error
// mapping in respond.go.
package api

import (
	"net/http"
	"strconv"

	"github.com/stemquest/stemquest/internal/auth"
	"github.com/stemquest/stemquest/internal/authz"
	"github.com/stemquest/stemquest/internal/config"
	"github.com/stemquest/stemquest/internal/database"
	"github.com/stemquest/stemquest/internal/mailer"
	"github.com/stemquest/stemquest/internal/ratelimit"
)

// Handlers carries every dependency the HTTP handlers need.
type Handlers struct {
	cfg      *config.Config
	db       *database.DB
	sessions *auth.SessionManager
	tokens   *auth.TokenManager
	lockouts *auth.LockoutManager
	limiter  ratelimit.Limiter
	sender   mailer.Sender
}

// NewHandlers assembles the handler set.
func NewHandlers(
	cfg *config.Config,
	db *database.DB,
	sessions *auth.SessionManager,
	tokens *auth.TokenManager,
	lockouts *auth.LockoutManager,
	limiter ratelimit.Limiter,
	sender mailer.Sender,
) *Handlers {
	return &Handlers{
		cfg:      cfg,
		db:       db,
		sessions: sessions,
		tokens:   tokens,
		lockouts: lockouts,
		limiter:  limiter,
		sender:   sender,
	}
}

// requireAdmin runs the authorization gate against the request's admin
// session. On failure the error is already in mapError's vocabulary.
func (h *Handlers) requireAdmin(r *http.Request, req authz.Requirement) (auth.Session, error) {
	session, present := auth.SessionFromContext(r.Context())
	if !present {
		session, present = h.sessions.FromRequest(r)
	}
	if err := authz.Check(session, present, req); err != nil {
		return auth.Session{}, err
	}
	return session, nil
}

// pageParams extracts page/limit query parameters, clamped to the
// configured bounds.
func (h *Handlers) pageParams(r *http.Request) (page, limit int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = h.cfg.API.DefaultPageSize
	}
	if limit > h.cfg.API.MaxPageSize {
		limit = h.cfg.API.MaxPageSize
	}
	return page, limit
}
