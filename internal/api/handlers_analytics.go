// StemQuest - Student STEM Challenge Platform
// Copyright 2026 StemQuest Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stemquest/stemquest

package api

import (
	"net/http"
	"time"

	"github.com/stemquest/stemquest/internal/analytics"
	"github.com/stemquest/stemquest/internal/auth"
	"github.com/stemquest/stemquest/internal/authz"
	"github.com/stemquest/stemquest/internal/models"
)

var analyticsRequirement = authz.Requirement{Permission: models.PermViewAnalytics}

func requestPeriod(r *http.Request) analytics.Period {
	return analytics.ResolvePeriod(r.URL.Query().Get("period"), time.Now().UTC())
}

// OverviewAnalytics serves the platform-wide dashboard payload.
func (h *Handlers) OverviewAnalytics(w http.ResponseWriter, r *http.Request) {
	if _, err := h.requireAdmin(r, analyticsRequirement); err != nil {
		respondMappedError(w, r, err)
		return
	}

	payload, err := h.db.OverviewAnalytics(r.Context(), requestPeriod(r))
	if err != nil {
		respondMappedError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, payload)
}

// UserAnalytics serves growth, engagement and behavior aggregates.
func (h *Handlers) UserAnalytics(w http.ResponseWriter, r *http.Request) {
	if _, err := h.requireAdmin(r, analyticsRequirement); err != nil {
		respondMappedError(w, r, err)
		return
	}

	payload, err := h.db.UserAnalytics(r.Context(), requestPeriod(r))
	if err != nil {
		respondMappedError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, payload)
}

// ChallengeAnalytics serves per-challenge and per-category aggregates.
func (h *Handlers) ChallengeAnalytics(w http.ResponseWriter, r *http.Request) {
	if _, err := h.requireAdmin(r, analyticsRequirement); err != nil {
		respondMappedError(w, r, err)
		return
	}

	payload, err := h.db.ChallengeAnalytics(r.Context(), requestPeriod(r))
	if err != nil {
		respondMappedError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, payload)
}

type trackRequest struct {
	Action string `json:"action" validate:"omitempty,max=100"`
	Detail string `json:"detail" validate:"omitempty,max=500"`
	Path   string `json:"path" validate:"omitempty,max=500"`
}

// Track records a user action or a page view. Page views are accepted
// anonymously; actions need an authenticated student.
func (h *Handlers) Track(w http.ResponseWriter, r *http.Request) {
	var req trackRequest
	if err := decodeBody(r, &req); err != nil {
		respondMappedError(w, r, err)
		return
	}

	var userID string
	if student, ok := auth.StudentFromContext(r.Context()); ok {
		userID = student.Subject
	}

	if req.Path != "" {
		if err := h.db.RecordPageView(r.Context(), models.PageView{UserID: userID, Path: req.Path}); err != nil {
			respondMappedError(w, r, err)
			return
		}
	}
	if req.Action != "" {
		if userID == "" {
			respondMappedError(w, r, authz.ErrUnauthenticated)
			return
		}
		action := models.UserAction{UserID: userID, Action: req.Action, Detail: req.Detail}
		if err := h.db.RecordUserAction(r.Context(), action); err != nil {
			respondMappedError(w, r, err)
			return
		}
	}
	respondJSON(w, http.StatusAccepted, map[string]string{"status": "recorded"})
}
