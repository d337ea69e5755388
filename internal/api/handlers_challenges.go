// StemQuest - Student STEM Challenge Platform
// Copyright 2026 StemQuest Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stemquest/stemquest

package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/stemquest/stemquest/internal/auth"
	"github.com/stemquest/stemquest/internal/authz"
	"github.com/stemquest/stemquest/internal/database"
	"github.com/stemquest/stemquest/internal/metrics"
	"github.com/stemquest/stemquest/internal/models"
)

// ListChallenges returns challenges. Public so prospective students can
// browse; admins pass activeOnly=false to see drafts.
func (h *Handlers) ListChallenges(w http.ResponseWriter, r *http.Request) {
	filter := database.ChallengeFilter{
		CategoryID: r.URL.Query().Get("categoryId"),
		ActiveOnly: r.URL.Query().Get("all") != "true",
	}
	if g := r.URL.Query().Get("grade"); g != "" {
		if grade, err := strconv.Atoi(g); err == nil {
			filter.Grade = &grade
		}
	}

	challenges, err := h.db.ListChallenges(r.Context(), filter)
	if err != nil {
		respondMappedError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, challenges)
}

// GetChallenge returns one challenge by id.
func (h *Handlers) GetChallenge(w http.ResponseWriter, r *http.Request) {
	challenge, err := h.db.GetChallengeByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondMappedError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, challenge)
}

// CreateChallenge creates a challenge.
func (h *Handlers) CreateChallenge(w http.ResponseWriter, r *http.Request) {
	if _, err := h.requireAdmin(r, authz.Requirement{Permission: models.PermManageChallenges}); err != nil {
		respondMappedError(w, r, err)
		return
	}

	var req models.CreateChallengeRequest
	if err := decodeBody(r, &req); err != nil {
		respondMappedError(w, r, err)
		return
	}

	challenge, err := h.db.CreateChallenge(r.Context(), req)
	if err != nil {
		respondMappedError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, challenge)
}

// UpdateChallenge applies a partial update to one challenge.
func (h *Handlers) UpdateChallenge(w http.ResponseWriter, r *http.Request) {
	if _, err := h.requireAdmin(r, authz.Requirement{Permission: models.PermManageChallenges}); err != nil {
		respondMappedError(w, r, err)
		return
	}

	var req models.UpdateChallengeRequest
	if err := decodeBody(r, &req); err != nil {
		respondMappedError(w, r, err)
		return
	}

	challenge, err := h.db.UpdateChallenge(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		respondMappedError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, challenge)
}

// DeleteChallenge removes a challenge and its submissions.
func (h *Handlers) DeleteChallenge(w http.ResponseWriter, r *http.Request) {
	if _, err := h.requireAdmin(r, authz.Requirement{Permission: models.PermManageChallenges}); err != nil {
		respondMappedError(w, r, err)
		return
	}

	if err := h.db.DeleteChallenge(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondMappedError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// CreateSubmission accepts a student's answer. The submitter comes from
// the student token, never from the body.
func (h *Handlers) CreateSubmission(w http.ResponseWriter, r *http.Request) {
	student, ok := auth.StudentFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required", models.CodeUnauthenticated)
		return
	}

	var req models.CreateSubmissionRequest
	if err := decodeBody(r, &req); err != nil {
		respondMappedError(w, r, err)
		return
	}

	sub, err := h.db.CreateSubmission(r.Context(), student.Subject, req)
	if err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			metrics.SubmissionDuplicates.Inc()
			respondError(w, http.StatusConflict,
				"You have already submitted to this challenge", models.CodeConflict)
			return
		}
		respondMappedError(w, r, err)
		return
	}

	metrics.SubmissionsCreated.Inc()
	respondJSON(w, http.StatusCreated, sub)
}

// ListSubmissions returns submissions. Students see their own; admins
// with view_submissions may inspect anyone's via the userId parameter.
func (h *Handlers) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	filter := database.SubmissionFilter{
		ChallengeID: r.URL.Query().Get("challengeId"),
	}

	if student, ok := auth.StudentFromContext(r.Context()); ok {
		filter.UserID = student.Subject
	} else {
		if _, err := h.requireAdmin(r, authz.Requirement{Permission: models.PermViewSubmissions}); err != nil {
			respondMappedError(w, r, err)
			return
		}
		filter.UserID = r.URL.Query().Get("userId")
	}

	subs, err := h.db.ListSubmissions(r.Context(), filter)
	if err != nil {
		respondMappedError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, subs)
}

// scoreRequest is the payload for grading a submission.
type scoreRequest struct {
	Score int `json:"score" validate:"min=0,max=10000"`
}

// ScoreSubmission grades a submission and credits the points delta.
func (h *Handlers) ScoreSubmission(w http.ResponseWriter, r *http.Request) {
	if _, err := h.requireAdmin(r, authz.Requirement{Permission: models.PermManageChallenges}); err != nil {
		respondMappedError(w, r, err)
		return
	}

	var req scoreRequest
	if err := decodeBody(r, &req); err != nil {
		respondMappedError(w, r, err)
		return
	}

	if err := h.db.ScoreSubmission(r.Context(), chi.URLParam(r, "id"), req.Score); err != nil {
		respondMappedError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "scored"})
}
