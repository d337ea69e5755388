// StemQuest - Student STEM Challenge Platform
// Copyright 2026 StemQuest Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stemquest/stemquest

package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/stemquest/stemquest/internal/auth"
	"github.com/stemquest/stemquest/internal/authz"
	"github.com/stemquest/stemquest/internal/database"
	"github.com/stemquest/stemquest/internal/logging"
	"github.com/stemquest/stemquest/internal/models"
)

// ListUsers returns a filtered, paged user listing.
func (h *Handlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	if _, err := h.requireAdmin(r, authz.Requirement{Permission: models.PermManageUsers}); err != nil {
		respondMappedError(w, r, err)
		return
	}

	page, limit := h.pageParams(r)
	filter := database.UserFilter{
		Role:   r.URL.Query().Get("role"),
		State:  r.URL.Query().Get("state"),
		Search: r.URL.Query().Get("search"),
		Page:   page,
		Limit:  limit,
	}
	if g := r.URL.Query().Get("grade"); g != "" {
		if grade, err := strconv.Atoi(g); err == nil {
			filter.Grade = &grade
		}
	}

	users, total, err := h.db.ListUsers(r.Context(), filter)
	if err != nil {
		respondMappedError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, models.PagedList[models.User]{
		Items: users,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// GetUser returns one user by id.
func (h *Handlers) GetUser(w http.ResponseWriter, r *http.Request) {
	if _, err := h.requireAdmin(r, authz.Requirement{Permission: models.PermManageUsers}); err != nil {
		respondMappedError(w, r, err)
		return
	}

	user, err := h.db.GetUserByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondMappedError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// CreateUser creates an account with an explicit role, for admin use.
func (h *Handlers) CreateUser(w http.ResponseWriter, r *http.Request) {
	session, err := h.requireAdmin(r, authz.Requirement{Permission: models.PermManageUsers})
	if err != nil {
		respondMappedError(w, r, err)
		return
	}

	var req models.CreateUserRequest
	if err := decodeBody(r, &req); err != nil {
		respondMappedError(w, r, err)
		return
	}

	hash, err := auth.HashPassword(req.Password, h.cfg.Security.BcryptCost)
	if err != nil {
		respondMappedError(w, r, err)
		return
	}

	user := &models.User{
		Email:       strings.ToLower(req.Email),
		Username:    req.Username,
		Password:    hash,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Role:        req.Role,
		Permissions: req.Permissions,
		IsAdmin:     models.IsAdminRole(req.Role),
	}
	if err := h.db.CreateUser(r.Context(), user); err != nil {
		respondMappedError(w, r, err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("user_id", user.ID).
		Str("role", user.Role).
		Str("created_by", session.UserID).
		Msg("User created")
	respondJSON(w, http.StatusCreated, user)
}

// UpdateUser applies a partial update to one user.
func (h *Handlers) UpdateUser(w http.ResponseWriter, r *http.Request) {
	if _, err := h.requireAdmin(r, authz.Requirement{Permission: models.PermManageUsers}); err != nil {
		respondMappedError(w, r, err)
		return
	}

	var req models.UpdateUserRequest
	if err := decodeBody(r, &req); err != nil {
		respondMappedError(w, r, err)
		return
	}

	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password, h.cfg.Security.BcryptCost)
		if err != nil {
			respondMappedError(w, r, err)
			return
		}
		req.Password = &hash
	}

	user, err := h.db.UpdateUser(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		respondMappedError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// DeleteUser removes a user and their activity.
func (h *Handlers) DeleteUser(w http.ResponseWriter, r *http.Request) {
	session, err := h.requireAdmin(r, authz.Requirement{Permission: models.PermManageUsers})
	if err != nil {
		respondMappedError(w, r, err)
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.db.DeleteUser(r.Context(), id); err != nil {
		respondMappedError(w, r, err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("user_id", id).
		Str("deleted_by", session.UserID).
		Msg("User deleted")
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Leaderboard returns ranked students. Public; no account needed to see
// the standings.
func (h *Handlers) Leaderboard(w http.ResponseWriter, r *http.Request) {
	filter := database.LeaderboardFilter{
		State: r.URL.Query().Get("state"),
	}
	if g := r.URL.Query().Get("grade"); g != "" {
		if grade, err := strconv.Atoi(g); err == nil {
			filter.Grade = &grade
		}
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		if limit, err := strconv.Atoi(l); err == nil && limit > 0 {
			filter.Limit = limit
		}
	}

	entries, err := h.db.Leaderboard(r.Context(), filter)
	if err != nil {
		respondMappedError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}
