// StemQuest - Student STEM Challenge Platform
// Copyright 2026 StemQuest Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stemquest/stemquest

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stemquest/stemquest/internal/authz"
	"github.com/stemquest/stemquest/internal/models"
)

// ListCategories returns all categories. Public.
func (h *Handlers) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.db.ListCategories(r.Context())
	if err != nil {
		respondMappedError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, categories)
}

// CreateCategory creates a category. Duplicate names are a 409.
func (h *Handlers) CreateCategory(w http.ResponseWriter, r *http.Request) {
	if _, err := h.requireAdmin(r, authz.Requirement{Permission: models.PermManageChallenges}); err != nil {
		respondMappedError(w, r, err)
		return
	}

	var req models.CreateCategoryRequest
	if err := decodeBody(r, &req); err != nil {
		respondMappedError(w, r, err)
		return
	}

	category, err := h.db.CreateCategory(r.Context(), req)
	if err != nil {
		respondMappedError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, category)
}

// DeleteCategory removes a category that no challenge references.
func (h *Handlers) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if _, err := h.requireAdmin(r, authz.Requirement{Permission: models.PermManageChallenges}); err != nil {
		respondMappedError(w, r, err)
		return
	}

	if err := h.db.DeleteCategory(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondMappedError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ListPrizes returns prizes. Public; students browse the reward shop.
func (h *Handlers) ListPrizes(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("all") != "true"
	prizes, err := h.db.ListPrizes(r.Context(), activeOnly)
	if err != nil {
		respondMappedError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, prizes)
}

// GetPrize returns one prize by id.
func (h *Handlers) GetPrize(w http.ResponseWriter, r *http.Request) {
	prize, err := h.db.GetPrizeByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondMappedError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, prize)
}

// CreatePrize creates a prize.
func (h *Handlers) CreatePrize(w http.ResponseWriter, r *http.Request) {
	if _, err := h.requireAdmin(r, authz.Requirement{Permission: models.PermManageContent}); err != nil {
		respondMappedError(w, r, err)
		return
	}

	var req models.CreatePrizeRequest
	if err := decodeBody(r, &req); err != nil {
		respondMappedError(w, r, err)
		return
	}

	prize, err := h.db.CreatePrize(r.Context(), req)
	if err != nil {
		respondMappedError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, prize)
}

// UpdatePrize applies a partial update to one prize.
func (h *Handlers) UpdatePrize(w http.ResponseWriter, r *http.Request) {
	if _, err := h.requireAdmin(r, authz.Requirement{Permission: models.PermManageContent}); err != nil {
		respondMappedError(w, r, err)
		return
	}

	var req models.UpdatePrizeRequest
	if err := decodeBody(r, &req); err != nil {
		respondMappedError(w, r, err)
		return
	}

	prize, err := h.db.UpdatePrize(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		respondMappedError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, prize)
}

// DeletePrize removes a prize.
func (h *Handlers) DeletePrize(w http.ResponseWriter, r *http.Request) {
	if _, err := h.requireAdmin(r, authz.Requirement{Permission: models.PermManageContent}); err != nil {
		respondMappedError(w, r, err)
		return
	}

	if err := h.db.DeletePrize(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondMappedError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ListAdvisors returns the advisor roster. Public.
func (h *Handlers) ListAdvisors(w http.ResponseWriter, r *http.Request) {
	advisors, err := h.db.ListAdvisors(r.Context())
	if err != nil {
		respondMappedError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, advisors)
}

// CreateAdvisor adds an advisor to the roster.
func (h *Handlers) CreateAdvisor(w http.ResponseWriter, r *http.Request) {
	if _, err := h.requireAdmin(r, authz.Requirement{Permission: models.PermManageContent}); err != nil {
		respondMappedError(w, r, err)
		return
	}

	var req models.CreateAdvisorRequest
	if err := decodeBody(r, &req); err != nil {
		respondMappedError(w, r, err)
		return
	}

	advisor, err := h.db.CreateAdvisor(r.Context(), req)
	if err != nil {
		respondMappedError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, advisor)
}

// DeleteAdvisor removes an advisor.
func (h *Handlers) DeleteAdvisor(w http.ResponseWriter, r *http.Request) {
	if _, err := h.requireAdmin(r, authz.Requirement{Permission: models.PermManageContent}); err != nil {
		respondMappedError(w, r, err)
		return
	}

	if err := h.db.DeleteAdvisor(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondMappedError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
