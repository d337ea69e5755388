// StemQuest - Student STEM Challenge Platform
// Copyright 2026 StemQuest Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stemquest/stemquest

package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/stemquest/stemquest/internal/authz"
	"github.com/stemquest/stemquest/internal/logging"
	"github.com/stemquest/stemquest/internal/metrics"
	"github.com/stemquest/stemquest/internal/models"
)

var emailRequirement = authz.Requirement{Permission: models.PermManageEmails}

// ListEmailTemplates returns all templates.
func (h *Handlers) ListEmailTemplates(w http.ResponseWriter, r *http.Request) {
	if _, err := h.requireAdmin(r, emailRequirement); err != nil {
		respondMappedError(w, r, err)
		return
	}

	templates, err := h.db.ListEmailTemplates(r.Context())
	if err != nil {
		respondMappedError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, templates)
}

// CreateEmailTemplate creates a template.
func (h *Handlers) CreateEmailTemplate(w http.ResponseWriter, r *http.Request) {
	if _, err := h.requireAdmin(r, emailRequirement); err != nil {
		respondMappedError(w, r, err)
		return
	}

	var req models.CreateEmailTemplateRequest
	if err := decodeBody(r, &req); err != nil {
		respondMappedError(w, r, err)
		return
	}

	tmpl, err := h.db.CreateEmailTemplate(r.Context(), req)
	if err != nil {
		respondMappedError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, tmpl)
}

// GetEmailTemplate returns one template.
func (h *Handlers) GetEmailTemplate(w http.ResponseWriter, r *http.Request) {
	if _, err := h.requireAdmin(r, emailRequirement); err != nil {
		respondMappedError(w, r, err)
		return
	}

	tmpl, err := h.db.GetEmailTemplateByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondMappedError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, tmpl)
}

// UpdateEmailTemplate applies a partial update to one template.
func (h *Handlers) UpdateEmailTemplate(w http.ResponseWriter, r *http.Request) {
	if _, err := h.requireAdmin(r, emailRequirement); err != nil {
		respondMappedError(w, r, err)
		return
	}

	var req models.UpdateEmailTemplateRequest
	if err := decodeBody(r, &req); err != nil {
		respondMappedError(w, r, err)
		return
	}

	tmpl, err := h.db.UpdateEmailTemplate(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		respondMappedError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, tmpl)
}

// DeleteEmailTemplate removes a template no campaign references.
func (h *Handlers) DeleteEmailTemplate(w http.ResponseWriter, r *http.Request) {
	if _, err := h.requireAdmin(r, emailRequirement); err != nil {
		respondMappedError(w, r, err)
		return
	}

	if err := h.db.DeleteEmailTemplate(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondMappedError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ListEmailCampaigns returns all campaigns.
func (h *Handlers) ListEmailCampaigns(w http.ResponseWriter, r *http.Request) {
	if _, err := h.requireAdmin(r, emailRequirement); err != nil {
		respondMappedError(w, r, err)
		return
	}

	campaigns, err := h.db.ListEmailCampaigns(r.Context())
	if err != nil {
		respondMappedError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, campaigns)
}

// CreateEmailCampaign creates a campaign.
func (h *Handlers) CreateEmailCampaign(w http.ResponseWriter, r *http.Request) {
	if _, err := h.requireAdmin(r, emailRequirement); err != nil {
		respondMappedError(w, r, err)
		return
	}

	var req models.CreateEmailCampaignRequest
	if err := decodeBody(r, &req); err != nil {
		respondMappedError(w, r, err)
		return
	}

	campaign, err := h.db.CreateEmailCampaign(r.Context(), req)
	if err != nil {
		respondMappedError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, campaign)
}

// GetEmailCampaign returns one campaign.
func (h *Handlers) GetEmailCampaign(w http.ResponseWriter, r *http.Request) {
	if _, err := h.requireAdmin(r, emailRequirement); err != nil {
		respondMappedError(w, r, err)
		return
	}

	campaign, err := h.db.GetEmailCampaignByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondMappedError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, campaign)
}

// UpdateEmailCampaign updates a draft or scheduled campaign.
func (h *Handlers) UpdateEmailCampaign(w http.ResponseWriter, r *http.Request) {
	if _, err := h.requireAdmin(r, emailRequirement); err != nil {
		respondMappedError(w, r, err)
		return
	}

	var req models.UpdateEmailCampaignRequest
	if err := decodeBody(r, &req); err != nil {
		respondMappedError(w, r, err)
		return
	}

	campaign, err := h.db.UpdateEmailCampaign(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		respondMappedError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, campaign)
}

// DeleteEmailCampaign removes a campaign and its logs.
func (h *Handlers) DeleteEmailCampaign(w http.ResponseWriter, r *http.Request) {
	if _, err := h.requireAdmin(r, emailRequirement); err != nil {
		respondMappedError(w, r, err)
		return
	}

	if err := h.db.DeleteEmailCampaign(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondMappedError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// SendEmailCampaign runs a full campaign send synchronously. Sending an
// already-sent campaign, or one with an empty audience, is a 400.
func (h *Handlers) SendEmailCampaign(w http.ResponseWriter, r *http.Request) {
	session, err := h.requireAdmin(r, emailRequirement)
	if err != nil {
		respondMappedError(w, r, err)
		return
	}

	id := chi.URLParam(r, "id")
	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.Campaigns.SendTimeout)
	defer cancel()

	result, err := h.db.SendCampaign(ctx, id, func(ctx context.Context, to models.Recipient, subject, body string) error {
		err := h.sender.Send(ctx, to, subject, body)
		if err != nil {
			metrics.CampaignEmailsSent.WithLabelValues("failed").Inc()
		} else {
			metrics.CampaignEmailsSent.WithLabelValues("sent").Inc()
		}
		return err
	})
	if err != nil {
		respondMappedError(w, r, err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("campaign_id", id).
		Str("sent_by", session.UserID).
		Int("recipients", result.RecipientCount).
		Int("sent", result.SentCount).
		Int("failed", result.FailedCount).
		Msg("Campaign sent")
	respondJSON(w, http.StatusOK, result)
}

// ListEmailLogs returns the per-recipient delivery log of one campaign.
func (h *Handlers) ListEmailLogs(w http.ResponseWriter, r *http.Request) {
	if _, err := h.requireAdmin(r, emailRequirement); err != nil {
		respondMappedError(w, r, err)
		return
	}

	logs, err := h.db.ListEmailLogs(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondMappedError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, logs)
}

// EmailRecipients previews the audience a set of filters would reach.
func (h *Handlers) EmailRecipients(w http.ResponseWriter, r *http.Request) {
	if _, err := h.requireAdmin(r, emailRequirement); err != nil {
		respondMappedError(w, r, err)
		return
	}

	filters := models.RecipientFilters{
		State:  r.URL.Query().Get("state"),
		School: r.URL.Query().Get("school"),
	}
	if g := r.URL.Query().Get("grade"); g != "" {
		if grade, err := strconv.Atoi(g); err == nil {
			filters.Grade = &grade
		}
	}

	recipients, err := h.db.QueryRecipients(r.Context(), filters)
	if err != nil {
		respondMappedError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, models.PagedList[models.Recipient]{
		Items: recipients,
		Total: len(recipients),
		Page:  1,
		Limit: len(recipients),
	})
}
