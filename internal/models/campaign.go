// StemQuest - Student STEM Challenge Platform
// Copyright 2026 StemQuest Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stemquest/stemquest

package models

import "time"

// Email campaign statuses. A campaign moves draft -> sending -> sent;
// a send that fails partway lands in failed.
const (
	CampaignStatusDraft     = "draft"
	CampaignStatusScheduled = "scheduled"
	CampaignStatusSending   = "sending"
	CampaignStatusSent      = "sent"
	CampaignStatusFailed    = "failed"
)

// Email log statuses.
const (
	EmailLogStatusSent   = "sent"
	EmailLogStatusFailed = "failed"
)

// EmailTemplate is a reusable subject/body pair for campaigns.
type EmailTemplate struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateEmailTemplateRequest is the payload for template creation.
type CreateEmailTemplateRequest struct {
	Name    string `json:"name" validate:"required,max=100"`
	Subject string `json:"subject" validate:"required,max=200"`
	Body    string `json:"body" validate:"required"`
}

// UpdateEmailTemplateRequest carries partial template updates.
type UpdateEmailTemplateRequest struct {
	Name    *string `json:"name" validate:"omitempty,max=100"`
	Subject *string `json:"subject" validate:"omitempty,max=200"`
	Body    *string `json:"body"`
}

// RecipientFilters narrows a campaign's audience among students.
// Empty fields match everyone; SelectedUserIDs, when present, wins over
// the attribute filters.
type RecipientFilters struct {
	Grade           *int     `json:"grade,omitempty"`
	State           string   `json:"state,omitempty"`
	School          string   `json:"school,omitempty"`
	SelectedUserIDs []string `json:"selectedUserIds,omitempty"`
}

// EmailCampaign is a bulk mailing defined by a template and recipient
// filters. RecipientCount and SentCount are populated by the send.
type EmailCampaign struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	TemplateID     string           `json:"templateId"`
	TemplateName   string           `json:"templateName,omitempty"`
	Subject        string           `json:"subject,omitempty"`
	Status         string           `json:"status"`
	Filters        RecipientFilters `json:"filters"`
	ScheduledAt    *time.Time       `json:"scheduledAt,omitempty"`
	SentAt         *time.Time       `json:"sentAt,omitempty"`
	RecipientCount int              `json:"recipientCount"`
	SentCount      int              `json:"sentCount"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

// CreateEmailCampaignRequest is the payload for campaign creation.
type CreateEmailCampaignRequest struct {
	Name        string           `json:"name" validate:"required,max=100"`
	TemplateID  string           `json:"templateId" validate:"required,uuid"`
	Filters     RecipientFilters `json:"filters"`
	ScheduledAt *time.Time       `json:"scheduledAt"`
}

// UpdateEmailCampaignRequest carries partial campaign updates.
// Only draft campaigns accept updates.
type UpdateEmailCampaignRequest struct {
	Name        *string           `json:"name" validate:"omitempty,max=100"`
	TemplateID  *string           `json:"templateId" validate:"omitempty,uuid"`
	Filters     *RecipientFilters `json:"filters"`
	ScheduledAt *time.Time        `json:"scheduledAt"`
}

// EmailLog records one delivery attempt within a campaign send.
type EmailLog struct {
	ID         string    `json:"id"`
	CampaignID string    `json:"campaignId"`
	UserID     string    `json:"userId"`
	Email      string    `json:"email"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
	SentAt     time.Time `json:"sentAt"`
}

// Recipient is one addressable student returned by recipient queries.
type Recipient struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Grade     *int   `json:"grade,omitempty"`
	State     string `json:"state,omitempty"`
	School    string `json:"school,omitempty"`
}

// SendResult summarizes a completed campaign send.
type SendResult struct {
	CampaignID     string `json:"campaignId"`
	RecipientCount int    `json:"recipientCount"`
	SentCount      int    `json:"sentCount"`
	FailedCount    int    `json:"failedCount"`
}
