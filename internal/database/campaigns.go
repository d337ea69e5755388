// StemQuest - Student STEM Challenge Platform
// Copyright 2026 StemQuest Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stemquest/stemquest

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/stemquest/stemquest/internal/models"
)

// CreateEmailTemplate inserts a template.
func (db *DB) CreateEmailTemplate(ctx context.Context, req models.CreateEmailTemplateRequest) (*models.EmailTemplate, error) {
	now := nowUTC()
	t := &models.EmailTemplate{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Subject:   req.Subject,
		Body:      req.Body,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO email_templates (id, name, subject, body, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.Subject, t.Body, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert template: %w", err)
	}
	return t, nil
}

// GetEmailTemplateByID fetches one template. Returns ErrNotFound when absent.
func (db *DB) GetEmailTemplateByID(ctx context.Context, id string) (*models.EmailTemplate, error) {
	var t models.EmailTemplate
	err := db.conn.QueryRowContext(ctx, `
		SELECT id, name, subject, body, created_at, updated_at
		FROM email_templates WHERE id = ?`, id).
		Scan(&t.ID, &t.Name, &t.Subject, &t.Body, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get template: %w", err)
	}
	return &t, nil
}

// ListEmailTemplates returns all templates, newest first.
func (db *DB) ListEmailTemplates(ctx context.Context) ([]models.EmailTemplate, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, name, subject, body, created_at, updated_at
		FROM email_templates ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var templates []models.EmailTemplate
	for rows.Next() {
		var t models.EmailTemplate
		if err := rows.Scan(&t.ID, &t.Name, &t.Subject, &t.Body, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

// UpdateEmailTemplate applies the non-nil fields of req.
func (db *DB) UpdateEmailTemplate(ctx context.Context, id string, req models.UpdateEmailTemplateRequest) (*models.EmailTemplate, error) {
	var sets []string
	var args []interface{}

	set := func(column string, value interface{}) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}

	if req.Name != nil {
		set("name", *req.Name)
	}
	if req.Subject != nil {
		set("subject", *req.Subject)
	}
	if req.Body != nil {
		set("body", *req.Body)
	}
	if len(sets) == 0 {
		return db.GetEmailTemplateByID(ctx, id)
	}

	set("updated_at", nowUTC())
	args = append(args, id)

	res, err := db.conn.ExecContext(ctx,
		`UPDATE email_templates SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("update template: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return nil, ErrNotFound
	}
	return db.GetEmailTemplateByID(ctx, id)
}

// DeleteEmailTemplate removes a template. Returns ErrInUse when campaigns
// still reference it.
func (db *DB) DeleteEmailTemplate(ctx context.Context, id string) error {
	var inUse int
	if err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM email_campaigns WHERE template_id = ?`, id).Scan(&inUse); err != nil {
		return fmt.Errorf("count template usage: %w", err)
	}
	if inUse > 0 {
		return ErrInUse
	}

	res, err := db.conn.ExecContext(ctx, `DELETE FROM email_templates WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateEmailCampaign inserts a campaign referencing an existing template.
// Campaigns with a scheduled time start out scheduled, otherwise draft.
func (db *DB) CreateEmailCampaign(ctx context.Context, req models.CreateEmailCampaignRequest) (*models.EmailCampaign, error) {
	if _, err := db.GetEmailTemplateByID(ctx, req.TemplateID); err != nil {
		return nil, err
	}

	filtersJSON, err := json.Marshal(req.Filters)
	if err != nil {
		return nil, fmt.Errorf("marshal filters: %w", err)
	}

	now := nowUTC()
	status := models.CampaignStatusDraft
	if req.ScheduledAt != nil {
		status = models.CampaignStatusScheduled
	}
	c := &models.EmailCampaign{
		ID:          uuid.New().String(),
		Name:        req.Name,
		TemplateID:  req.TemplateID,
		Status:      status,
		Filters:     req.Filters,
		ScheduledAt: req.ScheduledAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO email_campaigns (id, name, template_id, status, filters,
			scheduled_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.TemplateID, c.Status, string(filtersJSON),
		c.ScheduledAt, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert campaign: %w", err)
	}
	return c, nil
}

const campaignColumns = `c.id, c.name, c.template_id, t.name, t.subject,
	c.status, c.filters, c.scheduled_at, c.sent_at, c.recipient_count,
	c.sent_count, c.created_at, c.updated_at`

// GetEmailCampaignByID fetches one campaign with its template name and
// subject joined in.
func (db *DB) GetEmailCampaignByID(ctx context.Context, id string) (*models.EmailCampaign, error) {
	row := db.conn.QueryRowContext(ctx, `
		SELECT `+campaignColumns+`
		FROM email_campaigns c
		LEFT JOIN email_templates t ON c.template_id = t.id
		WHERE c.id = ?`, id)
	c, err := scanCampaign(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

// ListEmailCampaigns returns all campaigns, newest first.
func (db *DB) ListEmailCampaigns(ctx context.Context) ([]models.EmailCampaign, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT `+campaignColumns+`
		FROM email_campaigns c
		LEFT JOIN email_templates t ON c.template_id = t.id
		ORDER BY c.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	defer rows.Close()

	var campaigns []models.EmailCampaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, *c)
	}
	return campaigns, rows.Err()
}

// UpdateEmailCampaign applies the non-nil fields of req. Only draft and
// scheduled campaigns accept updates; anything else returns
// ErrInvalidState.
func (db *DB) UpdateEmailCampaign(ctx context.Context, id string, req models.UpdateEmailCampaignRequest) (*models.EmailCampaign, error) {
	current, err := db.GetEmailCampaignByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status != models.CampaignStatusDraft && current.Status != models.CampaignStatusScheduled {
		return nil, ErrInvalidState
	}

	var sets []string
	var args []interface{}

	set := func(column string, value interface{}) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}

	if req.Name != nil {
		set("name", *req.Name)
	}
	if req.TemplateID != nil {
		if _, err := db.GetEmailTemplateByID(ctx, *req.TemplateID); err != nil {
			return nil, err
		}
		set("template_id", *req.TemplateID)
	}
	if req.Filters != nil {
		filtersJSON, err := json.Marshal(req.Filters)
		if err != nil {
			return nil, fmt.Errorf("marshal filters: %w", err)
		}
		set("filters", string(filtersJSON))
	}
	if req.ScheduledAt != nil {
		set("scheduled_at", *req.ScheduledAt)
		set("status", models.CampaignStatusScheduled)
	}

	if len(sets) == 0 {
		return current, nil
	}

	set("updated_at", nowUTC())
	args = append(args, id)

	if _, err := db.conn.ExecContext(ctx,
		`UPDATE email_campaigns SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...); err != nil {
		return nil, fmt.Errorf("update campaign: %w", err)
	}
	return db.GetEmailCampaignByID(ctx, id)
}

// DeleteEmailCampaign removes a campaign and its send logs.
func (db *DB) DeleteEmailCampaign(ctx context.Context, id string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.ExecContext(ctx, `DELETE FROM email_logs WHERE campaign_id = ?`, id); err != nil {
		return fmt.Errorf("delete campaign logs: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM email_campaigns WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete campaign: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

// QueryRecipients resolves a campaign's audience among students.
// SelectedUserIDs, when present, wins over the attribute filters.
func (db *DB) QueryRecipients(ctx context.Context, filters models.RecipientFilters) ([]models.Recipient, error) {
	query := `
		SELECT id, email, first_name, last_name, grade, state, school
		FROM users WHERE role = ?`
	args := []interface{}{models.RoleStudent}

	if len(filters.SelectedUserIDs) > 0 {
		placeholders := make([]string, len(filters.SelectedUserIDs))
		for i, id := range filters.SelectedUserIDs {
			placeholders[i] = "?"
			args = append(args, id)
		}
		query += ` AND id IN (` + strings.Join(placeholders, ", ") + `)`
	} else {
		if filters.Grade != nil {
			query += ` AND grade = ?`
			args = append(args, *filters.Grade)
		}
		if filters.State != "" {
			query += ` AND state = ?`
			args = append(args, filters.State)
		}
		if filters.School != "" {
			query += ` AND school = ?`
			args = append(args, filters.School)
		}
	}
	query += ` ORDER BY email`

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query recipients: %w", err)
	}
	defer rows.Close()

	var recipients []models.Recipient
	for rows.Next() {
		var r models.Recipient
		var grade sql.NullInt32
		var state, school sql.NullString
		if err := rows.Scan(&r.ID, &r.Email, &r.FirstName, &r.LastName, &grade, &state, &school); err != nil {
			return nil, fmt.Errorf("scan recipient: %w", err)
		}
		if grade.Valid {
			g := int(grade.Int32)
			r.Grade = &g
		}
		r.State = state.String
		r.School = school.String
		recipients = append(recipients, r)
	}
	return recipients, rows.Err()
}

// ErrNoRecipients is returned by SendCampaign when the resolved audience
// is empty.
var ErrNoRecipients = errors.New("campaign has no recipients")

// SendFunc delivers one message. A non-nil error marks that recipient's
// log entry failed without aborting the rest of the send.
type SendFunc func(ctx context.Context, to models.Recipient, subject, body string) error

// SendCampaign runs a full campaign send. Only draft and scheduled
// campaigns are sendable; anything else returns ErrInvalidState. The
// campaign is claimed by a transactional move to sending, so concurrent
// send requests for the same campaign race to a single winner. Per
// recipient outcomes are logged and the final status and counts are
// written in a closing transaction.
func (db *DB) SendCampaign(ctx context.Context, id string, send SendFunc) (*models.SendResult, error) {
	campaign, err := db.GetEmailCampaignByID(ctx, id)
	if err != nil {
		return nil, err
	}
	template, err := db.GetEmailTemplateByID(ctx, campaign.TemplateID)
	if err != nil {
		return nil, err
	}

	res, err := db.conn.ExecContext(ctx, `
		UPDATE email_campaigns SET status = ?, updated_at = ?
		WHERE id = ? AND status IN (?, ?)`,
		models.CampaignStatusSending, nowUTC(), id,
		models.CampaignStatusDraft, models.CampaignStatusScheduled)
	if err != nil {
		return nil, fmt.Errorf("claim campaign: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return nil, ErrInvalidState
	}

	recipients, err := db.QueryRecipients(ctx, campaign.Filters)
	if err != nil {
		_ = db.finishCampaign(ctx, id, models.CampaignStatusFailed, 0, 0)
		return nil, err
	}
	if len(recipients) == 0 {
		_ = db.finishCampaign(ctx, id, models.CampaignStatusFailed, 0, 0)
		return nil, ErrNoRecipients
	}

	result := &models.SendResult{
		CampaignID:     id,
		RecipientCount: len(recipients),
	}
	for _, r := range recipients {
		logEntry := models.EmailLog{
			ID:         uuid.New().String(),
			CampaignID: id,
			UserID:     r.ID,
			Email:      r.Email,
			Status:     models.EmailLogStatusSent,
			SentAt:     nowUTC(),
		}
		if sendErr := send(ctx, r, template.Subject, template.Body); sendErr != nil {
			logEntry.Status = models.EmailLogStatusFailed
			logEntry.Error = sendErr.Error()
			result.FailedCount++
		} else {
			result.SentCount++
		}
		if _, err := db.conn.ExecContext(ctx, `
			INSERT INTO email_logs (id, campaign_id, user_id, email, status, error, sent_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			logEntry.ID, logEntry.CampaignID, logEntry.UserID, logEntry.Email,
			logEntry.Status, logEntry.Error, logEntry.SentAt); err != nil {
			return nil, fmt.Errorf("insert email log: %w", err)
		}
	}

	finalStatus := models.CampaignStatusSent
	if result.SentCount == 0 {
		finalStatus = models.CampaignStatusFailed
	}
	if err := db.finishCampaign(ctx, id, finalStatus, result.RecipientCount, result.SentCount); err != nil {
		return nil, err
	}
	return result, nil
}

func (db *DB) finishCampaign(ctx context.Context, id, status string, recipients, sent int) error {
	now := nowUTC()
	_, err := db.conn.ExecContext(ctx, `
		UPDATE email_campaigns
		SET status = ?, recipient_count = ?, sent_count = ?, sent_at = ?, updated_at = ?
		WHERE id = ?`,
		status, recipients, sent, now, now, id)
	if err != nil {
		return fmt.Errorf("finish campaign: %w", err)
	}
	return nil
}

// DueScheduledCampaigns returns scheduled campaigns whose send time has
// arrived.
func (db *DB) DueScheduledCampaigns(ctx context.Context, now time.Time) ([]models.EmailCampaign, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT `+campaignColumns+`
		FROM email_campaigns c
		LEFT JOIN email_templates t ON c.template_id = t.id
		WHERE c.status = ? AND c.scheduled_at IS NOT NULL AND c.scheduled_at <= ?
		ORDER BY c.scheduled_at`,
		models.CampaignStatusScheduled, now.UTC())
	if err != nil {
		return nil, fmt.Errorf("due campaigns: %w", err)
	}
	defer rows.Close()

	var campaigns []models.EmailCampaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, *c)
	}
	return campaigns, rows.Err()
}

// ListEmailLogs returns the delivery log for one campaign.
func (db *DB) ListEmailLogs(ctx context.Context, campaignID string) ([]models.EmailLog, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, campaign_id, user_id, email, status, error, sent_at
		FROM email_logs WHERE campaign_id = ? ORDER BY sent_at`, campaignID)
	if err != nil {
		return nil, fmt.Errorf("list email logs: %w", err)
	}
	defer rows.Close()

	var logs []models.EmailLog
	for rows.Next() {
		var l models.EmailLog
		var errMsg sql.NullString
		if err := rows.Scan(&l.ID, &l.CampaignID, &l.UserID, &l.Email, &l.Status, &errMsg, &l.SentAt); err != nil {
			return nil, fmt.Errorf("scan email log: %w", err)
		}
		l.Error = errMsg.String
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

func scanCampaign(s rowScanner) (*models.EmailCampaign, error) {
	var c models.EmailCampaign
	var templateName, subject, filtersJSON sql.NullString
	var scheduledAt, sentAt sql.NullTime
	err := s.Scan(&c.ID, &c.Name, &c.TemplateID, &templateName, &subject,
		&c.Status, &filtersJSON, &scheduledAt, &sentAt,
		&c.RecipientCount, &c.SentCount, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan campaign: %w", err)
	}
	c.TemplateName = templateName.String
	c.Subject = subject.String
	if filtersJSON.Valid && filtersJSON.String != "" {
		if err := json.Unmarshal([]byte(filtersJSON.String), &c.Filters); err != nil {
			return nil, fmt.Errorf("unmarshal filters: %w", err)
		}
	}
	if scheduledAt.Valid {
		t := scheduledAt.Time
		c.ScheduledAt = &t
	}
	if sentAt.Valid {
		t := sentAt.Time
		c.SentAt = &t
	}
	return &c, nil
}
