// StemQuest - Student STEM Challenge Platform
// Copyright 2026 StemQuest Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stemquest/stemquest

package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/stemquest/stemquest/internal/models"
)

// RecordUserAction stores one behavior event for analytics.
func (db *DB) RecordUserAction(ctx context.Context, action models.UserAction) error {
	if action.ID == "" {
		action.ID = uuid.New().String()
	}
	if action.CreatedAt.IsZero() {
		action.CreatedAt = nowUTC()
	}
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO user_actions (id, user_id, action, detail, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		action.ID, action.UserID, action.Action, action.Detail, action.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert user action: %w", err)
	}
	return nil
}

// RecordPageView stores one page view. UserID may be empty for anonymous
// traffic.
func (db *DB) RecordPageView(ctx context.Context, view models.PageView) error {
	if view.ID == "" {
		view.ID = uuid.New().String()
	}
	if view.CreatedAt.IsZero() {
		view.CreatedAt = nowUTC()
	}
	var userID interface{}
	if view.UserID != "" {
		userID = view.UserID
	}
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO page_views (id, user_id, path, created_at)
		VALUES (?, ?, ?, ?)`,
		view.ID, userID, view.Path, view.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert page view: %w", err)
	}
	return nil
}
