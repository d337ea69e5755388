// StemQuest - Student STEM Challenge Platform
// Copyright 2026 StemQuest Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stemquest/stemquest

package database

import (
	"context"
	"fmt"
)

// schemaStatements creates every table and index. Statements are
// idempotent; the schema is applied on every startup.
//
// The unique index on submissions(user_id, challenge_id) is load-bearing:
// duplicate submissions are rejected by the engine, not by a
// check-then-insert in application code, so concurrent submits cannot
// both land.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id VARCHAR PRIMARY KEY,
		email VARCHAR NOT NULL,
		username VARCHAR NOT NULL,
		password VARCHAR NOT NULL,
		first_name VARCHAR NOT NULL,
		last_name VARCHAR NOT NULL,
		role VARCHAR NOT NULL DEFAULT 'student',
		permissions VARCHAR NOT NULL DEFAULT '[]',
		is_admin BOOLEAN NOT NULL DEFAULT false,
		points INTEGER NOT NULL DEFAULT 0,
		level INTEGER NOT NULL DEFAULT 1,
		grade INTEGER,
		state VARCHAR,
		school VARCHAR,
		parent_email VARCHAR,
		parent_approved BOOLEAN NOT NULL DEFAULT false,
		last_login_at TIMESTAMP,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(email)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username ON users(username)`,

	`CREATE TABLE IF NOT EXISTS categories (
		id VARCHAR PRIMARY KEY,
		name VARCHAR NOT NULL,
		description VARCHAR,
		color VARCHAR,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_name ON categories(name)`,

	`CREATE TABLE IF NOT EXISTS challenges (
		id VARCHAR PRIMARY KEY,
		title VARCHAR NOT NULL,
		description VARCHAR NOT NULL,
		difficulty INTEGER NOT NULL,
		category_id VARCHAR NOT NULL,
		grade INTEGER,
		points INTEGER NOT NULL,
		start_date TIMESTAMP NOT NULL,
		end_date TIMESTAMP NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT true,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_challenges_category ON challenges(category_id)`,

	`CREATE TABLE IF NOT EXISTS submissions (
		id VARCHAR PRIMARY KEY,
		user_id VARCHAR NOT NULL,
		challenge_id VARCHAR NOT NULL,
		answer VARCHAR NOT NULL,
		score INTEGER NOT NULL DEFAULT 0,
		submitted_at TIMESTAMP NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_submissions_user_challenge
		ON submissions(user_id, challenge_id)`,
	`CREATE INDEX IF NOT EXISTS idx_submissions_challenge ON submissions(challenge_id)`,
	`CREATE INDEX IF NOT EXISTS idx_submissions_submitted_at ON submissions(submitted_at)`,

	`CREATE TABLE IF NOT EXISTS prizes (
		id VARCHAR PRIMARY KEY,
		name VARCHAR NOT NULL,
		description VARCHAR,
		points_cost INTEGER NOT NULL,
		image_url VARCHAR,
		quantity INTEGER NOT NULL DEFAULT 0,
		is_active BOOLEAN NOT NULL DEFAULT true,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS advisors (
		id VARCHAR PRIMARY KEY,
		name VARCHAR NOT NULL,
		title VARCHAR,
		bio VARCHAR,
		image_url VARCHAR,
		email VARCHAR,
		created_at TIMESTAMP NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS email_templates (
		id VARCHAR PRIMARY KEY,
		name VARCHAR NOT NULL,
		subject VARCHAR NOT NULL,
		body VARCHAR NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS email_campaigns (
		id VARCHAR PRIMARY KEY,
		name VARCHAR NOT NULL,
		template_id VARCHAR NOT NULL,
		status VARCHAR NOT NULL DEFAULT 'draft',
		filters VARCHAR NOT NULL DEFAULT '{}',
		scheduled_at TIMESTAMP,
		sent_at TIMESTAMP,
		recipient_count INTEGER NOT NULL DEFAULT 0,
		sent_count INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_campaigns_status ON email_campaigns(status)`,

	`CREATE TABLE IF NOT EXISTS email_logs (
		id VARCHAR PRIMARY KEY,
		campaign_id VARCHAR NOT NULL,
		user_id VARCHAR NOT NULL,
		email VARCHAR NOT NULL,
		status VARCHAR NOT NULL,
		error VARCHAR,
		sent_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_email_logs_campaign ON email_logs(campaign_id)`,

	`CREATE TABLE IF NOT EXISTS user_actions (
		id VARCHAR PRIMARY KEY,
		user_id VARCHAR NOT NULL,
		action VARCHAR NOT NULL,
		detail VARCHAR,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_user_actions_user ON user_actions(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_user_actions_created ON user_actions(created_at)`,

	`CREATE TABLE IF NOT EXISTS page_views (
		id VARCHAR PRIMARY KEY,
		user_id VARCHAR,
		path VARCHAR NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_page_views_created ON page_views(created_at)`,
}

// createSchema applies all schema statements.
func (db *DB) createSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	return nil
}
