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

	"github.com/google/uuid"

	"github.com/stemquest/stemquest/internal/models"
)

const challengeColumns = `c.id, c.title, c.description, c.difficulty, c.category_id,
	cat.name, c.grade, c.points, c.start_date, c.end_date, c.is_active,
	c.created_at, c.updated_at`

const challengeFrom = ` FROM challenges c LEFT JOIN categories cat ON cat.id = c.category_id`

// CreateChallenge inserts a new challenge. The category must exist.
func (db *DB) CreateChallenge(ctx context.Context, req models.CreateChallengeRequest) (*models.Challenge, error) {
	if _, err := db.GetCategoryByID(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	id := uuid.New().String()
	now := nowUTC()
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO challenges (id, title, description, difficulty, category_id,
			grade, points, start_date, end_date, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, req.Title, req.Description, req.Difficulty, req.CategoryID,
		req.Grade, req.Points, req.StartDate.UTC(), req.EndDate.UTC(), isActive, now, now)
	if err != nil {
		return nil, fmt.Errorf("insert challenge: %w", err)
	}
	return db.GetChallengeByID(ctx, id)
}

// GetChallengeByID fetches one challenge with its category name.
// Returns ErrNotFound when absent.
func (db *DB) GetChallengeByID(ctx context.Context, id string) (*models.Challenge, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+challengeColumns+challengeFrom+` WHERE c.id = ?`, id)
	c, err := scanChallenge(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

// ChallengeFilter narrows ListChallenges.
type ChallengeFilter struct {
	CategoryID string
	Grade      *int
	ActiveOnly bool
}

// ListChallenges returns challenges newest first.
func (db *DB) ListChallenges(ctx context.Context, filter ChallengeFilter) ([]models.Challenge, error) {
	var conds []string
	var args []interface{}

	if filter.CategoryID != "" {
		conds = append(conds, "c.category_id = ?")
		args = append(args, filter.CategoryID)
	}
	if filter.Grade != nil {
		conds = append(conds, "c.grade = ?")
		args = append(args, *filter.Grade)
	}
	if filter.ActiveOnly {
		conds = append(conds, "c.is_active")
	}

	query := `SELECT ` + challengeColumns + challengeFrom
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY c.created_at DESC"

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list challenges: %w", err)
	}
	defer rows.Close()

	var challenges []models.Challenge
	for rows.Next() {
		c, err := scanChallenge(rows)
		if err != nil {
			return nil, err
		}
		challenges = append(challenges, *c)
	}
	return challenges, rows.Err()
}

// UpdateChallenge applies the non-nil fields of req.
// Returns ErrNotFound for unknown ids.
func (db *DB) UpdateChallenge(ctx context.Context, id string, req models.UpdateChallengeRequest) (*models.Challenge, error) {
	var sets []string
	var args []interface{}

	set := func(column string, value interface{}) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}

	if req.Title != nil {
		set("title", *req.Title)
	}
	if req.Description != nil {
		set("description", *req.Description)
	}
	if req.Difficulty != nil {
		set("difficulty", *req.Difficulty)
	}
	if req.CategoryID != nil {
		if _, err := db.GetCategoryByID(ctx, *req.CategoryID); err != nil {
			return nil, err
		}
		set("category_id", *req.CategoryID)
	}
	if req.Grade != nil {
		set("grade", *req.Grade)
	}
	if req.Points != nil {
		set("points", *req.Points)
	}
	if req.StartDate != nil {
		set("start_date", req.StartDate.UTC())
	}
	if req.EndDate != nil {
		set("end_date", req.EndDate.UTC())
	}
	if req.IsActive != nil {
		set("is_active", *req.IsActive)
	}

	if len(sets) == 0 {
		return db.GetChallengeByID(ctx, id)
	}

	set("updated_at", nowUTC())
	args = append(args, id)

	res, err := db.conn.ExecContext(ctx,
		`UPDATE challenges SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("update challenge: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return nil, ErrNotFound
	}
	return db.GetChallengeByID(ctx, id)
}

// DeleteChallenge removes a challenge and its submissions.
// Returns ErrNotFound for unknown ids.
func (db *DB) DeleteChallenge(ctx context.Context, id string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete challenge: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `DELETE FROM challenges WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete challenge: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM submissions WHERE challenge_id = ?`, id); err != nil {
		return fmt.Errorf("delete challenge submissions: %w", err)
	}
	return tx.Commit()
}

func scanChallenge(s rowScanner) (*models.Challenge, error) {
	var c models.Challenge
	var categoryName sql.NullString
	var grade sql.NullInt32

	err := s.Scan(&c.ID, &c.Title, &c.Description, &c.Difficulty, &c.CategoryID,
		&categoryName, &grade, &c.Points, &c.StartDate, &c.EndDate, &c.IsActive,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan challenge: %w", err)
	}

	c.CategoryName = categoryName.String
	if grade.Valid {
		g := int(grade.Int32)
		c.Grade = &g
	}
	return &c, nil
}
