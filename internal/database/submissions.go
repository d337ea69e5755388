// StemQuest - Student STEM Challenge Platform
// Copyright 2026 StemQuest Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stemquest/stemquest

package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/stemquest/stemquest/internal/models"
)

// CreateSubmission records a student's answer.
//
// Preconditions checked here, in order:
//   - the challenge exists (ErrNotFound)
//   - the challenge is active and now falls inside its date window
//     (ErrInvalidState)
//
// Duplicates are rejected by the unique (user_id, challenge_id) index and
// surface as ErrDuplicate. Under concurrent submits for the same pair,
// exactly one insert wins; there is no check-then-insert race.
func (db *DB) CreateSubmission(ctx context.Context, userID string, req models.CreateSubmissionRequest) (*models.Submission, error) {
	challenge, err := db.GetChallengeByID(ctx, req.ChallengeID)
	if err != nil {
		return nil, err
	}

	now := nowUTC()
	if !challenge.IsActive || now.Before(challenge.StartDate) || now.After(challenge.EndDate) {
		return nil, ErrInvalidState
	}

	sub := &models.Submission{
		ID:          uuid.New().String(),
		UserID:      userID,
		ChallengeID: req.ChallengeID,
		Answer:      req.Answer,
		Score:       0,
		SubmittedAt: now,
	}

	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO submissions (id, user_id, challenge_id, answer, score, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		sub.ID, sub.UserID, sub.ChallengeID, sub.Answer, sub.Score, sub.SubmittedAt)
	if err != nil {
		if isConstraintViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("insert submission: %w", err)
	}
	return sub, nil
}

// SubmissionFilter narrows ListSubmissions.
type SubmissionFilter struct {
	UserID      string
	ChallengeID string
	Since       *time.Time
}

// ListSubmissions returns submissions newest first, joined with the
// submitter's username and the challenge title.
func (db *DB) ListSubmissions(ctx context.Context, filter SubmissionFilter) ([]models.Submission, error) {
	var conds []string
	var args []interface{}

	if filter.UserID != "" {
		conds = append(conds, "s.user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.ChallengeID != "" {
		conds = append(conds, "s.challenge_id = ?")
		args = append(args, filter.ChallengeID)
	}
	if filter.Since != nil {
		conds = append(conds, "s.submitted_at >= ?")
		args = append(args, filter.Since.UTC())
	}

	query := `
		SELECT s.id, s.user_id, s.challenge_id, s.answer, s.score, s.submitted_at,
			u.username, c.title
		FROM submissions s
		LEFT JOIN users u ON u.id = s.user_id
		LEFT JOIN challenges c ON c.id = s.challenge_id`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY s.submitted_at DESC"

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	var subs []models.Submission
	for rows.Next() {
		var s models.Submission
		var username, title *string
		if err := rows.Scan(&s.ID, &s.UserID, &s.ChallengeID, &s.Answer,
			&s.Score, &s.SubmittedAt, &username, &title); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		if username != nil {
			s.Username = *username
		}
		if title != nil {
			s.ChallengeTitle = *title
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

// ScoreSubmission grades a submission and credits the points delta to
// the student, atomically. Returns ErrNotFound for unknown ids.
func (db *DB) ScoreSubmission(ctx context.Context, id string, score int) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin score submission: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var userID string
	var previous int
	err = tx.QueryRowContext(ctx,
		`SELECT user_id, score FROM submissions WHERE id = ?`, id).Scan(&userID, &previous)
	if err != nil {
		return ErrNotFound
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE submissions SET score = ? WHERE id = ?`, score, id); err != nil {
		return fmt.Errorf("update submission score: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET points = points + ?, updated_at = ? WHERE id = ?`,
		score-previous, nowUTC(), userID); err != nil {
		return fmt.Errorf("credit points: %w", err)
	}
	return tx.Commit()
}
