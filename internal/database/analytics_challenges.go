// StemQuest - Student STEM Challenge Platform
// Copyright 2026 StemQuest Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stemquest/stemquest

package database

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/stemquest/stemquest/internal/analytics"
	"github.com/stemquest/stemquest/internal/models"
)

// ChallengeAnalytics computes the challenge dashboard for one period:
// per-challenge performance, category and difficulty-bucket aggregates,
// and submission quality by state. Only submissions inside the period
// are counted.
func (db *DB) ChallengeAnalytics(ctx context.Context, p analytics.Period) (*models.ChallengeAnalytics, error) {
	started := time.Now()
	out := &models.ChallengeAnalytics{
		ChallengePerformance:  []models.ChallengePerformance{},
		CategoryPerformance:   []models.CategoryPerformance{},
		DifficultyAnalysis:    []models.DifficultyBucketStats{},
		GeographicPerformance: []models.StatePerformance{},
	}

	var totalStudents int
	if err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE role = ?`, models.RoleStudent).
		Scan(&totalStudents); err != nil {
		return nil, fmt.Errorf("student count: %w", err)
	}

	perfRows, err := db.conn.QueryContext(ctx, `
		SELECT c.id, c.title, c.difficulty, c.points,
			COUNT(s.id) AS submissions,
			COALESCE(AVG(s.score), 0) AS avg_score
		FROM challenges c
		LEFT JOIN submissions s ON s.challenge_id = c.id AND s.submitted_at >= ?
		GROUP BY c.id, c.title, c.difficulty, c.points
		ORDER BY submissions DESC, c.title`, p.Start)
	if err != nil {
		return nil, fmt.Errorf("challenge performance: %w", err)
	}
	defer perfRows.Close()

	// Difficulty buckets are aggregated in Go from the per-challenge rows
	// so the bucketing rule lives in exactly one place.
	type bucketAgg struct {
		challenges  int
		submissions int
		scoreSum    float64
	}
	buckets := map[string]*bucketAgg{}

	for perfRows.Next() {
		var cp models.ChallengePerformance
		if err := perfRows.Scan(&cp.ID, &cp.Title, &cp.Difficulty, &cp.Points,
			&cp.Submissions, &cp.AvgScore); err != nil {
			return nil, fmt.Errorf("scan challenge performance: %w", err)
		}
		cp.AvgScore = round2(cp.AvgScore)
		if totalStudents > 0 {
			cp.CompletionRate = round2(float64(cp.Submissions) / float64(totalStudents) * 100)
		}
		out.ChallengePerformance = append(out.ChallengePerformance, cp)

		label := analytics.DifficultyBucket(cp.Difficulty)
		agg := buckets[label]
		if agg == nil {
			agg = &bucketAgg{}
			buckets[label] = agg
		}
		agg.challenges++
		agg.submissions += cp.Submissions
		agg.scoreSum += cp.AvgScore * float64(cp.Submissions)
	}
	if err := perfRows.Err(); err != nil {
		return nil, err
	}

	for _, label := range []string{analytics.DifficultyEasy, analytics.DifficultyMedium, analytics.DifficultyHard} {
		agg, ok := buckets[label]
		if !ok {
			continue
		}
		stats := models.DifficultyBucketStats{
			Difficulty:  label,
			Challenges:  agg.challenges,
			Submissions: agg.submissions,
		}
		if agg.submissions > 0 {
			stats.AvgScore = round2(agg.scoreSum / float64(agg.submissions))
		}
		out.DifficultyAnalysis = append(out.DifficultyAnalysis, stats)
	}

	catRows, err := db.conn.QueryContext(ctx, `
		SELECT cat.name,
			COUNT(DISTINCT c.id) AS challenges,
			COUNT(s.id) AS submissions,
			COALESCE(AVG(s.score), 0) AS avg_score
		FROM categories cat
		JOIN challenges c ON c.category_id = cat.id
		LEFT JOIN submissions s ON s.challenge_id = c.id AND s.submitted_at >= ?
		GROUP BY cat.name
		ORDER BY submissions DESC, cat.name`, p.Start)
	if err != nil {
		return nil, fmt.Errorf("category performance: %w", err)
	}
	defer catRows.Close()
	for catRows.Next() {
		var cp models.CategoryPerformance
		if err := catRows.Scan(&cp.Category, &cp.Challenges, &cp.Submissions, &cp.AvgScore); err != nil {
			return nil, fmt.Errorf("scan category performance: %w", err)
		}
		cp.AvgScore = round2(cp.AvgScore)
		out.CategoryPerformance = append(out.CategoryPerformance, cp)
	}
	if err := catRows.Err(); err != nil {
		return nil, err
	}

	geoRows, err := db.conn.QueryContext(ctx, `
		SELECT u.state, COUNT(s.id) AS submissions,
			COALESCE(AVG(s.score), 0) AS avg_score
		FROM submissions s
		JOIN users u ON u.id = s.user_id
		WHERE s.submitted_at >= ? AND u.state IS NOT NULL AND u.state != ''
		GROUP BY u.state
		ORDER BY submissions DESC, u.state`, p.Start)
	if err != nil {
		return nil, fmt.Errorf("geographic performance: %w", err)
	}
	defer geoRows.Close()
	for geoRows.Next() {
		var sp models.StatePerformance
		if err := geoRows.Scan(&sp.State, &sp.Submissions, &sp.AvgScore); err != nil {
			return nil, fmt.Errorf("scan state performance: %w", err)
		}
		sp.AvgScore = round2(sp.AvgScore)
		out.GeographicPerformance = append(out.GeographicPerformance, sp)
	}
	if err := geoRows.Err(); err != nil {
		return nil, err
	}

	out.Metadata = models.AnalyticsMetadata{
		Period:      p.Token,
		GeneratedAt: nowUTC(),
		QueryTimeMS: time.Since(started).Milliseconds(),
	}
	return out, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
