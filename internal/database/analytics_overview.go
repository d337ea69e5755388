// StemQuest - Student STEM Challenge Platform
// Copyright 2026 StemQuest Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stemquest/stemquest

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/stemquest/stemquest/internal/analytics"
	"github.com/stemquest/stemquest/internal/models"
)

// OverviewAnalytics computes the overview dashboard for one period:
// headline totals with growth against the preceding window, geographic
// and grade distributions, top challenges by submission volume, and a
// recent-activity feed.
func (db *DB) OverviewAnalytics(ctx context.Context, p analytics.Period) (*models.OverviewAnalytics, error) {
	started := time.Now()
	out := &models.OverviewAnalytics{
		GeographicDistribution: []models.StateCount{},
		GradeDistribution:      []models.GradeCount{},
		TopChallenges:          []models.TopChallenge{},
		RecentActivity:         []models.ActivityItem{},
	}

	if err := db.conn.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM challenges),
			(SELECT COUNT(*) FROM submissions)`).
		Scan(&out.Overview.TotalUsers, &out.Overview.TotalChallenges, &out.Overview.TotalSubmissions); err != nil {
		return nil, fmt.Errorf("overview totals: %w", err)
	}

	var prevNewUsers, subsCurrent, subsPrevious int
	if err := db.conn.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users WHERE created_at >= ?),
			(SELECT COUNT(*) FROM users WHERE created_at >= ? AND created_at < ?),
			(SELECT COUNT(*) FROM submissions WHERE submitted_at >= ?),
			(SELECT COUNT(*) FROM submissions WHERE submitted_at >= ? AND submitted_at < ?),
			(SELECT COUNT(DISTINCT user_id) FROM user_actions WHERE created_at >= ?)`,
		p.Start, p.PrevStart, p.Start,
		p.Start, p.PrevStart, p.Start,
		p.Start).
		Scan(&out.Overview.NewUsers, &prevNewUsers, &subsCurrent, &subsPrevious, &out.Overview.ActiveUsers); err != nil {
		return nil, fmt.Errorf("overview window counts: %w", err)
	}
	out.Overview.UserGrowthRate = analytics.GrowthRate(out.Overview.NewUsers, prevNewUsers)
	out.Overview.SubmissionGrowthRate = analytics.GrowthRate(subsCurrent, subsPrevious)

	rows, err := db.conn.QueryContext(ctx, `
		SELECT state, COUNT(*) FROM users
		WHERE state IS NOT NULL AND state != ''
		GROUP BY state ORDER BY COUNT(*) DESC`)
	if err != nil {
		return nil, fmt.Errorf("geographic distribution: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var sc models.StateCount
		if err := rows.Scan(&sc.State, &sc.Count); err != nil {
			return nil, fmt.Errorf("scan state count: %w", err)
		}
		out.GeographicDistribution = append(out.GeographicDistribution, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	gradeRows, err := db.conn.QueryContext(ctx, `
		SELECT grade, COUNT(*) FROM users
		WHERE grade IS NOT NULL
		GROUP BY grade ORDER BY grade`)
	if err != nil {
		return nil, fmt.Errorf("grade distribution: %w", err)
	}
	defer gradeRows.Close()
	for gradeRows.Next() {
		var gc models.GradeCount
		if err := gradeRows.Scan(&gc.Grade, &gc.Count); err != nil {
			return nil, fmt.Errorf("scan grade count: %w", err)
		}
		out.GradeDistribution = append(out.GradeDistribution, gc)
	}
	if err := gradeRows.Err(); err != nil {
		return nil, err
	}

	topRows, err := db.conn.QueryContext(ctx, `
		SELECT c.id, c.title, COUNT(s.id) AS submissions
		FROM challenges c
		JOIN submissions s ON s.challenge_id = c.id AND s.submitted_at >= ?
		GROUP BY c.id, c.title
		ORDER BY submissions DESC, c.title
		LIMIT 5`, p.Start)
	if err != nil {
		return nil, fmt.Errorf("top challenges: %w", err)
	}
	defer topRows.Close()
	for topRows.Next() {
		var tc models.TopChallenge
		if err := topRows.Scan(&tc.ID, &tc.Title, &tc.Submissions); err != nil {
			return nil, fmt.Errorf("scan top challenge: %w", err)
		}
		out.TopChallenges = append(out.TopChallenges, tc)
	}
	if err := topRows.Err(); err != nil {
		return nil, err
	}

	activity, err := db.recentActivity(ctx, 10)
	if err != nil {
		return nil, err
	}
	out.RecentActivity = activity

	out.Metadata = models.AnalyticsMetadata{
		Period:      p.Token,
		GeneratedAt: nowUTC(),
		QueryTimeMS: time.Since(started).Milliseconds(),
	}
	return out, nil
}

// recentActivity interleaves the latest signups and submissions into one
// feed, newest first.
func (db *DB) recentActivity(ctx context.Context, limit int) ([]models.ActivityItem, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT 'signup', username || ' joined', created_at FROM users
		UNION ALL
		SELECT 'submission', u.username || ' submitted to ' || c.title, s.submitted_at
		FROM submissions s
		JOIN users u ON u.id = s.user_id
		JOIN challenges c ON c.id = s.challenge_id
		ORDER BY 3 DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent activity: %w", err)
	}
	defer rows.Close()

	items := []models.ActivityItem{}
	for rows.Next() {
		var item models.ActivityItem
		var ts sql.NullTime
		if err := rows.Scan(&item.Type, &item.Description, &ts); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		item.Timestamp = ts.Time
		items = append(items, item)
	}
	return items, rows.Err()
}
