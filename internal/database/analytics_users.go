// StemQuest - Student STEM Challenge Platform
// Copyright 2026 StemQuest Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stemquest/stemquest

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/stemquest/stemquest/internal/analytics"
	"github.com/stemquest/stemquest/internal/models"
)

// UserAnalytics computes the user dashboard for one period: daily signup
// growth, engagement summary with retention, the most active users, the
// action-type breakdown, and a weekday/hour activity heatmap.
func (db *DB) UserAnalytics(ctx context.Context, p analytics.Period) (*models.UserAnalytics, error) {
	started := time.Now()
	out := &models.UserAnalytics{
		UserGrowth:      []models.DailyUserGrowth{},
		TopActiveUsers:  []models.ActiveUser{},
		UserBehavior:    []models.ActionCount{},
		ActivityHeatmap: []models.HeatmapCell{},
	}

	growthRows, err := db.conn.QueryContext(ctx, `
		SELECT strftime(created_at, '%Y-%m-%d') AS day, COUNT(*)
		FROM users WHERE created_at >= ?
		GROUP BY day ORDER BY day`, p.Start)
	if err != nil {
		return nil, fmt.Errorf("user growth: %w", err)
	}
	defer growthRows.Close()
	for growthRows.Next() {
		var g models.DailyUserGrowth
		if err := growthRows.Scan(&g.Date, &g.NewUsers); err != nil {
			return nil, fmt.Errorf("scan user growth: %w", err)
		}
		out.UserGrowth = append(out.UserGrowth, g)
	}
	if err := growthRows.Err(); err != nil {
		return nil, err
	}

	var totalUsers int
	if err := db.conn.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM user_actions WHERE created_at >= ?),
			(SELECT COUNT(DISTINCT user_id) FROM user_actions WHERE created_at >= ?),
			(SELECT COUNT(*) FROM users)`,
		p.Start, p.Start).
		Scan(&out.Engagement.TotalActions, &out.Engagement.ActiveUsers, &totalUsers); err != nil {
		return nil, fmt.Errorf("engagement summary: %w", err)
	}
	out.Engagement.AvgActionsPerUser = analytics.AvgPerUser(out.Engagement.TotalActions, out.Engagement.ActiveUsers)
	out.Engagement.RetentionRate = analytics.RetentionRate(out.Engagement.ActiveUsers, totalUsers)

	topRows, err := db.conn.QueryContext(ctx, `
		SELECT u.id, u.username, COUNT(a.id) AS actions, u.points
		FROM users u
		JOIN user_actions a ON a.user_id = u.id AND a.created_at >= ?
		GROUP BY u.id, u.username, u.points
		ORDER BY actions DESC, u.username
		LIMIT 10`, p.Start)
	if err != nil {
		return nil, fmt.Errorf("top active users: %w", err)
	}
	defer topRows.Close()
	for topRows.Next() {
		var a models.ActiveUser
		if err := topRows.Scan(&a.ID, &a.Username, &a.Actions, &a.Points); err != nil {
			return nil, fmt.Errorf("scan active user: %w", err)
		}
		out.TopActiveUsers = append(out.TopActiveUsers, a)
	}
	if err := topRows.Err(); err != nil {
		return nil, err
	}

	behaviorRows, err := db.conn.QueryContext(ctx, `
		SELECT action, COUNT(*) FROM user_actions
		WHERE created_at >= ?
		GROUP BY action ORDER BY COUNT(*) DESC`, p.Start)
	if err != nil {
		return nil, fmt.Errorf("user behavior: %w", err)
	}
	defer behaviorRows.Close()
	for behaviorRows.Next() {
		var ac models.ActionCount
		if err := behaviorRows.Scan(&ac.Action, &ac.Count); err != nil {
			return nil, fmt.Errorf("scan action count: %w", err)
		}
		out.UserBehavior = append(out.UserBehavior, ac)
	}
	if err := behaviorRows.Err(); err != nil {
		return nil, err
	}

	// dayofweek() in DuckDB is 0-6 with Sunday as 0, matching the
	// HeatmapCell contract.
	heatRows, err := db.conn.QueryContext(ctx, `
		SELECT dayofweek(created_at) AS dow, hour(created_at) AS hr, COUNT(*)
		FROM user_actions WHERE created_at >= ?
		GROUP BY dow, hr ORDER BY dow, hr`, p.Start)
	if err != nil {
		return nil, fmt.Errorf("activity heatmap: %w", err)
	}
	defer heatRows.Close()
	for heatRows.Next() {
		var h models.HeatmapCell
		if err := heatRows.Scan(&h.DayOfWeek, &h.Hour, &h.Count); err != nil {
			return nil, fmt.Errorf("scan heatmap cell: %w", err)
		}
		out.ActivityHeatmap = append(out.ActivityHeatmap, h)
	}
	if err := heatRows.Err(); err != nil {
		return nil, err
	}

	out.Metadata = models.AnalyticsMetadata{
		Period:      p.Token,
		GeneratedAt: nowUTC(),
		QueryTimeMS: time.Since(started).Milliseconds(),
	}
	return out, nil
}
