// StemQuest - Student STEM Challenge Platform
// Copyright 2026 StemQuest Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stemquest/stemquest

package models

import "time"

// AnalyticsMetadata accompanies every analytics payload.
type AnalyticsMetadata struct {
	Period      string    `json:"period"`
	GeneratedAt time.Time `json:"generatedAt"`
	QueryTimeMS int64     `json:"queryTimeMs,omitempty"`
}

// StateCount is a per-state tally.
type StateCount struct {
	State string `json:"state"`
	Count int    `json:"count"`
}

// GradeCount is a per-grade tally.
type GradeCount struct {
	Grade int `json:"grade"`
	Count int `json:"count"`
}

// OverviewTotals carries the headline numbers of the overview dashboard.
// Growth rates compare the current period against the immediately
// preceding period of equal length, as percentages.
type OverviewTotals struct {
	TotalUsers           int     `json:"totalUsers"`
	TotalChallenges      int     `json:"totalChallenges"`
	TotalSubmissions     int     `json:"totalSubmissions"`
	NewUsers             int     `json:"newUsers"`
	ActiveUsers          int     `json:"activeUsers"`
	UserGrowthRate       float64 `json:"userGrowthRate"`
	SubmissionGrowthRate float64 `json:"submissionGrowthRate"`
}

// TopChallenge is a challenge ranked by submission volume.
type TopChallenge struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Submissions int    `json:"submissions"`
}

// ActivityItem is one entry of the recent-activity feed.
type ActivityItem struct {
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

// OverviewAnalytics is the GET /api/analytics/overview payload.
type OverviewAnalytics struct {
	Overview               OverviewTotals    `json:"overview"`
	GeographicDistribution []StateCount      `json:"geographicDistribution"`
	GradeDistribution      []GradeCount      `json:"gradeDistribution"`
	TopChallenges          []TopChallenge    `json:"topChallenges"`
	RecentActivity         []ActivityItem    `json:"recentActivity"`
	Metadata               AnalyticsMetadata `json:"metadata"`
}

// DailyUserGrowth is one day of signups.
type DailyUserGrowth struct {
	Date     string `json:"date"`
	NewUsers int    `json:"newUsers"`
}

// EngagementSummary aggregates user actions over the period.
// RetentionRate is the share of all users active in the period, as a
// percentage rounded to two decimals.
type EngagementSummary struct {
	TotalActions      int     `json:"totalActions"`
	ActiveUsers       int     `json:"activeUsers"`
	AvgActionsPerUser float64 `json:"avgActionsPerUser"`
	RetentionRate     float64 `json:"retentionRate"`
}

// ActiveUser is a user ranked by action count within the period.
type ActiveUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Actions  int    `json:"actions"`
	Points   int    `json:"points"`
}

// ActionCount tallies one action type.
type ActionCount struct {
	Action string `json:"action"`
	Count  int    `json:"count"`
}

// HeatmapCell is activity volume for one (weekday, hour) slot.
// DayOfWeek is 0-6 with Sunday as 0.
type HeatmapCell struct {
	DayOfWeek int `json:"dayOfWeek"`
	Hour      int `json:"hour"`
	Count     int `json:"count"`
}

// UserAnalytics is the GET /api/analytics/users payload.
type UserAnalytics struct {
	UserGrowth      []DailyUserGrowth `json:"userGrowth"`
	Engagement      EngagementSummary `json:"engagement"`
	TopActiveUsers  []ActiveUser      `json:"topActiveUsers"`
	UserBehavior    []ActionCount     `json:"userBehavior"`
	ActivityHeatmap []HeatmapCell     `json:"activityHeatmap"`
	Metadata        AnalyticsMetadata `json:"metadata"`
}

// ChallengePerformance is per-challenge submission statistics.
type ChallengePerformance struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	Difficulty     int     `json:"difficulty"`
	Points         int     `json:"points"`
	Submissions    int     `json:"submissions"`
	AvgScore       float64 `json:"avgScore"`
	CompletionRate float64 `json:"completionRate"`
}

// CategoryPerformance aggregates submissions per category.
type CategoryPerformance struct {
	Category    string  `json:"category"`
	Challenges  int     `json:"challenges"`
	Submissions int     `json:"submissions"`
	AvgScore    float64 `json:"avgScore"`
}

// DifficultyBucketStats aggregates by difficulty bucket
// (Easy, Medium, Hard).
type DifficultyBucketStats struct {
	Difficulty  string  `json:"difficulty"`
	Challenges  int     `json:"challenges"`
	Submissions int     `json:"submissions"`
	AvgScore    float64 `json:"avgScore"`
}

// StatePerformance aggregates submissions per state.
type StatePerformance struct {
	State       string  `json:"state"`
	Submissions int     `json:"submissions"`
	AvgScore    float64 `json:"avgScore"`
}

// ChallengeAnalytics is the GET /api/analytics/challenges payload.
type ChallengeAnalytics struct {
	ChallengePerformance  []ChallengePerformance  `json:"challengePerformance"`
	CategoryPerformance   []CategoryPerformance   `json:"categoryPerformance"`
	DifficultyAnalysis    []DifficultyBucketStats `json:"difficultyAnalysis"`
	GeographicPerformance []StatePerformance      `json:"geographicPerformance"`
	Metadata              AnalyticsMetadata       `json:"metadata"`
}

// UserAction is one tracked platform event feeding the aggregator.
type UserAction struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Action    string    `json:"action"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// PageView is one tracked page visit.
type PageView struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId,omitempty"`
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"createdAt"`
}
