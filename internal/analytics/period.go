// StemQuest - Student STEM Challenge Platform
// Copyright 2026 StemQuest Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stemquest/stemquest

// Package analytics holds the pure aggregation helpers shared by the
// analytics endpoints: period resolution, growth and retention math, and
// difficulty bucketing. All functions are deterministic and side-effect
// free; the SQL feeding them lives in internal/database.
package analytics

import (
	"math"
	"time"
)

// Recognized period tokens.
const (
	Period7d  = "7d"
	Period30d = "30d"
	Period90d = "90d"
	Period1y  = "1y"

	// DefaultPeriod is used for empty or unrecognized tokens.
	DefaultPeriod = Period30d
)

// periodDays maps period tokens to day counts.
var periodDays = map[string]int{
	Period7d:  7,
	Period30d: 30,
	Period90d: 90,
	Period1y:  365,
}

// Period is a resolved analytics window.
type Period struct {
	// Token is the normalized period token ("7d", "30d", "90d", "1y").
	Token string

	// Days is the window length.
	Days int

	// Start is now minus Days.
	Start time.Time

	// PrevStart is the start of the immediately preceding window of
	// equal length, used for growth comparisons.
	PrevStart time.Time
}

// ResolvePeriod normalizes a raw period token and anchors the window at
// now. Unrecognized or empty tokens fall back to DefaultPeriod rather
// than erroring, so dashboard links with stale parameters keep working.
func ResolvePeriod(raw string, now time.Time) Period {
	token := raw
	days, ok := periodDays[token]
	if !ok {
		token = DefaultPeriod
		days = periodDays[token]
	}
	start := now.AddDate(0, 0, -days)
	return Period{
		Token:     token,
		Days:      days,
		Start:     start,
		PrevStart: start.AddDate(0, 0, -days),
	}
}

// GrowthRate returns the percent change from previous to current.
// A zero previous count yields 100 when anything exists now and 0
// otherwise, so brand-new deployments show sane dashboard numbers.
func GrowthRate(current, previous int) float64 {
	if previous > 0 {
		return float64(current-previous) / float64(previous) * 100
	}
	if current > 0 {
		return 100
	}
	return 0
}

// RetentionRate returns active users as a percentage of total users,
// rounded to two decimal places. Zero total yields 0.
func RetentionRate(active, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(active)/float64(total)*10000) / 100
}

// Difficulty bucket labels.
const (
	DifficultyEasy   = "Easy"
	DifficultyMedium = "Medium"
	DifficultyHard   = "Hard"
)

// DifficultyBucket maps a 1-10 difficulty rating to its label:
// below 3 is Easy, below 7 is Medium, everything else is Hard.
func DifficultyBucket(rating int) string {
	switch {
	case rating < 3:
		return DifficultyEasy
	case rating < 7:
		return DifficultyMedium
	default:
		return DifficultyHard
	}
}

// AvgPerUser returns totalActions divided by activeUsers, rounded to two
// decimal places. Zero active users yields 0.
func AvgPerUser(totalActions, activeUsers int) float64 {
	if activeUsers == 0 {
		return 0
	}
	return math.Round(float64(totalActions)/float64(activeUsers)*100) / 100
}
