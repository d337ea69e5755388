// StemQuest - Student STEM Challenge Platform
// Copyright 2026 StemQuest Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stemquest/stemquest

package analytics

import (
	"testing"
	"time"
)

func TestResolvePeriod(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		raw      string
		wantTok  string
		wantDays int
	}{
		{"7d", "7d", 7},
		{"30d", "30d", 30},
		{"90d", "90d", 90},
		{"1y", "1y", 365},
		{"", "30d", 30},
		{"14d", "30d", 30},
		{"forever", "30d", 30},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			p := ResolvePeriod(tt.raw, now)
			if p.Token != tt.wantTok {
				t.Errorf("Token = %q, want %q", p.Token, tt.wantTok)
			}
			if p.Days != tt.wantDays {
				t.Errorf("Days = %d, want %d", p.Days, tt.wantDays)
			}
			wantStart := now.AddDate(0, 0, -tt.wantDays)
			if !p.Start.Equal(wantStart) {
				t.Errorf("Start = %v, want %v", p.Start, wantStart)
			}
			wantPrev := wantStart.AddDate(0, 0, -tt.wantDays)
			if !p.PrevStart.Equal(wantPrev) {
				t.Errorf("PrevStart = %v, want %v", p.PrevStart, wantPrev)
			}
		})
	}
}

func TestGrowthRate(t *testing.T) {
	tests := []struct {
		name     string
		current  int
		previous int
		want     float64
	}{
		{"both zero", 0, 0, 0},
		{"from zero to some", 5, 0, 100},
		{"fifty percent up", 15, 10, 50},
		{"doubled", 20, 10, 100},
		{"halved", 5, 10, -50},
		{"flat", 10, 10, 0},
		{"dropped to zero", 0, 10, -100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GrowthRate(tt.current, tt.previous); got != tt.want {
				t.Errorf("GrowthRate(%d, %d) = %v, want %v", tt.current, tt.previous, got, tt.want)
			}
		})
	}
}

func TestRetentionRate(t *testing.T) {
	tests := []struct {
		name   string
		active int
		total  int
		want   float64
	}{
		{"zero total", 0, 0, 0},
		{"none active", 0, 50, 0},
		{"all active", 50, 50, 100},
		{"third active", 1, 3, 33.33},
		{"two thirds", 2, 3, 66.67},
		{"small fraction", 1, 8, 12.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RetentionRate(tt.active, tt.total); got != tt.want {
				t.Errorf("RetentionRate(%d, %d) = %v, want %v", tt.active, tt.total, got, tt.want)
			}
		})
	}
}

func TestDifficultyBucket(t *testing.T) {
	tests := []struct {
		rating int
		want   string
	}{
		{1, DifficultyEasy},
		{2, DifficultyEasy},
		{3, DifficultyMedium},
		{6, DifficultyMedium},
		{7, DifficultyHard},
		{10, DifficultyHard},
	}

	for _, tt := range tests {
		if got := DifficultyBucket(tt.rating); got != tt.want {
			t.Errorf("DifficultyBucket(%d) = %q, want %q", tt.rating, got, tt.want)
		}
	}
}

func TestAvgPerUser(t *testing.T) {
	if got := AvgPerUser(0, 0); got != 0 {
		t.Errorf("AvgPerUser(0, 0) = %v, want 0", got)
	}
	if got := AvgPerUser(10, 4); got != 2.5 {
		t.Errorf("AvgPerUser(10, 4) = %v, want 2.5", got)
	}
	if got := AvgPerUser(10, 3); got != 3.33 {
		t.Errorf("AvgPerUser(10, 3) = %v, want 3.33", got)
	}
}
