// StemQuest - Student STEM Challenge Platform
// Copyright 2026 StemQuest Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stemquest/stemquest

package database

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stemquest/stemquest/internal/models"
)

func TestCreateSubmission(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	student := seedStudent(t, db, 1)
	challenge := seedChallenge(t, db)

	sub, err := db.CreateSubmission(ctx, student.ID, models.CreateSubmissionRequest{
		ChallengeID: challenge.ID,
		Answer:      "42",
	})
	if err != nil {
		t.Fatalf("CreateSubmission: %v", err)
	}
	if sub.Score != 0 {
		t.Errorf("initial score = %d, want 0", sub.Score)
	}

	// A second answer for the same pair is rejected regardless of content.
	_, err = db.CreateSubmission(ctx, student.ID, models.CreateSubmissionRequest{
		ChallengeID: challenge.ID,
		Answer:      "43",
	})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("resubmit: got %v, want ErrDuplicate", err)
	}

	// Another student may still submit.
	other := seedStudent(t, db, 2)
	if _, err := db.CreateSubmission(ctx, other.ID, models.CreateSubmissionRequest{
		ChallengeID: challenge.ID,
		Answer:      "41",
	}); err != nil {
		t.Fatalf("other student submit: %v", err)
	}
}

func TestCreateSubmissionRejectsClosedChallenges(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	student := seedStudent(t, db, 1)

	inactive := seedChallenge(t, db)
	off := false
	if _, err := db.UpdateChallenge(ctx, inactive.ID, models.UpdateChallengeRequest{IsActive: &off}); err != nil {
		t.Fatalf("deactivate challenge: %v", err)
	}

	ended := seedChallenge(t, db)
	past := time.Now().UTC().Add(-time.Minute)
	earlier := past.Add(-time.Hour)
	if _, err := db.UpdateChallenge(ctx, ended.ID, models.UpdateChallengeRequest{StartDate: &earlier, EndDate: &past}); err != nil {
		t.Fatalf("end challenge: %v", err)
	}

	tests := []struct {
		name        string
		challengeID string
		wantErr     error
	}{
		{"unknown challenge", "missing", ErrNotFound},
		{"inactive challenge", inactive.ID, ErrInvalidState},
		{"window closed", ended.ID, ErrInvalidState},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := db.CreateSubmission(ctx, student.ID, models.CreateSubmissionRequest{
				ChallengeID: tt.challengeID,
				Answer:      "hello",
			})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateSubmissionConcurrentDuplicates(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	student := seedStudent(t, db, 1)
	challenge := seedChallenge(t, db)

	const attempts = 8
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = db.CreateSubmission(ctx, student.ID, models.CreateSubmissionRequest{
				ChallengeID: challenge.ID,
				Answer:      "racer",
			})
		}(i)
	}
	wg.Wait()

	var wins, dups int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrDuplicate):
			dups++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Errorf("winners = %d, want exactly 1", wins)
	}
	if dups != attempts-1 {
		t.Errorf("duplicates = %d, want %d", dups, attempts-1)
	}
}

func TestListSubmissionsJoins(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	student := seedStudent(t, db, 1)
	challenge := seedChallenge(t, db)
	if _, err := db.CreateSubmission(ctx, student.ID, models.CreateSubmissionRequest{
		ChallengeID: challenge.ID, Answer: "a",
	}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	subs, err := db.ListSubmissions(ctx, SubmissionFilter{UserID: student.ID})
	if err != nil {
		t.Fatalf("ListSubmissions: %v", err)
	}
	if len(subs) != 1 {
		t.Fatalf("got %d submissions, want 1", len(subs))
	}
	if subs[0].Username != student.Username {
		t.Errorf("username = %q, want %q", subs[0].Username, student.Username)
	}
	if subs[0].ChallengeTitle != challenge.Title {
		t.Errorf("challenge title = %q, want %q", subs[0].ChallengeTitle, challenge.Title)
	}
}

func TestScoreSubmissionCreditsPoints(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	student := seedStudent(t, db, 1)
	challenge := seedChallenge(t, db)
	sub, err := db.CreateSubmission(ctx, student.ID, models.CreateSubmissionRequest{
		ChallengeID: challenge.ID, Answer: "a",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if err := db.ScoreSubmission(ctx, sub.ID, 80); err != nil {
		t.Fatalf("ScoreSubmission: %v", err)
	}
	u, err := db.GetUserByID(ctx, student.ID)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if u.Points != 80 {
		t.Errorf("points after first grade = %d, want 80", u.Points)
	}

	// Regrading credits only the delta.
	if err := db.ScoreSubmission(ctx, sub.ID, 60); err != nil {
		t.Fatalf("regrade: %v", err)
	}
	u, err = db.GetUserByID(ctx, student.ID)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if u.Points != 60 {
		t.Errorf("points after regrade = %d, want 60", u.Points)
	}

	if err := db.ScoreSubmission(ctx, "missing", 10); !errors.Is(err, ErrNotFound) {
		t.Errorf("score missing: got %v, want ErrNotFound", err)
	}
}
