// StemQuest - Student STEM Challenge Platform
// Copyright 2026 StemQuest Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stemquest/stemquest

package database

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stemquest/stemquest/internal/config"
	"github.com/stemquest/stemquest/internal/models"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(&config.DatabaseConfig{Path: ":memory:"})
	if err != nil {
		t.Fatalf("open in-memory database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("close database: %v", err)
		}
	})
	return db
}

func intPtr(v int) *int { return &v }

func seedStudent(t *testing.T, db *DB, n int) *models.User {
	t.Helper()
	u := &models.User{
		Email:     fmt.Sprintf("student%d@example.com", n),
		Username:  fmt.Sprintf("student%d", n),
		Password:  "hash",
		FirstName: "Student",
		LastName:  fmt.Sprintf("Number%d", n),
		Grade:     intPtr(9),
		State:     "CA",
		School:    "Lincoln High",
	}
	if err := db.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("seed student %d: %v", n, err)
	}
	return u
}

func seedChallenge(t *testing.T, db *DB) *models.Challenge {
	t.Helper()
	ctx := context.Background()
	cat, err := db.CreateCategory(ctx, models.CreateCategoryRequest{Name: fmt.Sprintf("Category %d", time.Now().UnixNano())})
	if err != nil {
		t.Fatalf("seed category: %v", err)
	}
	ch, err := db.CreateChallenge(ctx, models.CreateChallengeRequest{
		Title:       "Bridge Building",
		Description: "Build the strongest bridge from spaghetti.",
		Difficulty:  5,
		CategoryID:  cat.ID,
		Points:      100,
		StartDate:   time.Now().UTC().Add(-time.Hour),
		EndDate:     time.Now().UTC().Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("seed challenge: %v", err)
	}
	return ch
}

func TestCreateUserDuplicate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	first := seedStudent(t, db, 1)

	dupEmail := &models.User{
		Email:    first.Email,
		Username: "otherusername",
		Password: "hash", FirstName: "A", LastName: "B",
	}
	if err := db.CreateUser(ctx, dupEmail); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("duplicate email: got %v, want ErrDuplicate", err)
	}

	dupUsername := &models.User{
		Email:    "fresh@example.com",
		Username: first.Username,
		Password: "hash", FirstName: "A", LastName: "B",
	}
	if err := db.CreateUser(ctx, dupUsername); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("duplicate username: got %v, want ErrDuplicate", err)
	}
}

func TestUserDefaultsAndRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	u := seedStudent(t, db, 1)
	if u.Role != models.RoleStudent {
		t.Errorf("role = %q, want %q", u.Role, models.RoleStudent)
	}
	if u.Level != 1 {
		t.Errorf("level = %d, want 1", u.Level)
	}

	got, err := db.GetUserByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if got.Email != u.Email || got.Username != u.Username {
		t.Errorf("round trip mismatch: got %q/%q", got.Email, got.Username)
	}
	if got.Grade == nil || *got.Grade != 9 {
		t.Errorf("grade = %v, want 9", got.Grade)
	}
	if got.Permissions == nil {
		t.Error("permissions should unmarshal to an empty slice, not nil")
	}

	byEmail, err := db.GetUserByEmail(ctx, u.Email)
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if byEmail.ID != u.ID {
		t.Errorf("GetUserByEmail id = %q, want %q", byEmail.ID, u.ID)
	}

	if _, err := db.GetUserByID(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing user: got %v, want ErrNotFound", err)
	}
}

func TestListUsersFilterAndPaging(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		seedStudent(t, db, i)
	}
	admin := &models.User{
		Email: "admin@example.com", Username: "adminuser",
		Password: "hash", FirstName: "Ada", LastName: "Admin",
		Role: models.RoleAdmin, IsAdmin: true,
	}
	if err := db.CreateUser(ctx, admin); err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	students, total, err := db.ListUsers(ctx, UserFilter{Role: models.RoleStudent, Page: 1, Limit: 3})
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if total != 5 {
		t.Errorf("total = %d, want 5", total)
	}
	if len(students) != 3 {
		t.Errorf("page size = %d, want 3", len(students))
	}

	page2, _, err := db.ListUsers(ctx, UserFilter{Role: models.RoleStudent, Page: 2, Limit: 3})
	if err != nil {
		t.Fatalf("ListUsers page 2: %v", err)
	}
	if len(page2) != 2 {
		t.Errorf("page 2 size = %d, want 2", len(page2))
	}

	found, total, err := db.ListUsers(ctx, UserFilter{Search: "student3", Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("ListUsers search: %v", err)
	}
	if total != 1 || len(found) != 1 || found[0].Username != "student3" {
		t.Errorf("search = %d results, want exactly student3", total)
	}
}

func TestUpdateAndDeleteUser(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	u := seedStudent(t, db, 1)

	newState := "TX"
	points := 250
	updated, err := db.UpdateUser(ctx, u.ID, models.UpdateUserRequest{State: &newState, Points: &points})
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if updated.State != "TX" || updated.Points != 250 {
		t.Errorf("update not applied: state=%q points=%d", updated.State, updated.Points)
	}

	if _, err := db.UpdateUser(ctx, "missing", models.UpdateUserRequest{State: &newState}); !errors.Is(err, ErrNotFound) {
		t.Errorf("update missing: got %v, want ErrNotFound", err)
	}

	if err := db.DeleteUser(ctx, u.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if _, err := db.GetUserByID(ctx, u.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("after delete: got %v, want ErrNotFound", err)
	}
	if err := db.DeleteUser(ctx, u.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("double delete: got %v, want ErrNotFound", err)
	}
}

func TestLeaderboardOrdering(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	// Three students: ties on points break by level, then by account age.
	a := seedStudent(t, db, 1)
	b := seedStudent(t, db, 2)
	c := seedStudent(t, db, 3)

	set := func(id string, points, level int) {
		t.Helper()
		if _, err := db.UpdateUser(ctx, id, models.UpdateUserRequest{Points: &points, Level: &level}); err != nil {
			t.Fatalf("set points: %v", err)
		}
	}
	set(a.ID, 100, 2)
	set(b.ID, 300, 1)
	set(c.ID, 100, 3)

	admin := &models.User{
		Email: "admin@example.com", Username: "adminuser",
		Password: "hash", FirstName: "Ada", LastName: "Admin",
		Role: models.RoleAdmin, IsAdmin: true, Points: 9999,
	}
	if err := db.CreateUser(ctx, admin); err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	board, err := db.Leaderboard(ctx, LeaderboardFilter{Limit: 10})
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if len(board) != 3 {
		t.Fatalf("board size = %d, want 3 (admins excluded)", len(board))
	}

	wantOrder := []string{b.Username, c.Username, a.Username}
	for i, want := range wantOrder {
		if board[i].Username != want {
			t.Errorf("rank %d = %q, want %q", i+1, board[i].Username, want)
		}
		if board[i].Rank != i+1 {
			t.Errorf("rank field = %d, want %d", board[i].Rank, i+1)
		}
	}
}
