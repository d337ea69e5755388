// StemQuest - Student STEM Challenge Platform
// Copyright 2026 StemQuest Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stemquest/stemquest

package auth

import (
	"testing"
	"time"
)

func newTestLockout(start time.Time) (*LockoutManager, *time.Time) {
	current := start
	m := NewLockoutManager(3, 10*time.Minute, 30*time.Minute)
	m.now = func() time.Time { return current }
	return m, &current
}

func TestLockoutAfterMaxFailures(t *testing.T) {
	start := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	m, _ := newTestLockout(start)

	if m.RecordFailure("admin@example.com") {
		t.Error("first failure should not lock")
	}
	if m.RecordFailure("admin@example.com") {
		t.Error("second failure should not lock")
	}
	if !m.RecordFailure("admin@example.com") {
		t.Error("third failure should lock")
	}

	locked, remaining := m.IsLocked("admin@example.com")
	if !locked {
		t.Fatal("key should be locked")
	}
	if remaining != 30*time.Minute {
		t.Errorf("remaining = %v, want 30m", remaining)
	}
}

func TestLockoutExpires(t *testing.T) {
	start := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	m, clock := newTestLockout(start)

	for i := 0; i < 3; i++ {
		m.RecordFailure("k")
	}
	*clock = start.Add(31 * time.Minute)
	if locked, _ := m.IsLocked("k"); locked {
		t.Error("lockout should have expired")
	}
}

func TestFailureWindowResets(t *testing.T) {
	start := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	m, clock := newTestLockout(start)

	m.RecordFailure("k")
	m.RecordFailure("k")

	// Failures outside the window restart the count.
	*clock = start.Add(11 * time.Minute)
	if m.RecordFailure("k") {
		t.Error("stale failures should not contribute to lockout")
	}
	if locked, _ := m.IsLocked("k"); locked {
		t.Error("key should not be locked")
	}
}

func TestSuccessClearsTracking(t *testing.T) {
	m, _ := newTestLockout(time.Now())

	m.RecordFailure("k")
	m.RecordFailure("k")
	m.RecordSuccess("k")

	if m.RecordFailure("k") {
		t.Error("count should restart after success")
	}
}

func TestSweepDropsStaleEntries(t *testing.T) {
	start := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	m, clock := newTestLockout(start)

	m.RecordFailure("stale")
	for i := 0; i < 3; i++ {
		m.RecordFailure("locked")
	}

	*clock = start.Add(time.Hour)
	m.Sweep()

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries["stale"]; ok {
		t.Error("stale entry survived sweep")
	}
	if _, ok := m.entries["locked"]; ok {
		t.Error("expired lockout survived sweep")
	}
}
