// StemQuest - Student STEM Challenge Platform
// Copyright 2026 StemQuest Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stemquest/stemquest

package auth

import (
	"sync"
	"time"
)

// LockoutManager tracks failed admin login attempts per key (email or
// client IP) and locks the key after too many failures inside the
// tracking window. State is in-process; a restart clears all lockouts.
type LockoutManager struct {
	mu      sync.Mutex
	entries map[string]*lockoutEntry

	maxAttempts int
	window      time.Duration
	duration    time.Duration

	// now is replaceable in tests.
	now func() time.Time
}

type lockoutEntry struct {
	failures    int
	firstFail   time.Time
	lockedUntil time.Time
}

// NewLockoutManager creates a lockout tracker.
// After maxAttempts failures within window, the key is locked for duration.
func NewLockoutManager(maxAttempts int, window, duration time.Duration) *LockoutManager {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if window <= 0 {
		window = 15 * time.Minute
	}
	if duration <= 0 {
		duration = 30 * time.Minute
	}
	return &LockoutManager{
		entries:     make(map[string]*lockoutEntry),
		maxAttempts: maxAttempts,
		window:      window,
		duration:    duration,
		now:         time.Now,
	}
}

// IsLocked reports whether the key is currently locked out, and for how
// much longer.
func (m *LockoutManager) IsLocked(key string) (bool, time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return false, 0
	}
	now := m.now()
	if now.Before(e.lockedUntil) {
		return true, e.lockedUntil.Sub(now)
	}
	return false, 0
}

// RecordFailure counts one failed attempt and returns true if the key
// just became locked.
func (m *LockoutManager) RecordFailure(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	e, ok := m.entries[key]
	if !ok || now.Sub(e.firstFail) > m.window {
		m.entries[key] = &lockoutEntry{failures: 1, firstFail: now}
		return false
	}

	e.failures++
	if e.failures >= m.maxAttempts {
		e.lockedUntil = now.Add(m.duration)
		return true
	}
	return false
}

// RecordSuccess clears tracking for the key after a successful login.
func (m *LockoutManager) RecordSuccess(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
}

// Sweep removes stale entries. Called periodically by the owner to bound
// memory; not required for correctness.
func (m *LockoutManager) Sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for key, e := range m.entries {
		if now.After(e.lockedUntil) && now.Sub(e.firstFail) > m.window {
			delete(m.entries, key)
		}
	}
}
