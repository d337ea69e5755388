// StemQuest - Student STEM Challenge Platform
// Copyright 2026 StemQuest Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stemquest/stemquest

// Package ratelimit implements fixed-window request limiting keyed by an
// arbitrary string (typically "purpose:clientIP"). Two backends exist:
// an in-process memory store for single-instance deployments and a Redis
// store that shares counters across instances.
package ratelimit

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/stemquest/stemquest/internal/models"
)

// Limiter is a fixed-window rate limiter.
//
// Allow counts one request against key. The first request of a window
// (or any request after the window elapsed) starts a fresh window with
// count 1. Requests beyond max within the window are denied; denied
// requests do not extend the window.
type Limiter interface {
	Allow(ctx context.Context, key string, max int, window time.Duration) (models.RateLimitResult, error)
}

// entry is one key's window state.
type entry struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter keeps windows in a mutex-guarded map. Counters are lost
// on restart and not shared across instances.
type MemoryLimiter struct {
	mu      sync.Mutex
	entries map[string]*entry

	stopCleanup chan struct{}
	stopOnce    sync.Once

	// now is replaceable in tests.
	now func() time.Time
}

// NewMemoryLimiter creates a memory-backed limiter and starts a
// background sweep that drops expired windows every 10 minutes.
func NewMemoryLimiter() *MemoryLimiter {
	l := &MemoryLimiter{
		entries:     make(map[string]*entry),
		stopCleanup: make(chan struct{}),
		now:         time.Now,
	}
	go l.cleanupLoop()
	return l
}

// Allow implements Limiter.
func (l *MemoryLimiter) Allow(_ context.Context, key string, max int, window time.Duration) (models.RateLimitResult, error) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok || now.After(e.resetAt) || now.Equal(e.resetAt) {
		e = &entry{count: 1, resetAt: now.Add(window)}
		l.entries[key] = e
		return models.RateLimitResult{
			Allowed:   true,
			Remaining: max - 1,
			ResetAt:   e.resetAt.UnixMilli(),
		}, nil
	}

	e.count++
	if e.count > max {
		return models.RateLimitResult{
			Allowed:   false,
			Remaining: 0,
			ResetAt:   e.resetAt.UnixMilli(),
		}, nil
	}

	return models.RateLimitResult{
		Allowed:   true,
		Remaining: max - e.count,
		ResetAt:   e.resetAt.UnixMilli(),
	}, nil
}

// cleanupLoop periodically removes expired windows to bound memory.
func (l *MemoryLimiter) cleanupLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := l.now()
			l.mu.Lock()
			for key, e := range l.entries {
				if now.After(e.resetAt) {
					delete(l.entries, key)
				}
			}
			l.mu.Unlock()
		case <-l.stopCleanup:
			return
		}
	}
}

// Stop terminates the background sweep. Safe to call more than once.
func (l *MemoryLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stopCleanup) })
}

// ClientIP extracts the caller's address for rate-limit keying.
// Precedence: first X-Forwarded-For entry, then X-Real-IP, then
// CF-Connecting-IP. Requests carrying none of these share the "unknown"
// bucket, which throttles collectively rather than per caller.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first, _, found := strings.Cut(xff, ","); found {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(xff)
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return strings.TrimSpace(ip)
	}
	if ip := r.Header.Get("CF-Connecting-IP"); ip != "" {
		return strings.TrimSpace(ip)
	}
	return "unknown"
}
