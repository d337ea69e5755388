// StemQuest - Student STEM Challenge Platform
// Copyright 2026 StemQuest Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stemquest/stemquest

package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stemquest/stemquest/internal/models"
)

// keyPrefix namespaces limiter keys within the Redis keyspace.
const keyPrefix = "ratelimit:"

// RedisLimiter shares fixed-window counters across instances through
// Redis. The window lives as a counter with a TTL: the first INCR of a
// key starts the window, expiry ends it.
type RedisLimiter struct {
	client *redis.Client
}

// NewRedisLimiter creates a Redis-backed limiter and verifies the
// connection with a ping.
func NewRedisLimiter(ctx context.Context, addr, password string, db int) (*RedisLimiter, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &RedisLimiter{client: client}, nil
}

// Allow implements Limiter.
func (l *RedisLimiter) Allow(ctx context.Context, key string, max int, window time.Duration) (models.RateLimitResult, error) {
	redisKey := keyPrefix + key

	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return models.RateLimitResult{}, fmt.Errorf("rate limit incr: %w", err)
	}
	if count == 1 {
		if err := l.client.PExpire(ctx, redisKey, window).Err(); err != nil {
			return models.RateLimitResult{}, fmt.Errorf("rate limit expire: %w", err)
		}
	}

	ttl, err := l.client.PTTL(ctx, redisKey).Result()
	if err != nil {
		return models.RateLimitResult{}, fmt.Errorf("rate limit ttl: %w", err)
	}
	if ttl < 0 {
		// Counter lost its expiry (e.g. the PExpire above raced a
		// restart). Re-arm it so the key cannot live forever.
		ttl = window
		if err := l.client.PExpire(ctx, redisKey, window).Err(); err != nil {
			return models.RateLimitResult{}, fmt.Errorf("rate limit expire: %w", err)
		}
	}
	resetAt := time.Now().Add(ttl).UnixMilli()

	if int(count) > max {
		return models.RateLimitResult{Allowed: false, Remaining: 0, ResetAt: resetAt}, nil
	}
	return models.RateLimitResult{
		Allowed:   true,
		Remaining: max - int(count),
		ResetAt:   resetAt,
	}, nil
}

// Close releases the Redis connection.
func (l *RedisLimiter) Close() error {
	return l.client.Close()
}
