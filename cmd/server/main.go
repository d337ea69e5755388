// StemQuest - Student STEM Challenge Platform
// Copyright 2026 StemQuest Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stemquest/stemquest

// Package main is the entry point for the StemQuest server.
//
// Startup order:
//
//  1. Configuration: Koanf v2 layered sources (defaults, config file,
//     environment variables)
//  2. Logging: zerolog, JSON or console format
//  3. Database: embedded DuckDB, schema applied on open
//  4. Auth: admin session manager, student token manager, login lockouts
//  5. Rate limiting: in-process fixed windows, or Redis when configured
//  6. Mailer: SMTP sender for campaign delivery, disabled without config
//  7. Supervision: suture tree running the HTTP server and the
//     scheduled-campaign dispatcher
//
// The server shuts down gracefully on SIGINT and SIGTERM.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/stemquest/stemquest/internal/api"
	"github.com/stemquest/stemquest/internal/auth"
	"github.com/stemquest/stemquest/internal/config"
	"github.com/stemquest/stemquest/internal/database"
	"github.com/stemquest/stemquest/internal/logging"
	"github.com/stemquest/stemquest/internal/mailer"
	"github.com/stemquest/stemquest/internal/ratelimit"
	"github.com/stemquest/stemquest/internal/supervisor"
	"github.com/stemquest/stemquest/internal/supervisor/services"
)

func main() {
	if err := run(); err != nil {
		logging.Error().Err(err).Msg("Server exited with error")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})
	logging.Info().
		Str("environment", cfg.Server.Environment).
		Int("port", cfg.Server.Port).
		Msg("Starting StemQuest")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Database close failed")
		}
	}()

	sessions, err := auth.NewSessionManager(cfg.Security.SessionSecret,
		cfg.Security.SessionMaxAge, cfg.Server.IsProduction())
	if err != nil {
		return fmt.Errorf("session manager: %w", err)
	}
	tokens, err := auth.NewTokenManager(cfg.Security.JWTSecret, cfg.Security.StudentTokenTTL)
	if err != nil {
		return fmt.Errorf("token manager: %w", err)
	}
	lockouts := auth.NewLockoutManager(cfg.Security.LockoutMaxAttempts,
		cfg.Security.LockoutWindow, cfg.Security.LockoutDuration)

	limiter, err := newLimiter(ctx, cfg)
	if err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	sender := mailer.New(&cfg.Mail)

	handlers := api.NewHandlers(cfg, db, sessions, tokens, lockouts, limiter, sender)
	router := handlers.Router(auth.NewGate(sessions, tokens))

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	tree := supervisor.NewTree(supervisor.DefaultTreeConfig())
	tree.Add(services.NewHTTPService(server, supervisor.DefaultTreeConfig().ShutdownTimeout))
	if cfg.Campaigns.SchedulerEnabled {
		tree.Add(services.NewCampaignScheduler(db, sender,
			cfg.Campaigns.CheckInterval, cfg.Campaigns.SendTimeout))
		logging.Info().
			Dur("check_interval", cfg.Campaigns.CheckInterval).
			Msg("Campaign scheduler enabled")
	}

	logging.Info().Str("addr", server.Addr).Msg("Listening")
	err = tree.Serve(ctx)
	if err != nil && err != context.Canceled {
		return err
	}
	logging.Info().Msg("Shutdown complete")
	return nil
}

// newLimiter selects the rate limit backend. Redis shares counters
// across instances; memory is right for a single process.
func newLimiter(ctx context.Context, cfg *config.Config) (ratelimit.Limiter, error) {
	if cfg.RateLimit.Backend == "redis" {
		return ratelimit.NewRedisLimiter(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	}
	return ratelimit.NewMemoryLimiter(), nil
}
