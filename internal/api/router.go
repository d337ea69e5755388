// StemQuest - Student STEM Challenge Platform
// Copyright 2026 StemQuest Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stemquest/stemquest

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/stemquest/stemquest/internal/auth"
	"github.com/stemquest/stemquest/internal/metrics"
	"github.com/stemquest/stemquest/internal/middleware"
)

// Router builds the full HTTP surface: the JSON API under /api, the
// Prometheus scrape endpoint, and the navigation gate for page routes.
func (h *Handlers) Router(gate *auth.Gate) http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to every route in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.cfg.Security.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.SecurityHeaders)

	// The gate injects whatever identity the request carries and handles
	// the login redirects for page routes; /api paths classify public and
	// pass straight through to per-handler authorization.
	r.Use(gate.Middleware)

	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.PrometheusMetrics)
		if !h.cfg.RateLimit.Disabled {
			r.Use(httprate.LimitByRealIP(300, time.Minute))
		}

		r.Get("/health", h.Health)
		r.Post("/track", h.Track)

		r.Route("/auth", func(r chi.Router) {
			if !h.cfg.RateLimit.Disabled {
				r.Use(httprate.LimitByRealIP(20, time.Minute))
			}
			r.Post("/signup", h.Signup)
			r.Post("/login", h.StudentLogin)
			r.Post("/admin-login", h.AdminLogin)
			r.Post("/admin-logout", h.AdminLogout)
			r.Get("/admin-session", h.AdminSession)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", h.ListUsers)
			r.Post("/", h.CreateUser)
			r.Get("/{id}", h.GetUser)
			r.Put("/{id}", h.UpdateUser)
			r.Delete("/{id}", h.DeleteUser)
		})

		r.Get("/leaderboard", h.Leaderboard)

		r.Route("/challenges", func(r chi.Router) {
			r.Get("/", h.ListChallenges)
			r.Post("/", h.CreateChallenge)
			r.Get("/{id}", h.GetChallenge)
			r.Put("/{id}", h.UpdateChallenge)
			r.Delete("/{id}", h.DeleteChallenge)
		})

		r.Route("/submissions", func(r chi.Router) {
			r.Get("/", h.ListSubmissions)
			r.Post("/", h.CreateSubmission)
			r.Put("/{id}/score", h.ScoreSubmission)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", h.ListCategories)
			r.Post("/", h.CreateCategory)
			r.Delete("/{id}", h.DeleteCategory)
		})

		r.Route("/prizes", func(r chi.Router) {
			r.Get("/", h.ListPrizes)
			r.Post("/", h.CreatePrize)
			r.Get("/{id}", h.GetPrize)
			r.Put("/{id}", h.UpdatePrize)
			r.Delete("/{id}", h.DeletePrize)
		})

		r.Route("/advisors", func(r chi.Router) {
			r.Get("/", h.ListAdvisors)
			r.Post("/", h.CreateAdvisor)
			r.Delete("/{id}", h.DeleteAdvisor)
		})

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/overview", h.OverviewAnalytics)
			r.Get("/users", h.UserAnalytics)
			r.Get("/challenges", h.ChallengeAnalytics)
		})

		r.Route("/email-templates", func(r chi.Router) {
			r.Get("/", h.ListEmailTemplates)
			r.Post("/", h.CreateEmailTemplate)
			r.Get("/{id}", h.GetEmailTemplate)
			r.Put("/{id}", h.UpdateEmailTemplate)
			r.Delete("/{id}", h.DeleteEmailTemplate)
		})

		r.Route("/email-campaigns", func(r chi.Router) {
			r.Get("/", h.ListEmailCampaigns)
			r.Post("/", h.CreateEmailCampaign)
			r.Get("/{id}", h.GetEmailCampaign)
			r.Put("/{id}", h.UpdateEmailCampaign)
			r.Delete("/{id}", h.DeleteEmailCampaign)
			r.Post("/{id}/send", h.SendEmailCampaign)
			r.Get("/{id}/logs", h.ListEmailLogs)
		})

		r.Get("/email-recipients", h.EmailRecipients)
	})

	return r
}
