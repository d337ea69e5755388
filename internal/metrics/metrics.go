// StemQuest - Student STEM Challenge Platform
// Copyright 2026 StemQuest Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stemquest/stemquest

// Package metrics exposes Prometheus instrumentation for the HTTP
// surface, the DuckDB store, authentication, rate limiting, and
// campaign delivery.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics.
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stemquest_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "stemquest_http_active_requests",
			Help: "Number of HTTP requests currently in flight",
		},
	)

	// Database metrics.
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stemquest_duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stemquest_duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation"},
	)

	// Authentication metrics.
	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stemquest_login_attempts_total",
			Help: "Total login attempts by surface and outcome",
		},
		[]string{"surface", "outcome"}, // surface: "admin" or "student"
	)

	Signups = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stemquest_signups_total",
			Help: "Total successful student signups",
		},
	)

	// Rate limiter metrics.
	RateLimitDenials = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stemquest_rate_limit_denials_total",
			Help: "Total requests denied by the rate limiter",
		},
		[]string{"scope"},
	)

	// Submission metrics.
	SubmissionsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stemquest_submissions_created_total",
			Help: "Total accepted challenge submissions",
		},
	)

	SubmissionDuplicates = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stemquest_submission_duplicates_total",
			Help: "Total submissions rejected by the uniqueness constraint",
		},
	)

	// Campaign metrics.
	CampaignEmailsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stemquest_campaign_emails_total",
			Help: "Total campaign emails by delivery outcome",
		},
		[]string{"outcome"}, // "sent" or "failed"
	)
)

// RecordAPIRequest records one completed HTTP request.
func RecordAPIRequest(method, path, status string, duration time.Duration) {
	APIRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(start bool) {
	if start {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordDBQuery records one database query outcome.
func RecordDBQuery(operation string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation).Inc()
	}
}

// RecordLogin records a login attempt.
func RecordLogin(surface string, success bool) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	LoginAttempts.WithLabelValues(surface, outcome).Inc()
}

// Handler returns the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
