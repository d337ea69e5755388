// StemQuest - Student STEM Challenge Platform
// Copyright 2026 StemQuest Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stemquest/stemquest

package models

// ErrorResponse is the wire shape of every error the API returns.
// Error is always human-readable; Code is a stable machine-readable
// identifier for clients that branch on failure kinds.
//
// Example:
//
//	{
//	  "error": "You have already submitted to this challenge",
//	  "code": "DUPLICATE_SUBMISSION"
//	}
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// Stable error codes returned in ErrorResponse.Code.
const (
	CodeValidation      = "VALIDATION_ERROR"
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeForbidden       = "FORBIDDEN"
	CodeNotFound        = "NOT_FOUND"
	CodeConflict        = "CONFLICT"
	CodeRateLimited     = "RATE_LIMITED"
	CodeInternal        = "INTERNAL_ERROR"
)

// PagedList wraps a list payload with pagination info.
type PagedList[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// RateLimitResult reports the outcome of a fixed-window rate limit check.
// Remaining is how many requests are left in the current window; ResetAt
// is when the window ends.
type RateLimitResult struct {
	Allowed   bool  `json:"allowed"`
	Remaining int   `json:"remaining"`
	ResetAt   int64 `json:"resetAt"`
}
