// StemQuest - Student STEM Challenge Platform
// Copyright 2026 StemQuest Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stemquest/stemquest

// Package routes classifies request paths into access classes consumed by
// the auth gate middleware. Classification is a static prefix table; it
// answers "who may be here" while the authz gate answers "what may they
// do".
package routes

// Class is a path's access class.
type Class int

const (
	// Public paths need no session: the landing page, challenge
	// browsing, the leaderboard, and the public API endpoints.
	Public Class = iota

	// StudentProtected paths need a valid student session.
	StudentProtected

	// StudentAuthPage paths are the student login and signup pages;
	// an already-authenticated student is bounced to the dashboard.
	StudentAuthPage

	// AdminProtected paths need an admin session.
	AdminProtected

	// AdminAuthPage is the admin login page; an already-authenticated
	// admin is bounced into the admin area.
	AdminAuthPage
)

// String returns the class name for logging.
func (c Class) String() string {
	switch c {
	case Public:
		return "public"
	case StudentProtected:
		return "student_protected"
	case StudentAuthPage:
		return "student_auth_page"
	case AdminProtected:
		return "admin_protected"
	case AdminAuthPage:
		return "admin_auth_page"
	default:
		return "unknown"
	}
}

// studentProtectedPrefixes are pages requiring a student session.
// Challenge browsing stays public; only the student's own surfaces are
// gated.
var studentProtectedPrefixes = []string{
	"/dashboard",
	"/profile",
	"/submissions",
}

// studentAuthPages are entry pages for unauthenticated students.
var studentAuthPages = []string{
	"/login",
	"/signup",
}

// Classify maps a request path to its access class.
//
// Order matters: the admin login page is carved out of the admin prefix
// before the general /admin rule applies.
func Classify(path string) Class {
	if path == "/admin/login" {
		return AdminAuthPage
	}
	if hasPrefix(path, "/admin") {
		return AdminProtected
	}
	for _, page := range studentAuthPages {
		if path == page {
			return StudentAuthPage
		}
	}
	for _, prefix := range studentProtectedPrefixes {
		if hasPrefix(path, prefix) {
			return StudentProtected
		}
	}
	return Public
}

// hasPrefix matches prefix as a whole path segment: "/admin" covers
// "/admin" and "/admin/users" but not "/administrator".
func hasPrefix(path, prefix string) bool {
	if len(path) < len(prefix) || path[:len(prefix)] != prefix {
		return false
	}
	return len(path) == len(prefix) || path[len(prefix)] == '/'
}
