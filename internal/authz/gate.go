// StemQuest - Student STEM Challenge Platform
// Copyright 2026 StemQuest Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stemquest/stemquest

// Package authz is the single authorization decision point for the admin
// API surface. Every admin operation states its Requirement and calls
// Check; no handler re-implements role or permission logic.
//
// Decision order:
//  1. No session at all -> ErrUnauthenticated (401).
//  2. Session fails the coarse admin gate -> ErrForbidden (403).
//  3. Requirement names roles and the session's role is not among
//     them -> ErrForbidden.
//  4. Requirement names a permission the session lacks -> ErrForbidden.
//     RoleSuperAdmin holds every permission implicitly.
package authz

import (
	"errors"

	"github.com/stemquest/stemquest/internal/auth"
	"github.com/stemquest/stemquest/internal/models"
)

// Authorization errors, mapped to 401 and 403 by the API layer.
var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("insufficient privileges")
)

// Requirement declares what an operation demands of a session.
// The zero value requires only a session that passes the admin gate.
type Requirement struct {
	// AnyRole, when non-empty, restricts the operation to sessions
	// whose role is in the list. RoleSuperAdmin is always accepted.
	AnyRole []string

	// Permission, when non-empty, must be held by the session.
	Permission string
}

// Check decides whether the session may perform the operation described
// by req. present is false when no session could be decoded from the
// request, which includes malformed and tampered cookies.
func Check(session auth.Session, present bool, req Requirement) error {
	if !present {
		return ErrUnauthenticated
	}

	// Coarse gate: the isAdmin flag or an admin-capable role.
	if !session.IsAdmin && !models.IsAdminRole(session.Role) {
		return ErrForbidden
	}

	if len(req.AnyRole) > 0 && session.Role != models.RoleSuperAdmin {
		matched := false
		for _, role := range req.AnyRole {
			if session.Role == role {
				matched = true
				break
			}
		}
		if !matched {
			return ErrForbidden
		}
	}

	if req.Permission != "" && !session.HasPermission(req.Permission) {
		return ErrForbidden
	}

	return nil
}
