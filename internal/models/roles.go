// StemQuest - Student STEM Challenge Platform
// Copyright 2026 StemQuest Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stemquest/stemquest

package models

// Role names used across the platform.
//
// Admin-capable roles (RoleSuperAdmin, RoleAdmin, RoleModerator, RoleViewer)
// may enter the admin surface; what they can do there is decided per
// operation by permission checks. RoleStudent is the participant role and
// never passes the admin gate on role alone.
const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
	RoleModerator  = "moderator"
	RoleViewer     = "viewer"
	RoleStudent    = "student"
)

// Permission strings checked by the authorization gate. RoleSuperAdmin
// implicitly holds every permission; all other roles need the literal
// string present in their permission list.
const (
	PermManageUsers      = "manage_users"
	PermManageChallenges = "manage_challenges"
	PermManageContent    = "manage_content"
	PermManageEmails     = "manage_emails"
	PermViewAnalytics    = "view_analytics"
	PermViewSubmissions  = "view_submissions"
)

// adminRoles holds the roles allowed through the coarse admin gate.
var adminRoles = map[string]struct{}{
	RoleSuperAdmin: {},
	RoleAdmin:      {},
	RoleModerator:  {},
	RoleViewer:     {},
}

// IsAdminRole reports whether the role may enter the admin surface.
func IsAdminRole(role string) bool {
	_, ok := adminRoles[role]
	return ok
}

// ValidRole reports whether the role name is one the platform knows.
func ValidRole(role string) bool {
	return role == RoleStudent || IsAdminRole(role)
}
