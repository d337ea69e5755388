// StemQuest - Student STEM Challenge Platform
// Copyright 2026 StemQuest Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stemquest/stemquest

package authz

import (
	"errors"
	"testing"

	"github.com/stemquest/stemquest/internal/auth"
	"github.com/stemquest/stemquest/internal/models"
)

func session(role string, isAdmin bool, perms ...string) auth.Session {
	return auth.Session{
		UserID:      "u-1",
		Email:       "x@example.com",
		Role:        role,
		IsAdmin:     isAdmin,
		Permissions: perms,
	}
}

func TestCheckUnauthenticated(t *testing.T) {
	err := Check(auth.Session{}, false, Requirement{})
	if !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("Check without session = %v, want ErrUnauthenticated", err)
	}
}

func TestCheckAdminGate(t *testing.T) {
	tests := []struct {
		name    string
		session auth.Session
		wantErr error
	}{
		{"super_admin", session(models.RoleSuperAdmin, false), nil},
		{"admin", session(models.RoleAdmin, false), nil},
		{"moderator", session(models.RoleModerator, false), nil},
		{"viewer", session(models.RoleViewer, false), nil},
		{"student", session(models.RoleStudent, false), ErrForbidden},
		{"student with isAdmin flag", session(models.RoleStudent, true), nil},
		{"unknown role", session("intern", false), ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(tt.session, true, Requirement{})
			if !errors.Is(err, tt.wantErr) && !(err == nil && tt.wantErr == nil) {
				t.Errorf("Check() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCheckPermission(t *testing.T) {
	req := Requirement{Permission: models.PermManageUsers}

	// Viewer holding only view_analytics is denied user management.
	viewer := session(models.RoleViewer, false, models.PermViewAnalytics)
	if err := Check(viewer, true, req); !errors.Is(err, ErrForbidden) {
		t.Errorf("viewer without permission = %v, want ErrForbidden", err)
	}

	// The same viewer passes once granted the literal permission.
	granted := session(models.RoleViewer, false, models.PermViewAnalytics, models.PermManageUsers)
	if err := Check(granted, true, req); err != nil {
		t.Errorf("viewer with permission = %v, want nil", err)
	}

	// super_admin passes without holding the literal string.
	super := session(models.RoleSuperAdmin, false)
	if err := Check(super, true, req); err != nil {
		t.Errorf("super_admin = %v, want nil", err)
	}
}

func TestCheckRoleRestriction(t *testing.T) {
	req := Requirement{AnyRole: []string{models.RoleAdmin}}

	if err := Check(session(models.RoleModerator, false), true, req); !errors.Is(err, ErrForbidden) {
		t.Errorf("moderator against admin-only = %v, want ErrForbidden", err)
	}
	if err := Check(session(models.RoleAdmin, false), true, req); err != nil {
		t.Errorf("admin against admin-only = %v, want nil", err)
	}
	// super_admin bypasses role lists too.
	if err := Check(session(models.RoleSuperAdmin, false), true, req); err != nil {
		t.Errorf("super_admin against admin-only = %v, want nil", err)
	}
}

func TestCheckCombinedRequirement(t *testing.T) {
	req := Requirement{
		AnyRole:    []string{models.RoleAdmin, models.RoleModerator},
		Permission: models.PermManageEmails,
	}

	mod := session(models.RoleModerator, false, models.PermManageEmails)
	if err := Check(mod, true, req); err != nil {
		t.Errorf("moderator with permission = %v, want nil", err)
	}

	modNoPerm := session(models.RoleModerator, false)
	if err := Check(modNoPerm, true, req); !errors.Is(err, ErrForbidden) {
		t.Errorf("moderator without permission = %v, want ErrForbidden", err)
	}
}
