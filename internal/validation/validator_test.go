// StemQuest - Student STEM Challenge Platform
// Copyright 2026 StemQuest Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stemquest/stemquest

package validation

import (
	"strings"
	"testing"

	"github.com/stemquest/stemquest/internal/models"
)

func validSignup() models.SignupRequest {
	return models.SignupRequest{
		Email:     "jordan@example.com",
		Username:  "jordan_k",
		Password:  "correct-horse-battery",
		FirstName: "Jordan",
		LastName:  "Kim",
		Grade:     10,
		State:     "OH",
	}
}

func TestValidateSignupRequest(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*models.SignupRequest)
		wantErr bool
	}{
		{"valid", func(r *models.SignupRequest) {}, false},
		{"missing email", func(r *models.SignupRequest) { r.Email = "" }, true},
		{"bad email", func(r *models.SignupRequest) { r.Email = "not-an-email" }, true},
		{"username too short", func(r *models.SignupRequest) { r.Username = "ab" }, true},
		{"username too long", func(r *models.SignupRequest) { r.Username = strings.Repeat("a", 21) }, true},
		{"username bad charset", func(r *models.SignupRequest) { r.Username = "jordan k!" }, true},
		{"username with hyphen ok", func(r *models.SignupRequest) { r.Username = "jordan-k_1" }, false},
		{"password too short", func(r *models.SignupRequest) { r.Password = "short" }, true},
		{"grade below range", func(r *models.SignupRequest) { r.Grade = 7 }, true},
		{"grade above range", func(r *models.SignupRequest) { r.Grade = 13 }, true},
		{"grade at bounds", func(r *models.SignupRequest) { r.Grade = 12 }, false},
		{"bad parent email", func(r *models.SignupRequest) { r.ParentEmail = "nope" }, true},
		{"empty parent email ok", func(r *models.SignupRequest) { r.ParentEmail = "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validSignup()
			tt.mutate(&req)
			err := ValidateStruct(&req)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateStruct() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateStructErrorMessages(t *testing.T) {
	req := validSignup()
	req.Email = ""
	req.Username = "x"

	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "Email is required") {
		t.Errorf("message missing email failure: %q", msg)
	}
	if !strings.Contains(msg, "Username must be at least 3 characters") {
		t.Errorf("message missing username failure: %q", msg)
	}
	if len(err.Errors()) != 2 {
		t.Errorf("Errors() len = %d, want 2", len(err.Errors()))
	}
}

func TestAcceptableUsername(t *testing.T) {
	tests := []struct {
		username string
		want     bool
	}{
		{"jordan_k", true},
		{"science-fan42", true},
		{"admin", false},
		{"AdMiN", false},
		{"the_admin_1", false},
		{"moderator99", false},
		{"rootbeer", false},
		{"official_acct", false},
		{"quest_lover", true},
	}

	for _, tt := range tests {
		if got := AcceptableUsername(tt.username); got != tt.want {
			t.Errorf("AcceptableUsername(%q) = %v, want %v", tt.username, got, tt.want)
		}
	}
}

func TestValidatePlatformRole(t *testing.T) {
	role := "teacher"
	req := models.CreateUserRequest{
		Email:     "a@b.com",
		Username:  "valid_name",
		Password:  "longenough",
		FirstName: "A",
		LastName:  "B",
		Role:      role,
	}
	if err := ValidateStruct(&req); err == nil {
		t.Error("unknown role should fail validation")
	}

	req.Role = models.RoleModerator
	if err := ValidateStruct(&req); err != nil {
		t.Errorf("known role should pass: %v", err)
	}
}
