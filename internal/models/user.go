// StemQuest - Student STEM Challenge Platform
// Copyright 2026 StemQuest Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stemquest/stemquest

package models

import "time"

// User is a platform account. Students sign up themselves; admin-capable
// accounts are created by other admins. Password is the bcrypt hash and is
// never serialized.
type User struct {
	ID             string     `json:"id"`
	Email          string     `json:"email"`
	Username       string     `json:"username"`
	Password       string     `json:"-"`
	FirstName      string     `json:"firstName"`
	LastName       string     `json:"lastName"`
	Role           string     `json:"role"`
	Permissions    []string   `json:"permissions"`
	IsAdmin        bool       `json:"isAdmin"`
	Points         int        `json:"points"`
	Level          int        `json:"level"`
	Grade          *int       `json:"grade,omitempty"`
	State          string     `json:"state,omitempty"`
	School         string     `json:"school,omitempty"`
	ParentEmail    string     `json:"parentEmail,omitempty"`
	ParentApproved bool       `json:"parentApproved"`
	LastLoginAt    *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// SignupRequest is the payload for student self-registration.
type SignupRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Username    string `json:"username" validate:"required,min=3,max=20,username_charset"`
	Password    string `json:"password" validate:"required,min=8,max=128"`
	FirstName   string `json:"firstName" validate:"required,max=50"`
	LastName    string `json:"lastName" validate:"required,max=50"`
	Grade       int    `json:"grade" validate:"required,min=8,max=12"`
	State       string `json:"state" validate:"required,max=50"`
	School      string `json:"school" validate:"max=100"`
	ParentEmail string `json:"parentEmail" validate:"omitempty,email"`
}

// LoginRequest is the payload for both student and admin logins.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// CreateUserRequest is the payload for admin-side user creation.
type CreateUserRequest struct {
	Email       string   `json:"email" validate:"required,email"`
	Username    string   `json:"username" validate:"required,min=3,max=20,username_charset"`
	Password    string   `json:"password" validate:"required,min=8,max=128"`
	FirstName   string   `json:"firstName" validate:"required,max=50"`
	LastName    string   `json:"lastName" validate:"required,max=50"`
	Role        string   `json:"role" validate:"omitempty,platform_role"`
	Permissions []string `json:"permissions"`
	IsAdmin     bool     `json:"isAdmin"`
	Grade       *int     `json:"grade" validate:"omitempty,min=8,max=12"`
	State       string   `json:"state" validate:"max=50"`
	School      string   `json:"school" validate:"max=100"`
}

// UpdateUserRequest carries partial user updates. Nil fields are untouched.
type UpdateUserRequest struct {
	Email       *string   `json:"email" validate:"omitempty,email"`
	Username    *string   `json:"username" validate:"omitempty,min=3,max=20,username_charset"`
	Password    *string   `json:"password" validate:"omitempty,min=8,max=128"`
	FirstName   *string   `json:"firstName" validate:"omitempty,max=50"`
	LastName    *string   `json:"lastName" validate:"omitempty,max=50"`
	Role        *string   `json:"role" validate:"omitempty,platform_role"`
	Permissions *[]string `json:"permissions"`
	IsAdmin     *bool     `json:"isAdmin"`
	Points      *int      `json:"points" validate:"omitempty,min=0"`
	Level       *int      `json:"level" validate:"omitempty,min=1"`
	Grade       *int      `json:"grade" validate:"omitempty,min=8,max=12"`
	State       *string   `json:"state" validate:"omitempty,max=50"`
	School      *string   `json:"school" validate:"omitempty,max=100"`
	ParentEmail *string   `json:"parentEmail" validate:"omitempty,email"`
}

// LeaderboardEntry is one ranked row of the public leaderboard.
// Ordering: points desc, level desc, account age asc.
type LeaderboardEntry struct {
	Rank      int    `json:"rank"`
	ID        string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	Points    int    `json:"points"`
	Level     int    `json:"level"`
	Grade     *int   `json:"grade,omitempty"`
	State     string `json:"state,omitempty"`
}
