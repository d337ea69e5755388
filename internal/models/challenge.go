// StemQuest - Student STEM Challenge Platform
// Copyright 2026 StemQuest Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stemquest/stemquest

package models

import "time"

// Category groups challenges. Names are unique.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Color       string    `json:"color,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CreateCategoryRequest is the payload for category creation.
type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,max=50"`
	Description string `json:"description" validate:"max=500"`
	Color       string `json:"color" validate:"omitempty,hexcolor"`
}

// Challenge is a time-boxed STEM task worth a fixed number of points.
// Difficulty is a 1-10 rating; analytics buckets it as Easy (<3),
// Medium (<7), or Hard.
type Challenge struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Difficulty   int       `json:"difficulty"`
	CategoryID   string    `json:"categoryId"`
	CategoryName string    `json:"categoryName,omitempty"`
	Grade        *int      `json:"grade,omitempty"`
	Points       int       `json:"points"`
	StartDate    time.Time `json:"startDate"`
	EndDate      time.Time `json:"endDate"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// CreateChallengeRequest is the payload for challenge creation.
type CreateChallengeRequest struct {
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description" validate:"required"`
	Difficulty  int       `json:"difficulty" validate:"required,min=1,max=10"`
	CategoryID  string    `json:"categoryId" validate:"required,uuid"`
	Grade       *int      `json:"grade" validate:"omitempty,min=8,max=12"`
	Points      int       `json:"points" validate:"required,min=1,max=10000"`
	StartDate   time.Time `json:"startDate" validate:"required"`
	EndDate     time.Time `json:"endDate" validate:"required,gtfield=StartDate"`
	IsActive    *bool     `json:"isActive"`
}

// UpdateChallengeRequest carries partial challenge updates.
type UpdateChallengeRequest struct {
	Title       *string    `json:"title" validate:"omitempty,max=200"`
	Description *string    `json:"description"`
	Difficulty  *int       `json:"difficulty" validate:"omitempty,min=1,max=10"`
	CategoryID  *string    `json:"categoryId" validate:"omitempty,uuid"`
	Grade       *int       `json:"grade" validate:"omitempty,min=8,max=12"`
	Points      *int       `json:"points" validate:"omitempty,min=1,max=10000"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
	IsActive    *bool      `json:"isActive"`
}

// Submission is a student's answer to a challenge. At most one submission
// exists per (user, challenge) pair; the store enforces this with a unique
// index. Score starts at 0 until graded.
type Submission struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	ChallengeID    string    `json:"challengeId"`
	Answer         string    `json:"answer"`
	Score          int       `json:"score"`
	SubmittedAt    time.Time `json:"submittedAt"`
	Username       string    `json:"username,omitempty"`
	ChallengeTitle string    `json:"challengeTitle,omitempty"`
}

// CreateSubmissionRequest is the payload for submitting an answer.
type CreateSubmissionRequest struct {
	ChallengeID string `json:"challengeId" validate:"required,uuid"`
	Answer      string `json:"answer" validate:"required,max=10000"`
}

// Prize is a reward redeemable for points.
type Prize struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	PointsCost  int       `json:"pointsCost"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	Quantity    int       `json:"quantity"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CreatePrizeRequest is the payload for prize creation.
type CreatePrizeRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=1000"`
	PointsCost  int    `json:"pointsCost" validate:"required,min=1"`
	ImageURL    string `json:"imageUrl" validate:"omitempty,url"`
	Quantity    int    `json:"quantity" validate:"min=0"`
	IsActive    *bool  `json:"isActive"`
}

// UpdatePrizeRequest carries partial prize updates.
type UpdatePrizeRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=100"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	PointsCost  *int    `json:"pointsCost" validate:"omitempty,min=1"`
	ImageURL    *string `json:"imageUrl" validate:"omitempty,url"`
	Quantity    *int    `json:"quantity" validate:"omitempty,min=0"`
	IsActive    *bool   `json:"isActive"`
}

// Advisor is a program mentor listed on the platform.
type Advisor struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Title     string    `json:"title,omitempty"`
	Bio       string    `json:"bio,omitempty"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateAdvisorRequest is the payload for advisor creation.
type CreateAdvisorRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Title    string `json:"title" validate:"max=100"`
	Bio      string `json:"bio" validate:"max=2000"`
	ImageURL string `json:"imageUrl" validate:"omitempty,url"`
	Email    string `json:"email" validate:"omitempty,email"`
}
