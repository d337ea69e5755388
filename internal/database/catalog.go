// StemQuest - Student STEM Challenge Platform
// Copyright 2026 StemQuest Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stemquest/stemquest

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/stemquest/stemquest/internal/models"
)

// CreateCategory inserts a category. Returns ErrDuplicate when the name
// is taken.
func (db *DB) CreateCategory(ctx context.Context, req models.CreateCategoryRequest) (*models.Category, error) {
	c := &models.Category{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		CreatedAt:   nowUTC(),
	}
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO categories (id, name, description, color, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Description, c.Color, c.CreatedAt)
	if err != nil {
		if isConstraintViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("insert category: %w", err)
	}
	return c, nil
}

// GetCategoryByID fetches one category. Returns ErrNotFound when absent.
func (db *DB) GetCategoryByID(ctx context.Context, id string) (*models.Category, error) {
	var c models.Category
	var description, color sql.NullString
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name, description, color, created_at FROM categories WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &description, &color, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	c.Description = description.String
	c.Color = color.String
	return &c, nil
}

// ListCategories returns all categories ordered by name.
func (db *DB) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, name, description, color, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		var description, color sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &description, &color, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.Description = description.String
		c.Color = color.String
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// DeleteCategory removes a category. Returns ErrInUse when challenges
// still reference it and ErrNotFound for unknown ids.
func (db *DB) DeleteCategory(ctx context.Context, id string) error {
	var inUse int
	if err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM challenges WHERE category_id = ?`, id).Scan(&inUse); err != nil {
		return fmt.Errorf("count category usage: %w", err)
	}
	if inUse > 0 {
		return ErrInUse
	}

	res, err := db.conn.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

// CreatePrize inserts a prize.
func (db *DB) CreatePrize(ctx context.Context, req models.CreatePrizeRequest) (*models.Prize, error) {
	now := nowUTC()
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	p := &models.Prize{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
		PointsCost:  req.PointsCost,
		ImageURL:    req.ImageURL,
		Quantity:    req.Quantity,
		IsActive:    isActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO prizes (id, name, description, points_cost, image_url,
			quantity, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Description, p.PointsCost, p.ImageURL,
		p.Quantity, p.IsActive, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert prize: %w", err)
	}
	return p, nil
}

// GetPrizeByID fetches one prize. Returns ErrNotFound when absent.
func (db *DB) GetPrizeByID(ctx context.Context, id string) (*models.Prize, error) {
	row := db.conn.QueryRowContext(ctx, `
		SELECT id, name, description, points_cost, image_url, quantity,
			is_active, created_at, updated_at
		FROM prizes WHERE id = ?`, id)
	p, err := scanPrize(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// ListPrizes returns prizes cheapest first.
func (db *DB) ListPrizes(ctx context.Context, activeOnly bool) ([]models.Prize, error) {
	query := `
		SELECT id, name, description, points_cost, image_url, quantity,
			is_active, created_at, updated_at
		FROM prizes`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY points_cost ASC`

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list prizes: %w", err)
	}
	defer rows.Close()

	var prizes []models.Prize
	for rows.Next() {
		p, err := scanPrize(rows)
		if err != nil {
			return nil, err
		}
		prizes = append(prizes, *p)
	}
	return prizes, rows.Err()
}

// UpdatePrize applies the non-nil fields of req.
// Returns ErrNotFound for unknown ids.
func (db *DB) UpdatePrize(ctx context.Context, id string, req models.UpdatePrizeRequest) (*models.Prize, error) {
	var sets []string
	var args []interface{}

	set := func(column string, value interface{}) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}

	if req.Name != nil {
		set("name", *req.Name)
	}
	if req.Description != nil {
		set("description", *req.Description)
	}
	if req.PointsCost != nil {
		set("points_cost", *req.PointsCost)
	}
	if req.ImageURL != nil {
		set("image_url", *req.ImageURL)
	}
	if req.Quantity != nil {
		set("quantity", *req.Quantity)
	}
	if req.IsActive != nil {
		set("is_active", *req.IsActive)
	}

	if len(sets) == 0 {
		return db.GetPrizeByID(ctx, id)
	}

	set("updated_at", nowUTC())
	args = append(args, id)

	res, err := db.conn.ExecContext(ctx,
		`UPDATE prizes SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("update prize: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return nil, ErrNotFound
	}
	return db.GetPrizeByID(ctx, id)
}

// DeletePrize removes a prize. Returns ErrNotFound for unknown ids.
func (db *DB) DeletePrize(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM prizes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete prize: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPrize(s rowScanner) (*models.Prize, error) {
	var p models.Prize
	var description, imageURL sql.NullString
	err := s.Scan(&p.ID, &p.Name, &description, &p.PointsCost, &imageURL,
		&p.Quantity, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan prize: %w", err)
	}
	p.Description = description.String
	p.ImageURL = imageURL.String
	return &p, nil
}

// CreateAdvisor inserts an advisor.
func (db *DB) CreateAdvisor(ctx context.Context, req models.CreateAdvisorRequest) (*models.Advisor, error) {
	a := &models.Advisor{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Title:     req.Title,
		Bio:       req.Bio,
		ImageURL:  req.ImageURL,
		Email:     req.Email,
		CreatedAt: nowUTC(),
	}
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO advisors (id, name, title, bio, image_url, email, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Name, a.Title, a.Bio, a.ImageURL, a.Email, a.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert advisor: %w", err)
	}
	return a, nil
}

// ListAdvisors returns all advisors ordered by name.
func (db *DB) ListAdvisors(ctx context.Context) ([]models.Advisor, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, name, title, bio, image_url, email, created_at
		FROM advisors ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list advisors: %w", err)
	}
	defer rows.Close()

	var advisors []models.Advisor
	for rows.Next() {
		var a models.Advisor
		var title, bio, imageURL, email sql.NullString
		if err := rows.Scan(&a.ID, &a.Name, &title, &bio, &imageURL, &email, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan advisor: %w", err)
		}
		a.Title = title.String
		a.Bio = bio.String
		a.ImageURL = imageURL.String
		a.Email = email.String
		advisors = append(advisors, a)
	}
	return advisors, rows.Err()
}

// DeleteAdvisor removes an advisor. Returns ErrNotFound for unknown ids.
func (db *DB) DeleteAdvisor(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM advisors WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete advisor: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}
