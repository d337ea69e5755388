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

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/stemquest/stemquest/internal/models"
)

// userColumns is the canonical select list for user rows.
const userColumns = `id, email, username, password, first_name, last_name, role,
	permissions, is_admin, points, level, grade, state, school, parent_email,
	parent_approved, last_login_at, created_at, updated_at`

// CreateUser inserts a new user. ID and timestamps are assigned here when
// absent. Returns ErrDuplicate when the email or username is taken; the
// unique indexes are the source of truth, so concurrent signups with the
// same identity cannot both succeed.
func (db *DB) CreateUser(ctx context.Context, u *models.User) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	now := nowUTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	if u.Role == "" {
		u.Role = models.RoleStudent
	}
	if u.Level < 1 {
		u.Level = 1
	}
	if u.Permissions == nil {
		u.Permissions = []string{}
	}

	perms, err := json.Marshal(u.Permissions)
	if err != nil {
		return fmt.Errorf("marshal permissions: %w", err)
	}

	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO users (id, email, username, password, first_name, last_name,
			role, permissions, is_admin, points, level, grade, state, school,
			parent_email, parent_approved, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.Username, u.Password, u.FirstName, u.LastName,
		u.Role, string(perms), u.IsAdmin, u.Points, u.Level, u.Grade, u.State,
		u.School, u.ParentEmail, u.ParentApproved, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if isConstraintViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetUserByID fetches one user. Returns ErrNotFound when absent.
func (db *DB) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// GetUserByEmail fetches one user by email. Returns ErrNotFound when absent.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

// UserFilter narrows and pages ListUsers.
type UserFilter struct {
	Role   string
	Grade  *int
	State  string
	Search string // matches email, username, first or last name
	Page   int    // 1-based
	Limit  int
}

// ListUsers returns a page of users plus the total matching count.
func (db *DB) ListUsers(ctx context.Context, filter UserFilter) ([]models.User, int, error) {
	where, args := buildUserWhere(filter)

	var total int
	if err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 20
	}
	offset := (page - 1) * limit

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users`+where+
			` ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUserRows(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, *u)
	}
	return users, total, rows.Err()
}

func buildUserWhere(filter UserFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}

	if filter.Role != "" {
		conds = append(conds, "role = ?")
		args = append(args, filter.Role)
	}
	if filter.Grade != nil {
		conds = append(conds, "grade = ?")
		args = append(args, *filter.Grade)
	}
	if filter.State != "" {
		conds = append(conds, "state = ?")
		args = append(args, filter.State)
	}
	if filter.Search != "" {
		conds = append(conds,
			"(email ILIKE ? OR username ILIKE ? OR first_name ILIKE ? OR last_name ILIKE ?)")
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern, pattern, pattern)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// UpdateUser applies the non-nil fields of req to the user and returns
// the updated row. Returns ErrNotFound for unknown ids and ErrDuplicate
// when a new email or username collides.
func (db *DB) UpdateUser(ctx context.Context, id string, req models.UpdateUserRequest) (*models.User, error) {
	var sets []string
	var args []interface{}

	set := func(column string, value interface{}) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}

	if req.Email != nil {
		set("email", *req.Email)
	}
	if req.Username != nil {
		set("username", *req.Username)
	}
	if req.Password != nil {
		set("password", *req.Password)
	}
	if req.FirstName != nil {
		set("first_name", *req.FirstName)
	}
	if req.LastName != nil {
		set("last_name", *req.LastName)
	}
	if req.Role != nil {
		set("role", *req.Role)
	}
	if req.Permissions != nil {
		perms, err := json.Marshal(*req.Permissions)
		if err != nil {
			return nil, fmt.Errorf("marshal permissions: %w", err)
		}
		set("permissions", string(perms))
	}
	if req.IsAdmin != nil {
		set("is_admin", *req.IsAdmin)
	}
	if req.Points != nil {
		set("points", *req.Points)
	}
	if req.Level != nil {
		set("level", *req.Level)
	}
	if req.Grade != nil {
		set("grade", *req.Grade)
	}
	if req.State != nil {
		set("state", *req.State)
	}
	if req.School != nil {
		set("school", *req.School)
	}
	if req.ParentEmail != nil {
		set("parent_email", *req.ParentEmail)
	}

	if len(sets) == 0 {
		return db.GetUserByID(ctx, id)
	}

	set("updated_at", nowUTC())
	args = append(args, id)

	res, err := db.conn.ExecContext(ctx,
		`UPDATE users SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		if isConstraintViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return nil, ErrNotFound
	}
	return db.GetUserByID(ctx, id)
}

// DeleteUser removes a user and their submissions, actions, and page
// views. Returns ErrNotFound for unknown ids.
func (db *DB) DeleteUser(ctx context.Context, id string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete user: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNotFound
	}

	for _, stmt := range []string{
		`DELETE FROM submissions WHERE user_id = ?`,
		`DELETE FROM user_actions WHERE user_id = ?`,
		`DELETE FROM page_views WHERE user_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			return fmt.Errorf("delete user data: %w", err)
		}
	}
	return tx.Commit()
}

// TouchLastLogin stamps the user's last login time.
func (db *DB) TouchLastLogin(ctx context.Context, id string) error {
	_, err := db.conn.ExecContext(ctx,
		`UPDATE users SET last_login_at = ? WHERE id = ?`, nowUTC(), id)
	if err != nil {
		return fmt.Errorf("touch last login: %w", err)
	}
	return nil
}

// LeaderboardFilter narrows the leaderboard.
type LeaderboardFilter struct {
	State string
	Grade *int
	Limit int
}

// Leaderboard returns ranked students ordered by points descending,
// level descending, then account age ascending. Rank is assigned after
// filtering, so a state-filtered board ranks within that state.
func (db *DB) Leaderboard(ctx context.Context, filter LeaderboardFilter) ([]models.LeaderboardEntry, error) {
	conds := []string{"role = ?"}
	args := []interface{}{models.RoleStudent}

	if filter.State != "" {
		conds = append(conds, "state = ?")
		args = append(args, filter.State)
	}
	if filter.Grade != nil {
		conds = append(conds, "grade = ?")
		args = append(args, *filter.Grade)
	}

	limit := filter.Limit
	if limit < 1 || limit > 100 {
		limit = 50
	}
	args = append(args, limit)

	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, username, first_name, points, level, grade, state
		FROM users
		WHERE `+strings.Join(conds, " AND ")+`
		ORDER BY points DESC, level DESC, created_at ASC
		LIMIT ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("leaderboard query: %w", err)
	}
	defer rows.Close()

	var entries []models.LeaderboardEntry
	rank := 0
	for rows.Next() {
		rank++
		var e models.LeaderboardEntry
		var grade sql.NullInt32
		var state sql.NullString
		if err := rows.Scan(&e.ID, &e.Username, &e.FirstName, &e.Points, &e.Level, &grade, &state); err != nil {
			return nil, fmt.Errorf("scan leaderboard row: %w", err)
		}
		e.Rank = rank
		if grade.Valid {
			g := int(grade.Int32)
			e.Grade = &g
		}
		e.State = state.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row *sql.Row) (*models.User, error) {
	u, err := scanUserFrom(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func scanUserRows(rows *sql.Rows) (*models.User, error) {
	return scanUserFrom(rows)
}

func scanUserFrom(s rowScanner) (*models.User, error) {
	var u models.User
	var perms string
	var grade sql.NullInt32
	var state, school, parentEmail sql.NullString
	var lastLogin sql.NullTime

	err := s.Scan(&u.ID, &u.Email, &u.Username, &u.Password, &u.FirstName,
		&u.LastName, &u.Role, &perms, &u.IsAdmin, &u.Points, &u.Level,
		&grade, &state, &school, &parentEmail, &u.ParentApproved,
		&lastLogin, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	if err := json.Unmarshal([]byte(perms), &u.Permissions); err != nil {
		u.Permissions = []string{}
	}
	if grade.Valid {
		g := int(grade.Int32)
		u.Grade = &g
	}
	u.State = state.String
	u.School = school.String
	u.ParentEmail = parentEmail.String
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLoginAt = &t
	}
	return &u, nil
}
