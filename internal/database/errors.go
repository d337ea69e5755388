// StemQuest - Student STEM Challenge Platform
// Copyright 2026 StemQuest Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stemquest/stemquest

package database

import (
	"errors"
	"strings"
)

// Sentinel errors returned by store methods. The API layer maps these to
// HTTP statuses in one place; handlers never inspect SQL errors.
var (
	// ErrNotFound: the requested row does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate: a uniqueness constraint was violated (duplicate
	// email, username, category name, or submission).
	ErrDuplicate = errors.New("record already exists")

	// ErrInUse: the row is referenced by other rows and cannot be
	// deleted (e.g. a category with challenges).
	ErrInUse = errors.New("record is in use")

	// ErrInvalidState: the operation does not apply to the row's
	// current state (e.g. sending an already-sent campaign).
	ErrInvalidState = errors.New("operation not valid for current state")
)

// isConstraintViolation reports whether err is a DuckDB unique or primary
// key constraint failure. The driver surfaces these as plain errors, so
// detection is by message.
func isConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Constraint Error") ||
		strings.Contains(msg, "Duplicate key") ||
		strings.Contains(msg, "violates unique constraint") ||
		strings.Contains(msg, "violates primary key constraint")
}
