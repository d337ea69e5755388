// StemQuest - Student STEM Challenge Platform
// Copyright 2026 StemQuest Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stemquest/stemquest

package api

import (
	"errors"
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/stemquest/stemquest/internal/authz"
	"github.com/stemquest/stemquest/internal/database"
	"github.com/stemquest/stemquest/internal/logging"
	"github.com/stemquest/stemquest/internal/models"
	"github.com/stemquest/stemquest/internal/validation"
)

// respondJSON writes v with the given status. Encoding failures are
// logged; the status line has already been sent by then.
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Err(err).Msg("Failed to encode response")
	}
}

// respondError writes the flat error shape with an explicit status.
func respondError(w http.ResponseWriter, status int, message, code string) {
	respondJSON(w, status, models.ErrorResponse{Error: message, Code: code})
}

// respondMappedError translates err through the central mapping and
// writes it. Every handler funnels its failures through here so status
// codes stay consistent across the whole API.
func respondMappedError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, message := mapError(err)
	if status == http.StatusInternalServerError {
		logging.Ctx(r.Context()).Error().
			Err(err).
			Str("path", r.URL.Path).
			Msg("Request failed")
	}
	respondError(w, status, message, code)
}

// errBadJSON marks an unparseable request body.
var errBadJSON = errors.New("invalid JSON body")

// mapError is the single error-to-status mapping.
func mapError(err error) (status int, code, message string) {
	var ve *validation.RequestValidationError
	switch {
	case errors.Is(err, errBadJSON):
		return http.StatusBadRequest, models.CodeValidation, "Invalid JSON body"
	case errors.As(err, &ve):
		return http.StatusBadRequest, models.CodeValidation, ve.Error()
	case errors.Is(err, authz.ErrUnauthenticated):
		return http.StatusUnauthorized, models.CodeUnauthenticated, "Authentication required"
	case errors.Is(err, authz.ErrForbidden):
		return http.StatusForbidden, models.CodeForbidden, "Insufficient privileges"
	case errors.Is(err, database.ErrNotFound):
		return http.StatusNotFound, models.CodeNotFound, "Resource not found"
	case errors.Is(err, database.ErrDuplicate):
		return http.StatusConflict, models.CodeConflict, "Resource already exists"
	case errors.Is(err, database.ErrInUse):
		return http.StatusConflict, models.CodeConflict, "Resource is still referenced"
	case errors.Is(err, database.ErrInvalidState):
		return http.StatusBadRequest, models.CodeValidation, "Operation not allowed in the current state"
	case errors.Is(err, database.ErrNoRecipients):
		return http.StatusBadRequest, models.CodeValidation, "Campaign has no recipients"
	default:
		return http.StatusInternalServerError, models.CodeInternal, "Internal server error"
	}
}

// decodeBody decodes a JSON request body into dst and validates it.
func decodeBody(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errBadJSON
	}
	if verr := validation.ValidateStruct(dst); verr != nil {
		return verr
	}
	return nil
}
