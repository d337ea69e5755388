// StemQuest - Student STEM Challenge Platform
// Copyright 2026 StemQuest Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stemquest/stemquest

// Package validation provides struct validation using go-playground/validator
// v10. A thread-safe singleton validator carries the custom rules the
// platform needs beyond the built-ins:
//
//   - username_charset: letters, digits, underscore, hyphen only
//   - platform_role: one of the known role names
//
// Example:
//
//	if err := validation.ValidateStruct(&req); err != nil {
//	    respondError(w, http.StatusBadRequest, models.CodeValidation, err.Error())
//	    return
//	}
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/stemquest/stemquest/internal/models"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// usernamePattern restricts usernames to a URL- and display-safe charset.
var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// reservedUsernames can never be claimed at signup, case-insensitively,
// nor appear as a substring of a chosen username.
var reservedUsernames = []string{
	"admin", "administrator", "moderator", "root", "system",
	"support", "staff", "official", "stemquest",
}

// GetValidator returns the singleton validator instance.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Registration errors only occur for invalid tag names or nil
		// functions, neither of which can happen here.
		_ = validate.RegisterValidation("username_charset", func(fl validator.FieldLevel) bool {
			return usernamePattern.MatchString(fl.Field().String())
		})
		_ = validate.RegisterValidation("platform_role", func(fl validator.FieldLevel) bool {
			return models.ValidRole(fl.Field().String())
		})
	})
	return validate
}

// AcceptableUsername reports whether the username avoids reserved and
// impersonation-prone words. Charset and length are checked separately by
// the username_charset and min/max tags.
func AcceptableUsername(username string) bool {
	lower := strings.ToLower(username)
	for _, word := range reservedUsernames {
		if strings.Contains(lower, word) {
			return false
		}
	}
	return true
}

// ValidationError is a single field failure.
type ValidationError struct {
	Field   string
	Tag     string
	Param   string
	Message string
}

// Error returns the human-readable message.
func (e *ValidationError) Error() string {
	return e.Message
}

// RequestValidationError collects every field failure of one request.
type RequestValidationError struct {
	errs []ValidationError
}

// Errors returns the individual field errors.
func (ve *RequestValidationError) Errors() []ValidationError {
	return ve.errs
}

// Error joins all field messages into one string.
func (ve *RequestValidationError) Error() string {
	if len(ve.errs) == 0 {
		return "validation failed"
	}
	messages := make([]string, len(ve.errs))
	for i, err := range ve.errs {
		messages[i] = err.Message
	}
	return strings.Join(messages, "; ")
}

// ValidateStruct validates s with the singleton validator.
// Returns nil on success, or *RequestValidationError listing every failed
// field with a human-readable message.
func ValidateStruct(s interface{}) *RequestValidationError {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return &RequestValidationError{errs: []ValidationError{
			{Field: "unknown", Tag: "unknown", Message: err.Error()},
		}}
	}

	fieldErrors := make([]ValidationError, len(validationErrs))
	for i, fieldErr := range validationErrs {
		fieldErrors[i] = ValidationError{
			Field:   fieldErr.Field(),
			Tag:     fieldErr.Tag(),
			Param:   fieldErr.Param(),
			Message: translateError(fieldErr),
		}
	}
	return &RequestValidationError{errs: fieldErrors}
}

// errorMessageTemplates maps validation tags to message templates.
var errorMessageTemplates = map[string]string{
	"required":         "%s is required",
	"email":            "%s must be a valid email address",
	"url":              "%s must be a valid URL",
	"uuid":             "%s must be a valid UUID",
	"hexcolor":         "%s must be a hex color like #1a2b3c",
	"username_charset": "%s may only contain letters, numbers, underscores, and hyphens",
	"platform_role":    "%s must be a known role",
}

// errorMessageWithParam maps tags to templates that include the parameter.
var errorMessageWithParam = map[string]string{
	"oneof":   "%s must be one of: %s",
	"gte":     "%s must be greater than or equal to %s",
	"lte":     "%s must be less than or equal to %s",
	"gtfield": "%s must be after %s",
}

// translateError converts a validator.FieldError to a readable message.
func translateError(fe validator.FieldError) string {
	field := fe.Field()
	tag := fe.Tag()
	param := fe.Param()

	if template, ok := errorMessageTemplates[tag]; ok {
		return fmt.Sprintf(template, field)
	}
	if template, ok := errorMessageWithParam[tag]; ok {
		return fmt.Sprintf(template, field, param)
	}

	isString := fe.Kind().String() == "string"
	switch tag {
	case "min":
		if isString {
			return fmt.Sprintf("%s must be at least %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		if isString {
			return fmt.Sprintf("%s must be at most %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at most %s", field, param)
	default:
		return fmt.Sprintf("%s failed %s validation", field, tag)
	}
}
