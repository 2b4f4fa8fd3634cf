// Copyright 2026 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

// Package exceptions provides error types used throughout Quickboard
package exceptions

import (
	"errors"
	"fmt"
)

// UserError is an error that must rollback the current transaction and
// be displayed as a warning to the user.
type UserError struct {
	Message string
	Debug   string
}

// Error method for the UserError type.
// Returns the message.
func (u UserError) Error() string {
	if u.Debug == "" {
		return u.Message
	}
	return fmt.Sprintf("%s\n----------------------------------\n%s", u.Message, u.Debug)
}

// A ValidationError is returned when the caller's input does not
// satisfy a precondition. Nothing has been modified.
type ValidationError struct {
	Message string
}

// Error method for the ValidationError type
func (v ValidationError) Error() string {
	return v.Message
}

// UserError returns this error as a UserError
func (v ValidationError) UserError() UserError {
	return UserError{Message: v.Message}
}

// A GenerationError is returned when a dashboard generation fails
// after its input has been validated. Cause holds the underlying error.
type GenerationError struct {
	Message string
	Cause   error
}

// Error method for the GenerationError type
func (g GenerationError) Error() string {
	if g.Cause == nil {
		return g.Message
	}
	return fmt.Sprintf("%s: %s", g.Message, g.Cause)
}

// Unwrap returns the cause of the error
func (g GenerationError) Unwrap() error {
	return g.Cause
}

// UserError returns this error as a UserError, with the cause as debug information
func (g GenerationError) UserError() UserError {
	res := UserError{Message: g.Message}
	if g.Cause != nil {
		res.Debug = g.Cause.Error()
	}
	return res
}

// ToUserError converts err to a UserError.
//
// Errors that are not one of the types of this package are
// reported with a generic message and their text as debug data.
func ToUserError(err error) UserError {
	var (
		ue UserError
		ve ValidationError
		ge GenerationError
	)
	switch {
	case errors.As(err, &ue):
		return ue
	case errors.As(err, &ve):
		return ve.UserError()
	case errors.As(err, &ge):
		return ge.UserError()
	}
	return UserError{
		Message: "Quickboard Server Error",
		Debug:   err.Error(),
	}
}
