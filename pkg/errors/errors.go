/*
Copyright © 2025 Herdwise Authors
SPDX-License-Identifier: Apache-2.0
*/
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a structured error classification.
type ErrorCode string

const (
	// ErrCodeInvalidGroupCount indicates a group count outside {1, 2, 3}.
	ErrCodeInvalidGroupCount ErrorCode = "INVALID_GROUP_COUNT"
	// ErrCodeMissingCriterion indicates the chosen grouping criterion is
	// absent from one or more cow records.
	ErrCodeMissingCriterion ErrorCode = "MISSING_CRITERION"
	// ErrCodeUnknownForageIngredient indicates a configured forage name that
	// does not exist in the ingredient library.
	ErrCodeUnknownForageIngredient ErrorCode = "UNKNOWN_FORAGE_INGREDIENT"
	// ErrCodeIngredientNotInLibrary indicates an ingredient referenced by the
	// min/max or price table that is absent from the nutrient library, or a
	// library ingredient with no price.
	ErrCodeIngredientNotInLibrary ErrorCode = "INGREDIENT_NOT_IN_LIBRARY"
	// ErrCodeInvalidConfig indicates malformed run configuration: inverted
	// inclusion bounds, tolerance fractions outside (0,1), negative weights,
	// or unrecognized enum values.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
	// ErrCodeInfeasibleModel indicates the solver found no feasible point for
	// a group's linear program.
	ErrCodeInfeasibleModel ErrorCode = "INFEASIBLE_MODEL"
	// ErrCodeUnboundedModel indicates the objective has no finite minimum,
	// typically a sign of a missing upper bound.
	ErrCodeUnboundedModel ErrorCode = "UNBOUNDED_MODEL"
	// ErrCodeInternal indicates an internal system error.
	ErrCodeInternal ErrorCode = "INTERNAL"
)

// StructuredError provides structured error information for better observability.
// It includes an error code for programmatic handling, a human-readable message,
// the underlying cause, and optional context for debugging.
type StructuredError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *StructuredError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is and errors.As support.
func (e *StructuredError) Unwrap() error {
	return e.Cause
}

// New creates a new StructuredError with the given code and message.
func New(code ErrorCode, message string) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new StructuredError with a formatted message.
func Newf(code ErrorCode, format string, args ...any) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// NewWithContext creates a new StructuredError with context information.
func NewWithContext(code ErrorCode, message string, context map[string]any) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
		Context: context,
	}
}

// Wrap wraps an existing error with additional context.
func Wrap(code ErrorCode, message string, cause error) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WrapWithContext wraps an error with additional context information.
func WrapWithContext(code ErrorCode, message string, cause error, context map[string]any) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
		Cause:   cause,
		Context: context,
	}
}

// CodeOf returns the ErrorCode of err if it is (or wraps) a StructuredError,
// and ErrCodeInternal otherwise.
func CodeOf(err error) ErrorCode {
	var se *StructuredError
	if stderrors.As(err, &se) {
		return se.Code
	}
	return ErrCodeInternal
}

// IsCode reports whether err is (or wraps) a StructuredError with the given code.
func IsCode(err error, code ErrorCode) bool {
	var se *StructuredError
	if stderrors.As(err, &se) {
		return se.Code == code
	}
	return false
}
