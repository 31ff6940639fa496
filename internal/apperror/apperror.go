// Package apperror defines the error taxonomy shared by the service and
// handler layers. Services return these; handlers translate them to HTTP.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrValidation          = errors.New("validation error")
	ErrConflict            = errors.New("conflict")
	ErrForbidden           = errors.New("forbidden")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrPolicyViolation     = errors.New("policy violation")
	ErrUpstream            = errors.New("upstream error")
)

type AppError struct {
	Err     error  // sentinel this error wraps
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// InsufficientCredits is the business-rule failure for a user whose balance
// cannot cover a generation. Never retried; handlers map it to 403.
func InsufficientCredits(userID string) *AppError {
	return &AppError{
		Err:     ErrInsufficientCredits,
		Message: "not enough credits to generate content",
		Field:   userID,
	}
}

// Upstream wraps a failure from an external collaborator (the inference API
// or the data store). Handlers map it to 500 without exposing the cause; the
// cause stays on the error chain for logs.
func Upstream(operation string, err error) *AppError {
	return &AppError{
		Err:     fmt.Errorf("%w: %w", ErrUpstream, err),
		Message: fmt.Sprintf("upstream failure during %s", operation),
	}
}

// PolicyViolation is a designed outcome, not a system fault: the prompt was
// classified as non-compliant. It carries everything the caller needs to
// revise the prompt. The request is never charged a credit.
type PolicyViolation struct {
	Explanation string   // why the prompt was rejected
	Phrases     []string // offending substrings, deduplicated
	Suggestion  string   // best-effort compliant rewrite
}

func (e *PolicyViolation) Error() string {
	return "prompt violates content policy"
}

func (e *PolicyViolation) Unwrap() error {
	return ErrPolicyViolation
}
