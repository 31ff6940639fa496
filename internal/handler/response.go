// Package handler is the HTTP layer: request parsing, response shaping, and
// the single place where domain errors become status codes.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/halalchat/backend/internal/apperror"
)

// ErrorResponse is the standard error shape returned by all endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// PolicyViolationResponse is the 403 body for a rejected prompt. It carries
// the material the caller needs to revise and resubmit.
type PolicyViolationResponse struct {
	Error           string   `json:"error"`
	Details         string   `json:"details"`
	HaramPhrases    []string `json:"haramPhrases"`
	HalalSuggestion string   `json:"halalSuggestion"`
}

// writeJSON sends a JSON response with the given status code. Headers must be
// set before the first body write.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to its HTTP response. This is the only
// place that mapping lives.
func writeError(w http.ResponseWriter, err error) {
	// A policy violation has its own richer body.
	var violation *apperror.PolicyViolation
	if errors.As(err, &violation) {
		phrases := violation.Phrases
		if phrases == nil {
			phrases = []string{}
		}
		writeJSON(w, http.StatusForbidden, PolicyViolationResponse{
			Error:           "policy_violation",
			Details:         violation.Explanation,
			HaramPhrases:    phrases,
			HalalSuggestion: violation.Suggestion,
		})
		return
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		errorType := "internal_error"

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
			errorType = "validation_error"
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
			errorType = "not_found"
		case errors.Is(err, apperror.ErrInsufficientCredits):
			status = http.StatusForbidden
			errorType = "insufficient_credits"
		case errors.Is(err, apperror.ErrForbidden):
			status = http.StatusForbidden
			errorType = "forbidden"
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict
			errorType = "conflict"
		case errors.Is(err, apperror.ErrUpstream):
			status = http.StatusInternalServerError
			errorType = "upstream_error"
		}

		writeJSON(w, status, ErrorResponse{
			Error:   errorType,
			Message: appErr.Message,
		})
		return
	}

	// Unknown error: generic 500, no internal detail leaks to the client.
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}
