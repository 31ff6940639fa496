package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/halalchat/backend/internal/apperror"
)

// IdentityAdmin is the slice of the identity provider's admin API the
// auxiliary endpoints need.
type IdentityAdmin interface {
	CheckEmailConfirmed(ctx context.Context, email string) (bool, error)
	ConfirmUser(ctx context.Context, email string) error
}

// AuthHandler serves the auxiliary email-confirmation endpoints backed by the
// external identity provider.
type AuthHandler struct {
	admin  IdentityAdmin
	logger *slog.Logger
}

func NewAuthHandler(admin IdentityAdmin, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{admin: admin, logger: logger}
}

type emailRequest struct {
	Email string `json:"email"`
}

func decodeEmail(r *http.Request) (string, error) {
	var req emailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return "", apperror.ValidationFailed("body", "invalid JSON body")
	}
	email := strings.TrimSpace(req.Email)
	if email == "" {
		return "", apperror.ValidationFailed("email", "email is required")
	}
	return email, nil
}

// HandleCheckEmailConfirmed reports whether the account's email is confirmed.
//
// POST /api/auth/check-email-confirmed
// Body: {email} → {confirmed}
func (h *AuthHandler) HandleCheckEmailConfirmed(w http.ResponseWriter, r *http.Request) {
	email, err := decodeEmail(r)
	if err != nil {
		writeError(w, err)
		return
	}

	confirmed, err := h.admin.CheckEmailConfirmed(r.Context(), email)
	if err != nil {
		h.logger.Error("email confirmation check failed", slog.String("error", err.Error()))
		writeError(w, apperror.Upstream("email confirmation check", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"confirmed": confirmed})
}

// HandleDevConfirmUser force-confirms an account through the admin API.
// Routed only when dev endpoints are enabled in config.
//
// POST /api/auth/dev-confirm-user
// Body: {email} → {success}
func (h *AuthHandler) HandleDevConfirmUser(w http.ResponseWriter, r *http.Request) {
	email, err := decodeEmail(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.admin.ConfirmUser(r.Context(), email); err != nil {
		h.logger.Error("dev confirm failed", slog.String("error", err.Error()))
		writeError(w, apperror.Upstream("user confirmation", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
