package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/halalchat/backend/internal/apperror"
	"github.com/halalchat/backend/internal/model"
)

// UserRegistrar registers users and reads balances.
type UserRegistrar interface {
	Register(ctx context.Context, id, email, displayName string) (*model.User, error)
	GetBalance(ctx context.Context, userID string) (*model.CreditBalance, error)
}

type UserHandler struct {
	users  UserRegistrar
	logger *slog.Logger
}

func NewUserHandler(users UserRegistrar, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

type registerRequest struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

// HandleRegister creates a user record with the signup credit grant.
//
// POST /api/users
// Body: {id?, email, displayName?}
func (h *UserHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	user, err := h.users.Register(r.Context(), req.ID, req.Email, req.DisplayName)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// HandleGetCredits returns the user's credit balance.
//
// GET /api/credits/{userId}
func (h *UserHandler) HandleGetCredits(w http.ResponseWriter, r *http.Request) {
	balance, err := h.users.GetBalance(r.Context(), r.PathValue("userId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balance)
}
