package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/halalchat/backend/internal/apperror"
	"github.com/halalchat/backend/internal/model"
	"github.com/halalchat/backend/internal/repository"
)

const MaxDisplayNameLength = 100

// UserService registers users and reads credit balances. Registration
// applies the signup credit grant.
type UserService struct {
	users    repository.UserRepository
	balances repository.BalanceRepository
	logger   *slog.Logger
}

func NewUserService(users repository.UserRepository, balances repository.BalanceRepository, logger *slog.Logger) *UserService {
	return &UserService{
		users:    users,
		balances: balances,
		logger:   logger,
	}
}

// Register creates a user record and their starting balance. The id is
// optional: when the identity provider supplies its subject we keep it,
// otherwise the store generates one.
func (s *UserService) Register(ctx context.Context, id, email, displayName string) (*model.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, apperror.ValidationFailed("email", "email is required")
	}
	if !strings.Contains(email, "@") {
		return nil, apperror.ValidationFailed("email", "email is not valid")
	}
	displayName = strings.TrimSpace(displayName)
	if len(displayName) > MaxDisplayNameLength {
		return nil, apperror.ValidationFailed("displayName",
			fmt.Sprintf("display name must be %d characters or less", MaxDisplayNameLength))
	}

	user := &model.User{
		ID:          strings.TrimSpace(id),
		Email:       email,
		DisplayName: displayName,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	if _, err := s.balances.EnsureBalance(ctx, user.ID, SignupCreditGrant); err != nil {
		// The user row exists; a missing balance row will be created lazily
		// on their first generation, so this is log-only.
		s.logger.Error("signup grant failed",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.Info("user registered", slog.String("user_id", user.ID))
	return user, nil
}

// GetBalance returns the user's credit balance, creating it with the signup
// grant if the user has none yet.
func (s *UserService) GetBalance(ctx context.Context, userID string) (*model.CreditBalance, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperror.ValidationFailed("userId", "user ID is required")
	}

	exists, err := s.users.UserExists(ctx, userID)
	if err != nil {
		return nil, apperror.Upstream("user lookup", err)
	}
	if !exists {
		return nil, apperror.NotFound("user", userID)
	}

	balance, err := s.balances.EnsureBalance(ctx, userID, SignupCreditGrant)
	if err != nil {
		return nil, apperror.Upstream("balance lookup", err)
	}
	return balance, nil
}
