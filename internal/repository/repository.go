// Package repository declares the data-access interfaces the service layer
// depends on. The sqlite subpackage provides the concrete implementation;
// tests substitute in-memory fakes.
package repository

import (
	"context"

	"github.com/halalchat/backend/internal/model"
)

type ListOptions struct {
	Limit  int
	Offset int
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	UserExists(ctx context.Context, id string) (bool, error)
}

// BalanceRepository is the credit ledger. Every mutation is expressed as an
// atomic increment/decrement at the store — callers never read a balance and
// write a derived value back.
type BalanceRepository interface {
	// EnsureBalance creates the user's balance row with the given starting
	// grant if it does not exist, then returns the current row. Idempotent.
	EnsureBalance(ctx context.Context, userID string, grant int64) (*model.CreditBalance, error)

	// GetBalance returns the balance row, or apperror.ErrNotFound.
	GetBalance(ctx context.Context, userID string) (*model.CreditBalance, error)

	// DebitCredit decrements total_credits by one, but only if the current
	// value is positive. Returns apperror.ErrInsufficientCredits when the
	// conditional update matches no row (zero balance or missing row).
	DebitCredit(ctx context.Context, userID string) (*model.CreditBalance, error)

	// AddReferralBonus grants the referrer's reward: +1 total, +1 referral.
	// Creates the row with exactly those values when absent.
	AddReferralBonus(ctx context.Context, userID string) (*model.CreditBalance, error)

	// AddCredits atomically adds n to total_credits, creating the row with
	// total_credits = n when absent.
	AddCredits(ctx context.Context, userID string, n int64) (*model.CreditBalance, error)
}

type ArtifactRepository interface {
	CreateArtifact(ctx context.Context, artifact *model.ContentArtifact) error
	GetArtifactByID(ctx context.Context, id string) (*model.ContentArtifact, error)
	ListArtifactsByUser(ctx context.Context, userID string, opts ListOptions) ([]model.ContentArtifact, error)
}

type ReferralRepository interface {
	// CreateReferral inserts the record for the ordered pair. Returns
	// apperror.ErrConflict when the pair already exists.
	CreateReferral(ctx context.Context, referral *model.Referral) error
	ReferralExists(ctx context.Context, referrerID, referredID string) (bool, error)
}
