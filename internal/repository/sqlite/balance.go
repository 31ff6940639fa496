package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/halalchat/backend/internal/apperror"
	"github.com/halalchat/backend/internal/model"
	"github.com/halalchat/backend/internal/repository"
)

// compile-time check that *DB implements repository.BalanceRepository
var _ repository.BalanceRepository = (*DB)(nil)

// EnsureBalance lazily creates the balance row with the given starting grant.
// INSERT OR IGNORE makes the create idempotent: concurrent first requests for
// the same user race harmlessly, exactly one insert wins, and both callers
// read the same row back.
func (db *DB) EnsureBalance(ctx context.Context, userID string, grant int64) (*model.CreditBalance, error) {
	_, err := db.conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO credit_balances (user_id, total_credits, referral_credits, ad_credits, updated_at)
		 VALUES (?, ?, 0, 0, ?)`,
		userID, grant, time.Now(),
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: ensuring balance for %s: %w", userID, err)
	}

	return db.GetBalance(ctx, userID)
}

// GetBalance returns the balance row, or apperror.ErrNotFound.
func (db *DB) GetBalance(ctx context.Context, userID string) (*model.CreditBalance, error) {
	var b model.CreditBalance

	err := db.conn.QueryRowContext(ctx,
		`SELECT user_id, total_credits, referral_credits, ad_credits, updated_at
		 FROM credit_balances WHERE user_id = ?`,
		userID,
	).Scan(
		&b.UserID,
		&b.TotalCredits,
		&b.ReferralCredits,
		&b.AdCredits,
		&b.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("credit balance", userID)
		}
		return nil, fmt.Errorf("sqlite: getting balance for %s: %w", userID, err)
	}

	return &b, nil
}

// DebitCredit charges one credit. The WHERE clause is the concurrency guard:
// the decrement only applies while total_credits is positive, so N racing
// debits for a user with balance B succeed at most B times and the balance
// never goes negative. Zero rows affected means the user cannot pay.
func (db *DB) DebitCredit(ctx context.Context, userID string) (*model.CreditBalance, error) {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE credit_balances
		 SET total_credits = total_credits - 1, updated_at = ?
		 WHERE user_id = ? AND total_credits > 0`,
		time.Now(), userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: debiting credit for %s: %w", userID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, apperror.InsufficientCredits(userID)
	}

	return db.GetBalance(ctx, userID)
}

// AddReferralBonus grants the referrer's reward. The upsert keeps both paths
// atomic: a fresh referrer gets exactly {total:1, referral:1}; an existing
// one gets both counters incremented server-side, never read-then-written.
func (db *DB) AddReferralBonus(ctx context.Context, userID string) (*model.CreditBalance, error) {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO credit_balances (user_id, total_credits, referral_credits, ad_credits, updated_at)
		 VALUES (?, 1, 1, 0, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
			total_credits = total_credits + 1,
			referral_credits = referral_credits + 1,
			updated_at = excluded.updated_at`,
		userID, time.Now(),
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: adding referral bonus for %s: %w", userID, err)
	}

	return db.GetBalance(ctx, userID)
}

// AddCredits atomically adds n to total_credits, creating the row with
// total_credits = n when the user has no balance yet.
func (db *DB) AddCredits(ctx context.Context, userID string, n int64) (*model.CreditBalance, error) {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO credit_balances (user_id, total_credits, referral_credits, ad_credits, updated_at)
		 VALUES (?, ?, 0, 0, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
			total_credits = total_credits + excluded.total_credits,
			updated_at = excluded.updated_at`,
		userID, n, time.Now(),
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: adding %d credits for %s: %w", n, userID, err)
	}

	return db.GetBalance(ctx, userID)
}
