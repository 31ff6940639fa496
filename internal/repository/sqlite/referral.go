package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/halalchat/backend/internal/apperror"
	"github.com/halalchat/backend/internal/model"
	"github.com/halalchat/backend/internal/repository"
)

// compile-time check that *DB implements repository.ReferralRepository
var _ repository.ReferralRepository = (*DB)(nil)

// CreateReferral inserts the record for the ordered (referrer, referred)
// pair. The UNIQUE index on the pair turns a racing duplicate insert into
// apperror.ErrConflict, which the service treats as the idempotent no-op —
// the existence pre-check alone cannot close that window.
func (db *DB) CreateReferral(ctx context.Context, referral *model.Referral) error {
	referral.ID = xid.New().String()
	referral.CreatedAt = time.Now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO referrals (id, referrer_id, referred_id, created_at)
		 VALUES (?, ?, ?, ?)`,
		referral.ID,
		referral.ReferrerID,
		referral.ReferredID,
		referral.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("referral", referral.ReferrerID+"/"+referral.ReferredID)
		}
		return fmt.Errorf("sqlite: creating referral: %w", err)
	}

	return nil
}

// ReferralExists reports whether a record for the exact ordered pair exists.
func (db *DB) ReferralExists(ctx context.Context, referrerID, referredID string) (bool, error) {
	var one int
	err := db.conn.QueryRowContext(ctx,
		`SELECT 1 FROM referrals WHERE referrer_id = ? AND referred_id = ?`,
		referrerID, referredID,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("sqlite: checking referral %s/%s: %w", referrerID, referredID, err)
	}
	return true, nil
}
