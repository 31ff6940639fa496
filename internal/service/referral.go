package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/halalchat/backend/internal/apperror"
	"github.com/halalchat/backend/internal/metrics"
	"github.com/halalchat/backend/internal/model"
	"github.com/halalchat/backend/internal/repository"
)

// ReferredCreditBonus is granted to the referred (new) user when their
// referral is recorded. The referrer's bonus is a single credit, applied
// atomically by the balance store.
const ReferredCreditBonus = 3

// ReferralService records referrals and applies both credit bonuses.
// Processing is idempotent per (referrer, referred) pair.
type ReferralService struct {
	referrals repository.ReferralRepository
	balances  repository.BalanceRepository
	users     repository.UserRepository
	logger    *slog.Logger
}

func NewReferralService(
	referrals repository.ReferralRepository,
	balances repository.BalanceRepository,
	users repository.UserRepository,
	logger *slog.Logger,
) *ReferralService {
	return &ReferralService{
		referrals: referrals,
		balances:  balances,
		users:     users,
		logger:    logger,
	}
}

// Process records the referral and grants credits. The returned bool is true
// when this call recorded a new referral; a pair that was already recorded
// is a silent no-op (false, nil) and grants nothing.
func (s *ReferralService) Process(ctx context.Context, referrerID, referredID string) (bool, error) {
	referrerID = strings.TrimSpace(referrerID)
	referredID = strings.TrimSpace(referredID)

	if referrerID == "" {
		return false, apperror.ValidationFailed("referrerId", "referrer ID is required")
	}
	if referredID == "" {
		return false, apperror.ValidationFailed("referredId", "referred user ID is required")
	}
	if referrerID == referredID {
		return false, apperror.ValidationFailed("referredId", "users cannot refer themselves")
	}

	// An unknown user makes the request invalid, not the resource missing:
	// callers get a 400 for a bad id on either side.
	for _, check := range []struct{ field, id string }{
		{"referrerId", referrerID},
		{"referredId", referredID},
	} {
		exists, err := s.users.UserExists(ctx, check.id)
		if err != nil {
			return false, apperror.Upstream("user lookup", err)
		}
		if !exists {
			return false, apperror.ValidationFailed(check.field,
				fmt.Sprintf("user %s does not exist", check.id))
		}
	}

	exists, err := s.referrals.ReferralExists(ctx, referrerID, referredID)
	if err != nil {
		return false, apperror.Upstream("referral lookup", err)
	}
	if exists {
		metrics.ReferralsTotal.WithLabelValues("duplicate").Inc()
		return false, nil
	}

	err = s.referrals.CreateReferral(ctx, &model.Referral{
		ReferrerID: referrerID,
		ReferredID: referredID,
	})
	if err != nil {
		// A concurrent request for the same pair can win the insert; the
		// unique index turns that into a conflict, which is the duplicate
		// case, not a failure.
		if errors.Is(err, apperror.ErrConflict) {
			metrics.ReferralsTotal.WithLabelValues("duplicate").Inc()
			return false, nil
		}
		return false, apperror.Upstream("referral insert", err)
	}

	if _, err := s.balances.AddReferralBonus(ctx, referrerID); err != nil {
		return false, apperror.Upstream("referrer credit grant", err)
	}
	if _, err := s.balances.AddCredits(ctx, referredID, ReferredCreditBonus); err != nil {
		return false, apperror.Upstream("referred credit grant", err)
	}

	metrics.ReferralsTotal.WithLabelValues("recorded").Inc()
	s.logger.Info("referral recorded",
		slog.String("referrer_id", referrerID),
		slog.String("referred_id", referredID),
	)
	return true, nil
}
