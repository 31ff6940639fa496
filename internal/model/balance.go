package model

import "time"

// CreditBalance is the per-user credit account. Exactly one row per user,
// created lazily with the signup grant on first access.
//
// TotalCredits is the spendable pool; ReferralCredits and AdCredits track how
// much of the lifetime total came from referrals and rewarded ads. The store
// guarantees TotalCredits never goes below zero — every mutation is an atomic
// increment or a conditional decrement, never read-modify-write.
type CreditBalance struct {
	UserID          string    `json:"userId"          db:"user_id"`
	TotalCredits    int64     `json:"totalCredits"    db:"total_credits"`
	ReferralCredits int64     `json:"referralCredits" db:"referral_credits"`
	AdCredits       int64     `json:"adCredits"       db:"ad_credits"`
	UpdatedAt       time.Time `json:"updatedAt"       db:"updated_at"`
}
