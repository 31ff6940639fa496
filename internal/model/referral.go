package model

import "time"

// Referral records that ReferrerID invited ReferredID. The ordered pair is
// unique (backed by a UNIQUE index) so credits are granted at most once per
// pair no matter how many times the signup flow fires.
type Referral struct {
	ID         string    `json:"id"         db:"id"`
	ReferrerID string    `json:"referrerId" db:"referrer_id"`
	ReferredID string    `json:"referredId" db:"referred_id"`
	CreatedAt  time.Time `json:"createdAt"  db:"created_at"`
}
