// Package model defines the data structures used throughout the application.
package model

import "time"

// User mirrors an account owned by the external identity provider. We keep a
// local row per user so referrals can be validated and artifacts can be
// attributed without a network call to the provider.
//
// The ID is the provider's subject identifier when the caller supplies one
// (so both systems agree on who a user is); otherwise we generate an xid.
type User struct {
	ID          string    `json:"id"          db:"id"`
	Email       string    `json:"email"       db:"email"`
	DisplayName string    `json:"displayName" db:"display_name"`
	CreatedAt   time.Time `json:"createdAt"   db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt"   db:"updated_at"`
}
