// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import "time"

// Token types issued by the token service.
const (
	TokenTypePasswordReset = "password_reset"
)

// Token is a persisted single-use credential. TokenHash is the SHA256 digest
// of the secret carried inside the signed wire token; the raw secret itself
// is never stored, so a leaked database row cannot be redeemed.
//
// AccountID is nullable: a token issued for an unknown email has no row at
// all, but the schema keeps the column nullable so redeeming such a token
// fails the same way as any other miss.
type Token struct { //nolint:govet // fieldalignment: readability over optimization
	ID        string     `db:"id" json:"id"` // random UUID, not a sequence
	TokenHash string     `db:"token_hash" json:"-"`
	TokenType string     `db:"token_type" json:"token_type"`
	AccountID *int64     `db:"account_id" json:"account_id,omitempty"`
	ExpiresAt time.Time  `db:"expires_at" json:"expires_at"`
	UsedAt    *time.Time `db:"used_at" json:"used_at,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

// Used reports whether the token has been consumed. A used token is
// permanently unusable; there is no way to clear UsedAt.
func (t *Token) Used() bool {
	return t.UsedAt != nil
}
