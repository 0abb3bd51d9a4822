// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"github.com/vinovest/sqlx"

	"codeberg.org/oliverandrich/accountkit/internal/models"
)

// CreateToken inserts a new token row.
func (r *Repository) CreateToken(ctx context.Context, token *models.Token) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO tokens (id, token_hash, token_type, account_id, expires_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		token.ID, token.TokenHash, token.TokenType, token.AccountID, token.ExpiresAt, token.CreatedAt)
	return err
}

// GetTokenByHash retrieves a token row by its stored hash.
func (r *Repository) GetTokenByHash(ctx context.Context, tokenHash string) (*models.Token, error) {
	var token models.Token
	if err := sqlx.GetContext(ctx, r.q, &token, `SELECT * FROM tokens WHERE token_hash = ?`, tokenHash); err != nil {
		return nil, wrapError(err)
	}
	return &token, nil
}

// ConsumeToken flips used_at from null to now for exactly the row matching
// id, hash, type and account, provided it is unused and unexpired. Returns
// the affected-row count: 1 means this caller won the token, 0 means the
// token was missing, foreign, already used or expired. Concurrent callers
// racing the same token are serialized here, not by in-process locks.
func (r *Repository) ConsumeToken(ctx context.Context, id, tokenHash, tokenType string, accountID int64, now time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx,
		`UPDATE tokens SET used_at = ?
		 WHERE id = ? AND token_hash = ? AND token_type = ? AND account_id = ?
		   AND used_at IS NULL AND expires_at >= ?`,
		now, id, tokenHash, tokenType, accountID, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteStaleTokens removes rows that are past their retention window:
// used longer than retention ago, or expired longer than retention ago.
// Rows still inside their valid or grace window are never touched.
func (r *Repository) DeleteStaleTokens(ctx context.Context, now time.Time, retention time.Duration) (int64, error) {
	cutoff := now.Add(-retention)
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM tokens
		 WHERE (used_at IS NOT NULL AND used_at < ?) OR expires_at < ?`,
		cutoff, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CountTokens returns the number of token rows. Mostly useful for tests
// and operational checks.
func (r *Repository) CountTokens(ctx context.Context) (int64, error) {
	var count int64
	err := sqlx.GetContext(ctx, r.q, &count, `SELECT COUNT(*) FROM tokens`)
	return count, err
}
