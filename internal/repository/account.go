// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"github.com/vinovest/sqlx"

	"codeberg.org/oliverandrich/accountkit/internal/models"
)

// CreateAccount inserts a new account and returns it.
func (r *Repository) CreateAccount(ctx context.Context, email, passwordHash string) (*models.Account, error) {
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO accounts (email, password_hash) VALUES (?, ?)`,
		email, passwordHash)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetAccountByID(ctx, id)
}

// GetAccountByID retrieves an account by its ID.
func (r *Repository) GetAccountByID(ctx context.Context, id int64) (*models.Account, error) {
	var account models.Account
	if err := sqlx.GetContext(ctx, r.q, &account, `SELECT * FROM accounts WHERE id = ?`, id); err != nil {
		return nil, wrapError(err)
	}
	return &account, nil
}

// GetAccountByEmail retrieves an account by its email address.
func (r *Repository) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	var account models.Account
	if err := sqlx.GetContext(ctx, r.q, &account, `SELECT * FROM accounts WHERE email = ?`, email); err != nil {
		return nil, wrapError(err)
	}
	return &account, nil
}

// EmailExists checks if an account with the given email exists.
func (r *Repository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, r.q, &exists, `SELECT EXISTS(SELECT 1 FROM accounts WHERE email = ?)`, email)
	return exists, err
}

// UpdateAccountPassword replaces an account's password digest.
func (r *Repository) UpdateAccountPassword(ctx context.Context, id int64, passwordHash string) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE accounts SET password_hash = ?, updated_at = ? WHERE id = ?`,
		passwordHash, time.Now().UTC(), id)
	return err
}

// DeleteAccount deletes an account by ID. Owned tokens go with it.
func (r *Repository) DeleteAccount(ctx context.Context, id int64) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	return err
}
