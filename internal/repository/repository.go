// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package repository wraps sqlx for database access. Extra behavior is added
// by composing a Repository value, never by reaching into the connection
// from elsewhere.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/vinovest/sqlx"
)

// ErrNotFound is returned when a record is not found.
var ErrNotFound = errors.New("record not found")

// Repository provides access to accounts and tokens. It runs against the
// database connection by default, or against a transaction after WithTx.
type Repository struct {
	db *sqlx.DB
	q  sqlx.ExtContext
}

// New creates a new Repository instance.
func New(db *sqlx.DB) *Repository {
	return &Repository{db: db, q: db}
}

// WithTx returns a Repository that runs all statements inside tx.
func (r *Repository) WithTx(tx *sqlx.Tx) *Repository {
	return &Repository{db: r.db, q: tx}
}

// BeginTx starts a transaction on the underlying connection.
func (r *Repository) BeginTx(ctx context.Context) (*sqlx.Tx, error) {
	return r.db.BeginTxx(ctx, nil)
}

// wrapError converts sql errors to repository errors.
func wrapError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
