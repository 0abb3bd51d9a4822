// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package testutil provides test helpers and fixtures.
package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/vinovest/sqlx"
	"golang.org/x/crypto/bcrypt"

	"codeberg.org/oliverandrich/accountkit/internal/config"
	"codeberg.org/oliverandrich/accountkit/internal/database"
	"codeberg.org/oliverandrich/accountkit/internal/models"
	"codeberg.org/oliverandrich/accountkit/internal/repository"
)

// NewTestDB creates a throwaway SQLite database for tests. It lives in the
// test's temp dir rather than in memory: a file database gives every pooled
// connection the same view and the normal busy-timeout behavior, which the
// concurrency tests rely on.
func NewTestDB(t *testing.T) (*sqlx.DB, *repository.Repository) {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db")
	db, err := database.Open(dsn)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	repo := repository.New(db)
	return db, repo
}

// TestConfig returns a config suitable for tests: a fixed secret key and a
// short minimum password length.
func TestConfig() *config.Config {
	cfg := config.Default()
	cfg.Auth.SecretKey = "test-secret-key-0123456789abcdef0123456789abcdef"
	cfg.Auth.MinPasswordLength = 8
	return cfg
}

// NewTestAccount creates an account with a bcrypt digest of password.
// MinCost keeps test suites fast; verification is cost-agnostic.
func NewTestAccount(t *testing.T, repo *repository.Repository, email, password string) *models.Account {
	t.Helper()
	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	account, err := repo.CreateAccount(ctx, email, string(hash))
	require.NoError(t, err)
	return account
}

// NewTestToken inserts a token row directly, bypassing the token service.
// Useful for repository and cleanup tests that need precise timestamps.
func NewTestToken(t *testing.T, repo *repository.Repository, accountID *int64, tokenType, tokenHash string, expiresAt time.Time) *models.Token {
	t.Helper()
	ctx := context.Background()
	row := &models.Token{
		ID:        uuid.NewString(),
		TokenHash: tokenHash,
		TokenType: tokenType,
		AccountID: accountID,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.CreateToken(ctx, row))
	return row
}
