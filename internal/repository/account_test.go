// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/oliverandrich/accountkit/internal/repository"
	"codeberg.org/oliverandrich/accountkit/internal/testutil"
)

func TestCreateAccount(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	account, err := repo.CreateAccount(ctx, "test@example.com", "hash123")

	require.NoError(t, err)
	assert.NotZero(t, account.ID)
	assert.Equal(t, "test@example.com", account.Email)
	assert.Equal(t, "hash123", account.PasswordHash)
	assert.False(t, account.CreatedAt.IsZero())
}

func TestCreateAccount_DuplicateEmail(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	_, err := repo.CreateAccount(ctx, "test@example.com", "hash123")
	require.NoError(t, err)

	_, err = repo.CreateAccount(ctx, "test@example.com", "other")

	assert.Error(t, err)
}

func TestGetAccountByEmail(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	created, err := repo.CreateAccount(ctx, "test@example.com", "hash123")
	require.NoError(t, err)

	retrieved, err := repo.GetAccountByEmail(ctx, "test@example.com")

	require.NoError(t, err)
	assert.Equal(t, created.ID, retrieved.ID)
	assert.Equal(t, created.Email, retrieved.Email)
}

func TestGetAccountByEmail_NotFound(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	_, err := repo.GetAccountByEmail(ctx, "nonexistent@example.com")

	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestGetAccountByID_NotFound(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	_, err := repo.GetAccountByID(ctx, 9999)

	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestEmailExists(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	_, err := repo.CreateAccount(ctx, "test@example.com", "hash123")
	require.NoError(t, err)

	exists, err := repo.EmailExists(ctx, "test@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.EmailExists(ctx, "nonexistent@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUpdateAccountPassword(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	account, err := repo.CreateAccount(ctx, "test@example.com", "hash123")
	require.NoError(t, err)

	err = repo.UpdateAccountPassword(ctx, account.ID, "hash456")
	require.NoError(t, err)

	updated, err := repo.GetAccountByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "hash456", updated.PasswordHash)
}

func TestDeleteAccount_CascadesTokens(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	account, err := repo.CreateAccount(ctx, "test@example.com", "hash123")
	require.NoError(t, err)
	testutil.NewTestToken(t, repo, &account.ID, "password_reset", "tokenhash1", farFuture())

	err = repo.DeleteAccount(ctx, account.ID)
	require.NoError(t, err)

	count, err := repo.CountTokens(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}
