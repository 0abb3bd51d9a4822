// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/oliverandrich/accountkit/internal/models"
	"codeberg.org/oliverandrich/accountkit/internal/repository"
	"codeberg.org/oliverandrich/accountkit/internal/testutil"
)

func farFuture() time.Time {
	return time.Now().UTC().Add(24 * time.Hour)
}

func TestCreateToken(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	account := testutil.NewTestAccount(t, repo, "test@example.com", "password123")
	row := testutil.NewTestToken(t, repo, &account.ID, models.TokenTypePasswordReset, "tokenhash1", farFuture())

	retrieved, err := repo.GetTokenByHash(ctx, "tokenhash1")

	require.NoError(t, err)
	assert.Equal(t, row.ID, retrieved.ID)
	assert.Equal(t, models.TokenTypePasswordReset, retrieved.TokenType)
	require.NotNil(t, retrieved.AccountID)
	assert.Equal(t, account.ID, *retrieved.AccountID)
	assert.False(t, retrieved.Used())
}

func TestGetTokenByHash_NotFound(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	_, err := repo.GetTokenByHash(ctx, "nonexistent")

	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestConsumeToken(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	account := testutil.NewTestAccount(t, repo, "test@example.com", "password123")
	row := testutil.NewTestToken(t, repo, &account.ID, models.TokenTypePasswordReset, "tokenhash1", farFuture())

	affected, err := repo.ConsumeToken(ctx, row.ID, row.TokenHash, row.TokenType, account.ID, time.Now().UTC())

	require.NoError(t, err)
	assert.EqualValues(t, 1, affected)

	consumed, err := repo.GetTokenByHash(ctx, row.TokenHash)
	require.NoError(t, err)
	assert.True(t, consumed.Used())
}

func TestConsumeToken_AlreadyUsed(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	account := testutil.NewTestAccount(t, repo, "test@example.com", "password123")
	row := testutil.NewTestToken(t, repo, &account.ID, models.TokenTypePasswordReset, "tokenhash1", farFuture())

	affected, err := repo.ConsumeToken(ctx, row.ID, row.TokenHash, row.TokenType, account.ID, time.Now().UTC())
	require.NoError(t, err)
	require.EqualValues(t, 1, affected)

	affected, err = repo.ConsumeToken(ctx, row.ID, row.TokenHash, row.TokenType, account.ID, time.Now().UTC())

	require.NoError(t, err)
	assert.Zero(t, affected)
}

func TestConsumeToken_Expired(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	account := testutil.NewTestAccount(t, repo, "test@example.com", "password123")
	expired := time.Now().UTC().Add(-time.Minute)
	row := testutil.NewTestToken(t, repo, &account.ID, models.TokenTypePasswordReset, "tokenhash1", expired)

	affected, err := repo.ConsumeToken(ctx, row.ID, row.TokenHash, row.TokenType, account.ID, time.Now().UTC())

	require.NoError(t, err)
	assert.Zero(t, affected)
}

func TestConsumeToken_WrongAccount(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	account := testutil.NewTestAccount(t, repo, "test@example.com", "password123")
	other := testutil.NewTestAccount(t, repo, "other@example.com", "password123")
	row := testutil.NewTestToken(t, repo, &account.ID, models.TokenTypePasswordReset, "tokenhash1", farFuture())

	affected, err := repo.ConsumeToken(ctx, row.ID, row.TokenHash, row.TokenType, other.ID, time.Now().UTC())

	require.NoError(t, err)
	assert.Zero(t, affected)
}

func TestConsumeToken_WrongType(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	account := testutil.NewTestAccount(t, repo, "test@example.com", "password123")
	row := testutil.NewTestToken(t, repo, &account.ID, models.TokenTypePasswordReset, "tokenhash1", farFuture())

	affected, err := repo.ConsumeToken(ctx, row.ID, row.TokenHash, "email_confirm", account.ID, time.Now().UTC())

	require.NoError(t, err)
	assert.Zero(t, affected)
}

func TestDeleteStaleTokens(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	account := testutil.NewTestAccount(t, repo, "test@example.com", "password123")
	now := time.Now().UTC()

	// Expired long ago, past any retention.
	testutil.NewTestToken(t, repo, &account.ID, models.TokenTypePasswordReset, "stale", now.Add(-48*time.Hour))
	// Still valid.
	testutil.NewTestToken(t, repo, &account.ID, models.TokenTypePasswordReset, "valid", now.Add(time.Hour))
	// Expired, but inside the retention grace window.
	testutil.NewTestToken(t, repo, &account.ID, models.TokenTypePasswordReset, "grace", now.Add(-time.Minute))

	deleted, err := repo.DeleteStaleTokens(ctx, now, time.Hour)

	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	_, err = repo.GetTokenByHash(ctx, "stale")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = repo.GetTokenByHash(ctx, "valid")
	assert.NoError(t, err)
	_, err = repo.GetTokenByHash(ctx, "grace")
	assert.NoError(t, err)
}

func TestDeleteStaleTokens_UsedPastRetention(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	account := testutil.NewTestAccount(t, repo, "test@example.com", "password123")
	now := time.Now().UTC()
	row := testutil.NewTestToken(t, repo, &account.ID, models.TokenTypePasswordReset, "used", now.Add(time.Hour))

	affected, err := repo.ConsumeToken(ctx, row.ID, row.TokenHash, row.TokenType, account.ID, now.Add(-2*time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 1, affected)

	deleted, err := repo.DeleteStaleTokens(ctx, now, time.Hour)

	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)
}
