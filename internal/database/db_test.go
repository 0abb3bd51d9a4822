// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package database_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/oliverandrich/accountkit/internal/database"
)

func TestOpen_RunsMigrations(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.Open(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	for _, table := range []string{"accounts", "tokens"} {
		var name string
		err := db.GetContext(ctx, &name,
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table)
		require.NoError(t, err, "table %s missing", table)
	}
}

func TestOpen_EnforcesUniqueEmail(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.Open(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	_, err = db.ExecContext(ctx, `INSERT INTO accounts (email, password_hash) VALUES ('a@example.com', 'h')`)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, `INSERT INTO accounts (email, password_hash) VALUES ('a@example.com', 'h')`)
	assert.Error(t, err)
}
