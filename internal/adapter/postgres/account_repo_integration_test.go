//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"accounts/internal/adapter/postgres"
	"accounts/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func openTestDB(t *testing.T) *postgres.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("accounts_test"),
		tcpostgres.WithUsername("accounts"),
		tcpostgres.WithPassword("accounts"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := postgres.Open(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestAccountRepo(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	a, err := db.Insert(ctx, domain.AccountDraft{Username: "alice", Email: "a@x.com", PasswordHash: "hash"})
	require.NoError(t, err)
	require.NotEmpty(t, a.ID)

	_, err = db.Insert(ctx, domain.AccountDraft{Username: "dup", Email: "A@X.COM"})
	assert.ErrorIs(t, err, domain.ErrDuplicateAccount)

	found, err := db.FindByEmail(ctx, "A@x.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, a.ID, found.ID)

	none, err := db.FindByID(ctx, "not-a-uuid")
	require.NoError(t, err)
	assert.Nil(t, none)

	name := "alice2"
	updated, err := db.UpdateByID(ctx, a.ID, domain.AccountUpdate{Username: &name})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "alice2", updated.Username)
	assert.Equal(t, "a@x.com", updated.Email)
	assert.Equal(t, "hash", updated.PasswordHash)

	list, err := db.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	ok, err := db.DeleteByID(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = db.DeleteByID(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}
