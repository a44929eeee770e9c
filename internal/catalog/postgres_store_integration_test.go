//go:build integration

package catalog_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/noah-isme/backend-kasir/internal/catalog"
	"github.com/noah-isme/backend-kasir/internal/db"
)

func setupPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("kasir"),
		postgres.WithUsername("kasir"),
		postgres.WithPassword("kasir"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate container: %s", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations(dsn))
	// a second run must be a no-op
	require.NoError(t, db.RunMigrations(dsn))

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func TestPostgresStore(t *testing.T) {
	pool := setupPostgres(t)
	store := catalog.NewPostgresStore(pool)
	ctx := context.Background()

	products, err := store.List(ctx)
	require.NoError(t, err)
	require.Empty(t, products)

	seeded, err := catalog.SeedIfEmpty(ctx, store)
	require.NoError(t, err)
	require.True(t, seeded)

	kettle, err := store.Get(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, "Copper Kettle", kettle.Name)
	require.True(t, kettle.Price.Equal(decimal.RequireFromString("49.99")))

	_, err = store.Get(ctx, 999)
	require.ErrorIs(t, err, catalog.ErrNotFound)

	created, err := store.Insert(ctx, "Sieve", decimal.RequireFromString("7.5"))
	require.NoError(t, err)
	require.Equal(t, int64(4), created.ID)
	require.Equal(t, "7.5", created.Price.String())

	products, err = store.List(ctx)
	require.NoError(t, err)
	require.Len(t, products, 4)

	_, err = store.Insert(ctx, "Broken", decimal.Zero)
	require.ErrorIs(t, err, catalog.ErrRejected)
	_, err = store.Insert(ctx, "", decimal.NewFromInt(1))
	require.ErrorIs(t, err, catalog.ErrRejected)
	_, err = store.Insert(ctx, strings.Repeat("x", 101), decimal.NewFromInt(1))
	require.ErrorIs(t, err, catalog.ErrRejected)
	_, err = store.Insert(ctx, "Vault", decimal.RequireFromString("100000000000"))
	require.ErrorIs(t, err, catalog.ErrRejected)
}
