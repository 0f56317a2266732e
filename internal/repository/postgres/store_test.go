package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/Freeeeeet/boat_booking/internal/repository"
	"github.com/Freeeeeet/boat_booking/internal/repository/storetest"
	"github.com/Freeeeeet/boat_booking/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"
)

// TEST_DATABASE_URL points at a disposable database; its tables are dropped and recreated per test.
func openTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	db := stdlib.OpenDBFromPool(pool)
	t.Cleanup(func() { _ = db.Close() })

	goose.SetBaseFS(migrations.FS)
	require.NoError(t, goose.SetDialect("postgres"))
	require.NoError(t, goose.Reset(db, "."))
	require.NoError(t, goose.Up(db, "."))

	return NewStore(pool)
}

func TestStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) repository.Store {
		return openTestStore(t)
	})
}
