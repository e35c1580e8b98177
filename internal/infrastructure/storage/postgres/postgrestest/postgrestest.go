// Package postgrestest starts a throwaway PostgreSQL container with the
// numbering schema applied, for integration tests.
package postgrestest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"numbering/internal/infrastructure/storage/postgres"
	"numbering/internal/infrastructure/storage/postgres/migrations"
)

var (
	// Shared container for all tests in a package
	sharedContainer testcontainers.Container
	sharedDSN       string
	sharedMu        sync.Mutex
)

// DB is a migrated database reachable through a pool and a TxManager.
type DB struct {
	Pool *postgres.Pool
	TxM  *postgres.TxManager
	DSN  string
}

// New returns a pool on the package's shared container, starting it and
// applying migrations on first use. Tests are skipped with -short or when
// Docker is unavailable. Tables are truncated before returning.
func New(t *testing.T) *DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping PostgreSQL integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	dsn := sharedDatabase(t)
	ctx := context.Background()

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dsn))
	require.NoError(t, err, "failed to connect to PostgreSQL")
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `TRUNCATE serial_counters, number_format_settings, list_display_settings, cat_organizations CASCADE`)
	require.NoError(t, err, "failed to truncate tables")

	return &DB{
		Pool: pool,
		TxM:  postgres.NewTxManager(pool),
		DSN:  dsn,
	}
}

func sharedDatabase(t *testing.T) string {
	t.Helper()
	sharedMu.Lock()
	defer sharedMu.Unlock()

	if sharedContainer != nil {
		return sharedDSN
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("numbering_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "failed to start PostgreSQL container")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")

	m, err := migrations.Open(dsn, nil)
	require.NoError(t, err)
	require.NoError(t, m.Up())
	require.NoError(t, m.Close())

	sharedContainer, sharedDSN = container, dsn
	return dsn
}
