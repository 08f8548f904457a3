package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/wonny/stocksignal/internal/store"
	"github.com/wonny/stocksignal/internal/store/storetest"
	"github.com/wonny/stocksignal/pkg/config"
	"github.com/wonny/stocksignal/pkg/database"
	"github.com/wonny/stocksignal/pkg/logger"
)

// setupTestDB starts one PostgreSQL container for the whole test
func setupTestDB(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, "postgres:15-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")
	return dsn
}

func TestStoreSuite(t *testing.T) {
	dsn := setupTestDB(t)

	storetest.Run(t, func(t *testing.T) store.Store {
		ctx := context.Background()
		db, err := database.New(ctx, config.DatabaseConfig{URL: dsn, MaxConns: 4})
		require.NoError(t, err)

		s, err := New(ctx, db, logger.Nop())
		require.NoError(t, err)

		_, err = db.Pool.Exec(ctx, `TRUNCATE signal.stock_prices, signal.evaluations, signal.reports`)
		require.NoError(t, err)

		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}
