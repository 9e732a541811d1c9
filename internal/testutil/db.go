// Package testutil provides shared helpers for integration tests.
// Helpers skip when their environment is not configured, so unit tests run
// without a live database.
package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPool opens a *pgxpool.Pool on TEST_DATABASE_URL, skipping the test when
// the variable is unset. The pool is closed when the test finishes.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping integration test")
	}

	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("testutil.NewPool: open pool: %v", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		t.Fatalf("testutil.NewPool: ping: %v", err)
	}

	t.Cleanup(pool.Close)
	return pool
}

// ResetHistory empties travel_history and restarts its identity so tests see ids from 1.
func ResetHistory(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	if _, err := pool.Exec(context.Background(), "TRUNCATE travel_history RESTART IDENTITY"); err != nil {
		t.Fatalf("testutil.ResetHistory: %v", err)
	}
}
