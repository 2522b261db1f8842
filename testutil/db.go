// Package testutil provides shared helpers for tests: database handles for both
// slip store dialects and deterministic clock/ID doubles.
// Postgres helpers skip automatically when TEST_DATABASE_URL is not set, so the
// suite runs without a database server; SQLite helpers always run.
package testutil

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/pressly/goose/v3"

	"github.com/pkordes/haul-slips/internal/repo"
)

// NewPool opens a *pgxpool.Pool connected to TEST_DATABASE_URL after applying
// all migrations. The pool is closed automatically when the test finishes.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := requireDSN(t)
	migratePostgres(t, dsn)

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

// migratePostgres brings the test database schema up to date through the
// database/sql driver goose requires.
func migratePostgres(t *testing.T, dsn string) {
	t.Helper()

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("testutil.NewPool: open sql: %v", err)
	}
	defer db.Close()

	if err := repo.Migrate(context.Background(), db, goose.DialectPostgres); err != nil {
		t.Fatalf("testutil.NewPool: migrate: %v", err)
	}
}

// requireDSN returns TEST_DATABASE_URL, skipping the test if it is not set.
func requireDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping integration test")
	}
	return dsn
}
