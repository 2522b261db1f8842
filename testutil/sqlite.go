package testutil

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/pressly/goose/v3"

	"github.com/pkordes/haul-slips/internal/repo"
)

// NewSQLiteDB opens a migrated SQLite database in a per-test temporary
// directory. Unlike NewPool it never skips: SQLite needs no external service.
// The connection is closed automatically when the test finishes.
func NewSQLiteDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := repo.OpenSQLite(filepath.Join(t.TempDir(), "slips.db"))
	if err != nil {
		t.Fatalf("testutil.NewSQLiteDB: open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := repo.Migrate(context.Background(), db, goose.DialectSQLite3); err != nil {
		t.Fatalf("testutil.NewSQLiteDB: migrate: %v", err)
	}
	return db
}
