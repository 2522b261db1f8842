package repo

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/pkordes/haul-slips/internal/domain"
)

// OpenSQLite opens the SQLite database file at path, creating its parent
// directory if needed. path may also be ":memory:".
func OpenSQLite(path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("repo.OpenSQLite: create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("repo.OpenSQLite: open: %w", err)
	}

	// Concurrent submissions wait for the write lock instead of failing with SQLITE_BUSY.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("repo.OpenSQLite: busy_timeout: %w", err)
	}
	if path == ":memory:" {
		// Every pooled connection would otherwise see its own empty database.
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

// sqliteSlipRepo is the SQLite implementation of SlipRepo.
type sqliteSlipRepo struct {
	db *sql.DB
}

// NewSQLiteSlipRepo constructs a SlipRepo backed by a database/sql handle
// opened with OpenSQLite.
func NewSQLiteSlipRepo(db *sql.DB) SlipRepo {
	return &sqliteSlipRepo{db: db}
}

func (r *sqliteSlipRepo) Insert(ctx context.Context, slip domain.Slip) error {
	const q = `
		INSERT INTO slips (` + slipColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	record := slip.Record()
	args := make([]any, len(record))
	for i, v := range record {
		args[i] = v
	}

	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("repo.SlipRepo.Insert: %w: %w", domain.ErrStorage, err)
	}
	return nil
}

func (r *sqliteSlipRepo) List(ctx context.Context, limit int) ([]domain.Slip, error) {
	const q = `SELECT ` + slipColumns + ` FROM slips ` + slipOrder + ` LIMIT ?`

	slips, err := r.query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("repo.SlipRepo.List: %w", err)
	}
	return slips, nil
}

func (r *sqliteSlipRepo) ListAll(ctx context.Context) ([]domain.Slip, error) {
	const q = `SELECT ` + slipColumns + ` FROM slips ` + slipOrder

	slips, err := r.query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.SlipRepo.ListAll: %w", err)
	}
	return slips, nil
}

func (r *sqliteSlipRepo) query(ctx context.Context, q string, args ...any) ([]domain.Slip, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}
	defer rows.Close()

	return collectSlips(rows)
}
