// Package repo contains all database access logic for the haul slip service.
// The slips table is reachable through two implementations of SlipRepo:
// Postgres (pgx) for hosted deployments and SQLite (database/sql) for the
// single-file default. No business logic lives here, only SQL and type mapping.
package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pkordes/haul-slips/internal/domain"
)

// SlipRepo defines the persistence operations for Slips.
// The store is append-only: there is no update or delete.
type SlipRepo interface {
	// Insert stores a fully-populated slip. The caller assigns ID, CreatedAt and
	// UpdatedAt; nothing is generated by the store. Failures wrap domain.ErrStorage.
	Insert(ctx context.Context, slip domain.Slip) error

	// List returns at most limit slips ordered by date descending, then
	// created_at descending. The limit is passed to the store verbatim.
	List(ctx context.Context, limit int) ([]domain.Slip, error)

	// ListAll returns every slip in List order.
	ListAll(ctx context.Context) ([]domain.Slip, error)
}

// Column list and ordering shared by both dialects.
const (
	slipColumns = `id, date, driver, truck_number, foreman, job, haul_from, haul_to,
		start_time, end_time, material, signature_name, notes, created_at, updated_at`
	slipOrder = `ORDER BY date DESC, created_at DESC`
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Integration tests pass a transaction that is rolled back after each test.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// pgSlipRepo is the Postgres implementation of SlipRepo.
type pgSlipRepo struct {
	db db
}

// NewPostgresSlipRepo constructs a SlipRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewPostgresSlipRepo(db db) SlipRepo {
	return &pgSlipRepo{db: db}
}

func (r *pgSlipRepo) Insert(ctx context.Context, slip domain.Slip) error {
	const q = `
		INSERT INTO slips (` + slipColumns + `)
		VALUES (@id, @date, @driver, @truck_number, @foreman, @job, @haul_from, @haul_to,
		        @start_time, @end_time, @material, @signature_name, @notes, @created_at, @updated_at)`

	record := slip.Record()
	args := make(pgx.NamedArgs, len(record))
	for i, col := range domain.Columns {
		args[col] = record[i]
	}

	if _, err := r.db.Exec(ctx, q, args); err != nil {
		return fmt.Errorf("repo.SlipRepo.Insert: %w: %w", domain.ErrStorage, err)
	}
	return nil
}

func (r *pgSlipRepo) List(ctx context.Context, limit int) ([]domain.Slip, error) {
	const q = `SELECT ` + slipColumns + ` FROM slips ` + slipOrder + ` LIMIT @limit`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"limit": limit})
	if err != nil {
		return nil, fmt.Errorf("repo.SlipRepo.List: %w: %w", domain.ErrStorage, err)
	}
	defer rows.Close()

	slips, err := collectSlips(rows)
	if err != nil {
		return nil, fmt.Errorf("repo.SlipRepo.List: %w", err)
	}
	return slips, nil
}

func (r *pgSlipRepo) ListAll(ctx context.Context) ([]domain.Slip, error) {
	const q = `SELECT ` + slipColumns + ` FROM slips ` + slipOrder

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.SlipRepo.ListAll: %w: %w", domain.ErrStorage, err)
	}
	defer rows.Close()

	slips, err := collectSlips(rows)
	if err != nil {
		return nil, fmt.Errorf("repo.SlipRepo.ListAll: %w", err)
	}
	return slips, nil
}

// scanner is satisfied by pgx.Row, pgx.Rows, *sql.Row and *sql.Rows, so one
// scanSlip serves both dialects.
type scanner interface {
	Scan(dest ...any) error
}

// rowIterator is the subset of pgx.Rows and *sql.Rows used by collectSlips.
type rowIterator interface {
	scanner
	Next() bool
	Err() error
}

// collectSlips drains rows into a non-nil slice.
func collectSlips(rows rowIterator) ([]domain.Slip, error) {
	slips := []domain.Slip{}
	for rows.Next() {
		s, err := scanSlip(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w: %w", domain.ErrStorage, err)
		}
		slips = append(slips, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w: %w", domain.ErrStorage, err)
	}
	return slips, nil
}

// scanSlip maps a single row in slipColumns order into a domain.Slip.
// The nullable columns (foreman, haul_from, notes) read back as "".
func scanSlip(s scanner) (domain.Slip, error) {
	var (
		slip                     domain.Slip
		foreman, haulFrom, notes sql.NullString
		createdAt, updatedAt     string
	)

	err := s.Scan(
		&slip.ID, &slip.Date, &slip.Driver, &slip.TruckNumber, &foreman, &slip.Job,
		&haulFrom, &slip.HaulTo, &slip.StartTime, &slip.EndTime, &slip.Material,
		&slip.SignatureName, &notes, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
			return domain.Slip{}, domain.ErrNotFound
		}
		return domain.Slip{}, err
	}

	slip.Foreman = foreman.String
	slip.HaulFrom = haulFrom.String
	slip.Notes = notes.String

	if slip.CreatedAt, err = time.Parse(domain.TimestampLayout, createdAt); err != nil {
		return domain.Slip{}, fmt.Errorf("created_at: %w", err)
	}
	if slip.UpdatedAt, err = time.Parse(domain.TimestampLayout, updatedAt); err != nil {
		return domain.Slip{}, fmt.Errorf("updated_at: %w", err)
	}
	return slip, nil
}
