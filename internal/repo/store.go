package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/pressly/goose/v3"
)

// Store is an opened slip store with its schema brought up to date.
type Store struct {
	Slips SlipRepo
	// Backend is "sqlite" or "postgres", for logging.
	Backend string

	close func()
}

// Close releases the underlying connections.
func (s *Store) Close() {
	s.close()
}

// OpenStore opens and migrates the slip store. A non-empty databaseURL selects
// Postgres; otherwise the SQLite file at sqlitePath is used.
func OpenStore(ctx context.Context, sqlitePath, databaseURL string) (*Store, error) {
	if databaseURL != "" {
		return openPostgres(ctx, databaseURL)
	}

	db, err := OpenSQLite(sqlitePath)
	if err != nil {
		return nil, fmt.Errorf("repo.OpenStore: %w", err)
	}
	if err := Migrate(ctx, db, goose.DialectSQLite3); err != nil {
		db.Close()
		return nil, fmt.Errorf("repo.OpenStore: %w", err)
	}
	return &Store{
		Slips:   NewSQLiteSlipRepo(db),
		Backend: "sqlite",
		close:   func() { db.Close() },
	}, nil
}

// openPostgres migrates through database/sql (goose needs a *sql.DB) and then
// serves queries from a pgx pool.
func openPostgres(ctx context.Context, dsn string) (*Store, error) {
	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("repo.OpenStore: open sql: %w", err)
	}
	defer sqlDB.Close()

	if err := Migrate(ctx, sqlDB, goose.DialectPostgres); err != nil {
		return nil, fmt.Errorf("repo.OpenStore: %w", err)
	}

	// New() does not open connections immediately; Ping verifies the DB is
	// reachable before accepting traffic.
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("repo.OpenStore: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("repo.OpenStore: ping: %w", err)
	}
	return &Store{
		Slips:   NewPostgresSlipRepo(pool),
		Backend: "postgres",
		close:   pool.Close,
	}, nil
}
