package repo

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/pressly/goose/v3"

	"github.com/pkordes/haul-slips/migrations"
)

// Migrate applies every pending embedded migration to db. Running it against an
// up-to-date database is a no-op, so it is safe to call on every startup.
func Migrate(ctx context.Context, db *sql.DB, dialect goose.Dialect) error {
	provider, err := goose.NewProvider(dialect, db, migrations.FS)
	if err != nil {
		return fmt.Errorf("repo.Migrate: create provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("repo.Migrate: up: %w", err)
	}
	for _, r := range results {
		slog.Info("migration applied", "source", r.Source.Path, "duration_ms", r.Duration.Milliseconds())
	}
	return nil
}
