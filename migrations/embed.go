// Package migrations embeds the SQL migration files so they can be applied
// by the goose provider at server start, by slipctl, and in tests.
// The statements are written to run unchanged on both SQLite and Postgres.
package migrations

import "embed"

// FS holds all *.sql migration files embedded at compile time.
// Pass this to goose.NewProvider instead of relying on a filesystem path at runtime.
//
//go:embed *.sql
var FS embed.FS
