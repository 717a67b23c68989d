// Package migrations embeds the goose SQL migrations for the taxonomies,
// posts and post_tags tables.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

// FS holds all *.sql migration files embedded at compile time.
//
//go:embed *.sql
var FS embed.FS

// Up applies every pending migration in FS to db and returns the versions
// applied, in order. db must be a Postgres connection.
func Up(ctx context.Context, db *sql.DB) ([]int64, error) {
	provider, err := goose.NewProvider(goose.DialectPostgres, db, FS)
	if err != nil {
		return nil, fmt.Errorf("migrations.Up: create provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return nil, fmt.Errorf("migrations.Up: %w", err)
	}

	versions := make([]int64, 0, len(results))
	for _, res := range results {
		versions = append(versions, res.Source.Version)
	}
	return versions, nil
}
