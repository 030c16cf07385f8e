package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"

	// Registers the pgx database/sql driver goose migrates through.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Migrate applies all pending goose migrations from fsys against dsn.
// goose drives a database/sql connection of its own; the pgxpool the
// application uses stays untouched.
func Migrate(ctx context.Context, dsn string, fsys fs.FS) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, fsys)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}
