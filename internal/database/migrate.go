package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate applies every pending schema migration embedded in the binary.
func Migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("mysql"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// MigrationCount reports how many migrations are embedded.
func MigrationCount() (int, error) {
	goose.SetBaseFS(migrationsFS)
	files, err := goose.CollectMigrations("migrations", 0, (1<<63)-1)
	if err != nil {
		return 0, err
	}
	return len(files), nil
}
