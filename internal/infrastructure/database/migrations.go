package database

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/pressly/goose/v3"
)

// MigrationsFS holds the goose SQL migrations for SQLite. It is set by the
// migrations package so the files are compiled into the binary.
var MigrationsFS fs.FS

// MigrationsDir is the directory within MigrationsFS containing migration files.
var MigrationsDir = "sqlite"

// MigrationRecord describes one migration and whether it has been applied.
type MigrationRecord struct {
	Version   int64
	Path      string
	Applied   bool
	AppliedAt time.Time
}

// Migrate applies all pending migrations in version order.
// Each migration runs in its own transaction; re-running after a failure
// continues from the migration that failed.
func (db *DB) Migrate(ctx context.Context) error {
	provider, err := db.migrationProvider()
	if errors.Is(err, goose.ErrNoMigrations) {
		return nil
	}
	if err != nil {
		return err
	}

	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}
	return nil
}

// MigrateDown rolls back the most recent migration.
// This is primarily for development and testing.
func (db *DB) MigrateDown(ctx context.Context) error {
	provider, err := db.migrationProvider()
	if err != nil {
		return err
	}

	if _, err := provider.Down(ctx); err != nil {
		return fmt.Errorf("rolling back migration: %w", err)
	}
	return nil
}

// GetMigrationStatus returns the applied and pending migrations.
func (db *DB) GetMigrationStatus(ctx context.Context) (applied, pending []MigrationRecord, err error) {
	provider, err := db.migrationProvider()
	if errors.Is(err, goose.ErrNoMigrations) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	statuses, err := provider.Status(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("reading migration status: %w", err)
	}

	for _, s := range statuses {
		rec := MigrationRecord{
			Version:   s.Source.Version,
			Path:      s.Source.Path,
			Applied:   s.State == goose.StateApplied,
			AppliedAt: s.AppliedAt,
		}
		if rec.Applied {
			applied = append(applied, rec)
		} else {
			pending = append(pending, rec)
		}
	}
	return applied, pending, nil
}

func (db *DB) migrationProvider() (*goose.Provider, error) {
	if MigrationsFS == nil {
		return nil, goose.ErrNoMigrations
	}

	fsys, err := fs.Sub(MigrationsFS, MigrationsDir)
	if err != nil {
		return nil, fmt.Errorf("opening migrations directory %q: %w", MigrationsDir, err)
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, db.DB, fsys)
	if err != nil {
		return nil, fmt.Errorf("loading migrations: %w", err)
	}
	return provider, nil
}
