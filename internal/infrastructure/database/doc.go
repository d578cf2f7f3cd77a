// Package database provides SQLite connectivity for the album catalog.
//
// This package manages:
//   - Database connection with WAL mode for concurrent access
//   - Schema migrations through goose, embedded into the binary
//   - Connection pooling and lifecycle management
//
// Security Considerations:
//   - All queries use parameterised statements
//   - Database file permissions are set to 0600 since it stores password digests
//
// Usage:
//
//	db, err := database.Open(database.Config{Path: cfg.Database.Path, WALMode: true})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Migration files live in migrations/sqlite and use goose annotations
// (-- +goose Up / -- +goose Down) with sequential numeric versions.
package database
