package auth

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/nerrad567/album-catalog/internal/infrastructure/database"
	_ "github.com/nerrad567/album-catalog/migrations"
)

// testHasher keeps Argon2id cheap enough for unit tests.
var testHasher = NewHasher(Argon2Params{Time: 1, Memory: 8 * 1024, Threads: 1})

// testDB opens a migrated SQLite database in a temp directory.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "auth-test.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("migrating test db: %v", err)
	}
	return db.DB
}

// seedTestUser inserts an enabled user whose password is "pw-<username>".
func seedTestUser(t *testing.T, repo UserRepository, username string, role Role) *User {
	t.Helper()

	digest, err := testHasher.Hash("pw-" + username)
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}
	u := &User{Username: username, PasswordHash: digest, Role: role, Enabled: true}
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("creating %s: %v", username, err)
	}
	return u
}
