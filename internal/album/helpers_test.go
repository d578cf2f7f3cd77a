package album

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/nerrad567/album-catalog/internal/auth"
	"github.com/nerrad567/album-catalog/internal/infrastructure/database"
	_ "github.com/nerrad567/album-catalog/migrations"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "album-test.db"),
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

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// seedUser inserts a user with a placeholder digest and returns it as a Caller.
func seedUser(t *testing.T, users auth.UserRepository, username string, role auth.Role) auth.Caller {
	t.Helper()
	u := &auth.User{Username: username, PasswordHash: "digest", Role: role, Enabled: true}
	if err := users.Create(context.Background(), u); err != nil {
		t.Fatalf("creating %s: %v", username, err)
	}
	return auth.Caller{ID: u.ID, Username: u.Username, Role: u.EffectiveRole()}
}

func ptr[T any](v T) *T { return &v }
