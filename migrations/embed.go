// Package migrations embeds the goose SQL migrations into the binary and
// registers them with the SQLite and PostgreSQL store packages.
//
// Import it for its side effect:
//
//	import _ "github.com/nerrad567/album-catalog/migrations"
package migrations

import (
	"embed"

	"github.com/nerrad567/album-catalog/internal/infrastructure/database"
	"github.com/nerrad567/album-catalog/internal/infrastructure/postgres"
)

//go:embed sqlite/*.sql postgres/*.sql
var migrationsFS embed.FS

func init() {
	database.MigrationsFS = migrationsFS
	database.MigrationsDir = "sqlite"

	postgres.MigrationsFS = migrationsFS
	postgres.MigrationsDir = "postgres"
}
