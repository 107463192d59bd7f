// Package migrations embeds SQL migration files into the binary.
//
// The actuator node runs on devices where shipping loose SQL files is a
// nuisance; embedding means the binary migrates its own state file.
package migrations

import (
	"embed"

	"github.com/mcconnect/actuator-node/internal/infrastructure/database"
)

//go:embed *.sql
var migrationsFS embed.FS

func init() {
	// Register embedded migrations with the database package.
	database.MigrationsFS = migrationsFS
	database.MigrationsDir = "."
}
