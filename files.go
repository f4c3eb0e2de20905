package notes

import (
	"embed"
	"io/fs"
)

//go:embed data/sql/migrations/*.sql
var schemaFiles embed.FS

// SchemaMigrations returns the up/down SQL files rooted at their directory,
// in the layout the persistence client expects.
func SchemaMigrations() (fs.FS, error) {
	return fs.Sub(schemaFiles, "data/sql/migrations")
}
