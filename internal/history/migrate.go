package history

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// migrate runs every pending migration against db, following the teacher's
// state.SQLiteStore.Migrate (internal/state/migrate.go) embed.FS + goose
// pattern, adapted from its "sqlite3" dialect name to modernc.org/sqlite's
// pure-Go driver, which goose also addresses as "sqlite".
func migrate(db *sql.DB) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("sqlite"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}
