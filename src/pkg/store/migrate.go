package store

import (
	"database/sql"
	"embed"
	"errors"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

/*
runMigrations applies the embedded migrations on a separate connection so the
main pool is not touched by the migrate driver.
*/
func runMigrations(databasePath string) (e *xerr.Error) {
	migrateDB, err := sql.Open("sqlite", databasePath)
	if err != nil {
		e = xerr.NewError(err, "open migration database", databasePath)
		return e
	}
	defer migrateDB.Close()

	driver, err := sqlite.WithInstance(migrateDB, &sqlite.Config{})
	if err != nil {
		e = xerr.NewError(err, "create sqlite migrate driver", databasePath)
		return e
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		e = xerr.NewError(err, "create iofs migration source", "migrations")
		return e
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		e = xerr.NewError(err, "create migrate instance", databasePath)
		return e
	}
	defer migrator.Close()

	err = migrator.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		e = xerr.NewError(err, "run migrations", databasePath)
		return e
	}

	version, dirty, _ := migrator.Version()
	tl.Log(tl.Verbose, palette.CyanDim, "Database '%s' at migration version '%v' (dirty: %v)", databasePath, version, dirty)
	return e
}
