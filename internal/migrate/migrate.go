// Package migrate applies the embedded SQL schema migrations.
package migrate

import (
	"database/sql"
	"errors"
	"fmt"

	embedded "github.com/goserg/doublesrating"

	gomigrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

const schemaName = "doubles"

// Up brings db to the latest schema version. An up-to-date schema is not an error.
func Up(db *sql.DB) error {
	source, err := iofs.New(embedded.Migrations, "migrations")
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}
	target, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("sqlite3 driver: %w", err)
	}
	m, err := gomigrate.NewWithInstance("iofs", source, schemaName, target)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, gomigrate.ErrNoChange) {
		return err
	}
	return nil
}
