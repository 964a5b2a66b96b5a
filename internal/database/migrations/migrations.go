// Package migrations owns the pass-history schema. SQL files are embedded
// and applied with golang-migrate.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed files/*.sql
var migrationFiles embed.FS

// MigrateUp applies every pending migration. An up-to-date database is not
// an error.
func MigrateUp(db *sql.DB) error {
	m, err := newMigrate(db)
	if err != nil {
		return err
	}
	// m is not closed: closing it would close db, which the caller owns.

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

// SchemaStatus describes a database's schema against the embedded
// migrations.
type SchemaStatus struct {
	Version uint // 0 when no migration has run
	Latest  uint
	Dirty   bool
}

// Current reports whether the schema is clean and at the latest version.
func (s SchemaStatus) Current() bool {
	return !s.Dirty && s.Version == s.Latest
}

func (s SchemaStatus) String() string {
	switch {
	case s.Dirty:
		return fmt.Sprintf("v%d (dirty, a migration failed)", s.Version)
	case s.Version == 0:
		return fmt.Sprintf("none (latest v%d)", s.Latest)
	case s.Version < s.Latest:
		return fmt.Sprintf("v%d (%d behind v%d)", s.Version, s.Latest-s.Version, s.Latest)
	case s.Version > s.Latest:
		return fmt.Sprintf("v%d (newer than this binary, v%d)", s.Version, s.Latest)
	}
	return fmt.Sprintf("v%d (latest)", s.Version)
}

// Status reads db's schema version without migrating it.
func Status(db *sql.DB) (SchemaStatus, error) {
	m, err := newMigrate(db)
	if err != nil {
		return SchemaStatus{}, err
	}

	var st SchemaStatus
	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
	case err != nil:
		return SchemaStatus{}, fmt.Errorf("reading schema version: %w", err)
	default:
		st.Version, st.Dirty = version, dirty
	}

	src, err := iofs.New(migrationFiles, "files")
	if err != nil {
		return SchemaStatus{}, fmt.Errorf("reading migration files: %w", err)
	}
	defer src.Close()

	if st.Latest, err = latestVersion(src); err != nil {
		return SchemaStatus{}, fmt.Errorf("finding latest migration: %w", err)
	}
	return st, nil
}

func newMigrate(db *sql.DB) (*migrate.Migrate, error) {
	src, err := iofs.New(migrationFiles, "files")
	if err != nil {
		return nil, fmt.Errorf("failed to create source driver: %w", err)
	}

	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("failed to create database driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, nil
}

// latestVersion walks the source to its last migration.
func latestVersion(src source.Driver) (uint, error) {
	v, err := src.First()
	if err != nil {
		return 0, err
	}
	for {
		next, err := src.Next(v)
		if err != nil {
			return v, nil
		}
		v = next
	}
}
