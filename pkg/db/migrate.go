package db

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/ctrack/pkg/model"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Models lists every table managed by ctrack
func Models() []interface{} {
	return []interface{}{&model.ControlReference{}, &model.Assessment{}}
}

// Migrate creates or upgrades the schema for the database behind dbURL.
func Migrate(database *gorm.DB, dbURL string) error {
	if IsPostgres(dbURL) {
		m, err := newMigrate(dbURL)
		if err != nil {
			return err
		}
		defer func() { _, _ = m.Close() }()

		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("migration failed: %w", err)
		}
		return nil
	}

	if err := database.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

// Status describes the schema state of a database
type Status struct {
	// Version is the applied golang-migrate version (PostgreSQL only)
	Version uint
	Dirty   bool
	// Tables maps each ctrack table to whether it exists
	Tables map[string]bool
}

// MigrationStatus reports the schema state for the database behind dbURL.
func MigrationStatus(database *gorm.DB, dbURL string) (*Status, error) {
	status := &Status{Tables: map[string]bool{}}

	if IsPostgres(dbURL) {
		m, err := newMigrate(dbURL)
		if err != nil {
			return nil, err
		}
		defer func() { _, _ = m.Close() }()

		version, dirty, err := m.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			return nil, fmt.Errorf("failed to read migration version: %w", err)
		}
		status.Version = version
		status.Dirty = dirty
	}

	migrator := database.Migrator()
	for _, m := range Models() {
		stmt := &gorm.Statement{DB: database}
		if err := stmt.Parse(m); err != nil {
			return nil, err
		}
		status.Tables[stmt.Schema.Table] = migrator.HasTable(m)
	}
	return status, nil
}

func newMigrate(dbURL string) (*migrate.Migrate, error) {
	d, err := iofs.New(migrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to create iofs driver: %w", err)
	}
	return migrate.NewWithSourceInstance("iofs", d, dbURL)
}
