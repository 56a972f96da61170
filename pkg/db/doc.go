// Package db provides database connection and schema utilities for ctrack.
//
// The default store is a local SQLite file opened through the pure-Go
// glebarez/sqlite GORM driver, so the binary needs no cgo. A postgres://
// URL switches to PostgreSQL.
//
// # Connection
//
//	database, err := db.Connect(db.Config{URL: cfg.DatabaseURL})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Schema
//
//	if err := db.Migrate(database, cfg.DatabaseURL); err != nil {
//	    log.Fatal(err)
//	}
//
// SQLite schemas are created with GORM AutoMigrate. PostgreSQL schemas are
// managed by golang-migrate from the SQL files embedded in migrations/.
//
// # Environment Variables
//
//   - DATABASE_URL: SQLite path or PostgreSQL connection string
package db
