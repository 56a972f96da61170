package db

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config holds database connection configuration
type Config struct {
	// URL is a postgres:// URL or a SQLite file path (defaults to DATABASE_URL env var)
	URL string
	// LogLevel "debug" turns on GORM SQL logging
	LogLevel string
}

// Connect establishes a database connection.
// If no URL is provided, it reads from DATABASE_URL environment variable.
func Connect(cfg Config) (*gorm.DB, error) {
	dbURL := cfg.URL
	if dbURL == "" {
		dbURL = URL()
	}
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	dialector, err := Dialector(dbURL)
	if err != nil {
		return nil, err
	}

	// Default to silent logging unless the log level is debug
	logMode := logger.Silent
	if cfg.LogLevel == "debug" {
		logMode = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logMode),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

// Dialector picks the GORM dialector for a database URL. postgres:// and
// postgresql:// URLs use PostgreSQL, everything else is a SQLite file path
// with an optional sqlite:// prefix.
func Dialector(dbURL string) (gorm.Dialector, error) {
	if IsPostgres(dbURL) {
		return postgres.New(postgres.Config{
			DSN:                  dbURL,
			PreferSimpleProtocol: true, // disables implicit prepared statement usage
		}), nil
	}

	path := SQLitePath(dbURL)
	if path == "" {
		return nil, fmt.Errorf("invalid database url %q", dbURL)
	}
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	return sqlite.Open(withBusyTimeout(path)), nil
}

// IsPostgres reports whether the URL addresses a PostgreSQL server
func IsPostgres(dbURL string) bool {
	return strings.HasPrefix(dbURL, "postgres://") || strings.HasPrefix(dbURL, "postgresql://")
}

// SQLitePath strips the sqlite:// scheme, if any
func SQLitePath(dbURL string) string {
	return strings.TrimPrefix(dbURL, "sqlite://")
}

// withBusyTimeout makes concurrent writers wait for the file lock instead of
// failing immediately with SQLITE_BUSY.
func withBusyTimeout(path string) string {
	if path == ":memory:" || strings.Contains(path, "busy_timeout") {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=busy_timeout(5000)"
}

// URL returns the database URL from environment.
// Returns empty string if DATABASE_URL is not set.
func URL() string {
	return os.Getenv("DATABASE_URL")
}
