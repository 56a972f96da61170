package main

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/ctrack/pkg/config"
	"github.com/doodlesbykumbi/ctrack/pkg/db"
	"github.com/doodlesbykumbi/ctrack/pkg/logging"
	gormstore "github.com/doodlesbykumbi/ctrack/pkg/server/store/gorm"
)

// loadConfig loads and validates the configuration, the way the server does
func loadConfig() (*config.Config, error) {
	if err := config.Reload(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config.Get(), nil
}

// openDatabase connects to the configured database, migrating it first
// unless migrate is false
func openDatabase(cfg *config.Config, migrate bool) (*gorm.DB, error) {
	database, err := db.Connect(db.Config{URL: cfg.DatabaseURL, LogLevel: cfg.LogLevel})
	if err != nil {
		return nil, err
	}
	if migrate {
		if err := db.Migrate(database, cfg.DatabaseURL); err != nil {
			closeDatabase(database)
			return nil, err
		}
	}
	return database, nil
}

func closeDatabase(database *gorm.DB) {
	if sqlDB, err := database.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func newAssessmentsStore(cfg *config.Config, database *gorm.DB) *gormstore.AssessmentsStore {
	return gormstore.NewAssessmentsStore(database,
		gormstore.WithFramework(cfg.Framework),
		gormstore.WithDefaultCategory(cfg.DefaultCategory),
	)
}

// commandLogger logs to stderr at warn and above unless debug is configured
func commandLogger(cfg *config.Config) *zap.Logger {
	if cfg.LogLevel == "debug" {
		return logging.Must("debug")
	}
	return logging.Must("warn")
}
