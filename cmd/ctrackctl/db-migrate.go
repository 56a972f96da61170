package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/ctrack/pkg/db"
)

// dbMigrateCmd represents the db migrate command
var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create and/or upgrade the database schema",
	Long: `Create and/or upgrade the database schema.

PostgreSQL databases are migrated with the embedded SQL migrations. SQLite
databases have their tables created or altered to match the models.

Example:
  ctrackctl db migrate`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runMigrations(); err != nil {
			fmt.Println("Migration failed:", err)
			os.Exit(1)
		}
	},
}

var dbMigrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current schema state",
	Long:  `Show the current migration version (PostgreSQL) and which tables exist.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := showMigrationStatus(); err != nil {
			fmt.Println("Failed to get status:", err)
			os.Exit(1)
		}
	},
}

func init() {
	dbCmd.AddCommand(dbMigrateCmd)
	dbCmd.AddCommand(dbMigrateStatusCmd)
}

func runMigrations() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	database, err := openDatabase(cfg, true)
	if err != nil {
		return err
	}
	defer closeDatabase(database)

	fmt.Println("Migrations complete")
	return nil
}

func showMigrationStatus() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	database, err := openDatabase(cfg, false)
	if err != nil {
		return err
	}
	defer closeDatabase(database)

	status, err := db.MigrationStatus(database, cfg.DatabaseURL)
	if err != nil {
		return err
	}

	if db.IsPostgres(cfg.DatabaseURL) {
		if status.Version == 0 {
			fmt.Println("No migrations have been applied yet")
		} else {
			fmt.Printf("Current version: %d\n", status.Version)
		}
		if status.Dirty {
			fmt.Println("Warning: Database is in a dirty state")
		}
	}

	tables := make([]string, 0, len(status.Tables))
	for name := range status.Tables {
		tables = append(tables, name)
	}
	sort.Strings(tables)
	for _, name := range tables {
		state := "missing"
		if status.Tables[name] {
			state = "present"
		}
		fmt.Printf("%-20s %s\n", name, state)
	}
	return nil
}
