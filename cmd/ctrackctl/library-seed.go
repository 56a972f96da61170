package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/ctrack/pkg/seed"
	gormstore "github.com/doodlesbykumbi/ctrack/pkg/server/store/gorm"
)

// librarySeedCmd represents the library seed command
var librarySeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the control catalog into an empty reference library",
	Long: `Load the control catalog CSV into the reference library.

Nothing is loaded if the library already holds controls. The CSV must have a
header row with the columns identifier, name and control_text; discussion
and related are optional.

Example:
  ctrackctl library seed
  ctrackctl library seed --file NIST_SP-800-53_rev5_catalog_load.csv`,
	Run: func(cmd *cobra.Command, args []string) {
		file, _ := cmd.Flags().GetString("file")

		if err := seedLibrary(file); err != nil {
			fmt.Fprintf(os.Stderr, "Seeding failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	libraryCmd.AddCommand(librarySeedCmd)
	librarySeedCmd.Flags().StringP("file", "f", "", "catalog CSV (default: seed_file from configuration)")
}

func seedLibrary(file string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if file == "" {
		file = cfg.SeedFile
	} else if _, err := os.Stat(file); err != nil {
		return err
	}

	database, err := openDatabase(cfg, true)
	if err != nil {
		return err
	}
	defer closeDatabase(database)

	result, err := seed.New(gormstore.NewLibraryStore(database), file, commandLogger(cfg)).Run()
	if err != nil {
		return err
	}

	if !result.Ran {
		fmt.Println("Reference library already loaded or catalog file not found; nothing to do")
		return nil
	}
	fmt.Printf("Loaded %d controls from %s (%d rows skipped)\n", result.Inserted, file, result.Skipped)
	return nil
}
