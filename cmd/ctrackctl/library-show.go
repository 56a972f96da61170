package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/ctrack/pkg/server/store"
	gormstore "github.com/doodlesbykumbi/ctrack/pkg/server/store/gorm"
)

// libraryShowCmd represents the library show command
var libraryShowCmd = &cobra.Command{
	Use:   "show <ref_id>",
	Short: "Show a control by its exact identifier",
	Long: `Show a control by its exact identifier.

Example:
  ctrackctl library show AC-2`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := showControl(args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	libraryCmd.AddCommand(libraryShowCmd)
}

func showControl(refID string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	database, err := openDatabase(cfg, false)
	if err != nil {
		return err
	}
	defer closeDatabase(database)

	control, err := gormstore.NewLibraryStore(database).Get(refID)
	if err != nil {
		if errors.Is(err, store.ErrControlNotFound) {
			return fmt.Errorf("control %s not found", refID)
		}
		return err
	}

	fmt.Printf("%s  %s\n\n%s\n", control.Identifier, control.Name, control.ControlText)
	if control.Discussion != nil {
		fmt.Printf("\nDiscussion:\n%s\n", *control.Discussion)
	}
	if control.Related != nil {
		fmt.Printf("\nRelated: %s\n", *control.Related)
	}
	return nil
}
