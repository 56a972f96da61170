package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	gormstore "github.com/doodlesbykumbi/ctrack/pkg/server/store/gorm"
)

// librarySearchCmd represents the library search command
var librarySearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search controls by identifier or name",
	Long: `Search controls whose identifier or name contains the query,
case-insensitively. At most 50 controls are listed.

Example:
  ctrackctl library search ac-
  ctrackctl library search "account management"`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		query := ""
		if len(args) > 0 {
			query = args[0]
		}

		if err := searchLibrary(query); err != nil {
			fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	libraryCmd.AddCommand(librarySearchCmd)
}

func searchLibrary(query string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	database, err := openDatabase(cfg, false)
	if err != nil {
		return err
	}
	defer closeDatabase(database)

	controls, err := gormstore.NewLibraryStore(database).Search(query)
	if err != nil {
		return err
	}
	if len(controls) == 0 {
		fmt.Println("No controls found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "IDENTIFIER\tNAME")
	for _, c := range controls {
		fmt.Fprintf(w, "%s\t%s\n", c.Identifier, strings.TrimSpace(c.Name))
	}
	return w.Flush()
}
