package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// libraryCmd represents the library command
var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "Manage the reference library of controls",
	Long:  `Seed, search and show controls in the reference library.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'library' requires a subcommand (seed, search, show)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

func init() {
	rootCmd.AddCommand(libraryCmd)
}
