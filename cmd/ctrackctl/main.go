package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ctrackctl",
	Short: "Compliance self-assessment tracker",
	Long: `ctrackctl runs the ctrack server and manages its reference library,
assessments and database from the command line.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func main() {
	Execute()
}
