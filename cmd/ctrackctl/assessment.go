package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// assessmentCmd represents the assessment command
var assessmentCmd = &cobra.Command{
	Use:   "assessment",
	Short: "Record and list self-assessments",
	Long:  `Record yearly self-assessments against controls and list the history.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'assessment' requires a subcommand (submit, history)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

func init() {
	rootCmd.AddCommand(assessmentCmd)
}
