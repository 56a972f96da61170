package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// assessmentHistoryCmd represents the assessment history command
var assessmentHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List every assessment, newest audit year first",
	Run: func(cmd *cobra.Command, args []string) {
		if err := showHistory(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to list assessments: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	assessmentCmd.AddCommand(assessmentHistoryCmd)
}

func showHistory() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	database, err := openDatabase(cfg, false)
	if err != nil {
		return err
	}
	defer closeDatabase(database)

	assessments, err := newAssessmentsStore(cfg, database).ListAll()
	if err != nil {
		return err
	}
	if len(assessments) == 0 {
		fmt.Println("No assessments recorded")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "YEAR\tCONTROL\tSCORE\tCATEGORY\tLAST UPDATED")
	for _, a := range assessments {
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\n",
			a.AuditYear, a.RefID, a.Score, a.Category, a.LastUpdated.UTC().Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}
