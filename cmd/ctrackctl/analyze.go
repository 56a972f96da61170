package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/ctrack/pkg/advisor"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <ref_id>",
	Short: "Ask the configured model to review a saved implementation statement",
	Long: `Ask the configured model whether the implementation statement saved for
a control and audit year is sufficient.

Example:
  ctrackctl analyze AC-2
  ctrackctl analyze AC-2 --year 2025`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		year, _ := cmd.Flags().GetInt("year")

		if err := analyze(args[0], year); err != nil {
			fmt.Fprintf(os.Stderr, "Analysis failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().IntP("year", "y", 0, "audit year (default: default_audit_year from configuration)")
}

func analyze(refID string, year int) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if year == 0 {
		year = cfg.DefaultAuditYear
	}

	database, err := openDatabase(cfg, false)
	if err != nil {
		return err
	}
	defer closeDatabase(database)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := advisor.NewClient(ctx, cfg)
	if err != nil {
		return err
	}

	service := advisor.NewService(newAssessmentsStore(cfg, database), client,
		advisor.WithTimeout(cfg.AdvisorTimeoutDuration()),
		advisor.WithLogger(commandLogger(cfg)),
	)
	answer, err := service.Analyze(ctx, refID, year)
	if err != nil {
		return err
	}

	fmt.Println(answer)
	return nil
}
