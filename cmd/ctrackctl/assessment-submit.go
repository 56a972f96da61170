package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/ctrack/pkg/server/store"
)

// assessmentSubmitCmd represents the assessment submit command
var assessmentSubmitCmd = &cobra.Command{
	Use:   "submit <ref_id>",
	Short: "Create or update the assessment of a control for an audit year",
	Long: `Create or update the assessment of a control for an audit year.

Submitting again for the same control and year overwrites the score,
statement and remediation plan. The category is only set on creation.

Example:
  ctrackctl assessment submit AC-2 --year 2026 --score 3 \
    --statement "Accounts are reviewed quarterly." \
    --remediation "Automate the review"`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		year, _ := cmd.Flags().GetInt("year")
		score, _ := cmd.Flags().GetInt("score")
		statement, _ := cmd.Flags().GetString("statement")
		category, _ := cmd.Flags().GetString("category")

		input := store.AssessmentInput{
			AuditYear:               year,
			RefID:                   args[0],
			Score:                   score,
			ImplementationStatement: statement,
			Category:                category,
		}
		if cmd.Flags().Changed("remediation") {
			plan, _ := cmd.Flags().GetString("remediation")
			input.RemediationPlan = &plan
		}

		if err := submitAssessment(input); err != nil {
			fmt.Fprintf(os.Stderr, "Submit failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	assessmentCmd.AddCommand(assessmentSubmitCmd)
	assessmentSubmitCmd.Flags().IntP("year", "y", 0, "audit year (required)")
	assessmentSubmitCmd.Flags().IntP("score", "s", 0, "score (required)")
	assessmentSubmitCmd.Flags().StringP("statement", "m", "", "implementation statement")
	assessmentSubmitCmd.Flags().StringP("remediation", "r", "", "remediation plan")
	assessmentSubmitCmd.Flags().StringP("category", "c", "", "category (default: default_category from configuration)")
	_ = assessmentSubmitCmd.MarkFlagRequired("year")
	_ = assessmentSubmitCmd.MarkFlagRequired("score")
}

func submitAssessment(input store.AssessmentInput) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	database, err := openDatabase(cfg, true)
	if err != nil {
		return err
	}
	defer closeDatabase(database)

	if err := newAssessmentsStore(cfg, database).Submit(input); err != nil {
		return err
	}

	fmt.Printf("Saved assessment for %s (%d)\n", input.RefID, input.AuditYear)
	return nil
}
