package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/ctrack/pkg/report"
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the assessment history",
	Long: `Export the assessment history as JSON, CSV, Markdown or HTML.

The Markdown and HTML reports start with a per-year summary of the number of
controls assessed and their average score.

Example:
  ctrackctl export
  ctrackctl export --format csv --out history.csv
  ctrackctl export --format html --out history.html`,
	Run: func(cmd *cobra.Command, args []string) {
		formatName, _ := cmd.Flags().GetString("format")
		out, _ := cmd.Flags().GetString("out")

		if err := runExport(formatName, out); err != nil {
			fmt.Fprintf(os.Stderr, "Export failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	names := make([]string, 0, len(report.Formats))
	for _, f := range report.Formats {
		names = append(names, string(f))
	}
	exportCmd.Flags().StringP("format", "f", string(report.FormatJSON), "output format ("+strings.Join(names, ", ")+")")
	exportCmd.Flags().StringP("out", "o", "", "output file (default: stdout)")
}

func runExport(formatName, out string) error {
	format, err := report.ParseFormat(formatName)
	if err != nil {
		return err
	}

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

	var w io.Writer = os.Stdout
	if out != "" {
		if err := os.MkdirAll(filepath.Dir(out), 0o770); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", out, err)
		}
		defer func() { _ = f.Close() }()
		w = f
	}

	if err := report.Write(w, format, assessments); err != nil {
		return err
	}
	if out != "" {
		fmt.Fprintf(os.Stderr, "Exported %d assessments to %s\n", len(assessments), out)
	}
	return nil
}
