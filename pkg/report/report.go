package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/doodlesbykumbi/ctrack/pkg/model"
)

// Format is an export format
type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// Formats lists the supported formats in help-text order
var Formats = []Format{FormatJSON, FormatCSV, FormatMarkdown, FormatHTML}

var csvHeader = []string{
	"id", "audit_year", "framework", "ref_id", "score",
	"implementation_statement", "remediation_plan", "category", "last_updated",
}

// ParseFormat accepts a format name, case-insensitively. "md" is an alias
// for markdown.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	}
	return "", fmt.Errorf("unknown export format %q (want one of json, csv, markdown, html)", s)
}

// YearSummary aggregates the assessments of one audit year
type YearSummary struct {
	AuditYear    int     `json:"audit_year"`
	Count        int     `json:"count"`
	AverageScore float64 `json:"average_score"`
}

// Summarize groups assessments by audit year, newest first
func Summarize(assessments []model.Assessment) []YearSummary {
	byYear := map[int]*YearSummary{}
	totals := map[int]int{}
	for _, a := range assessments {
		s, ok := byYear[a.AuditYear]
		if !ok {
			s = &YearSummary{AuditYear: a.AuditYear}
			byYear[a.AuditYear] = s
		}
		s.Count++
		totals[a.AuditYear] += a.Score
	}

	summaries := make([]YearSummary, 0, len(byYear))
	for year, s := range byYear {
		s.AverageScore = float64(totals[year]) / float64(s.Count)
		summaries = append(summaries, *s)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].AuditYear > summaries[j].AuditYear
	})
	return summaries
}

// Write renders assessments in the given format
func Write(w io.Writer, format Format, assessments []model.Assessment) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, assessments)
	case FormatCSV:
		return writeCSV(w, assessments)
	case FormatMarkdown:
		_, err := io.WriteString(w, Markdown(assessments))
		return err
	case FormatHTML:
		return writeHTML(w, assessments)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

func writeJSON(w io.Writer, assessments []model.Assessment) error {
	if assessments == nil {
		assessments = []model.Assessment{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(assessments)
}

func writeCSV(w io.Writer, assessments []model.Assessment) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, a := range assessments {
		plan := ""
		if a.RemediationPlan != nil {
			plan = *a.RemediationPlan
		}
		record := []string{
			strconv.FormatUint(uint64(a.ID), 10),
			strconv.Itoa(a.AuditYear),
			a.Framework,
			a.RefID,
			strconv.Itoa(a.Score),
			a.ImplementationStatement,
			plan,
			a.Category,
			a.LastUpdated.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Markdown renders a summary table per audit year followed by every assessment
func Markdown(assessments []model.Assessment) string {
	var sb strings.Builder
	sb.WriteString("# Compliance Assessment History\n\n")

	if len(assessments) == 0 {
		sb.WriteString("No assessments recorded.\n")
		return sb.String()
	}

	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Audit year | Controls assessed | Average score |\n")
	sb.WriteString("|---|---|---|\n")
	for _, s := range Summarize(assessments) {
		fmt.Fprintf(&sb, "| %d | %d | %.2f |\n", s.AuditYear, s.Count, s.AverageScore)
	}

	sb.WriteString("\n## Assessments\n\n")
	sb.WriteString("| Year | Control | Framework | Category | Score | Implementation statement | Remediation plan | Last updated |\n")
	sb.WriteString("|---|---|---|---|---|---|---|---|\n")
	for _, a := range assessments {
		plan := ""
		if a.RemediationPlan != nil {
			plan = *a.RemediationPlan
		}
		fmt.Fprintf(&sb, "| %d | %s | %s | %s | %d | %s | %s | %s |\n",
			a.AuditYear,
			escapeCell(a.RefID),
			escapeCell(a.Framework),
			escapeCell(a.Category),
			a.Score,
			escapeCell(a.ImplementationStatement),
			escapeCell(plan),
			a.LastUpdated.UTC().Format("2006-01-02 15:04"),
		)
	}
	return sb.String()
}

func writeHTML(w io.Writer, assessments []model.Assessment) error {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))

	var body bytes.Buffer
	if err := md.Convert([]byte(Markdown(assessments)), &body); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	_, err := fmt.Fprintf(w, htmlTemplate, body.String())
	return err
}

// escapeCell keeps free text from breaking a markdown table row
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}

const htmlTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Compliance Assessment History</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; margin-bottom: 2em; }
th, td { border: 1px solid #ccc; padding: 4px 8px; text-align: left; vertical-align: top; }
</style>
</head>
<body>
%s</body>
</html>
`
