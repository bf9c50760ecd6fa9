package reporter

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/ppiankov/levovulns/internal/aggregator"
	"github.com/ppiankov/levovulns/internal/models"
)

// TextReporter generates human-readable text reports
type TextReporter struct {
	writer io.Writer
}

// NewTextReporter creates a new text reporter
func NewTextReporter(writer io.Writer) *TextReporter {
	return &TextReporter{
		writer: writer,
	}
}

// Generate creates a text report from the aggregated data
func (r *TextReporter) Generate(report *models.Report) error {
	r.printHeader("Levo Vulnerability Report")
	if report.RunID != "" {
		r.printf("Run: %s\n", report.RunID)
	}
	r.printf("Generated: %s\n\n", formatTimestamp(report.GeneratedAt))

	r.printOverallSummary(report)

	if len(report.Vulnerabilities) > 0 {
		r.printVulnerabilities(report.Vulnerabilities)
	}

	if len(report.Recommendations) > 0 {
		r.printRecommendations(report.Recommendations)
	}

	return nil
}

// GenerateDiff prints a comparison of two runs
func (r *TextReporter) GenerateDiff(diff *models.DiffResult) error {
	r.printHeader("Levo Run Comparison")
	r.printf("Base: %s\n", diff.BaseRun)
	r.printf("Head: %s\n\n", diff.HeadRun)

	s := diff.Summary
	r.printf("Overall: %d → %d vulnerabilities (%+.1f%% %s %s)\n",
		s.BaseTotal, s.HeadTotal, s.ChangePercent, s.Direction, aggregator.GetTrendIndicator(s.Direction))
	r.printf("  New: %d  Resolved: %d  Unchanged: %d\n", s.NewCount, s.ResolvedCount, diff.Unchanged)

	if len(diff.New) > 0 {
		r.printf("\nNew Vulnerabilities:\n")
		r.printf("--------------------------------------------------\n")
		for _, v := range aggregator.SortByRisk(diff.New) {
			r.printf("  + %s\n", oneLine(v))
		}
	}

	if len(diff.Resolved) > 0 {
		r.printf("\nResolved Vulnerabilities:\n")
		r.printf("--------------------------------------------------\n")
		for _, v := range aggregator.SortByRisk(diff.Resolved) {
			r.printf("  - %s\n", oneLine(v))
		}
	}

	return nil
}

// printHeader prints the report header
func (r *TextReporter) printHeader(title string) {
	r.printf("╔════════════════════════════════════════════╗\n")
	r.printf("║ %-42s ║\n", title)
	r.printf("╚════════════════════════════════════════════╝\n\n")
}

// printOverallSummary prints the overall summary section
func (r *TextReporter) printOverallSummary(report *models.Report) {
	s := report.Summary

	r.printf("Overall Summary:\n")
	r.printf("--------------------------------------------------\n")
	r.printf("  Total Vulnerabilities: %d\n", s.TotalVulnerabilities)
	r.printf("  Affected Endpoints: %d\n", s.AffectedEndpoints)
	if s.HighestRisk != "" {
		r.printf("  Highest Risk: %s\n", s.HighestRisk)
	}
	if report.Stats.CaseRuns > 0 {
		r.printf("  Test Cases: %d in %d suite run(s), %d failed\n",
			report.Stats.CaseRuns, report.Stats.SuiteRuns, report.Stats.FailedCases)
	}
	r.printf("  Health Score: %s", strings.ToUpper(s.HealthScore))
	if s.ScorePercent > 0 {
		r.printf(" (%.1f%%)", s.ScorePercent)
	}
	r.printf("\n\n")

	if len(s.ByRisk) > 0 {
		r.printf("Vulnerabilities by Risk:\n")
		for _, risk := range sortedByRisk(s.ByRisk) {
			r.printf("  %s: %d\n", titleCase(risk), s.ByRisk[risk])
		}
		r.printf("\n")
	}

	if len(report.Vulnerabilities) > 0 {
		groups := aggregator.GroupByCWE(report.Vulnerabilities)
		r.printf("Vulnerabilities by CWE:\n")
		for _, cwe := range aggregator.GroupKeys(groups) {
			r.printf("  %s: %d\n", cwe, len(groups[cwe]))
		}
		r.printf("\n")
	}

	if len(s.ByCategory) > 0 {
		r.printf("Vulnerabilities by Category:\n")
		for _, cat := range sortedKeys(s.ByCategory) {
			r.printf("  %s: %d\n", cat, s.ByCategory[cat])
		}
		r.printf("\n")
	}
}

// printVulnerabilities lists records, most severe first
func (r *TextReporter) printVulnerabilities(vulns []models.Vulnerability) {
	r.printf("Vulnerabilities:\n")
	r.printf("--------------------------------------------------\n")

	for i, v := range aggregator.SortByRisk(vulns) {
		r.printf("  %d. [%s] %s › %s", i+1, strings.ToUpper(orDash(v.Risk)), v.Endpoint, v.TestCaseName)
		if v.TestCaseCategory != "" {
			r.printf(" (%s)", v.TestCaseCategory)
		}
		r.printf("\n")

		if code := v.CWECode(); code != "" {
			r.printf("     CWE: %s", code)
			if summary := v.CWESummary(); summary != "" {
				r.printf(" %s", summary)
			}
			r.printf("\n")
		}
		if v.Confidence != "" {
			r.printf("     Confidence: %s\n", v.Confidence)
		}
		if e := v.EvidenceText(); e != "" {
			r.printf("     Evidence: %s\n", e)
		}
		if v.Solution != "" {
			r.printf("     Solution: %s\n", v.Solution)
		}
		if v.Reference != "" {
			r.printf("     Reference: %s\n", v.Reference)
		}
	}
	r.printf("\n")
}

// printRecommendations prints the recommendations section
func (r *TextReporter) printRecommendations(recommendations []models.Recommendation) {
	r.printf("Recommended Actions:\n")
	r.printf("--------------------------------------------------\n")

	for i, rec := range recommendations {
		r.printf("  %d. [%s] %s\n", i+1, strings.ToUpper(orDash(rec.Risk)), rec.Title)
		r.printf("     Endpoints: %s\n", strings.Join(rec.Endpoints, ", "))
		if rec.Solution != "" {
			r.printf("     Solution: %s\n", rec.Solution)
		}
	}
}

// printf is a helper to write formatted output
func (r *TextReporter) printf(format string, args ...interface{}) {
	fmt.Fprintf(r.writer, format, args...)
}

// formatTimestamp formats a timestamp for display
func formatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

func oneLine(v models.Vulnerability) string {
	line := fmt.Sprintf("[%s] %s › %s", strings.ToUpper(orDash(v.Risk)), v.Endpoint, v.TestCaseName)
	if code := v.CWECode(); code != "" {
		line += " (" + code + ")"
	}
	return line
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedByRisk(m map[string]int) []string {
	keys := sortedKeys(m)
	sort.SliceStable(keys, func(i, j int) bool {
		return models.RiskPriority(keys[i]) < models.RiskPriority(keys[j])
	})
	return keys
}
