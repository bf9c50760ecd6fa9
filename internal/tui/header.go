package tui

import (
	"fmt"
	"strings"

	"github.com/ppiankov/levovulns/internal/models"
)

// headerHeight is the number of terminal lines the header occupies.
const headerHeight = 5

// renderHeader produces the header string from report data.
func renderHeader(report *models.Report, width int) string {
	var b strings.Builder
	summary := report.Summary

	// Line 1: title, run and health
	healthText := healthStyle(summary.HealthScore).Render(
		fmt.Sprintf("%s (%.0f%%)", strings.ToUpper(summary.HealthScore), summary.ScorePercent),
	)
	b.WriteString("Levo")
	if report.RunID != "" {
		b.WriteString(fmt.Sprintf("  Run: %s", report.RunID))
	}
	b.WriteString(fmt.Sprintf("  Health: %s\n", healthText))

	// Line 2: totals
	b.WriteString(fmt.Sprintf("Vulnerabilities: %d  Endpoints: %d",
		summary.TotalVulnerabilities, summary.AffectedEndpoints))
	if report.Stats.CaseRuns > 0 {
		b.WriteString(fmt.Sprintf("  Failed cases: %d/%d", report.Stats.FailedCases, report.Stats.CaseRuns))
	}
	b.WriteString("\n")

	// Line 3: risk breakdown
	riskParts := make([]string, 0, 5)
	for _, risk := range []string{models.RiskCritical, models.RiskHigh, models.RiskMedium, models.RiskLow, models.RiskInformational} {
		if count, ok := summary.ByRisk[risk]; ok && count > 0 {
			label := fmt.Sprintf("%s:%d", strings.ToUpper(risk[:1]), count)
			riskParts = append(riskParts, riskStyle(risk).Render(label))
		}
	}
	b.WriteString(strings.Join(riskParts, "  "))

	return styleHeader.Width(width).Render(b.String())
}
