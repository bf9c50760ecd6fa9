package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/ppiankov/levovulns/internal/models"
)

var tableColumns = []table.Column{
	{Title: "Risk", Width: 10},
	{Title: "Endpoint", Width: 30},
	{Title: "Test Case", Width: 26},
	{Title: "Category", Width: 14},
	{Title: "CWE", Width: 9},
	{Title: "Confidence", Width: 10},
}

// buildRows converts vulnerabilities to table rows.
func buildRows(vulns []models.Vulnerability) []table.Row {
	rows := make([]table.Row, 0, len(vulns))
	for _, v := range vulns {
		cwe := v.CWECode()
		if cwe == "" {
			cwe = "-"
		}
		rows = append(rows, table.Row{
			riskLabel(v.Risk),
			truncate(v.Endpoint, tableColumns[1].Width),
			truncate(v.TestCaseName, tableColumns[2].Width),
			truncate(v.TestCaseCategory, tableColumns[3].Width),
			cwe,
			v.Confidence,
		})
	}
	return rows
}

func riskLabel(r string) string {
	if r == "" {
		return "-"
	}
	return strings.ToUpper(r)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	const ellipsis = "..."
	if maxLen <= len(ellipsis) {
		return s[:maxLen]
	}
	return s[:maxLen-len(ellipsis)] + ellipsis
}

// newTable creates a bubbles table with standard columns and styling.
func newTable(rows []table.Row, height int) table.Model {
	t := table.New(
		table.WithColumns(tableColumns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(height),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(colorBorder).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(colorAccent).
		Bold(false)
	t.SetStyles(s)

	return t
}
