package tui

import (
	"fmt"
	"strings"

	"github.com/ppiankov/levovulns/internal/models"
)

// detailHeight is the fixed number of lines for the detail panel.
const detailHeight = 5

// renderDetail produces the detail view for a selected vulnerability.
func renderDetail(v *models.Vulnerability, width int) string {
	if v == nil {
		return styleDetailPanel.Width(width).Render("No vulnerability selected")
	}

	var b strings.Builder

	riskStyled := riskStyle(v.Risk).Render(riskLabel(v.Risk))
	b.WriteString(fmt.Sprintf("%s  %s › %s", riskStyled, v.Endpoint, v.TestCaseName))
	if v.TestCaseCategory != "" {
		b.WriteString(fmt.Sprintf(" (%s)", v.TestCaseCategory))
	}
	b.WriteString("\n")

	if code := v.CWECode(); code != "" {
		b.WriteString("CWE: " + code)
		if s := v.CWESummary(); s != "" {
			b.WriteString(" " + s)
		}
		b.WriteString("\n")
	}

	if e := v.EvidenceText(); e != "" {
		b.WriteString(fmt.Sprintf("Evidence: %s\n", e))
	}

	if v.Solution != "" {
		b.WriteString(fmt.Sprintf("Solution: %s", v.Solution))
	}

	return styleDetailPanel.Width(width).Render(b.String())
}
