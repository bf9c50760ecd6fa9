package aggregator

import (
	"github.com/ppiankov/levovulns/internal/models"
)

// DiffAnalyzer compares the vulnerabilities of two runs
type DiffAnalyzer struct{}

// NewDiffAnalyzer creates a new diff analyzer
func NewDiffAnalyzer() *DiffAnalyzer {
	return &DiffAnalyzer{}
}

// Compare matches records by fingerprint. Identical records are matched
// one to one, so a finding reported twice in head and once in base counts as one new.
func (d *DiffAnalyzer) Compare(base, head *models.RunFindings) *models.DiffResult {
	result := &models.DiffResult{
		BaseRun:  base.RunID,
		HeadRun:  head.RunID,
		New:      []models.Vulnerability{},
		Resolved: []models.Vulnerability{},
	}

	headCounts := fingerprintCounts(head.Vulnerabilities)
	for _, v := range base.Vulnerabilities {
		fp := v.Fingerprint()
		if headCounts[fp] > 0 {
			headCounts[fp]--
			continue
		}
		result.Resolved = append(result.Resolved, v)
	}

	baseCounts := fingerprintCounts(base.Vulnerabilities)
	for _, v := range head.Vulnerabilities {
		fp := v.Fingerprint()
		if baseCounts[fp] > 0 {
			baseCounts[fp]--
			result.Unchanged++
			continue
		}
		result.New = append(result.New, v)
	}

	result.Summary = d.summarize(len(base.Vulnerabilities), len(head.Vulnerabilities), result)
	return result
}

func (d *DiffAnalyzer) summarize(baseTotal, headTotal int, result *models.DiffResult) models.DiffSummary {
	s := models.DiffSummary{
		BaseTotal:     baseTotal,
		HeadTotal:     headTotal,
		NewCount:      len(result.New),
		ResolvedCount: len(result.Resolved),
		Delta:         headTotal - baseTotal,
		NewByRisk:     make(map[string]int),
	}

	for _, v := range result.New {
		s.NewByRisk[RiskKey(v.Risk)]++
	}

	if baseTotal > 0 {
		s.ChangePercent = float64(s.Delta) / float64(baseTotal) * 100.0
	} else if headTotal > 0 {
		s.ChangePercent = 100.0
	}

	switch {
	case s.Delta < 0:
		s.Direction = "improving"
	case s.Delta > 0:
		s.Direction = "degrading"
	case s.NewCount > 0:
		// Same total, different findings.
		s.Direction = "changed"
	default:
		s.Direction = "stable"
	}

	return s
}

func fingerprintCounts(vulns []models.Vulnerability) map[string]int {
	counts := make(map[string]int, len(vulns))
	for _, v := range vulns {
		counts[v.Fingerprint()]++
	}
	return counts
}

// GetTrendIndicator returns a visual indicator for trend direction
func GetTrendIndicator(direction string) string {
	switch direction {
	case "improving":
		return "↓"
	case "degrading":
		return "↑"
	case "stable":
		return "→"
	case "changed":
		return "↔"
	default:
		return "?"
	}
}
