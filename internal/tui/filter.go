package tui

import (
	"sort"
	"strings"

	"github.com/ppiankov/levovulns/internal/models"
)

// filterState holds current active filters.
type filterState struct {
	Category   string
	Risk       string
	SearchText string
}

// sortField enumerates columns that can be sorted.
type sortField int

const (
	sortByRisk sortField = iota
	sortByEndpoint
	sortByCategory
	sortByCWE
	sortByConfidence
)

// sortFieldCount is the total number of sortable columns.
const sortFieldCount = 5

// applyFilters returns vulnerabilities matching all active filters.
func applyFilters(vulns []models.Vulnerability, f filterState) []models.Vulnerability {
	result := make([]models.Vulnerability, 0, len(vulns))
	searchLower := strings.ToLower(f.SearchText)

	for _, v := range vulns {
		if f.Category != "" && v.TestCaseCategory != f.Category {
			continue
		}
		if f.Risk != "" && !strings.EqualFold(v.Risk, f.Risk) {
			continue
		}
		if searchLower != "" && !matchesSearch(v, searchLower) {
			continue
		}
		result = append(result, v)
	}
	return result
}

func matchesSearch(v models.Vulnerability, searchLower string) bool {
	for _, field := range []string{
		v.Endpoint, v.TestCaseName, v.TestCaseCategory, v.Risk,
		v.CWECode(), v.CWESummary(), v.EvidenceText(),
	} {
		if strings.Contains(strings.ToLower(field), searchLower) {
			return true
		}
	}
	return false
}

// sortVulns sorts a slice of vulnerabilities in place by the given field.
func sortVulns(vulns []models.Vulnerability, field sortField) {
	sort.SliceStable(vulns, func(i, j int) bool {
		switch field {
		case sortByRisk:
			return models.RiskPriority(vulns[i].Risk) < models.RiskPriority(vulns[j].Risk)
		case sortByEndpoint:
			return vulns[i].Endpoint < vulns[j].Endpoint
		case sortByCategory:
			return vulns[i].TestCaseCategory < vulns[j].TestCaseCategory
		case sortByCWE:
			return vulns[i].GroupKey() < vulns[j].GroupKey()
		case sortByConfidence:
			return strings.ToLower(vulns[i].Confidence) < strings.ToLower(vulns[j].Confidence)
		default:
			return false
		}
	})
}

// uniqueCategories returns deduplicated, sorted test case categories.
func uniqueCategories(vulns []models.Vulnerability) []string {
	seen := make(map[string]bool)
	var categories []string
	for _, v := range vulns {
		if v.TestCaseCategory == "" || seen[v.TestCaseCategory] {
			continue
		}
		seen[v.TestCaseCategory] = true
		categories = append(categories, v.TestCaseCategory)
	}
	sort.Strings(categories)
	return categories
}

// uniqueRisks returns the lowercased risk levels present, most severe first.
func uniqueRisks(vulns []models.Vulnerability) []string {
	seen := make(map[string]bool)
	var risks []string
	for _, v := range vulns {
		r := strings.ToLower(v.Risk)
		if r == "" || seen[r] {
			continue
		}
		seen[r] = true
		risks = append(risks, r)
	}
	sort.SliceStable(risks, func(i, j int) bool {
		pi, pj := models.RiskPriority(risks[i]), models.RiskPriority(risks[j])
		if pi != pj {
			return pi < pj
		}
		return risks[i] < risks[j]
	})
	return risks
}

// nextRisk cycles through risks, returning "" after the last one.
func nextRisk(risks []string, current string) string {
	if current == "" {
		if len(risks) == 0 {
			return ""
		}
		return risks[0]
	}
	for i, r := range risks {
		if r == current && i+1 < len(risks) {
			return risks[i+1]
		}
	}
	return ""
}

// sortFieldName returns a human-readable name for the sort field.
func sortFieldName(f sortField) string {
	switch f {
	case sortByRisk:
		return "risk"
	case sortByEndpoint:
		return "endpoint"
	case sortByCategory:
		return "category"
	case sortByCWE:
		return "cwe"
	case sortByConfidence:
		return "confidence"
	default:
		return "unknown"
	}
}
