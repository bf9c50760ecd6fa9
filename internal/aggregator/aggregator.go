package aggregator

import (
	"sort"
	"strings"
	"time"

	"github.com/ppiankov/levovulns/internal/models"
)

// Aggregator builds a report from the findings of one run
type Aggregator struct {
	recommender *RecommendationGenerator
}

// New creates a new aggregator
func New() *Aggregator {
	return &Aggregator{
		recommender: NewRecommendationGenerator(),
	}
}

// Aggregate computes summary statistics and recommendations for a run.
func (a *Aggregator) Aggregate(findings *models.RunFindings) *models.Report {
	vulns := findings.Vulnerabilities
	if vulns == nil {
		vulns = []models.Vulnerability{}
	}

	report := &models.Report{
		RunID:           findings.RunID,
		GeneratedAt:     time.Now().UTC(),
		Vulnerabilities: vulns,
		Stats:           findings.Stats,
	}

	a.calculateSummary(report)
	a.calculateHealthScore(report)
	report.Recommendations = a.recommender.GenerateRecommendations(vulns)

	return report
}

// calculateSummary counts vulnerabilities by risk, confidence, category, CWE and endpoint
func (a *Aggregator) calculateSummary(report *models.Report) {
	s := models.Summary{
		ByRisk:       make(map[string]int),
		ByConfidence: make(map[string]int),
		ByCategory:   make(map[string]int),
		ByCWE:        make(map[string]int),
		ByEndpoint:   make(map[string]int),
	}

	for _, v := range report.Vulnerabilities {
		s.ByRisk[RiskKey(v.Risk)]++
		s.ByConfidence[orUnknown(strings.ToLower(v.Confidence))]++
		s.ByCategory[orUnknown(v.TestCaseCategory)]++
		s.ByCWE[v.GroupKey()]++
		s.ByEndpoint[v.Endpoint]++

		if s.HighestRisk == "" || models.RiskPriority(v.Risk) < models.RiskPriority(s.HighestRisk) {
			s.HighestRisk = v.Risk
		}
	}

	s.TotalVulnerabilities = len(report.Vulnerabilities)
	s.AffectedEndpoints = len(s.ByEndpoint)
	report.Summary = s
}

// calculateHealthScore rates the run by the share of test cases that did not fail
func (a *Aggregator) calculateHealthScore(report *models.Report) {
	affected := report.Stats.FailedCases
	total := report.Stats.CaseRuns

	// Offline extraction has no traversal stats; fall back to the records themselves.
	if total == 0 && len(report.Vulnerabilities) > 0 {
		cases := make(map[string]bool)
		for _, v := range report.Vulnerabilities {
			cases[v.Endpoint+"\x1f"+v.TestCaseName] = true
		}
		affected = len(cases)
		total = len(cases)
	}

	report.Summary.HealthScore, report.Summary.ScorePercent = models.CalculateHealthScore(affected, total)
}

// RiskKey normalizes a risk level for counting: lowercase, "info" folded into
// "informational", empty becomes "unknown".
func RiskKey(risk string) string {
	r := strings.ToLower(strings.TrimSpace(risk))
	if r == "info" {
		return models.RiskInformational
	}
	return orUnknown(r)
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

// GroupByCWE groups vulnerabilities by CWE code; records without one go under
// models.Unclassified. Order within each group follows the input.
func GroupByCWE(vulns []models.Vulnerability) map[string][]models.Vulnerability {
	groups := make(map[string][]models.Vulnerability)
	for _, v := range vulns {
		key := v.GroupKey()
		groups[key] = append(groups[key], v)
	}
	return groups
}

// GroupKeys returns the keys of a CWE grouping sorted, with models.Unclassified last.
func GroupKeys(groups map[string][]models.Vulnerability) []string {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i] == models.Unclassified || keys[j] == models.Unclassified {
			return keys[j] == models.Unclassified && keys[i] != models.Unclassified
		}
		return keys[i] < keys[j]
	})
	return keys
}

// SortByRisk returns a copy ordered from most to least severe, stable within a level.
func SortByRisk(vulns []models.Vulnerability) []models.Vulnerability {
	sorted := make([]models.Vulnerability, len(vulns))
	copy(sorted, vulns)
	sort.SliceStable(sorted, func(i, j int) bool {
		return models.RiskPriority(sorted[i].Risk) < models.RiskPriority(sorted[j].Risk)
	})
	return sorted
}
