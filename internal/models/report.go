package models

import "time"

// TraversalStats counts what a run traversal visited
type TraversalStats struct {
	SuiteRuns   int `json:"suite_runs"`
	CaseRuns    int `json:"case_runs"`
	FailedCases int `json:"failed_cases"`
	Attachments int `json:"attachments"`
}

// RunFindings is the raw output of walking one run
type RunFindings struct {
	RunID           string          `json:"run_id"`
	Vulnerabilities []Vulnerability `json:"vulnerabilities"`
	Stats           TraversalStats  `json:"stats"`
}

// Report is the aggregated view of a run's vulnerabilities
type Report struct {
	RunID           string           `json:"run_id"`
	GeneratedAt     time.Time        `json:"generated_at"`
	Vulnerabilities []Vulnerability  `json:"vulnerabilities"`
	Stats           TraversalStats   `json:"stats"`
	Summary         Summary          `json:"summary"`
	Recommendations []Recommendation `json:"recommendations"`
}

// Summary provides aggregate statistics for a report
type Summary struct {
	TotalVulnerabilities int            `json:"total_vulnerabilities"`
	AffectedEndpoints    int            `json:"affected_endpoints"`
	HighestRisk          string         `json:"highest_risk,omitempty"`
	ByRisk               map[string]int `json:"by_risk"`
	ByConfidence         map[string]int `json:"by_confidence"`
	ByCategory           map[string]int `json:"by_category"`
	ByCWE                map[string]int `json:"by_cwe"`
	ByEndpoint           map[string]int `json:"by_endpoint"`
	HealthScore          string         `json:"health_score"`  // excellent, good, warning, critical, severe
	ScorePercent         float64        `json:"score_percent"` // 0-100
}

// Recommendation is one remediation item per CWE
type Recommendation struct {
	CWE       string   `json:"cwe"`
	Title     string   `json:"title"`
	Risk      string   `json:"risk"`
	Count     int      `json:"count"`
	Endpoints []string `json:"endpoints"`
	Solution  string   `json:"solution"`
	Reference string   `json:"reference,omitempty"`
}

// DiffResult is the comparison of two runs
type DiffResult struct {
	BaseRun   string          `json:"base_run"`
	HeadRun   string          `json:"head_run"`
	New       []Vulnerability `json:"new"`
	Resolved  []Vulnerability `json:"resolved"`
	Unchanged int             `json:"unchanged"`
	Summary   DiffSummary     `json:"summary"`
}

// DiffSummary holds aggregate counts for a diff
type DiffSummary struct {
	BaseTotal     int            `json:"base_total"`
	HeadTotal     int            `json:"head_total"`
	NewCount      int            `json:"new_count"`
	ResolvedCount int            `json:"resolved_count"`
	Delta         int            `json:"delta"`          // positive = more vulnerabilities
	Direction     string         `json:"direction"`      // "improving", "degrading", "changed", "stable"
	ChangePercent float64        `json:"change_percent"` // negative = improvement
	NewByRisk     map[string]int `json:"new_by_risk"`
}

// CalculateHealthScore determines overall health from affected vs total test cases.
// score = (total - affected) / total * 100, clamped 0-100.
func CalculateHealthScore(affected, total int) (string, float64) {
	if total == 0 {
		return "unknown", 0.0
	}

	score := float64(total-affected) / float64(total) * 100.0

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	var health string
	switch {
	case score >= 95:
		health = "excellent"
	case score >= 85:
		health = "good"
	case score >= 70:
		health = "warning"
	case score >= 50:
		health = "critical"
	default:
		health = "severe"
	}

	return health, score
}
