package reporter

import (
	"encoding/json"
	"io"
	"sort"
	"strings"

	"github.com/ppiankov/levovulns/internal/models"
)

// ToolVersion is reported as the SARIF driver version; set by the CLI.
var ToolVersion = "dev"

// SARIF 2.1.0 output for code scanning dashboards.
// Minimal structures, only what's needed for valid SARIF.

type sarifLog struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version"`
	Rules   []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string             `json:"id"`
	ShortDescription sarifMessage       `json:"shortDescription"`
	HelpURI          string             `json:"helpUri,omitempty"`
	DefaultConfig    sarifDefaultConfig `json:"defaultConfiguration"`
}

type sarifDefaultConfig struct {
	Level string `json:"level"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifResult struct {
	RuleID     string            `json:"ruleId"`
	Level      string            `json:"level"`
	Message    sarifMessage      `json:"message"`
	Locations  []sarifLocation   `json:"locations"`
	Properties map[string]string `json:"properties,omitempty"`
}

type sarifLocation struct {
	LogicalLocations []sarifLogical `json:"logicalLocations"`
}

type sarifLogical struct {
	Name               string `json:"name"`
	FullyQualifiedName string `json:"fullyQualifiedName"`
	Kind               string `json:"kind"`
}

// SARIFReporter writes a SARIF 2.1.0 log with one rule per CWE
type SARIFReporter struct {
	writer io.Writer
}

// NewSARIFReporter creates a new SARIF reporter
func NewSARIFReporter(writer io.Writer) *SARIFReporter {
	return &SARIFReporter{writer: writer}
}

// Generate writes the SARIF log
func (r *SARIFReporter) Generate(report *models.Report) error {
	rulesMap := map[string]sarifRule{}
	results := []sarifResult{}

	for _, v := range report.Vulnerabilities {
		ruleID := sarifRuleID(v)
		level := sarifLevel(v.Risk)
		if existing, exists := rulesMap[ruleID]; !exists || levelRank(level) > levelRank(existing.DefaultConfig.Level) {
			rulesMap[ruleID] = sarifRule{
				ID:               ruleID,
				ShortDescription: sarifMessage{Text: ruleDescription(v)},
				HelpURI:          helpURI(v.Reference),
				DefaultConfig:    sarifDefaultConfig{Level: level},
			}
		}

		results = append(results, sarifResult{
			RuleID:  ruleID,
			Level:   level,
			Message: sarifMessage{Text: formatEvidence(v)},
			Locations: []sarifLocation{{
				LogicalLocations: []sarifLogical{{
					Name:               v.TestCaseName,
					FullyQualifiedName: v.Endpoint + "/" + v.TestCaseName,
					Kind:               "function",
				}},
			}},
			Properties: map[string]string{
				"risk":       v.Risk,
				"confidence": v.Confidence,
				"category":   v.TestCaseCategory,
				"solution":   v.Solution,
			},
		})
	}

	rules := make([]sarifRule, 0, len(rulesMap))
	for _, rule := range rulesMap {
		rules = append(rules, rule)
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].ID < rules[j].ID })

	log := sarifLog{
		Schema:  "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json",
		Version: "2.1.0",
		Runs: []sarifRun{{
			Tool: sarifTool{
				Driver: sarifDriver{
					Name:    "levovulns",
					Version: ToolVersion,
					Rules:   rules,
				},
			},
			Results: results,
		}},
	}

	enc := json.NewEncoder(r.writer)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(log)
}

func sarifRuleID(v models.Vulnerability) string {
	if code := v.CWECode(); code != "" {
		return code
	}
	if v.TestCaseCategory != "" {
		return "levo/" + strings.ToLower(strings.ReplaceAll(v.TestCaseCategory, " ", "-"))
	}
	return "levo/" + models.Unclassified
}

func ruleDescription(v models.Vulnerability) string {
	if s := v.CWESummary(); s != "" {
		return s
	}
	if v.TestCaseCategory != "" {
		return v.TestCaseCategory
	}
	return v.TestCaseName
}

func helpURI(reference string) string {
	if strings.HasPrefix(reference, "http://") || strings.HasPrefix(reference, "https://") {
		return reference
	}
	return ""
}

func sarifLevel(risk string) string {
	switch models.RiskPriority(risk) {
	case models.RiskPriority(models.RiskCritical), models.RiskPriority(models.RiskHigh):
		return "error"
	case models.RiskPriority(models.RiskMedium):
		return "warning"
	default:
		return "note"
	}
}

func levelRank(level string) int {
	switch level {
	case "error":
		return 2
	case "warning":
		return 1
	default:
		return 0
	}
}

func formatEvidence(v models.Vulnerability) string {
	parts := []string{v.Endpoint + ": " + v.TestCaseName}
	if e := v.EvidenceText(); e != "" {
		parts = append(parts, e)
	}
	return strings.Join(parts, ". ")
}
