package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Risk levels reported by the testing service
const (
	RiskCritical      = "critical"
	RiskHigh          = "high"
	RiskMedium        = "medium"
	RiskLow           = "low"
	RiskInformational = "informational"
)

// Unclassified is the grouping key for vulnerabilities without a CWE code.
const Unclassified = "unclassified"

var riskPriority = map[string]int{
	RiskCritical:      0,
	RiskHigh:          1,
	RiskMedium:        2,
	RiskLow:           3,
	RiskInformational: 4,
	"info":            4,
}

// RiskPriority orders risk levels, lower is more severe.
// Matching is case-insensitive; unknown levels sort last.
func RiskPriority(risk string) int {
	if p, ok := riskPriority[strings.ToLower(strings.TrimSpace(risk))]; ok {
		return p
	}
	return len(riskPriority)
}

// Vulnerability is one failed assertion joined with its suite and case.
// Field order is the output key order.
type Vulnerability struct {
	Endpoint         string `json:"endpoint" yaml:"endpoint"`
	TestCaseName     string `json:"test_case_name" yaml:"test_case_name"`
	TestCaseCategory string `json:"test_case_category" yaml:"test_case_category"`
	Risk             string `json:"risk" yaml:"risk"`
	Confidence       string `json:"confidence" yaml:"confidence"`
	// Evidence is the evidence title, or the raw evidence value when it has no
	// title. A null or missing value leaves the key out of the record rather
	// than emitting "evidence": null.
	Evidence  any     `json:"evidence,omitempty" yaml:"evidence,omitempty"`
	Solution  string  `json:"solution" yaml:"solution"`
	Reference string  `json:"reference" yaml:"reference"`
	Overview  string  `json:"overview" yaml:"overview"`
	CWE       *string `json:"cwe,omitempty" yaml:"cwe,omitempty"`
	Summary   *string `json:"summary,omitempty" yaml:"summary,omitempty"`

	// Source identifiers, not part of the emitted record.
	TestSuiteRunID  string `json:"-" yaml:"-"`
	TestCaseRunUUID string `json:"-" yaml:"-"`
	AssertionID     string `json:"-" yaml:"-"`
}

// CWECode returns the CWE code or "" when absent.
func (v Vulnerability) CWECode() string {
	if v.CWE == nil {
		return ""
	}
	return *v.CWE
}

// CWESummary returns the CWE summary or "" when absent.
func (v Vulnerability) CWESummary() string {
	if v.Summary == nil {
		return ""
	}
	return *v.Summary
}

// GroupKey is the CWE code, or Unclassified when there is none.
func (v Vulnerability) GroupKey() string {
	if code := v.CWECode(); code != "" {
		return code
	}
	return Unclassified
}

// EvidenceText renders the evidence as a single line of text.
func (v Vulnerability) EvidenceText() string {
	switch e := v.Evidence.(type) {
	case nil:
		return ""
	case string:
		return e
	default:
		data, err := json.Marshal(e)
		if err != nil {
			return fmt.Sprintf("%v", e)
		}
		return string(data)
	}
}

// Fingerprint identifies the same finding across two runs.
// Run-scoped identifiers are not part of it.
func (v Vulnerability) Fingerprint() string {
	return strings.Join([]string{
		v.Endpoint,
		v.TestCaseName,
		v.TestCaseCategory,
		strings.ToLower(v.Risk),
		v.CWECode(),
		v.EvidenceText(),
	}, "\x1f")
}
