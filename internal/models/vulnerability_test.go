package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestVulnerabilityJSONKeyOrder(t *testing.T) {
	v := Vulnerability{
		Endpoint:         "Suite A",
		TestCaseName:     "Case 1",
		TestCaseCategory: "Injection",
		Risk:             "High",
		Confidence:       "Firm",
		Evidence:         "t",
		Solution:         "fix",
		Reference:        "ref",
		Overview:         "s",
		CWE:              strPtr("CWE-89"),
		Summary:          strPtr("SQL Injection"),
		TestSuiteRunID:   "hidden",
	}

	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	want := `{"endpoint":"Suite A","test_case_name":"Case 1","test_case_category":"Injection","risk":"High","confidence":"Firm","evidence":"t","solution":"fix","reference":"ref","overview":"s","cwe":"CWE-89","summary":"SQL Injection"}`
	if string(data) != want {
		t.Errorf("got  %s\nwant %s", data, want)
	}
}

func TestVulnerabilityOmitsAbsentCWE(t *testing.T) {
	data, err := json.Marshal(Vulnerability{Endpoint: "e"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	out := string(data)
	if strings.Contains(out, `"cwe"`) || strings.Contains(out, `"summary"`) {
		t.Errorf("expected no cwe/summary keys, got %s", out)
	}
	if strings.Contains(out, `"evidence"`) {
		t.Errorf("expected no evidence key, got %s", out)
	}
}

func TestRiskPriority(t *testing.T) {
	if RiskPriority("High") >= RiskPriority("medium") {
		t.Error("high should sort before medium")
	}
	if RiskPriority("Informational") != RiskPriority("info") {
		t.Error("info and informational should be equal")
	}
	if RiskPriority("bogus") <= RiskPriority("low") {
		t.Error("unknown risk should sort last")
	}
}

func TestEvidenceText(t *testing.T) {
	if got := (Vulnerability{}).EvidenceText(); got != "" {
		t.Errorf("nil evidence = %q", got)
	}
	if got := (Vulnerability{Evidence: "x"}).EvidenceText(); got != "x" {
		t.Errorf("string evidence = %q", got)
	}
	got := (Vulnerability{Evidence: map[string]any{"a": 1.0}}).EvidenceText()
	if got != `{"a":1}` {
		t.Errorf("object evidence = %q", got)
	}
}

func TestGroupKeyAndFingerprint(t *testing.T) {
	a := Vulnerability{Endpoint: "e", Risk: "High", CWE: strPtr("CWE-79"), TestCaseRunUUID: "one"}
	b := Vulnerability{Endpoint: "e", Risk: "high", CWE: strPtr("CWE-79"), TestCaseRunUUID: "two"}

	if a.GroupKey() != "CWE-79" {
		t.Errorf("GroupKey = %q", a.GroupKey())
	}
	if (Vulnerability{}).GroupKey() != Unclassified {
		t.Error("expected unclassified group key")
	}
	if a.Fingerprint() != b.Fingerprint() {
		t.Error("fingerprint should ignore run-scoped ids and risk case")
	}
}

func TestCalculateHealthScore(t *testing.T) {
	tests := []struct {
		affected, total int
		wantLevel       string
	}{
		{0, 0, "unknown"},
		{0, 100, "excellent"},
		{10, 100, "good"},
		{25, 100, "warning"},
		{40, 100, "critical"},
		{90, 100, "severe"},
	}
	for _, tt := range tests {
		level, _ := CalculateHealthScore(tt.affected, tt.total)
		if level != tt.wantLevel {
			t.Errorf("CalculateHealthScore(%d, %d) = %s, want %s", tt.affected, tt.total, level, tt.wantLevel)
		}
	}
}
