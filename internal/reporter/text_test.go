package reporter

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ppiankov/levovulns/internal/models"
)

func TestTextReporterGenerate(t *testing.T) {
	var buf bytes.Buffer
	if err := NewTextReporter(&buf).Generate(sampleReport()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()
	expectedFragments := []string{
		"Levo Vulnerability Report",
		"Run: run-123",
		"Total Vulnerabilities: 2",
		"Affected Endpoints: 2",
		"Highest Risk: High",
		"Test Cases: 10 in 2 suite run(s), 2 failed",
		"Health Score: CRITICAL (80.0%)",
		"High: 1",
		"CWE-89: 1",
		"[HIGH] Suite A › Case 1 (Injection)",
		"CWE: CWE-89 SQL Injection",
		"Evidence: t",
		"Recommended Actions:",
		"Fix SQL Injection on 1 endpoint",
	}
	for _, frag := range expectedFragments {
		if !strings.Contains(output, frag) {
			t.Errorf("expected output to contain %q", frag)
		}
	}

	if strings.Index(output, "[HIGH]") > strings.Index(output, "[MEDIUM]") {
		t.Error("expected high risk to be listed before medium")
	}
}

func TestTextReporterGenerateEmpty(t *testing.T) {
	var buf bytes.Buffer
	report := &models.Report{Summary: models.Summary{HealthScore: "unknown"}}
	if err := NewTextReporter(&buf).Generate(report); err != nil {
		t.Fatal(err)
	}
	output := buf.String()
	if !strings.Contains(output, "Total Vulnerabilities: 0") {
		t.Error("expected zero total")
	}
	if strings.Contains(output, "Vulnerabilities:\n---") {
		t.Error("expected no vulnerability list")
	}
}

func TestTextReporterGenerateDiff(t *testing.T) {
	var buf bytes.Buffer
	report := sampleReport()
	diff := &models.DiffResult{
		BaseRun:   "run-1",
		HeadRun:   "run-2",
		New:       report.Vulnerabilities[:1],
		Resolved:  report.Vulnerabilities[1:],
		Unchanged: 3,
		Summary:   models.DiffSummary{BaseTotal: 4, HeadTotal: 4, NewCount: 1, ResolvedCount: 1, Direction: "changed"},
	}
	if err := NewTextReporter(&buf).GenerateDiff(diff); err != nil {
		t.Fatal(err)
	}

	output := buf.String()
	for _, frag := range []string{
		"Base: run-1",
		"Head: run-2",
		"4 → 4 vulnerabilities",
		"New: 1  Resolved: 1  Unchanged: 3",
		"+ [HIGH] Suite A › Case 1 (CWE-89)",
		"- [MEDIUM] GET /search › reflected xss",
	} {
		if !strings.Contains(output, frag) {
			t.Errorf("expected output to contain %q", frag)
		}
	}
}

func TestTextReporterCWESectionUnclassifiedLast(t *testing.T) {
	report := sampleReport()
	report.Vulnerabilities = append([]models.Vulnerability{
		{Endpoint: "GET /a", Risk: "Low", CWE: strPtr("CWE-200")},
	}, report.Vulnerabilities...)

	var buf bytes.Buffer
	if err := NewTextReporter(&buf).Generate(report); err != nil {
		t.Fatal(err)
	}

	output := buf.String()
	start := strings.Index(output, "Vulnerabilities by CWE:")
	if start < 0 {
		t.Fatalf("missing CWE section:\n%s", output)
	}
	section := output[start:]
	section = section[:strings.Index(section, "\n\n")]

	want := "Vulnerabilities by CWE:\n  CWE-200: 1\n  CWE-89: 1\n  unclassified: 1"
	if section != want {
		t.Errorf("CWE section =\n%s\nwant\n%s", section, want)
	}
}
