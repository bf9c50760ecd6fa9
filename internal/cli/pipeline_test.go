package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ppiankov/levovulns/internal/config"
	"github.com/ppiankov/levovulns/internal/models"
)

func strPtr(s string) *string { return &s }

func testFindings() *models.RunFindings {
	return &models.RunFindings{
		RunID: "run-1",
		Vulnerabilities: []models.Vulnerability{
			{Endpoint: "GET /a", TestCaseName: "sqli", TestCaseCategory: "Injection", Risk: "High", CWE: strPtr("CWE-89")},
			{Endpoint: "GET /b", TestCaseName: "xss", TestCaseCategory: "XSS", Risk: "Medium"},
			{Endpoint: "GET /c", TestCaseName: "info leak", TestCaseCategory: "Exposure", Risk: "Low", CWE: strPtr("CWE-200")},
		},
		Stats: models.TraversalStats{SuiteRuns: 3, CaseRuns: 6, FailedCases: 3},
	}
}

// --- RunPipeline tests ---

func TestRunPipelineWritesFile(t *testing.T) {
	dir := chdirTemp(t)
	withTestConfig(t, config.DefaultConfig())
	out := filepath.Join(dir, "report.csv")

	err := RunPipeline(testFindings(), PipelineConfig{Format: "csv", Output: out})
	if err != nil {
		t.Fatalf("RunPipeline: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Errorf("expected header plus 3 rows, got %d lines:\n%s", len(lines), data)
	}
}

func TestRunPipelineFilter(t *testing.T) {
	chdirTemp(t)
	withTestConfig(t, config.DefaultConfig())

	f, err := compileFilter(`risk_rank <= 1`)
	if err != nil {
		t.Fatalf("compileFilter: %v", err)
	}

	output := captureStdout(t, func() {
		if err := RunPipeline(testFindings(), PipelineConfig{Format: "json", Filter: f}); err != nil {
			t.Errorf("RunPipeline: %v", err)
		}
	})

	if !strings.Contains(output, `"GET /a"`) {
		t.Errorf("expected high record in output: %s", output)
	}
	if strings.Contains(output, `"GET /b"`) || strings.Contains(output, `"GET /c"`) {
		t.Errorf("expected medium and low records to be filtered out: %s", output)
	}
}

func TestRunPipelineThreshold(t *testing.T) {
	chdirTemp(t)
	withTestConfig(t, config.DefaultConfig())

	var err error
	captureStdout(t, func() {
		err = RunPipeline(testFindings(), PipelineConfig{Format: "json", Threshold: 2})
	})

	var te *ThresholdExceededError
	if !errors.As(err, &te) {
		t.Fatalf("expected ThresholdExceededError, got %v", err)
	}
	if te.Count != 3 || te.Threshold != 2 {
		t.Errorf("unexpected threshold error: %+v", te)
	}
}

func TestRunPipelinePolicy(t *testing.T) {
	dir := chdirTemp(t)
	withTestConfig(t, config.DefaultConfig())

	tests := []struct {
		name     string
		policy   string
		wantCode int
	}{
		{"passes", "version: \"1\"\nrules:\n  max_vulnerabilities: 5\n", ExitOK},
		{"max high", "version: \"1\"\nrules:\n  max_high: 0\n", ExitPolicyFail},
		{"forbidden category", "version: \"1\"\nrules:\n  forbid_categories: [xss, exposure]\n", ExitPolicyFail},
		{"invalid yaml", "rules: [unclosed\n", ExitInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, strings.ReplaceAll(tt.name, " ", "-")+".yaml")
			if err := os.WriteFile(path, []byte(tt.policy), 0644); err != nil {
				t.Fatal(err)
			}

			var err error
			captureStdout(t, func() {
				err = RunPipeline(testFindings(), PipelineConfig{Format: "json", PolicyPath: path})
			})
			if code := HandleError(err); code != tt.wantCode {
				t.Errorf("exit code = %d, want %d (err: %v)", code, tt.wantCode, err)
			}
		})
	}
}

func TestRunPipelineForbiddenCategoriesCountEach(t *testing.T) {
	dir := chdirTemp(t)
	withTestConfig(t, config.DefaultConfig())
	path := filepath.Join(dir, "policy.yaml")
	if err := os.WriteFile(path, []byte("rules:\n  forbid_categories: [xss, exposure]\n"), 0644); err != nil {
		t.Fatal(err)
	}

	var err error
	captureStdout(t, func() {
		err = RunPipeline(testFindings(), PipelineConfig{Format: "json", PolicyPath: path})
	})

	var pv *PolicyViolationError
	if !errors.As(err, &pv) || pv.Violations != 2 {
		t.Errorf("expected 2 violations, got %v", err)
	}
}

func TestRunPipelineInvalidFormat(t *testing.T) {
	chdirTemp(t)
	withTestConfig(t, config.DefaultConfig())

	err := RunPipeline(testFindings(), PipelineConfig{Format: "xml"})
	if HandleError(err) != ExitInvalidInput {
		t.Errorf("expected invalid input, got %v", err)
	}
}

func TestRunPipelineEmptyFindings(t *testing.T) {
	chdirTemp(t)
	withTestConfig(t, config.DefaultConfig())

	output := captureStdout(t, func() {
		err := RunPipeline(&models.RunFindings{RunID: "run-1"}, PipelineConfig{Format: "json", Threshold: 1})
		if err != nil {
			t.Errorf("RunPipeline: %v", err)
		}
	})
	if output != "[]\n" {
		t.Errorf("expected empty array, got %q", output)
	}
}

// --- resolveFormat / compileFilter tests ---

func TestResolveFormat(t *testing.T) {
	c := config.DefaultConfig()
	c.Format = "yaml"
	withTestConfig(t, c)

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", "yaml", false},
		{"sarif", "sarif", false},
		{"grouped", "grouped", false},
		{"html", "", true},
	}
	for _, tt := range tests {
		got, err := resolveFormat(tt.in)
		if tt.wantErr {
			if HandleError(err) != ExitInvalidInput {
				t.Errorf("resolveFormat(%q): expected validation error, got %v", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("resolveFormat(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestCompileFilter(t *testing.T) {
	f, err := compileFilter("")
	if err != nil || f != nil {
		t.Errorf("empty expression should compile to nil, got %v, %v", f, err)
	}

	if _, err := compileFilter(`risk == "High" && has_cwe`); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	_, err = compileFilter(`unknown_field == 1`)
	if HandleError(err) != ExitInvalidInput {
		t.Errorf("expected validation error for unknown field, got %v", err)
	}
}
