package policy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ppiankov/levovulns/internal/models"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func baseReport() *models.Report {
	return &models.Report{
		Summary: models.Summary{
			TotalVulnerabilities: 3,
			ByRisk:               map[string]int{"critical": 1, "high": 1, "low": 1},
			ByCategory:           map[string]int{"Injection": 2, "Misconfiguration": 1},
			ByCWE:                map[string]int{"CWE-89": 2, models.Unclassified: 1},
			ScorePercent:         75.0,
			HealthScore:          "warning",
		},
	}
}

func TestEvaluateNilPolicy(t *testing.T) {
	var p *Policy
	result := p.Evaluate(baseReport())
	if !result.Pass {
		t.Error("nil policy should pass")
	}
}

func TestEvaluateRules(t *testing.T) {
	tests := []struct {
		name     string
		rules    Rules
		wantRule string
	}{
		{name: "max vulnerabilities pass", rules: Rules{MaxVulnerabilities: intPtr(3)}},
		{name: "max vulnerabilities fail", rules: Rules{MaxVulnerabilities: intPtr(2)}, wantRule: "max_vulnerabilities"},
		{name: "max critical pass", rules: Rules{MaxCritical: intPtr(1)}},
		{name: "max critical fail", rules: Rules{MaxCritical: intPtr(0)}, wantRule: "max_critical"},
		{name: "max high fail", rules: Rules{MaxHigh: intPtr(0)}, wantRule: "max_high"},
		{name: "max medium pass", rules: Rules{MaxMedium: intPtr(0)}},
		{name: "min score pass", rules: Rules{MinScore: floatPtr(70)}},
		{name: "min score fail", rules: Rules{MinScore: floatPtr(80)}, wantRule: "min_score"},
		{name: "forbid cwe pass", rules: Rules{ForbidCWEs: []string{"CWE-79"}}},
		{name: "forbid cwe fail", rules: Rules{ForbidCWEs: []string{"cwe-89"}}, wantRule: "forbid_cwes"},
		{name: "forbid category pass", rules: Rules{ForbidCategories: []string{"Authorization"}}},
		{name: "forbid category fail", rules: Rules{ForbidCategories: []string{"injection"}}, wantRule: "forbid_categories"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			result := (&Policy{Rules: tt.rules}).Evaluate(baseReport())
			if tt.wantRule == "" {
				if !result.Pass {
					t.Errorf("expected pass, got violations: %v", result.Violations)
				}
				return
			}
			if result.Pass {
				t.Fatalf("expected %s violation", tt.wantRule)
			}
			if len(result.Violations) != 1 || result.Violations[0].Rule != tt.wantRule {
				t.Errorf("expected single %s violation, got %v", tt.wantRule, result.Violations)
			}
		})
	}
}

func TestEvaluateMultipleViolations(t *testing.T) {
	p := &Policy{Rules: Rules{
		MaxVulnerabilities: intPtr(0),
		MaxCritical:        intPtr(0),
		ForbidCWEs:         []string{"CWE-89"},
	}}
	result := p.Evaluate(baseReport())
	if len(result.Violations) != 3 {
		t.Errorf("expected 3 violations, got %d: %v", len(result.Violations), result.Violations)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".levovulns-policy.yaml")
	content := `version: 1
rules:
  max_vulnerabilities: 10
  max_high: 2
  forbid_cwes:
    - CWE-89
  forbid_categories:
    - Injection
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if p.Rules.MaxVulnerabilities == nil || *p.Rules.MaxVulnerabilities != 10 {
		t.Errorf("max_vulnerabilities = %v", p.Rules.MaxVulnerabilities)
	}
	if p.Rules.MaxHigh == nil || *p.Rules.MaxHigh != 2 {
		t.Errorf("max_high = %v", p.Rules.MaxHigh)
	}
	if p.Rules.MaxCritical != nil {
		t.Error("max_critical should be unset")
	}
	if len(p.Rules.ForbidCWEs) != 1 || p.Rules.ForbidCWEs[0] != "CWE-89" {
		t.Errorf("forbid_cwes = %v", p.Rules.ForbidCWEs)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	p, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p != nil {
		t.Error("expected nil policy for missing file")
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("rules: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromFile(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestFindPolicyFile(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}
	policyPath := filepath.Join(root, ".levovulns-policy.yml")
	if err := os.WriteFile(policyPath, []byte("rules: {}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	origDir, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(origDir) })
	if err := os.Chdir(sub); err != nil {
		t.Fatal(err)
	}

	got := FindPolicyFile()
	// The temp dir may sit behind a symlink.
	want, _ := filepath.EvalSymlinks(policyPath)
	gotResolved, _ := filepath.EvalSymlinks(got)
	if gotResolved != want {
		t.Errorf("FindPolicyFile() = %q, want %q", got, policyPath)
	}
}
