package policy

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/levovulns/internal/models"
	"gopkg.in/yaml.v3"
)

// Policy defines enforcement rules for a vulnerability report.
type Policy struct {
	Version string `yaml:"version"`
	Rules   Rules  `yaml:"rules"`
}

// Rules contains all configurable policy rules.
type Rules struct {
	MaxVulnerabilities *int     `yaml:"max_vulnerabilities,omitempty"`
	MaxCritical        *int     `yaml:"max_critical,omitempty"`
	MaxHigh            *int     `yaml:"max_high,omitempty"`
	MaxMedium          *int     `yaml:"max_medium,omitempty"`
	MinScore           *float64 `yaml:"min_score,omitempty"`
	ForbidCWEs         []string `yaml:"forbid_cwes,omitempty"`
	ForbidCategories   []string `yaml:"forbid_categories,omitempty"`
}

// Violation is a single policy failure.
type Violation struct {
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// Result holds the outcome of a policy check.
type Result struct {
	Pass       bool        `json:"pass"`
	Violations []Violation `json:"violations"`
}

// LoadFromFile reads a policy file. A missing file yields a nil policy.
func LoadFromFile(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read policy: %w", err)
	}

	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse policy: %w", err)
	}

	return &p, nil
}

// FindPolicyFile searches for a policy file in the current directory
// and parent directories up to the filesystem root.
func FindPolicyFile() string {
	names := []string{".levovulns-policy.yaml", ".levovulns-policy.yml"}

	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		for _, name := range names {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// Evaluate checks a report against the policy rules.
func (p *Policy) Evaluate(report *models.Report) *Result {
	if p == nil {
		return &Result{Pass: true}
	}

	var violations []Violation
	s := report.Summary

	// max_vulnerabilities
	if p.Rules.MaxVulnerabilities != nil {
		if s.TotalVulnerabilities > *p.Rules.MaxVulnerabilities {
			violations = append(violations, Violation{
				Rule:    "max_vulnerabilities",
				Message: fmt.Sprintf("total vulnerabilities %d exceeds limit %d", s.TotalVulnerabilities, *p.Rules.MaxVulnerabilities),
			})
		}
	}

	// max_critical, max_high, max_medium
	for _, r := range []struct {
		rule  string
		risk  string
		limit *int
	}{
		{"max_critical", models.RiskCritical, p.Rules.MaxCritical},
		{"max_high", models.RiskHigh, p.Rules.MaxHigh},
		{"max_medium", models.RiskMedium, p.Rules.MaxMedium},
	} {
		if r.limit == nil {
			continue
		}
		if count := s.ByRisk[r.risk]; count > *r.limit {
			violations = append(violations, Violation{
				Rule:    r.rule,
				Message: fmt.Sprintf("%s vulnerabilities %d exceeds limit %d", r.risk, count, *r.limit),
			})
		}
	}

	// min_score
	if p.Rules.MinScore != nil {
		if s.ScorePercent < *p.Rules.MinScore {
			violations = append(violations, Violation{
				Rule:    "min_score",
				Message: fmt.Sprintf("score %.1f%% below minimum %.1f%%", s.ScorePercent, *p.Rules.MinScore),
			})
		}
	}

	// forbid_cwes
	for _, cwe := range p.Rules.ForbidCWEs {
		if count := countFold(s.ByCWE, cwe); count > 0 {
			violations = append(violations, Violation{
				Rule:    "forbid_cwes",
				Message: fmt.Sprintf("forbidden CWE %q has %d vulnerabilities", cwe, count),
			})
		}
	}

	// forbid_categories
	for _, cat := range p.Rules.ForbidCategories {
		if count := countFold(s.ByCategory, cat); count > 0 {
			violations = append(violations, Violation{
				Rule:    "forbid_categories",
				Message: fmt.Sprintf("forbidden category %q has %d vulnerabilities", cat, count),
			})
		}
	}

	return &Result{
		Pass:       len(violations) == 0,
		Violations: violations,
	}
}

// countFold sums the counts whose key matches name case-insensitively
func countFold(counts map[string]int, name string) int {
	total := 0
	for k, n := range counts {
		if strings.EqualFold(k, name) {
			total += n
		}
	}
	return total
}
