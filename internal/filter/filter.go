// Package filter selects vulnerability records with CEL expressions, e.g.
//
//	risk == "High" && has_cwe
//	endpoint.startsWith("POST ") || risk_rank <= 1
package filter

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/ppiankov/levovulns/internal/models"
)

// Variables available to expressions
var variables = []cel.EnvOption{
	cel.Variable("endpoint", cel.StringType),
	cel.Variable("test_case_name", cel.StringType),
	cel.Variable("category", cel.StringType),
	cel.Variable("risk", cel.StringType),
	cel.Variable("risk_rank", cel.IntType),
	cel.Variable("confidence", cel.StringType),
	cel.Variable("evidence", cel.StringType),
	cel.Variable("solution", cel.StringType),
	cel.Variable("reference", cel.StringType),
	cel.Variable("overview", cel.StringType),
	cel.Variable("cwe", cel.StringType),
	cel.Variable("cwe_summary", cel.StringType),
	cel.Variable("has_cwe", cel.BoolType),
}

// Filter is a compiled boolean expression over a vulnerability record.
type Filter struct {
	expr string
	prg  cel.Program
}

// Compile parses and type-checks expr. A blank expression yields a nil Filter,
// which matches everything.
func Compile(expr string) (*Filter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, nil
	}

	env, err := cel.NewEnv(variables...)
	if err != nil {
		return nil, fmt.Errorf("create filter environment: %w", err)
	}

	ast, iss := env.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return nil, fmt.Errorf("invalid filter %q: %w", expr, iss.Err())
	}
	if !reflect.DeepEqual(ast.OutputType(), cel.BoolType) {
		return nil, fmt.Errorf("invalid filter %q: must evaluate to bool, got %s", expr, ast.OutputType())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("invalid filter %q: %w", expr, err)
	}

	return &Filter{expr: expr, prg: prg}, nil
}

// String returns the source expression.
func (f *Filter) String() string {
	if f == nil {
		return ""
	}
	return f.expr
}

// Match evaluates the filter against one record.
func (f *Filter) Match(v models.Vulnerability) (bool, error) {
	if f == nil {
		return true, nil
	}

	out, _, err := f.prg.Eval(activation(v))
	if err != nil {
		return false, fmt.Errorf("evaluate filter %q: %w", f.expr, err)
	}
	matched, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("filter %q returned %T, want bool", f.expr, out.Value())
	}
	return matched, nil
}

// Apply returns the records that match, in their original order.
func (f *Filter) Apply(vulns []models.Vulnerability) ([]models.Vulnerability, error) {
	if f == nil {
		return vulns, nil
	}

	matched := make([]models.Vulnerability, 0, len(vulns))
	for _, v := range vulns {
		ok, err := f.Match(v)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, v)
		}
	}
	return matched, nil
}

func activation(v models.Vulnerability) map[string]any {
	return map[string]any{
		"endpoint":       v.Endpoint,
		"test_case_name": v.TestCaseName,
		"category":       v.TestCaseCategory,
		"risk":           v.Risk,
		"risk_rank":      int64(models.RiskPriority(v.Risk)),
		"confidence":     v.Confidence,
		"evidence":       v.EvidenceText(),
		"solution":       v.Solution,
		"reference":      v.Reference,
		"overview":       v.Overview,
		"cwe":            v.CWECode(),
		"cwe_summary":    v.CWESummary(),
		"has_cwe":        v.CWE != nil,
	}
}
