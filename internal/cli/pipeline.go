package cli

import (
	"fmt"
	"os"

	"github.com/ppiankov/levovulns/internal/aggregator"
	"github.com/ppiankov/levovulns/internal/config"
	"github.com/ppiankov/levovulns/internal/filter"
	"github.com/ppiankov/levovulns/internal/models"
	"github.com/ppiankov/levovulns/internal/policy"
	"github.com/ppiankov/levovulns/internal/reporter"
)

// PipelineConfig holds options for the shared reporting pipeline.
type PipelineConfig struct {
	Format     string
	Output     string
	Pretty     bool
	Filter     *filter.Filter
	PolicyPath string
	Threshold  int
}

// RunPipeline turns collected findings into output and enforces gates.
// Shared by report and extract:
// filter → aggregate → output → policy → threshold.
func RunPipeline(findings *models.RunFindings, pcfg PipelineConfig) error {
	// Step 1: Filter
	if pcfg.Filter != nil {
		kept, err := pcfg.Filter.Apply(findings.Vulnerabilities)
		if err != nil {
			logError("Failed to apply filter: %v", err)
			return &ValidationError{Message: err.Error()}
		}
		logVerbose("Filter %q kept %d of %d vulnerabilities", pcfg.Filter.String(), len(kept), len(findings.Vulnerabilities))
		findings = &models.RunFindings{RunID: findings.RunID, Vulnerabilities: kept, Stats: findings.Stats}
	}

	// Step 2: Aggregate
	report := aggregator.New().Aggregate(findings)
	logVerbose("Aggregated %d vulnerabilities across %d endpoints, %d recommendations",
		report.Summary.TotalVulnerabilities, report.Summary.AffectedEndpoints, len(report.Recommendations))

	// Step 3: Output
	if err := generateOutput(report, pcfg.Format, pcfg.Output, pcfg.Pretty); err != nil {
		logError("Failed to generate output: %v", err)
		return err
	}

	// Step 4: Policy enforcement (--policy or .levovulns-policy.yaml)
	policyPath := pcfg.PolicyPath
	if policyPath == "" {
		policyPath = policy.FindPolicyFile()
	}
	if policyPath != "" {
		logVerbose("Using policy file: %s", policyPath)

		pol, err := policy.LoadFromFile(policyPath)
		if err != nil {
			logError("Failed to load policy: %v", err)
			return &ValidationError{Message: err.Error()}
		}

		if pol != nil {
			result := pol.Evaluate(report)
			if !result.Pass {
				for _, v := range result.Violations {
					logError("Policy violation [%s]: %s", v.Rule, v.Message)
				}
				return &PolicyViolationError{Violations: len(result.Violations)}
			}
			logVerbose("Policy check passed")
		}
	}

	// Step 5: Check threshold
	if pcfg.Threshold > 0 && report.Summary.TotalVulnerabilities > pcfg.Threshold {
		logError("Vulnerability count (%d) exceeds threshold (%d)", report.Summary.TotalVulnerabilities, pcfg.Threshold)
		return &ThresholdExceededError{
			Count:     report.Summary.TotalVulnerabilities,
			Threshold: pcfg.Threshold,
		}
	}

	return nil
}

// generateOutput writes the report in the given format to stdout or a file.
func generateOutput(report *models.Report, format, outputPath string, pretty bool) error {
	writer := os.Stdout
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() { _ = f.Close() }()
		writer = f
	}

	r, err := reporter.New(format, writer, pretty)
	if err != nil {
		return &ValidationError{Message: err.Error()}
	}
	if err := r.Generate(report); err != nil {
		return err
	}

	if outputPath != "" {
		logVerbose("Report written to %s", outputPath)
	}
	return nil
}

// resolveFormat applies the config default and rejects unknown formats.
func resolveFormat(format string) (string, error) {
	if format == "" {
		format = cfg.Format
	}
	if !config.ValidFormats[format] {
		return "", &ValidationError{Message: fmt.Sprintf("invalid format: %s (must be json, grouped, text, yaml, sarif, or csv)", format)}
	}
	return format, nil
}

// compileFilter compiles a --where expression into an exit-2 error on failure.
func compileFilter(expr string) (*filter.Filter, error) {
	f, err := filter.Compile(expr)
	if err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}
	return f, nil
}
