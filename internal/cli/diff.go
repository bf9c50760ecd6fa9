package cli

import (
	"fmt"
	"os"

	"github.com/ppiankov/levovulns/internal/aggregator"
	"github.com/ppiankov/levovulns/internal/models"
	"github.com/ppiankov/levovulns/internal/reporter"
	"github.com/spf13/cobra"
)

var (
	diffFormat  string
	diffOutput  string
	diffWhere   string
	diffPretty  bool
	diffFailNew bool
)

var diffCmd = &cobra.Command{
	Use:   "diff <base-run-id> <run-id>",
	Short: "Show what changed between two test runs",
	Long: `Compare the vulnerabilities of two test runs.

Shows new vulnerabilities, resolved vulnerabilities, and summary deltas.
Records are matched on endpoint, test case, category, risk, CWE and
evidence, so the same finding in two runs counts as unchanged.

Exit codes:
  0  No new vulnerabilities (or --fail-new not set)
  1  New vulnerabilities detected (with --fail-new)

Example:
  levovulns diff 1a2b... 3c4d...
  levovulns diff 1a2b... 3c4d... --fail-new --format json`,
	Args: cobra.ExactArgs(2),
	RunE: runDiff,
}

func init() {
	diffCmd.Flags().StringVarP(&diffFormat, "format", "f", "text",
		"output format: text or json")
	diffCmd.Flags().StringVarP(&diffOutput, "output", "o", "",
		"write output to file instead of stdout")
	diffCmd.Flags().StringVarP(&diffWhere, "where", "w", "",
		"CEL expression applied to both runs before comparing")
	diffCmd.Flags().BoolVar(&diffPretty, "pretty", false,
		"indent JSON output")
	diffCmd.Flags().BoolVar(&diffFailNew, "fail-new", false,
		"exit 1 if new vulnerabilities are found (for CI gating)")
}

func runDiff(cmd *cobra.Command, args []string) error {
	baseID, headID := args[0], args[1]
	for _, id := range args {
		if err := validateRunArg(id); err != nil {
			return err
		}
	}
	if diffFormat != "text" && diffFormat != "json" {
		return &ValidationError{Message: fmt.Sprintf("invalid format: %s (use text or json)", diffFormat)}
	}

	f, err := compileFilter(diffWhere)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	api := newAPIClient(ctx)

	runs := make([]*models.RunFindings, 0, 2)
	for _, id := range []string{baseID, headID} {
		findings, err := collectRun(ctx, api, id)
		if err != nil {
			return err
		}
		if f != nil {
			kept, err := f.Apply(findings.Vulnerabilities)
			if err != nil {
				return &ValidationError{Message: err.Error()}
			}
			findings.Vulnerabilities = kept
		}
		runs = append(runs, findings)
	}

	logVerbose("Comparing %s (base) with %s", baseID, headID)

	result := aggregator.NewDiffAnalyzer().Compare(runs[0], runs[1])

	if err := outputDiff(result, diffFormat, diffOutput, diffPretty); err != nil {
		logError("Failed to write diff: %v", err)
		return err
	}

	if diffFailNew && result.Summary.NewCount > 0 {
		return &ThresholdExceededError{Count: result.Summary.NewCount, Threshold: 0}
	}

	return nil
}

func outputDiff(result *models.DiffResult, format, outputPath string, pretty bool) error {
	writer := os.Stdout
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() { _ = f.Close() }()
		writer = f
	}

	if format == "json" {
		return reporter.NewJSONReporter(writer, pretty).GenerateDiff(result)
	}
	return reporter.NewTextReporter(writer).GenerateDiff(result)
}
