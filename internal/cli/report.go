package cli

import (
	"github.com/spf13/cobra"
)

var (
	// Report flags, shared by the root command and report
	reportFormat    string
	reportOutput    string
	reportWhere     string
	reportPolicy    string
	reportThreshold int
	reportPretty    bool
)

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report <run-id>",
	Short: "Print the vulnerabilities found in a test run",
	Long: `Walk every suite run and case run of a test run, fetch the Result
attachment of each failed case, and print the failed assertions.

The default output is a JSON array with one record per failed assertion:
  endpoint, test_case_name, test_case_category, risk, confidence,
  evidence, solution, reference, overview, cwe, summary

cwe and summary appear only when the assertion carries them. risk,
confidence, solution and reference are always strings: a numeric 3 in
the attachment is printed as "3".

Filters use CEL over the record fields plus risk_rank (0 = critical)
and has_cwe.

Example:
  levovulns report 3f2a...
  levovulns report 3f2a... --format grouped --pretty
  levovulns report 3f2a... --where 'risk_rank <= 1 && has_cwe'
  levovulns report 3f2a... --format sarif -o levo.sarif --fail-threshold 10`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

func init() {
	addReportFlags(reportCmd)
}

func addReportFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&reportFormat, "format", "f", "",
		"output format: json, grouped, text, yaml, sarif, or csv (default from config)")
	cmd.Flags().StringVarP(&reportOutput, "output", "o", "",
		"output file path (default: stdout)")
	cmd.Flags().StringVarP(&reportWhere, "where", "w", "",
		"CEL expression selecting which vulnerabilities to report")
	cmd.Flags().StringVar(&reportPolicy, "policy", "",
		"policy file (default: .levovulns-policy.yaml in this or a parent directory)")
	cmd.Flags().IntVar(&reportThreshold, "fail-threshold", -1,
		"exit with code 1 if vulnerabilities exceed this count (default from config)")
	cmd.Flags().BoolVar(&reportPretty, "pretty", false,
		"indent JSON output")
}

func runReport(cmd *cobra.Command, args []string) error {
	runID := args[0]
	if err := validateRunArg(runID); err != nil {
		return err
	}

	pcfg, err := reportPipelineConfig()
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	findings, err := collectRun(ctx, newAPIClient(ctx), runID)
	if err != nil {
		return err
	}

	return RunPipeline(findings, pcfg)
}

// reportPipelineConfig validates the report flags before any request is made
func reportPipelineConfig() (PipelineConfig, error) {
	format, err := resolveFormat(reportFormat)
	if err != nil {
		return PipelineConfig{}, err
	}

	f, err := compileFilter(reportWhere)
	if err != nil {
		return PipelineConfig{}, err
	}

	threshold := reportThreshold
	if threshold == -1 {
		threshold = cfg.FailThreshold
	}

	logDebug("Config: format=%s, threshold=%d, where=%q", format, threshold, reportWhere)

	return PipelineConfig{
		Format:     format,
		Output:     reportOutput,
		Pretty:     reportPretty,
		Filter:     f,
		PolicyPath: reportPolicy,
		Threshold:  threshold,
	}, nil
}
