package cli

import (
	"os"

	"github.com/ppiankov/levovulns/internal/aggregator"
	"github.com/ppiankov/levovulns/internal/reporter"
	"github.com/ppiankov/levovulns/internal/tui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var browseWhere string

var browseCmd = &cobra.Command{
	Use:   "browse <run-id>",
	Short: "Explore a run's vulnerabilities in an interactive table",
	Long: `Collect a run and open an interactive table of its vulnerabilities.

Keys: / search, f filter by category, r cycle risk filter, s cycle sort,
c copy the selected record, esc clear filters, q quit.

When stdout is not a terminal the text report is printed instead.

Example:
  levovulns browse 3f2a...
  levovulns browse 3f2a... --where 'has_cwe'`,
	Args: cobra.ExactArgs(1),
	RunE: runBrowse,
}

func init() {
	browseCmd.Flags().StringVarP(&browseWhere, "where", "w", "",
		"CEL expression selecting which vulnerabilities to show")
}

func runBrowse(cmd *cobra.Command, args []string) error {
	runID := args[0]
	if err := validateRunArg(runID); err != nil {
		return err
	}

	f, err := compileFilter(browseWhere)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	findings, err := collectRun(ctx, newAPIClient(ctx), runID)
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

	report := aggregator.New().Aggregate(findings)

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		logVerbose("stdout is not a terminal; printing text report")
		return reporter.NewTextReporter(os.Stdout).Generate(report)
	}

	return tui.Run(report)
}
