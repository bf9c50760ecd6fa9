package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/ppiankov/levovulns/internal/levoapi"
	"github.com/spf13/cobra"
)

var detailsFormat string

var detailsCmd = &cobra.Command{
	Use:   "details <run-id> [suite-run-id]",
	Short: "Show the details of a test run or one of its suite runs",
	Long: `Show status, timing, test counts and failure breakdowns of a test run.
With a suite run id, show the same for that suite run.

Example:
  levovulns details 3f2a...
  levovulns details 3f2a... 1842 --format json`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runDetails,
}

func init() {
	detailsCmd.Flags().StringVarP(&detailsFormat, "format", "f", "text",
		"output format: text or json")
}

func runDetails(cmd *cobra.Command, args []string) error {
	if detailsFormat != "text" && detailsFormat != "json" {
		return &ValidationError{Message: fmt.Sprintf("invalid format: %s (use text or json)", detailsFormat)}
	}

	runID := args[0]
	if err := validateRunArg(runID); err != nil {
		return err
	}

	ctx := commandContext(cmd)
	api := newAPIClient(ctx)

	if len(args) == 2 {
		suiteRunID := args[1]
		if err := levoapi.ValidateSuiteRunID(suiteRunID); err != nil {
			return &ValidationError{Message: err.Error()}
		}

		details, err := api.SuiteRunDetails(ctx, runID, suiteRunID)
		if err != nil {
			logError("Failed to fetch suite run %s: %v", suiteRunID, err)
			return err
		}
		if detailsFormat == "json" {
			return writeJSON(os.Stdout, details)
		}
		writeSuiteRunDetails(os.Stdout, details)
		return nil
	}

	details, err := api.RunDetails(ctx, runID)
	if err != nil {
		logError("Failed to fetch run %s: %v", runID, err)
		return err
	}
	if detailsFormat == "json" {
		return writeJSON(os.Stdout, details)
	}
	writeRunDetails(os.Stdout, details)
	return nil
}

func writeRunDetails(w io.Writer, d *levoapi.RunDetails) {
	fmt.Fprintf(w, "Run: %s", d.Name)
	if d.RunNumber != "" {
		fmt.Fprintf(w, " (#%s)", d.RunNumber)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "--------------------------------------------------")
	writeField(w, "Status", d.Status)
	writeField(w, "Author", d.Author)
	writeField(w, "Target", d.TargetURL)
	if d.TestPlanMetadata != nil {
		writeField(w, "Plan", d.TestPlanMetadata.PlanName)
	}
	writeField(w, "Started", string(d.StartTime))
	writeField(w, "Duration", formatMillis(d.DurationMillis))
	fmt.Fprintf(w, "  %-10s %s passed, %s failed\n", "Tests:", orZero(string(d.SuccessfulTests)), orZero(string(d.FailedTests)))

	writeBreakdown(w, "Failing suites", d.FailingTestSuitesData)
	writeBreakdown(w, "Failing categories", d.FailingTestCaseCategoriesData)
}

func writeSuiteRunDetails(w io.Writer, d *levoapi.TestSuiteRunDetails) {
	fmt.Fprintf(w, "Suite run: %s (%s)\n", d.Name, d.TestSuiteRunID)
	fmt.Fprintln(w, "--------------------------------------------------")
	writeField(w, "Status", d.Status)
	writeField(w, "Started", string(d.StartTime))
	writeField(w, "Duration", formatMillis(d.DurationMillis))
	fmt.Fprintf(w, "  %-10s %s total, %s passed, %s failed, %s errored\n", "Tests:",
		orZero(string(d.TotalTests)), orZero(string(d.SuccessfulTests)),
		orZero(string(d.FailedTests)), orZero(string(d.ErroredTests)))

	writeBreakdown(w, "Failing categories", d.FailingTestCaseCategoriesData)
}

func writeField(w io.Writer, name, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(w, "  %-10s %s\n", name+":", value)
}

func writeBreakdown(w io.Writer, title string, b *levoapi.Breakdown) {
	if b == nil || len(b.DataItems) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s:\n", title)
	for _, item := range b.DataItems {
		fmt.Fprintf(w, "  %s: %s", item.Name, orZero(string(item.Count)))
		if item.Percentage != "" {
			fmt.Fprintf(w, " (%s%%)", item.Percentage)
		}
		fmt.Fprintln(w)
	}
}

func orZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}
