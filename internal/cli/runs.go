package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/ppiankov/levovulns/internal/levoapi"
	"github.com/ppiankov/levovulns/internal/models"
	"github.com/spf13/cobra"
)

var (
	runsFormat string
	runsMine   bool
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List the most recent test runs",
	Long: `List the most recently modified test runs of the workspace, newest first.
Only the first page is fetched (runs_page_size, default 20).

Example:
  levovulns runs
  levovulns runs --mine --format json`,
	Args: cobra.NoArgs,
	RunE: runRuns,
}

func init() {
	runsCmd.Flags().StringVarP(&runsFormat, "format", "f", "text",
		"output format: text or json")
	runsCmd.Flags().BoolVar(&runsMine, "mine", false,
		"only runs started by the authenticated user")
}

func runRuns(cmd *cobra.Command, args []string) error {
	if runsFormat != "text" && runsFormat != "json" {
		return &ValidationError{Message: fmt.Sprintf("invalid format: %s (use text or json)", runsFormat)}
	}

	ctx := commandContext(cmd)
	runs, err := newAPIClient(ctx).TestRuns(ctx, runsMine)
	if err != nil {
		logError("Failed to list runs: %v", err)
		return err
	}

	logVerbose("Fetched %d run(s)", len(runs))

	if runsFormat == "json" {
		if runs == nil {
			runs = []levoapi.TestRun{}
		}
		return writeJSON(os.Stdout, runs)
	}

	if len(runs) == 0 {
		fmt.Println("No test runs found.")
		return nil
	}

	fmt.Println(renderRunsTable(runs))
	return nil
}

// renderRunsTable lays the runs out as a bordered table
func renderRunsTable(runs []levoapi.TestRun) string {
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			r.RunUUID,
			r.Name,
			r.Status,
			string(r.StartTime),
			formatMillis(r.DurationMillis),
			r.Author,
			r.TestPlanName,
		})
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#444444"))).
		Headers("RUN", "NAME", "STATUS", "STARTED", "DURATION", "AUTHOR", "PLAN").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	return t.Render()
}

// formatMillis renders a millisecond count as a rounded duration.
// Values that are not integers are returned unchanged.
func formatMillis(ms models.Text) string {
	n, err := strconv.ParseInt(string(ms), 10, 64)
	if err != nil {
		return string(ms)
	}
	return (time.Duration(n) * time.Millisecond).Round(time.Second).String()
}

// writeJSON writes v as indented JSON
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
