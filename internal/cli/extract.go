package cli

import (
	"fmt"

	"github.com/ppiankov/levovulns/internal/aggregator"
	"github.com/ppiankov/levovulns/internal/collector"
	"github.com/ppiankov/levovulns/internal/models"
	"github.com/spf13/cobra"
)

var (
	extractEndpoint string
	extractCase     string
	extractCategory string
)

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Extract vulnerabilities from a saved Result attachment",
	Long: `Extract reads a Result attachment saved to disk and prints its failed
assertions without contacting the service.

The file may hold the attachment content document, the attachment object
({"content": "...", "contentType": ...}), or a full GraphQL response for
the attachment query. Use /dev/stdin to read from a pipe.

Returns exit 2 if the file is not a valid attachment document.

Example:
  levovulns extract result.json --endpoint "POST /login" --case "sql injection"
  levovulns extract result.json --format text --where 'risk == "High"'`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringVar(&extractEndpoint, "endpoint", "",
		"endpoint (suite run name) to put on each record")
	extractCmd.Flags().StringVar(&extractCase, "case", "",
		"test case name to put on each record")
	extractCmd.Flags().StringVar(&extractCategory, "category", "",
		"test case category to put on each record")
	addReportFlags(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	path := args[0]

	pcfg, err := reportPipelineConfig()
	if err != nil {
		return err
	}

	doc, err := collector.ParseAttachmentFile(path)
	if err != nil {
		logError("Failed to parse %s: %v", path, err)
		return &ValidationError{Message: fmt.Sprintf("invalid attachment %s: %v", path, err)}
	}

	src := aggregator.Source{
		Endpoint:         extractEndpoint,
		TestCaseName:     extractCase,
		TestCaseCategory: extractCategory,
	}
	vulns := aggregator.NewNormalizer().Normalize(src, doc)

	logVerbose("Extracted %d vulnerabilities from %d assertion(s)", len(vulns), len(doc.Assertions))

	return RunPipeline(&models.RunFindings{Vulnerabilities: vulns}, pcfg)
}
