package reporter

import (
	"encoding/csv"
	"io"

	"github.com/ppiankov/levovulns/internal/models"
)

// csvHeader follows the record key order
var csvHeader = []string{
	"endpoint", "test_case_name", "test_case_category", "risk", "confidence",
	"evidence", "solution", "reference", "overview", "cwe", "summary",
}

// CSVReporter writes one row per vulnerability for spreadsheets
type CSVReporter struct {
	writer io.Writer
}

// NewCSVReporter creates a new CSV reporter
func NewCSVReporter(writer io.Writer) *CSVReporter {
	return &CSVReporter{writer: writer}
}

// Generate writes a header row followed by the vulnerabilities
func (r *CSVReporter) Generate(report *models.Report) error {
	writer := csv.NewWriter(r.writer)

	if err := writer.Write(csvHeader); err != nil {
		return err
	}

	for _, v := range report.Vulnerabilities {
		row := []string{
			v.Endpoint, v.TestCaseName, v.TestCaseCategory, v.Risk, v.Confidence,
			v.EvidenceText(), v.Solution, v.Reference, v.Overview, v.CWECode(), v.CWESummary(),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
