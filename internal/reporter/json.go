package reporter

import (
	"encoding/json"
	"io"

	"github.com/ppiankov/levovulns/internal/aggregator"
	"github.com/ppiankov/levovulns/internal/models"
)

// JSONReporter generates machine-readable JSON reports
type JSONReporter struct {
	writer io.Writer
	pretty bool
}

// NewJSONReporter creates a new JSON reporter
func NewJSONReporter(writer io.Writer, pretty bool) *JSONReporter {
	return &JSONReporter{
		writer: writer,
		pretty: pretty,
	}
}

// Generate writes the vulnerabilities as a flat JSON array
func (r *JSONReporter) Generate(report *models.Report) error {
	vulns := report.Vulnerabilities
	if vulns == nil {
		vulns = []models.Vulnerability{}
	}
	return r.encode(vulns)
}

// GenerateGrouped writes an object of CWE code -> vulnerabilities
func (r *JSONReporter) GenerateGrouped(report *models.Report) error {
	return r.encode(aggregator.GroupByCWE(report.Vulnerabilities))
}

// GenerateDiff writes a run comparison
func (r *JSONReporter) GenerateDiff(diff *models.DiffResult) error {
	return r.encode(diff)
}

// encode writes v followed by a newline. HTML characters in evidence are kept as is.
func (r *JSONReporter) encode(v any) error {
	enc := json.NewEncoder(r.writer)
	enc.SetEscapeHTML(false)
	if r.pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

// groupedReporter adapts GenerateGrouped to the Reporter interface
type groupedReporter struct {
	*JSONReporter
}

func (g groupedReporter) Generate(report *models.Report) error {
	return g.GenerateGrouped(report)
}
