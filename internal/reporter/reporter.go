// Package reporter renders vulnerability reports in the supported output formats.
package reporter

import (
	"fmt"
	"io"

	"github.com/ppiankov/levovulns/internal/models"
)

// Reporter writes a report to its writer
type Reporter interface {
	Generate(report *models.Report) error
}

// New returns the reporter for format: json, grouped, text, yaml, sarif or csv.
func New(format string, w io.Writer, pretty bool) (Reporter, error) {
	switch format {
	case "json", "":
		return NewJSONReporter(w, pretty), nil
	case "grouped":
		return groupedReporter{NewJSONReporter(w, pretty)}, nil
	case "text":
		return NewTextReporter(w), nil
	case "yaml":
		return NewYAMLReporter(w), nil
	case "sarif":
		return NewSARIFReporter(w), nil
	case "csv":
		return NewCSVReporter(w), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (use json, grouped, text, yaml, sarif, or csv)", format)
	}
}
