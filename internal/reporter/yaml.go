package reporter

import (
	"io"

	"github.com/ppiankov/levovulns/internal/models"
	"gopkg.in/yaml.v3"
)

// YAMLReporter writes the vulnerability list as a YAML sequence
type YAMLReporter struct {
	writer io.Writer
}

// NewYAMLReporter creates a new YAML reporter
func NewYAMLReporter(writer io.Writer) *YAMLReporter {
	return &YAMLReporter{writer: writer}
}

// Generate writes the vulnerabilities in record key order
func (r *YAMLReporter) Generate(report *models.Report) error {
	vulns := report.Vulnerabilities
	if vulns == nil {
		vulns = []models.Vulnerability{}
	}

	enc := yaml.NewEncoder(r.writer)
	enc.SetIndent(2)
	if err := enc.Encode(vulns); err != nil {
		return err
	}
	return enc.Close()
}
