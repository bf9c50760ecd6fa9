package aggregator

import (
	"fmt"

	"github.com/ppiankov/levovulns/internal/models"
)

// Source identifies the suite run and case run an attachment belongs to.
type Source struct {
	Endpoint         string
	TestCaseName     string
	TestCaseCategory string
	TestSuiteRunID   string
	TestCaseRunUUID  string
}

// Normalizer converts Result attachments into vulnerability records
type Normalizer struct{}

// NewNormalizer creates a new normalizer
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Extract parses an attachment body and returns one record per failed assertion.
func (n *Normalizer) Extract(src Source, content string) ([]models.Vulnerability, error) {
	doc, err := models.ParseAttachmentContent(content)
	if err != nil {
		return nil, fmt.Errorf("case %s: %w", src.TestCaseRunUUID, err)
	}
	return n.Normalize(src, doc), nil
}

// Normalize maps the failed assertions of a parsed attachment, in document order.
// Duplicates are kept.
func (n *Normalizer) Normalize(src Source, doc *models.AttachmentContent) []models.Vulnerability {
	var vulns []models.Vulnerability

	for _, a := range doc.Assertions {
		if !a.Failed() {
			continue
		}

		v := models.Vulnerability{
			Endpoint:         src.Endpoint,
			TestCaseName:     src.TestCaseName,
			TestCaseCategory: src.TestCaseCategory,
			Risk:             a.Risk.String(),
			Confidence:       a.Confidence.String(),
			Evidence:         evidenceValue(a.Evidence),
			Solution:         a.Solution.String(),
			Reference:        a.Reference.String(),
			Overview:         doc.Summary.String(),
			TestSuiteRunID:   src.TestSuiteRunID,
			TestCaseRunUUID:  src.TestCaseRunUUID,
			AssertionID:      a.ID,
		}

		if a.CWE != nil {
			if a.CWE.Code != nil {
				code := a.CWE.Code.String()
				v.CWE = &code
			}
			if a.CWE.Summary != nil {
				summary := a.CWE.Summary.String()
				v.Summary = &summary
			}
		}

		vulns = append(vulns, v)
	}

	return vulns
}

// evidenceValue returns evidence.title for objects that carry one, else the evidence as is.
func evidenceValue(evidence any) any {
	if obj, ok := evidence.(map[string]any); ok {
		if title, ok := obj["title"]; ok {
			return title
		}
	}
	return evidence
}
