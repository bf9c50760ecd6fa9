package levoapi

import (
	"fmt"
	"strings"
	"unicode"
)

// MaxIDLength bounds run and suite-run identifiers passed to the service.
const MaxIDLength = 256

// ValidateRunID checks a test run identifier before any request is made.
func ValidateRunID(runID string) error {
	return validateID("run id", runID)
}

// ValidateSuiteRunID checks a test suite run identifier.
func ValidateSuiteRunID(suiteRunID string) error {
	return validateID("suite run id", suiteRunID)
}

func validateID(what, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%s is required", what)
	}
	if len(id) > MaxIDLength {
		return fmt.Errorf("%s exceeds %d characters", what, MaxIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return fmt.Errorf("%s contains whitespace or control characters", what)
		}
	}
	return nil
}
