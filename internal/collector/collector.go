// Package collector walks a test run down to its case attachments and
// gathers the vulnerabilities they report.
package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/ppiankov/levovulns/internal/aggregator"
	"github.com/ppiankov/levovulns/internal/levoapi"
	"github.com/ppiankov/levovulns/internal/logging"
	"github.com/ppiankov/levovulns/internal/models"
	"go.uber.org/zap"
)

// API is the subset of the service the traversal needs. *levoapi.Client implements it.
type API interface {
	TestSuiteRuns(ctx context.Context, runID string) ([]levoapi.TestSuiteRun, error)
	TestCaseRuns(ctx context.Context, runID, suiteRunID string) ([]levoapi.TestCaseRun, error)
	CaseAttachment(ctx context.Context, runID, caseRunUUID string) (*levoapi.Attachment, error)
}

// Config holds configuration for the collector
type Config struct {
	// Timeout bounds the whole traversal; 0 means no limit beyond the caller's context.
	Timeout time.Duration
	Logger  *zap.Logger
}

// Collector walks suite runs, case runs and attachments one request at a time
type Collector struct {
	api        API
	normalizer *aggregator.Normalizer
	config     Config
	logger     *zap.Logger
}

// New creates a new collector with the given configuration
func New(api API, config Config) *Collector {
	return &Collector{
		api:        api,
		normalizer: aggregator.NewNormalizer(),
		config:     config,
		logger:     logging.OrNop(config.Logger),
	}
}

// Collect returns the vulnerabilities of every failed test case of a run.
// The first failing request aborts the traversal and nothing is returned.
func (c *Collector) Collect(ctx context.Context, runID string) (*models.RunFindings, error) {
	if err := levoapi.ValidateRunID(runID); err != nil {
		return nil, err
	}

	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	findings := &models.RunFindings{
		RunID:           runID,
		Vulnerabilities: []models.Vulnerability{},
	}

	suites, err := c.api.TestSuiteRuns(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("list suite runs of %s: %w", runID, err)
	}
	findings.Stats.SuiteRuns = len(suites)
	c.logger.Info("collecting run", zap.String("run", runID), zap.Int("suite_runs", len(suites)))

	for _, suite := range suites {
		vulns, err := c.collectSuite(ctx, runID, suite, &findings.Stats)
		if err != nil {
			return nil, err
		}
		findings.Vulnerabilities = append(findings.Vulnerabilities, vulns...)
	}

	c.logger.Info("run collected",
		zap.String("run", runID),
		zap.Int("case_runs", findings.Stats.CaseRuns),
		zap.Int("failed_cases", findings.Stats.FailedCases),
		zap.Int("vulnerabilities", len(findings.Vulnerabilities)))

	return findings, nil
}

// collectSuite handles the case runs of one suite run
func (c *Collector) collectSuite(ctx context.Context, runID string, suite levoapi.TestSuiteRun, stats *models.TraversalStats) ([]models.Vulnerability, error) {
	suiteRunID := suite.TestSuiteRunID.String()

	cases, err := c.api.TestCaseRuns(ctx, runID, suiteRunID)
	if err != nil {
		return nil, fmt.Errorf("list case runs of suite run %s: %w", suiteRunID, err)
	}
	stats.CaseRuns += len(cases)
	c.logger.Debug("suite run", zap.String("suite_run", suiteRunID), zap.String("name", suite.Name), zap.Int("case_runs", len(cases)))

	var vulns []models.Vulnerability
	for _, tc := range cases {
		if !tc.Failed() {
			continue
		}
		stats.FailedCases++

		att, err := c.api.CaseAttachment(ctx, runID, tc.TestCaseRunUUID)
		if err != nil {
			return nil, fmt.Errorf("fetch attachment of case run %s: %w", tc.TestCaseRunUUID, err)
		}
		stats.Attachments++

		found, err := c.normalizer.Extract(aggregator.Source{
			Endpoint:         suite.Name,
			TestCaseName:     tc.Name,
			TestCaseCategory: tc.Category,
			TestSuiteRunID:   suiteRunID,
			TestCaseRunUUID:  tc.TestCaseRunUUID,
		}, att.Content)
		if err != nil {
			return nil, fmt.Errorf("extract vulnerabilities: %w", err)
		}

		c.logger.Debug("failed case", zap.String("case_run", tc.TestCaseRunUUID), zap.String("name", tc.Name), zap.Int("vulnerabilities", len(found)))
		vulns = append(vulns, found...)
	}

	return vulns, nil
}
