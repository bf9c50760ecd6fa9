// Package levoapi wraps the testing service's GraphQL operations for test
// runs, suite runs, case runs and case attachments.
package levoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/ppiankov/levovulns/internal/graphql"
)

// Default page sizes used when a PageSizes field is zero
const (
	DefaultRunsPageSize  = 20
	DefaultSuitePageSize = 100
	DefaultCasePageSize  = 10
)

// Executor runs one GraphQL operation. *graphql.Client implements it.
type Executor interface {
	Execute(ctx context.Context, op graphql.Operation, variables map[string]any, out any) error
}

// PageSizes sets the page size of each paginated collection.
type PageSizes struct {
	Runs   int
	Suites int
	Cases  int
}

// Client issues the service's run, suite, case and attachment queries.
type Client struct {
	exec  Executor
	sizes PageSizes
}

// NewClient creates a Client. Zero page sizes fall back to the defaults.
func NewClient(exec Executor, sizes PageSizes) *Client {
	if sizes.Runs <= 0 {
		sizes.Runs = DefaultRunsPageSize
	}
	if sizes.Suites <= 0 {
		sizes.Suites = DefaultSuitePageSize
	}
	if sizes.Cases <= 0 {
		sizes.Cases = DefaultCasePageSize
	}
	return &Client{exec: exec, sizes: sizes}
}

// query executes op and decodes the root field into out.
func (c *Client) query(ctx context.Context, op graphql.Operation, field string, variables map[string]any, out any) error {
	var data map[string]json.RawMessage
	if err := c.exec.Execute(ctx, op, variables, &data); err != nil {
		return err
	}
	raw, ok := data[field]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return fmt.Errorf("%s: response has no %s", op.Name, field)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s: decode %s: %w", op.Name, field, err)
	}
	return nil
}

// TestRuns lists the most recently modified runs (first page only).
func (c *Client) TestRuns(ctx context.Context, myRunsOnly bool) ([]TestRun, error) {
	vars := map[string]any{
		"myRunsOnly": myRunsOnly,
		"meta": RequestMeta{
			Page:     0,
			PageSize: c.sizes.Runs,
			Sort:     &Sort{SortFields: []string{"lastModified"}, SortDirection: sortDesc},
		},
	}
	var resp struct {
		Runs []TestRun `json:"runs"`
	}
	if err := c.query(ctx, opGetTestRuns, fieldTestRuns, vars, &resp); err != nil {
		return nil, err
	}
	return resp.Runs, nil
}

// RunDetails fetches the details of one run.
func (c *Client) RunDetails(ctx context.Context, runID string) (*RunDetails, error) {
	if err := ValidateRunID(runID); err != nil {
		return nil, err
	}
	var details RunDetails
	if err := c.query(ctx, opGetRunDetails, fieldRunDetails, map[string]any{"runUuid": runID}, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

// TestSuiteRuns returns every suite run of a run, most failures first.
func (c *Client) TestSuiteRuns(ctx context.Context, runID string) ([]TestSuiteRun, error) {
	if err := ValidateRunID(runID); err != nil {
		return nil, err
	}
	sort := &Sort{SortFields: []string{"failedTests", "erroredTests"}, SortDirection: sortDesc}

	return fetchAllPages(ctx, func(ctx context.Context, page int) ([]TestSuiteRun, PageMeta, error) {
		vars := map[string]any{
			"runUuid": runID,
			"meta":    RequestMeta{Page: page, PageSize: c.sizes.Suites, Sort: sort},
		}
		var resp struct {
			Meta          PageMeta       `json:"meta"`
			TestSuiteRuns []TestSuiteRun `json:"testSuiteRuns"`
		}
		if err := c.query(ctx, opGetTestSuiteRuns, fieldTestSuiteRuns, vars, &resp); err != nil {
			return nil, PageMeta{}, err
		}
		return resp.TestSuiteRuns, resp.Meta, nil
	})
}

// SuiteRunDetails fetches the details of one suite run.
func (c *Client) SuiteRunDetails(ctx context.Context, runID, suiteRunID string) (*TestSuiteRunDetails, error) {
	if err := ValidateRunID(runID); err != nil {
		return nil, err
	}
	if err := ValidateSuiteRunID(suiteRunID); err != nil {
		return nil, err
	}
	vars := map[string]any{"runUuid": runID, "suiteRunId": suiteRunID}
	var details TestSuiteRunDetails
	if err := c.query(ctx, opGetSuiteRunDetails, fieldSuiteRunDetails, vars, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

// TestCaseRuns returns every case run of a suite run in start order.
func (c *Client) TestCaseRuns(ctx context.Context, runID, suiteRunID string) ([]TestCaseRun, error) {
	sort := &Sort{SortFields: []string{"startTime"}, SortDirection: sortAsc}

	return fetchAllPages(ctx, func(ctx context.Context, page int) ([]TestCaseRun, PageMeta, error) {
		vars := map[string]any{
			"runUuid":    runID,
			"suiteRunId": suiteRunID,
			"meta":       RequestMeta{Page: page, PageSize: c.sizes.Cases, Sort: sort},
		}
		var resp struct {
			Meta         PageMeta      `json:"meta"`
			TestCaseRuns []TestCaseRun `json:"testCaseRuns"`
		}
		if err := c.query(ctx, opGetTestCaseRuns, fieldTestCaseRuns, vars, &resp); err != nil {
			return nil, PageMeta{}, err
		}
		return resp.TestCaseRuns, resp.Meta, nil
	})
}

// CaseAttachment fetches the "Result" attachment of a case run.
func (c *Client) CaseAttachment(ctx context.Context, runID, caseRunUUID string) (*Attachment, error) {
	vars := map[string]any{
		"runUuid":         runID,
		"testCaseRunUuid": caseRunUUID,
		"attachmentType":  attachmentTypeResult,
	}
	var att Attachment
	if err := c.query(ctx, opGetCaseAttachment, fieldCaseAttachment, vars, &att); err != nil {
		return nil, err
	}
	return &att, nil
}
