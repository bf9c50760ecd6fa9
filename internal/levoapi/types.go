package levoapi

import "github.com/ppiankov/levovulns/internal/models"

// CaseStatusFailed is the only test case status that carries vulnerabilities.
const CaseStatusFailed = "CaseFailed"

// PageMeta describes one page of a paginated collection.
type PageMeta struct {
	CurrentPage int `json:"currentPage"`
	PageSize    int `json:"pageSize"`
	TotalItems  int `json:"totalItems"`
	TotalPages  int `json:"totalPages"`
}

// Sort orders a paginated collection.
type Sort struct {
	SortFields    []string `json:"sortFields"`
	SortDirection string   `json:"sortDirection"`
}

// RequestMeta is the "meta" input of paginated queries.
type RequestMeta struct {
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
	Sort     *Sort `json:"sort,omitempty"`
}

// TestRun is an entry of the runs list.
type TestRun struct {
	RunID          models.Text `json:"runId"`
	RunUUID        string      `json:"runUuid"`
	Name           string      `json:"name"`
	Description    string      `json:"description"`
	Status         string      `json:"status"`
	StartTime      models.Text `json:"startTime"`
	DurationMillis models.Text `json:"durationMillis"`
	Author         string      `json:"author"`
	TargetURL      string      `json:"targetUrl"`
	TestPlanName   string      `json:"testPlanName"`
}

// DataItem is one bucket of a breakdown chart.
type DataItem struct {
	Name       models.Text `json:"name"`
	Count      models.Text `json:"count"`
	Percentage models.Text `json:"percentage"`
}

// Breakdown wraps the data items of a chart.
type Breakdown struct {
	DataItems []DataItem `json:"dataItems"`
}

// TestPlanMetadata identifies the plan a run executed.
type TestPlanMetadata struct {
	PlanID   models.Text `json:"planId"`
	PlanName string      `json:"planName"`
	PlanLrn  string      `json:"planLrn"`
}

// RunDetails describes a single test run.
type RunDetails struct {
	RunID                         models.Text       `json:"runId"`
	RunNumber                     models.Text       `json:"runNumber"`
	Name                          string            `json:"name"`
	Description                   string            `json:"description"`
	Author                        string            `json:"author"`
	Status                        string            `json:"status"`
	StartTime                     models.Text       `json:"startTime"`
	DurationMillis                models.Text       `json:"durationMillis"`
	SuccessfulTests               models.Text       `json:"successfulTests"`
	FailedTests                   models.Text       `json:"failedTests"`
	TargetURL                     string            `json:"targetUrl"`
	TestPlanMetadata              *TestPlanMetadata `json:"testPlanMetadata"`
	FailingTestSuitesData         *Breakdown        `json:"failingTestSuitesData"`
	FailingTestCaseCategoriesData *Breakdown        `json:"failingTestCaseCategoriesData"`
}

// TestSuiteRun is the execution of one test suite (one endpoint) within a run.
type TestSuiteRun struct {
	TestSuiteRunID  models.Text `json:"testSuiteRunId"`
	Name            string      `json:"name"`
	Description     string      `json:"description"`
	Status          string      `json:"status"`
	DurationMillis  models.Text `json:"durationMillis"`
	SuccessfulTests models.Text `json:"successfulTests"`
	FailedTests     models.Text `json:"failedTests"`
	ErroredTests    models.Text `json:"erroredTests"`
}

// TestSuiteRunDetails describes a single suite run.
type TestSuiteRunDetails struct {
	TestSuiteID                   models.Text `json:"testSuiteId"`
	TestRunID                     models.Text `json:"testRunId"`
	TestSuiteRunID                models.Text `json:"testSuiteRunId"`
	Name                          string      `json:"name"`
	Description                   string      `json:"description"`
	Status                        string      `json:"status"`
	StartTime                     models.Text `json:"startTime"`
	DurationMillis                models.Text `json:"durationMillis"`
	TotalTests                    models.Text `json:"totalTests"`
	SuccessfulTests               models.Text `json:"successfulTests"`
	FailedTests                   models.Text `json:"failedTests"`
	ErroredTests                  models.Text `json:"erroredTests"`
	FailingTestCaseCategoriesData *Breakdown  `json:"failingTestCaseCategoriesData"`
}

// TestCaseRun is the execution of one test case within a suite run.
type TestCaseRun struct {
	TestCaseRunID   models.Text `json:"testCaseRunId"`
	TestCaseRunUUID string      `json:"testCaseRunUuid"`
	Name            string      `json:"name"`
	Description     string      `json:"description"`
	Status          string      `json:"status"`
	DurationMillis  models.Text `json:"durationMillis"`
	Category        string      `json:"category"`
	Summary         string      `json:"summary"`
}

// Failed reports whether the case run has CaseFailed status.
func (c TestCaseRun) Failed() bool {
	return c.Status == CaseStatusFailed
}

// Attachment is a per-case artifact; Content is a JSON document for "Result" attachments.
type Attachment struct {
	Content     string `json:"content"`
	ContentType string `json:"contentType"`
}
