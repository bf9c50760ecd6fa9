package cli

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// Fixture runs served by fakeService.
//
// run-123: GET /users/{id} has one failed case (SQL injection) and one passed
// case; GET /search has one failed case (reflected XSS).
// run-456: the SQL injection finding again plus a new brute force finding on
// POST /login; the XSS finding is gone.
const (
	sqliContent = `{
  "summary": "Injection checks",
  "assertions": {
    "a1": {"status": "failure", "risk": "High", "confidence": "Firm",
           "evidence": {"title": "id=1' OR 1=1", "detail": "500 with SQL error"},
           "solution": "Use parameterized queries", "reference": "https://owasp.org",
           "cwe": {"code": "CWE-89", "summary": "SQL Injection"}},
    "a2": {"status": "success", "risk": "High"}
  }
}`
	xssContent = `{
  "summary": "XSS checks",
  "assertions": {
    "x1": {"status": "failure", "risk": "Medium", "confidence": "Tentative",
           "evidence": "<script>alert(1)</script>", "solution": "Encode output"}
  }
}`
	bruteContent = `{
  "summary": "Auth checks",
  "assertions": {
    "b1": {"status": "failure", "risk": "Low", "confidence": "Firm",
           "evidence": "no lockout after 50 attempts", "solution": "Rate limit logins",
           "reference": "https://cwe.mitre.org/data/definitions/307.html",
           "cwe": {"code": "CWE-307", "summary": "Brute Force"}}
  }
}`
)

// run123JSON is the flat report of run-123.
const run123JSON = `[{"endpoint":"GET /users/{id}","test_case_name":"SQL injection in path","test_case_category":"Injection","risk":"High","confidence":"Firm","evidence":"id=1' OR 1=1","solution":"Use parameterized queries","reference":"https://owasp.org","overview":"Injection checks","cwe":"CWE-89","summary":"SQL Injection"},{"endpoint":"GET /search","test_case_name":"Reflected XSS","test_case_category":"XSS","risk":"Medium","confidence":"Tentative","evidence":"<script>alert(1)</script>","solution":"Encode output","reference":"","overview":"XSS checks"}]
`

type fakeCase struct {
	UUID     string
	Name     string
	Category string
	Status   string
	Content  string
}

type fakeSuite struct {
	ID    string
	Name  string
	Cases []fakeCase
}

var sqliCase = fakeCase{UUID: "case-1", Name: "SQL injection in path", Category: "Injection", Status: "CaseFailed", Content: sqliContent}

var fakeRuns = map[string][]fakeSuite{
	"run-123": {
		{ID: "1001", Name: "GET /users/{id}", Cases: []fakeCase{
			sqliCase,
			{UUID: "case-2", Name: "Broken object level authorization", Category: "Authorization", Status: "CasePassed"},
		}},
		{ID: "1002", Name: "GET /search", Cases: []fakeCase{
			{UUID: "case-3", Name: "Reflected XSS", Category: "XSS", Status: "CaseFailed", Content: xssContent},
		}},
	},
	"run-456": {
		{ID: "2001", Name: "GET /users/{id}", Cases: []fakeCase{sqliCase}},
		{ID: "2003", Name: "POST /login", Cases: []fakeCase{
			{UUID: "case-4", Name: "Brute force", Category: "Authentication", Status: "CaseFailed", Content: bruteContent},
		}},
	},
}

type fakeRequest struct {
	OperationName string
	Variables     map[string]any
	Authorization string
	WorkspaceID   string
}

// fakeService answers the testing service's GraphQL operations from fakeRuns.
type fakeService struct {
	*httptest.Server
	mu       sync.Mutex
	requests []fakeRequest
}

func newFakeService(t *testing.T) *fakeService {
	t.Helper()
	fs := &fakeService{}
	fs.Server = httptest.NewServer(http.HandlerFunc(fs.handle))
	t.Cleanup(fs.Close)
	return fs
}

func (fs *fakeService) handle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OperationName string         `json:"operationName"`
		Variables     map[string]any `json:"variables"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	fs.mu.Lock()
	fs.requests = append(fs.requests, fakeRequest{
		OperationName: req.OperationName,
		Variables:     req.Variables,
		Authorization: r.Header.Get("Authorization"),
		WorkspaceID:   r.Header.Get("x-levo-workspace-id"),
	})
	fs.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(fs.respond(req.OperationName, req.Variables))
}

func (fs *fakeService) respond(op string, vars map[string]any) any {
	str := func(key string) string {
		s, _ := vars[key].(string)
		return s
	}

	switch op {
	case "Ping":
		return gqlData(map[string]any{"__typename": "Query"})

	case "GetTestRuns":
		return gqlData(map[string]any{
			"aiLevoApitestingRunsV1ApiTestRunsServiceGetApiTestRuns": map[string]any{
				"runs": []map[string]any{{
					"runId":          42,
					"runUuid":        "run-123",
					"name":           "Nightly",
					"status":         "Completed",
					"startTime":      "2026-02-15T10:00:00Z",
					"durationMillis": 65000,
					"author":         "ci",
					"testPlanName":   "OWASP API Top 10",
				}},
			},
		})

	case "GetApiTestRunDetails":
		if _, ok := fakeRuns[str("runUuid")]; !ok {
			return notFound()
		}
		return gqlData(map[string]any{
			"aiLevoApitestingRunsV1ApiTestRunsServiceGetApiTestRunDetails": map[string]any{
				"runId":            42,
				"runNumber":        7,
				"name":             "Nightly",
				"status":           "Completed",
				"author":           "ci",
				"targetUrl":        "https://api.example.test",
				"testPlanMetadata": map[string]any{"planId": 3, "planName": "OWASP API Top 10"},
				"startTime":        "2026-02-15T10:00:00Z",
				"durationMillis":   1500,
				"successfulTests":  8,
				"failedTests":      2,
				"failingTestSuitesData": map[string]any{
					"dataItems": []map[string]any{{"name": "GET /users/{id}", "count": 1, "percentage": 50}},
				},
			},
		})

	case "GetTestSuiteRuns":
		suites, ok := fakeRuns[str("runUuid")]
		if !ok {
			return notFound()
		}
		items := make([]map[string]any, 0, len(suites))
		for _, s := range suites {
			items = append(items, map[string]any{"testSuiteRunId": s.ID, "name": s.Name, "status": "Completed"})
		}
		return gqlData(map[string]any{
			"aiLevoApitestingRunsV1ApiTestRunsServiceGetTestSuiteRuns": map[string]any{
				"meta":          singlePage(len(items)),
				"testSuiteRuns": items,
			},
		})

	case "GetTestSuiteRunDetails":
		suite, ok := findSuite(str("runUuid"), str("suiteRunId"))
		if !ok {
			return notFound()
		}
		return gqlData(map[string]any{
			"aiLevoApitestingRunsV1ApiTestRunsServiceGetTestSuiteRunDetails": map[string]any{
				"testSuiteRunId":  suite.ID,
				"name":            suite.Name,
				"status":          "Completed",
				"durationMillis":  4200,
				"totalTests":      len(suite.Cases),
				"successfulTests": 1,
				"failedTests":     1,
				"erroredTests":    0,
				"failingTestCaseCategoriesData": map[string]any{
					"dataItems": []map[string]any{{"name": "Injection", "count": 1}},
				},
			},
		})

	case "GetApiTestCaseRuns":
		suite, ok := findSuite(str("runUuid"), str("suiteRunId"))
		if !ok {
			return notFound()
		}
		items := make([]map[string]any, 0, len(suite.Cases))
		for _, c := range suite.Cases {
			items = append(items, map[string]any{
				"testCaseRunUuid": c.UUID,
				"name":            c.Name,
				"category":        c.Category,
				"status":          c.Status,
			})
		}
		return gqlData(map[string]any{
			"aiLevoApitestingRunsV1ApiTestRunsServiceGetTestCaseRuns": map[string]any{
				"meta":         singlePage(len(items)),
				"testCaseRuns": items,
			},
		})

	case "GetTestCaseAttachment":
		for _, suites := range fakeRuns {
			for _, s := range suites {
				for _, c := range s.Cases {
					if c.UUID == str("testCaseRunUuid") {
						return gqlData(map[string]any{
							"aiLevoApitestingRunsV1ApiTestRunsServiceGetCaseAttachment": map[string]any{
								"content":     c.Content,
								"contentType": "application/json",
							},
						})
					}
				}
			}
		}
		return notFound()
	}

	return map[string]any{"errors": []map[string]any{{"message": "unknown operation " + op}}}
}

func findSuite(runID, suiteRunID string) (fakeSuite, bool) {
	for _, s := range fakeRuns[runID] {
		if s.ID == suiteRunID {
			return s, true
		}
	}
	return fakeSuite{}, false
}

func gqlData(v any) map[string]any {
	return map[string]any{"data": v}
}

func notFound() map[string]any {
	return map[string]any{"data": nil, "errors": []map[string]any{{"message": "not found"}}}
}

func singlePage(n int) map[string]any {
	return map[string]any{"currentPage": 0, "pageSize": 100, "totalItems": n, "totalPages": 1}
}

// Requests returns a copy of every request received so far.
func (fs *fakeService) Requests() []fakeRequest {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return append([]fakeRequest(nil), fs.requests...)
}

func (fs *fakeService) count(op string) int {
	n := 0
	for _, r := range fs.Requests() {
		if r.OperationName == op {
			n++
		}
	}
	return n
}

// useFakeService points the global config at a fresh fakeService.
func useFakeService(t *testing.T) *fakeService {
	t.Helper()
	fs := newFakeService(t)
	withTestConfig(t, testConfig(fs.URL))
	return fs
}
