package levoapi

import "github.com/ppiankov/levovulns/internal/graphql"

// Root fields of the testing service schema
const (
	fieldTestRuns        = "aiLevoApitestingRunsV1ApiTestRunsServiceGetApiTestRuns"
	fieldRunDetails      = "aiLevoApitestingRunsV1ApiTestRunsServiceGetApiTestRunDetails"
	fieldTestSuiteRuns   = "aiLevoApitestingRunsV1ApiTestRunsServiceGetTestSuiteRuns"
	fieldSuiteRunDetails = "aiLevoApitestingRunsV1ApiTestRunsServiceGetTestSuiteRunDetails"
	fieldTestCaseRuns    = "aiLevoApitestingRunsV1ApiTestRunsServiceGetTestCaseRuns"
	fieldCaseAttachment  = "aiLevoApitestingRunsV1ApiTestRunsServiceGetCaseAttachment"
	attachmentTypeResult = "Result"
	sortAsc              = "Asc"
	sortDesc             = "Desc"
)

var opGetTestRuns = graphql.Operation{
	Name: "GetTestRuns",
	Query: `query GetTestRuns(
  $myRunsOnly: Boolean,
  $meta: AiLevoApitestingRunsV1GetAllRequestMetadataInput!
) {
  aiLevoApitestingRunsV1ApiTestRunsServiceGetApiTestRuns(
    input: {
      myRunsOnly: $myRunsOnly
      meta: $meta
    }
  ) {
    runs {
      runId
      name
      description
      status
      startTime
      durationMillis
      author
      targetUrl
      testPlanName
      runUuid
    }
  }
}`,
}

var opGetRunDetails = graphql.Operation{
	Name: "GetApiTestRunDetails",
	Query: `query GetApiTestRunDetails(
  $runUuid: String
) {
  aiLevoApitestingRunsV1ApiTestRunsServiceGetApiTestRunDetails(
    input: {
      runUuid: $runUuid
    }
  ) {
    author
    runId
    name
    durationMillis
    testPlanMetadata {
      planId
      planName
      planLrn
    }
    runNumber
    startTime
    status
    description
    successfulTests
    failedTests
    targetUrl
    failingTestSuitesData {
      dataItems {
        name
        count
        percentage
      }
    }
    failingTestCaseCategoriesData {
      dataItems {
        name
        count
        percentage
      }
    }
  }
}`,
}

var opGetTestSuiteRuns = graphql.Operation{
	Name: "GetTestSuiteRuns",
	Query: `query GetTestSuiteRuns(
  $runUuid: String,
  $meta: AiLevoApitestingRunsV1GetAllRequestMetadataInput!
) {
  aiLevoApitestingRunsV1ApiTestRunsServiceGetTestSuiteRuns(
    input: {
      runUuid: $runUuid
      meta: $meta
    }
  ) {
    meta {
      currentPage
      pageSize
      totalItems
      totalPages
    }
    testSuiteRuns {
      testSuiteRunId
      name
      description
      status
      durationMillis
      successfulTests
      failedTests
      erroredTests
    }
  }
}`,
}

var opGetSuiteRunDetails = graphql.Operation{
	Name: "GetTestSuiteRunDetails",
	Query: `query GetTestSuiteRunDetails(
  $runUuid: String,
  $suiteRunId: String
) {
  aiLevoApitestingRunsV1ApiTestRunsServiceGetTestSuiteRunDetails(
    input: {
      runUuid: $runUuid,
      testSuiteRunId: $suiteRunId
    }
  ) {
    testSuiteId
    testRunId
    testSuiteRunId
    name
    description
    status
    startTime
    durationMillis
    totalTests
    successfulTests
    failedTests
    erroredTests
    failingTestCaseCategoriesData {
      dataItems {
        name
        count
        percentage
      }
    }
  }
}`,
}

var opGetTestCaseRuns = graphql.Operation{
	Name: "GetApiTestCaseRuns",
	Query: `query GetApiTestCaseRuns(
  $runUuid: String,
  $suiteRunId: String,
  $meta: AiLevoApitestingRunsV1GetAllRequestMetadataInput!
) {
  aiLevoApitestingRunsV1ApiTestRunsServiceGetTestCaseRuns(
    input: {
      runUuid: $runUuid,
      testSuiteRunId: $suiteRunId,
      meta: $meta
    }
  ) {
    meta {
      currentPage
      pageSize
      totalItems
      totalPages
    }
    testCaseRuns {
      testCaseRunId
      testCaseRunUuid
      name
      description
      status
      durationMillis
      category
      summary
    }
  }
}`,
}

var opGetCaseAttachment = graphql.Operation{
	Name: "GetTestCaseAttachment",
	Query: `query GetTestCaseAttachment(
  $testCaseRunUuid: String,
  $runUuid: String,
  $attachmentType: AiLevoApitestingRunsV1TestCaseAttachment!
) {
  aiLevoApitestingRunsV1ApiTestRunsServiceGetCaseAttachment(
    input: {
      runUuid: $runUuid,
      testCaseRunUuid: $testCaseRunUuid,
      attachmentType: $attachmentType
    }
  ) {
    content
    contentType
  }
}`,
}
