package cli

import (
	"context"

	"github.com/ppiankov/levovulns/internal/auth"
	"github.com/ppiankov/levovulns/internal/collector"
	"github.com/ppiankov/levovulns/internal/graphql"
	"github.com/ppiankov/levovulns/internal/levoapi"
	"github.com/ppiankov/levovulns/internal/models"
	"golang.org/x/oauth2"
)

// tokenSource picks the bearer token source: AUTH_TOKEN as is, otherwise the
// refresh token exchanged once and cached. Nil means no Authorization header.
func tokenSource(ctx context.Context) oauth2.TokenSource {
	switch {
	case cfg.AuthToken != "":
		logDebug("Using bearer token from configuration")
		return auth.StaticTokenSource(cfg.AuthToken)
	case cfg.RefreshToken != "":
		logDebug("Exchanging refresh token at %s", cfg.DAFDomain)
		return newRefresher().TokenSource(ctx, cfg.RefreshToken)
	default:
		logVerbose("No AUTH_TOKEN or LEVO_REFRESH_TOKEN set; sending unauthenticated requests")
		return nil
	}
}

func newRefresher() *auth.Refresher {
	return auth.New(auth.Config{
		Domain:   cfg.DAFDomain,
		ClientID: cfg.DAFClientID,
		Audience: cfg.DAFAudience,
		Logger:   logger,
	})
}

func newGraphQLClient(ctx context.Context) *graphql.Client {
	return graphql.New(graphql.Config{
		Endpoint:       cfg.Endpoint,
		WorkspaceID:    cfg.WorkspaceID,
		OrganizationID: cfg.OrganizationID,
		TokenSource:    tokenSource(ctx),
		Timeout:        cfg.Timeout,
		Logger:         logger,
	})
}

// newAPIClient builds the service client from the global config
func newAPIClient(ctx context.Context) *levoapi.Client {
	return levoapi.NewClient(newGraphQLClient(ctx), levoapi.PageSizes{
		Runs:   cfg.RunsPageSize,
		Suites: cfg.SuitePageSize,
		Cases:  cfg.CasePageSize,
	})
}

// validateRunArg turns an invalid identifier into an exit-2 error
func validateRunArg(runID string) error {
	if err := levoapi.ValidateRunID(runID); err != nil {
		return &ValidationError{Message: err.Error()}
	}
	return nil
}

// collectRun walks one run and returns its findings
func collectRun(ctx context.Context, api collector.API, runID string) (*models.RunFindings, error) {
	logVerbose("Collecting vulnerabilities for run %s from %s", runID, cfg.Endpoint)

	findings, err := collector.New(api, collector.Config{Logger: logger}).Collect(ctx, runID)
	if err != nil {
		logError("Failed to collect run %s: %v", runID, err)
		return nil, err
	}

	logVerbose("Run %s: %d suite run(s), %d case run(s), %d failed, %d vulnerabilities",
		runID, findings.Stats.SuiteRuns, findings.Stats.CaseRuns, findings.Stats.FailedCases, len(findings.Vulnerabilities))
	return findings, nil
}
