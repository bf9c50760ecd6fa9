package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ppiankov/levovulns/internal/config"
	"github.com/ppiankov/levovulns/internal/graphql"
	"github.com/ppiankov/levovulns/internal/policy"
	"github.com/spf13/cobra"
)

var doctorFormat string

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check environment readiness and diagnose common problems",
	Long: `Doctor validates your levovulns setup end-to-end:

  1. Config file: found and readable?
  2. Endpoint: a valid GraphQL URL?
  3. Credentials: bearer token or refresh token present?
  4. Token exchange: does the refresh token work?
  5. Workspace / organization: headers configured?
  6. API connectivity: does the endpoint answer GraphQL?
  7. Policy file: found and valid?

Fix the issues it reports, then run 'levovulns <run-id>' with confidence.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	doctorCmd.Flags().StringVar(&doctorFormat, "format", "text",
		"output format: text or json")
}

type doctorCheck struct {
	Name   string `json:"name"`
	Status string `json:"status"` // "ok", "warn", "fail"
	Detail string `json:"detail,omitempty"`
}

type doctorResult struct {
	Checks  []doctorCheck `json:"checks"`
	Summary string        `json:"summary"`
}

// pingOperation asks only for the schema's root type name
var pingOperation = graphql.Operation{
	Name:  "Ping",
	Query: "query Ping { __typename }",
}

func runDoctor(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	var checks []doctorCheck

	checks = append(checks, checkConfig())
	checks = append(checks, checkEndpoint())
	checks = append(checks, checkCredentials())
	if c, ok := checkTokenExchange(ctx); ok {
		checks = append(checks, c)
	}
	checks = append(checks, checkWorkspace())
	checks = append(checks, checkAPI(ctx))
	checks = append(checks, checkPolicy())

	fails, warns := 0, 0
	for _, c := range checks {
		switch c.Status {
		case "fail":
			fails++
		case "warn":
			warns++
		}
	}

	summary := "all checks passed"
	if fails > 0 {
		summary = fmt.Sprintf("%d issue(s) found", fails)
	} else if warns > 0 {
		summary = fmt.Sprintf("ok with %d warning(s)", warns)
	}

	result := doctorResult{Checks: checks, Summary: summary}

	if doctorFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	return writeDoctorText(result)
}

func writeDoctorText(result doctorResult) error {
	icons := map[string]string{
		"ok":   "✓",
		"warn": "△",
		"fail": "✗",
	}

	for _, c := range result.Checks {
		icon := icons[c.Status]
		if c.Detail != "" {
			fmt.Printf("  %s %-20s %s\n", icon, c.Name, c.Detail)
		} else {
			fmt.Printf("  %s %s\n", icon, c.Name)
		}
	}

	fmt.Printf("\n%s\n", result.Summary)
	return nil
}

func checkConfig() doctorCheck {
	path := config.ConfigPath()
	if configFile != "" {
		path = configFile
	}

	if _, err := os.Stat(path); err != nil {
		return doctorCheck{
			Name:   "config",
			Status: "warn",
			Detail: "no config file found (using defaults and environment)",
		}
	}

	return doctorCheck{Name: "config", Status: "ok", Detail: path}
}

func checkEndpoint() doctorCheck {
	probe := *cfg
	if err := probe.Validate(); err != nil {
		return doctorCheck{Name: "endpoint", Status: "fail", Detail: err.Error()}
	}
	return doctorCheck{Name: "endpoint", Status: "ok", Detail: cfg.Endpoint}
}

func checkCredentials() doctorCheck {
	switch {
	case cfg.AuthToken != "":
		return doctorCheck{Name: "credentials", Status: "ok", Detail: "bearer token (AUTH_TOKEN)"}
	case cfg.RefreshToken != "":
		return doctorCheck{Name: "credentials", Status: "ok", Detail: "refresh token (LEVO_REFRESH_TOKEN)"}
	default:
		return doctorCheck{
			Name:   "credentials",
			Status: "warn",
			Detail: "none configured. Set AUTH_TOKEN or LEVO_REFRESH_TOKEN",
		}
	}
}

// checkTokenExchange runs only when a refresh token is the sole credential
func checkTokenExchange(ctx context.Context) (doctorCheck, bool) {
	if cfg.AuthToken != "" || cfg.RefreshToken == "" {
		return doctorCheck{}, false
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := newRefresher().Refresh(ctx, cfg.RefreshToken); err != nil {
		return doctorCheck{
			Name:   "token exchange",
			Status: "fail",
			Detail: fmt.Sprintf("%s: %v", cfg.DAFDomain, err),
		}, true
	}
	return doctorCheck{Name: "token exchange", Status: "ok", Detail: cfg.DAFDomain}, true
}

func checkWorkspace() doctorCheck {
	if cfg.WorkspaceID == "" && cfg.OrganizationID == "" {
		return doctorCheck{
			Name:   "workspace",
			Status: "warn",
			Detail: "WORKSPACE_ID and ORG_ID not set (headers omitted)",
		}
	}
	return doctorCheck{
		Name:   "workspace",
		Status: "ok",
		Detail: fmt.Sprintf("workspace=%s org=%s", orDash(cfg.WorkspaceID), orDash(cfg.OrganizationID)),
	}
}

func checkAPI(ctx context.Context) doctorCheck {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var out map[string]any
	err := newGraphQLClient(ctx).Execute(ctx, pingOperation, nil, &out)
	switch {
	case err == nil:
		return doctorCheck{Name: "api", Status: "ok", Detail: cfg.Endpoint}
	case graphql.IsGraphQL(err):
		return doctorCheck{
			Name:   "api",
			Status: "warn",
			Detail: fmt.Sprintf("reachable but the query was rejected (%v)", err),
		}
	default:
		return doctorCheck{
			Name:   "api",
			Status: "fail",
			Detail: fmt.Sprintf("unreachable (%v)", err),
		}
	}
}

func checkPolicy() doctorCheck {
	path := policy.FindPolicyFile()
	if path == "" {
		return doctorCheck{Name: "policy", Status: "ok", Detail: "none (no gating)"}
	}
	if _, err := policy.LoadFromFile(path); err != nil {
		return doctorCheck{Name: "policy", Status: "fail", Detail: err.Error()}
	}
	return doctorCheck{Name: "policy", Status: "ok", Detail: path}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
