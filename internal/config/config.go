package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Default endpoints of the hosted service
const (
	DefaultEndpoint    = "https://api.levo.ai/graphql"
	DefaultDAFAudience = "https://api.levo.ai"
	DefaultDAFDomain   = "https://levoai.us.auth0.com"
	DefaultDAFClientID = "aa9hJp2bddyhZeEXjAsura6bWIdSEr5s"
)

// Config holds all configuration for levovulns
type Config struct {
	// GraphQL endpoint (GQL_SERVICE_URL)
	Endpoint string `mapstructure:"endpoint"`

	// Optional workspace and organization headers (WORKSPACE_ID, ORG_ID)
	WorkspaceID    string `mapstructure:"workspace_id"`
	OrganizationID string `mapstructure:"org_id"`

	// Bearer token (AUTH_TOKEN)
	AuthToken string `mapstructure:"auth_token"`

	// Refresh token exchanged for AuthToken when the latter is empty (LEVO_REFRESH_TOKEN)
	RefreshToken string `mapstructure:"refresh_token"`

	// Credential exchange settings (LEVO_DAF_*)
	DAFAudience string `mapstructure:"daf_audience"`
	DAFDomain   string `mapstructure:"daf_domain"`
	DAFClientID string `mapstructure:"daf_client_id"`

	// HTTP timeout per request, 0 disables it
	Timeout time.Duration `mapstructure:"timeout"`

	// Page sizes for the paginated collections
	RunsPageSize  int `mapstructure:"runs_page_size"`
	SuitePageSize int `mapstructure:"suite_page_size"`
	CasePageSize  int `mapstructure:"case_page_size"`

	// Output format (json, grouped, text, yaml, sarif, csv)
	Format string `mapstructure:"format"`

	// Exit 1 when the vulnerability count exceeds this value, 0 disables it
	FailThreshold int `mapstructure:"fail_threshold"`

	// Verbose output
	Verbose bool `mapstructure:"verbose"`

	// Debug mode
	Debug bool `mapstructure:"debug"`
}

// ValidFormats lists the accepted report formats
var ValidFormats = map[string]bool{
	"json":    true,
	"grouped": true,
	"text":    true,
	"yaml":    true,
	"sarif":   true,
	"csv":     true,
}

// envBindings maps config keys to the environment variables the hosted
// tooling already uses. The LEVOVULNS_ prefixed name is checked first.
var envBindings = map[string]string{
	"endpoint":      "GQL_SERVICE_URL",
	"workspace_id":  "WORKSPACE_ID",
	"org_id":        "ORG_ID",
	"auth_token":    "AUTH_TOKEN",
	"refresh_token": "LEVO_REFRESH_TOKEN",
	"daf_audience":  "LEVO_DAF_AUDIENCE",
	"daf_domain":    "LEVO_DAF_DOMAIN",
	"daf_client_id": "LEVO_DAF_CLIENT_ID",
}

// DefaultConfig returns configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Endpoint:      DefaultEndpoint,
		DAFAudience:   DefaultDAFAudience,
		DAFDomain:     DefaultDAFDomain,
		DAFClientID:   DefaultDAFClientID,
		Timeout:       30 * time.Second,
		RunsPageSize:  20,
		SuitePageSize: 100,
		CasePageSize:  10,
		Format:        "json",
		Verbose:       false,
		Debug:         false,
	}
}

// Load loads configuration with the following precedence (lowest to highest):
// 1. Default values
// 2. Config file (~/levovulns.yaml or ./levovulns.yaml)
// 3. Environment variables (GQL_SERVICE_URL, AUTH_TOKEN, ..., LEVOVULNS_*)
// 4. CLI flags (handled by caller)
func Load() (*Config, error) {
	return LoadFromFile("")
}

// LoadFromFile loads configuration from a specific file path
// If path is empty, it searches for config in standard locations
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("endpoint", defaults.Endpoint)
	v.SetDefault("workspace_id", "")
	v.SetDefault("org_id", "")
	v.SetDefault("auth_token", "")
	v.SetDefault("refresh_token", "")
	v.SetDefault("daf_audience", defaults.DAFAudience)
	v.SetDefault("daf_domain", defaults.DAFDomain)
	v.SetDefault("daf_client_id", defaults.DAFClientID)
	v.SetDefault("timeout", defaults.Timeout)
	v.SetDefault("runs_page_size", defaults.RunsPageSize)
	v.SetDefault("suite_page_size", defaults.SuitePageSize)
	v.SetDefault("case_page_size", defaults.CasePageSize)
	v.SetDefault("format", defaults.Format)
	v.SetDefault("fail_threshold", defaults.FailThreshold)
	v.SetDefault("verbose", defaults.Verbose)
	v.SetDefault("debug", defaults.Debug)

	v.SetConfigName("levovulns")
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")

		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}

		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			v.AddConfigPath(filepath.Join(xdgConfig, "levovulns"))
		}
	}

	v.SetEnvPrefix("LEVOVULNS")
	v.AutomaticEnv()
	for key, env := range envBindings {
		if err := v.BindEnv(key, "LEVOVULNS_"+strings.ToUpper(key), env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("endpoint cannot be empty")
	}
	u, err := url.Parse(c.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid endpoint: %s (must be an http(s) URL)", c.Endpoint)
	}

	if !ValidFormats[c.Format] {
		return fmt.Errorf("invalid format: %s (must be json, grouped, text, yaml, sarif, or csv)", c.Format)
	}

	if c.Timeout < 0 {
		return fmt.Errorf("timeout cannot be negative")
	}

	if c.FailThreshold < 0 {
		return fmt.Errorf("fail_threshold cannot be negative")
	}

	if c.RunsPageSize <= 0 || c.SuitePageSize <= 0 || c.CasePageSize <= 0 {
		return fmt.Errorf("page sizes must be positive")
	}

	return nil
}

// HasCredentials reports whether a bearer token or a refresh token is set
func (c *Config) HasCredentials() bool {
	return c.AuthToken != "" || c.RefreshToken != ""
}

// ConfigPath returns the default config file location
func ConfigPath() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "levovulns", "levovulns.yaml")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, "levovulns.yaml")
	}
	return "levovulns.yaml"
}

// GenerateSampleConfig generates a sample configuration file content
func GenerateSampleConfig() string {
	return `# levovulns configuration
# Save this file as ~/levovulns.yaml or ./levovulns.yaml

# GraphQL endpoint (env: GQL_SERVICE_URL)
endpoint: https://api.levo.ai/graphql

# Workspace and organization headers, omitted when empty
# (env: WORKSPACE_ID, ORG_ID)
# workspace_id: ""
# org_id: ""

# Bearer token (env: AUTH_TOKEN)
# auth_token: ""

# Refresh token exchanged for a bearer token when auth_token is empty
# (env: LEVO_REFRESH_TOKEN)
# refresh_token: ""

# Per-request HTTP timeout
timeout: 30s

# Page sizes used when walking a run
runs_page_size: 20
suite_page_size: 100
case_page_size: 10

# Output format: json, grouped, text, yaml, sarif, or csv
format: json

# Exit with code 1 when more vulnerabilities are found (0 = disabled)
fail_threshold: 0

# Enable verbose output
verbose: false

# Enable debug mode
debug: false
`
}
