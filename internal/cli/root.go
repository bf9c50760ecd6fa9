package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ppiankov/levovulns/internal/config"
	"github.com/ppiankov/levovulns/internal/logging"
	"github.com/ppiankov/levovulns/internal/reporter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	ExitOK           = 0 // Success
	ExitPolicyFail   = 1 // Vulnerabilities exceed threshold or violate policy
	ExitInvalidInput = 2 // Bad argument, filter or attachment document
	ExitRuntimeError = 3 // Request, I/O or runtime error
)

var (
	// Global config instance
	cfg *config.Config

	// Shared logger, built from the verbosity flags
	logger *zap.Logger

	// Set by main via SetVersion
	buildVersion = "dev"

	// Global flags
	configFile string
	verbose    bool
	debug      bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "levovulns [run-id]",
	Short: "levovulns - vulnerability reports from Levo API test runs",
	Long: `levovulns walks a Levo API test run (suite runs, case runs and their
Result attachments) and prints the failed security assertions as a flat list
of vulnerability records.

It provides:
- JSON, grouped JSON, text, YAML, SARIF and CSV output
- Summary counts and per-CWE recommendations
- CEL filters, policy files and thresholds for CI gating
- Run comparison and an interactive browser

Quick start:
  export AUTH_TOKEN=...            # or LEVO_REFRESH_TOKEN
  levovulns doctor
  levovulns runs --format text
  levovulns <run-id>

Other commands:
  levovulns report <run-id> --format sarif -o results.sarif
  levovulns diff <base-run-id> <run-id>
  levovulns browse <run-id>
  levovulns extract attachment.json`,
	Args:              cobra.MaximumNArgs(1),
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return runReport(cmd, args)
	},
}

// loadConfig loads configuration and builds the logger for every command
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.LoadFromFile(configFile)
	if err != nil {
		return &ValidationError{Message: fmt.Sprintf("failed to load config: %v", err)}
	}

	// Override config with flags if provided
	if verbose {
		cfg.Verbose = true
	}
	if debug {
		cfg.Debug = true
	}

	logger = logging.New(logging.Options{Verbose: cfg.Verbose, Debug: cfg.Debug})
	return nil
}

// Execute runs the root command and exits with the code HandleError assigns
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if logger != nil {
		_ = logger.Sync()
	}
	if err != nil {
		os.Exit(HandleError(err))
	}
}

// SetVersion records the build version for the version command and SARIF output
func SetVersion(v string) {
	buildVersion = v
	reporter.ToolVersion = v
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"config file (default: ./levovulns.yaml or ~/levovulns.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"verbose output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"debug mode (very verbose)")

	addReportFlags(rootCmd)

	// Add subcommands
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(detailsCmd)
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(versionCmd)
}

// versionCmd shows version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("levovulns %s\n", buildVersion)
		fmt.Println("Vulnerability reports from Levo API test runs")
	},
}

// HandleError determines the appropriate exit code for an error
func HandleError(err error) int {
	if err == nil {
		return ExitOK
	}

	var validationErr *ValidationError
	var thresholdErr *ThresholdExceededError
	var policyErr *PolicyViolationError
	switch {
	case errors.As(err, &validationErr):
		return ExitInvalidInput
	case errors.As(err, &thresholdErr), errors.As(err, &policyErr):
		return ExitPolicyFail
	default:
		return ExitRuntimeError
	}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ThresholdExceededError represents a threshold policy failure
type ThresholdExceededError struct {
	Count     int
	Threshold int
}

func (e *ThresholdExceededError) Error() string {
	return fmt.Sprintf("vulnerability count (%d) exceeds threshold (%d)", e.Count, e.Threshold)
}

// PolicyViolationError reports how many policy rules failed
type PolicyViolationError struct {
	Violations int
}

func (e *PolicyViolationError) Error() string {
	return fmt.Sprintf("policy check failed with %d violation(s)", e.Violations)
}

func log() *zap.SugaredLogger {
	return logging.OrNop(logger).Sugar()
}

// logVerbose prints a message if verbose mode is enabled
func logVerbose(format string, args ...interface{}) {
	log().Infof(format, args...)
}

// logDebug prints a message if debug mode is enabled
func logDebug(format string, args ...interface{}) {
	log().Debugf(format, args...)
}

// logError prints an error message
func logError(format string, args ...interface{}) {
	log().Errorf(format, args...)
}

// commandContext returns the command's context, or Background when run outside Execute
func commandContext(cmd *cobra.Command) context.Context {
	if cmd != nil && cmd.Context() != nil {
		return cmd.Context()
	}
	return context.Background()
}
