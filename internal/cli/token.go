package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var tokenJSON bool

var tokenCmd = &cobra.Command{
	Use:   "token [refresh-token]",
	Short: "Exchange a refresh token for an access token",
	Long: `Exchange a refresh token for an access token and print it.

The refresh token comes from the argument or LEVO_REFRESH_TOKEN. The
exchange posts to <daf_domain>/oauth/token with the configured client id
and audience.

Example:
  export AUTH_TOKEN=$(levovulns token)
  levovulns token "$REFRESH" --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runToken,
}

func init() {
	tokenCmd.Flags().BoolVar(&tokenJSON, "json", false,
		"print the token, type and expiry as JSON")
}

type tokenOutput struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	Expiry      time.Time `json:"expiry,omitempty"`
}

func runToken(cmd *cobra.Command, args []string) error {
	refreshToken := cfg.RefreshToken
	if len(args) == 1 {
		refreshToken = args[0]
	}
	if refreshToken == "" {
		return &ValidationError{Message: "no refresh token: pass one as an argument or set LEVO_REFRESH_TOKEN"}
	}

	logVerbose("Exchanging refresh token at %s", cfg.DAFDomain)

	tok, err := newRefresher().Refresh(commandContext(cmd), refreshToken)
	if err != nil {
		logError("Token exchange failed: %v", err)
		return err
	}

	if tokenJSON {
		return writeJSON(os.Stdout, tokenOutput{
			AccessToken: tok.AccessToken,
			TokenType:   tok.Type(),
			Expiry:      tok.Expiry,
		})
	}

	fmt.Println(tok.AccessToken)
	return nil
}
