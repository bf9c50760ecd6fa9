// Package auth exchanges a long-lived refresh token for a short-lived
// bearer token at the OAuth token endpoint of the hosted service.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ppiankov/levovulns/internal/logging"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const tokenPath = "/oauth/token"

// Refresher performs the refresh_token grant.
type Refresher struct {
	domain     string
	clientID   string
	audience   string
	httpClient *http.Client
	logger     *zap.Logger
}

// Config holds the credential exchange settings.
type Config struct {
	Domain     string
	ClientID   string
	Audience   string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// New creates a Refresher. A nil HTTPClient gets a 10s timeout client.
func New(cfg Config) *Refresher {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Refresher{
		domain:     strings.TrimRight(cfg.Domain, "/"),
		clientID:   cfg.ClientID,
		audience:   cfg.Audience,
		httpClient: hc,
		logger:     logging.OrNop(cfg.Logger),
	}
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Refresh exchanges refreshToken for an access token.
// A non-200 status is logged; the call only fails when no access_token comes back.
func (r *Refresher) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, fmt.Errorf("refresh token is required")
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("client_id", r.clientID)
	form.Set("refresh_token", refreshToken)
	form.Set("audience", r.audience)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.domain+tokenPath, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		r.logger.Warn("failed to retrieve token", zap.Int("status", resp.StatusCode))
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("decode token response (HTTP %d): %w", resp.StatusCode, err)
	}
	if tr.AccessToken == "" {
		return nil, fmt.Errorf("token response (HTTP %d) has no access_token", resp.StatusCode)
	}

	tok := &oauth2.Token{
		AccessToken:  tr.AccessToken,
		TokenType:    tr.TokenType,
		RefreshToken: refreshToken,
	}
	if tr.RefreshToken != "" {
		tok.RefreshToken = tr.RefreshToken
	}
	if tr.ExpiresIn > 0 {
		tok.Expiry = time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	}

	r.logger.Debug("access token refreshed", zap.Time("expiry", tok.Expiry))
	return tok, nil
}

// TokenSource returns a cached source that refreshes again once the token expires.
func (r *Refresher) TokenSource(ctx context.Context, refreshToken string) oauth2.TokenSource {
	return oauth2.ReuseTokenSource(nil, &refreshSource{
		ctx:          ctx,
		refresher:    r,
		refreshToken: refreshToken,
	})
}

type refreshSource struct {
	ctx          context.Context
	refresher    *Refresher
	refreshToken string
}

func (s *refreshSource) Token() (*oauth2.Token, error) {
	tok, err := s.refresher.Refresh(s.ctx, s.refreshToken)
	if err != nil {
		return nil, err
	}
	if tok.RefreshToken != "" {
		s.refreshToken = tok.RefreshToken
	}
	return tok, nil
}

// StaticTokenSource wraps a bearer token that is already known.
func StaticTokenSource(accessToken string) oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
}
