// Package graphql executes GraphQL operations against the testing service.
package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/ppiankov/levovulns/internal/logging"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// Header names understood by the service
const (
	HeaderWorkspaceID    = "x-levo-workspace-id"
	HeaderOrganizationID = "x-levo-organization-id"
	HeaderRequestID      = "X-Request-ID"
)

const maxResponseBytes = 64 << 20

// Operation is a named query document.
type Operation struct {
	Name  string
	Query string
}

// Config holds the endpoint and header settings for a Client.
type Config struct {
	Endpoint       string
	WorkspaceID    string
	OrganizationID string
	// TokenSource supplies the bearer token. Nil sends no Authorization header.
	TokenSource oauth2.TokenSource
	// HTTPClient provides the base transport; its Timeout is replaced by Timeout when set.
	HTTPClient *http.Client
	Timeout    time.Duration
	Logger     *zap.Logger
}

// Client sends one POST per operation. It keeps no state across calls.
type Client struct {
	endpoint       string
	workspaceID    string
	organizationID string
	httpClient     *http.Client
	logger         *zap.Logger
}

// New creates a GraphQL client.
func New(cfg Config) *Client {
	base := http.DefaultTransport
	timeout := cfg.Timeout
	if cfg.HTTPClient != nil {
		if cfg.HTTPClient.Transport != nil {
			base = cfg.HTTPClient.Transport
		}
		if timeout == 0 {
			timeout = cfg.HTTPClient.Timeout
		}
	}

	transport := base
	if cfg.TokenSource != nil {
		transport = &oauth2.Transport{Source: cfg.TokenSource, Base: base}
	}

	return &Client{
		endpoint:       cfg.Endpoint,
		workspaceID:    cfg.WorkspaceID,
		organizationID: cfg.OrganizationID,
		httpClient:     &http.Client{Transport: transport, Timeout: timeout},
		logger:         logging.OrNop(cfg.Logger),
	}
}

type requestBody struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
}

// Execute runs op with variables and decodes the "data" member into out.
// Any response that contains an "errors" key fails, even when it is null or empty.
func (c *Client) Execute(ctx context.Context, op Operation, variables map[string]any, out any) error {
	requestID := uuid.NewString()
	fail := func(kind Kind, status int, body []byte, cause error) *RequestError {
		return &RequestError{
			Operation:  op.Name,
			Kind:       kind,
			StatusCode: status,
			RequestID:  requestID,
			Response:   body,
			Cause:      cause,
		}
	}

	payload, err := json.Marshal(requestBody{Query: op.Query, OperationName: op.Name, Variables: variables})
	if err != nil {
		return fail(KindTransport, 0, nil, fmt.Errorf("marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fail(KindTransport, 0, nil, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderRequestID, requestID)
	if c.workspaceID != "" {
		req.Header.Set(HeaderWorkspaceID, c.workspaceID)
	}
	if c.organizationID != "" {
		req.Header.Set(HeaderOrganizationID, c.organizationID)
	}

	c.logger.Debug("graphql request",
		zap.String("operation", op.Name),
		zap.String("request_id", requestID),
		zap.Any("variables", variables))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fail(KindTransport, 0, nil, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fail(KindTransport, resp.StatusCode, nil, fmt.Errorf("read response: %w", err))
	}

	c.logger.Debug("graphql response",
		zap.String("operation", op.Name),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)),
		zap.Duration("elapsed", time.Since(start)))

	// Members are kept raw so that a null "errors" still counts as present.
	var members map[string]json.RawMessage
	decodeErr := json.Unmarshal(body, &members)
	if decodeErr == nil && members == nil {
		decodeErr = fmt.Errorf("response is not a JSON object")
	}

	// A GraphQL error body takes precedence over the HTTP status.
	if rawErrs, ok := members["errors"]; decodeErr == nil && ok {
		re := fail(KindGraphQL, resp.StatusCode, body, nil)
		var gqlErrs []GraphQLError
		if err := json.Unmarshal(rawErrs, &gqlErrs); err == nil {
			re.Errors = gqlErrs
		}
		return re
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fail(KindTransport, resp.StatusCode, body, fmt.Errorf("unexpected status %s", resp.Status))
	}
	if decodeErr != nil {
		return fail(KindDecode, resp.StatusCode, body, fmt.Errorf("decode response: %w", decodeErr))
	}
	data := members["data"]
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return fail(KindDecode, resp.StatusCode, body, fmt.Errorf("response has no data"))
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fail(KindDecode, resp.StatusCode, body, fmt.Errorf("decode data: %w", err))
		}
	}
	return nil
}
