// Package graphql is a minimal client for a Hasura-compatible GraphQL
// endpoint, authenticated with the admin secret.
package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/authgate/internal/common"
	"github.com/dmitrijs2005/authgate/internal/logging"
)

// AdminSecretHeader authenticates the gateway to the data layer.
const AdminSecretHeader = "x-hasura-admin-secret"

type request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// Error is one entry of a GraphQL "errors" array.
type Error struct {
	Message string `json:"message"`
}

type response struct {
	Data   json.RawMessage `json:"data"`
	Errors []Error         `json:"errors"`
}

// Client executes GraphQL documents over HTTP.
type Client struct {
	endpoint    string
	adminSecret string
	httpClient  *http.Client
	logger      logging.Logger
}

// NewClient returns a Client for endpoint. A nil httpClient means
// http.DefaultClient; request deadlines come from the caller's context.
func NewClient(endpoint, adminSecret string, httpClient *http.Client, logger logging.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		endpoint:    endpoint,
		adminSecret: adminSecret,
		httpClient:  httpClient,
		logger:      logger.With("module", "graphql"),
	}
}

// Execute runs query with variables and decodes "data" into out (which may
// be nil). Transport failures, non-2xx statuses and GraphQL errors all wrap
// common.ErrUpstream; the GraphQL messages are joined with "; ".
func (c *Client) Execute(ctx context.Context, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(request{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("encode graphql request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new graphql request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(AdminSecretHeader, c.adminSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: graphql request failed: %v", common.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Error(ctx, "graphql request failed", "status", resp.StatusCode, "body", string(b))
		return fmt.Errorf("%w: graphql request failed: %s", common.ErrUpstream, http.StatusText(resp.StatusCode))
	}

	var r response
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return fmt.Errorf("%w: decode graphql response: %v", common.ErrUpstream, err)
	}

	if len(r.Errors) > 0 {
		messages := make([]string, 0, len(r.Errors))
		for _, e := range r.Errors {
			messages = append(messages, e.Message)
		}
		c.logger.Error(ctx, "graphql errors", "errors", messages)
		return &ExecutionError{Messages: messages}
	}

	if out == nil || len(r.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Data, out); err != nil {
		return fmt.Errorf("%w: decode graphql data: %v", common.ErrUpstream, err)
	}
	return nil
}

// ExecutionError is returned when the endpoint answered with GraphQL errors.
type ExecutionError struct {
	Messages []string
}

func (e *ExecutionError) Error() string {
	return "graphql execution failed: " + strings.Join(e.Messages, "; ")
}

func (e *ExecutionError) Unwrap() error {
	return common.ErrUpstream
}

// IsUniquenessViolation reports whether err is a GraphQL error caused by a
// unique constraint in the underlying database.
func IsUniquenessViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "Uniqueness violation") || strings.Contains(msg, "unique constraint")
}
