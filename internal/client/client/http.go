package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/authgate/internal/client/models"
	"github.com/dmitrijs2005/authgate/internal/common"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// HTTPClient talks to the gateway's HTTP API. Ping goes to the gRPC health
// endpoint when healthAddr is set and to GET /health otherwise.
type HTTPClient struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
	conn    *grpc.ClientConn
	health  healthpb.HealthClient
}

var _ Client = (*HTTPClient)(nil)

func NewHTTPClient(baseURL, healthAddr string, timeout time.Duration) (*HTTPClient, error) {
	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		http:    &http.Client{},
	}

	if healthAddr != "" {
		conn, err := grpc.NewClient(healthAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			return nil, err
		}
		c.conn = conn
		c.health = healthpb.NewHealthClient(conn)
	}

	return c, nil
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func (c *HTTPClient) Signup(ctx context.Context, username, email, password string) (*models.Profile, error) {
	body := map[string]any{"input": map[string]any{"userData": map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}}}

	var p models.Profile
	if err := c.do(ctx, http.MethodPost, "/signup", "", body, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *HTTPClient) Login(ctx context.Context, emailOrUsername, password string) (*models.LoginResult, error) {
	body := map[string]any{"input": map[string]any{"credentials": map[string]string{
		"emailOrUsername": emailOrUsername,
		"password":        password,
	}}}

	var res models.LoginResult
	if err := c.do(ctx, http.MethodPost, "/login", "", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) Me(ctx context.Context, token string) (*models.Profile, error) {
	var p models.Profile
	if err := c.do(ctx, http.MethodGet, "/me", token, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (c *HTTPClient) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	body := map[string]any{"input": map[string]string{"email": email}}

	var res successResponse
	if err := c.do(ctx, http.MethodPost, "/forgot-password", "", body, &res); err != nil {
		return "", err
	}
	return res.Message, nil
}

func (c *HTTPClient) ResetPassword(ctx context.Context, token, password string) (string, error) {
	body := map[string]any{"input": map[string]string{"token": token, "password": password}}

	var res successResponse
	if err := c.do(ctx, http.MethodPost, "/reset-password", "", body, &res); err != nil {
		return "", err
	}
	return res.Message, nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	if c.health == nil {
		return c.do(ctx, http.MethodGet, "/health", "", nil, nil)
	}

	resp, err := c.health.Check(ctx, &healthpb.HealthCheckRequest{})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return fmt.Errorf("%w: %s", ErrUnavailable, resp.GetStatus())
	}
	return nil
}

func (c *HTTPClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// do sends one request. out may be nil when the body is not needed.
func (c *HTTPClient) do(ctx context.Context, method, path, token string, in, out any) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(common.RequestIDHeaderName, uuid.NewString())
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &common.Error{Kind: ErrUnavailable, Message: MsgUnavailable}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return mapStatus(resp.StatusCode, e.Message)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return common.NewError(common.ErrUpstream, fmt.Sprintf("Unexpected response from server: %v", err))
	}
	return nil
}
