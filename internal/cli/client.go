package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to the host server JSON API
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new API client. apiKey is sent as a bearer token when
// set.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError represents an error response from the API
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an API error
type ErrorResponse struct {
	Error APIError `json:"error"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

// ConnectRequest is the body of a connect call
type ConnectRequest struct {
	Name     string  `json:"name"`
	Managed  *string `json:"managed"`
	Language string  `json:"language,omitempty"`
}

// Health checks the host server
func (c *Client) Health(ctx context.Context) (HealthResult, error) {
	var result HealthResult
	err := c.do(ctx, http.MethodGet, "/api/v1/health", nil, &result)
	return result, err
}

// GetLink fetches a link
func (c *Client) GetLink(ctx context.Context, gcid string) (Link, error) {
	var result Link
	err := c.do(ctx, http.MethodGet, linkPath(gcid), nil, &result)
	return result, err
}

// Connect claims a pending link for a player
func (c *Client) Connect(ctx context.Context, gcid string, req ConnectRequest) (ConnectResult, error) {
	var result ConnectResult
	err := c.do(ctx, http.MethodPost, linkPath(gcid)+"/connect", req, &result)
	return result, err
}

// Logout revokes a link and returns its replacement
func (c *Client) Logout(ctx context.Context, gcid string) (LogoutResult, error) {
	var result LogoutResult
	err := c.do(ctx, http.MethodPost, linkPath(gcid)+"/logout", nil, &result)
	return result, err
}

// DeleteLink revokes a link
func (c *Client) DeleteLink(ctx context.Context, gcid string) error {
	return c.do(ctx, http.MethodDelete, linkPath(gcid), nil, nil)
}

func linkPath(gcid string) string {
	return "/api/v1/links/" + url.PathEscape(gcid)
}

func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error.Code != "" {
			errResp.Error.Status = resp.StatusCode
			return &errResp.Error
		}
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}
