package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Config holds the configuration for connecting to the ClientPulse API.
type Config struct {
	APIURL string // Base URL, e.g. "http://localhost:8080"
}

// PulseClient is a pure HTTP client for the ClientPulse API.
type PulseClient struct {
	cfg        Config
	httpClient *http.Client
}

// NewPulseClient creates a new client for the ClientPulse API.
func NewPulseClient(cfg Config) *PulseClient {
	return &PulseClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// apiError represents an error response from the API.
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// doRequest makes an HTTP request to the API and returns the response body.
func (c *PulseClient) doRequest(ctx context.Context, method, path string, query url.Values, body any) (json.RawMessage, error) {
	u, err := url.Parse(c.cfg.APIURL + path)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr apiError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Message != "" {
			return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, apiErr.Message)
		}
		return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, string(respBody))
	}

	return json.RawMessage(respBody), nil
}

// CreateSession starts a new simulation session with default parameters.
func (c *PulseClient) CreateSession(ctx context.Context) (json.RawMessage, error) {
	return c.doRequest(ctx, http.MethodPost, "/v1/simulations", nil, nil)
}

// UpdateParams patches a session's parameters and returns the recomputed state.
func (c *PulseClient) UpdateParams(ctx context.Context, sessionID string, patch map[string]float64) (json.RawMessage, error) {
	path := "/v1/simulations/" + sessionID + "/params"
	return c.doRequest(ctx, http.MethodPatch, path, nil, patch)
}

// DeleteSession removes a simulation session.
func (c *PulseClient) DeleteSession(ctx context.Context, sessionID string) error {
	path := "/v1/simulations/" + sessionID
	_, err := c.doRequest(ctx, http.MethodDelete, path, nil, nil)
	return err
}

// GetClient returns one tracked client's health profile.
func (c *PulseClient) GetClient(ctx context.Context, clientID string) (json.RawMessage, error) {
	return c.doRequest(ctx, http.MethodGet, "/v1/clients/"+clientID, nil, nil)
}

// ListClients lists tracked clients, optionally filtered.
func (c *PulseClient) ListClients(ctx context.Context, segment, risk string, limit int) (json.RawMessage, error) {
	q := url.Values{}
	if segment != "" {
		q.Set("segment", segment)
	}
	if risk != "" {
		q.Set("risk", risk)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return c.doRequest(ctx, http.MethodGet, "/v1/clients", q, nil)
}

// GetBenchmarks returns the industry benchmark table.
func (c *PulseClient) GetBenchmarks(ctx context.Context) (json.RawMessage, error) {
	return c.doRequest(ctx, http.MethodGet, "/v1/dashboard/benchmarks", nil, nil)
}
