package daemonctl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"newsroom/internal/api"
	"newsroom/internal/config"
	"newsroom/internal/pipeline"
)

// ErrUnreachable reports that no daemon answered at the configured address.
var ErrUnreachable = errors.New("daemon unreachable")

// Client talks to a running newsroomd over its HTTP API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient builds a client for the daemon described by cfg.
func NewClient(cfg *config.Config) *Client {
	return NewClientFor("http://"+strings.TrimSpace(cfg.Daemon.APIBind), cfg.Daemon.APIToken)
}

// NewClientFor builds a client for an explicit base URL.
func NewClientFor(baseURL, token string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      strings.TrimSpace(token),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Status returns the daemon status.
func (c *Client) Status(ctx context.Context) (*api.DaemonStatus, error) {
	var status api.DaemonStatus
	if err := c.call(ctx, http.MethodGet, "/api/status", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Health returns the daemon readiness checks.
func (c *Client) Health(ctx context.Context, deep bool) (*api.HealthResponse, error) {
	path := "/api/health"
	if deep {
		path += "?deep=1"
	}
	var health api.HealthResponse
	if err := c.call(ctx, http.MethodGet, path, nil, &health); err != nil {
		var statusErr *StatusError
		if !errors.As(err, &statusErr) || statusErr.Code != http.StatusServiceUnavailable {
			return nil, err
		}
		health.Ready = false
	}
	return &health, nil
}

// RunPipeline asks the daemon for a full run. Runs can take minutes, so the
// request uses ctx alone for its deadline.
func (c *Client) RunPipeline(ctx context.Context, count int) (*pipeline.RunReport, error) {
	var report pipeline.RunReport
	client := *c
	client.httpClient = &http.Client{}
	if err := client.call(ctx, http.MethodPost, "/api/pipeline/run", api.BatchRequest{Count: count}, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// StatusError carries a non-2xx daemon response.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("daemon returned %d: %s", e.Code, e.Message)
}

func (c *Client) call(ctx context.Context, method, path string, body, dst any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if dst != nil && len(data) > 0 {
		if decodeErr := json.Unmarshal(data, dst); decodeErr != nil && resp.StatusCode < 300 {
			return fmt.Errorf("decode response: %w", decodeErr)
		}
	}
	if resp.StatusCode >= 300 {
		var payload struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(data, &payload)
		message := payload.Error
		if message == "" {
			message = strings.TrimSpace(string(data))
		}
		return &StatusError{Code: resp.StatusCode, Message: message}
	}
	return nil
}
