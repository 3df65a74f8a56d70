package imagegen

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

	"newsroom/internal/config"
	"newsroom/internal/metrics"
	"newsroom/internal/services"
)

const (
	defaultBaseURL     = "https://api.openai.com/v1/images/generations"
	defaultHTTPTimeout = 180 * time.Second
	// DataURLPrefix marks inline PNG payloads.
	DataURLPrefix = "data:image/png;base64,"
)

// Result is a generated image.
type Result struct {
	URL           string
	Model         string
	RevisedPrompt string
}

// Client generates images from prompts.
type Client struct {
	cfg        config.Images
	httpClient *http.Client
	metrics    *metrics.Metrics

	retryAttempts int
	retryDelay    time.Duration
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithMetrics records request outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithRetry overrides the attempt count and the base backoff delay.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(c *Client) {
		c.retryAttempts = attempts
		c.retryDelay = delay
	}
}

// NewClient builds a client from the images config section.
func NewClient(cfg config.Images, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = defaultBaseURL
	}
	c := &Client{
		cfg:           cfg,
		httpClient:    &http.Client{Timeout: timeout},
		retryAttempts: 3,
		retryDelay:    2 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Model returns the configured model identifier.
func (c *Client) Model() string { return c.cfg.Model }

type generationRequest struct {
	Model   string `json:"model"`
	Prompt  string `json:"prompt"`
	N       int    `json:"n"`
	Size    string `json:"size,omitempty"`
	Quality string `json:"quality,omitempty"`
}

type generationResponse struct {
	Data []struct {
		B64JSON       string `json:"b64_json"`
		URL           string `json:"url"`
		RevisedPrompt string `json:"revised_prompt"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

type statusError struct {
	StatusCode int
	Body       string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("image request: http %d: %s", e.StatusCode, e.Body)
}

// GenerateImage renders prompt and returns the image URL.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (Result, error) {
	result, err := c.generate(ctx, prompt)
	c.metrics.RecordImageRequest(err)
	return result, err
}

func (c *Client) generate(ctx context.Context, prompt string) (Result, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return Result{}, services.Wrap(services.ErrValidation, "imagegen", "generate", "prompt required", nil)
	}
	if c.cfg.APIKey == "" {
		return Result{}, services.Wrap(services.ErrConfiguration, "imagegen", "generate",
			"api key required (set images.api_key or OPENAI_API_KEY)", nil)
	}
	body, err := json.Marshal(generationRequest{
		Model:   c.cfg.Model,
		Prompt:  prompt,
		N:       1,
		Size:    c.cfg.Size,
		Quality: c.cfg.Quality,
	})
	if err != nil {
		return Result{}, fmt.Errorf("image request: encode: %w", err)
	}

	attempts := max(c.retryAttempts, 1)
	delay := c.retryDelay
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		result, err := c.send(ctx, body)
		if err == nil {
			return result, nil
		}
		lastErr = err
		var se *statusError
		retry := errors.As(err, &se) && (se.StatusCode == http.StatusTooManyRequests || se.StatusCode >= 500)
		if !retry || attempt == attempts {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return Result{}, ctx.Err()
		}
		delay *= 2
	}
	if errors.Is(lastErr, context.DeadlineExceeded) || errors.Is(lastErr, context.Canceled) {
		return Result{}, lastErr
	}
	return Result{}, services.Wrap(services.ErrGeneration, "imagegen", "generate", "image request failed", lastErr)
}

func (c *Client) send(ctx context.Context, body []byte) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("image request: new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("image request: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("image request: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		snippet := strings.TrimSpace(string(raw))
		if len(snippet) > 512 {
			snippet = snippet[:512]
		}
		return Result{}, &statusError{StatusCode: resp.StatusCode, Body: snippet}
	}

	var decoded generationResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return Result{}, fmt.Errorf("image request: decode: %w", err)
	}
	if decoded.Error != nil {
		return Result{}, fmt.Errorf("image request: api error: %s", decoded.Error.Message)
	}
	if len(decoded.Data) == 0 {
		return Result{}, errors.New("image request: no images returned")
	}
	first := decoded.Data[0]
	result := Result{Model: c.cfg.Model, RevisedPrompt: first.RevisedPrompt}
	switch {
	case first.B64JSON != "":
		result.URL = DataURLPrefix + first.B64JSON
	case first.URL != "":
		result.URL = first.URL
	default:
		return Result{}, errors.New("image request: response has neither b64_json nor url")
	}
	return result, nil
}
