package youtube

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"newsroom/internal/config"
	"newsroom/internal/logging"
)

const (
	userAgent          = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	maxWatchPageBytes  = 6 << 20
	maxTimedTextBytes  = 2 << 20
	maxAPIResponseSize = 1 << 20
)

// Client talks to YouTube. It satisfies discovery.ChannelLister and
// transcripts.CaptionSource.
type Client struct {
	httpClient *http.Client
	apiKey     string
	dataBase   string
	watchBase  string
	language   string
	maxPages   int
	logger     *slog.Logger

	retryAttempts int
	retryBase     time.Duration
	retryMax      time.Duration
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

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRetry overrides retry attempts and backoff bounds.
func WithRetry(attempts int, base, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.retryAttempts = attempts
		c.retryBase = base
		c.retryMax = maxDelay
	}
}

// New builds a client from the youtube config section.
func New(cfg config.YouTube, opts ...Option) *Client {
	timeout := time.Duration(cfg.RequestTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := &Client{
		httpClient:    &http.Client{Timeout: timeout},
		apiKey:        strings.TrimSpace(cfg.APIKey),
		dataBase:      strings.TrimRight(cfg.DataAPIBaseURL, "/"),
		watchBase:     strings.TrimRight(cfg.WatchBaseURL, "/"),
		language:      strings.TrimSpace(cfg.Language),
		maxPages:      cfg.MaxListPages,
		logger:        logging.NewNop(),
		retryAttempts: 3,
		retryBase:     500 * time.Millisecond,
		retryMax:      10 * time.Second,
	}
	if c.language == "" {
		c.language = "en"
	}
	if c.maxPages <= 0 {
		c.maxPages = 1
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.NewComponentLogger(c.logger, "youtube")
	return c
}

// statusError reports a non-success HTTP response.
type statusError struct {
	StatusCode int
	Body       string
}

func (e *statusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("http %d", e.StatusCode)
	}
	return fmt.Sprintf("http %d: %s", e.StatusCode, e.Body)
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

func retryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return retryableStatus(se.StatusCode)
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}

// get fetches url and returns at most limit bytes of the body. Rate limits
// and server errors are retried with exponential backoff.
func (c *Client) get(ctx context.Context, url string, headers map[string]string, limit int64) ([]byte, error) {
	attempts := c.retryAttempts
	if attempts < 1 {
		attempts = 1
	}
	delay := c.retryBase
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		body, err := c.getOnce(ctx, url, headers, limit)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable(err) || attempt == attempts {
			break
		}
		c.logger.Debug("youtube request retry",
			logging.Int("attempt", attempt),
			logging.Duration("wait", delay),
			logging.Error(err),
		)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		delay *= 2
		if c.retryMax > 0 && delay > c.retryMax {
			delay = c.retryMax
		}
	}
	return nil, lastErr
}

func (c *Client) getOnce(ctx context.Context, url string, headers map[string]string, limit int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := strings.TrimSpace(string(body))
		if len(snippet) > 256 {
			snippet = snippet[:256]
		}
		return nil, &statusError{StatusCode: resp.StatusCode, Body: snippet}
	}
	return body, nil
}
