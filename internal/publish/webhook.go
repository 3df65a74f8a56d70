package publish

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
	"newsroom/internal/services"
)

// Entry is the document sent to the sink.
type Entry struct {
	Title    string `json:"title"`
	HTML     string `json:"html"`
	Markdown string `json:"markdown,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

// WebhookSink posts entries to an HTTP endpoint.
type WebhookSink struct {
	url    string
	token  string
	client *http.Client
}

// NewWebhookSink builds a sink from the publish config section.
func NewWebhookSink(cfg config.Publish, client *http.Client) *WebhookSink {
	if client == nil {
		timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &WebhookSink{url: strings.TrimSpace(cfg.URL), token: strings.TrimSpace(cfg.Token), client: client}
}

type sinkResponse struct {
	Ref string `json:"ref"`
	ID  any    `json:"id"`
	URL string `json:"url"`
}

// Send posts entry and returns the reference assigned by the sink.
func (s *WebhookSink) Send(ctx context.Context, entry Entry) (string, error) {
	if s.url == "" {
		return "", services.Wrap(services.ErrConfiguration, "publish", "send", "publish.url is not set", nil)
	}
	body, err := json.Marshal(entry)
	if err != nil {
		return "", fmt.Errorf("encode entry: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build publish request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "publish", "send", "request failed", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode >= 300 {
		marker := services.ErrExternalTool
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			marker = services.ErrTransient
		}
		return "", services.Wrap(marker, "publish", "send",
			fmt.Sprintf("sink returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw))), nil)
	}
	var decoded sinkResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("decode sink response: %w", err)
	}
	ref := firstNonEmpty(decoded.Ref, idString(decoded.ID), decoded.URL)
	if ref == "" {
		return "", errors.New("sink response has no ref, id or url")
	}
	return ref, nil
}

// Publish implements the pipeline sink capability.
func (s *WebhookSink) Publish(ctx context.Context, title, html, imageURL string) (string, error) {
	entry := Entry{Title: title, HTML: html, ImageURL: imageURL}
	if md, err := Markdown(html); err == nil {
		entry.Markdown = md
	}
	return s.Send(ctx, entry)
}

func idString(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case float64:
		return fmt.Sprintf("%.0f", value)
	default:
		return fmt.Sprint(value)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
