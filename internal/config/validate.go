package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable. Credentials are not required
// here; each adapter reports a configuration error when it is built without
// the key it needs, so local commands keep working offline.
func (c *Config) Validate() error {
	if err := c.validateYouTube(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateImages(); err != nil {
		return err
	}
	if err := c.validateWhisperX(); err != nil {
		return err
	}
	if err := c.validatePipeline(); err != nil {
		return err
	}
	if err := c.validatePublish(); err != nil {
		return err
	}
	if err := c.validateDaemon(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateYouTube() error {
	if err := ensurePositiveMap(map[string]int{
		"youtube.request_timeout_seconds": c.YouTube.RequestTimeoutSeconds,
		"youtube.max_list_pages":          c.YouTube.MaxListPages,
	}); err != nil {
		return err
	}
	if c.YouTube.FetchIntervalMillis < 0 {
		return errors.New("youtube.fetch_interval_ms must be >= 0")
	}
	return nil
}

func (c *Config) validateLLM() error {
	if err := ensurePositiveMap(map[string]int{
		"llm.timeout_seconds":     c.LLM.TimeoutSeconds,
		"llm.requests_per_minute": c.LLM.RequestsPerMinute,
	}); err != nil {
		return err
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return errors.New("llm.temperature must be between 0 and 2")
	}
	return nil
}

func (c *Config) validateImages() error {
	if c.Images.TimeoutSeconds <= 0 {
		return errors.New("images.timeout_seconds must be positive")
	}
	switch c.Images.Quality {
	case "low", "medium", "high", "auto":
	default:
		return fmt.Errorf("images.quality must be one of low, medium, high, auto (got %q)", c.Images.Quality)
	}
	return nil
}

func (c *Config) validateWhisperX() error {
	switch c.WhisperX.VADMethod {
	case "silero", "pyannote":
	default:
		return fmt.Errorf("whisperx.vad_method must be silero or pyannote (got %q)", c.WhisperX.VADMethod)
	}
	if c.WhisperX.VADMethod == "pyannote" && c.WhisperX.HFToken == "" {
		return errors.New("whisperx.hf_token is required when whisperx.vad_method is pyannote (or set HF_TOKEN)")
	}
	if c.WhisperX.TimeoutSeconds <= 0 {
		return errors.New("whisperx.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validatePipeline() error {
	return ensurePositiveMap(map[string]int{
		"pipeline.batch_size":           c.Pipeline.BatchSize,
		"pipeline.item_timeout_seconds": c.Pipeline.ItemTimeoutSeconds,
		"pipeline.summary_max_chars":    c.Pipeline.SummaryMaxChars,
		"pipeline.snippet_max_chars":    c.Pipeline.SnippetMaxChars,
	})
}

func (c *Config) validatePublish() error {
	if !c.Publish.Enabled {
		return nil
	}
	if c.Publish.URL == "" {
		return errors.New("publish.url is required when publish.enabled is true")
	}
	if !strings.HasPrefix(c.Publish.URL, "http://") && !strings.HasPrefix(c.Publish.URL, "https://") {
		return fmt.Errorf("publish.url must be an http(s) URL (got %q)", c.Publish.URL)
	}
	if c.Publish.TimeoutSeconds <= 0 {
		return errors.New("publish.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateDaemon() error {
	if c.Daemon.RunIntervalMinutes < 0 {
		return errors.New("daemon.run_interval_minutes must be >= 0")
	}
	if !strings.Contains(c.Daemon.APIBind, ":") {
		return fmt.Errorf("daemon.api_bind must be host:port (got %q)", c.Daemon.APIBind)
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout < 0 {
		return errors.New("notifications.request_timeout must be >= 0")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
