package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeYouTube()
	c.normalizeLLM()
	c.normalizeImages()
	c.normalizeWhisperX()
	c.normalizeCreators()
	c.normalizePublish()
	c.normalizeDaemon()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.ContextDir, err = expandPath(strings.TrimSpace(c.Paths.ContextDir)); err != nil {
		return fmt.Errorf("paths.context_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.AudioDir) == "" {
		c.Paths.AudioDir = defaultAudioDir
	}
	if c.Paths.AudioDir, err = expandPath(c.Paths.AudioDir); err != nil {
		return fmt.Errorf("paths.audio_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeYouTube() {
	c.YouTube.APIKey = strings.TrimSpace(c.YouTube.APIKey)
	if c.YouTube.APIKey == "" {
		if value, ok := os.LookupEnv("YOUTUBE_API_KEY"); ok {
			c.YouTube.APIKey = strings.TrimSpace(value)
		}
	}
	c.YouTube.ChannelID = strings.TrimSpace(c.YouTube.ChannelID)
	if c.YouTube.ChannelID == "" {
		if value, ok := os.LookupEnv("YOUTUBE_CHANNEL_ID"); ok {
			c.YouTube.ChannelID = strings.TrimSpace(value)
		}
	}
	c.YouTube.DataAPIBaseURL = strings.TrimRight(strings.TrimSpace(c.YouTube.DataAPIBaseURL), "/")
	if c.YouTube.DataAPIBaseURL == "" {
		c.YouTube.DataAPIBaseURL = defaultYouTubeDataAPIBaseURL
	}
	c.YouTube.WatchBaseURL = strings.TrimRight(strings.TrimSpace(c.YouTube.WatchBaseURL), "/")
	if c.YouTube.WatchBaseURL == "" {
		c.YouTube.WatchBaseURL = defaultYouTubeWatchBaseURL
	}
	c.YouTube.Language = strings.ToLower(strings.TrimSpace(c.YouTube.Language))
	if c.YouTube.Language == "" {
		c.YouTube.Language = defaultYouTubeLanguage
	}
}

// normalizeLLM resolves the text model key. OPENROUTER_API_KEY wins; when only
// XAI_API_KEY is set and the endpoint was left at its default, the xAI
// endpoint and model are selected instead.
func (c *Config) normalizeLLM() {
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.APIKey == "" {
		if value, ok := os.LookupEnv("OPENROUTER_API_KEY"); ok && strings.TrimSpace(value) != "" {
			c.LLM.APIKey = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv("XAI_API_KEY"); ok && strings.TrimSpace(value) != "" {
			c.LLM.APIKey = strings.TrimSpace(value)
			if c.LLM.BaseURL == "" || c.LLM.BaseURL == defaultLLMBaseURL {
				c.LLM.BaseURL = defaultXAIBaseURL
				if c.LLM.Model == "" || c.LLM.Model == defaultLLMModel {
					c.LLM.Model = defaultXAIModel
				}
			}
		}
	}
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
}

func (c *Config) normalizeImages() {
	c.Images.APIKey = strings.TrimSpace(c.Images.APIKey)
	if c.Images.APIKey == "" {
		if value, ok := os.LookupEnv("OPENAI_API_KEY"); ok {
			c.Images.APIKey = strings.TrimSpace(value)
		}
	}
	if strings.TrimSpace(c.Images.BaseURL) == "" {
		c.Images.BaseURL = defaultImagesBaseURL
	}
	if strings.TrimSpace(c.Images.Model) == "" {
		c.Images.Model = defaultImagesModel
	}
	if strings.TrimSpace(c.Images.Size) == "" {
		c.Images.Size = defaultImagesSize
	}
	c.Images.Quality = strings.ToLower(strings.TrimSpace(c.Images.Quality))
	if c.Images.Quality == "" {
		c.Images.Quality = defaultImagesQuality
	}
}

func (c *Config) normalizeWhisperX() {
	c.WhisperX.Model = strings.TrimSpace(c.WhisperX.Model)
	if c.WhisperX.Model == "" {
		c.WhisperX.Model = defaultWhisperXModel
	}
	c.WhisperX.VADMethod = strings.ToLower(strings.TrimSpace(c.WhisperX.VADMethod))
	if c.WhisperX.VADMethod == "" {
		c.WhisperX.VADMethod = defaultWhisperXVADMethod
	}
	c.WhisperX.HFToken = strings.TrimSpace(c.WhisperX.HFToken)
	if c.WhisperX.HFToken == "" {
		if value, ok := os.LookupEnv("HF_TOKEN"); ok {
			c.WhisperX.HFToken = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeCreators() {
	c.Creators.Journalist = strings.ToLower(strings.TrimSpace(c.Creators.Journalist))
	if c.Creators.Journalist == "" {
		c.Creators.Journalist = defaultJournalist
	}
	c.Creators.Artist = strings.ToLower(strings.TrimSpace(c.Creators.Artist))
	if c.Creators.Artist == "" {
		c.Creators.Artist = defaultArtist
	}
	c.Creators.Tone = strings.ToLower(strings.TrimSpace(c.Creators.Tone))
	c.Creators.ArticleType = strings.ToLower(strings.TrimSpace(c.Creators.ArticleType))
	c.Creators.Medium = strings.TrimSpace(c.Creators.Medium)
	c.Creators.Aesthetic = strings.TrimSpace(c.Creators.Aesthetic)
	c.Creators.Style = strings.TrimSpace(c.Creators.Style)
}

func (c *Config) normalizePublish() {
	c.Publish.URL = strings.TrimSpace(c.Publish.URL)
	c.Publish.Token = strings.TrimSpace(c.Publish.Token)
	if c.Publish.Token == "" {
		if value, ok := os.LookupEnv("NEWSROOM_SINK_TOKEN"); ok {
			c.Publish.Token = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeDaemon() {
	c.Daemon.APIBind = strings.TrimSpace(c.Daemon.APIBind)
	if c.Daemon.APIBind == "" {
		c.Daemon.APIBind = defaultAPIBind
	}
	c.Daemon.APIToken = strings.TrimSpace(c.Daemon.APIToken)
	if c.Daemon.APIToken == "" {
		if value, ok := os.LookupEnv("NEWSROOM_API_TOKEN"); ok {
			c.Daemon.APIToken = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
