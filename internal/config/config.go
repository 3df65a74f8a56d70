package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains the directories newsroom reads from and writes to.
type Paths struct {
	DataDir    string `toml:"data_dir"`
	LogDir     string `toml:"log_dir"`
	ContextDir string `toml:"context_dir"`
	AudioDir   string `toml:"audio_dir"`
}

// YouTube contains channel discovery and caption retrieval settings.
type YouTube struct {
	APIKey                string `toml:"api_key"`
	ChannelID             string `toml:"channel_id"`
	DataAPIBaseURL        string `toml:"data_api_base_url"`
	WatchBaseURL          string `toml:"watch_base_url"`
	Language              string `toml:"language"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
	FetchIntervalMillis   int    `toml:"fetch_interval_ms"`
	MaxListPages          int    `toml:"max_list_pages"`
}

// LLM contains the text model connection used for articles and summaries.
type LLM struct {
	APIKey            string  `toml:"api_key"`
	BaseURL           string  `toml:"base_url"`
	Model             string  `toml:"model"`
	Referer           string  `toml:"referer"`
	Title             string  `toml:"title"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
	Temperature       float64 `toml:"temperature"`
	RequestsPerMinute int     `toml:"requests_per_minute"`
}

// Images contains the image model connection used for featured art.
type Images struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	Size           string `toml:"size"`
	Quality        string `toml:"quality"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// WhisperX contains the fallback audio transcription settings.
type WhisperX struct {
	Enabled        bool   `toml:"enabled"`
	Model          string `toml:"model"`
	CUDAEnabled    bool   `toml:"cuda_enabled"`
	VADMethod      string `toml:"vad_method"`
	HFToken        string `toml:"hf_token"`
	YTDLPBinary    string `toml:"ytdlp_binary"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Pipeline contains batch sizes and per-item limits for stage runs.
type Pipeline struct {
	BatchSize          int  `toml:"batch_size"`
	ItemTimeoutSeconds int  `toml:"item_timeout_seconds"`
	AutoBuild          bool `toml:"auto_build"`
	SummaryMaxChars    int  `toml:"summary_max_chars"`
	SnippetMaxChars    int  `toml:"snippet_max_chars"`
}

// Creators selects the creator identities and their per-run defaults.
type Creators struct {
	Journalist  string `toml:"journalist"`
	Artist      string `toml:"artist"`
	Tone        string `toml:"tone"`
	ArticleType string `toml:"article_type"`
	Medium      string `toml:"medium"`
	Aesthetic   string `toml:"aesthetic"`
	Style       string `toml:"style"`
}

// Publish contains the optional webhook sink for finished articles.
type Publish struct {
	Enabled        bool   `toml:"enabled"`
	URL            string `toml:"url"`
	Token          string `toml:"token"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	RunComplete    bool   `toml:"run_complete"`
	Errors         bool   `toml:"errors"`
}

// Daemon contains the HTTP API and scheduler settings for newsroomd.
type Daemon struct {
	APIBind            string `toml:"api_bind"`
	APIToken           string `toml:"api_token"`
	RunIntervalMinutes int    `toml:"run_interval_minutes"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format         string            `toml:"format"`
	Level          string            `toml:"level"`
	RetentionDays  int               `toml:"retention_days"`
	StageOverrides map[string]string `toml:"stage_overrides"`
}

// Config encapsulates all configuration values for newsroom.
//
// Configuration sections by subsystem:
//   - Paths: database, log, template and audio directories
//   - YouTube: channel listing and caption retrieval
//   - LLM: text generation for articles, summaries and image snippets
//   - Images: featured image generation
//   - WhisperX: fallback transcription from downloaded audio
//   - Pipeline: batch sizes, per-item timeout, text caps
//   - Creators: journalist/artist selection and defaults
//   - Publish: optional webhook sink
//   - Notifications: ntfy push notification settings
//   - Daemon: API bind address, token and run schedule
//   - Logging: log format, level, and retention
type Config struct {
	Paths         Paths         `toml:"paths"`
	YouTube       YouTube       `toml:"youtube"`
	LLM           LLM           `toml:"llm"`
	Images        Images        `toml:"images"`
	WhisperX      WhisperX      `toml:"whisperx"`
	Pipeline      Pipeline      `toml:"pipeline"`
	Creators      Creators      `toml:"creators"`
	Publish       Publish       `toml:"publish"`
	Notifications Notifications `toml:"notifications"`
	Daemon        Daemon        `toml:"daemon"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/newsroom/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized. A .env file in the working directory is
// applied first without overriding variables that are already set.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	if err := loadDotEnv(".env"); err != nil {
		return nil, "", false, err
	}

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func loadDotEnv(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("newsroom.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the data, log and audio directories. The context
// directory is optional and only read when present.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir, c.Paths.AudioDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the SQLite database location.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "newsroom.db")
}

// PipelineLockPath returns the file used to serialize pipeline runs across processes.
func (c *Config) PipelineLockPath() string {
	return filepath.Join(c.Paths.DataDir, "pipeline.lock")
}

// DaemonLockPath returns the single-instance lock for newsroomd.
func (c *Config) DaemonLockPath() string {
	return filepath.Join(c.Paths.DataDir, "newsroomd.lock")
}

// YTDLPBinary returns the yt-dlp executable name.
func (c *Config) YTDLPBinary() string {
	if strings.TrimSpace(c.WhisperX.YTDLPBinary) != "" {
		return c.WhisperX.YTDLPBinary
	}
	return defaultYTDLPBinary
}

// FFmpegBinary returns the ffmpeg executable used to prepare audio for WhisperX.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// LLMConfig contains the text model settings in the shape the client expects.
type LLMConfig struct {
	APIKey            string
	BaseURL           string
	Model             string
	Referer           string
	Title             string
	TimeoutSeconds    int
	Temperature       float64
	RequestsPerMinute int
}

// GetLLM returns the shared LLM connection settings.
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		APIKey:            strings.TrimSpace(c.LLM.APIKey),
		BaseURL:           strings.TrimSpace(c.LLM.BaseURL),
		Model:             strings.TrimSpace(c.LLM.Model),
		Referer:           strings.TrimSpace(c.LLM.Referer),
		Title:             strings.TrimSpace(c.LLM.Title),
		TimeoutSeconds:    c.LLM.TimeoutSeconds,
		Temperature:       c.LLM.Temperature,
		RequestsPerMinute: c.LLM.RequestsPerMinute,
	}
}
