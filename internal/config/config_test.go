package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"newsroom/internal/config"
)

func clearCredentialEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"YOUTUBE_API_KEY", "YOUTUBE_CHANNEL_ID", "OPENROUTER_API_KEY", "XAI_API_KEY",
		"OPENAI_API_KEY", "HF_TOKEN", "NEWSROOM_API_TOKEN", "NEWSROOM_SINK_TOKEN",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	clearCredentialEnv(t)
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "newsroom")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.DatabasePath() != filepath.Join(wantData, "newsroom.db") {
		t.Fatalf("unexpected database path: %q", cfg.DatabasePath())
	}
	if cfg.PipelineLockPath() != filepath.Join(wantData, "pipeline.lock") {
		t.Fatalf("unexpected lock path: %q", cfg.PipelineLockPath())
	}
	if cfg.Pipeline.SummaryMaxChars != 850 {
		t.Fatalf("expected summary cap 850, got %d", cfg.Pipeline.SummaryMaxChars)
	}
	if cfg.Pipeline.SnippetMaxChars != 250 {
		t.Fatalf("expected snippet cap 250, got %d", cfg.Pipeline.SnippetMaxChars)
	}
	if cfg.YouTube.FetchIntervalMillis != 1000 {
		t.Fatalf("expected 1000ms fetch interval, got %d", cfg.YouTube.FetchIntervalMillis)
	}
	if cfg.Images.Model != "gpt-image-1-mini" {
		t.Fatalf("unexpected image model %q", cfg.Images.Model)
	}
	if cfg.Creators.Journalist != "aurelius-stone" || cfg.Creators.Artist != "spectra-veritas" {
		t.Fatalf("unexpected creators: %+v", cfg.Creators)
	}
	if cfg.Daemon.APIBind != "127.0.0.1:7510" {
		t.Fatalf("unexpected api bind: %q", cfg.Daemon.APIBind)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.LogDir, cfg.Paths.AudioDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
	}
}

func TestLoadCustomConfigOverrides(t *testing.T) {
	clearCredentialEnv(t)
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	configPath := filepath.Join(t.TempDir(), "newsroom.toml")
	content := `
[paths]
data_dir = "~/data"

[youtube]
api_key = "yt-key"
channel_id = "UC123"

[pipeline]
batch_size = 12
auto_build = false

[creators]
tone = "Satirical"

[logging]
format = "JSON"
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected explicit path to resolve, got %q exists=%v", resolved, exists)
	}
	if cfg.Paths.DataDir != filepath.Join(tempHome, "data") {
		t.Fatalf("unexpected data dir %q", cfg.Paths.DataDir)
	}
	if cfg.YouTube.APIKey != "yt-key" || cfg.YouTube.ChannelID != "UC123" {
		t.Fatalf("unexpected youtube section %+v", cfg.YouTube)
	}
	if cfg.Pipeline.BatchSize != 12 || cfg.Pipeline.AutoBuild {
		t.Fatalf("unexpected pipeline section %+v", cfg.Pipeline)
	}
	if cfg.Creators.Tone != "satirical" {
		t.Fatalf("expected tone lower-cased, got %q", cfg.Creators.Tone)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected json format, got %q", cfg.Logging.Format)
	}
}

func TestLoadEnvFallbacks(t *testing.T) {
	clearCredentialEnv(t)
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	t.Setenv("YOUTUBE_API_KEY", "env-yt")
	t.Setenv("YOUTUBE_CHANNEL_ID", "UCenv")
	t.Setenv("XAI_API_KEY", "env-xai")
	t.Setenv("OPENAI_API_KEY", "env-openai")
	t.Setenv("NEWSROOM_API_TOKEN", "env-token")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.YouTube.APIKey != "env-yt" || cfg.YouTube.ChannelID != "UCenv" {
		t.Fatalf("unexpected youtube env fallback %+v", cfg.YouTube)
	}
	llm := cfg.GetLLM()
	if llm.APIKey != "env-xai" {
		t.Fatalf("expected xai key, got %q", llm.APIKey)
	}
	if !strings.Contains(llm.BaseURL, "api.x.ai") {
		t.Fatalf("expected xai endpoint when only XAI_API_KEY is set, got %q", llm.BaseURL)
	}
	if cfg.Images.APIKey != "env-openai" {
		t.Fatalf("unexpected images key %q", cfg.Images.APIKey)
	}
	if cfg.Daemon.APIToken != "env-token" {
		t.Fatalf("unexpected api token %q", cfg.Daemon.APIToken)
	}
}

func TestLoadReadsDotEnvWithoutOverriding(t *testing.T) {
	clearCredentialEnv(t)
	t.Setenv("HOME", t.TempDir())
	workdir := t.TempDir()
	t.Chdir(workdir)
	t.Setenv("OPENAI_API_KEY", "from-shell")

	dotenv := "YOUTUBE_API_KEY=from-dotenv\nOPENAI_API_KEY=from-dotenv\n"
	if err := os.WriteFile(filepath.Join(workdir, ".env"), []byte(dotenv), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("YOUTUBE_API_KEY") })

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.YouTube.APIKey != "from-dotenv" {
		t.Fatalf("expected .env value, got %q", cfg.YouTube.APIKey)
	}
	if cfg.Images.APIKey != "from-shell" {
		t.Fatalf("expected shell value to win, got %q", cfg.Images.APIKey)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"batch size", func(c *config.Config) { c.Pipeline.BatchSize = 0 }, "pipeline.batch_size"},
		{"item timeout", func(c *config.Config) { c.Pipeline.ItemTimeoutSeconds = -1 }, "pipeline.item_timeout_seconds"},
		{"publish url", func(c *config.Config) { c.Publish.Enabled = true }, "publish.url"},
		{"vad", func(c *config.Config) { c.WhisperX.VADMethod = "pyannote" }, "hf_token"},
		{"quality", func(c *config.Config) { c.Images.Quality = "ultra" }, "images.quality"},
		{"interval", func(c *config.Config) { c.Daemon.RunIntervalMinutes = -5 }, "run_interval_minutes"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}

func TestCreateSampleProducesParsableConfig(t *testing.T) {
	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(target); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	var cfg config.Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("sample config does not parse: %v", err)
	}
	if cfg.Pipeline.SummaryMaxChars != 850 {
		t.Fatalf("sample summary cap = %d", cfg.Pipeline.SummaryMaxChars)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("sample config fails validation: %v", err)
	}
}
