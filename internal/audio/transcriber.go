package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"newsroom/internal/config"
	"newsroom/internal/logging"
	"newsroom/internal/services/whisperx"
)

// CommandRunner executes an external command.
type CommandRunner func(ctx context.Context, name string, args ...string) error

// Transcriber downloads audio and runs WhisperX. It satisfies
// transcripts.AudioTranscriber.
type Transcriber struct {
	ytdlp     string
	watchBase string
	audioDir  string
	language  string
	timeout   time.Duration
	whisper   *whisperx.Service
	runner    CommandRunner
	logger    *slog.Logger
}

// Option customizes the transcriber.
type Option func(*Transcriber)

// WithCommandRunner replaces process execution for yt-dlp, ffmpeg and uvx.
func WithCommandRunner(runner CommandRunner) Option {
	return func(t *Transcriber) {
		t.runner = runner
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Transcriber) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// New builds a transcriber from configuration.
func New(cfg *config.Config, opts ...Option) *Transcriber {
	t := &Transcriber{
		ytdlp:     cfg.YTDLPBinary(),
		watchBase: strings.TrimRight(cfg.YouTube.WatchBaseURL, "/"),
		audioDir:  cfg.Paths.AudioDir,
		language:  cfg.YouTube.Language,
		timeout:   time.Duration(cfg.WhisperX.TimeoutSeconds) * time.Second,
		whisper: whisperx.NewService(whisperx.Config{
			Model:       cfg.WhisperX.Model,
			CUDAEnabled: cfg.WhisperX.CUDAEnabled,
			VADMethod:   cfg.WhisperX.VADMethod,
			HFToken:     cfg.WhisperX.HFToken,
		}, cfg.FFmpegBinary()),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.runner != nil {
		t.whisper.WithCommandRunner(whisperx.CommandRunner(t.runner))
	}
	t.logger = logging.NewComponentLogger(t.logger, "audio")
	return t
}

// Model reports the WhisperX model in use.
func (t *Transcriber) Model() string { return t.whisper.Model() }

// TranscribeVideo downloads the audio of videoID and returns its transcript
// and language. Downloaded files are removed afterwards.
func (t *Transcriber) TranscribeVideo(ctx context.Context, videoID string) (string, string, error) {
	if strings.TrimSpace(videoID) == "" {
		return "", "", errors.New("video id is required")
	}
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	if err := os.MkdirAll(t.audioDir, 0o755); err != nil {
		return "", "", fmt.Errorf("ensure audio dir: %w", err)
	}
	workDir, err := os.MkdirTemp(t.audioDir, videoID+"-")
	if err != nil {
		return "", "", fmt.Errorf("create work dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			t.logger.Warn("audio cleanup failed",
				logging.String("path", workDir),
				logging.Error(err),
			)
		}
	}()

	start := time.Now()
	source, err := t.download(ctx, videoID, workDir)
	if err != nil {
		return "", "", err
	}
	t.logger.Debug("audio downloaded",
		logging.String("video_id", videoID),
		logging.String("path", source),
		logging.Duration("elapsed", time.Since(start)),
	)

	result, err := t.whisper.Transcribe(ctx, source, workDir, t.language)
	if err != nil {
		return "", "", err
	}
	t.logger.Info("audio transcribed",
		logging.String("video_id", videoID),
		logging.String("model", t.whisper.Model()),
		logging.String("language", result.Language),
		logging.Int("chars", len(result.Text)),
		logging.Duration("elapsed", time.Since(start)),
	)
	return result.Text, result.Language, nil
}

func (t *Transcriber) download(ctx context.Context, videoID, workDir string) (string, error) {
	args := []string{
		"--no-playlist",
		"--no-progress",
		"--no-warnings",
		"-f", "bestaudio/best",
		"-o", filepath.Join(workDir, videoID+".%(ext)s"),
		t.watchBase + "/watch?v=" + videoID,
	}
	if err := t.run(ctx, t.ytdlp, args...); err != nil {
		return "", fmt.Errorf("yt-dlp: %w", err)
	}
	matches, err := filepath.Glob(filepath.Join(workDir, videoID+".*"))
	if err != nil {
		return "", fmt.Errorf("locate download: %w", err)
	}
	for _, match := range matches {
		if !strings.HasSuffix(match, ".part") {
			return match, nil
		}
	}
	return "", errors.New("yt-dlp finished without producing an audio file")
}

func (t *Transcriber) run(ctx context.Context, name string, args ...string) error {
	if t.runner != nil {
		return t.runner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}
