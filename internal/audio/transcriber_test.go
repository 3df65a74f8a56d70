package audio_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"newsroom/internal/audio"
	"newsroom/internal/testsupport"
)

func flagValue(args []string, flag string) string {
	idx := slices.Index(args, flag)
	if idx < 0 || idx+1 >= len(args) {
		return ""
	}
	return args[idx+1]
}

func TestTranscribeVideoDownloadsAndCleansUp(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	var commands []string
	runner := func(_ context.Context, name string, args ...string) error {
		commands = append(commands, name)
		switch name {
		case cfg.YTDLPBinary():
			if !strings.HasSuffix(args[len(args)-1], "/watch?v=vid123") {
				t.Errorf("unexpected url %q", args[len(args)-1])
			}
			out := strings.Replace(flagValue(args, "-o"), "%(ext)s", "webm", 1)
			return os.WriteFile(out, []byte("audio"), 0o644)
		case cfg.FFmpegBinary():
			return os.WriteFile(args[len(args)-1], []byte("wav"), 0o644)
		case "uvx":
			out := filepath.Join(flagValue(args, "--output_dir"), "vid123.json")
			return os.WriteFile(out, []byte(`{"language":"en","segments":[{"text":"Spoken words."}]}`), 0o644)
		}
		return errors.New("unexpected command " + name)
	}

	transcriber := audio.New(cfg, audio.WithCommandRunner(runner))
	text, lang, err := transcriber.TranscribeVideo(context.Background(), "vid123")
	if err != nil {
		t.Fatalf("TranscribeVideo failed: %v", err)
	}
	if text != "Spoken words." || lang != "en" {
		t.Fatalf("unexpected result %q/%q", text, lang)
	}
	if len(commands) != 3 {
		t.Fatalf("expected yt-dlp, ffmpeg, uvx; got %v", commands)
	}
	entries, err := os.ReadDir(cfg.Paths.AudioDir)
	if err != nil {
		t.Fatalf("read audio dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected work dir removed, found %d entries", len(entries))
	}
}

func TestTranscribeVideoDownloadFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	runner := func(_ context.Context, name string, args ...string) error {
		if name == cfg.YTDLPBinary() {
			return errors.New("video unavailable")
		}
		t.Errorf("unexpected command %s after failed download", name)
		return nil
	}
	_, _, err := audio.New(cfg, audio.WithCommandRunner(runner)).TranscribeVideo(context.Background(), "gone")
	if err == nil || !strings.Contains(err.Error(), "video unavailable") {
		t.Fatalf("expected download error, got %v", err)
	}
}
