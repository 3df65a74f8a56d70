package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"newsroom/internal/config"
	"newsroom/internal/pipeline"
	"newsroom/internal/store"
	"newsroom/internal/testsupport"
)

const inlinePNG = "data:image/png;base64,iVBORw0KGgo="

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	channel    *testsupport.FakeChannel
	captions   *testsupport.FakeCaptions
	text       *testsupport.FakeText
	images     *testsupport.FakeImages
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	env := &cliTestEnv{
		cfg:        cfg,
		configPath: filepath.Join(testsupport.BaseDir(cfg), "config.toml"),
		channel:    &testsupport.FakeChannel{IDs: []string{"video1", "video2", "video3"}},
		captions: &testsupport.FakeCaptions{Text: map[string]string{
			"video1": "Transcript of meeting 1.",
			"video2": "Transcript of meeting 2.",
			"video3": "Transcript of meeting 3.",
		}},
		text:   &testsupport.FakeText{},
		images: &testsupport.FakeImages{URL: inlinePNG},
	}
	writeTestConfig(t, env.configPath, cfg)
	return env
}

func (e *cliTestEnv) orchestrator(cfg *config.Config, st *store.Store, logger *slog.Logger) *pipeline.Orchestrator {
	return pipeline.New(cfg, st, pipeline.Dependencies{
		Channel:  e.channel,
		Captions: e.captions,
		Text:     e.text,
		Images:   e.images,
		Logger:   logger,
	})
}

// run executes the CLI with the test config and returns stdout+stderr.
func (e *cliTestEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	ctx := newCommandContext()
	ctx.newOrchestrator = e.orchestrator
	cmd := newRootCommandWith(ctx)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(append([]string{"--config", e.configPath, "--log-level", "error"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func (e *cliTestEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, args...)
	if err != nil {
		t.Fatalf("newsroom %s failed: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

func (e *cliTestEnv) openStore(t *testing.T) *store.Store {
	t.Helper()
	return testsupport.MustOpenStore(t, e.cfg)
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}
