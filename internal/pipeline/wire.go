package pipeline

import (
	"log/slog"

	"newsroom/internal/audio"
	"newsroom/internal/config"
	"newsroom/internal/metrics"
	"newsroom/internal/publish"
	"newsroom/internal/services/imagegen"
	"newsroom/internal/services/llm"
	"newsroom/internal/store"
	"newsroom/internal/youtube"
)

// NewFromConfig builds an Orchestrator backed by the real adapters: the
// YouTube client, the WhisperX fallback when enabled, the chat and image
// model clients, and the webhook sink when publishing is enabled.
func NewFromConfig(cfg *config.Config, st *store.Store, logger *slog.Logger, m *metrics.Metrics) *Orchestrator {
	yt := youtube.New(cfg.YouTube, youtube.WithLogger(logger))
	deps := Dependencies{
		Channel:  yt,
		Captions: yt,
		Text:     llm.NewClient(llm.Config(cfg.GetLLM()), llm.WithMetrics(m)),
		Images:   imagegen.NewClient(cfg.Images, imagegen.WithMetrics(m)),
		Logger:   logger,
		Metrics:  m,
	}
	if cfg.WhisperX.Enabled {
		deps.Audio = audio.New(cfg, audio.WithLogger(logger))
	}
	if cfg.Publish.Enabled {
		deps.Sink = publish.NewWebhookSink(cfg.Publish, nil)
	}
	return New(cfg, st, deps)
}
