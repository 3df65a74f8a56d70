package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"newsroom/internal/articles"
	"newsroom/internal/config"
	"newsroom/internal/contextstore"
	"newsroom/internal/creators"
	"newsroom/internal/discovery"
	"newsroom/internal/images"
	"newsroom/internal/logging"
	"newsroom/internal/metrics"
	"newsroom/internal/notifications"
	"newsroom/internal/publish"
	"newsroom/internal/services"
	"newsroom/internal/stage"
	"newsroom/internal/store"
	"newsroom/internal/summary"
	"newsroom/internal/transcripts"
)

// Dependencies are the external capabilities an Orchestrator drives. Audio
// and Sink are optional.
type Dependencies struct {
	Channel  ChannelLister
	Captions CaptionSource
	Audio    AudioTranscriber
	Text     TextGenerator
	Images   ImageGenerator
	Sink     Sink

	Loader   *contextstore.Loader
	Registry *creators.Registry
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Notifier notifications.Service
}

// Orchestrator runs pipeline stages against one store.
type Orchestrator struct {
	cfg      *config.Config
	store    *store.Store
	registry *creators.Registry
	logger   *slog.Logger
	metrics  *metrics.Metrics
	notifier notifications.Service
	lock     runLock

	discovery   *discovery.Service
	transcripts *transcripts.Cache
	articles    *articles.Generator
	summaries   *summary.Generator
	images      *images.Generator
	publisher   *publish.Publisher
}

// New builds an Orchestrator from explicit dependencies.
func New(cfg *config.Config, st *store.Store, deps Dependencies) *Orchestrator {
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	registry := deps.Registry
	if registry == nil {
		registry = creators.Default()
	}
	loader := deps.Loader
	if loader == nil {
		loader = contextstore.New(cfg.Paths.ContextDir)
	}
	notifier := deps.Notifier
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}
	itemTimeout := time.Duration(cfg.Pipeline.ItemTimeoutSeconds) * time.Second

	o := &Orchestrator{
		cfg:      cfg,
		store:    st,
		registry: registry,
		logger:   logging.NewComponentLogger(logger, "pipeline"),
		metrics:  deps.Metrics,
		notifier: notifier,
		lock:     runLock{path: cfg.PipelineLockPath()},

		discovery: discovery.New(st, deps.Channel, logger, deps.Metrics),
		transcripts: transcripts.New(st, deps.Captions, deps.Audio,
			transcripts.WithLogger(logger),
			transcripts.WithMetrics(deps.Metrics),
			transcripts.WithInterval(time.Duration(cfg.YouTube.FetchIntervalMillis)*time.Millisecond),
			transcripts.WithItemTimeout(itemTimeout),
		),
		articles: articles.New(st, deps.Text, loader, registry,
			articles.WithLogger(logger),
			articles.WithMetrics(deps.Metrics),
			articles.WithItemTimeout(itemTimeout),
		),
		summaries: summary.New(st, deps.Text, loader,
			summary.WithLogger(logger),
			summary.WithMetrics(deps.Metrics),
			summary.WithMaxChars(cfg.Pipeline.SummaryMaxChars),
			summary.WithItemTimeout(itemTimeout),
		),
		images: images.New(st, deps.Text, deps.Images, loader,
			images.WithLogger(logger),
			images.WithMetrics(deps.Metrics),
			images.WithSnippetChars(cfg.Pipeline.SnippetMaxChars),
			images.WithItemTimeout(itemTimeout),
		),
	}
	if deps.Sink != nil {
		o.publisher = publish.NewPublisher(st, deps.Sink, logger, deps.Metrics, itemTimeout)
	}
	return o
}

// Store returns the store the orchestrator works on.
func (o *Orchestrator) Store() *store.Store { return o.store }

// Articles returns the article generator for ad-hoc creation and edits.
func (o *Orchestrator) Articles() *articles.Generator { return o.articles }

// Registry returns the creator registry.
func (o *Orchestrator) Registry() *creators.Registry { return o.registry }

// CanPublish reports whether a sink is configured.
func (o *Orchestrator) CanPublish() bool { return o.publisher != nil }

// Discover lists the configured channel and queues up to limit new videos.
func (o *Orchestrator) Discover(ctx context.Context, limit int) (int, error) {
	return o.discovery.Discover(ctx, o.cfg.YouTube.ChannelID, limit)
}

// FetchTranscripts fetches up to n queued transcripts. With auto_build set,
// discovery runs first when fewer than n ids are queued.
func (o *Orchestrator) FetchTranscripts(ctx context.Context, n int) (stage.Report, error) {
	if o.cfg.Pipeline.AutoBuild {
		if err := o.autoBuild(ctx, n); err != nil {
			return stage.NewReport(transcripts.StageName), err
		}
	}
	return o.transcripts.FetchBatch(ctx, n)
}

func (o *Orchestrator) autoBuild(ctx context.Context, n int) error {
	size, err := o.store.QueueSize(ctx)
	if err != nil {
		return fmt.Errorf("auto build: %w", err)
	}
	if size >= n {
		return nil
	}
	added, err := o.Discover(ctx, n-size)
	if err != nil {
		if stage.IsSystemic(err) {
			return fmt.Errorf("auto build: %w", err)
		}
		logging.WarnWithContext(o.logger, "queue auto build failed", "auto_build_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "fetching from the existing queue only"),
		)
		return nil
	}
	o.logger.Info("queue auto built",
		logging.String(logging.FieldEventType, "auto_build"),
		logging.Int("queued_before", size),
		logging.Int("added", added),
	)
	return nil
}

// WriteArticles writes up to n articles. Empty options use the configured
// creator defaults.
func (o *Orchestrator) WriteArticles(ctx context.Context, n int, opts articles.WriteOptions) (stage.Report, error) {
	if strings.TrimSpace(opts.JournalistID) == "" {
		opts.JournalistID = o.cfg.Creators.Journalist
	}
	if strings.TrimSpace(opts.Tone) == "" {
		opts.Tone = o.cfg.Creators.Tone
	}
	if strings.TrimSpace(opts.ArticleType) == "" {
		opts.ArticleType = o.cfg.Creators.ArticleType
	}
	return o.articles.WriteBatch(ctx, n, opts)
}

// Summarize summarizes up to n articles.
func (o *Orchestrator) Summarize(ctx context.Context, n int) (stage.Report, error) {
	return o.summaries.SummarizeBatch(ctx, n)
}

// GenerateImages creates art for up to n articles. Empty overrides use the
// configured creator defaults.
func (o *Orchestrator) GenerateImages(ctx context.Context, n int, overrides images.Overrides) (stage.Report, error) {
	artist, err := o.registry.Artist(o.cfg.Creators.Artist)
	if err != nil {
		return stage.NewReport(images.StageName), err
	}
	if overrides.Medium == "" {
		overrides.Medium = o.cfg.Creators.Medium
	}
	if overrides.Aesthetic == "" {
		overrides.Aesthetic = o.cfg.Creators.Aesthetic
	}
	if overrides.Style == "" {
		overrides.Style = o.cfg.Creators.Style
	}
	return o.images.GenerateBatch(ctx, artist, n, overrides)
}

// Publish sends up to n finished articles to the configured sink.
func (o *Orchestrator) Publish(ctx context.Context, n int) (stage.Report, error) {
	if o.publisher == nil {
		return stage.NewReport(publish.StageName), services.Wrap(services.ErrConfiguration, "pipeline", "publish",
			"no sink configured (set publish.enabled and publish.url)", nil)
	}
	return o.publisher.PublishBatch(ctx, n)
}

// Stats returns the stage predicate counts.
func (o *Orchestrator) Stats(ctx context.Context) (store.Stats, error) {
	stats, err := o.store.Stats(ctx)
	if err == nil {
		o.metrics.SetQueueSize(stats.Queued)
	}
	return stats, err
}
