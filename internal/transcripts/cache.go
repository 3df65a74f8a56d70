package transcripts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"newsroom/internal/logging"
	"newsroom/internal/metrics"
	"newsroom/internal/services"
	"newsroom/internal/stage"
	"newsroom/internal/store"
)

// StageName labels transcript batches in reports and metrics.
const StageName = "transcripts"

// Source label used for cache hits.
const sourceCache = "cache"

// CaptionSource returns the published captions of a video.
type CaptionSource interface {
	FetchCaptions(ctx context.Context, videoID string) (text, language string, err error)
}

// AudioTranscriber produces a transcript from the video's audio track.
type AudioTranscriber interface {
	TranscribeVideo(ctx context.Context, videoID string) (text, language string, err error)
}

// Cache is the transcript read-through cache.
type Cache struct {
	store       *store.Store
	captions    CaptionSource
	audio       AudioTranscriber
	limiter     *rate.Limiter
	logger      *slog.Logger
	metrics     *metrics.Metrics
	itemTimeout time.Duration
	now         func() time.Time
}

// Option customizes a Cache.
type Option func(*Cache)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logging.NewComponentLogger(logger, "transcripts")
		}
	}
}

// WithMetrics records fetch outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Cache) { c.metrics = m }
}

// WithInterval sets the minimum delay between external fetches in a batch.
// Zero disables the limit.
func WithInterval(interval time.Duration) Option {
	return func(c *Cache) {
		if interval <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(interval), 1)
	}
}

// WithItemTimeout bounds each fetch in a batch.
func WithItemTimeout(timeout time.Duration) Option {
	return func(c *Cache) { c.itemTimeout = timeout }
}

// New builds a cache. audio may be nil when the fallback is disabled.
func New(st *store.Store, captions CaptionSource, audio AudioTranscriber, opts ...Option) *Cache {
	c := &Cache{
		store:    st,
		captions: captions,
		audio:    audio,
		limiter:  rate.NewLimiter(rate.Every(time.Second), 1),
		logger:   logging.NewNop(),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetOrFetch returns the cached transcript for videoID, fetching and storing
// it on a miss.
func (c *Cache) GetOrFetch(ctx context.Context, videoID string) (*store.Transcript, error) {
	return c.getOrFetch(ctx, videoID, nil)
}

// getOrFetch runs beforeFetch only when an external fetch is about to happen.
func (c *Cache) getOrFetch(ctx context.Context, videoID string, beforeFetch func(context.Context) error) (*store.Transcript, error) {
	videoID = strings.TrimSpace(videoID)
	if videoID == "" {
		return nil, services.Wrap(services.ErrValidation, StageName, "get", "video id required", nil)
	}
	cached, err := c.store.GetTranscript(ctx, videoID)
	if err != nil {
		return nil, stage.Systemic(err)
	}
	logger := logging.WithContext(services.WithItem(ctx, videoID), c.logger)
	if cached != nil {
		c.metrics.RecordTranscriptFetch(sourceCache, metrics.ResultHit)
		logger.Debug("transcript cache hit",
			logging.String(logging.FieldEventType, "transcript_source"),
			logging.String("source", sourceCache),
		)
		return cached, nil
	}

	if beforeFetch != nil {
		if err := beforeFetch(ctx); err != nil {
			return nil, err
		}
	}
	transcript, err := c.fetch(ctx, logger, videoID)
	if err != nil {
		return nil, err
	}
	inserted, err := c.store.SaveTranscript(ctx, transcript)
	if err != nil {
		return nil, stage.Systemic(err)
	}
	if !inserted {
		// Another runner stored it first; the stored copy wins.
		existing, err := c.store.GetTranscript(ctx, videoID)
		if err != nil {
			return nil, stage.Systemic(err)
		}
		if existing != nil {
			return existing, nil
		}
	}
	return transcript, nil
}

func (c *Cache) fetch(ctx context.Context, logger *slog.Logger, videoID string) (*store.Transcript, error) {
	text, lang, primaryErr := c.attempt(ctx, logger, store.SourcePrimary, func() (string, string, error) {
		return c.captions.FetchCaptions(ctx, videoID)
	})
	if primaryErr == nil {
		return c.transcript(videoID, text, lang, store.SourcePrimary), nil
	}
	if c.audio == nil {
		return nil, services.Wrap(services.ErrTranscriptUnavailable, StageName, "fetch",
			"captions failed and audio fallback is disabled", primaryErr)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("fetch transcript %s: %w", videoID, err)
	}

	text, lang, fallbackErr := c.attempt(ctx, logger, store.SourceFallback, func() (string, string, error) {
		return c.audio.TranscribeVideo(ctx, videoID)
	})
	if fallbackErr == nil {
		return c.transcript(videoID, text, lang, store.SourceFallback), nil
	}
	return nil, services.Wrap(services.ErrTranscriptUnavailable, StageName, "fetch",
		"captions and audio fallback both failed", errors.Join(primaryErr, fallbackErr))
}

func (c *Cache) attempt(ctx context.Context, logger *slog.Logger, source string, call func() (string, string, error)) (string, string, error) {
	started := time.Now()
	text, lang, err := call()
	if err == nil && strings.TrimSpace(text) == "" {
		err = errors.New("empty transcript")
	}
	if err != nil {
		c.metrics.RecordTranscriptFetch(source, metrics.ResultFailure)
		logger.Info("transcript source failed",
			logging.String(logging.FieldEventType, "transcript_source"),
			logging.String("source", source),
			logging.String("result", metrics.ResultFailure),
			logging.Duration("elapsed", time.Since(started)),
			logging.Error(err),
		)
		return "", "", err
	}
	c.metrics.RecordTranscriptFetch(source, metrics.ResultSuccess)
	logger.Info("transcript fetched",
		logging.String(logging.FieldEventType, "transcript_source"),
		logging.String("source", source),
		logging.String("result", metrics.ResultSuccess),
		logging.String("language", lang),
		logging.Int("chars", len(text)),
		logging.Duration("elapsed", time.Since(started)),
	)
	return strings.TrimSpace(text), lang, nil
}

// wait spaces external fetches within a batch. Cache hits never wait.
func (c *Cache) wait(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	return nil
}

func (c *Cache) transcript(videoID, text, lang, source string) *store.Transcript {
	return &store.Transcript{
		VideoID:   videoID,
		Content:   text,
		Source:    source,
		Language:  lang,
		FetchedAt: c.now(),
	}
}

// FetchBatch dequeues up to n ids and fetches each one serially, spacing the
// external fetches with the rate limiter. Dequeued ids that fail are not
// returned to the queue.
func (c *Cache) FetchBatch(ctx context.Context, n int) (stage.Report, error) {
	batch := stage.Runner{
		Stage:       StageName,
		Logger:      c.logger,
		Metrics:     c.metrics,
		ItemTimeout: c.itemTimeout,
	}.Begin()
	if n <= 0 {
		return batch.Finish(ctx), nil
	}
	refs, err := c.store.DequeueBatch(ctx, n)
	if err != nil {
		return batch.Report(), fmt.Errorf("fetch transcripts: %w", err)
	}
	for _, ref := range refs {
		err := batch.Run(ctx, ref.VideoID, func(itemCtx context.Context) error {
			_, err := c.getOrFetch(itemCtx, ref.VideoID, c.wait)
			return err
		})
		if err != nil {
			return batch.Report(), fmt.Errorf("fetch transcripts: %w", err)
		}
	}
	return batch.Finish(ctx), nil
}
