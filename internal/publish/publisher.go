package publish

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"newsroom/internal/logging"
	"newsroom/internal/metrics"
	"newsroom/internal/stage"
	"newsroom/internal/store"
)

// StageName labels publish batches in reports and metrics.
const StageName = "publish"

// Sink accepts a finished article and returns its published reference.
type Sink interface {
	Publish(ctx context.Context, title, html, imageURL string) (string, error)
}

// Publisher sends ready articles to a sink.
type Publisher struct {
	store       *store.Store
	sink        Sink
	logger      *slog.Logger
	metrics     *metrics.Metrics
	itemTimeout time.Duration
}

// NewPublisher builds a Publisher.
func NewPublisher(st *store.Store, sink Sink, logger *slog.Logger, m *metrics.Metrics, itemTimeout time.Duration) *Publisher {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Publisher{
		store:       st,
		sink:        sink,
		logger:      logging.NewComponentLogger(logger, "publish"),
		metrics:     m,
		itemTimeout: itemTimeout,
	}
}

// PublishBatch publishes up to n articles that have a summary and art.
func (p *Publisher) PublishBatch(ctx context.Context, n int) (stage.Report, error) {
	batch := stage.Runner{
		Stage:       StageName,
		Logger:      p.logger,
		Metrics:     p.metrics,
		ItemTimeout: p.itemTimeout,
	}.Begin()
	if n <= 0 {
		return batch.Finish(ctx), nil
	}
	ready, err := p.store.ArticlesReadyToPublish(ctx, n)
	if err != nil {
		return batch.Report(), fmt.Errorf("publish: %w", err)
	}
	for _, article := range ready {
		err := batch.Run(ctx, strconv.FormatInt(article.ID, 10), func(itemCtx context.Context) error {
			return p.publishOne(itemCtx, article)
		})
		if err != nil {
			return batch.Report(), fmt.Errorf("publish: %w", err)
		}
	}
	return batch.Finish(ctx), nil
}

func (p *Publisher) publishOne(ctx context.Context, article *store.Article) error {
	art, err := p.store.GetArtForArticle(ctx, article.ID)
	if err != nil {
		return stage.Systemic(err)
	}
	imageURL := ""
	if art != nil {
		imageURL = art.ImageURL
	}
	ref, err := p.sink.Publish(ctx, article.Title, article.Content, imageURL)
	if err != nil {
		return err
	}
	marked, err := p.store.MarkPublished(ctx, article.ID, ref)
	if err != nil {
		return stage.Systemic(err)
	}
	if !marked {
		return stage.Skip("already published")
	}
	logging.WithContext(ctx, p.logger).Info("article published",
		logging.String(logging.FieldEventType, "article_published"),
		logging.String("ref", ref),
	)
	return nil
}
