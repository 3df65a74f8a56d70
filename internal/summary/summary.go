// Package summary condenses stored articles into bullet-point summaries.
package summary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"newsroom/internal/articles"
	"newsroom/internal/contextstore"
	"newsroom/internal/logging"
	"newsroom/internal/metrics"
	"newsroom/internal/services"
	"newsroom/internal/stage"
	"newsroom/internal/store"
	"newsroom/internal/textutil"
)

// StageName labels summary batches in reports and metrics.
const StageName = "summaries"

// DefaultMaxChars caps stored bullet points.
const DefaultMaxChars = 850

// TextGenerator produces free-form text from a prompt pair.
type TextGenerator interface {
	CompleteText(ctx context.Context, system, user string) (string, error)
}

// Truncate cuts s to at most limit runes at a sentence, clause or word
// boundary.
func Truncate(s string, limit int) string {
	return textutil.Truncate(s, limit)
}

// Generator writes and stores summaries.
type Generator struct {
	store       *store.Store
	text        TextGenerator
	loader      *contextstore.Loader
	logger      *slog.Logger
	metrics     *metrics.Metrics
	maxChars    int
	itemTimeout time.Duration
}

// Option customizes a Generator.
type Option func(*Generator)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logging.NewComponentLogger(logger, "summary")
		}
	}
}

// WithMetrics records batch outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Generator) { g.metrics = m }
}

// WithMaxChars overrides the summary length cap.
func WithMaxChars(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.maxChars = n
		}
	}
}

// WithItemTimeout bounds each summary in a batch.
func WithItemTimeout(timeout time.Duration) Option {
	return func(g *Generator) { g.itemTimeout = timeout }
}

// New builds a Generator.
func New(st *store.Store, text TextGenerator, loader *contextstore.Loader, opts ...Option) *Generator {
	g := &Generator{
		store:    st,
		text:     text,
		loader:   loader,
		logger:   logging.NewNop(),
		maxChars: DefaultMaxChars,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Summarize returns the article's bullet points, generating and storing
// them when the article has none. Existing bullet points are never replaced.
func (g *Generator) Summarize(ctx context.Context, article *store.Article) (string, error) {
	if article == nil {
		return "", services.Wrap(services.ErrValidation, StageName, "summarize", "article required", nil)
	}
	if article.HasSummary() {
		return article.BulletPoints, nil
	}
	bullets, err := g.generate(ctx, article)
	if err != nil {
		return "", err
	}
	stored, err := g.store.SetBulletPoints(ctx, article.ID, bullets)
	if err != nil {
		return "", stage.Systemic(err)
	}
	if !stored {
		current, err := g.store.GetArticle(ctx, article.ID)
		if err != nil {
			return "", stage.Systemic(err)
		}
		if current == nil {
			return "", services.Wrap(services.ErrNotFound, StageName, "summarize",
				fmt.Sprintf("article %d", article.ID), nil)
		}
		article.BulletPoints = current.BulletPoints
		return current.BulletPoints, nil
	}
	article.BulletPoints = bullets
	return bullets, nil
}

func (g *Generator) generate(ctx context.Context, article *store.Article) (string, error) {
	directive, err := g.loader.Load(contextstore.KindDirective, contextstore.DirectiveSummary)
	if err != nil {
		return "", err
	}
	text, err := articles.PlainText(article.Content)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, StageName, "summarize", "article html", err)
	}
	if text == "" {
		return "", services.Wrap(services.ErrValidation, StageName, "summarize", "article has no text", nil)
	}
	raw, err := g.text.CompleteText(ctx, directive, text)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return "", err
		}
		return "", services.Wrap(services.ErrGeneration, StageName, "summarize", "text model request failed", err)
	}
	bullets := Truncate(strings.TrimSpace(raw), g.maxChars)
	if bullets == "" {
		return "", services.Wrap(services.ErrGeneration, StageName, "summarize", "model returned an empty summary", nil)
	}
	return bullets, nil
}

// SummarizeBatch summarizes up to n articles that have no bullet points,
// oldest first.
func (g *Generator) SummarizeBatch(ctx context.Context, n int) (stage.Report, error) {
	batch := stage.Runner{
		Stage:       StageName,
		Logger:      g.logger,
		Metrics:     g.metrics,
		ItemTimeout: g.itemTimeout,
	}.Begin()
	if n <= 0 {
		return batch.Finish(ctx), nil
	}
	pending, err := g.store.ArticlesNeedingSummary(ctx, n)
	if err != nil {
		return batch.Report(), fmt.Errorf("summarize: %w", err)
	}
	for _, article := range pending {
		err := batch.Run(ctx, strconv.FormatInt(article.ID, 10), func(itemCtx context.Context) error {
			_, err := g.Summarize(itemCtx, article)
			return err
		})
		if err != nil {
			return batch.Report(), fmt.Errorf("summarize: %w", err)
		}
	}
	return batch.Finish(ctx), nil
}
