package articles

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"newsroom/internal/creators"
	"newsroom/internal/services"
	"newsroom/internal/stage"
	"newsroom/internal/store"
)

// WriteOptions selects the journalist and overrides for a batch. Empty
// fields fall back to the journalist's defaults.
type WriteOptions struct {
	JournalistID string
	Tone         string
	ArticleType  string
}

type resolved struct {
	journalist  creators.Journalist
	tone        creators.Tone
	articleType creators.ArticleType
}

func (g *Generator) resolve(journalistID, tone, articleType string) (resolved, error) {
	if strings.TrimSpace(journalistID) == "" {
		journalistID = creators.AureliusStone
	}
	journalist, err := g.registry.Journalist(journalistID)
	if err != nil {
		return resolved{}, err
	}
	r := resolved{journalist: journalist, tone: journalist.DefaultTone, articleType: journalist.DefaultArticleType}
	if strings.TrimSpace(tone) != "" {
		if r.tone, err = creators.ParseTone(tone); err != nil {
			return resolved{}, err
		}
	}
	if strings.TrimSpace(articleType) != "" {
		if r.articleType, err = creators.ParseArticleType(articleType); err != nil {
			return resolved{}, err
		}
	}
	return r, nil
}

// WriteBatch writes articles for up to n transcripts that have none, oldest
// first. Each article is stored as soon as it is written.
func (g *Generator) WriteBatch(ctx context.Context, n int, opts WriteOptions) (stage.Report, error) {
	batch := stage.Runner{
		Stage:       StageName,
		Logger:      g.logger,
		Metrics:     g.metrics,
		ItemTimeout: g.itemTimeout,
	}.Begin()
	r, err := g.resolve(opts.JournalistID, opts.Tone, opts.ArticleType)
	if err != nil {
		return batch.Report(), err
	}
	if n <= 0 {
		return batch.Finish(ctx), nil
	}
	pending, err := g.store.TranscriptsWithoutArticle(ctx, n)
	if err != nil {
		return batch.Report(), fmt.Errorf("write articles: %w", err)
	}
	for _, transcript := range pending {
		err := batch.Run(ctx, transcript.VideoID, func(itemCtx context.Context) error {
			draft, err := g.Generate(itemCtx, r.journalist, FromTranscript(transcript), r.tone, r.articleType)
			if err != nil {
				return err
			}
			_, err = g.save(itemCtx, draft, transcript.VideoID)
			if errors.Is(err, store.ErrArticleExists) {
				return stage.Skip("article written by another runner")
			}
			return err
		})
		if err != nil {
			return batch.Report(), fmt.Errorf("write articles: %w", err)
		}
	}
	return batch.Finish(ctx), nil
}

func (g *Generator) save(ctx context.Context, draft Draft, videoID string) (*store.Article, error) {
	article := &store.Article{
		VideoID:     videoID,
		Title:       draft.Title,
		Content:     draft.Content,
		AuthorID:    draft.AuthorID,
		Tone:        string(draft.Tone),
		ArticleType: string(draft.ArticleType),
	}
	if err := g.store.InsertArticle(ctx, article); err != nil {
		if errors.Is(err, store.ErrArticleExists) {
			return nil, err
		}
		return nil, stage.Systemic(err)
	}
	return article, nil
}

// AdHocRequest is a standalone article brief.
type AdHocRequest struct {
	Context      string
	Prompt       string
	JournalistID string
	Tone         string
	ArticleType  string
}

// CreateAdHoc writes and stores an article that is not tied to a video.
func (g *Generator) CreateAdHoc(ctx context.Context, req AdHocRequest) (*store.Article, error) {
	if strings.TrimSpace(req.Context) == "" && strings.TrimSpace(req.Prompt) == "" {
		return nil, services.Wrap(services.ErrValidation, StageName, "create", "context or prompt required", nil)
	}
	r, err := g.resolve(req.JournalistID, req.Tone, req.ArticleType)
	if err != nil {
		return nil, err
	}
	draft, err := g.Generate(ctx, r.journalist, Source{Context: req.Context, Prompt: req.Prompt}, r.tone, r.articleType)
	if err != nil {
		return nil, err
	}
	return g.save(ctx, draft, "")
}

// Edit is an operator change to a stored article. Nil fields are unchanged.
type Edit struct {
	Title       *string
	Tone        *string
	ArticleType *string
}

// Update applies edit to the article with id. A new title is written into
// the rendered HTML as well.
func (g *Generator) Update(ctx context.Context, id int64, edit Edit) (*store.Article, error) {
	article, err := g.store.GetArticle(ctx, id)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, services.Wrap(services.ErrNotFound, StageName, "update", fmt.Sprintf("article %d", id), nil)
	}
	if edit.Title != nil {
		title := strings.Join(strings.Fields(*edit.Title), " ")
		if title == "" {
			return nil, services.Wrap(services.ErrValidation, StageName, "update", "title cannot be empty", nil)
		}
		content, err := Retitle(article.Content, title)
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, StageName, "update", "stored article html", err)
		}
		article.Title = title
		article.Content = content
	}
	if edit.Tone != nil {
		tone, err := creators.ParseTone(*edit.Tone)
		if err != nil {
			return nil, err
		}
		article.Tone = string(tone)
	}
	if edit.ArticleType != nil {
		articleType, err := creators.ParseArticleType(*edit.ArticleType)
		if err != nil {
			return nil, err
		}
		article.ArticleType = string(articleType)
	}
	if err := g.store.UpdateArticle(ctx, article); err != nil {
		return nil, err
	}
	return article, nil
}
