package api

import (
	"context"

	"newsroom/internal/store"
)

// ArticleReader abstracts the store queries needed for article views.
type ArticleReader interface {
	ListArticles(ctx context.Context, filter store.ArticleFilter) ([]*store.Article, error)
	GetArticle(ctx context.Context, id int64) (*store.Article, error)
	GetArtForArticle(ctx context.Context, articleID int64) (*store.Art, error)
}

// ArticleService exposes read-only article operations returning API DTOs.
type ArticleService struct {
	store ArticleReader
}

// NewArticleService constructs an ArticleService around the provided reader.
func NewArticleService(reader ArticleReader) *ArticleService {
	if reader == nil {
		return nil
	}
	return &ArticleService{store: reader}
}

// List returns a page of articles without content.
func (s *ArticleService) List(ctx context.Context, filter store.ArticleFilter) ([]Article, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	articles, err := s.store.ListArticles(ctx, filter)
	if err != nil {
		return nil, err
	}
	return FromArticles(articles), nil
}

// Describe fetches a single article with content and art. A missing article
// returns nil without error.
func (s *ArticleService) Describe(ctx context.Context, id int64) (*Article, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	article, err := s.store.GetArticle(ctx, id)
	if err != nil || article == nil {
		return nil, err
	}
	out := FromArticle(article, true)
	art, err := s.store.GetArtForArticle(ctx, id)
	if err != nil {
		return nil, err
	}
	out.Art = FromArt(art)
	return &out, nil
}
