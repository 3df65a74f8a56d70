package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// ErrArticleExists reports that an article has already been written for the
// transcript.
var ErrArticleExists = errors.New("article already exists for video")

// InsertArticle persists a new article and sets its ID and timestamps.
// Only one article may reference a given video id.
func (s *Store) InsertArticle(ctx context.Context, article *Article) error {
	if article == nil {
		return errors.New("insert article: nil article")
	}
	if strings.TrimSpace(article.Title) == "" || strings.TrimSpace(article.Content) == "" {
		return errors.New("insert article: title and content are required")
	}
	now := time.Now().UTC()
	res, err := s.execWithRetry(ctx,
		`INSERT INTO articles (video_id, title, content, bullet_points, author_id, tone, article_type, published_ref, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?) ON CONFLICT DO NOTHING`,
		nullableString(article.VideoID),
		article.Title,
		article.Content,
		nullableString(article.BulletPoints),
		article.AuthorID,
		article.Tone,
		article.ArticleType,
		nullableString(article.PublishedRef),
		formatTime(now),
		formatTime(now),
	)
	if err != nil {
		return fmt.Errorf("insert article: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("insert article %s: %w", article.VideoID, ErrArticleExists)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert article id: %w", err)
	}
	article.ID = id
	article.CreatedAt = now
	article.UpdatedAt = now
	return nil
}

// GetArticle returns the article with id, or nil when it does not exist.
func (s *Store) GetArticle(ctx context.Context, id int64) (*Article, error) {
	row := s.db.QueryRowContext(ensureContext(ctx),
		"SELECT "+articleColumns+" FROM articles a WHERE a.id = ?", id)
	article, err := scanArticle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get article: %w", err)
	}
	return article, nil
}

// GetArticleByVideo returns the article written from videoID, or nil.
func (s *Store) GetArticleByVideo(ctx context.Context, videoID string) (*Article, error) {
	row := s.db.QueryRowContext(ensureContext(ctx),
		"SELECT "+articleColumns+" FROM articles a WHERE a.video_id = ?", videoID)
	article, err := scanArticle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get article by video: %w", err)
	}
	return article, nil
}

// UpdateArticle rewrites the editable fields of an article: title, content,
// tone and article type. Bullet points and publication state have their own
// conditional setters.
func (s *Store) UpdateArticle(ctx context.Context, article *Article) error {
	if article == nil || article.ID == 0 {
		return errors.New("update article: id is required")
	}
	now := time.Now().UTC()
	res, err := s.execWithRetry(ctx,
		`UPDATE articles SET title = ?, content = ?, tone = ?, article_type = ?, updated_at = ? WHERE id = ?`,
		article.Title, article.Content, article.Tone, article.ArticleType, formatTime(now), article.ID)
	if err != nil {
		return fmt.Errorf("update article: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update article %d: %w", article.ID, sql.ErrNoRows)
	}
	article.UpdatedAt = now
	return nil
}

// SetBulletPoints stores a summary only if the article has none yet. It
// returns false when another writer got there first.
func (s *Store) SetBulletPoints(ctx context.Context, id int64, bulletPoints string) (bool, error) {
	if strings.TrimSpace(bulletPoints) == "" {
		return false, errors.New("set bullet points: summary is empty")
	}
	res, err := s.execWithRetry(ctx,
		`UPDATE articles SET bullet_points = ?, updated_at = ?
		WHERE id = ? AND (bullet_points IS NULL OR bullet_points = '')`,
		bulletPoints, formatTime(time.Now()), id)
	if err != nil {
		return false, fmt.Errorf("set bullet points: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// MarkPublished records the sink reference for an article that has not been
// published yet.
func (s *Store) MarkPublished(ctx context.Context, id int64, ref string) (bool, error) {
	if strings.TrimSpace(ref) == "" {
		return false, errors.New("mark published: reference is empty")
	}
	res, err := s.execWithRetry(ctx,
		`UPDATE articles SET published_ref = ?, updated_at = ? WHERE id = ? AND published_ref IS NULL`,
		ref, formatTime(time.Now()), id)
	if err != nil {
		return false, fmt.Errorf("mark published: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// DeleteArticle removes an article together with its art.
func (s *Store) DeleteArticle(ctx context.Context, id int64) (bool, error) {
	res, err := s.execWithRetry(ctx, "DELETE FROM articles WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("delete article: %w", err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// ArticlesNeedingSummary returns up to n articles without bullet points,
// oldest first.
func (s *Store) ArticlesNeedingSummary(ctx context.Context, n int) ([]*Article, error) {
	return s.ListArticles(ctx, ArticleFilter{WithoutSummary: true, Limit: n})
}

// ArticlesNeedingArt returns up to n articles that have bullet points and no
// art, oldest first.
func (s *Store) ArticlesNeedingArt(ctx context.Context, n int) ([]*Article, error) {
	if n <= 0 {
		return nil, nil
	}
	return s.queryArticles(ctx, `SELECT `+articleColumns+`
		FROM articles a
		LEFT JOIN art ON art.article_id = a.id
		WHERE a.bullet_points IS NOT NULL AND a.bullet_points != '' AND art.id IS NULL
		ORDER BY a.id
		LIMIT ?`, n)
}

// ArticlesReadyToPublish returns up to n unpublished articles that have both
// a summary and art.
func (s *Store) ArticlesReadyToPublish(ctx context.Context, n int) ([]*Article, error) {
	if n <= 0 {
		return nil, nil
	}
	return s.queryArticles(ctx, `SELECT `+articleColumns+`
		FROM articles a
		JOIN art ON art.article_id = a.id
		WHERE a.bullet_points IS NOT NULL AND a.bullet_points != '' AND a.published_ref IS NULL
		ORDER BY a.id
		LIMIT ?`, n)
}

// ListArticles returns articles matching filter. Results are ordered oldest
// first when a stage predicate is requested and newest first otherwise.
func (s *Store) ListArticles(ctx context.Context, filter ArticleFilter) ([]*Article, error) {
	builder := sq.Select(articleColumns).From("articles a")
	if filter.AuthorID != "" {
		builder = builder.Where(sq.Eq{"a.author_id": filter.AuthorID})
	}
	if filter.Tone != "" {
		builder = builder.Where(sq.Eq{"a.tone": filter.Tone})
	}
	if filter.ArticleType != "" {
		builder = builder.Where(sq.Eq{"a.article_type": filter.ArticleType})
	}
	if filter.WithoutSummary {
		builder = builder.Where(sq.Or{sq.Eq{"a.bullet_points": nil}, sq.Eq{"a.bullet_points": ""}})
	}
	if filter.WithoutArt {
		builder = builder.LeftJoin("art ON art.article_id = a.id").Where(sq.Eq{"art.id": nil})
	}
	if filter.Unpublished {
		builder = builder.Where(sq.Eq{"a.published_ref": nil})
	}
	if filter.WithoutSummary || filter.WithoutArt || filter.Unpublished {
		builder = builder.OrderBy("a.id")
	} else {
		builder = builder.OrderBy("a.id DESC")
	}
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		builder = builder.Offset(uint64(filter.Offset))
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build article list: %w", err)
	}
	return s.queryArticles(ctx, query, args...)
}

func (s *Store) queryArticles(ctx context.Context, query string, args ...any) ([]*Article, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	defer rows.Close()

	var articles []*Article
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		articles = append(articles, article)
	}
	return articles, rows.Err()
}
