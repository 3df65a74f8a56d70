package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// InsertArt records the featured image for an article. The article_id
// uniqueness constraint guarantees at most one row per article; when a row
// already exists nothing is written and false is returned.
func (s *Store) InsertArt(ctx context.Context, art *Art) (bool, error) {
	if art == nil || art.ArticleID == 0 {
		return false, errors.New("insert art: article id is required")
	}
	if strings.TrimSpace(art.ImageURL) == "" {
		return false, errors.New("insert art: image url is empty")
	}
	now := time.Now().UTC()
	res, err := s.execWithRetry(ctx,
		`INSERT INTO art (article_id, artist_id, title, prompt, snippet, image_url, medium, aesthetic, style, model, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) ON CONFLICT(article_id) DO NOTHING`,
		art.ArticleID,
		art.ArtistID,
		art.Title,
		art.Prompt,
		art.Snippet,
		art.ImageURL,
		art.Medium,
		art.Aesthetic,
		art.Style,
		art.Model,
		formatTime(now),
	)
	if err != nil {
		return false, fmt.Errorf("insert art: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}
	id, err := res.LastInsertId()
	if err != nil {
		return false, fmt.Errorf("insert art id: %w", err)
	}
	art.ID = id
	art.CreatedAt = now
	return true, nil
}

// GetArt returns the art row with id, or nil.
func (s *Store) GetArt(ctx context.Context, id int64) (*Art, error) {
	return s.getArt(ctx, "SELECT "+artColumns+" FROM art WHERE id = ?", id)
}

// GetArtForArticle returns the art attached to articleID, or nil.
func (s *Store) GetArtForArticle(ctx context.Context, articleID int64) (*Art, error) {
	return s.getArt(ctx, "SELECT "+artColumns+" FROM art WHERE article_id = ?", articleID)
}

func (s *Store) getArt(ctx context.Context, query string, arg any) (*Art, error) {
	art, err := scanArt(s.db.QueryRowContext(ensureContext(ctx), query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get art: %w", err)
	}
	return art, nil
}
