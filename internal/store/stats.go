package store

import (
	"context"
	"fmt"
)

// Stats counts the records that satisfy each stage predicate.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	ctx = ensureContext(ctx)
	var stats Stats
	queries := []struct {
		dest  *int
		query string
	}{
		{&stats.Queued, "SELECT COUNT(*) FROM queue"},
		{&stats.QueueStaleCached, "SELECT COUNT(*) FROM queue WHERE video_id IN (SELECT video_id FROM transcripts)"},
		{&stats.Transcripts, "SELECT COUNT(*) FROM transcripts"},
		{&stats.AwaitingArticle, `SELECT COUNT(*) FROM transcripts t
			LEFT JOIN articles a ON a.video_id = t.video_id WHERE a.id IS NULL`},
		{&stats.Articles, "SELECT COUNT(*) FROM articles"},
		{&stats.AdHocArticles, "SELECT COUNT(*) FROM articles WHERE video_id IS NULL"},
		{&stats.AwaitingSummary, "SELECT COUNT(*) FROM articles WHERE bullet_points IS NULL OR bullet_points = ''"},
		{&stats.AwaitingArt, `SELECT COUNT(*) FROM articles a
			LEFT JOIN art ON art.article_id = a.id
			WHERE a.bullet_points IS NOT NULL AND a.bullet_points != '' AND art.id IS NULL`},
		{&stats.WithArt, "SELECT COUNT(*) FROM art"},
		{&stats.AwaitingPublish, `SELECT COUNT(*) FROM articles a
			JOIN art ON art.article_id = a.id
			WHERE a.bullet_points IS NOT NULL AND a.bullet_points != '' AND a.published_ref IS NULL`},
		{&stats.Published, "SELECT COUNT(*) FROM articles WHERE published_ref IS NOT NULL"},
	}
	for _, q := range queries {
		if err := s.db.QueryRowContext(ctx, q.query).Scan(q.dest); err != nil {
			return Stats{}, fmt.Errorf("stats: %w", err)
		}
	}
	return stats, nil
}
