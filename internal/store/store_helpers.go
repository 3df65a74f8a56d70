package store

import (
	"database/sql"
	"errors"
	"time"
)

const articleColumns = "a.id, a.video_id, a.title, a.content, a.bullet_points, a.author_id, a.tone, a.article_type, a.published_ref, a.created_at, a.updated_at"

const artColumns = "id, article_id, artist_id, title, prompt, snippet, image_url, medium, aesthetic, style, model, created_at"

type rowScanner interface{ Scan(dest ...any) error }

func scanArticle(scanner rowScanner) (*Article, error) {
	var (
		article      Article
		videoID      sql.NullString
		bulletPoints sql.NullString
		publishedRef sql.NullString
		createdRaw   sql.NullString
		updatedRaw   sql.NullString
	)
	if err := scanner.Scan(
		&article.ID,
		&videoID,
		&article.Title,
		&article.Content,
		&bulletPoints,
		&article.AuthorID,
		&article.Tone,
		&article.ArticleType,
		&publishedRef,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}
	article.VideoID = videoID.String
	article.BulletPoints = bulletPoints.String
	article.PublishedRef = publishedRef.String
	if created, err := parseTimeString(createdRaw.String); err == nil {
		article.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		article.UpdatedAt = updated
	}
	return &article, nil
}

func scanTranscript(scanner rowScanner) (*Transcript, error) {
	var (
		transcript Transcript
		fetchedRaw string
	)
	if err := scanner.Scan(
		&transcript.VideoID,
		&transcript.Content,
		&transcript.Source,
		&transcript.Language,
		&fetchedRaw,
	); err != nil {
		return nil, err
	}
	if fetched, err := parseTimeString(fetchedRaw); err == nil {
		transcript.FetchedAt = fetched
	}
	return &transcript, nil
}

func scanArt(scanner rowScanner) (*Art, error) {
	var (
		art        Art
		createdRaw string
	)
	if err := scanner.Scan(
		&art.ID,
		&art.ArticleID,
		&art.ArtistID,
		&art.Title,
		&art.Prompt,
		&art.Snippet,
		&art.ImageURL,
		&art.Medium,
		&art.Aesthetic,
		&art.Style,
		&art.Model,
		&createdRaw,
	); err != nil {
		return nil, err
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		art.CreatedAt = created
	}
	return &art, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(value time.Time) string {
	if value.IsZero() {
		value = time.Now()
	}
	return value.UTC().Format(timeLayout)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
