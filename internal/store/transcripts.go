package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

const transcriptColumns = "video_id, content, source, language, fetched_at"

// GetTranscript returns the cached transcript for videoID, or nil when the
// cache has no entry.
func (s *Store) GetTranscript(ctx context.Context, videoID string) (*Transcript, error) {
	row := s.db.QueryRowContext(ensureContext(ctx),
		"SELECT "+transcriptColumns+" FROM transcripts WHERE video_id = ?", videoID)
	transcript, err := scanTranscript(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get transcript: %w", err)
	}
	return transcript, nil
}

// SaveTranscript stores a transcript and drops its id from the queue in the
// same transaction. An existing entry is left untouched; the returned bool is
// false in that case.
func (s *Store) SaveTranscript(ctx context.Context, transcript *Transcript) (bool, error) {
	if transcript == nil || strings.TrimSpace(transcript.VideoID) == "" {
		return false, errors.New("save transcript: video id is required")
	}
	if strings.TrimSpace(transcript.Content) == "" {
		return false, errors.New("save transcript: content is empty")
	}
	var inserted bool
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO transcripts (video_id, content, source, language, fetched_at)
			VALUES (?, ?, ?, ?, ?) ON CONFLICT(video_id) DO NOTHING`,
			transcript.VideoID,
			transcript.Content,
			transcript.Source,
			transcript.Language,
			formatTime(transcript.FetchedAt),
		)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		inserted = n == 1
		_, err = tx.ExecContext(ctx, "DELETE FROM queue WHERE video_id = ?", transcript.VideoID)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("save transcript: %w", err)
	}
	return inserted, nil
}

// DeleteTranscript removes a cached transcript. Articles written from it keep
// their content and lose the video reference.
func (s *Store) DeleteTranscript(ctx context.Context, videoID string) (bool, error) {
	res, err := s.execWithRetry(ctx, "DELETE FROM transcripts WHERE video_id = ?", videoID)
	if err != nil {
		return false, fmt.Errorf("delete transcript: %w", err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// ListTranscripts returns cached transcripts, newest first.
func (s *Store) ListTranscripts(ctx context.Context, limit, offset int) ([]*Transcript, error) {
	builder := sq.Select(transcriptColumns).From("transcripts").OrderBy("fetched_at DESC", "video_id")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}
	if offset > 0 {
		builder = builder.Offset(uint64(offset))
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build transcript list: %w", err)
	}
	return s.queryTranscripts(ctx, query, args...)
}

// TranscriptsWithoutArticle returns up to n transcripts that no article has
// been written from, oldest first.
func (s *Store) TranscriptsWithoutArticle(ctx context.Context, n int) ([]*Transcript, error) {
	if n <= 0 {
		return nil, nil
	}
	return s.queryTranscripts(ctx, `SELECT t.video_id, t.content, t.source, t.language, t.fetched_at
		FROM transcripts t
		LEFT JOIN articles a ON a.video_id = t.video_id
		WHERE a.id IS NULL
		ORDER BY t.fetched_at, t.video_id
		LIMIT ?`, n)
}

func (s *Store) queryTranscripts(ctx context.Context, query string, args ...any) ([]*Transcript, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transcripts: %w", err)
	}
	defer rows.Close()

	var transcripts []*Transcript
	for rows.Next() {
		transcript, err := scanTranscript(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transcript: %w", err)
		}
		transcripts = append(transcripts, transcript)
	}
	return transcripts, rows.Err()
}
