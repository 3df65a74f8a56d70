package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Enqueue adds video ids to the tail of the queue. Ids already queued or
// already present in the transcript cache are skipped silently. It returns the
// number of ids actually added.
func (s *Store) Enqueue(ctx context.Context, source string, ids ...string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var added int
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		added = 0
		stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO queue (video_id, source, discovered_at)
			SELECT ?, ?, ? WHERE NOT EXISTS (SELECT 1 FROM transcripts WHERE video_id = ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		now := formatTime(time.Now())
		for _, id := range ids {
			id = strings.TrimSpace(id)
			if id == "" {
				continue
			}
			res, err := stmt.ExecContext(ctx, id, source, now, id)
			if err != nil {
				return err
			}
			if n, err := res.RowsAffected(); err == nil {
				added += int(n)
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("enqueue: %w", err)
	}
	return added, nil
}

// DequeueBatch removes and returns up to n ids from the head of the queue in
// FIFO order. Selection and removal happen under one write lock, so
// concurrent callers never receive the same id.
func (s *Store) DequeueBatch(ctx context.Context, n int) ([]VideoRef, error) {
	if n <= 0 {
		return nil, nil
	}
	var refs []VideoRef
	err := s.withImmediate(ctx, func(conn *sql.Conn) error {
		refs = refs[:0]
		rows, err := conn.QueryContext(ctx,
			"SELECT seq, video_id, source, discovered_at FROM queue ORDER BY seq LIMIT ?", n)
		if err != nil {
			return err
		}
		for rows.Next() {
			ref, err := scanVideoRef(rows)
			if err != nil {
				rows.Close()
				return err
			}
			refs = append(refs, ref)
		}
		if err := rows.Close(); err != nil {
			return err
		}
		if err := rows.Err(); err != nil {
			return err
		}
		if len(refs) == 0 {
			return nil
		}
		args := make([]any, len(refs))
		for i, ref := range refs {
			args[i] = ref.Seq
		}
		_, err = conn.ExecContext(ctx,
			fmt.Sprintf("DELETE FROM queue WHERE seq IN (%s)", makePlaceholders(len(args))), args...)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("dequeue batch: %w", err)
	}
	return refs, nil
}

// QueueSize returns the number of queued ids.
func (s *Store) QueueSize(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ensureContext(ctx), "SELECT COUNT(*) FROM queue").Scan(&count); err != nil {
		return 0, fmt.Errorf("queue size: %w", err)
	}
	return count, nil
}

// ListQueue returns queued ids in FIFO order without removing them. A limit
// of zero returns every row.
func (s *Store) ListQueue(ctx context.Context, limit int) ([]VideoRef, error) {
	ctx = ensureContext(ctx)
	query := "SELECT seq, video_id, source, discovered_at FROM queue ORDER BY seq"
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list queue: %w", err)
	}
	defer rows.Close()

	var refs []VideoRef
	for rows.Next() {
		ref, err := scanVideoRef(rows)
		if err != nil {
			return nil, fmt.Errorf("scan queue row: %w", err)
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

// QueueContains reports whether id is currently queued.
func (s *Store) QueueContains(ctx context.Context, id string) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ensureContext(ctx),
		"SELECT EXISTS(SELECT 1 FROM queue WHERE video_id = ?)", id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("queue contains: %w", err)
	}
	return exists == 1, nil
}

// FilterUnknown returns the ids, in input order, that are neither queued nor
// cached as transcripts. Duplicates in the input are collapsed.
func (s *Store) FilterUnknown(ctx context.Context, ids []string) ([]string, error) {
	ctx = ensureContext(ctx)
	seen := make(map[string]struct{}, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	if len(unique) == 0 {
		return nil, nil
	}

	args := make([]any, 0, len(unique)*2)
	for _, id := range unique {
		args = append(args, id)
	}
	for _, id := range unique {
		args = append(args, id)
	}
	placeholders := makePlaceholders(len(unique))
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		"SELECT video_id FROM queue WHERE video_id IN (%s) UNION SELECT video_id FROM transcripts WHERE video_id IN (%s)",
		placeholders, placeholders), args...)
	if err != nil {
		return nil, fmt.Errorf("filter known ids: %w", err)
	}
	defer rows.Close()

	known := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan known id: %w", err)
		}
		known[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	unknown := make([]string, 0, len(unique))
	for _, id := range unique {
		if _, ok := known[id]; !ok {
			unknown = append(unknown, id)
		}
	}
	return unknown, nil
}

// CleanupQueue removes queued ids that already have a cached transcript and
// returns how many were dropped.
func (s *Store) CleanupQueue(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx,
		"DELETE FROM queue WHERE video_id IN (SELECT video_id FROM transcripts)")
	if err != nil {
		return 0, fmt.Errorf("cleanup queue: %w", err)
	}
	return res.RowsAffected()
}

// ClearQueue removes every queued id.
func (s *Store) ClearQueue(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, "DELETE FROM queue")
	if err != nil {
		return 0, fmt.Errorf("clear queue: %w", err)
	}
	return res.RowsAffected()
}

// RemoveFromQueue deletes specific ids from the queue.
func (s *Store) RemoveFromQueue(ctx context.Context, ids ...string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	res, err := s.execWithRetry(ctx,
		fmt.Sprintf("DELETE FROM queue WHERE video_id IN (%s)", makePlaceholders(len(ids))), args...)
	if err != nil {
		return 0, fmt.Errorf("remove from queue: %w", err)
	}
	return res.RowsAffected()
}

func scanVideoRef(scanner rowScanner) (VideoRef, error) {
	var (
		ref           VideoRef
		discoveredRaw string
	)
	if err := scanner.Scan(&ref.Seq, &ref.VideoID, &ref.Source, &discoveredRaw); err != nil {
		return VideoRef{}, err
	}
	if discovered, err := parseTimeString(discoveredRaw); err == nil {
		ref.DiscoveredAt = discovered
	}
	return ref, nil
}
