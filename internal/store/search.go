package store

import (
	"context"
	"fmt"
)

// DefaultSearchLimit caps search results when no limit is given.
const DefaultSearchLimit = 25

// Search runs an FTS5 query over segment text, best matches first. A nil
// meetingID searches every meeting.
func (s *Store) Search(ctx context.Context, query string, meetingID *int64, limit int) ([]SearchHit, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	q := `
		SELECT s.id, s.meeting_id, s.start_s, s.end_s, s.text,
			snippet(segments_fts, 2, '[', ']', ' ... ', 12)
		FROM segments_fts
		JOIN segments s ON s.id = segments_fts.segment_id
		WHERE segments_fts MATCH ?`
	args := []any{query}
	if meetingID != nil {
		q += ` AND s.meeting_id = ?`
		args = append(args, *meetingID)
	}
	q += ` ORDER BY rank LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("search segments: %w", err)
	}
	defer rows.Close()

	var hits []SearchHit
	for rows.Next() {
		var h SearchHit
		if err := rows.Scan(&h.SegmentID, &h.MeetingID, &h.Start, &h.End, &h.Text, &h.Snippet); err != nil {
			return nil, fmt.Errorf("scan search hit: %w", err)
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

// IndexRowCount returns the number of index rows for a meeting.
func (s *Store) IndexRowCount(ctx context.Context, meetingID int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM segments_fts WHERE meeting_id = ?`, meetingID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count index rows: %w", err)
	}
	return n, nil
}

// SegmentCount returns the number of segment rows for a meeting.
func (s *Store) SegmentCount(ctx context.Context, meetingID int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM segments WHERE meeting_id = ?`, meetingID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count segments: %w", err)
	}
	return n, nil
}
