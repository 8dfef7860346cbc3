// Package store persists meetings, their segments, summaries and exports in
// SQLite, keeping an FTS5 index in step with the segment table.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nguyentantai21042004/minutes/internal/apperr"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS meetings (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at TEXT NOT NULL,
	source_path TEXT NOT NULL,
	language TEXT NOT NULL,
	model_name TEXT NOT NULL,
	duration_seconds REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS segments (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	meeting_id INTEGER NOT NULL REFERENCES meetings(id) ON DELETE CASCADE,
	start_s REAL NOT NULL,
	end_s REAL NOT NULL,
	text TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_segments_meeting ON segments(meeting_id);

CREATE TABLE IF NOT EXISTS summaries (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	meeting_id INTEGER NOT NULL REFERENCES meetings(id) ON DELETE CASCADE,
	created_at TEXT NOT NULL,
	template_name TEXT NOT NULL,
	method TEXT NOT NULL,
	llm_model TEXT,
	text TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS exports (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	meeting_id INTEGER NOT NULL REFERENCES meetings(id) ON DELETE CASCADE,
	created_at TEXT NOT NULL,
	export_format TEXT NOT NULL,
	path TEXT NOT NULL
);
`

const ftsSchema = `
CREATE VIRTUAL TABLE IF NOT EXISTS segments_fts USING fts5(
	segment_id UNINDEXED,
	meeting_id UNINDEXED,
	text
)`

// Store provides access to the minutes SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and initializes the schema.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create database dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Connections are opened per operation and not kept around.
	db.SetMaxIdleConns(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initialize(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initialize(ctx context.Context) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, schema); err != nil {
			return apperr.Storage("create schema", err)
		}
		if _, err := tx.ExecContext(ctx, ftsSchema); err != nil {
			return apperr.Storage("SQLite FTS5 is unavailable; use a SQLite build with FTS5 support", err)
		}
		return nil
	})
}

// withTx runs fn in one transaction, rolling back on error or panic.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func nowISO() string {
	return time.Now().UTC().Truncate(time.Second).Format(time.RFC3339)
}

// CreateMeeting inserts the meeting, every segment and the matching index rows
// as one unit.
func (s *Store) CreateMeeting(ctx context.Context, m NewMeeting, segments []NewSegment) (Meeting, error) {
	meeting := Meeting{
		CreatedAt:       nowISO(),
		SourcePath:      m.SourcePath,
		Language:        m.Language,
		ModelName:       m.ModelName,
		DurationSeconds: m.DurationSeconds,
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO meetings (created_at, source_path, language, model_name, duration_seconds)
			VALUES (?, ?, ?, ?, ?)
		`, meeting.CreatedAt, meeting.SourcePath, meeting.Language, meeting.ModelName, meeting.DurationSeconds)
		if err != nil {
			return fmt.Errorf("insert meeting: %w", err)
		}
		if meeting.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("meeting id: %w", err)
		}

		segStmt, err := tx.PrepareContext(ctx, `INSERT INTO segments (meeting_id, start_s, end_s, text) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare segment insert: %w", err)
		}
		defer segStmt.Close()

		ftsStmt, err := tx.PrepareContext(ctx, `INSERT INTO segments_fts (segment_id, meeting_id, text) VALUES (?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare index insert: %w", err)
		}
		defer ftsStmt.Close()

		for _, seg := range segments {
			res, err := segStmt.ExecContext(ctx, meeting.ID, seg.Start, seg.End, seg.Text)
			if err != nil {
				return fmt.Errorf("insert segment: %w", err)
			}
			segID, err := res.LastInsertId()
			if err != nil {
				return fmt.Errorf("segment id: %w", err)
			}
			if _, err := ftsStmt.ExecContext(ctx, segID, meeting.ID, seg.Text); err != nil {
				return fmt.Errorf("index segment: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return Meeting{}, err
	}
	return meeting, nil
}

// Meeting returns a meeting by id, or nil if it does not exist.
func (s *Store) Meeting(ctx context.Context, id int64) (*Meeting, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, source_path, language, model_name, duration_seconds
		FROM meetings
		WHERE id = ?
	`, id)

	var m Meeting
	if err := row.Scan(&m.ID, &m.CreatedAt, &m.SourcePath, &m.Language, &m.ModelName, &m.DurationSeconds); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan meeting: %w", err)
	}
	return &m, nil
}

// Meetings returns the most recent meetings first. A non-positive limit returns all.
func (s *Store) Meetings(ctx context.Context, limit int) ([]Meeting, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, source_path, language, model_name, duration_seconds
		FROM meetings
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query meetings: %w", err)
	}
	defer rows.Close()

	var meetings []Meeting
	for rows.Next() {
		var m Meeting
		if err := rows.Scan(&m.ID, &m.CreatedAt, &m.SourcePath, &m.Language, &m.ModelName, &m.DurationSeconds); err != nil {
			return nil, fmt.Errorf("scan meeting: %w", err)
		}
		meetings = append(meetings, m)
	}
	return meetings, rows.Err()
}

// Segments returns a meeting's segments ordered by start time.
func (s *Store) Segments(ctx context.Context, meetingID int64) ([]Segment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, meeting_id, start_s, end_s, text
		FROM segments
		WHERE meeting_id = ?
		ORDER BY start_s ASC, id ASC
	`, meetingID)
	if err != nil {
		return nil, fmt.Errorf("query segments: %w", err)
	}
	defer rows.Close()

	var segments []Segment
	for rows.Next() {
		var seg Segment
		if err := rows.Scan(&seg.ID, &seg.MeetingID, &seg.Start, &seg.End, &seg.Text); err != nil {
			return nil, fmt.Errorf("scan segment: %w", err)
		}
		segments = append(segments, seg)
	}
	return segments, rows.Err()
}

// TranscriptText joins a meeting's segment texts with newlines.
func (s *Store) TranscriptText(ctx context.Context, meetingID int64) (string, error) {
	segments, err := s.Segments(ctx, meetingID)
	if err != nil {
		return "", err
	}
	lines := make([]string, len(segments))
	for i, seg := range segments {
		lines[i] = seg.Text
	}
	return strings.Join(lines, "\n"), nil
}

// DeleteMeeting removes a meeting with its index rows. Segments, summaries and
// exports go with it through the foreign keys.
func (s *Store) DeleteMeeting(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM segments_fts WHERE meeting_id = ?`, id); err != nil {
			return fmt.Errorf("delete index rows: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM meetings WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete meeting: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return apperr.Precondition("meeting %d not found", id)
		}
		return nil
	})
}

// AddSummary appends a summary to a meeting.
func (s *Store) AddSummary(ctx context.Context, meetingID int64, templateName, method, llmModel, text string) (Summary, error) {
	sum := Summary{
		MeetingID:    meetingID,
		CreatedAt:    nowISO(),
		TemplateName: templateName,
		Method:       method,
		LLMModel:     llmModel,
		Text:         text,
	}
	var model sql.NullString
	if llmModel != "" {
		model = sql.NullString{String: llmModel, Valid: true}
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO summaries (meeting_id, created_at, template_name, method, llm_model, text)
		VALUES (?, ?, ?, ?, ?, ?)
	`, meetingID, sum.CreatedAt, templateName, method, model, text)
	if err != nil {
		return Summary{}, fmt.Errorf("insert summary: %w", err)
	}
	if sum.ID, err = res.LastInsertId(); err != nil {
		return Summary{}, fmt.Errorf("summary id: %w", err)
	}
	return sum, nil
}

// LatestSummary returns the most recently added summary, or nil.
func (s *Store) LatestSummary(ctx context.Context, meetingID int64) (*Summary, error) {
	summaries, err := s.querySummaries(ctx, `
		SELECT id, meeting_id, created_at, template_name, method, llm_model, text
		FROM summaries
		WHERE meeting_id = ?
		ORDER BY id DESC
		LIMIT 1
	`, meetingID)
	if err != nil || len(summaries) == 0 {
		return nil, err
	}
	return &summaries[0], nil
}

// Summaries returns every summary of a meeting in insertion order.
func (s *Store) Summaries(ctx context.Context, meetingID int64) ([]Summary, error) {
	return s.querySummaries(ctx, `
		SELECT id, meeting_id, created_at, template_name, method, llm_model, text
		FROM summaries
		WHERE meeting_id = ?
		ORDER BY id ASC
	`, meetingID)
}

func (s *Store) querySummaries(ctx context.Context, query string, args ...any) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query summaries: %w", err)
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var sum Summary
		var model sql.NullString
		if err := rows.Scan(&sum.ID, &sum.MeetingID, &sum.CreatedAt, &sum.TemplateName,
			&sum.Method, &model, &sum.Text); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		if model.Valid {
			sum.LLMModel = model.String
		}
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

// AddExport records a produced export artifact.
func (s *Store) AddExport(ctx context.Context, meetingID int64, format, path string) (Export, error) {
	exp := Export{MeetingID: meetingID, CreatedAt: nowISO(), Format: format, Path: path}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO exports (meeting_id, created_at, export_format, path)
		VALUES (?, ?, ?, ?)
	`, meetingID, exp.CreatedAt, format, path)
	if err != nil {
		return Export{}, fmt.Errorf("insert export: %w", err)
	}
	if exp.ID, err = res.LastInsertId(); err != nil {
		return Export{}, fmt.Errorf("export id: %w", err)
	}
	return exp, nil
}

// Exports returns a meeting's export log in insertion order.
func (s *Store) Exports(ctx context.Context, meetingID int64) ([]Export, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, meeting_id, created_at, export_format, path
		FROM exports
		WHERE meeting_id = ?
		ORDER BY id ASC
	`, meetingID)
	if err != nil {
		return nil, fmt.Errorf("query exports: %w", err)
	}
	defer rows.Close()

	var exports []Export
	for rows.Next() {
		var e Export
		if err := rows.Scan(&e.ID, &e.MeetingID, &e.CreatedAt, &e.Format, &e.Path); err != nil {
			return nil, fmt.Errorf("scan export: %w", err)
		}
		exports = append(exports, e)
	}
	return exports, rows.Err()
}

// Ping checks that the database answers.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
