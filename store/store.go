// Package store implements the pooled, embedded relational store: one
// "videos" table, a bounded sqlite connection pool, and the upsert/
// search/statistics operations the pipeline driver persists results
// through. Grounded on the teacher's catabalancer package, which is the
// only place in the upstream project that talks to a SQL database
// directly (QueryContext/ExecContext with context timeouts, sqlmock in
// tests).
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/videoscribe/analyzer/config"
	"github.com/videoscribe/analyzer/model"
	pipelineerrors "github.com/videoscribe/analyzer/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS videos (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	url TEXT UNIQUE NOT NULL,
	title TEXT,
	platform TEXT,
	video_id TEXT,
	duration REAL,
	view_count INTEGER,
	upload_date TEXT,
	genre TEXT,
	mood TEXT,
	tags TEXT,
	analysis_result TEXT,
	thumbnail_path TEXT,
	scenes_count INTEGER DEFAULT 0,
	created_at TEXT,
	updated_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_videos_url ON videos(url);
CREATE INDEX IF NOT EXISTS idx_videos_platform ON videos(platform);
CREATE INDEX IF NOT EXISTS idx_videos_genre ON videos(genre);
CREATE INDEX IF NOT EXISTS idx_videos_created_at ON videos(created_at);
`

// Store wraps a bounded *sql.DB configured for WAL journaling and a
// busy-timeout, so concurrent readers never block on a writer for more
// than 30 seconds and the pool itself enforces the design's
// POOL_EXHAUSTED behavior via acquire.
type Store struct {
	db *sql.DB
}

// Open creates (or attaches to) the sqlite database at path, applies the
// schema, and configures the connection pool per §4.3.1: WAL mode,
// 30-second busy-timeout, autocommit, and a hard cap of maxConns open
// connections.
func Open(path string, maxConns int) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
	}
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=30000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return &Store{db: db}, nil
}

// OpenWithDB wraps an already-configured *sql.DB, used by tests to swap
// in a github.com/DATA-DOG/go-sqlmock connection.
func OpenWithDB(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Close() error {
	return s.db.Close()
}

// acquire blocks up to config.PoolAcquireTimeout for a connection,
// surfacing KindPoolExhausted on timeout rather than letting the caller
// hang indefinitely, per §4.3.1's get_connection contract.
func (s *Store) acquire(ctx context.Context) (*sql.Conn, context.CancelFunc, error) {
	acquireCtx, cancel := context.WithTimeout(ctx, config.PoolAcquireTimeout)
	conn, err := s.db.Conn(acquireCtx)
	if err != nil {
		cancel()
		return nil, nil, pipelineerrors.Wrap(pipelineerrors.KindPoolExhausted, "no connection available", err)
	}
	return conn, cancel, nil
}

// Upsert inserts a new row or updates the existing one by URL, refreshing
// updated_at on the winning write. The INSERT...ON CONFLICT form keeps
// this a single round trip, so two concurrent upserts to the same URL
// resolve with last-writer-wins and no explicit transaction needed.
func (s *Store) Upsert(ctx context.Context, r model.VideoRecord) (int64, error) {
	if !r.Valid() {
		return 0, pipelineerrors.New(pipelineerrors.KindAnalysisFailed, "record fails genre/tags invariant")
	}

	conn, cancel, err := s.acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer cancel()
	defer conn.Close()

	tagsJSON, err := json.Marshal(r.Tags)
	if err != nil {
		return 0, fmt.Errorf("marshaling tags: %w", err)
	}

	now := config.Clock.GetTime().UTC().Format(time.RFC3339)

	const stmt = `
INSERT INTO videos (url, title, platform, video_id, duration, view_count, upload_date, genre, mood, tags, analysis_result, thumbnail_path, scenes_count, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(url) DO UPDATE SET
	title = excluded.title,
	platform = excluded.platform,
	video_id = excluded.video_id,
	duration = excluded.duration,
	view_count = excluded.view_count,
	upload_date = excluded.upload_date,
	genre = excluded.genre,
	mood = excluded.mood,
	tags = excluded.tags,
	analysis_result = excluded.analysis_result,
	thumbnail_path = excluded.thumbnail_path,
	scenes_count = excluded.scenes_count,
	updated_at = excluded.updated_at
`
	_, err = conn.ExecContext(ctx, stmt,
		r.URL, r.Title, string(r.Platform), r.VideoID, r.Duration, r.ViewCount, r.UploadDate,
		r.Genre, r.Mood, string(tagsJSON), string(r.AnalysisResult), r.ThumbnailPath, r.ScenesCount,
		now, now,
	)
	if err != nil {
		return 0, fmt.Errorf("upserting video: %w", err)
	}

	row := conn.QueryRowContext(ctx, `SELECT id FROM videos WHERE url = ?`, r.URL)
	var id int64
	if err := row.Scan(&id); err != nil {
		return 0, fmt.Errorf("fetching upserted id: %w", err)
	}
	return id, nil
}

const selectColumns = `id, url, title, platform, video_id, duration, view_count, upload_date, genre, mood, tags, analysis_result, thumbnail_path, scenes_count, created_at, updated_at`

func scanRecord(row interface{ Scan(...any) error }) (model.VideoRecord, error) {
	var r model.VideoRecord
	var platform, tagsJSON, analysisJSON string
	var createdAt, updatedAt string
	if err := row.Scan(
		&r.ID, &r.URL, &r.Title, &platform, &r.VideoID, &r.Duration, &r.ViewCount, &r.UploadDate,
		&r.Genre, &r.Mood, &tagsJSON, &analysisJSON, &r.ThumbnailPath, &r.ScenesCount,
		&createdAt, &updatedAt,
	); err != nil {
		return model.VideoRecord{}, err
	}
	r.Platform = model.Platform(platform)
	if tagsJSON != "" {
		_ = json.Unmarshal([]byte(tagsJSON), &r.Tags)
	}
	if analysisJSON != "" {
		r.AnalysisResult = []byte(analysisJSON)
	}
	r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	r.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return r, nil
}

func (s *Store) GetByURL(ctx context.Context, url string) (model.VideoRecord, error) {
	conn, cancel, err := s.acquire(ctx)
	if err != nil {
		return model.VideoRecord{}, err
	}
	defer cancel()
	defer conn.Close()

	row := conn.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM videos WHERE url = ?`, url)
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return model.VideoRecord{}, nil
	}
	return rec, err
}

func (s *Store) GetByID(ctx context.Context, id int64) (model.VideoRecord, error) {
	conn, cancel, err := s.acquire(ctx)
	if err != nil {
		return model.VideoRecord{}, err
	}
	defer cancel()
	defer conn.Close()

	row := conn.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM videos WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return model.VideoRecord{}, nil
	}
	return rec, err
}

func (s *Store) DeleteByID(ctx context.Context, id int64) error {
	conn, cancel, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	defer cancel()
	defer conn.Close()

	_, err = conn.ExecContext(ctx, `DELETE FROM videos WHERE id = ?`, id)
	return err
}

// Recent returns the most recently created rows, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]model.VideoRecord, error) {
	conn, cancel, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, `SELECT `+selectColumns+` FROM videos ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRows(rows)
}

func collectRows(rows *sql.Rows) ([]model.VideoRecord, error) {
	var out []model.VideoRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
