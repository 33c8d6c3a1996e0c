package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/codebuildervaibhav/video-translator-bot/internal/types"
)

// ErrJobNotFound is returned by GetJob for unknown ids.
var ErrJobNotFound = errors.New("job not found")

// JobRecord is one finished job as kept in the history table.
type JobRecord struct {
	ID          string         `json:"id"`
	RequesterID int64          `json:"requester_id"`
	Requester   string         `json:"requester"`
	RequestID   int            `json:"request_id"`
	ChatID      int64          `json:"chat_id"`
	State       types.JobState `json:"state"`
	Segments    int            `json:"segments"`
	VideoBytes  int64          `json:"video_bytes"`
	Error       string         `json:"error,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	FinishedAt  time.Time      `json:"finished_at"`
}

// Duration is the wall time from receipt to terminal state.
func (r JobRecord) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.CreatedAt)
}

// RecordFromJob snapshots a job for the history table.
func RecordFromJob(job *types.Job) JobRecord {
	rec := JobRecord{
		ID:          job.ID,
		RequesterID: job.RequesterID,
		Requester:   job.Requester,
		RequestID:   job.RequestID,
		ChatID:      job.ChatID,
		State:       job.State,
		Segments:    job.Segments,
		VideoBytes:  job.VideoSize,
		CreatedAt:   job.CreatedAt,
		FinishedAt:  job.FinishedAt,
	}
	if job.Error != nil {
		rec.Error = job.Error.Error()
	}
	return rec
}

// JobStore handles SQLite database operations for job history
type JobStore struct {
	db *sql.DB
}

// NewJobStore opens (and creates if needed) the history database
func NewJobStore(dbPath string) (*JobStore, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// workers write concurrently; sqlite wants a single writer
	db.SetMaxOpenConns(1)

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS jobs (
		id TEXT PRIMARY KEY,
		requester_id INTEGER NOT NULL,
		requester TEXT NOT NULL DEFAULT '',
		request_id INTEGER NOT NULL,
		chat_id INTEGER NOT NULL,
		state TEXT NOT NULL,
		segments INTEGER NOT NULL DEFAULT 0,
		video_bytes INTEGER NOT NULL DEFAULT 0,
		error TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL,
		finished_at INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_jobs_created_at ON jobs(created_at);
	CREATE INDEX IF NOT EXISTS idx_jobs_requester ON jobs(requester_id);
	`

	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &JobStore{db: db}, nil
}

// SaveJob inserts or replaces the record for rec.ID
func (s *JobStore) SaveJob(ctx context.Context, rec JobRecord) error {
	query := `
	INSERT OR REPLACE INTO jobs
		(id, requester_id, requester, request_id, chat_id, state, segments, video_bytes, error, created_at, finished_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		rec.ID, rec.RequesterID, rec.Requester, rec.RequestID, rec.ChatID,
		string(rec.State), rec.Segments, rec.VideoBytes, rec.Error,
		toMillis(rec.CreatedAt), toMillis(rec.FinishedAt))
	if err != nil {
		return fmt.Errorf("failed to save job %s: %w", rec.ID, err)
	}
	return nil
}

const selectJobs = `
	SELECT id, requester_id, requester, request_id, chat_id, state, segments, video_bytes, error, created_at, finished_at
	FROM jobs`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (JobRecord, error) {
	var (
		rec                 JobRecord
		state               string
		createdAt, finished int64
	)
	err := row.Scan(&rec.ID, &rec.RequesterID, &rec.Requester, &rec.RequestID, &rec.ChatID,
		&state, &rec.Segments, &rec.VideoBytes, &rec.Error, &createdAt, &finished)
	if err != nil {
		return JobRecord{}, err
	}
	rec.State = types.JobState(state)
	rec.CreatedAt = fromMillis(createdAt)
	rec.FinishedAt = fromMillis(finished)
	return rec, nil
}

// GetJob retrieves one job by id
func (s *JobStore) GetJob(ctx context.Context, id string) (JobRecord, error) {
	row := s.db.QueryRowContext(ctx, selectJobs+` WHERE id = ?`, id)
	rec, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return JobRecord{}, ErrJobNotFound
	}
	if err != nil {
		return JobRecord{}, fmt.Errorf("failed to get job: %w", err)
	}
	return rec, nil
}

// ListJobs returns the most recent jobs first
func (s *JobStore) ListJobs(ctx context.Context, limit int) ([]JobRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, selectJobs+` ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	jobs := make([]JobRecord, 0, limit)
	for rows.Next() {
		rec, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, rec)
	}
	return jobs, rows.Err()
}

// Close closes the database connection
func (s *JobStore) Close() error {
	return s.db.Close()
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
