package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Record is one finished organize run.
type Record struct {
	ID               int64     `json:"id"`
	WorkflowID       string    `json:"workflowId"`
	SeriesName       string    `json:"seriesName"`
	ShowName         string    `json:"showName"`
	Stage            string    `json:"stage"`
	FoldersCompleted int       `json:"foldersCompleted"`
	FoldersFailed    int       `json:"foldersFailed"`
	EpisodesRenamed  int       `json:"episodesRenamed"`
	Error            string    `json:"error,omitempty"`
	FinishedAt       time.Time `json:"finishedAt"`
}

// Store manages run-history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    workflow_id TEXT NOT NULL,
    series_name TEXT NOT NULL,
    show_name TEXT NOT NULL DEFAULT '',
    stage TEXT NOT NULL,
    folders_completed INTEGER NOT NULL DEFAULT 0,
    folders_failed INTEGER NOT NULL DEFAULT 0,
    episodes_renamed INTEGER NOT NULL DEFAULT 0,
    error TEXT NOT NULL DEFAULT '',
    finished_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_finished_at ON runs(finished_at DESC);
`

// Open opens (and creates when missing) the history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply history schema: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Append stores one run record.
func (s *Store) Append(ctx context.Context, record Record) error {
	finished := record.FinishedAt
	if finished.IsZero() {
		finished = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (workflow_id, series_name, show_name, stage, folders_completed, folders_failed, episodes_renamed, error, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.WorkflowID,
		record.SeriesName,
		record.ShowName,
		record.Stage,
		record.FoldersCompleted,
		record.FoldersFailed,
		record.EpisodesRenamed,
		record.Error,
		finished.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("append run record: %w", err)
	}
	return nil
}

// Recent returns the newest records, most recent first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, workflow_id, series_name, show_name, stage, folders_completed, folders_failed, episodes_renamed, error, finished_at
		 FROM runs ORDER BY finished_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query run records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var record Record
		var finished string
		if err := rows.Scan(
			&record.ID,
			&record.WorkflowID,
			&record.SeriesName,
			&record.ShowName,
			&record.Stage,
			&record.FoldersCompleted,
			&record.FoldersFailed,
			&record.EpisodesRenamed,
			&record.Error,
			&finished,
		); err != nil {
			return nil, fmt.Errorf("scan run record: %w", err)
		}
		if parsed, parseErr := time.Parse(time.RFC3339, finished); parseErr == nil {
			record.FinishedAt = parsed
		}
		records = append(records, record)
	}
	return records, rows.Err()
}
