// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ErrRunNotFound is returned when a run id does not exist in the store.
var ErrRunNotFound = errors.New("run not found")

// RunInfo describes one completed comparison run.
type RunInfo struct {
	ID        int64     `json:"id" yaml:"id"`
	Root      string    `json:"root" yaml:"root"`
	Threshold float64   `json:"threshold" yaml:"threshold"`
	Metric    string    `json:"metric" yaml:"metric"`
	Files     int       `json:"files" yaml:"files"`
	Pairs     int       `json:"pairs" yaml:"pairs"`
	Similar   int       `json:"similar" yaml:"similar"`
	StartedAt time.Time `json:"started_at" yaml:"started_at"`
	Duration  float64   `json:"duration_seconds" yaml:"duration_seconds"`
}

// Store keeps the reports of completed runs in a SQLite database.
type Store struct {
	db *sql.DB
}

// OpenStore opens or creates the report database at path and creates the
// schema if it does not exist.
func OpenStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// OpenExistingStore opens the report database at path. Unlike OpenStore,
// it fails when the file does not exist.
func OpenExistingStore(path string) (*Store, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("opening report database: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("opening report database: %s is a directory", path)
	}
	return OpenStore(path)
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			root TEXT NOT NULL,
			threshold REAL NOT NULL,
			metric TEXT NOT NULL,
			files INTEGER NOT NULL,
			pairs INTEGER NOT NULL,
			similar INTEGER NOT NULL,
			started_at TEXT NOT NULL,
			duration REAL NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS comparisons (
			run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			pct_similar REAL NOT NULL,
			file1 TEXT NOT NULL,
			file2 TEXT NOT NULL,
			PRIMARY KEY (run_id, position)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_comparisons_file1 ON comparisons(file1)`,
		`CREATE INDEX IF NOT EXISTS idx_comparisons_file2 ON comparisons(file2)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// SaveRun stores a run and its rows in one transaction and returns the new
// run id. Rows keep their order.
func (s *Store) SaveRun(ctx context.Context, run RunInfo, rows []Row) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (root, threshold, metric, files, pairs, similar, started_at, duration)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.Root, run.Threshold, run.Metric, run.Files, run.Pairs, len(rows),
		run.StartedAt.UTC().Format(time.RFC3339Nano), run.Duration,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO comparisons (run_id, position, pct_similar, file1, file2) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range rows {
		if _, err := stmt.ExecContext(ctx, runID, i, float64(r.PctSimilar), r.File1, r.File2); err != nil {
			return 0, fmt.Errorf("inserting comparison %s, %s: %w", r.File1, r.File2, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing run: %w", err)
	}
	return runID, nil
}

// Runs lists the stored runs, newest first.
func (s *Store) Runs(ctx context.Context) ([]RunInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, root, threshold, metric, files, pairs, similar, started_at, duration
		 FROM runs ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	runs := []RunInfo{}
	for rows.Next() {
		var (
			run     RunInfo
			started string
		)
		if err := rows.Scan(&run.ID, &run.Root, &run.Threshold, &run.Metric,
			&run.Files, &run.Pairs, &run.Similar, &started, &run.Duration); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		run.StartedAt, err = time.Parse(time.RFC3339Nano, started)
		if err != nil {
			return nil, fmt.Errorf("parsing start time of run %d: %w", run.ID, err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Rows returns the stored rows of a run in their original order. A limit of
// zero or less returns every row.
func (s *Store) Rows(ctx context.Context, runID int64, limit int) ([]Row, error) {
	var exists int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM runs WHERE id = ?`, runID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("checking run %d: %w", runID, err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("%w: %d", ErrRunNotFound, runID)
	}

	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT pct_similar, file1, file2 FROM comparisons
		 WHERE run_id = ? ORDER BY position LIMIT ?`, runID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying comparisons: %w", err)
	}
	defer rows.Close()

	out := []Row{}
	for rows.Next() {
		var (
			r   Row
			pct float64
		)
		if err := rows.Scan(&pct, &r.File1, &r.File2); err != nil {
			return nil, fmt.Errorf("scanning comparison: %w", err)
		}
		r.PctSimilar = Pct(pct)
		out = append(out, r)
	}
	return out, rows.Err()
}
