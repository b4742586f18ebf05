// Package sqlite provides a SQLite implementation of the RunHistory interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/ersonp/etov/internal/domain/entities"
)

// timeLayout is fixed-width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Repository implements ports.RunHistory using SQLite.
type Repository struct {
	db   *sql.DB
	path string
}

// NewRepository opens (or creates) the history database at path.
func NewRepository(path string) (*Repository, error) {
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	// Enable foreign keys for referential integrity
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	// Set busy timeout to avoid "database is locked" errors
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	return &Repository{
		db:   db,
		path: path,
	}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Path returns the database file path.
func (r *Repository) Path() string {
	return r.path
}

// EnsureSchema creates the database schema if it doesn't exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	schema := `
	-- One row per pipeline run
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		source_path TEXT NOT NULL,
		output_dir TEXT NOT NULL,
		status TEXT NOT NULL,
		perfumes INTEGER NOT NULL DEFAULT 0,
		accords INTEGER NOT NULL DEFAULT 0,
		files_written INTEGER NOT NULL DEFAULT 0,
		error TEXT,
		started_at TEXT NOT NULL,
		finished_at TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	-- Accord rows that matched no perfume during a run
	CREATE TABLE IF NOT EXISTS unresolved_keys (
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		row INTEGER NOT NULL,
		key TEXT NOT NULL,
		name TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_unresolved_run ON unresolved_keys(run_id);
	`

	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// SaveRun inserts or updates a run and replaces its unresolved keys.
func (r *Repository) SaveRun(ctx context.Context, run *entities.Run) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query := `
		INSERT INTO runs (id, source_path, output_dir, status, perfumes, accords, files_written, error, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			perfumes = excluded.perfumes,
			accords = excluded.accords,
			files_written = excluded.files_written,
			error = excluded.error,
			finished_at = excluded.finished_at
	`
	if _, err = tx.ExecContext(ctx, query,
		run.ID,
		run.SourcePath,
		run.OutputDir,
		string(run.Status),
		run.Perfumes,
		run.Accords,
		run.FilesWritten,
		nullString(run.Error),
		formatTime(run.StartedAt),
		nullTime(run.FinishedAt),
	); err != nil {
		return fmt.Errorf("saving run: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM unresolved_keys WHERE run_id = ?`, run.ID); err != nil {
		return fmt.Errorf("clearing unresolved keys: %w", err)
	}

	if len(run.Unresolved) > 0 {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO unresolved_keys (run_id, row, key, name) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("preparing unresolved insert: %w", err)
		}
		defer stmt.Close()

		for _, u := range run.Unresolved {
			if _, err := stmt.ExecContext(ctx, run.ID, u.Row, u.Key, u.Name); err != nil {
				return fmt.Errorf("saving unresolved key %q: %w", u.Key, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs first, with their unresolved keys.
func (r *Repository) ListRuns(ctx context.Context, limit int) ([]entities.Run, error) {
	query := `
		SELECT id, source_path, output_dir, status, perfumes, accords, files_written, error, started_at, finished_at
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []entities.Run
	index := make(map[string]int)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		index[run.ID] = len(runs)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachUnresolved(ctx, runs, index, limit); err != nil {
		return nil, err
	}
	return runs, nil
}

// ListUnresolved returns the unresolved keys recorded for a run.
func (r *Repository) ListUnresolved(ctx context.Context, runID string) ([]entities.UnresolvedKey, error) {
	query := `SELECT row, key, name FROM unresolved_keys WHERE run_id = ? ORDER BY rowid`
	rows, err := r.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("querying unresolved keys: %w", err)
	}
	defer rows.Close()

	var keys []entities.UnresolvedKey
	for rows.Next() {
		var u entities.UnresolvedKey
		if err := rows.Scan(&u.Row, &u.Key, &u.Name); err != nil {
			return nil, fmt.Errorf("scanning unresolved key: %w", err)
		}
		keys = append(keys, u)
	}
	return keys, rows.Err()
}

// attachUnresolved loads the unresolved keys of the listed runs in one query.
func (r *Repository) attachUnresolved(ctx context.Context, runs []entities.Run, index map[string]int, limit int) error {
	if len(runs) == 0 {
		return nil
	}

	query := `
		SELECT u.run_id, u.row, u.key, u.name
		FROM unresolved_keys u
		JOIN (SELECT id FROM runs ORDER BY started_at DESC LIMIT ?) recent ON recent.id = u.run_id
		ORDER BY u.rowid
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return fmt.Errorf("querying unresolved keys: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var runID string
		var u entities.UnresolvedKey
		if err := rows.Scan(&runID, &u.Row, &u.Key, &u.Name); err != nil {
			return fmt.Errorf("scanning unresolved key: %w", err)
		}
		if i, ok := index[runID]; ok {
			runs[i].Unresolved = append(runs[i].Unresolved, u)
		}
	}
	return rows.Err()
}

func scanRun(rows *sql.Rows) (entities.Run, error) {
	var run entities.Run
	var status, startedAt string
	var runErr, finishedAt sql.NullString

	if err := rows.Scan(
		&run.ID,
		&run.SourcePath,
		&run.OutputDir,
		&status,
		&run.Perfumes,
		&run.Accords,
		&run.FilesWritten,
		&runErr,
		&startedAt,
		&finishedAt,
	); err != nil {
		return entities.Run{}, fmt.Errorf("scanning run: %w", err)
	}

	run.Status = entities.RunStatus(status)
	run.Error = runErr.String

	var err error
	if run.StartedAt, err = parseTime(startedAt); err != nil {
		return entities.Run{}, err
	}
	if finishedAt.Valid {
		if run.FinishedAt, err = parseTime(finishedAt.String); err != nil {
			return entities.Run{}, err
		}
	}
	return run, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t, nil
}

func nullTime(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(t), Valid: true}
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
