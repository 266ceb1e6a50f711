package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/OriginsHospital/origins-frontend-hms-sub000/internal/model"

	_ "modernc.org/sqlite"
)

// Cache is a read-mostly local copy of task list data, refreshed after every
// successful fetch. It lets the list screen render instantly on startup and
// keeps working (clearly marked stale) when the API is unreachable.
//
// Transient edit state (pending transitions, draft comments, alert drafts)
// is never written here.
type Cache struct {
	db *sql.DB
}

// Open opens (creating if needed) the cache database at path.
func Open(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL + busy_timeout avoid "database is locked" flakiness when a CLI
	// command runs while the TUI is open.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Cache{db: db}, nil
}

func migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS tasks (
			task_id TEXT PRIMARY KEY,
			code TEXT NOT NULL,
			status TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL,
			fetched_at_unixms INTEGER NOT NULL,
			payload_json TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_updated ON tasks(updated_at_unixms DESC);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("cache migrate: %w", err)
		}
	}
	return nil
}

func (c *Cache) Close() error { return c.db.Close() }

// PutTasks upserts a fetched page of tasks.
func (c *Cache) PutTasks(ctx context.Context, tasks []model.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().UnixMilli()
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO tasks
		(task_id, code, status, updated_at_unixms, fetched_at_unixms, payload_json)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(task_id) DO UPDATE SET
			code=excluded.code,
			status=excluded.status,
			updated_at_unixms=excluded.updated_at_unixms,
			fetched_at_unixms=excluded.fetched_at_unixms,
			payload_json=excluded.payload_json`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for _, t := range tasks {
		payload, err := json.Marshal(t)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, t.ID, t.Code, string(t.Status), t.UpdatedAt.UTC().UnixMilli(), now, string(payload)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Tasks returns every cached task, most recently updated first, along with
// the oldest fetch time so callers can tell the user how stale the copy is.
func (c *Cache) Tasks(ctx context.Context) ([]model.Task, time.Time, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT payload_json, fetched_at_unixms FROM tasks ORDER BY updated_at_unixms DESC`)
	if err != nil {
		return nil, time.Time{}, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.Task
	oldest := int64(0)
	for rows.Next() {
		var payload string
		var fetched int64
		if err := rows.Scan(&payload, &fetched); err != nil {
			return nil, time.Time{}, err
		}
		var t model.Task
		if err := json.Unmarshal([]byte(payload), &t); err != nil {
			// A row written by an incompatible version; skip rather than
			// fail the whole listing.
			continue
		}
		if oldest == 0 || fetched < oldest {
			oldest = fetched
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, time.Time{}, err
	}
	var fetchedAt time.Time
	if oldest > 0 {
		fetchedAt = time.UnixMilli(oldest).UTC()
	}
	return out, fetchedAt, nil
}

// Task returns a single cached task by id.
func (c *Cache) Task(ctx context.Context, taskID string) (*model.Task, bool, error) {
	var payload string
	err := c.db.QueryRowContext(ctx,
		`SELECT payload_json FROM tasks WHERE task_id = ?`, taskID).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var t model.Task
	if err := json.Unmarshal([]byte(payload), &t); err != nil {
		return nil, false, err
	}
	return &t, true, nil
}
