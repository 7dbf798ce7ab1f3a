package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const catalogSchema = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    model TEXT NOT NULL,
    method TEXT NOT NULL,
    created_at TEXT NOT NULL,
    seed INTEGER NOT NULL,
    trajectories INTEGER NOT NULL,
    end_time REAL NOT NULL,
    events INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_model ON runs(model, created_at);
`

// timeLayout is fixed width so created_at sorts lexicographically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Catalog indexes stored runs in SQLite so listings need not read every
// run directory.
type Catalog struct {
	db *sql.DB
}

func OpenCatalog(path string) (*Catalog, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(catalogSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init catalog schema: %w", err)
	}
	return &Catalog{db: db}, nil
}

func (c *Catalog) Close() error {
	return c.db.Close()
}

func (c *Catalog) Put(ctx context.Context, meta *RunMetadata) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs (id, model, method, created_at, seed, trajectories, end_time, events)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		meta.ID, meta.Model, meta.Method, meta.Timestamp.UTC().Format(timeLayout),
		meta.Seed, meta.Trajectories, meta.EndTime, meta.Events)
	if err != nil {
		return fmt.Errorf("catalog put %s: %w", meta.ID, err)
	}
	return nil
}

func (c *Catalog) Delete(ctx context.Context, id string) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	return err
}

// ListOptions filters a catalog listing. Zero values mean no filter.
type ListOptions struct {
	Model string
	Limit int
}

// List returns catalog entries, newest first.
func (c *Catalog) List(ctx context.Context, opts ListOptions) ([]RunMetadata, error) {
	query := `SELECT id, model, method, created_at, seed, trajectories, end_time, events FROM runs`
	var args []any
	if opts.Model != "" {
		query += ` WHERE model = ?`
		args = append(args, opts.Model)
	}
	query += ` ORDER BY created_at DESC`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("catalog list: %w", err)
	}
	defer rows.Close()

	var runs []RunMetadata
	for rows.Next() {
		var (
			meta    RunMetadata
			created string
		)
		if err := rows.Scan(&meta.ID, &meta.Model, &meta.Method, &created,
			&meta.Seed, &meta.Trajectories, &meta.EndTime, &meta.Events); err != nil {
			return nil, err
		}
		meta.Timestamp, err = time.Parse(timeLayout, created)
		if err != nil {
			return nil, fmt.Errorf("catalog entry %s: %w", meta.ID, err)
		}
		runs = append(runs, meta)
	}
	return runs, rows.Err()
}

func (c *Catalog) Count(ctx context.Context) (int, error) {
	var n int
	err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&n)
	return n, err
}
