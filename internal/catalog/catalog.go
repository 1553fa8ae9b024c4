package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver
)

// Default timeout for catalog operations
const defaultTimeout = 30 * time.Second

// nextID disambiguates shared-cache in-memory databases within a process.
var nextID atomic.Int64

// File is one filesystem entry recorded during a scan.
type File struct {
	Name    string
	Path    string
	Size    int64
	ModTime time.Time
}

// Catalog holds the scanned file inventory for one run.
type Catalog struct {
	db *sql.DB
}

// Open creates an in-memory catalog. A run persists nothing but the backup
// and the log file, so the inventory lives in memory; shared cache keeps
// the pool's connections on the same database.
func Open(ctx context.Context) (*Catalog, error) {
	dsn := fmt.Sprintf("file:catalog-%d?mode=memory&cache=shared&_busy_timeout=5000", nextID.Add(1))

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}

	// busy_timeout covers writer contention during the scan; lookups
	// afterwards are read-only.
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(time.Hour)

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to catalog: %w", err)
	}

	c := &Catalog{db: db}
	if err := c.initialize(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize catalog schema: %w", err)
	}

	return c, nil
}

func (c *Catalog) initialize(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS files (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		path TEXT NOT NULL UNIQUE,
		size INTEGER NOT NULL DEFAULT 0,
		mod_time INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_files_name ON files(name);
	`

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := c.db.ExecContext(ctx, schema)
	return err
}

// InsertBatch records a batch of files in one transaction.
func (c *Catalog) InsertBatch(ctx context.Context, files []File) error {
	if len(files) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin catalog batch: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO files (name, path, size, mod_time) VALUES (?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare catalog insert: %w", err)
	}
	defer stmt.Close()

	for _, f := range files {
		if _, err := stmt.ExecContext(ctx, f.Name, f.Path, f.Size, f.ModTime.Unix()); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert %s: %w", f.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit catalog batch: %w", err)
	}
	return nil
}

// LookupByName returns the path of a file whose base name matches exactly
// (case-sensitive). When several files share the name, the lexically
// smallest path wins. The second return is false when nothing matches.
func (c *Catalog) LookupByName(ctx context.Context, name string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var path string
	err := c.db.QueryRowContext(ctx,
		`SELECT path FROM files WHERE name = ? ORDER BY path LIMIT 1`, name).Scan(&path)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("lookup %q: %w", name, err)
	}
	return path, true, nil
}

// Count returns the number of files recorded.
func (c *Catalog) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var n int64
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM files`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count catalog: %w", err)
	}
	return n, nil
}

// Close releases the database.
func (c *Catalog) Close() error {
	return c.db.Close()
}
