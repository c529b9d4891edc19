// Package srccache stores generated lowered source in SQLite so that compiled
// closures can skip code generation across runs.
package srccache

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Cache is a SQLite-backed source cache. It satisfies the VM's SourceCache
// interface.
type Cache struct {
	db *sql.DB
	// run identifies the process that wrote an entry.
	run string
}

// Open creates or opens a cache database at path.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to cache: %w", err)
	}
	// SQLite allows one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Cache{db: db, run: uuid.NewString()}, nil
}

// Close closes the database.
func (c *Cache) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Get returns the source stored under key.
func (c *Cache) Get(key string) (string, bool, error) {
	var src string
	err := c.db.QueryRow(`SELECT source FROM lowered WHERE key = ?`, key).Scan(&src)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return "", false, nil
	case err != nil:
		return "", false, fmt.Errorf("cache lookup: %w", err)
	}
	return src, true, nil
}

// Put stores src under key, replacing any previous entry.
func (c *Cache) Put(key, src string) error {
	_, err := c.db.Exec(
		`INSERT INTO lowered (key, source, run_id, created) VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET source = excluded.source, run_id = excluded.run_id, created = excluded.created`,
		key, src, c.run, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("cache store: %w", err)
	}
	return nil
}

// Len returns the number of cached entries.
func (c *Cache) Len() (int, error) {
	var n int
	if err := c.db.QueryRow(`SELECT COUNT(*) FROM lowered`).Scan(&n); err != nil {
		return 0, fmt.Errorf("cache count: %w", err)
	}
	return n, nil
}
