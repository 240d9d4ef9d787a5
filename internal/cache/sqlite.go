package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/rcliao/contacts/internal/model"
)

// SQLiteCache implements Cache as a single named slot in a SQLite database.
type SQLiteCache struct {
	db   *sql.DB
	path string
	key  string
}

// Open opens or creates the cache database at path. Snapshots are stored
// under key, or DefaultKey when key is empty.
func Open(path, key string) (*SQLiteCache, error) {
	if key == "" {
		key = DefaultKey
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}

	c := &SQLiteCache{db: db, path: path, key: key}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return c, nil
}

func (c *SQLiteCache) migrate() error {
	_, err := c.db.Exec(`
	CREATE TABLE IF NOT EXISTS cache_slots (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);`)
	return err
}

// Path returns the database file path.
func (c *SQLiteCache) Path() string { return c.path }

// Key returns the slot name.
func (c *SQLiteCache) Key() string { return c.key }

func (c *SQLiteCache) Read(ctx context.Context) ([]model.Contact, bool, error) {
	var value string
	err := c.db.QueryRowContext(ctx,
		`SELECT value FROM cache_slots WHERE key = ?`, c.key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: read %s: %v", ErrUnavailable, c.key, err)
	}

	var contacts []model.Contact
	if err := json.Unmarshal([]byte(value), &contacts); err != nil {
		return nil, false, fmt.Errorf("%w: decode %s: %v", ErrUnavailable, c.key, err)
	}
	if contacts == nil {
		contacts = []model.Contact{}
	}
	return contacts, true, nil
}

func (c *SQLiteCache) Write(ctx context.Context, contacts []model.Contact) error {
	if contacts == nil {
		contacts = []model.Contact{}
	}
	b, err := json.Marshal(contacts)
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrUnavailable, err)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = c.db.ExecContext(ctx,
		`INSERT INTO cache_slots (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		c.key, string(b), now)
	if err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrUnavailable, c.key, err)
	}
	return nil
}

// Clear drops the snapshot so the next Read reports nothing cached.
func (c *SQLiteCache) Clear(ctx context.Context) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM cache_slots WHERE key = ?`, c.key)
	if err != nil {
		return fmt.Errorf("%w: clear %s: %v", ErrUnavailable, c.key, err)
	}
	return nil
}

func (c *SQLiteCache) Close() error {
	return c.db.Close()
}
