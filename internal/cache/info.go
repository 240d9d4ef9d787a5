package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"time"
)

// Info describes the cache database and its snapshot slot.
type Info struct {
	Path       string     `json:"path"`
	Key        string     `json:"key"`
	SizeBytes  int64      `json:"size_bytes"`
	Cached     bool       `json:"cached"`
	Contacts   int        `json:"contacts"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
	TotalSlots int        `json:"total_slots"`
}

// Info returns cache statistics.
func (c *SQLiteCache) Info(ctx context.Context) (*Info, error) {
	info := &Info{Path: c.path, Key: c.key}

	if st, err := os.Stat(c.path); err == nil {
		info.SizeBytes = st.Size()
	}

	c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cache_slots`).Scan(&info.TotalSlots)

	var value, updated string
	err := c.db.QueryRowContext(ctx,
		`SELECT value, updated_at FROM cache_slots WHERE key = ?`, c.key).Scan(&value, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return info, nil
	}
	if err != nil {
		return info, err
	}

	info.Cached = true
	if t, err := time.Parse(time.RFC3339Nano, updated); err == nil {
		info.UpdatedAt = &t
	}
	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(value), &raw); err == nil {
		info.Contacts = len(raw)
	}
	return info, nil
}
