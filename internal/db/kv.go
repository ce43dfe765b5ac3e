package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a key has no value.
var ErrNotFound = errors.New("key not found")

type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries is the key/value store backing durable client state.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

const getValue = `SELECT value FROM kv WHERE key = ?`

func (q *Queries) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := q.db.QueryRowContext(ctx, getValue, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %q: %w", key, err)
	}
	return value, nil
}

const setValue = `
INSERT INTO kv (key, value, updated_at) VALUES (?, ?, strftime('%s', 'now'))
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

func (q *Queries) Set(ctx context.Context, key, value string) error {
	if _, err := q.db.ExecContext(ctx, setValue, key, value); err != nil {
		return fmt.Errorf("failed to write %q: %w", key, err)
	}
	return nil
}

const insertValue = `INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO NOTHING`

// GetOrInsert stores value under key unless one is already present, and
// returns whichever value ends up stored.
func (q *Queries) GetOrInsert(ctx context.Context, key, value string) (string, error) {
	if _, err := q.db.ExecContext(ctx, insertValue, key, value); err != nil {
		return "", fmt.Errorf("failed to write %q: %w", key, err)
	}
	return q.Get(ctx, key)
}

const deleteValue = `DELETE FROM kv WHERE key = ?`

func (q *Queries) Delete(ctx context.Context, key string) error {
	if _, err := q.db.ExecContext(ctx, deleteValue, key); err != nil {
		return fmt.Errorf("failed to delete %q: %w", key, err)
	}
	return nil
}
