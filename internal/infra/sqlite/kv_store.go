// Package sqlite implements the local durable key-value store on an embedded
// SQLite file (pure Go driver, no cgo).
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // registers "sqlite"
	"quiz-intake-service/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
	bucket     TEXT NOT NULL,
	key        TEXT NOT NULL,
	value      BLOB NOT NULL,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (bucket, key)
)`

// KVStore implements app.KVStore on a single SQLite table. Every write is
// committed before the call returns.
type KVStore struct {
	db *sql.DB
}

// Open opens (creating if needed) the SQLite file at path and applies the schema.
func Open(ctx context.Context, path string) (*KVStore, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: create dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// Single writer: keep the pool tiny to avoid busy errors.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}
	pragmas := []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA synchronous = FULL;",
		"PRAGMA busy_timeout = 5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite: pragma %q: %w", p, err)
		}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: schema: %w", err)
	}
	return &KVStore{db: db}, nil
}

// Close closes the underlying database.
func (s *KVStore) Close() error {
	return s.db.Close()
}

func (s *KVStore) Add(ctx context.Context, bucket, key string, value []byte) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (bucket, key, value) VALUES (?, ?, ?) ON CONFLICT (bucket, key) DO NOTHING`,
		bucket, key, value)
	if err != nil {
		return fmt.Errorf("sqlite: add: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: add: %w", err)
	}
	if n == 0 {
		return domain.ErrKeyExists
	}
	return nil
}

func (s *KVStore) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE bucket = ? AND key = ?`, bucket, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get: %w", err)
	}
	return value, nil
}

func (s *KVStore) GetAll(ctx context.Context, bucket string) (map[string][]byte, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM kv WHERE bucket = ?`, bucket)
	if err != nil {
		return nil, fmt.Errorf("sqlite: get all: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]byte)
	for rows.Next() {
		var key string
		var value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("sqlite: scan: %w", err)
		}
		out[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: rows: %w", err)
	}
	return out, nil
}

func (s *KVStore) Put(ctx context.Context, bucket, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (bucket, key, value) VALUES (?, ?, ?)
		 ON CONFLICT (bucket, key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		bucket, key, value)
	if err != nil {
		return fmt.Errorf("sqlite: put: %w", err)
	}
	return nil
}

func (s *KVStore) Delete(ctx context.Context, bucket, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE bucket = ? AND key = ?`, bucket, key); err != nil {
		return fmt.Errorf("sqlite: delete: %w", err)
	}
	return nil
}

func (s *KVStore) Clear(ctx context.Context, bucket string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE bucket = ?`, bucket); err != nil {
		return fmt.Errorf("sqlite: clear: %w", err)
	}
	return nil
}
