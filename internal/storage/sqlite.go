package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// callTimeout bounds each store call. The interface is ctx-free (persistence
// is fire-and-forget from the session's point of view), so the implementation
// keeps itself from hanging on a wedged database.
const callTimeout = 5 * time.Second

// SQLite implements Store on a single kv table with a JSONB data column.
type SQLite struct {
	db        *sql.DB
	namespace string
}

// NewSQLite creates the kv table if needed. Keys are prefixed with
// namespace so several sessions can share one database file.
func NewSQLite(ctx context.Context, db *sql.DB, namespace string) (*SQLite, error) {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS kv (
			key  TEXT PRIMARY KEY,
			data JSONB NOT NULL
		)`)
	if err != nil {
		return nil, fmt.Errorf("creating kv table: %w", err)
	}
	return &SQLite{db: db, namespace: namespace}, nil
}

func (s *SQLite) key(k string) string {
	return s.namespace + ":" + k
}

func (s *SQLite) Get(key string, dest any) error {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT json(data) FROM kv WHERE key = ?`, s.key(key),
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(data), dest)
}

func (s *SQLite) Set(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding %q: %w", key, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO kv (key, data) VALUES (?, jsonb(?))
		ON CONFLICT (key) DO UPDATE SET data = excluded.data`,
		s.key(key), string(data),
	)
	return err
}

func (s *SQLite) Remove(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, s.key(key))
	return err
}
