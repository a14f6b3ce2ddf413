// Package sqlite implements blob.Store in a single SQLite table.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	// Register the github.com/mattn/go-sqlite3 driver as "sqlite3"
	_ "github.com/mattn/go-sqlite3"

	"github.com/papercomputeco/medrag/pkg/blob"
)

const schema = `CREATE TABLE IF NOT EXISTS blobs (
	key        TEXT PRIMARY KEY,
	data       BLOB NOT NULL,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// Store keeps blobs as rows keyed by path.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at dbPath.
func NewStore(ctx context.Context, dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite serializes writers; one connection avoids SQLITE_BUSY churn.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Read(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM blobs WHERE key = ?`, key).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", blob.ErrNotFound, key)
		}
		return nil, fmt.Errorf("reading blob %s: %w", key, err)
	}
	return data, nil
}

func (s *Store) Write(ctx context.Context, key string, data []byte) error {
	if data == nil {
		data = []byte{}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO blobs (key, data, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		key, data,
	)
	if err != nil {
		return fmt.Errorf("writing blob %s: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM blobs WHERE key = ?`, key); err != nil {
		return fmt.Errorf("deleting blob %s: %w", key, err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

var _ blob.Store = (*Store)(nil)
