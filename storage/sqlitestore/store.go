// Package sqlitestore provides a SQLite-backed tab storage backend for
// deployments that want slots to survive a process restart without Redis.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/MrEthical07/goGate/storage"
	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS tab_storage (
  scope TEXT NOT NULL,
  key   TEXT NOT NULL,
  value TEXT NOT NULL,
  PRIMARY KEY (scope, key)
)`

// Backend persists tab slots in a single SQLite table.
type Backend struct {
	sqlDB *sql.DB
}

// Open opens (or creates) the database at path and ensures the schema.
func Open(path string) (*Backend, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Backend{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (b *Backend) Close() error {
	if b == nil || b.sqlDB == nil {
		return nil
	}
	return b.sqlDB.Close()
}

// Tab returns the storage view for tabID.
func (b *Backend) Tab(tabID string) (storage.Storage, error) {
	id, err := storage.NormalizeTab(tabID)
	if err != nil {
		return nil, err
	}
	return &tab{backend: b, id: id}, nil
}

type tab struct {
	backend *Backend
	id      string
}

func (t *tab) Read(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := t.backend.sqlDB.QueryRowContext(ctx,
		`SELECT value FROM tab_storage WHERE scope = ? AND key = ?`, t.id, key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: %v", storage.ErrUnavailable, err)
	}
	return value, true, nil
}

func (t *tab) Write(ctx context.Context, key, value string) error {
	_, err := t.backend.sqlDB.ExecContext(ctx,
		`INSERT INTO tab_storage (scope, key, value) VALUES (?, ?, ?)
		 ON CONFLICT(scope, key) DO UPDATE SET value = excluded.value`,
		t.id, key, value,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", storage.ErrUnavailable, err)
	}
	return nil
}

func (t *tab) Delete(ctx context.Context, key string) error {
	_, err := t.backend.sqlDB.ExecContext(ctx,
		`DELETE FROM tab_storage WHERE scope = ? AND key = ?`, t.id, key,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", storage.ErrUnavailable, err)
	}
	return nil
}
