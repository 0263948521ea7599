// Package sqlite provides a SQLite-backed sink for exported values.
//
// Each exported buffer is upserted into a results table keyed by its export
// name, with the buffer serialized as a JSON envelope. Being file-based and
// serverless, it suits batch pipelines that want their latest results
// queryable without any extra infrastructure.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/lazygraph/lazygraph/buffer"
)

// Options configuration for the SQLite sink.
type Options struct {
	// Path is the database file path, or ":memory:".
	Path string
	// TableName defaults to "results".
	TableName string
}

// Sink upserts exported buffers into a SQLite results table.
type Sink struct {
	db        *sql.DB
	tableName string
}

// NewSink opens the database and creates the results table if needed.
func NewSink(opts Options) (*Sink, error) {
	db, err := sql.Open("sqlite3", opts.Path)
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	tableName := opts.TableName
	if tableName == "" {
		tableName = "results"
	}

	s := &Sink{db: db, tableName: tableName}
	if err := s.initSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Sink) initSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			name TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at DATETIME NOT NULL
		);
	`, s.tableName)

	_, err := s.db.ExecContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Sink) Close() error {
	return s.db.Close()
}

// Write upserts a buffer under its export name.
func (s *Sink) Write(ctx context.Context, name string, buf *buffer.Buffer) error {
	value, err := json.Marshal(buf)
	if err != nil {
		return fmt.Errorf("failed to marshal buffer %s: %w", name, err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (name, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, s.tableName)

	_, err = s.db.ExecContext(ctx, query, name, string(value), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to write result %s: %w", name, err)
	}
	return nil
}

// Read loads a previously exported buffer by name.
func (s *Sink) Read(ctx context.Context, name string) (*buffer.Buffer, error) {
	query := fmt.Sprintf(`SELECT value FROM %s WHERE name = ?`, s.tableName)

	var value string
	err := s.db.QueryRowContext(ctx, query, name).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("result not found: %s", name)
		}
		return nil, fmt.Errorf("failed to read result %s: %w", name, err)
	}

	var buf buffer.Buffer
	if err := json.Unmarshal([]byte(value), &buf); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result %s: %w", name, err)
	}
	return &buf, nil
}
