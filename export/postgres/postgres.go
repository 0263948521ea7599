// Package postgres provides a PostgreSQL-backed sink for exported values.
//
// Each exported buffer is upserted into a results table keyed by its export
// name, with the buffer serialized as JSONB. Suits pipelines whose consumers
// already live in Postgres.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lazygraph/lazygraph/buffer"
)

// DBPool defines the interface for the database connection pool.
type DBPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// Options configuration for the Postgres sink.
type Options struct {
	ConnString string
	// TableName defaults to "results".
	TableName string
}

// Sink upserts exported buffers into a Postgres results table.
type Sink struct {
	pool      DBPool
	tableName string
}

// NewSink creates a new Postgres sink backed by a fresh connection pool.
func NewSink(ctx context.Context, opts Options) (*Sink, error) {
	pool, err := pgxpool.New(ctx, opts.ConnString)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	tableName := opts.TableName
	if tableName == "" {
		tableName = "results"
	}

	return &Sink{pool: pool, tableName: tableName}, nil
}

// NewSinkWithPool creates a sink over an existing pool. Useful for testing
// with mocks.
func NewSinkWithPool(pool DBPool, tableName string) *Sink {
	if tableName == "" {
		tableName = "results"
	}
	return &Sink{pool: pool, tableName: tableName}
}

// InitSchema creates the results table if it doesn't exist.
func (s *Sink) InitSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			name TEXT PRIMARY KEY,
			value JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);
	`, s.tableName)

	_, err := s.pool.Exec(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the connection pool.
func (s *Sink) Close() {
	s.pool.Close()
}

// Write upserts a buffer under its export name.
func (s *Sink) Write(ctx context.Context, name string, buf *buffer.Buffer) error {
	value, err := json.Marshal(buf)
	if err != nil {
		return fmt.Errorf("failed to marshal buffer %s: %w", name, err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (name, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at
	`, s.tableName)

	_, err = s.pool.Exec(ctx, query, name, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to write result %s: %w", name, err)
	}
	return nil
}

// Read loads a previously exported buffer by name.
func (s *Sink) Read(ctx context.Context, name string) (*buffer.Buffer, error) {
	query := fmt.Sprintf(`SELECT value FROM %s WHERE name = $1`, s.tableName)

	var value []byte
	err := s.pool.QueryRow(ctx, query, name).Scan(&value)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("result not found: %s", name)
		}
		return nil, fmt.Errorf("failed to read result %s: %w", name, err)
	}

	var buf buffer.Buffer
	if err := json.Unmarshal(value, &buf); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result %s: %w", name, err)
	}
	return &buf, nil
}
