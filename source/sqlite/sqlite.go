// Package sqlite provides a SQLite-backed ingestor for source nodes.
//
// A ColumnSource reads one numeric column of a table into a 1-D buffer, so a
// graph can be fed from a lightweight, serverless database file (or an
// in-memory database in tests) without any server process.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/lazygraph/lazygraph/buffer"
)

// Options configuration for a column source.
type Options struct {
	// Path is the database file path, or ":memory:".
	Path string
	// Table is the table to read from.
	Table string
	// Column is the numeric column to read.
	Column string
	// OrderBy optionally fixes the row order; defaults to "rowid".
	OrderBy string
}

// ColumnSource reads a numeric column of a SQLite table into a buffer. It
// implements graph.Ingestor.
type ColumnSource struct {
	db      *sql.DB
	table   string
	column  string
	orderBy string
}

// NewColumnSource opens the database and prepares a column source.
func NewColumnSource(opts Options) (*ColumnSource, error) {
	if opts.Table == "" || opts.Column == "" {
		return nil, fmt.Errorf("table and column are required")
	}
	db, err := sql.Open("sqlite3", opts.Path)
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}
	orderBy := opts.OrderBy
	if orderBy == "" {
		orderBy = "rowid"
	}
	return &ColumnSource{
		db:      db,
		table:   opts.Table,
		column:  opts.Column,
		orderBy: orderBy,
	}, nil
}

// NewColumnSourceWithDB wraps an existing database handle. Useful for sharing
// one handle across several column sources.
func NewColumnSourceWithDB(db *sql.DB, table, column string) *ColumnSource {
	return &ColumnSource{db: db, table: table, column: column, orderBy: "rowid"}
}

// Fetch reads the column into a 1-D float64 buffer in row order.
func (s *ColumnSource) Fetch(ctx context.Context) (*buffer.Buffer, error) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s", s.column, s.table, s.orderBy)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to read column %s.%s: %w", s.table, s.column, err)
	}
	defer rows.Close()

	var data []float64
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan column %s.%s: %w", s.table, s.column, err)
		}
		data = append(data, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read column %s.%s: %w", s.table, s.column, err)
	}

	return buffer.NewFloat64(buffer.Shape{len(data)}, data)
}

// Close closes the database connection.
func (s *ColumnSource) Close() error {
	return s.db.Close()
}
