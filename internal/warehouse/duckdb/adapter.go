// Package duckdb implements warehouse.Adapter against an embedded DuckDB
// database, the default local backend for `foundry run` (SPEC_FULL.md §11).
package duckdb

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/marcboeker/go-duckdb" // registers the "duckdb" database/sql driver

	"github.com/foundrydata/foundry/internal/warehouse"
)

// Adapter is a DuckDB-backed warehouse.Adapter.
type Adapter struct {
	warehouse.BaseSQLAdapter
	Path string // ":memory:" if empty
}

// New creates an Adapter. An empty path opens an in-memory database.
func New(path string) *Adapter {
	return &Adapter{Path: path}
}

// Connect opens the DuckDB file (or an in-memory database) and pings it.
func (a *Adapter) Connect(ctx context.Context) error {
	path := a.Path
	if path == "" {
		path = ":memory:"
	}
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return fmt.Errorf("opening duckdb %q: %w", path, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("pinging duckdb: %w", err)
	}
	a.DB = db
	return nil
}
