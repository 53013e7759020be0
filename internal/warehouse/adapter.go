// Package warehouse provides the warehouse Adapter contract and concrete
// DuckDB/Postgres implementations used to materialize compiled model
// artifacts (spec.md §4.5 "Model artifact" consumer; SPEC_FULL.md §11).
package warehouse

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/foundrydata/foundry/internal/catalog"
)

// Adapter is the contract every warehouse backend implements: connect,
// execute DDL/DML, and close. Modeled on the teacher's pkg/adapter.Adapter,
// trimmed to what this dialect's executor needs — metadata introspection
// and CSV loading are out of scope here (no Non-goal excludes them; there
// is simply no SPEC_FULL.md component that needs them yet).
type Adapter interface {
	Connect(ctx context.Context) error
	Close() error
	Exec(ctx context.Context, query string) error
}

// Config is the connection configuration for a warehouse Adapter, mirroring
// catalog.ConnectionDef's shape so the executor can build one directly from
// a resolved connection profile entry.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

// BaseSQLAdapter implements Exec/Close against a *sql.DB, following the
// teacher's pkg/adapter.BaseSQLAdapter split between the thin per-driver
// Connect and the shared database/sql plumbing.
type BaseSQLAdapter struct {
	DB *sql.DB
}

// Exec runs query with no result set expected.
func (a *BaseSQLAdapter) Exec(ctx context.Context, query string) error {
	if a.DB == nil {
		return fmt.Errorf("warehouse adapter: not connected")
	}
	_, err := a.DB.ExecContext(ctx, query)
	return err
}

// Close releases the underlying connection.
func (a *BaseSQLAdapter) Close() error {
	if a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

// BuildMaterializeSQL renders the `CREATE OR REPLACE <VIEW|TABLE> <name> AS
// <compiled_sql>` statement a model's DagNode executes, spec.md §3's
// Materialization driving the object kind.
func BuildMaterializeSQL(m *catalog.ModelDecl, compiledSQL string) string {
	kind := "VIEW"
	if m.Materialization == catalog.MaterializationTable {
		kind = "TABLE"
	}
	return fmt.Sprintf("CREATE OR REPLACE %s %s AS %s", kind, m.Identity(), compiledSQL)
}
