// Package postgres implements warehouse.Adapter against PostgreSQL,
// exercising catalog.ConnectionDef's `adapter_type: postgres`
// (SPEC_FULL.md §11).
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver

	"github.com/foundrydata/foundry/internal/warehouse"
)

// Adapter is a Postgres-backed warehouse.Adapter.
type Adapter struct {
	warehouse.BaseSQLAdapter
	Cfg warehouse.Config
}

// New creates an Adapter bound to cfg.
func New(cfg warehouse.Config) *Adapter {
	return &Adapter{Cfg: cfg}
}

// Connect opens a pgx-backed database/sql connection and pings it.
func (a *Adapter) Connect(ctx context.Context) error {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s", a.Cfg.User, a.Cfg.Password, a.Cfg.Host, a.Cfg.Port, a.Cfg.Database)
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("opening postgres connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("pinging postgres: %w", err)
	}
	a.DB = db
	return nil
}
