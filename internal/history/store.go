// Package history is a SQLite-backed audit log of `foundry run` invocations:
// one row per run and one row per node within it (SPEC_FULL.md §11,
// grounded on the teacher's internal/state package's Run/ModelRun store and
// embed.FS+goose migration pattern, repurposed from model content-hash
// incremental state — a Non-goal here — to an execution audit trail).
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver

	"github.com/google/uuid"
)

// RunStatus is the lifecycle status of a recorded run.
type RunStatus string

// Supported run/node statuses.
const (
	StatusRunning RunStatus = "running"
	StatusSuccess RunStatus = "success"
	StatusFailed  RunStatus = "failed"
)

// Run is one `foundry run` invocation.
type Run struct {
	ID          string
	Project     string
	Selector    string
	Status      RunStatus
	StartedAt   time.Time
	CompletedAt *time.Time
	Error       string
}

// NodeRun is one node's execution within a Run.
type NodeRun struct {
	ID         string
	RunID      string
	NodeName   string
	NodeKind   string
	Status     RunStatus
	DurationMS int64
	Error      string
}

// Store is a SQLite-backed history.Run/NodeRun log.
type Store struct {
	db *sql.DB
}

// Open opens (creating if absent) the SQLite database at path and applies
// every pending migration. path may be ":memory:".
func Open(path string) (*Store, error) {
	dsn := path
	if path != ":memory:" {
		dsn = fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging history database: %w", err)
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error { return s.db.Close() }

// StartRun inserts a new running Run for project/selector.
func (s *Store) StartRun(ctx context.Context, project, selector string) (*Run, error) {
	run := &Run{
		ID:        uuid.New().String(),
		Project:   project,
		Selector:  selector,
		Status:    StatusRunning,
		StartedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, project, selector, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.Project, run.Selector, run.Status, run.StartedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("starting run: %w", err)
	}
	return run, nil
}

// CompleteRun marks runID as finished with status, recording errMsg (empty
// on success).
func (s *Store) CompleteRun(ctx context.Context, runID string, status RunStatus, errMsg string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, completed_at = ?, error = ? WHERE id = ?`,
		status, time.Now().UTC(), errMsg, runID,
	)
	if err != nil {
		return fmt.Errorf("completing run %q: %w", runID, err)
	}
	return nil
}

// RecordNodeRun inserts one node's execution outcome within runID.
func (s *Store) RecordNodeRun(ctx context.Context, runID, nodeName, nodeKind string, status RunStatus, duration time.Duration, errMsg string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO node_runs (id, run_id, node_name, node_kind, status, duration_ms, error) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), runID, nodeName, nodeKind, status, duration.Milliseconds(), errMsg,
	)
	if err != nil {
		return fmt.Errorf("recording node run %q: %w", nodeName, err)
	}
	return nil
}

// GetRun retrieves one run by ID.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	run := &Run{ID: id}
	var completedAt sql.NullTime
	var errMsg sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT project, selector, status, started_at, completed_at, error FROM runs WHERE id = ?`, id,
	).Scan(&run.Project, &run.Selector, &run.Status, &run.StartedAt, &completedAt, &errMsg)
	if err != nil {
		return nil, fmt.Errorf("getting run %q: %w", id, err)
	}
	if completedAt.Valid {
		run.CompletedAt = &completedAt.Time
	}
	run.Error = errMsg.String
	return run, nil
}

// ListRuns returns the most recent limit runs for project, newest first.
func (s *Store) ListRuns(ctx context.Context, project string, limit int) ([]*Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, selector, status, started_at, completed_at, error FROM runs
		 WHERE project = ? ORDER BY started_at DESC LIMIT ?`, project, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*Run
	for rows.Next() {
		run := &Run{Project: project}
		var completedAt sql.NullTime
		var errMsg sql.NullString
		if err := rows.Scan(&run.ID, &run.Selector, &run.Status, &run.StartedAt, &completedAt, &errMsg); err != nil {
			return nil, err
		}
		if completedAt.Valid {
			run.CompletedAt = &completedAt.Time
		}
		run.Error = errMsg.String
		out = append(out, run)
	}
	return out, rows.Err()
}
