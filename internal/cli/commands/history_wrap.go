package commands

import (
	"context"
	"time"

	"github.com/foundrydata/foundry/internal/dag"
	"github.com/foundrydata/foundry/internal/engine"
	"github.com/foundrydata/foundry/internal/history"
)

// wrapWithHistory decorates ex so every dispatched node's outcome is
// recorded against runID in store, regardless of which collaborator ran it.
// A nil field in ex stays nil, preserving engine.Run's "skip, don't fail"
// behavior for collaborators the caller didn't configure.
func wrapWithHistory(ex engine.Executors, store *history.Store, runID string) engine.Executors {
	wrapped := ex
	if ex.Models != nil {
		wrapped.Models = &historyModelExecutor{next: ex.Models, store: store, runID: runID}
	}
	if ex.Connectors != nil {
		wrapped.Connectors = &historyConnectorDeployer{next: ex.Connectors, store: store, runID: runID}
	}
	if ex.Jobs != nil {
		wrapped.Jobs = &historyJobRunner{next: ex.Jobs, store: store, runID: runID}
	}
	return wrapped
}

func recordOutcome(store *history.Store, runID string, n *dag.Node, start time.Time, err error) {
	status := history.StatusSuccess
	msg := ""
	if err != nil {
		status = history.StatusFailed
		msg = err.Error()
	}
	_ = store.RecordNodeRun(context.Background(), runID, n.Name, string(n.Kind), status, time.Since(start), msg)
}

type historyModelExecutor struct {
	next  engine.ModelExecutor
	store *history.Store
	runID string
}

func (h *historyModelExecutor) ExecuteModel(ctx context.Context, n *dag.Node) error {
	start := time.Now()
	err := h.next.ExecuteModel(ctx, n)
	recordOutcome(h.store, h.runID, n, start, err)
	return err
}

type historyConnectorDeployer struct {
	next  engine.ConnectorDeployer
	store *history.Store
	runID string
}

func (h *historyConnectorDeployer) DeployConnector(ctx context.Context, n *dag.Node) error {
	start := time.Now()
	err := h.next.DeployConnector(ctx, n)
	recordOutcome(h.store, h.runID, n, start, err)
	return err
}

type historyJobRunner struct {
	next  engine.JobRunner
	store *history.Store
	runID string
}

func (h *historyJobRunner) RunJob(ctx context.Context, n *dag.Node) error {
	start := time.Now()
	err := h.next.RunJob(ctx, n)
	recordOutcome(h.store, h.runID, n, start, err)
	return err
}
