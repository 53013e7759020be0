package engine

import (
	"context"
	"fmt"

	"github.com/foundrydata/foundry/internal/dag"
	"golang.org/x/sync/errgroup"
)

// ModelExecutor materializes a model node against a warehouse adapter
// (internal/warehouse).
type ModelExecutor interface {
	ExecuteModel(ctx context.Context, n *dag.Node) error
}

// ConnectorDeployer submits a connector node's compiled config to Kafka
// Connect (internal/kafkaconnect).
type ConnectorDeployer interface {
	DeployConnector(ctx context.Context, n *dag.Node) error
}

// JobRunner launches an external-process job node (internal/jobrunner).
type JobRunner interface {
	RunJob(ctx context.Context, n *dag.Node) error
}

// Executors bundles the three collaborator interfaces Run dispatches to by
// node kind. A nil field means that kind is skipped with a log line rather
// than failing the run — useful for `foundry run` invocations that only
// touch models, for instance.
type Executors struct {
	Models     ModelExecutor
	Connectors ConnectorDeployer
	Jobs       JobRunner
}

// Run executes selector (or every executable node, if selector is empty)
// level-by-level: all nodes in level N run concurrently via errgroup, and
// the run stops at the first error within that level (spec.md §5,
// SPEC_FULL.md §5 grounded on golang.org/x/sync/errgroup over
// Graph.GetExecutionLevels(), generalized from the teacher's sequential
// per-model loop to intra-level parallelism).
func (e *Engine) Run(ctx context.Context, cr *CompileResult, selector string, ex Executors) error {
	g := cr.Graph
	if selector != "" {
		sub, _, err := dag.SelectSubgraph(g, selector)
		if err != nil {
			return fmt.Errorf("evaluating selector %q: %w", selector, err)
		}
		g = sub
	}

	levels, err := g.GetExecutionLevels()
	if err != nil {
		return err
	}

	for i, level := range levels {
		e.Logger.Debug("executing level", "level", i, "nodes", len(level))
		grp, gctx := errgroup.WithContext(ctx)
		for _, name := range level {
			name := name
			node, _ := g.GetNode(name)
			if !node.Executable {
				continue
			}
			grp.Go(func() error {
				return e.dispatch(gctx, node, ex)
			})
		}
		if err := grp.Wait(); err != nil {
			return fmt.Errorf("level %d failed: %w", i, err)
		}
	}
	return nil
}

func (e *Engine) dispatch(ctx context.Context, n *dag.Node, ex Executors) error {
	switch n.Kind {
	case dag.KindModel:
		if ex.Models == nil {
			e.Logger.Warn("no model executor configured, skipping", "node", n.Name)
			return nil
		}
		return ex.Models.ExecuteModel(ctx, n)
	case dag.KindConnector:
		if ex.Connectors == nil {
			e.Logger.Warn("no connector deployer configured, skipping", "node", n.Name)
			return nil
		}
		return ex.Connectors.DeployConnector(ctx, n)
	case dag.KindJob:
		if ex.Jobs == nil {
			e.Logger.Warn("no job runner configured, skipping", "node", n.Name)
			return nil
		}
		return ex.Jobs.RunJob(ctx, n)
	default:
		return nil // non-executable dependency-only node
	}
}
