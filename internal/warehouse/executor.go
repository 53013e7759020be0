package warehouse

import (
	"context"
	"fmt"

	"github.com/foundrydata/foundry/internal/catalog"
	"github.com/foundrydata/foundry/internal/dag"
)

// Executor implements engine.ModelExecutor against a single Adapter,
// running a model node's compiled artifact as a CREATE OR REPLACE
// statement. It is the thin binding between the DAG's generic node
// dispatch and a concrete warehouse connection.
type Executor struct {
	Adapter Adapter
}

// NewExecutor creates an Executor bound to adapter.
func NewExecutor(adapter Adapter) *Executor {
	return &Executor{Adapter: adapter}
}

// ExecuteModel runs n's compiled SQL as a materialize statement. n.Data
// must be the *catalog.ModelDecl the compiler attached when building the
// graph (internal/compiler.BuildGraph).
func (e *Executor) ExecuteModel(ctx context.Context, n *dag.Node) error {
	m, ok := n.Data.(*catalog.ModelDecl)
	if !ok {
		return fmt.Errorf("model node %q carries no ModelDecl", n.Name)
	}
	return e.Adapter.Exec(ctx, BuildMaterializeSQL(m, n.CompiledArtifact))
}
