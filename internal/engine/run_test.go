package engine_test

import (
	"context"
	"sync"
	"testing"

	"github.com/foundrydata/foundry/internal/dag"
	"github.com/foundrydata/foundry/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeModelExecutor struct {
	mu  sync.Mutex
	ran []string
	err error
}

func (f *fakeModelExecutor) ExecuteModel(_ context.Context, n *dag.Node) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ran = append(f.ran, n.Name)
	return f.err
}

func buildGraph(t *testing.T) *dag.Graph {
	t.Helper()
	g := dag.NewGraph()
	g.AddNode(&dag.Node{Name: "a", Kind: dag.KindModel, Executable: true})
	g.AddNode(&dag.Node{Name: "b", Kind: dag.KindModel, Executable: true})
	g.AddNode(&dag.Node{Name: "c", Kind: dag.KindModel, Executable: true})
	require.NoError(t, g.AddEdge("a", "b"))
	require.NoError(t, g.AddEdge("a", "c"))
	return g
}

func TestRunExecutesEveryExecutableNode(t *testing.T) {
	e := engine.New(nil)
	fake := &fakeModelExecutor{}
	cr := &engine.CompileResult{Graph: buildGraph(t)}

	err := e.Run(context.Background(), cr, "", engine.Executors{Models: fake})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, fake.ran)
}

func TestRunRespectsSelector(t *testing.T) {
	e := engine.New(nil)
	fake := &fakeModelExecutor{}
	cr := &engine.CompileResult{Graph: buildGraph(t)}

	err := e.Run(context.Background(), cr, "b", engine.Executors{Models: fake})
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, fake.ran)
}

func TestRunStopsOnError(t *testing.T) {
	e := engine.New(nil)
	fake := &fakeModelExecutor{err: assert.AnError}
	cr := &engine.CompileResult{Graph: buildGraph(t)}

	err := e.Run(context.Background(), cr, "", engine.Executors{Models: fake})
	assert.Error(t, err)
}

func TestRunSkipsNonExecutableNodes(t *testing.T) {
	e := engine.New(nil)
	g := dag.NewGraph()
	g.AddNode(&dag.Node{Name: "leaf", Kind: dag.KindSourceTable, Executable: false})
	g.AddNode(&dag.Node{Name: "m", Kind: dag.KindModel, Executable: true})
	require.NoError(t, g.AddEdge("leaf", "m"))

	fake := &fakeModelExecutor{}
	cr := &engine.CompileResult{Graph: g}
	err := e.Run(context.Background(), cr, "", engine.Executors{Models: fake})
	require.NoError(t, err)
	assert.Equal(t, []string{"m"}, fake.ran)
}
