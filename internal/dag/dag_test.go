package dag_test

import (
	"testing"

	"github.com/foundrydata/foundry/internal/dag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildChain(t *testing.T) *dag.Graph {
	t.Helper()
	g := dag.NewGraph()
	g.AddNode(&dag.Node{Name: "a", Kind: dag.KindModel, Executable: true})
	g.AddNode(&dag.Node{Name: "b", Kind: dag.KindModel, Executable: true})
	g.AddNode(&dag.Node{Name: "c", Kind: dag.KindModel, Executable: true})
	require.NoError(t, g.AddEdge("a", "b"))
	require.NoError(t, g.AddEdge("b", "c"))
	return g
}

func TestTopologicalSortOrdersDependenciesFirst(t *testing.T) {
	g := buildChain(t)
	sorted, err := g.TopologicalSort()
	require.NoError(t, err)

	names := make([]string, len(sorted))
	for i, n := range sorted {
		names[i] = n.Name
	}
	assert.Equal(t, []string{"a", "b", "c"}, names)
}

func TestHasCycleDetectsCycle(t *testing.T) {
	g := dag.NewGraph()
	g.AddNode(&dag.Node{Name: "a"})
	g.AddNode(&dag.Node{Name: "b"})
	require.NoError(t, g.AddEdge("a", "b"))
	require.NoError(t, g.AddEdge("b", "a"))

	has, path := g.HasCycle()
	assert.True(t, has)
	assert.NotEmpty(t, path)
}

func TestGetExecutionLevels(t *testing.T) {
	g := buildChain(t)
	levels, err := g.GetExecutionLevels()
	require.NoError(t, err)
	require.Len(t, levels, 3)
	assert.Equal(t, []string{"a"}, levels[0])
	assert.Equal(t, []string{"b"}, levels[1])
	assert.Equal(t, []string{"c"}, levels[2])
}

func TestGetExecutionLevelsParallelSiblings(t *testing.T) {
	g := dag.NewGraph()
	g.AddNode(&dag.Node{Name: "root"})
	g.AddNode(&dag.Node{Name: "left"})
	g.AddNode(&dag.Node{Name: "right"})
	g.AddNode(&dag.Node{Name: "join"})
	require.NoError(t, g.AddEdge("root", "left"))
	require.NoError(t, g.AddEdge("root", "right"))
	require.NoError(t, g.AddEdge("left", "join"))
	require.NoError(t, g.AddEdge("right", "join"))

	levels, err := g.GetExecutionLevels()
	require.NoError(t, err)
	require.Len(t, levels, 3)
	assert.Equal(t, []string{"left", "right"}, levels[1])
}

func TestSelectorAncestors(t *testing.T) {
	g := buildChain(t)
	sel, err := dag.ParseSelector("<c")
	require.NoError(t, err)
	names, err := sel.Select(g)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, names)
}

func TestSelectorDescendants(t *testing.T) {
	g := buildChain(t)
	sel, err := dag.ParseSelector("a>")
	require.NoError(t, err)
	names, err := sel.Select(g)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"b", "c"}, names)
}

func TestSelectorAncestorsAndDescendants(t *testing.T) {
	g := buildChain(t)
	sel, err := dag.ParseSelector("<b>")
	require.NoError(t, err)
	names, err := sel.Select(g)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, names)
}

func TestSelectorBareNode(t *testing.T) {
	g := buildChain(t)
	sel, err := dag.ParseSelector("b")
	require.NoError(t, err)
	names, err := sel.Select(g)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, names)
}

func TestSelectSubgraphExecutionOrder(t *testing.T) {
	g := buildChain(t)
	_, sorted, err := dag.SelectSubgraph(g, "<c")
	require.NoError(t, err)

	names := make([]string, len(sorted))
	for i, n := range sorted {
		names[i] = n.Name
	}
	assert.Equal(t, []string{"a", "b"}, names)
}

func TestSelectorUnknownNodeErrors(t *testing.T) {
	g := buildChain(t)
	sel, err := dag.ParseSelector("<missing")
	require.NoError(t, err)
	_, err = sel.Select(g)
	assert.Error(t, err)
}
