// Package dag builds the directed acyclic graph of executable and
// non-executable nodes a resolved project compiles to, and evaluates the
// subgraph selector grammar against it (spec.md §4.4).
package dag

import (
	"fmt"
	"sort"
)

// NodeKind names the taxonomy a DagNode belongs to (spec.md §3 DagNode,
// SPEC_FULL.md §3 ambient additions).
type NodeKind string

// Supported node kinds.
const (
	KindModel         NodeKind = "model"
	KindSourceTable   NodeKind = "source_table"
	KindWarehouseLeaf NodeKind = "warehouse_leaf"
	KindSourceDBLeaf  NodeKind = "source_db_leaf"
	KindConnector     NodeKind = "connector"
	KindPipeline      NodeKind = "pipeline"
	KindSmt           NodeKind = "smt"
	KindPredicate     NodeKind = "predicate"
	KindJob           NodeKind = "job"
)

// Node is one vertex in the graph: a name, its kind, whether the compiler
// produces a runnable artifact for it, and the compiled artifact once
// rendered.
type Node struct {
	Name             string
	Kind             NodeKind
	Executable       bool
	CompiledArtifact string
	Data             any
}

// Graph is a directed acyclic graph of Nodes. Edges run from a dependency
// to its dependent, mirroring the teacher's `parent -> child` convention
// (a parent has no dependency on the child; AddEdge(parent, child) means
// "child depends on parent").
type Graph struct {
	nodes   map[string]*Node
	edges   map[string][]string // parent -> children (dependents)
	parents map[string][]string // child -> parents (dependencies)
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:   make(map[string]*Node),
		edges:   make(map[string][]string),
		parents: make(map[string][]string),
	}
}

// AddNode inserts or updates a node.
func (g *Graph) AddNode(n *Node) {
	if existing, ok := g.nodes[n.Name]; ok {
		*existing = *n
		return
	}
	g.nodes[n.Name] = n
	g.edges[n.Name] = []string{}
	g.parents[n.Name] = []string{}
}

// AddEdge adds a directed edge from parentID (dependency) to childID
// (dependent). Both nodes must already exist (invariant I1: every
// depends_on entry references a node present in the manifest).
func (g *Graph) AddEdge(parentID, childID string) error {
	if _, ok := g.nodes[parentID]; !ok {
		return fmt.Errorf("parent node %q does not exist", parentID)
	}
	if _, ok := g.nodes[childID]; !ok {
		return fmt.Errorf("child node %q does not exist", childID)
	}
	if parentID == childID {
		return fmt.Errorf("self-loop detected: %s", parentID)
	}
	if !contains(g.edges[parentID], childID) {
		g.edges[parentID] = append(g.edges[parentID], childID)
	}
	if !contains(g.parents[childID], parentID) {
		g.parents[childID] = append(g.parents[childID], parentID)
	}
	return nil
}

// GetNode returns a node by name.
func (g *Graph) GetNode(name string) (*Node, bool) {
	n, ok := g.nodes[name]
	return n, ok
}

// GetParents returns the dependencies of a node.
func (g *Graph) GetParents(name string) []string { return g.parents[name] }

// GetChildren returns the dependents of a node.
func (g *Graph) GetChildren(name string) []string { return g.edges[name] }

// GetAllNodes returns every node, sorted by name for deterministic output.
func (g *Graph) GetAllNodes() []*Node {
	nodes := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Name < nodes[j].Name })
	return nodes
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// Cycle is returned by HasCycle/TopologicalSort/GetExecutionLevels when the
// graph is not acyclic (invariant I2).
type Cycle struct {
	Nodes []string
}

func (e *Cycle) Error() string { return fmt.Sprintf("cycle detected: %v", e.Nodes) }

// HasCycle reports whether the graph contains a cycle, returning the cycle
// path if so.
func (g *Graph) HasCycle() (bool, []string) {
	visited := make(map[string]bool)
	recStack := make(map[string]bool)
	path := make(map[string]string)
	var cyclePath []string

	var dfs func(id string) bool
	dfs = func(id string) bool {
		visited[id] = true
		recStack[id] = true
		for _, childID := range g.edges[id] {
			if !visited[childID] {
				path[childID] = id
				if dfs(childID) {
					return true
				}
			} else if recStack[childID] {
				cyclePath = []string{childID}
				for curr := id; curr != childID; curr = path[curr] {
					cyclePath = append([]string{curr}, cyclePath...)
				}
				cyclePath = append([]string{childID}, cyclePath...)
				return true
			}
		}
		recStack[id] = false
		return false
	}

	ids := g.sortedIDs()
	for _, id := range ids {
		if !visited[id] {
			if dfs(id) {
				return true, cyclePath
			}
		}
	}
	return false, nil
}

// TopologicalSort returns nodes dependency-first. Returns *Cycle if the
// graph is not acyclic (DFS-based check per spec.md §4.4).
func (g *Graph) TopologicalSort() ([]*Node, error) {
	if has, path := g.HasCycle(); has {
		return nil, &Cycle{Nodes: path}
	}

	visited := make(map[string]bool)
	var result []*Node

	var visit func(id string)
	visit = func(id string) {
		if visited[id] {
			return
		}
		visited[id] = true
		for _, parentID := range g.parents[id] {
			visit(parentID)
		}
		result = append(result, g.nodes[id])
	}

	for _, id := range g.sortedIDs() {
		visit(id)
	}
	return result, nil
}

// GetExecutionLevels groups node names by execution level: level N can run
// concurrently once every level < N has completed (spec.md §5).
func (g *Graph) GetExecutionLevels() ([][]string, error) {
	if has, path := g.HasCycle(); has {
		return nil, &Cycle{Nodes: path}
	}

	assigned := make(map[string]int)
	var getLevel func(id string) int
	getLevel = func(id string) int {
		if level, ok := assigned[id]; ok {
			return level
		}
		parents := g.parents[id]
		if len(parents) == 0 {
			assigned[id] = 0
			return 0
		}
		maxParentLevel := 0
		for _, parentID := range parents {
			if l := getLevel(parentID); l > maxParentLevel {
				maxParentLevel = l
			}
		}
		level := maxParentLevel + 1
		assigned[id] = level
		return level
	}

	maxLevel := 0
	for id := range g.nodes {
		if level := getLevel(id); level > maxLevel {
			maxLevel = level
		}
	}

	levels := make([][]string, maxLevel+1)
	for i := range levels {
		levels[i] = []string{}
	}
	for id, level := range assigned {
		levels[level] = append(levels[level], id)
	}
	for i := range levels {
		sort.Strings(levels[i])
	}
	return levels, nil
}

// GetUpstreamNodes returns every node transitively upstream of name,
// excluding name itself — the `<N` selector.
func (g *Graph) GetUpstreamNodes(name string) []string {
	upstream := make(map[string]bool)
	var mark func(id string)
	mark = func(id string) {
		for _, parentID := range g.parents[id] {
			if !upstream[parentID] {
				upstream[parentID] = true
				mark(parentID)
			}
		}
	}
	mark(name)
	return sortedKeys(upstream)
}

// GetAffectedNodes returns every node in changedIDs plus everything
// transitively downstream of them. The `N>` selector is this set for the
// single seed N, minus N itself.
func (g *Graph) GetAffectedNodes(changedIDs []string) []string {
	affected := make(map[string]bool)
	var mark func(id string)
	mark = func(id string) {
		if affected[id] {
			return
		}
		affected[id] = true
		for _, childID := range g.edges[id] {
			mark(childID)
		}
	}
	for _, id := range changedIDs {
		if _, ok := g.nodes[id]; ok {
			mark(id)
		}
	}
	result := make([]string, 0, len(affected))
	for id := range affected {
		result = append(result, id)
	}
	sort.Strings(result)
	return result
}

// Subgraph returns a new graph containing only nodeIDs and the edges
// between them.
func (g *Graph) Subgraph(nodeIDs []string) *Graph {
	sub := NewGraph()
	nodeSet := make(map[string]bool, len(nodeIDs))
	for _, id := range nodeIDs {
		nodeSet[id] = true
		if n, ok := g.nodes[id]; ok {
			cp := *n
			sub.AddNode(&cp)
		}
	}
	for _, id := range nodeIDs {
		for _, childID := range g.edges[id] {
			if nodeSet[childID] {
				_ = sub.AddEdge(id, childID)
			}
		}
	}
	return sub
}

func (g *Graph) sortedIDs() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func sortedKeys(m map[string]bool) []string {
	result := make([]string, 0, len(m))
	for k := range m {
		result = append(result, k)
	}
	sort.Strings(result)
	return result
}

func contains(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
