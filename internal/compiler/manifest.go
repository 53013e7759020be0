package compiler

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/foundrydata/foundry/internal/catalog"
	"github.com/foundrydata/foundry/internal/dag"
	"github.com/foundrydata/foundry/internal/resolver"
)

// BuildGraph compiles every declaration in cat into a dag.Graph: models and
// source-table leaves from the resolver's edge set, plus connectors and the
// pipeline/SMT/predicate chain each one depends on (spec.md §4.4). Models
// and connectors carry their rendered artifact; pipelines/SMTs/predicates
// and source-table leaves are non-executable dependency-only nodes. A
// connector's FROM SOURCE DATABASE / INTO WAREHOUSE DATABASE connection gets
// no node of its own, so dag.KindSourceDBLeaf and dag.KindWarehouseLeaf
// never appear in the graph.
func (c *Compiler) BuildGraph(models []*catalog.ModelDecl, sourceTables map[string]*catalog.SourceTableDecl, edges []resolver.Edge) (*dag.Graph, error) {
	g := dag.NewGraph()

	for fqn := range sourceTables {
		g.AddNode(&dag.Node{Name: fqn, Kind: dag.KindSourceTable, Executable: false})
	}
	for _, m := range models {
		g.AddNode(&dag.Node{
			Name:             m.Identity(),
			Kind:             dag.KindModel,
			Executable:       true,
			CompiledArtifact: c.CompileModel(m),
			Data:             m,
		})
	}
	for _, e := range edges {
		if err := g.AddEdge(e.From, e.To); err != nil {
			return nil, fmt.Errorf("building model graph: %w", err)
		}
	}

	// Connectors are compiled first, since which pipelines/SMTs/predicates
	// belong in the manifest at all depends on which connectors are
	// executable (spec.md §4.4: lineage-only nodes are "present ... if
	// referenced by an executable connector — otherwise omitted").
	type connectorBuild struct {
		conn *catalog.ConnectorDecl
		art  *ConnectorArtifact
	}
	connNames := c.cat.Names(catalog.KindConnector)
	connectors := make([]connectorBuild, 0, len(connNames))
	reachablePipelines := map[string]bool{}
	for _, name := range connNames {
		decl, _ := c.cat.Get(catalog.KindConnector, name)
		conn := decl.(*catalog.ConnectorDecl)
		art, err := c.CompileConnector(conn)
		if err != nil {
			return nil, err
		}
		connectors = append(connectors, connectorBuild{conn, art})
		if conn.DagExecutable {
			for _, pipelineName := range conn.Pipelines {
				reachablePipelines[pipelineName] = true
			}
		}
	}

	// Expand reachable pipelines into the SMTs/predicates they use,
	// following custom (non-builtin) preset chains the same way
	// resolveStepConfig does.
	reachableSmts := map[string]bool{}
	reachablePredicates := map[string]bool{}
	var expandSmt func(name string)
	expandSmt = func(name string) {
		if reachableSmts[name] {
			return
		}
		reachableSmts[name] = true
		decl, err := c.cat.Get(catalog.KindSmt, name)
		if err != nil {
			return
		}
		smt := decl.(*catalog.SmtDecl)
		if smt.HasPredicate {
			reachablePredicates[smt.PredicateRef] = true
		}
		if smt.PresetRef != "" {
			if _, ok := catalog.BuiltinPreset(smt.PresetRef); !ok {
				expandSmt(smt.PresetRef)
			}
		}
	}
	for pipelineName := range reachablePipelines {
		decl, err := c.cat.Get(catalog.KindPipeline, pipelineName)
		if err != nil {
			continue
		}
		pipe := decl.(*catalog.PipelineDecl)
		for _, step := range pipe.Steps {
			if _, ok := catalog.BuiltinPreset(step.SmtName); ok {
				continue
			}
			expandSmt(step.SmtName)
		}
	}

	for _, name := range c.cat.Names(catalog.KindPredicate) {
		if !reachablePredicates[name] {
			continue
		}
		g.AddNode(&dag.Node{Name: name, Kind: dag.KindPredicate, Executable: false})
	}
	for _, name := range c.cat.Names(catalog.KindSmt) {
		if !reachableSmts[name] {
			continue
		}
		decl, _ := c.cat.Get(catalog.KindSmt, name)
		smt := decl.(*catalog.SmtDecl)
		g.AddNode(&dag.Node{Name: name, Kind: dag.KindSmt, Executable: false, Data: smt})
		if smt.HasPredicate {
			if err := g.AddEdge(smt.PredicateRef, name); err != nil {
				return nil, fmt.Errorf("building smt graph: %w", err)
			}
		}
	}
	for _, name := range c.cat.Names(catalog.KindPipeline) {
		if !reachablePipelines[name] {
			continue
		}
		decl, _ := c.cat.Get(catalog.KindPipeline, name)
		pipe := decl.(*catalog.PipelineDecl)
		g.AddNode(&dag.Node{Name: name, Kind: dag.KindPipeline, Executable: false, Data: pipe})
		for _, step := range pipe.Steps {
			if _, ok := catalog.BuiltinPreset(step.SmtName); ok {
				continue
			}
			if err := g.AddEdge(step.SmtName, name); err != nil {
				return nil, fmt.Errorf("building pipeline graph: %w", err)
			}
		}
	}

	for _, cb := range connectors {
		conn, art := cb.conn, cb.art
		g.AddNode(&dag.Node{
			Name:             conn.Name,
			Kind:             dag.KindConnector,
			Executable:       conn.DagExecutable,
			CompiledArtifact: RenderFlatConfig(art.Config),
			Data:             conn,
		})
		for _, pipelineName := range conn.Pipelines {
			if !reachablePipelines[pipelineName] {
				continue
			}
			if err := g.AddEdge(pipelineName, conn.Name); err != nil {
				return nil, fmt.Errorf("building connector graph: %w", err)
			}
		}
	}

	for _, name := range c.cat.Names(catalog.KindJob) {
		decl, _ := c.cat.Get(catalog.KindJob, name)
		g.AddNode(&dag.Node{Name: name, Kind: dag.KindJob, Executable: true, Data: decl})
	}

	return g, nil
}

// ManifestNode is one entry in the emitted manifest (spec.md §4.5/§6): the
// flat, serializable projection of a dag.Node.
type ManifestNode struct {
	Name             string   `json:"name"`
	Kind             string   `json:"kind"`
	DependsOn        []string `json:"depends_on"`
	Executable       bool     `json:"executable"`
	CompiledArtifact string   `json:"compiled_artifact,omitempty"`
}

// BuildManifest projects every node in g into its manifest entry, sorted by
// name for deterministic output (P3: unique node names; determinism makes
// diffs reviewable).
func BuildManifest(g *dag.Graph) []ManifestNode {
	nodes := g.GetAllNodes()
	out := make([]ManifestNode, 0, len(nodes))
	for _, n := range nodes {
		deps := g.GetParents(n.Name)
		sort.Strings(deps)
		out = append(out, ManifestNode{
			Name:             n.Name,
			Kind:             string(n.Kind),
			DependsOn:        deps,
			Executable:       n.Executable,
			CompiledArtifact: n.CompiledArtifact,
		})
	}
	return out
}

// ManifestJSON renders the manifest as indented JSON (spec.md §6 "manifest
// output"). Nothing in this module writes the manifest to a file.
func ManifestJSON(nodes []ManifestNode) ([]byte, error) {
	return json.MarshalIndent(nodes, "", "  ")
}

// ManifestDOT renders g as a Graphviz DOT digraph: one node statement per
// vertex, one edge statement per dependency arrow, dependency -> dependent
// to match the graph's own edge direction.
func ManifestDOT(g *dag.Graph) string {
	var b strings.Builder
	b.WriteString("digraph foundry {\n")
	for _, n := range g.GetAllNodes() {
		shape := "box"
		if !n.Executable {
			shape = "ellipse"
		}
		fmt.Fprintf(&b, "  %q [kind=%q shape=%s];\n", n.Name, string(n.Kind), shape)
	}
	for _, n := range g.GetAllNodes() {
		children := g.GetChildren(n.Name)
		sort.Strings(children)
		for _, child := range children {
			fmt.Fprintf(&b, "  %q -> %q;\n", n.Name, child)
		}
	}
	b.WriteString("}\n")
	return b.String()
}
