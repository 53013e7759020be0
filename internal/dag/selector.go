package dag

import (
	"fmt"
	"strings"
)

// Selector is a parsed node selector: `N`, `<N`, `N>`, or `<N>` (spec.md
// §4.4). Ancestors/Descendants name which side of N the selector pulls in.
type Selector struct {
	Node        string
	Ancestors   bool
	Descendants bool
}

// ParseSelector parses one selector term. `<N` selects N's ancestors
// (excluding N); `N>` selects N's descendants (excluding N); `<N>` selects
// ancestors, N, and descendants; bare `N` selects only N.
func ParseSelector(raw string) (*Selector, error) {
	s := &Selector{}
	rest := raw

	if strings.HasPrefix(rest, "<") {
		s.Ancestors = true
		rest = rest[1:]
	}
	if strings.HasSuffix(rest, ">") {
		s.Descendants = true
		rest = rest[:len(rest)-1]
	}
	if rest == "" {
		return nil, fmt.Errorf("selector %q names no node", raw)
	}
	s.Node = rest
	return s, nil
}

// Select evaluates the selector against g, composing GetUpstreamNodes/
// GetAffectedNodes exactly as the teacher's RunSelected composes
// GetAffectedNodes/Subgraph for a selection-plus-downstream run.
func (s *Selector) Select(g *Graph) ([]string, error) {
	if _, ok := g.GetNode(s.Node); !ok {
		return nil, fmt.Errorf("selector names unknown node %q", s.Node)
	}

	set := map[string]bool{s.Node: true}
	if s.Ancestors {
		for _, n := range g.GetUpstreamNodes(s.Node) {
			set[n] = true
		}
	}
	if s.Descendants {
		for _, n := range g.GetAffectedNodes([]string{s.Node}) {
			set[n] = true
		}
	}
	if !s.Ancestors && !s.Descendants {
		// bare `N`: exactly {N}, already seeded above.
	}
	if s.Ancestors != s.Descendants {
		// `<N` and `N>` leave N itself out; only `<N>` and bare `N` keep it.
		delete(set, s.Node)
	}

	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	return names, nil
}

// SelectSubgraph evaluates raw and returns the induced subgraph together
// with its topological execution order, restricted to the selected nodes
// (spec.md §4.4 "execution order ... induced topological order of the full
// DAG restricted to the subset").
func SelectSubgraph(g *Graph, raw string) (*Graph, []*Node, error) {
	sel, err := ParseSelector(raw)
	if err != nil {
		return nil, nil, err
	}
	names, err := sel.Select(g)
	if err != nil {
		return nil, nil, err
	}
	sub := g.Subgraph(names)
	sorted, err := sub.TopologicalSort()
	if err != nil {
		return nil, nil, err
	}
	return sub, sorted, nil
}
