// Package compiler renders resolved catalog declarations into their final
// executable artifacts (model SQL, Kafka Connect flat-key configs) and
// assembles the manifest the DAG and every downstream consumer reads
// (spec.md §4.5).
package compiler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/foundrydata/foundry/internal/catalog"
)

// Compiler renders artifacts against a populated catalog. It holds no
// mutable state of its own; every Compile* call is a pure function of its
// argument and the catalog's read-only external specs.
type Compiler struct {
	cat *catalog.Catalog
}

// New creates a Compiler bound to cat.
func New(cat *catalog.Catalog) *Compiler {
	return &Compiler{cat: cat}
}

// CompileModel returns the model's artifact. The resolver's macro
// substitution pass already produced the final SQL text; the compiler's job
// here is only to hand it back unchanged (spec.md §4.5: "Model artifact.
// compiled_sql from §4.3 is the artifact, unchanged").
func (c *Compiler) CompileModel(m *catalog.ModelDecl) string {
	return m.CompiledSQL
}

// sortedKeys returns m's keys sorted, for deterministic flat-config
// rendering (P4/P5 property tests compare exact key sets).
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// mergeConfig layers override onto base, later keys winning, and returns a
// new map. Used to thread the preset ⊕ inline ⊕ extend ⊕ step-override chain
// (spec.md §4.5 step 6) without mutating any of the inputs.
func mergeConfig(layers ...map[string]string) map[string]string {
	out := make(map[string]string)
	for _, layer := range layers {
		for k, v := range layer {
			out[k] = v
		}
	}
	return out
}

// flattenKV renders a flat key=value config map as sorted "key=value" pairs,
// the shape every Kafka Connect REST payload and manifest dump uses.
func flattenKV(cfg map[string]string) []string {
	lines := make([]string, 0, len(cfg))
	for _, k := range sortedKeys(cfg) {
		lines = append(lines, fmt.Sprintf("%s=%s", k, cfg[k]))
	}
	return lines
}

// RenderFlatConfig renders cfg as newline-joined sorted key=value pairs, the
// literal `compiled_artifact` string stored on a connector's DagNode.
func RenderFlatConfig(cfg map[string]string) string {
	return strings.Join(flattenKV(cfg), "\n")
}
