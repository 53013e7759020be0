// Package resolver implements the two-pass binding step between parsing
// and DAG construction (spec.md §4.3): pass 1 substitutes `ref`/`source`
// macro calls in model SQL with fully-qualified identifiers and records the
// dependency edges they imply; pass 2 validates every Kafka cross-
// reference (pipeline→SMT, SMT→predicate, connector→pipelines,
// connector→cluster/connection) and preset chains for cycles.
package resolver

import (
	"fmt"
	"sort"
	"strings"

	"github.com/foundrydata/foundry/internal/catalog"
	"github.com/foundrydata/foundry/internal/parser"
	"github.com/foundrydata/foundry/internal/token"
)

// ResolveError is a resolver failure, carrying the span of the offending
// construct when one is available (spec.md §4.3, §7).
type ResolveError struct {
	Kind    string
	Span    token.Span
	Message string
}

func (e *ResolveError) Error() string {
	if (e.Span == token.Span{}) {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s at %s: %s", e.Kind, e.Span, e.Message)
}

// PresetCycle reports a cycle in a preset reference chain (invariant I4).
type PresetCycle struct {
	Chain []string
}

func (e *PresetCycle) Error() string {
	return fmt.Sprintf("preset cycle: %s", strings.Join(e.Chain, " -> "))
}

// Diagnostics aggregates resolver errors and non-fatal warnings across a
// single resolve() call so the caller can report everything in one batch
// before aborting the compile (spec.md §4.3 "Error model").
type Diagnostics struct {
	Errors   []error
	Warnings []error
}

func (d *Diagnostics) addErr(err error) { d.Errors = append(d.Errors, err) }
func (d *Diagnostics) addWarn(err error) {
	if err != nil {
		d.Warnings = append(d.Warnings, err)
	}
}

// HasErrors reports whether any fatal error was collected.
func (d *Diagnostics) HasErrors() bool { return len(d.Errors) > 0 }

// Edge is a dependency edge emitted by the resolver for the DAG builder to
// consume: To depends on From (From is upstream).
type Edge struct {
	From string
	To   string
}

// ParsedModel pairs a catalog model declaration with the macro calls found
// in its parsed SQL, so pass 1 can perform span-based substitution without
// re-parsing.
type ParsedModel struct {
	Decl       *catalog.ModelDecl
	MacroCalls []*parser.MacroCall
}

// Result is everything pass 1 and pass 2 produce for the DAG builder.
type Result struct {
	Edges        []Edge
	SourceTables map[string]*catalog.SourceTableDecl // keyed by FQN
}

// Resolve runs both passes against cat and the given parsed models,
// mutating each model's CompiledSQL in place and returning the edges and
// materialized source-table leaves the DAG builder needs, plus any
// diagnostics collected along the way.
func Resolve(cat *catalog.Catalog, models []*ParsedModel) (*Result, *Diagnostics) {
	diags := &Diagnostics{}
	result := &Result{SourceTables: make(map[string]*catalog.SourceTableDecl)}

	resolveModelSubstitutions(cat, models, result, diags)
	resolveKafkaCrossReferences(cat, diags)

	return result, diags
}

// resolveModelSubstitutions is pass 1 (spec.md §4.3 "Pass 1").
func resolveModelSubstitutions(cat *catalog.Catalog, models []*ParsedModel, result *Result, diags *Diagnostics) {
	for _, pm := range models {
		compiled, err := substituteModel(cat, pm, result, diags)
		if err != nil {
			diags.addErr(err)
			continue
		}
		pm.Decl.CompiledSQL = compiled
	}
}

// substituteModel replaces every macro call's source span in pm.Decl.RawSQL
// with its resolved identifier, working from the last call to the first so
// earlier spans' byte offsets stay valid as later ones are rewritten.
func substituteModel(cat *catalog.Catalog, pm *ParsedModel, result *Result, diags *Diagnostics) (string, error) {
	calls := make([]*parser.MacroCall, len(pm.MacroCalls))
	copy(calls, pm.MacroCalls)
	sort.Slice(calls, func(i, j int) bool {
		return calls[i].Sp.Start.Offset < calls[j].Sp.Start.Offset
	})

	sql := pm.Decl.RawSQL
	for i := len(calls) - 1; i >= 0; i-- {
		call := calls[i]
		replacement, err := resolveMacroCall(cat, call, pm.Decl.Identity(), result, diags)
		if err != nil {
			return "", err
		}
		sql = sql[:call.Sp.Start.Offset] + replacement + sql[call.Sp.End.Offset:]
	}
	return sql, nil
}

func resolveMacroCall(cat *catalog.Catalog, call *parser.MacroCall, modelIdentity string, result *Result, diags *Diagnostics) (string, error) {
	switch call.Kind {
	case parser.MacroRef:
		layer, name := call.Arg1, call.Arg2
		upstream := layer + "_" + name
		if !cat.Has(catalog.KindModel, upstream) {
			return "", &ResolveError{Kind: "UnknownModel", Span: call.Sp, Message: fmt.Sprintf("ref('%s','%s') has no matching model", layer, name)}
		}
		result.Edges = append(result.Edges, Edge{From: upstream, To: modelIdentity})
		return quoteIdent(layer) + "." + quoteIdent(name), nil

	case parser.MacroSource:
		db, table := call.Arg1, call.Arg2
		fqn, warning, err := cat.ResolveSourceFQN(db, table)
		if err != nil {
			return "", &ResolveError{Kind: "UnknownSource", Span: call.Sp, Message: err.Error()}
		}
		parts := strings.Split(fqn, ".")
		leaf := &catalog.SourceTableDecl{SourceDB: db, Schema: parts[1], Table: table, FQN: fqn}
		result.SourceTables[fqn] = leaf
		result.Edges = append(result.Edges, Edge{From: fqn, To: modelIdentity})
		diags.addWarn(warning)
		quoted := make([]string, len(parts))
		for i, p := range parts {
			quoted[i] = quoteIdent(p)
		}
		return strings.Join(quoted, "."), nil

	default:
		return "", &ResolveError{Kind: "UnknownMacro", Span: call.Sp, Message: string(call.Kind)}
	}
}

func quoteIdent(s string) string { return `"` + s + `"` }

// resolveKafkaCrossReferences is pass 2 (spec.md §4.3 "Pass 2").
func resolveKafkaCrossReferences(cat *catalog.Catalog, diags *Diagnostics) {
	for _, name := range cat.Names(catalog.KindPredicate) {
		decl, _ := cat.Get(catalog.KindPredicate, name)
		pred := decl.(*catalog.PredicateDecl)
		validatePredicate(pred, diags)
	}

	for _, name := range cat.Names(catalog.KindSmt) {
		decl, _ := cat.Get(catalog.KindSmt, name)
		smt := decl.(*catalog.SmtDecl)
		validateSmt(cat, smt, diags)
	}

	for _, name := range cat.Names(catalog.KindPipeline) {
		decl, _ := cat.Get(catalog.KindPipeline, name)
		pipe := decl.(*catalog.PipelineDecl)
		validatePipeline(cat, pipe, diags)
	}

	for _, name := range cat.Names(catalog.KindConnector) {
		decl, _ := cat.Get(catalog.KindConnector, name)
		conn := decl.(*catalog.ConnectorDecl)
		validateConnector(cat, conn, diags)
	}
}

// predicateKeywords maps the built-in predicate kind keyword, spelled as it
// would appear in a `FROM KIND <keyword>` clause, to the PredicateKind it
// names (spec.md:215).
var predicateKeywords = map[string]catalog.PredicateKind{
	"topicnamematches":  catalog.PredicateTopicNameMatches,
	"recordistombstone": catalog.PredicateRecordIsTombstone,
	"hasheaderkey":      catalog.PredicateHasHeaderKey,
}

func validatePredicate(pred *catalog.PredicateDecl, diags *Diagnostics) {
	requiresPattern := pred.Kind == catalog.PredicateTopicNameMatches || pred.Kind == catalog.PredicateHasHeaderKey
	if requiresPattern && pred.Pattern == "" {
		diags.addErr(&ResolveError{Kind: "InvalidPredicate", Message: fmt.Sprintf("predicate %q of kind %s requires a pattern", pred.Name, pred.Kind)})
	}
	if pred.Kind == catalog.PredicateRecordIsTombstone && pred.Pattern != "" {
		diags.addErr(&ResolveError{Kind: "InvalidPredicate", Message: fmt.Sprintf("predicate %q of kind RecordIsTombstone must not specify a pattern", pred.Name)})
	}
	if implied, ok := predicateKeywords[strings.ToLower(pred.Name)]; ok && implied != pred.Kind {
		diags.addErr(&ResolveError{Kind: "InvalidPredicate", Message: fmt.Sprintf("predicate %q shares its name with the built-in keyword %s but is declared with kind %s", pred.Name, implied, pred.Kind)})
	}
}

func validateSmt(cat *catalog.Catalog, smt *catalog.SmtDecl, diags *Diagnostics) {
	if smt.HasPredicate && !cat.Has(catalog.KindPredicate, smt.PredicateRef) {
		diags.addErr(&ResolveError{Kind: "UnknownPredicate", Message: fmt.Sprintf("smt %q references unknown predicate %q", smt.Name, smt.PredicateRef)})
	}
	if smt.PresetRef != "" {
		if err := checkPresetChain(cat, smt.PresetRef); err != nil {
			diags.addErr(err)
		}
	}
}

func validatePipeline(cat *catalog.Catalog, pipe *catalog.PipelineDecl, diags *Diagnostics) {
	if pipe.HasPredicate && !cat.Has(catalog.KindPredicate, pipe.PipelinePredicate) {
		diags.addErr(&ResolveError{Kind: "UnknownPredicate", Message: fmt.Sprintf("pipeline %q references unknown predicate %q", pipe.Name, pipe.PipelinePredicate)})
	}
	for _, step := range pipe.Steps {
		if cat.Has(catalog.KindSmt, step.SmtName) {
			continue
		}
		if _, ok := catalog.BuiltinPreset(step.SmtName); ok {
			continue
		}
		diags.addErr(&ResolveError{Kind: "UnknownSMT", Message: fmt.Sprintf("pipeline %q step references unknown smt %q", pipe.Name, step.SmtName)})
	}
}

func validateConnector(cat *catalog.Catalog, conn *catalog.ConnectorDecl, diags *Diagnostics) {
	if _, ok := cat.Clusters[conn.ClusterName]; !ok {
		diags.addErr(&ResolveError{Kind: "UnknownCluster", Message: fmt.Sprintf("connector %q references unknown cluster %q", conn.Name, conn.ClusterName)})
	}
	if cat.Connections == nil || cat.Connections.Connections == nil {
		diags.addErr(&ResolveError{Kind: "UnknownConnection", Message: fmt.Sprintf("connector %q references connection %q but no connection profile is loaded", conn.Name, conn.ConnectionName)})
	} else if _, ok := cat.Connections.Connections[conn.ConnectionName]; !ok {
		diags.addErr(&ResolveError{Kind: "UnknownConnection", Message: fmt.Sprintf("connector %q references unknown connection %q", conn.Name, conn.ConnectionName)})
	}
	for _, p := range conn.Pipelines {
		if !cat.Has(catalog.KindPipeline, p) {
			diags.addErr(&ResolveError{Kind: "UnknownPipeline", Message: fmt.Sprintf("connector %q references unknown pipeline %q", conn.Name, p)})
		}
	}
}

// checkPresetChain follows SmtDecl.PresetRef as long as it names another
// declared SMT (rather than a terminal built-in preset), failing with
// *PresetCycle if a name reappears in the chain (invariant I4).
func checkPresetChain(cat *catalog.Catalog, start string) error {
	visited := map[string]bool{}
	chain := []string{start}
	current := start

	for {
		if visited[current] {
			return &PresetCycle{Chain: append(chain, current)}
		}
		visited[current] = true

		if _, ok := catalog.BuiltinPreset(current); ok {
			return nil // terminal: built-in presets don't chain further
		}

		decl, err := cat.Get(catalog.KindSmt, current)
		if err != nil {
			return nil // not a declared SMT either; validateSmt's own check covers unknown refs elsewhere
		}
		smt := decl.(*catalog.SmtDecl)
		if smt.PresetRef == "" {
			return nil
		}
		current = smt.PresetRef
		chain = append(chain, current)
	}
}
