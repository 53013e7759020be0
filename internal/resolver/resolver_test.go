package resolver_test

import (
	"testing"

	"github.com/foundrydata/foundry/internal/catalog"
	"github.com/foundrydata/foundry/internal/parser"
	"github.com/foundrydata/foundry/internal/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseModel(t *testing.T, layer, name, sql string) *resolver.ParsedModel {
	t.Helper()
	file, diags := parser.Parse(sql)
	require.False(t, diags.HasErrors(), diags.Errors)
	return &resolver.ParsedModel{
		Decl:       &catalog.ModelDecl{Layer: layer, Name: name, RawSQL: sql},
		MacroCalls: file.MacroCalls,
	}
}

func TestResolveRefSubstitution(t *testing.T) {
	cat := catalog.New()
	require.NoError(t, cat.Insert(catalog.KindModel, "staging_orders", &catalog.ModelDecl{Layer: "staging", Name: "orders"}))

	pm := parseModel(t, "marts", "orders_summary", `SELECT * FROM ref('staging','orders')`)
	require.NoError(t, cat.Insert(catalog.KindModel, "marts_orders_summary", pm.Decl))

	result, diags := resolver.Resolve(cat, []*resolver.ParsedModel{pm})
	require.False(t, diags.HasErrors())

	assert.Contains(t, pm.Decl.CompiledSQL, `"staging"."orders"`)
	assert.Contains(t, result.Edges, resolver.Edge{From: "staging_orders", To: "marts_orders_summary"})
}

func TestResolveSourceSubstitution(t *testing.T) {
	cat := catalog.New()
	cat.SourceDBs["app_db"] = &catalog.DatabaseSpec{
		Name:    "app_db",
		Schemas: []catalog.SchemaSpec{{Name: "public", Tables: []string{"customers"}}},
	}

	pm := parseModel(t, "staging", "customers", `SELECT * FROM source('app_db','customers')`)
	require.NoError(t, cat.Insert(catalog.KindModel, "staging_customers", pm.Decl))

	result, diags := resolver.Resolve(cat, []*resolver.ParsedModel{pm})
	require.False(t, diags.HasErrors())
	assert.Contains(t, pm.Decl.CompiledSQL, `"app_db"."public"."customers"`)
	assert.Len(t, result.SourceTables, 1)
}

func TestResolveAmbiguousSourceSurfacesWarning(t *testing.T) {
	cat := catalog.New()
	cat.SourceDBs["app_db"] = &catalog.DatabaseSpec{
		Name: "app_db",
		Schemas: []catalog.SchemaSpec{
			{Name: "public", Tables: []string{"customers"}},
			{Name: "legacy", Tables: []string{"customers"}},
		},
	}

	pm := parseModel(t, "staging", "customers", `SELECT * FROM source('app_db','customers')`)
	require.NoError(t, cat.Insert(catalog.KindModel, "staging_customers", pm.Decl))

	_, diags := resolver.Resolve(cat, []*resolver.ParsedModel{pm})
	require.False(t, diags.HasErrors())
	require.Len(t, diags.Warnings, 1)
	_, ok := diags.Warnings[0].(*catalog.AmbiguousSource)
	assert.True(t, ok)
}

func TestResolveUnknownRefIsError(t *testing.T) {
	cat := catalog.New()
	pm := parseModel(t, "marts", "orders_summary", `SELECT * FROM ref('staging','orders')`)

	_, diags := resolver.Resolve(cat, []*resolver.ParsedModel{pm})
	assert.True(t, diags.HasErrors())
}

func TestPredicateInvariants(t *testing.T) {
	cat := catalog.New()
	require.NoError(t, cat.Insert(catalog.KindPredicate, "missing_pattern", &catalog.PredicateDecl{
		Name: "missing_pattern", Kind: catalog.PredicateTopicNameMatches,
	}))
	require.NoError(t, cat.Insert(catalog.KindPredicate, "unexpected_pattern", &catalog.PredicateDecl{
		Name: "unexpected_pattern", Kind: catalog.PredicateRecordIsTombstone, Pattern: "x",
	}))

	_, diags := resolver.Resolve(cat, nil)
	assert.True(t, diags.HasErrors())
	assert.Len(t, diags.Errors, 2)
}

func TestPredicateNameMatchingKeywordWithMismatchedKindIsRejected(t *testing.T) {
	cat := catalog.New()
	require.NoError(t, cat.Insert(catalog.KindPredicate, "TopicNameMatches", &catalog.PredicateDecl{
		Name: "TopicNameMatches", Kind: catalog.PredicateRecordIsTombstone,
	}))

	_, diags := resolver.Resolve(cat, nil)
	assert.True(t, diags.HasErrors())
}

func TestPredicateNameMatchingKeywordWithAgreeingKindIsAllowed(t *testing.T) {
	cat := catalog.New()
	require.NoError(t, cat.Insert(catalog.KindPredicate, "RecordIsTombstone", &catalog.PredicateDecl{
		Name: "RecordIsTombstone", Kind: catalog.PredicateRecordIsTombstone,
	}))

	_, diags := resolver.Resolve(cat, nil)
	assert.False(t, diags.HasErrors())
}

func TestPipelineStepUnknownSMT(t *testing.T) {
	cat := catalog.New()
	require.NoError(t, cat.Insert(catalog.KindPipeline, "p1", &catalog.PipelineDecl{
		Name:  "p1",
		Steps: []catalog.PipelineStep{{SmtName: "nonexistent"}},
	}))

	_, diags := resolver.Resolve(cat, nil)
	assert.True(t, diags.HasErrors())
}

func TestPipelineStepAllowsBuiltinPreset(t *testing.T) {
	cat := catalog.New()
	require.NoError(t, cat.Insert(catalog.KindPipeline, "p1", &catalog.PipelineDecl{
		Name:  "p1",
		Steps: []catalog.PipelineStep{{SmtName: "debezium.unwrap_default"}},
	}))

	_, diags := resolver.Resolve(cat, nil)
	assert.False(t, diags.HasErrors())
}

func TestConnectorCrossReferences(t *testing.T) {
	cat := catalog.New()
	cat.Clusters["main"] = &catalog.KafkaClusterSpec{Name: "main"}
	cat.Connections = &catalog.ConnectionProfile{
		Connections: map[string]catalog.ConnectionDef{"app_db": {AdapterType: "postgres"}},
	}
	require.NoError(t, cat.Insert(catalog.KindPipeline, "mask_pii", &catalog.PipelineDecl{Name: "mask_pii"}))
	require.NoError(t, cat.Insert(catalog.KindConnector, "orders_src", &catalog.ConnectorDecl{
		Name: "orders_src", ClusterName: "main", ConnectionName: "app_db", Pipelines: []string{"mask_pii"},
	}))

	_, diags := resolver.Resolve(cat, nil)
	assert.False(t, diags.HasErrors())
}

func TestConnectorUnknownClusterAndConnection(t *testing.T) {
	cat := catalog.New()
	require.NoError(t, cat.Insert(catalog.KindConnector, "orders_src", &catalog.ConnectorDecl{
		Name: "orders_src", ClusterName: "missing", ConnectionName: "missing",
	}))

	_, diags := resolver.Resolve(cat, nil)
	assert.True(t, diags.HasErrors())
	assert.GreaterOrEqual(t, len(diags.Errors), 2)
}

func TestPresetCycleDetected(t *testing.T) {
	cat := catalog.New()
	require.NoError(t, cat.Insert(catalog.KindSmt, "a", &catalog.SmtDecl{Name: "a", PresetRef: "b"}))
	require.NoError(t, cat.Insert(catalog.KindSmt, "b", &catalog.SmtDecl{Name: "b", PresetRef: "a"}))

	_, diags := resolver.Resolve(cat, nil)
	require.True(t, diags.HasErrors())

	found := false
	for _, err := range diags.Errors {
		if _, ok := err.(*resolver.PresetCycle); ok {
			found = true
		}
	}
	assert.True(t, found)
}
