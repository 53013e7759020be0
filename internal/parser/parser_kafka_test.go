package parser_test

import (
	"testing"

	"github.com/foundrydata/foundry/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCreateConnectorSource(t *testing.T) {
	sql := `CREATE KAFKA CONNECTOR KIND debezium pg source orders_src
		USING KAFKA CLUSTER 'main' (tasks.max='1', table.include.list='public.orders')
		WITH CONNECTOR VERSION '2.5' AND PIPELINES(mask_pii)
		FROM SOURCE DATABASE 'app_db'`

	file, diags := parser.Parse(sql)
	require.False(t, diags.HasErrors(), diags.Errors)
	require.Len(t, file.Statements, 1)

	c, ok := file.Statements[0].(*parser.CreateConnectorStmt)
	require.True(t, ok)
	assert.Equal(t, "orders_src", c.Name)
	assert.Equal(t, parser.DebeziumPgSource, c.Kind)
	assert.Equal(t, "main", c.ClusterName)
	assert.Equal(t, "2.5", c.Version)
	assert.Equal(t, parser.IdentList{"mask_pii"}, c.Pipelines)
	assert.False(t, c.IsSink)
	assert.Equal(t, "app_db", c.ConnectionName)
	require.Len(t, c.Properties, 2)
}

func TestParseCreateConnectorSink(t *testing.T) {
	sql := `CREATE KAFKA CONNECTOR IF NOT EXISTS KIND confluent pg sink orders_sink
		USING KAFKA CLUSTER 'main' ()
		WITH CONNECTOR VERSION '1.0'
		INTO WAREHOUSE DATABASE 'analytics' USING SCHEMA 'raw'`

	file, diags := parser.Parse(sql)
	require.False(t, diags.HasErrors(), diags.Errors)

	c := file.Statements[0].(*parser.CreateConnectorStmt)
	assert.True(t, c.IfNotExists)
	assert.Equal(t, parser.ConfluentPgSink, c.Kind)
	assert.True(t, c.IsSink)
	assert.Equal(t, "analytics", c.ConnectionName)
	assert.Equal(t, "raw", c.TargetSchema)
}

func TestParseCreateSmtWithPresetAndPredicate(t *testing.T) {
	sql := `CREATE KAFKA SIMPLE MESSAGE TRANSFORM mask_pii
		PRESET debezium.unwrap_default
		EXTEND (drop.tombstones='false')
		WITH PREDICATE 'is_tombstone' NEGATE`

	file, diags := parser.Parse(sql)
	require.False(t, diags.HasErrors(), diags.Errors)

	s := file.Statements[0].(*parser.CreateSmtStmt)
	assert.Equal(t, "mask_pii", s.Name)
	assert.Equal(t, "debezium.unwrap_default", s.PresetRef)
	require.Len(t, s.Extend, 1)
	assert.True(t, s.HasPredicate)
	assert.Equal(t, "is_tombstone", s.PredicateRef)
	assert.True(t, s.PredicateNeg)
}

func TestParseCreateSmtPipeline(t *testing.T) {
	sql := `CREATE KAFKA SIMPLE MESSAGE TRANSFORM PIPELINE mask_pii (
		unwrap(drop.tombstones='true') AS step1,
		route
	) WITH PIPELINE PREDICATE 'routable'`

	file, diags := parser.Parse(sql)
	require.False(t, diags.HasErrors(), diags.Errors)

	p := file.Statements[0].(*parser.CreateSmtPipelineStmt)
	assert.Equal(t, "mask_pii", p.Name)
	require.Len(t, p.Steps, 2)
	assert.Equal(t, "unwrap", p.Steps[0].SmtName)
	assert.Equal(t, "step1", p.Steps[0].Alias)
	require.Len(t, p.Steps[0].Overrides, 1)
	assert.Equal(t, "route", p.Steps[1].SmtName)
	assert.True(t, p.HasPredicate)
	assert.Equal(t, "routable", p.PipelinePredicate)
}

func TestParseCreateSmtPredicate(t *testing.T) {
	sql := `CREATE KAFKA SIMPLE MESSAGE TRANSFORM PREDICATE is_orders
		USING PATTERN 'orders.*' FROM KIND TopicNameMatches`

	file, diags := parser.Parse(sql)
	require.False(t, diags.HasErrors(), diags.Errors)

	pr := file.Statements[0].(*parser.CreateSmtPredicateStmt)
	assert.Equal(t, "is_orders", pr.Name)
	assert.True(t, pr.HasPattern)
	assert.Equal(t, "orders.*", pr.Pattern)
	assert.Equal(t, parser.TopicNameMatches, pr.Kind)
}
