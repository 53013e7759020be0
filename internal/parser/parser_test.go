package parser_test

import (
	"testing"

	"github.com/foundrydata/foundry/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSimpleSelect(t *testing.T) {
	file, diags := parser.Parse(`SELECT id, name FROM users WHERE id = 1`)
	require.False(t, diags.HasErrors(), diags.Errors)
	require.Len(t, file.Statements, 1)

	sel, ok := file.Statements[0].(*parser.SelectStmt)
	require.True(t, ok)
	require.NotNil(t, sel.Body)
	core := sel.Body.Left
	require.Len(t, core.Columns, 2)
	require.NotNil(t, core.From)
	require.NotNil(t, core.Where)
}

func TestParseRefMacroInFrom(t *testing.T) {
	file, diags := parser.Parse(`SELECT * FROM ref('staging','orders') o`)
	require.False(t, diags.HasErrors(), diags.Errors)
	require.Len(t, file.MacroCalls, 1)

	call := file.MacroCalls[0]
	assert.Equal(t, parser.MacroRef, call.Kind)
	assert.Equal(t, "staging", call.Arg1)
	assert.Equal(t, "orders", call.Arg2)

	sel := file.Statements[0].(*parser.SelectStmt)
	mt, ok := sel.Body.Left.From.Source.(*parser.MacroTable)
	require.True(t, ok)
	assert.Equal(t, "o", mt.Alias)
}

func TestParseSourceMacroInJoin(t *testing.T) {
	sql := `SELECT * FROM ref('staging','orders') o JOIN source('app_db','customers') c ON o.customer_id = c.id`
	file, diags := parser.Parse(sql)
	require.False(t, diags.HasErrors(), diags.Errors)
	require.Len(t, file.MacroCalls, 2)
	assert.Equal(t, parser.MacroSource, file.MacroCalls[1].Kind)
}

func TestRefNotRecognizedOutsideFromPosition(t *testing.T) {
	// `ref` used as an ordinary function call elsewhere in an expression is
	// NOT a macro call — only the FROM/JOIN position triggers MacroTable.
	file, diags := parser.Parse(`SELECT ref('a','b') FROM users`)
	require.False(t, diags.HasErrors(), diags.Errors)
	assert.Len(t, file.MacroCalls, 0)

	sel := file.Statements[0].(*parser.SelectStmt)
	item := sel.Body.Left.Columns[0]
	fc, ok := item.Expr.(*parser.FuncCall)
	require.True(t, ok)
	assert.Equal(t, "ref", fc.Name)
}

func TestParseCTE(t *testing.T) {
	sql := `WITH recent AS (SELECT * FROM ref('staging','orders')) SELECT * FROM recent`
	file, diags := parser.Parse(sql)
	require.False(t, diags.HasErrors(), diags.Errors)
	sel := file.Statements[0].(*parser.SelectStmt)
	require.NotNil(t, sel.With)
	require.Len(t, sel.With.CTEs, 1)
	assert.Equal(t, "recent", sel.With.CTEs[0].Name)
	require.Len(t, file.MacroCalls, 1)
}

func TestParseUnionAll(t *testing.T) {
	sql := `SELECT id FROM a UNION ALL SELECT id FROM b`
	file, diags := parser.Parse(sql)
	require.False(t, diags.HasErrors(), diags.Errors)
	sel := file.Statements[0].(*parser.SelectStmt)
	assert.Equal(t, parser.SetOpUnionAll, sel.Body.Op)
	require.NotNil(t, sel.Body.Right)
}

func TestParseSyntaxErrorReported(t *testing.T) {
	_, diags := parser.Parse(`SELECT FROM`)
	assert.True(t, diags.HasErrors())
}
