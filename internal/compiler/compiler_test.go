package compiler_test

import (
	"testing"

	"github.com/foundrydata/foundry/internal/catalog"
	"github.com/foundrydata/foundry/internal/compiler"
	"github.com/stretchr/testify/assert"
)

func TestCompileModelPassesThroughCompiledSQL(t *testing.T) {
	c := compiler.New(catalog.New())
	m := &catalog.ModelDecl{Layer: "staging", Name: "orders", CompiledSQL: `SELECT * FROM "public"."orders"`}
	assert.Equal(t, m.CompiledSQL, c.CompileModel(m))
}

func TestRenderFlatConfigSortsKeys(t *testing.T) {
	got := compiler.RenderFlatConfig(map[string]string{"b": "2", "a": "1"})
	assert.Equal(t, "a=1\nb=2", got)
}
