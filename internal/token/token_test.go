package token_test

import (
	"testing"

	"github.com/foundrydata/foundry/internal/token"
	"github.com/stretchr/testify/assert"
)

func TestLookupIdentCaseInsensitive(t *testing.T) {
	assert.Equal(t, token.SELECT, token.LookupIdent("select"))
	assert.Equal(t, token.SELECT, token.LookupIdent("SELECT"))
	assert.Equal(t, token.CONNECTOR_VERSION, token.LookupIdent("version"))
	assert.Equal(t, token.IDENT, token.LookupIdent("orders"))
}

func TestIsMacroName(t *testing.T) {
	assert.True(t, token.IsMacroName("ref"))
	assert.True(t, token.IsMacroName("source"))
	assert.False(t, token.IsMacroName("REF"))
	assert.False(t, token.IsMacroName("other"))
}

func TestSpanString(t *testing.T) {
	sp := token.Span{Start: token.Position{Line: 1, Column: 1}, End: token.Position{Line: 1, Column: 5}}
	assert.Equal(t, "1:1-1:5", sp.String())
}
