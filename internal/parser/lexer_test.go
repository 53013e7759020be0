package parser_test

import (
	"testing"

	"github.com/foundrydata/foundry/internal/parser"
	"github.com/foundrydata/foundry/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexerTokenizesPunctuationAndKeywords(t *testing.T) {
	l := parser.NewLexer(`SELECT * FROM t1 WHERE a <= 2 AND b <> 'x'`)

	var types []token.Type
	for {
		tk := l.NextToken()
		types = append(types, tk.Type)
		if tk.Type == token.EOF {
			break
		}
	}

	assert.Equal(t, token.SELECT, types[0])
	assert.Equal(t, token.STAR, types[1])
	assert.Equal(t, token.FROM, types[2])
	assert.Contains(t, types, token.LTE)
	assert.Contains(t, types, token.NEQ)
	assert.Contains(t, types, token.STRING)
}

func TestLexerHandlesLineAndBlockComments(t *testing.T) {
	l := parser.NewLexer("SELECT 1 -- trailing comment\n/* block\ncomment */ FROM t")
	for {
		tk := l.NextToken()
		if tk.Type == token.EOF {
			break
		}
	}
	require.Len(t, l.Comments, 2)
	assert.Contains(t, l.Comments[0].Text, "trailing comment")
	assert.Contains(t, l.Comments[1].Text, "block")
}

func TestLexerEscapedQuoteInString(t *testing.T) {
	l := parser.NewLexer(`'it''s a test'`)
	tk := l.NextToken()
	require.Equal(t, token.STRING, tk.Type)
	assert.Equal(t, "it's a test", tk.Literal)
}
