// Package parser implements the extended SQL dialect grammar from
// spec.md §4.1: standard SELECT syntax with `ref`/`source` macro table
// references, plus the four Kafka DDL statement forms (CONNECTOR, SIMPLE
// MESSAGE TRANSFORM, ... PIPELINE, ... PREDICATE).
//
// The parser is a hand-written recursive-descent parser over a 3-token
// lookahead buffer, following the same structure as a classic SQL
// recursive-descent parser: a flat Lexer feeding Parser.nextToken, with
// grammar productions split across files by concern (expressions, FROM
// clauses, Kafka DDL).
package parser

import (
	"strconv"
	"strings"

	"github.com/foundrydata/foundry/internal/token"
)

// Parser parses one source file's statements into an AST.
type Parser struct {
	lexer *Lexer
	tok   token.Token
	peek  token.Token
	peek2 token.Token

	diags Diagnostics
}

// NewParser creates a parser over sql.
func NewParser(sql string) *Parser {
	p := &Parser{lexer: NewLexer(sql)}
	p.next()
	p.next()
	p.next()
	return p
}

func (p *Parser) next() {
	p.tok = p.peek
	p.peek = p.peek2
	p.peek2 = p.lexer.NextToken()
}

func (p *Parser) check(t token.Type) bool { return p.tok.Type == t }

func (p *Parser) match(t token.Type) bool {
	if p.check(t) {
		p.next()
		return true
	}
	return false
}

func (p *Parser) expect(t token.Type) bool {
	if p.match(t) {
		return true
	}
	p.diags.Add(p.tok.Span.Start, "unexpected token %q, expected %v", p.tok.Literal, t)
	return false
}

func (p *Parser) addError(format string, args ...any) {
	p.diags.Add(p.tok.Span.Start, format, args...)
}

func (p *Parser) span(start token.Position) token.Span {
	return token.Span{Start: start, End: p.tok.Span.Start}
}

// ParsedFile is the result of parsing a single source file: all top-level
// statements plus the span of each `ref`/`source` macro call found inside
// model SELECTs, gathered so the resolver can do span-based substitution
// without a second parse pass (spec.md §4.1 "must preserve source spans").
type ParsedFile struct {
	Statements []Statement
	MacroCalls []*MacroCall
}

// Parse parses every statement in sql (separated by `;`) and returns the
// parsed file plus any diagnostics. Parsing continues past a statement-level
// error so multiple problems can be reported in one pass (spec.md §7).
func Parse(sql string) (*ParsedFile, *Diagnostics) {
	p := NewParser(sql)
	file := &ParsedFile{}

	for !p.check(token.EOF) {
		start := p.tok.Span.Start
		stmt := p.parseStatement()
		if stmt == nil {
			// Avoid infinite loop on unrecoverable input.
			if p.check(token.EOF) {
				break
			}
			p.next()
			continue
		}
		file.Statements = append(file.Statements, stmt)
		if sel, ok := stmt.(*SelectStmt); ok {
			collectMacroCalls(sel, &file.MacroCalls)
		}
		p.match(token.SEMICOLON)
		_ = start
	}

	return file, &p.diags
}

// parseStatement dispatches on the leading keyword.
func (p *Parser) parseStatement() Statement {
	switch {
	case p.check(token.SELECT) || p.check(token.WITH):
		return p.parseSelectStmt()
	case p.check(token.CREATE):
		return p.parseCreateStmt()
	default:
		p.addError("expected SELECT or CREATE, got %q", p.tok.Literal)
		return nil
	}
}

// parseIfNotExists consumes an optional `IF NOT EXISTS` clause.
func (p *Parser) parseIfNotExists() bool {
	if !p.check(token.IF) {
		return false
	}
	p.next()
	p.expectIdent("NOT")
	p.expect(token.EXISTS)
	return true
}

// expectIdent matches an identifier/keyword token whose literal equals want
// (case-insensitively). Used for contextual keywords that are not reserved
// words in the token table (e.g. NOT, PRESET, USING KAFKA CLUSTER segments).
func (p *Parser) expectIdent(want string) bool {
	if strings.EqualFold(p.tok.Literal, want) {
		p.next()
		return true
	}
	p.addError("expected %q, got %q", want, p.tok.Literal)
	return false
}

func (p *Parser) checkIdent(want string) bool {
	return strings.EqualFold(p.tok.Literal, want)
}

// parseStringLiteral consumes a single-quoted string literal and returns its
// unquoted value.
func (p *Parser) parseStringLiteral() string {
	if !p.check(token.STRING) {
		p.addError("expected string literal, got %q", p.tok.Literal)
		return ""
	}
	v := p.tok.Literal
	p.next()
	return v
}

// parseIdentOrKeyword returns the current token's literal as an identifier,
// accepting any non-punctuation token (so contextual keywords like `table`
// column names don't break parsing), and advances.
func (p *Parser) parseIdentOrKeyword() string {
	lit := p.tok.Literal
	p.next()
	return lit
}

func parseIntLiteral(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
