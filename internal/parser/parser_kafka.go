package parser

import (
	"strings"

	"github.com/foundrydata/foundry/internal/token"
)

// parseCreateStmt dispatches the four `CREATE KAFKA ...` DDL forms
// (spec.md §4.1).
func (p *Parser) parseCreateStmt() Statement {
	p.expect(token.CREATE)
	p.expect(token.KAFKA)

	switch {
	case p.check(token.CONNECTOR):
		return p.parseCreateConnectorStmt()
	case p.check(token.SIMPLE):
		p.next()
		p.expect(token.MESSAGE)
		p.expect(token.TRANSFORM)
		switch {
		case p.check(token.PIPELINE):
			return p.parseCreateSmtPipelineStmt()
		case p.check(token.PREDICATE):
			return p.parseCreateSmtPredicateStmt()
		default:
			return p.parseCreateSmtStmt()
		}
	default:
		p.addError("expected CONNECTOR or SIMPLE MESSAGE TRANSFORM, got %q", p.tok.Literal)
		return nil
	}
}

// parseKeyValueList parses a parenthesized `( k=v, k2=v2, ... )` block of
// string-valued properties.
func (p *Parser) parseKeyValueList() []KeyValue {
	p.expect(token.LPAREN)
	var kvs []KeyValue
	if !p.check(token.RPAREN) {
		kvs = append(kvs, p.parseKeyValue())
		for p.match(token.COMMA) {
			kvs = append(kvs, p.parseKeyValue())
		}
	}
	p.expect(token.RPAREN)
	return kvs
}

// parseDottedKey parses a Kafka Connect style property key, which is
// conventionally dot-separated (`tasks.max`, `database.hostname`,
// `field.include.list`). The lexer tokenizes each segment and `.`
// separately, so the key is reassembled here.
func (p *Parser) parseDottedKey() string {
	key := p.parseIdentOrKeyword()
	for p.check(token.DOT) {
		p.next()
		key += "." + p.parseIdentOrKeyword()
	}
	return key
}

func (p *Parser) parseKeyValue() KeyValue {
	key := p.parseDottedKey()
	p.expect(token.EQ)
	val := p.parseStringLiteral()
	return KeyValue{Key: key, Value: val}
}

// parseCreateConnectorStmt parses:
//
//	CREATE KAFKA CONNECTOR [IF NOT EXISTS] KIND <vendor> <engine> <direction>
//	  <name> USING KAFKA CLUSTER '<cluster>' ( <k>=<v>, … )
//	  WITH CONNECTOR VERSION '<maj.min>' [AND PIPELINES(<p1>,…)]
//	  { FROM SOURCE DATABASE '<conn>'
//	  | INTO WAREHOUSE DATABASE '<conn>' USING SCHEMA '<schema>' };
func (p *Parser) parseCreateConnectorStmt() Statement {
	start := p.tok.Span.Start
	p.expect(token.CONNECTOR)
	ifNotExists := p.parseIfNotExists()

	p.expect(token.KIND)
	vendor := strings.ToLower(p.parseIdentOrKeyword())
	engine := strings.ToLower(p.parseIdentOrKeyword())
	direction := strings.ToLower(p.parseIdentOrKeyword())
	kind := ConnectorKind(vendor + "_" + engine + "_" + direction)

	name := p.parseIdentOrKeyword()

	p.expect(token.USING)
	p.expect(token.KAFKA)
	p.expect(token.CLUSTER)
	cluster := p.parseStringLiteral()

	props := p.parseKeyValueList()

	p.expect(token.WITH)
	p.expect(token.CONNECTOR)
	p.expect(token.CONNECTOR_VERSION)
	version := p.parseStringLiteral()

	var pipelines IdentList
	if p.check(token.AND) {
		p.next()
		p.expect(token.PIPELINES)
		p.expect(token.LPAREN)
		if !p.check(token.RPAREN) {
			pipelines = append(pipelines, p.parseIdentOrKeyword())
			for p.match(token.COMMA) {
				pipelines = append(pipelines, p.parseIdentOrKeyword())
			}
		}
		p.expect(token.RPAREN)
	}

	stmt := &CreateConnectorStmt{
		IfNotExists: ifNotExists,
		Name:        name,
		Kind:        kind,
		ClusterName: cluster,
		Properties:  props,
		Version:     version,
		Pipelines:   pipelines,
	}

	switch {
	case p.check(token.FROM):
		p.next()
		p.expect(token.SOURCE)
		p.expect(token.DATABASE)
		stmt.ConnectionName = p.parseStringLiteral()
		stmt.IsSink = false
	case p.check(token.INTO):
		p.next()
		p.expect(token.WAREHOUSE)
		p.expect(token.DATABASE)
		stmt.ConnectionName = p.parseStringLiteral()
		p.expect(token.USING)
		p.expect(token.SCHEMA)
		stmt.TargetSchema = p.parseStringLiteral()
		stmt.IsSink = true
	default:
		p.addError("expected FROM SOURCE DATABASE or INTO WAREHOUSE DATABASE, got %q", p.tok.Literal)
	}

	stmt.Sp = p.span(start)
	return stmt
}

// parseCreateSmtStmt parses:
//
//	CREATE KAFKA SIMPLE MESSAGE TRANSFORM [IF NOT EXISTS] <name>
//	  [( <k>=<v>, … )] [PRESET <preset>] [EXTEND ( … )]
//	  [WITH PREDICATE '<pred>' [NEGATE]];
func (p *Parser) parseCreateSmtStmt() Statement {
	start := p.tok.Span.Start
	ifNotExists := p.parseIfNotExists()
	name := p.parseIdentOrKeyword()

	stmt := &CreateSmtStmt{IfNotExists: ifNotExists, Name: name}

	if p.check(token.LPAREN) {
		stmt.Config = p.parseKeyValueList()
	}
	if p.check(token.PRESET) {
		p.next()
		stmt.PresetRef = p.parseDottedKey()
	}
	if p.check(token.EXTEND) {
		p.next()
		stmt.Extend = p.parseKeyValueList()
	}
	if p.check(token.WITH) {
		p.next()
		p.expect(token.PREDICATE)
		stmt.HasPredicate = true
		stmt.PredicateRef = p.parseStringLiteral()
		if p.check(token.NEGATE) {
			p.next()
			stmt.PredicateNeg = true
		}
	}

	stmt.Sp = p.span(start)
	return stmt
}

// parseCreateSmtPipelineStmt parses:
//
//	CREATE KAFKA SIMPLE MESSAGE TRANSFORM PIPELINE [IF NOT EXISTS] <name>
//	  ( <smt>[( … )] [AS <alias>], … ) [WITH PIPELINE PREDICATE '<pred>'];
func (p *Parser) parseCreateSmtPipelineStmt() Statement {
	start := p.tok.Span.Start
	p.expect(token.PIPELINE)
	ifNotExists := p.parseIfNotExists()
	name := p.parseIdentOrKeyword()

	stmt := &CreateSmtPipelineStmt{IfNotExists: ifNotExists, Name: name}

	p.expect(token.LPAREN)
	if !p.check(token.RPAREN) {
		stmt.Steps = append(stmt.Steps, p.parsePipelineStep())
		for p.match(token.COMMA) {
			stmt.Steps = append(stmt.Steps, p.parsePipelineStep())
		}
	}
	p.expect(token.RPAREN)

	if p.check(token.WITH) {
		p.next()
		p.expect(token.PIPELINE)
		p.expect(token.PREDICATE)
		stmt.HasPredicate = true
		stmt.PipelinePredicate = p.parseStringLiteral()
	}

	stmt.Sp = p.span(start)
	return stmt
}

func (p *Parser) parsePipelineStep() PipelineStepAST {
	step := PipelineStepAST{SmtName: p.parseIdentOrKeyword()}
	if p.check(token.LPAREN) {
		step.Overrides = p.parseKeyValueList()
	}
	if p.check(token.AS) {
		p.next()
		step.Alias = p.parseIdentOrKeyword()
	}
	return step
}

// parseCreateSmtPredicateStmt parses:
//
//	CREATE KAFKA SIMPLE MESSAGE TRANSFORM PREDICATE [IF NOT EXISTS] <name>
//	  [USING PATTERN '<pat>'] FROM KIND <kind>;
func (p *Parser) parseCreateSmtPredicateStmt() Statement {
	start := p.tok.Span.Start
	p.expect(token.PREDICATE)
	ifNotExists := p.parseIfNotExists()
	name := p.parseIdentOrKeyword()

	stmt := &CreateSmtPredicateStmt{IfNotExists: ifNotExists, Name: name}

	if p.check(token.USING) {
		p.next()
		p.expect(token.PATTERN)
		stmt.HasPattern = true
		stmt.Pattern = p.parseStringLiteral()
	}

	p.expect(token.FROM)
	p.expect(token.KIND)
	kindName := p.parseIdentOrKeyword()
	stmt.Kind = PredicateKind(kindName)

	stmt.Sp = p.span(start)
	return stmt
}
