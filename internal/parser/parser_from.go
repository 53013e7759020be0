package parser

import "github.com/foundrydata/foundry/internal/token"

// parseSelectStmt parses an optional WITH clause followed by a SELECT body.
func (p *Parser) parseSelectStmt() *SelectStmt {
	start := p.tok.Span.Start
	stmt := &SelectStmt{}

	if p.check(token.WITH) {
		stmt.With = p.parseWithClause()
	}

	stmt.Body = p.parseSelectBody()
	stmt.Sp = p.span(start)
	return stmt
}

func (p *Parser) parseWithClause() *WithClause {
	p.next() // consume WITH
	wc := &WithClause{}
	if p.checkIdent("RECURSIVE") {
		wc.Recursive = true
		p.next()
	}
	for {
		name := p.parseIdentOrKeyword()
		p.expectIdent("AS")
		p.expect(token.LPAREN)
		sel := p.parseSelectStmt()
		p.expect(token.RPAREN)
		wc.CTEs = append(wc.CTEs, &CTE{Name: name, Select: sel})
		if !p.match(token.COMMA) {
			break
		}
	}
	return wc
}

var setOpByToken = map[token.Type]SetOpType{
	token.UNION:     SetOpUnion,
	token.INTERSECT: SetOpIntersect,
	token.EXCEPT:    SetOpExcept,
}

// parseSelectBody parses a chain of SelectCores joined by set operations.
func (p *Parser) parseSelectBody() *SelectBody {
	left := p.parseSelectCore()
	body := &SelectBody{Left: left}

	if op, ok := setOpByToken[p.tok.Type]; ok {
		p.next()
		if op == SetOpUnion && p.check(token.ALL) {
			p.next()
			op = SetOpUnionAll
		}
		body.Op = op
		body.Right = p.parseSelectBody()
	}
	return body
}

func (p *Parser) parseSelectCore() *SelectCore {
	p.expect(token.SELECT)
	core := &SelectCore{}

	if p.check(token.DISTINCT) {
		core.Distinct = true
		p.next()
	}

	core.Columns = p.parseSelectItems()

	if p.check(token.FROM) {
		p.next()
		core.From = p.parseFromClause()
	}

	if p.check(token.WHERE) {
		p.next()
		core.Where = p.parseExpr()
	}

	if p.check(token.GROUP) {
		p.next()
		p.expect(token.BY)
		core.GroupBy = append(core.GroupBy, p.parseExpr())
		for p.match(token.COMMA) {
			core.GroupBy = append(core.GroupBy, p.parseExpr())
		}
	}

	if p.check(token.HAVING) {
		p.next()
		core.Having = p.parseExpr()
	}

	if p.check(token.ORDER) {
		p.next()
		p.expect(token.BY)
		core.OrderBy = append(core.OrderBy, p.parseOrderByItem())
		for p.match(token.COMMA) {
			core.OrderBy = append(core.OrderBy, p.parseOrderByItem())
		}
	}

	if p.check(token.LIMIT) {
		p.next()
		core.Limit = p.parseExpr()
	}
	if p.check(token.OFFSET) {
		p.next()
		p.parseExpr() // offset value parsed but not tracked separately
	}

	return core
}

func (p *Parser) parseOrderByItem() OrderByItem {
	e := p.parseExpr()
	item := OrderByItem{Expr: e}
	if p.check(token.IDENT) && (p.checkIdent("DESC") || p.checkIdent("ASC")) {
		item.Desc = p.checkIdent("DESC")
		p.next()
	}
	return item
}

func (p *Parser) parseSelectItems() []SelectItem {
	var items []SelectItem
	items = append(items, p.parseSelectItem())
	for p.match(token.COMMA) {
		items = append(items, p.parseSelectItem())
	}
	return items
}

func (p *Parser) parseSelectItem() SelectItem {
	if p.check(token.STAR) {
		p.next()
		return SelectItem{Star: true}
	}
	e := p.parseExpr()
	item := SelectItem{Expr: e}
	if se, ok := e.(*StarExpr); ok && se.Table != "" {
		item.Star = true
	}
	if p.check(token.AS) {
		p.next()
		item.Alias = p.parseIdentOrKeyword()
	} else if p.check(token.IDENT) || p.check(token.QUOTED_IDENT) {
		item.Alias = p.parseIdentOrKeyword()
	}
	return item
}

// parseFromClause parses the first table source and any trailing JOINs,
// including the implicit comma-join form.
func (p *Parser) parseFromClause() *FromClause {
	fc := &FromClause{Source: p.parseTableRef()}
	for {
		switch {
		case p.check(token.COMMA):
			p.next()
			fc.Joins = append(fc.Joins, &Join{Type: JoinComma, Right: p.parseTableRef()})
		case p.check(token.JOIN):
			fc.Joins = append(fc.Joins, p.parseJoin(JoinInner))
		case p.check(token.INNER):
			p.next()
			fc.Joins = append(fc.Joins, p.parseJoin(JoinInner))
		case p.check(token.LEFT):
			p.next()
			p.match(token.OUTER)
			fc.Joins = append(fc.Joins, p.parseJoin(JoinLeft))
		case p.check(token.RIGHT):
			p.next()
			p.match(token.OUTER)
			fc.Joins = append(fc.Joins, p.parseJoin(JoinRight))
		case p.check(token.FULL):
			p.next()
			p.match(token.OUTER)
			fc.Joins = append(fc.Joins, p.parseJoin(JoinFull))
		case p.check(token.CROSS):
			p.next()
			fc.Joins = append(fc.Joins, p.parseJoin(JoinCross))
		default:
			return fc
		}
	}
}

func (p *Parser) parseJoin(t JoinType) *Join {
	p.expect(token.JOIN)
	right := p.parseTableRef()
	j := &Join{Type: t, Right: right}
	if t != JoinCross && p.check(token.ON) {
		p.next()
		j.Condition = p.parseExpr()
	}
	return j
}

// parseTableRef parses a single FROM/JOIN source: a `ref`/`source` macro
// call, a parenthesized derived table, or a plain (optionally
// schema-qualified) table name, each with an optional alias.
//
// A macro table reference is distinguished from an ordinary function-call
// expression purely by position: this function is only invoked while
// parsing FROM/JOIN sources, so `ref('a','b')` here is always a MacroTable,
// never a FuncCall (spec.md §4.1).
func (p *Parser) parseTableRef() TableRef {
	start := p.tok.Span.Start

	// `source` lexes as the SOURCE keyword (it is also Kafka DDL syntax), so
	// both token types are accepted here.
	if (p.check(token.IDENT) || p.check(token.SOURCE)) && token.IsMacroName(p.tok.Literal) && p.peek.Type == token.LPAREN {
		call := p.parseMacroCall()
		alias := p.parseOptionalAlias()
		return &MacroTable{NodeInfo: NodeInfo{Sp: p.span(start)}, Call: call, Alias: alias}
	}

	if p.check(token.LPAREN) {
		p.next()
		sel := p.parseSelectStmt()
		p.expect(token.RPAREN)
		alias := p.parseOptionalAlias()
		return &DerivedTable{NodeInfo: NodeInfo{Sp: p.span(start)}, Select: sel, Alias: alias}
	}

	schema, name := p.parseQualifiedName()
	alias := p.parseOptionalAlias()
	return &TableName{NodeInfo: NodeInfo{Sp: p.span(start)}, Schema: schema, Name: name, Alias: alias}
}

// parseMacroCall parses `ref('a')`, `ref('a','b')`, or `source('a','b')`.
// The node span covers exactly the call text, start to closing paren, so
// the resolver can replace it by byte offset without touching surrounding
// formatting (spec.md §4.3, §9).
func (p *Parser) parseMacroCall() *MacroCall {
	start := p.tok.Span.Start
	kind := MacroKind(p.tok.Literal)
	p.next()
	p.expect(token.LPAREN)

	call := &MacroCall{Kind: kind}
	call.Arg1 = p.parseStringLiteral()
	if p.match(token.COMMA) {
		call.Arg2 = p.parseStringLiteral()
	}
	p.expect(token.RPAREN)
	call.Sp = p.span(start)
	return call
}

func (p *Parser) parseQualifiedName() (schema, name string) {
	first := p.parseIdentOrKeyword()
	if p.check(token.DOT) {
		p.next()
		second := p.parseIdentOrKeyword()
		return first, second
	}
	return "", first
}

func (p *Parser) parseOptionalAlias() string {
	if p.check(token.AS) {
		p.next()
		return p.parseIdentOrKeyword()
	}
	if p.check(token.IDENT) || p.check(token.QUOTED_IDENT) {
		return p.parseIdentOrKeyword()
	}
	return ""
}

// collectMacroCalls walks a parsed SELECT and appends every MacroTable's
// call so the resolver can substitute all of them in one pass per file.
func collectMacroCalls(stmt *SelectStmt, out *[]*MacroCall) {
	if stmt == nil {
		return
	}
	if stmt.With != nil {
		for _, cte := range stmt.With.CTEs {
			collectMacroCalls(cte.Select, out)
		}
	}
	collectMacroCallsBody(stmt.Body, out)
}

func collectMacroCallsBody(body *SelectBody, out *[]*MacroCall) {
	if body == nil {
		return
	}
	collectMacroCallsCore(body.Left, out)
	collectMacroCallsBody(body.Right, out)
}

func collectMacroCallsCore(core *SelectCore, out *[]*MacroCall) {
	if core == nil || core.From == nil {
		return
	}
	collectMacroCallsRef(core.From.Source, out)
	for _, j := range core.From.Joins {
		collectMacroCallsRef(j.Right, out)
	}
}

func collectMacroCallsRef(ref TableRef, out *[]*MacroCall) {
	switch t := ref.(type) {
	case *MacroTable:
		*out = append(*out, t.Call)
	case *DerivedTable:
		collectMacroCalls(t.Select, out)
	}
}
