package parser

import (
	"github.com/skyrlang/skyr/internal/ast"
	"github.com/skyrlang/skyr/internal/token"
)

// Binding powers, low to high. Comparison operators do not chain.
const (
	precLowest = iota
	precOr
	precAnd
	precNot
	precCmp
	precBitOr
	precBitXor
	precBitAnd
	precShift
	precAdd
	precMul
	precUnary
)

var binaryPrec = map[token.Type]int{
	token.OR:          precOr,
	token.AND:         precAnd,
	token.EQ:          precCmp,
	token.NEQ:         precCmp,
	token.LT:          precCmp,
	token.GT:          precCmp,
	token.LE:          precCmp,
	token.GE:          precCmp,
	token.IN:          precCmp,
	token.NOT:         precCmp, // `not in`
	token.PIPE:        precBitOr,
	token.CARET:       precBitXor,
	token.AMP:         precBitAnd,
	token.LSHIFT:      precShift,
	token.RSHIFT:      precShift,
	token.PLUS:        precAdd,
	token.MINUS:       precAdd,
	token.STAR:        precMul,
	token.SLASH:       precMul,
	token.SLASH_SLASH: precMul,
	token.PERCENT:     precMul,
}

// parseTupleExpr parses an expression, allowing a bare comma to build a tuple:
// `1, 2, 3` or a trailing `1,`.
func (p *Parser) parseTupleExpr() ast.Expression {
	first := p.parseTest()
	if first == nil {
		return nil
	}
	if p.cur.Type != token.COMMA {
		return first
	}
	tok := p.cur
	elems := []ast.Expression{first}
	for p.cur.Type == token.COMMA {
		p.next()
		if atExprEnd(p.cur.Type) || assignOps[p.cur.Type] {
			break // trailing comma
		}
		e := p.parseTest()
		if e == nil {
			return nil
		}
		elems = append(elems, e)
	}
	return &ast.TupleExpr{Token: tok, Elems: elems}
}

func atExprEnd(t token.Type) bool {
	switch t {
	case token.NEWLINE, token.SEMICOLON, token.EOF, token.RPAREN, token.RBRACKET,
		token.RBRACE, token.COLON, token.DEDENT:
		return true
	}
	return false
}

// parseTest parses a single expression: lambda, conditional, or binary chain.
func (p *Parser) parseTest() ast.Expression {
	if p.cur.Type == token.LAMBDA {
		return p.parseLambda()
	}
	x := p.parseBinary(precLowest)
	if x == nil {
		return nil
	}
	if p.cur.Type == token.IF {
		tok := p.cur
		p.next()
		cond := p.parseBinary(precLowest)
		if cond == nil {
			return nil
		}
		if !p.expect(token.ELSE) {
			return nil
		}
		els := p.parseTest()
		if els == nil {
			return nil
		}
		return &ast.CondExpr{Token: tok, Cond: cond, True: x, False: els}
	}
	return x
}

func (p *Parser) parseLambda() ast.Expression {
	tok := p.cur
	p.next()
	var params []ast.Param
	if p.cur.Type != token.COLON {
		params = p.parseLambdaParams()
	}
	if !p.expect(token.COLON) {
		return nil
	}
	body := p.parseTest()
	if body == nil {
		return nil
	}
	return &ast.LambdaExpr{Token: tok, Params: params, Body: body}
}

func (p *Parser) parseLambdaParams() []ast.Param {
	var params []ast.Param
	for {
		var param ast.Param
		switch p.cur.Type {
		case token.STAR:
			p.next()
			param.Star = true
		case token.STARSTAR:
			p.next()
			param.StarStar = true
		}
		if p.cur.Type != token.IDENT {
			p.errorf(p.cur.Pos, "expected parameter name, got %s", describe(p.cur))
			return params
		}
		param.Name = &ast.Ident{Token: p.cur, Name: p.cur.Lexeme}
		p.next()
		if p.cur.Type == token.ASSIGN {
			p.next()
			param.Default = p.parseTest()
		}
		params = append(params, param)
		if p.cur.Type != token.COMMA {
			return params
		}
		p.next()
	}
}

func (p *Parser) parseBinary(minPrec int) ast.Expression {
	var left ast.Expression
	if p.cur.Type == token.NOT {
		tok := p.cur
		p.next()
		x := p.parseBinary(precNot)
		if x == nil {
			return nil
		}
		left = &ast.UnaryExpr{Token: tok, Op: token.NOT, X: x}
	} else {
		left = p.parseUnary()
	}
	if left == nil {
		return nil
	}

	for {
		opTok := p.cur
		prec, ok := binaryPrec[opTok.Type]
		if !ok || prec <= minPrec {
			return left
		}
		notIn := false
		if opTok.Type == token.NOT {
			if p.peek.Type != token.IN {
				return left
			}
			p.next() // NOT
			notIn = true
			opTok.Type = token.IN
		}
		p.next()
		right := p.parseBinary(prec)
		if right == nil {
			return nil
		}
		left = &ast.BinaryExpr{Token: opTok, Op: opTok.Type, NotIn: notIn, Left: left, Right: right}
	}
}

func (p *Parser) parseUnary() ast.Expression {
	switch p.cur.Type {
	case token.MINUS, token.PLUS, token.TILDE:
		tok := p.cur
		p.next()
		x := p.parseUnary()
		if x == nil {
			return nil
		}
		return &ast.UnaryExpr{Token: tok, Op: tok.Type, X: x}
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() ast.Expression {
	x := p.parsePrimary()
	if x == nil {
		return nil
	}
	for {
		switch p.cur.Type {
		case token.LPAREN:
			x = p.parseCall(x)
		case token.LBRACKET:
			x = p.parseIndexOrSlice(x)
		case token.DOT:
			tok := p.cur
			p.next()
			if p.cur.Type != token.IDENT {
				p.errorf(p.cur.Pos, "expected attribute name, got %s", describe(p.cur))
				return nil
			}
			name := &ast.Ident{Token: p.cur, Name: p.cur.Lexeme}
			p.next()
			x = &ast.DotExpr{Token: tok, X: x, Name: name}
		default:
			return x
		}
		if x == nil {
			return nil
		}
	}
}

func (p *Parser) parseCall(fn ast.Expression) ast.Expression {
	tok := p.cur
	p.next() // (
	var args []ast.CallArg
	seenKeyword := false
	for p.cur.Type != token.RPAREN && p.cur.Type != token.EOF {
		var arg ast.CallArg
		switch {
		case p.cur.Type == token.STAR:
			p.next()
			arg.Star = true
			arg.Value = p.parseTest()
		case p.cur.Type == token.STARSTAR:
			p.next()
			arg.StarStar = true
			arg.Value = p.parseTest()
		case p.cur.Type == token.IDENT && p.peek.Type == token.ASSIGN:
			arg.Name = &ast.Ident{Token: p.cur, Name: p.cur.Lexeme}
			p.next()
			p.next()
			arg.Value = p.parseTest()
			seenKeyword = true
		default:
			if seenKeyword {
				p.errorf(p.cur.Pos, "positional argument follows keyword argument")
			}
			arg.Value = p.parseTest()
		}
		if arg.Value == nil {
			return nil
		}
		args = append(args, arg)
		if p.cur.Type != token.COMMA {
			break
		}
		p.next()
	}
	if !p.expect(token.RPAREN) {
		return nil
	}
	return &ast.CallExpr{Token: tok, Fn: fn, Args: args}
}

func (p *Parser) parseIndexOrSlice(x ast.Expression) ast.Expression {
	tok := p.cur
	p.next() // [
	var lo, hi, step ast.Expression
	isSlice := false

	if p.cur.Type != token.COLON {
		lo = p.parseTest()
		if lo == nil {
			return nil
		}
	}
	if p.cur.Type == token.COLON {
		isSlice = true
		p.next()
		if p.cur.Type != token.COLON && p.cur.Type != token.RBRACKET {
			hi = p.parseTest()
			if hi == nil {
				return nil
			}
		}
		if p.cur.Type == token.COLON {
			p.next()
			if p.cur.Type != token.RBRACKET {
				step = p.parseTest()
				if step == nil {
					return nil
				}
			}
		}
	}
	if !p.expect(token.RBRACKET) {
		return nil
	}
	if isSlice {
		return &ast.SliceExpr{Token: tok, X: x, Lo: lo, Hi: hi, Step: step}
	}
	if lo == nil {
		p.errorf(tok.Pos, "empty index")
		return nil
	}
	return &ast.IndexExpr{Token: tok, X: x, Index: lo}
}

func (p *Parser) parsePrimary() ast.Expression {
	switch p.cur.Type {
	case token.IDENT:
		id := &ast.Ident{Token: p.cur, Name: p.cur.Lexeme}
		p.next()
		return id
	case token.INT:
		return p.parseIntLit()
	case token.FLOAT:
		return p.parseFloatLit()
	case token.STRING:
		lit := &ast.StringLit{Token: p.cur, Value: p.cur.Literal}
		p.next()
		return lit
	case token.TRUE:
		lit := &ast.BoolLit{Token: p.cur, Value: true}
		p.next()
		return lit
	case token.FALSE:
		lit := &ast.BoolLit{Token: p.cur, Value: false}
		p.next()
		return lit
	case token.NONE:
		lit := &ast.NoneLit{Token: p.cur}
		p.next()
		return lit
	case token.LPAREN:
		return p.parseParenExpr()
	case token.LBRACKET:
		return p.parseListOrComprehension()
	case token.LBRACE:
		return p.parseDictOrComprehension()
	}
	p.errorf(p.cur.Pos, "unexpected %s in expression", describe(p.cur))
	return nil
}

func (p *Parser) parseParenExpr() ast.Expression {
	tok := p.cur
	p.next() // (
	if p.cur.Type == token.RPAREN {
		p.next()
		return &ast.TupleExpr{Token: tok}
	}
	x := p.parseTest()
	if x == nil {
		return nil
	}
	if p.cur.Type == token.COMMA {
		elems := []ast.Expression{x}
		for p.cur.Type == token.COMMA {
			p.next()
			if p.cur.Type == token.RPAREN {
				break
			}
			e := p.parseTest()
			if e == nil {
				return nil
			}
			elems = append(elems, e)
		}
		if !p.expect(token.RPAREN) {
			return nil
		}
		return &ast.TupleExpr{Token: tok, Elems: elems}
	}
	if !p.expect(token.RPAREN) {
		return nil
	}
	return x
}

func (p *Parser) parseListOrComprehension() ast.Expression {
	tok := p.cur
	p.next() // [
	if p.cur.Type == token.RBRACKET {
		p.next()
		return &ast.ListExpr{Token: tok}
	}
	first := p.parseTest()
	if first == nil {
		return nil
	}
	if p.cur.Type == token.FOR {
		clauses := p.parseCompClauses()
		if !p.expect(token.RBRACKET) {
			return nil
		}
		return &ast.Comprehension{Token: tok, Body: first, Clauses: clauses}
	}
	elems := []ast.Expression{first}
	for p.cur.Type == token.COMMA {
		p.next()
		if p.cur.Type == token.RBRACKET {
			break
		}
		e := p.parseTest()
		if e == nil {
			return nil
		}
		elems = append(elems, e)
	}
	if !p.expect(token.RBRACKET) {
		return nil
	}
	return &ast.ListExpr{Token: tok, Elems: elems}
}

func (p *Parser) parseDictOrComprehension() ast.Expression {
	tok := p.cur
	p.next() // {
	if p.cur.Type == token.RBRACE {
		p.next()
		return &ast.DictExpr{Token: tok}
	}
	key := p.parseTest()
	if key == nil {
		return nil
	}
	if !p.expect(token.COLON) {
		return nil
	}
	value := p.parseTest()
	if value == nil {
		return nil
	}
	if p.cur.Type == token.FOR {
		clauses := p.parseCompClauses()
		if !p.expect(token.RBRACE) {
			return nil
		}
		return &ast.Comprehension{Token: tok, IsDict: true, Key: key, Body: value, Clauses: clauses}
	}
	entries := []ast.DictEntry{{Key: key, Value: value}}
	for p.cur.Type == token.COMMA {
		p.next()
		if p.cur.Type == token.RBRACE {
			break
		}
		k := p.parseTest()
		if k == nil {
			return nil
		}
		if !p.expect(token.COLON) {
			return nil
		}
		v := p.parseTest()
		if v == nil {
			return nil
		}
		entries = append(entries, ast.DictEntry{Key: k, Value: v})
	}
	if !p.expect(token.RBRACE) {
		return nil
	}
	return &ast.DictExpr{Token: tok, Entries: entries}
}

func (p *Parser) parseCompClauses() []ast.CompClause {
	var clauses []ast.CompClause
	for p.cur.Type == token.FOR {
		p.next()
		vars := p.parseForVars()
		if vars == nil {
			return clauses
		}
		if !p.expect(token.IN) {
			return clauses
		}
		x := p.parseBinary(precLowest)
		if x == nil {
			return clauses
		}
		clause := ast.CompClause{Vars: vars, X: x}
		for p.cur.Type == token.IF {
			p.next()
			cond := p.parseBinary(precLowest)
			if cond == nil {
				return clauses
			}
			clause.Ifs = append(clause.Ifs, cond)
		}
		clauses = append(clauses, clause)
	}
	return clauses
}
