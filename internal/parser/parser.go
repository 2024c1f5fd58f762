package parser

import (
	"fmt"
	"math/big"
	"strconv"

	"github.com/skyrlang/skyr/internal/ast"
	"github.com/skyrlang/skyr/internal/lexer"
	"github.com/skyrlang/skyr/internal/token"
)

// Error is a parse error with its source position.
type Error struct {
	Pos token.Pos
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: syntax error: %s", e.Pos, e.Msg)
}

// Parser consumes the token stream of one module.
type Parser struct {
	l      *lexer.Lexer
	cur    token.Token
	peek   token.Token
	errors []*Error
}

func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	p.next()
	p.next()
	return p
}

// Parse parses a whole module from source. It is the package entry point.
func Parse(path, src string) (*ast.Module, []*Error) {
	p := New(lexer.New(src))
	m := p.parseModule()
	m.Path = path
	return m, p.errors
}

func (p *Parser) Errors() []*Error { return p.errors }

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
	if p.peek.Type == token.ILLEGAL {
		p.errorf(p.peek.Pos, "%s", p.peek.Literal)
	}
}

func (p *Parser) errorf(pos token.Pos, format string, args ...interface{}) {
	if len(p.errors) < 20 {
		p.errors = append(p.errors, &Error{Pos: pos, Msg: fmt.Sprintf(format, args...)})
	}
}

func (p *Parser) expect(t token.Type) bool {
	if p.cur.Type == t {
		p.next()
		return true
	}
	p.errorf(p.cur.Pos, "expected %s, got %s", t, describe(p.cur))
	return false
}

func describe(t token.Token) string {
	switch t.Type {
	case token.EOF:
		return "end of file"
	case token.NEWLINE:
		return "newline"
	case token.INDENT:
		return "indent"
	case token.DEDENT:
		return "unindent"
	case token.IDENT, token.INT, token.FLOAT, token.STRING:
		return fmt.Sprintf("%s %q", t.Type, t.Lexeme)
	default:
		return fmt.Sprintf("%q", string(t.Type))
	}
}

func (p *Parser) parseModule() *ast.Module {
	m := &ast.Module{}
	for p.cur.Type != token.EOF {
		if p.cur.Type == token.NEWLINE {
			p.next()
			continue
		}
		stmt := p.parseStatement()
		if stmt != nil {
			m.Statements = append(m.Statements, stmt)
		} else {
			p.sync()
		}
	}
	return m
}

// sync skips to the start of the next logical line after an error.
func (p *Parser) sync() {
	for p.cur.Type != token.NEWLINE && p.cur.Type != token.EOF {
		p.next()
	}
	if p.cur.Type == token.NEWLINE {
		p.next()
	}
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.cur.Type {
	case token.DEF:
		return p.parseDef()
	case token.IF:
		return p.parseIf()
	case token.FOR:
		return p.parseFor()
	case token.WHILE:
		p.errorf(p.cur.Pos, "while loops are not supported; iteration must be bounded")
		return nil
	default:
		return p.parseSimpleStatement(true)
	}
}

// parseSimpleStatement parses one small statement. When eatNewline is set it
// also consumes the statement terminator (NEWLINE or ';').
func (p *Parser) parseSimpleStatement(eatNewline bool) ast.Statement {
	var stmt ast.Statement
	switch p.cur.Type {
	case token.RETURN:
		tok := p.cur
		p.next()
		var result ast.Expression
		if p.cur.Type != token.NEWLINE && p.cur.Type != token.SEMICOLON && p.cur.Type != token.EOF {
			result = p.parseTupleExpr()
		}
		stmt = &ast.ReturnStatement{Token: tok, Result: result}
	case token.BREAK:
		stmt = &ast.BreakStatement{Token: p.cur}
		p.next()
	case token.CONTINUE:
		stmt = &ast.ContinueStatement{Token: p.cur}
		p.next()
	case token.PASS:
		stmt = &ast.PassStatement{Token: p.cur}
		p.next()
	case token.LOAD:
		stmt = p.parseLoad()
	default:
		stmt = p.parseExprOrAssign()
	}

	if stmt != nil && eatNewline {
		p.endOfLine()
	}
	return stmt
}

func (p *Parser) endOfLine() {
	switch p.cur.Type {
	case token.NEWLINE:
		p.next()
	case token.SEMICOLON:
		p.next()
		if p.cur.Type == token.NEWLINE {
			p.next()
		}
	case token.EOF, token.DEDENT:
		// fine
	default:
		p.errorf(p.cur.Pos, "unexpected %s after statement", describe(p.cur))
		p.sync()
	}
}

var assignOps = map[token.Type]bool{
	token.ASSIGN:         true,
	token.PLUS_ASSIGN:    true,
	token.MINUS_ASSIGN:   true,
	token.STAR_ASSIGN:    true,
	token.SLASH_ASSIGN:   true,
	token.SLASH2_ASSIGN:  true,
	token.PERCENT_ASSIGN: true,
}

func (p *Parser) parseExprOrAssign() ast.Statement {
	tok := p.cur
	lhs := p.parseTupleExpr()
	if lhs == nil {
		return nil
	}
	if assignOps[p.cur.Type] {
		opTok := p.cur
		p.next()
		rhs := p.parseTupleExpr()
		if rhs == nil {
			return nil
		}
		return &ast.AssignStatement{Token: opTok, Op: opTok.Type, LHS: lhs, RHS: rhs}
	}
	return &ast.ExprStatement{Token: tok, Expr: lhs}
}

func (p *Parser) parseDef() ast.Statement {
	tok := p.cur
	p.next()
	if p.cur.Type != token.IDENT {
		p.errorf(p.cur.Pos, "expected function name, got %s", describe(p.cur))
		return nil
	}
	name := &ast.Ident{Token: p.cur, Name: p.cur.Lexeme}
	p.next()
	if !p.expect(token.LPAREN) {
		return nil
	}
	params := p.parseParams()
	if !p.expect(token.RPAREN) {
		return nil
	}
	body := p.parseSuite()
	return &ast.DefStatement{Token: tok, Name: name, Params: params, Body: body}
}

func (p *Parser) parseParams() []ast.Param {
	var params []ast.Param
	for p.cur.Type != token.RPAREN && p.cur.Type != token.EOF {
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
			if param.Star || param.StarStar {
				p.errorf(p.cur.Pos, "starred parameter cannot have a default")
			}
			p.next()
			param.Default = p.parseTest()
		}
		params = append(params, param)
		if p.cur.Type != token.COMMA {
			break
		}
		p.next()
	}
	return params
}

// parseSuite parses `: NEWLINE INDENT stmts DEDENT` or an inline `: stmt`.
func (p *Parser) parseSuite() []ast.Statement {
	if !p.expect(token.COLON) {
		return nil
	}
	if p.cur.Type != token.NEWLINE {
		// inline suite: one or more simple statements on the same line
		var stmts []ast.Statement
		for {
			stmt := p.parseSimpleStatement(false)
			if stmt == nil {
				p.sync()
				return stmts
			}
			stmts = append(stmts, stmt)
			if p.cur.Type == token.SEMICOLON {
				p.next()
				continue
			}
			break
		}
		if p.cur.Type == token.NEWLINE {
			p.next()
		}
		return stmts
	}
	p.next() // NEWLINE
	if !p.expect(token.INDENT) {
		return nil
	}
	var stmts []ast.Statement
	for p.cur.Type != token.DEDENT && p.cur.Type != token.EOF {
		if p.cur.Type == token.NEWLINE {
			p.next()
			continue
		}
		stmt := p.parseStatement()
		if stmt != nil {
			stmts = append(stmts, stmt)
		} else {
			p.sync()
		}
	}
	p.expect(token.DEDENT)
	return stmts
}

func (p *Parser) parseIf() ast.Statement {
	tok := p.cur
	p.next()
	cond := p.parseTest()
	if cond == nil {
		return nil
	}
	body := p.parseSuite()
	stmt := &ast.IfStatement{Token: tok, Cond: cond, True: body}
	switch p.cur.Type {
	case token.ELIF:
		elif := p.parseIf()
		if elif != nil {
			stmt.False = []ast.Statement{elif}
		}
	case token.ELSE:
		p.next()
		stmt.False = p.parseSuite()
	}
	return stmt
}

func (p *Parser) parseFor() ast.Statement {
	tok := p.cur
	p.next()
	vars := p.parseForVars()
	if vars == nil {
		return nil
	}
	if !p.expect(token.IN) {
		return nil
	}
	x := p.parseTupleExpr()
	if x == nil {
		return nil
	}
	body := p.parseSuite()
	return &ast.ForStatement{Token: tok, Vars: vars, X: x, Body: body}
}

// parseForVars parses the loop variables: `x`, `x, y` or `(x, y)`.
func (p *Parser) parseForVars() ast.Expression {
	first := p.parsePrimaryTarget()
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
		if p.cur.Type == token.IN {
			break
		}
		e := p.parsePrimaryTarget()
		if e == nil {
			return nil
		}
		elems = append(elems, e)
	}
	return &ast.TupleExpr{Token: tok, Elems: elems}
}

func (p *Parser) parsePrimaryTarget() ast.Expression {
	if p.cur.Type == token.LPAREN {
		tok := p.cur
		p.next()
		var elems []ast.Expression
		for p.cur.Type != token.RPAREN && p.cur.Type != token.EOF {
			e := p.parsePrimaryTarget()
			if e == nil {
				return nil
			}
			elems = append(elems, e)
			if p.cur.Type == token.COMMA {
				p.next()
			}
		}
		p.expect(token.RPAREN)
		return &ast.TupleExpr{Token: tok, Elems: elems}
	}
	if p.cur.Type != token.IDENT {
		p.errorf(p.cur.Pos, "expected loop variable, got %s", describe(p.cur))
		return nil
	}
	id := &ast.Ident{Token: p.cur, Name: p.cur.Lexeme}
	p.next()
	return id
}

func (p *Parser) parseLoad() ast.Statement {
	tok := p.cur
	p.next()
	if !p.expect(token.LPAREN) {
		return nil
	}
	if p.cur.Type != token.STRING {
		p.errorf(p.cur.Pos, "load: first argument must be a module string")
		return nil
	}
	stmt := &ast.LoadStatement{Token: tok, Module: p.cur.Literal}
	p.next()
	for p.cur.Type == token.COMMA {
		p.next()
		if p.cur.Type == token.RPAREN {
			break
		}
		switch p.cur.Type {
		case token.STRING:
			name := p.cur.Literal
			local := &ast.Ident{Token: p.cur, Name: name}
			stmt.Bindings = append(stmt.Bindings, ast.LoadBinding{Local: local, Orig: name})
			p.next()
		case token.IDENT:
			local := &ast.Ident{Token: p.cur, Name: p.cur.Lexeme}
			p.next()
			if !p.expect(token.ASSIGN) {
				return nil
			}
			if p.cur.Type != token.STRING {
				p.errorf(p.cur.Pos, "load: binding value must be a string")
				return nil
			}
			stmt.Bindings = append(stmt.Bindings, ast.LoadBinding{Local: local, Orig: p.cur.Literal})
			p.next()
		default:
			p.errorf(p.cur.Pos, "load: expected binding, got %s", describe(p.cur))
			return nil
		}
	}
	if !p.expect(token.RPAREN) {
		return nil
	}
	if len(stmt.Bindings) == 0 {
		p.errorf(tok.Pos, "load: must bind at least one symbol")
	}
	return stmt
}

// ---- literal helpers ----

func (p *Parser) parseIntLit() ast.Expression {
	tok := p.cur
	p.next()
	lit := tok.Literal
	base := 10
	digits := lit
	if len(lit) > 2 && lit[0] == '0' {
		switch lit[1] {
		case 'x', 'X':
			base, digits = 16, lit[2:]
		case 'o', 'O':
			base, digits = 8, lit[2:]
		case 'b', 'B':
			base, digits = 2, lit[2:]
		}
	}
	if v, err := strconv.ParseInt(digits, base, 64); err == nil {
		return &ast.IntLit{Token: tok, Value: v}
	}
	b, ok := new(big.Int).SetString(digits, base)
	if !ok {
		p.errorf(tok.Pos, "invalid integer literal %q", tok.Lexeme)
		return nil
	}
	return &ast.IntLit{Token: tok, Big: b}
}

func (p *Parser) parseFloatLit() ast.Expression {
	tok := p.cur
	p.next()
	v, err := strconv.ParseFloat(tok.Literal, 64)
	if err != nil {
		p.errorf(tok.Pos, "invalid float literal %q", tok.Lexeme)
		return nil
	}
	return &ast.FloatLit{Token: tok, Value: v}
}
