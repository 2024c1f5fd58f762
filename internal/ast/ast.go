package ast

import (
	"math/big"

	"github.com/skyrlang/skyr/internal/token"
)

// Node is the base interface for all AST nodes.
type Node interface {
	GetToken() token.Token
}

// Statement is a Node that represents a statement.
type Statement interface {
	Node
	statementNode()
}

// Expression is a Node that represents an expression.
type Expression interface {
	Node
	expressionNode()
}

// Module is the root node of every parsed file.
type Module struct {
	Path       string // source file path, "" for in-memory sources
	Statements []Statement
}

func (m *Module) GetToken() token.Token {
	if len(m.Statements) > 0 {
		return m.Statements[0].GetToken()
	}
	return token.Token{}
}

// ---- statements ----

// ExprStatement wraps an expression evaluated for effect.
type ExprStatement struct {
	Token token.Token
	Expr  Expression
}

func (s *ExprStatement) statementNode()        {}
func (s *ExprStatement) GetToken() token.Token { return s.Token }

// AssignStatement is `lhs = rhs` or an augmented form like `lhs += rhs`.
// The left side is an Ident, IndexExpr, DotExpr, or a tuple/list of targets.
type AssignStatement struct {
	Token token.Token // the assignment operator token
	Op    token.Type  // ASSIGN, PLUS_ASSIGN, ...
	LHS   Expression
	RHS   Expression
}

func (s *AssignStatement) statementNode()        {}
func (s *AssignStatement) GetToken() token.Token { return s.Token }

// Param is one parameter in a function signature.
type Param struct {
	Name     *Ident
	Default  Expression // nil unless `name=expr`
	Star     bool       // *args
	StarStar bool       // **kwargs
}

// DefStatement declares a function.
type DefStatement struct {
	Token  token.Token // the 'def' token
	Name   *Ident
	Params []Param
	Body   []Statement
}

func (s *DefStatement) statementNode()        {}
func (s *DefStatement) GetToken() token.Token { return s.Token }

// IfStatement covers if/elif/else chains; elif is a nested IfStatement in Else.
type IfStatement struct {
	Token token.Token
	Cond  Expression
	True  []Statement
	False []Statement // nil, another IfStatement (elif), or else body
}

func (s *IfStatement) statementNode()        {}
func (s *IfStatement) GetToken() token.Token { return s.Token }

// ForStatement is `for vars in x: body`. Vars is an Ident or a tuple of them.
type ForStatement struct {
	Token token.Token
	Vars  Expression
	X     Expression
	Body  []Statement
}

func (s *ForStatement) statementNode()        {}
func (s *ForStatement) GetToken() token.Token { return s.Token }

type ReturnStatement struct {
	Token  token.Token
	Result Expression // nil for bare return
}

func (s *ReturnStatement) statementNode()        {}
func (s *ReturnStatement) GetToken() token.Token { return s.Token }

type BreakStatement struct{ Token token.Token }

func (s *BreakStatement) statementNode()        {}
func (s *BreakStatement) GetToken() token.Token { return s.Token }

type ContinueStatement struct{ Token token.Token }

func (s *ContinueStatement) statementNode()        {}
func (s *ContinueStatement) GetToken() token.Token { return s.Token }

type PassStatement struct{ Token token.Token }

func (s *PassStatement) statementNode()        {}
func (s *PassStatement) GetToken() token.Token { return s.Token }

// LoadBinding is one `local="orig"` or `"name"` entry in a load statement.
type LoadBinding struct {
	Local *Ident // name bound in this module
	Orig  string // exported name in the loaded module
}

// LoadStatement is `load("module", "a", b="c")`. Only legal at top level.
type LoadStatement struct {
	Token    token.Token
	Module   string
	Bindings []LoadBinding
}

func (s *LoadStatement) statementNode()        {}
func (s *LoadStatement) GetToken() token.Token { return s.Token }

// ---- expressions ----

type Ident struct {
	Token token.Token
	Name  string
}

func (e *Ident) expressionNode()       {}
func (e *Ident) GetToken() token.Token { return e.Token }

// IntLit carries either a small value or, when the literal overflows int64,
// an arbitrary-precision one.
type IntLit struct {
	Token token.Token
	Value int64
	Big   *big.Int // nil unless the literal does not fit in int64
}

func (e *IntLit) expressionNode()       {}
func (e *IntLit) GetToken() token.Token { return e.Token }

type FloatLit struct {
	Token token.Token
	Value float64
}

func (e *FloatLit) expressionNode()       {}
func (e *FloatLit) GetToken() token.Token { return e.Token }

type StringLit struct {
	Token token.Token
	Value string
}

func (e *StringLit) expressionNode()       {}
func (e *StringLit) GetToken() token.Token { return e.Token }

type BoolLit struct {
	Token token.Token
	Value bool
}

func (e *BoolLit) expressionNode()       {}
func (e *BoolLit) GetToken() token.Token { return e.Token }

type NoneLit struct{ Token token.Token }

func (e *NoneLit) expressionNode()       {}
func (e *NoneLit) GetToken() token.Token { return e.Token }

type ListExpr struct {
	Token token.Token
	Elems []Expression
}

func (e *ListExpr) expressionNode()       {}
func (e *ListExpr) GetToken() token.Token { return e.Token }

// TupleExpr is a parenthesized or bare tuple. Bare tuples appear in
// assignment targets and return values.
type TupleExpr struct {
	Token token.Token
	Elems []Expression
}

func (e *TupleExpr) expressionNode()       {}
func (e *TupleExpr) GetToken() token.Token { return e.Token }

type DictEntry struct {
	Key   Expression
	Value Expression
}

type DictExpr struct {
	Token   token.Token
	Entries []DictEntry
}

func (e *DictExpr) expressionNode()       {}
func (e *DictExpr) GetToken() token.Token { return e.Token }

type UnaryExpr struct {
	Token token.Token
	Op    token.Type // MINUS, PLUS, TILDE, NOT
	X     Expression
}

func (e *UnaryExpr) expressionNode()       {}
func (e *UnaryExpr) GetToken() token.Token { return e.Token }

// BinaryExpr covers arithmetic, comparison, membership and logic operators.
// NotIn marks `x not in y`, which lexes as NOT followed by IN.
type BinaryExpr struct {
	Token token.Token
	Op    token.Type
	NotIn bool
	Left  Expression
	Right Expression
}

func (e *BinaryExpr) expressionNode()       {}
func (e *BinaryExpr) GetToken() token.Token { return e.Token }

// CondExpr is `a if cond else b`.
type CondExpr struct {
	Token token.Token
	Cond  Expression
	True  Expression
	False Expression
}

func (e *CondExpr) expressionNode()       {}
func (e *CondExpr) GetToken() token.Token { return e.Token }

type IndexExpr struct {
	Token token.Token
	X     Expression
	Index Expression
}

func (e *IndexExpr) expressionNode()       {}
func (e *IndexExpr) GetToken() token.Token { return e.Token }

// SliceExpr is x[lo:hi:step]; any of the three may be nil.
type SliceExpr struct {
	Token token.Token
	X     Expression
	Lo    Expression
	Hi    Expression
	Step  Expression
}

func (e *SliceExpr) expressionNode()       {}
func (e *SliceExpr) GetToken() token.Token { return e.Token }

type DotExpr struct {
	Token token.Token
	X     Expression
	Name  *Ident
}

func (e *DotExpr) expressionNode()       {}
func (e *DotExpr) GetToken() token.Token { return e.Token }

// CallArg is one argument in a call: positional, named, *list or **dict.
type CallArg struct {
	Name     *Ident // nil for positional
	Value    Expression
	Star     bool
	StarStar bool
}

type CallExpr struct {
	Token token.Token
	Fn    Expression
	Args  []CallArg
}

func (e *CallExpr) expressionNode()       {}
func (e *CallExpr) GetToken() token.Token { return e.Token }

// LambdaExpr is an anonymous single-expression function.
type LambdaExpr struct {
	Token  token.Token
	Params []Param
	Body   Expression
}

func (e *LambdaExpr) expressionNode()       {}
func (e *LambdaExpr) GetToken() token.Token { return e.Token }

// CompClause is one `for vars in x` clause with its trailing `if` filters.
type CompClause struct {
	Vars Expression
	X    Expression
	Ifs  []Expression
}

// Comprehension is a list or dict comprehension.
type Comprehension struct {
	Token   token.Token
	IsDict  bool
	Body    Expression // element, or value when IsDict
	Key     Expression // nil unless IsDict
	Clauses []CompClause
}

func (e *Comprehension) expressionNode()       {}
func (e *Comprehension) GetToken() token.Token { return e.Token }
