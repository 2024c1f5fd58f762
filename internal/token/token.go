package token

import "fmt"

// Type identifies the lexical class of a token.
type Type string

const (
	ILLEGAL Type = "ILLEGAL"
	EOF     Type = "EOF"

	// Layout tokens. The lexer turns leading whitespace into INDENT/DEDENT
	// pairs so the parser never sees raw indentation.
	NEWLINE Type = "NEWLINE"
	INDENT  Type = "INDENT"
	DEDENT  Type = "DEDENT"

	// Identifiers and literals
	IDENT  Type = "IDENT"
	INT    Type = "INT"
	FLOAT  Type = "FLOAT"
	STRING Type = "STRING"

	// Operators
	ASSIGN         Type = "="
	PLUS           Type = "+"
	MINUS          Type = "-"
	STAR           Type = "*"
	SLASH          Type = "/"
	SLASH_SLASH    Type = "//"
	PERCENT        Type = "%"
	PLUS_ASSIGN    Type = "+="
	MINUS_ASSIGN   Type = "-="
	STAR_ASSIGN    Type = "*="
	SLASH_ASSIGN   Type = "/="
	SLASH2_ASSIGN  Type = "//="
	PERCENT_ASSIGN Type = "%="
	EQ             Type = "=="
	NEQ            Type = "!="
	LT             Type = "<"
	GT             Type = ">"
	LE             Type = "<="
	GE             Type = ">="
	AMP            Type = "&"
	PIPE           Type = "|"
	CARET          Type = "^"
	TILDE          Type = "~"
	LSHIFT         Type = "<<"
	RSHIFT         Type = ">>"
	STARSTAR       Type = "**"

	// Delimiters
	COMMA     Type = ","
	COLON     Type = ":"
	SEMICOLON Type = ";"
	DOT       Type = "."
	LPAREN    Type = "("
	RPAREN    Type = ")"
	LBRACKET  Type = "["
	RBRACKET  Type = "]"
	LBRACE    Type = "{"
	RBRACE    Type = "}"

	// Keywords
	DEF      Type = "DEF"
	IF       Type = "IF"
	ELIF     Type = "ELIF"
	ELSE     Type = "ELSE"
	FOR      Type = "FOR"
	IN       Type = "IN"
	NOT      Type = "NOT"
	AND      Type = "AND"
	OR       Type = "OR"
	RETURN   Type = "RETURN"
	BREAK    Type = "BREAK"
	CONTINUE Type = "CONTINUE"
	PASS     Type = "PASS"
	LOAD     Type = "LOAD"
	LAMBDA   Type = "LAMBDA"
	NONE     Type = "NONE"
	TRUE     Type = "TRUE"
	FALSE    Type = "FALSE"

	// Reserved but rejected: the language forbids unbounded loops, so the
	// parser reports a dedicated error when it sees WHILE.
	WHILE Type = "WHILE"
)

// Pos is a source position.
type Pos struct {
	Line   int // 1-based
	Column int // 1-based, in runes
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token is a single lexeme with its source position.
type Token struct {
	Type    Type
	Lexeme  string // raw text of the token
	Literal string // decoded value for STRING, digits for INT/FLOAT
	Pos     Pos
}

var keywords = map[string]Type{
	"def":      DEF,
	"if":       IF,
	"elif":     ELIF,
	"else":     ELSE,
	"for":      FOR,
	"in":       IN,
	"not":      NOT,
	"and":      AND,
	"or":       OR,
	"return":   RETURN,
	"break":    BREAK,
	"continue": CONTINUE,
	"pass":     PASS,
	"load":     LOAD,
	"lambda":   LAMBDA,
	"None":     NONE,
	"True":     TRUE,
	"False":    FALSE,
	"while":    WHILE,
}

// LookupIdent maps an identifier to its keyword type, or IDENT.
func LookupIdent(ident string) Type {
	if t, ok := keywords[ident]; ok {
		return t
	}
	return IDENT
}
