package lexer_test

import (
	"testing"

	"github.com/skyrlang/skyr/internal/lexer"
	"github.com/skyrlang/skyr/internal/token"
)

func tokenize(src string) []token.Token {
	l := lexer.New(src)
	var toks []token.Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			return toks
		}
	}
}

func types(toks []token.Token) []token.Type {
	out := make([]token.Type, len(toks))
	for i, t := range toks {
		out[i] = t.Type
	}
	return out
}

func expectTypes(t *testing.T, src string, want []token.Type) {
	t.Helper()
	got := types(tokenize(src))
	if len(got) != len(want) {
		t.Fatalf("token count: got %d (%v), want %d (%v)", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %s, want %s (stream %v)", i, got[i], want[i], got)
		}
	}
}

func TestOperators(t *testing.T) {
	tests := []struct {
		src  string
		want token.Type
	}{
		{"==", token.EQ},
		{"!=", token.NEQ},
		{"<=", token.LE},
		{">=", token.GE},
		{"//", token.SLASH_SLASH},
		{"//=", token.SLASH2_ASSIGN},
		{"**", token.STARSTAR},
		{"+=", token.PLUS_ASSIGN},
		{"<<", token.LSHIFT},
		{">>", token.RSHIFT},
	}
	for _, tt := range tests {
		toks := tokenize(tt.src)
		if toks[0].Type != tt.want {
			t.Errorf("%q: got %s, want %s", tt.src, toks[0].Type, tt.want)
		}
	}
}

func TestIndentation(t *testing.T) {
	src := "if x:\n    y = 1\n    z = 2\nw = 3\n"
	expectTypes(t, src, []token.Type{
		token.IF, token.IDENT, token.COLON, token.NEWLINE,
		token.INDENT,
		token.IDENT, token.ASSIGN, token.INT, token.NEWLINE,
		token.IDENT, token.ASSIGN, token.INT, token.NEWLINE,
		token.DEDENT,
		token.IDENT, token.ASSIGN, token.INT, token.NEWLINE,
		token.EOF,
	})
}

func TestNestedDedents(t *testing.T) {
	src := "def f():\n    if x:\n        return 1\n"
	got := types(tokenize(src))
	dedents := 0
	for _, tt := range got {
		if tt == token.DEDENT {
			dedents++
		}
	}
	if dedents != 2 {
		t.Fatalf("dedents: got %d, want 2 (stream %v)", dedents, got)
	}
}

func TestBadDedent(t *testing.T) {
	src := "if x:\n        a = 1\n    b = 2\n"
	for _, tok := range tokenize(src) {
		if tok.Type == token.ILLEGAL {
			return
		}
	}
	t.Fatal("expected ILLEGAL token for unaligned dedent")
}

func TestBracketsSuppressNewlines(t *testing.T) {
	src := "x = [1,\n     2,\n     3]\n"
	expectTypes(t, src, []token.Type{
		token.IDENT, token.ASSIGN,
		token.LBRACKET, token.INT, token.COMMA, token.INT, token.COMMA, token.INT, token.RBRACKET,
		token.NEWLINE, token.EOF,
	})
}

func TestBlankLinesAndComments(t *testing.T) {
	src := "a = 1\n\n# comment\n   # indented comment\nb = 2\n"
	expectTypes(t, src, []token.Type{
		token.IDENT, token.ASSIGN, token.INT, token.NEWLINE,
		token.IDENT, token.ASSIGN, token.INT, token.NEWLINE,
		token.EOF,
	})
}

func TestNumbers(t *testing.T) {
	tests := []struct {
		src     string
		typ     token.Type
		literal string
	}{
		{"42", token.INT, "42"},
		{"1_000_000", token.INT, "1000000"},
		{"0x1f", token.INT, "0x1f"},
		{"0o17", token.INT, "0o17"},
		{"0b101", token.INT, "0b101"},
		{"3.14", token.FLOAT, "3.14"},
		{"1e10", token.FLOAT, "1e10"},
		{"2.5e-3", token.FLOAT, "2.5e-3"},
		{".5", token.FLOAT, ".5"},
	}
	for _, tt := range tests {
		toks := tokenize(tt.src)
		if toks[0].Type != tt.typ || toks[0].Literal != tt.literal {
			t.Errorf("%q: got (%s, %q), want (%s, %q)",
				tt.src, toks[0].Type, toks[0].Literal, tt.typ, tt.literal)
		}
	}
}

func TestStrings(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{`"hello"`, "hello"},
		{`'hello'`, "hello"},
		{`"a\nb"`, "a\nb"},
		{`"tab\there"`, "tab\there"},
		{`"quote\"inside"`, `quote"inside`},
		{`""`, ""},
		{`"""multi
line"""`, "multi\nline"},
	}
	for _, tt := range tests {
		toks := tokenize(tt.src)
		if toks[0].Type != token.STRING {
			t.Errorf("%q: got %s, want STRING", tt.src, toks[0].Type)
			continue
		}
		if toks[0].Literal != tt.want {
			t.Errorf("%q: got %q, want %q", tt.src, toks[0].Literal, tt.want)
		}
	}
}

func TestUnterminatedString(t *testing.T) {
	toks := tokenize(`"abc`)
	if toks[0].Type != token.ILLEGAL {
		t.Fatalf("got %s, want ILLEGAL", toks[0].Type)
	}
}

func TestKeywords(t *testing.T) {
	src := "def if elif else for in not and or return break continue pass load lambda None True False while"
	want := []token.Type{
		token.DEF, token.IF, token.ELIF, token.ELSE, token.FOR, token.IN,
		token.NOT, token.AND, token.OR, token.RETURN, token.BREAK,
		token.CONTINUE, token.PASS, token.LOAD, token.LAMBDA,
		token.NONE, token.TRUE, token.FALSE, token.WHILE,
		token.NEWLINE, token.EOF,
	}
	expectTypes(t, src, want)
}

func TestPositions(t *testing.T) {
	toks := tokenize("a = 1\nbb = 22\n")
	// bb starts line 2 column 1
	var bb token.Token
	for _, tok := range toks {
		if tok.Lexeme == "bb" {
			bb = tok
		}
	}
	if bb.Pos.Line != 2 || bb.Pos.Column != 1 {
		t.Fatalf("bb position: got %v, want 2:1", bb.Pos)
	}
}
