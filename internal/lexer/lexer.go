package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/skyrlang/skyr/internal/token"
)

// Lexer turns source text into tokens. Leading whitespace is converted into
// INDENT/DEDENT tokens; newlines inside (), [] or {} are suppressed so
// expressions may span lines.
type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           rune // current char under examination
	line         int  // current line number
	column       int  // current column number

	indents  []int         // indentation stack, always starts with 0
	pending  []token.Token // queued DEDENT tokens
	depth    int           // bracket nesting depth
	atLineNL bool          // a logical line is open, NEWLINE owed at EOL
	bol      bool          // at beginning of a line, indentation not yet measured
}

func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0, indents: []int{0}, bol: true}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}

	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = l.readPosition
		l.readPosition++
		l.column++
		return
	}
	r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += w
	l.column++
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func (l *Lexer) pos() token.Pos {
	return token.Pos{Line: l.line, Column: l.column}
}

// NextToken returns the next token in the stream, emitting layout tokens
// where the indentation structure demands them.
func (l *Lexer) NextToken() token.Token {
	if len(l.pending) > 0 {
		tok := l.pending[0]
		l.pending = l.pending[1:]
		return tok
	}

	if l.bol && l.depth == 0 {
		if tok, ok := l.measureIndent(); ok {
			return tok
		}
	}

	l.skipSpaces()

	switch l.ch {
	case 0:
		return l.finish()
	case '\n':
		l.readChar()
		if l.depth > 0 {
			return l.NextToken() // newline inside brackets is not significant
		}
		l.bol = true
		if l.atLineNL {
			l.atLineNL = false
			return token.Token{Type: token.NEWLINE, Lexeme: "\n", Pos: l.pos()}
		}
		return l.NextToken() // blank line
	case '#':
		for l.ch != '\n' && l.ch != 0 {
			l.readChar()
		}
		return l.NextToken()
	}

	l.atLineNL = true
	start := l.pos()

	switch l.ch {
	case '=':
		return l.choose2('=', token.EQ, token.ASSIGN, start)
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return token.Token{Type: token.NEQ, Lexeme: "!=", Pos: start}
		}
		tok := l.illegal("unexpected character '!'", start)
		l.readChar()
		return tok
	case '<':
		if l.peekChar() == '<' {
			l.readChar()
			return l.single(token.LSHIFT, "<<", start)
		}
		return l.choose2('=', token.LE, token.LT, start)
	case '>':
		if l.peekChar() == '>' {
			l.readChar()
			return l.single(token.RSHIFT, ">>", start)
		}
		return l.choose2('=', token.GE, token.GT, start)
	case '+':
		return l.choose2('=', token.PLUS_ASSIGN, token.PLUS, start)
	case '-':
		return l.choose2('=', token.MINUS_ASSIGN, token.MINUS, start)
	case '*':
		if l.peekChar() == '*' {
			l.readChar()
			return l.single(token.STARSTAR, "**", start)
		}
		return l.choose2('=', token.STAR_ASSIGN, token.STAR, start)
	case '/':
		if l.peekChar() == '/' {
			l.readChar()
			if l.peekChar() == '=' {
				l.readChar()
				return l.single(token.SLASH2_ASSIGN, "//=", start)
			}
			return l.single(token.SLASH_SLASH, "//", start)
		}
		return l.choose2('=', token.SLASH_ASSIGN, token.SLASH, start)
	case '%':
		return l.choose2('=', token.PERCENT_ASSIGN, token.PERCENT, start)
	case '&':
		return l.single(token.AMP, "&", start)
	case '|':
		return l.single(token.PIPE, "|", start)
	case '^':
		return l.single(token.CARET, "^", start)
	case '~':
		return l.single(token.TILDE, "~", start)
	case ',':
		return l.single(token.COMMA, ",", start)
	case ':':
		return l.single(token.COLON, ":", start)
	case ';':
		return l.single(token.SEMICOLON, ";", start)
	case '.':
		if isDigit(l.peekChar()) {
			return l.readNumber()
		}
		return l.single(token.DOT, ".", start)
	case '(':
		l.depth++
		return l.single(token.LPAREN, "(", start)
	case ')':
		l.depth--
		return l.single(token.RPAREN, ")", start)
	case '[':
		l.depth++
		return l.single(token.LBRACKET, "[", start)
	case ']':
		l.depth--
		return l.single(token.RBRACKET, "]", start)
	case '{':
		l.depth++
		return l.single(token.LBRACE, "{", start)
	case '}':
		l.depth--
		return l.single(token.RBRACE, "}", start)
	case '"', '\'':
		return l.readString()
	}

	if isLetter(l.ch) {
		return l.readIdent()
	}
	if isDigit(l.ch) {
		return l.readNumber()
	}

	tok := l.illegal("unexpected character "+string(l.ch), start)
	l.readChar()
	return tok
}

// measureIndent consumes the leading whitespace of a fresh line and reports
// the layout token it implies, if any.
func (l *Lexer) measureIndent() (token.Token, bool) {
	col := 0
	for {
		switch l.ch {
		case ' ':
			col++
			l.readChar()
		case '\t':
			col += 8 - col%8
			l.readChar()
		case '#':
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
		case '\n':
			// blank line, restart measurement
			col = 0
			l.readChar()
		case 0:
			l.bol = false
			return token.Token{}, false
		default:
			l.bol = false
			return l.applyIndent(col)
		}
	}
}

func (l *Lexer) applyIndent(col int) (token.Token, bool) {
	cur := l.indents[len(l.indents)-1]
	pos := l.pos()
	switch {
	case col > cur:
		l.indents = append(l.indents, col)
		return token.Token{Type: token.INDENT, Pos: pos}, true
	case col < cur:
		for len(l.indents) > 1 && l.indents[len(l.indents)-1] > col {
			l.indents = l.indents[:len(l.indents)-1]
			l.pending = append(l.pending, token.Token{Type: token.DEDENT, Pos: pos})
		}
		if l.indents[len(l.indents)-1] != col {
			l.pending = append(l.pending, l.illegal("unindent does not match any outer indentation level", pos))
		}
		tok := l.pending[0]
		l.pending = l.pending[1:]
		return tok, true
	default:
		return token.Token{}, false
	}
}

// finish flushes the trailing NEWLINE and any open DEDENTs before EOF.
func (l *Lexer) finish() token.Token {
	pos := l.pos()
	if l.atLineNL {
		l.atLineNL = false
		return token.Token{Type: token.NEWLINE, Lexeme: "\n", Pos: pos}
	}
	if len(l.indents) > 1 {
		l.indents = l.indents[:len(l.indents)-1]
		return token.Token{Type: token.DEDENT, Pos: pos}
	}
	return token.Token{Type: token.EOF, Pos: pos}
}

func (l *Lexer) skipSpaces() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' {
		l.readChar()
	}
}

func (l *Lexer) single(t token.Type, lexeme string, pos token.Pos) token.Token {
	l.readChar()
	return token.Token{Type: t, Lexeme: lexeme, Pos: pos}
}

// choose2 emits yes when the next char matches, otherwise no.
func (l *Lexer) choose2(next rune, yes, no token.Type, pos token.Pos) token.Token {
	ch := l.ch
	if l.peekChar() == next {
		l.readChar()
		lex := string(ch) + string(next)
		l.readChar()
		return token.Token{Type: yes, Lexeme: lex, Pos: pos}
	}
	l.readChar()
	return token.Token{Type: no, Lexeme: string(ch), Pos: pos}
}

func (l *Lexer) readIdent() token.Token {
	pos := l.pos()
	start := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	word := l.input[start:l.position]
	return token.Token{Type: token.LookupIdent(word), Lexeme: word, Literal: word, Pos: pos}
}

func (l *Lexer) readNumber() token.Token {
	pos := l.pos()
	start := l.position
	isFloat := false

	if l.ch == '0' && (l.peekChar() == 'x' || l.peekChar() == 'X' ||
		l.peekChar() == 'o' || l.peekChar() == 'O' ||
		l.peekChar() == 'b' || l.peekChar() == 'B') {
		l.readChar()
		l.readChar()
		for isHexDigit(l.ch) || l.ch == '_' {
			l.readChar()
		}
		word := l.input[start:l.position]
		return token.Token{Type: token.INT, Lexeme: word, Literal: strings.ReplaceAll(word, "_", ""), Pos: pos}
	}

	for isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}
	if l.ch == '.' && !isLetter(l.peekChar()) && l.peekChar() != '.' {
		isFloat = true
		l.readChar()
		for isDigit(l.ch) || l.ch == '_' {
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		if isDigit(l.peekChar()) || l.peekChar() == '+' || l.peekChar() == '-' {
			isFloat = true
			l.readChar()
			if l.ch == '+' || l.ch == '-' {
				l.readChar()
			}
			for isDigit(l.ch) {
				l.readChar()
			}
		}
	}

	word := l.input[start:l.position]
	literal := strings.ReplaceAll(word, "_", "")
	if isFloat {
		return token.Token{Type: token.FLOAT, Lexeme: word, Literal: literal, Pos: pos}
	}
	return token.Token{Type: token.INT, Lexeme: word, Literal: literal, Pos: pos}
}

func (l *Lexer) readString() token.Token {
	pos := l.pos()
	quote := l.ch
	triple := false
	l.readChar()
	if l.ch == quote && l.peekChar() == quote {
		triple = true
		l.readChar()
		l.readChar()
	} else if l.ch == quote {
		l.readChar()
		return token.Token{Type: token.STRING, Lexeme: `""`, Literal: "", Pos: pos}
	}

	var sb strings.Builder
	for {
		if l.ch == 0 {
			return l.illegal("unterminated string literal", pos)
		}
		if !triple && l.ch == '\n' {
			return l.illegal("newline in string literal", pos)
		}
		if l.ch == quote {
			if !triple {
				l.readChar()
				break
			}
			if l.peekChar() == quote {
				l.readChar()
				if l.peekChar() == quote {
					l.readChar()
					l.readChar()
					break
				}
				sb.WriteRune(quote)
				sb.WriteRune(quote)
				l.readChar()
				continue
			}
			sb.WriteRune(quote)
			l.readChar()
			continue
		}
		if l.ch == '\\' {
			l.readChar()
			switch l.ch {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case '\\':
				sb.WriteByte('\\')
			case '\'':
				sb.WriteByte('\'')
			case '"':
				sb.WriteByte('"')
			case '0':
				sb.WriteByte(0)
			case '\n':
				// escaped newline joins the lines
			default:
				return l.illegal("invalid escape sequence \\"+string(l.ch), pos)
			}
			l.readChar()
			continue
		}
		sb.WriteRune(l.ch)
		l.readChar()
	}
	s := sb.String()
	return token.Token{Type: token.STRING, Lexeme: s, Literal: s, Pos: pos}
}

func (l *Lexer) illegal(msg string, pos token.Pos) token.Token {
	return token.Token{Type: token.ILLEGAL, Literal: msg, Pos: pos}
}

func isLetter(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch rune) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}
