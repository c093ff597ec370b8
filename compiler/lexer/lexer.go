// Package lexer converts GUL source text into a token stream.  The
// grammar is indentation sensitive, so the lexer synthesizes Indent,
// Dedent, and Newline tokens by measuring leading whitespace against a
// stack of indentation widths (the off-side rule).
package lexer

import (
	"fmt"
	"strings"

	"github.com/gul-lang/gul/compiler/diag"
)

// Tokenize scans the whole source and returns the token stream ending
// in EOF.  Lexing failures are terminal: the first one aborts the scan
// and is returned as the error.
func Tokenize(f *diag.File) ([]Token, error) {
	l := &lexer{
		file:    f,
		src:     f.Text(),
		indents: []int{0},
		errs:    diag.NewList(f),
	}
	if err := l.run(); err != nil {
		return nil, err
	}
	return l.tokens, nil
}

type lexer struct {
	file    *diag.File
	src     string
	pos     int
	indents []int
	depth   int // open bracket depth
	tokens  []Token
	errs    *diag.List
}

func (l *lexer) run() error {
	for l.pos < len(l.src) {
		if l.depth == 0 {
			if done, err := l.lineStart(); err != nil {
				return err
			} else if done {
				continue
			}
		}
		if err := l.scanLine(); err != nil {
			return err
		}
	}
	// Close any open block and finish the stream.
	if n := len(l.tokens); n > 0 && l.tokens[n-1].Kind != Newline {
		l.emit(Newline, l.pos, l.pos)
	}
	for len(l.indents) > 1 {
		l.indents = l.indents[:len(l.indents)-1]
		l.emit(Dedent, l.pos, l.pos)
	}
	l.emit(EOF, l.pos, l.pos)
	return nil
}

// lineStart measures leading whitespace and emits Indent/Dedent
// tokens.  It returns true when the line held no tokens (blank or
// comment-only) and has been consumed entirely.
func (l *lexer) lineStart() (bool, error) {
	width := 0
	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case ' ':
			width++
		case '\t':
			width += 8 - width%8
		default:
			goto measured
		}
		l.pos++
	}
measured:
	if l.pos >= len(l.src) || l.src[l.pos] == '\n' {
		// Blank line: no layout tokens.
		if l.pos < len(l.src) {
			l.pos++
		}
		return true, nil
	}
	if strings.HasPrefix(l.src[l.pos:], "//") {
		l.skipComment()
		if l.pos < len(l.src) {
			l.pos++ // newline
		}
		return true, nil
	}
	top := l.indents[len(l.indents)-1]
	if width > top {
		l.indents = append(l.indents, width)
		l.emit(Indent, l.pos, l.pos)
		return false, nil
	}
	for width < l.indents[len(l.indents)-1] {
		l.indents = l.indents[:len(l.indents)-1]
		l.emit(Dedent, l.pos, l.pos)
	}
	if width != l.indents[len(l.indents)-1] {
		l.errs.AddHint(diag.InconsistentIndent,
			fmt.Sprintf("unindent to column %d does not match any outer indentation level", width+1),
			"align this line with an enclosing block", l.pos, l.pos)
		return false, l.errs.Error()
	}
	return false, nil
}

// scanLine emits tokens until the end of the logical line.  A newline
// inside unbalanced brackets is treated as whitespace and the line
// continues.
func (l *lexer) scanLine() error {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == '\n':
			l.pos++
			if l.depth > 0 {
				continue
			}
			l.emit(Newline, l.pos-1, l.pos-1)
			return nil
		case c == ' ' || c == '\t' || c == '\r':
			l.pos++
		case strings.HasPrefix(l.src[l.pos:], "//"):
			l.skipComment()
		case isIdentStart(c):
			l.scanIdent()
		case isDigit(c):
			l.scanNumber()
		case c == '"':
			if err := l.scanString(); err != nil {
				return err
			}
		default:
			if err := l.scanOperator(); err != nil {
				return err
			}
		}
	}
	return nil
}

func (l *lexer) skipComment() {
	for l.pos < len(l.src) && l.src[l.pos] != '\n' {
		l.pos++
	}
}

func (l *lexer) scanIdent() {
	start := l.pos
	for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
		l.pos++
	}
	text := l.src[start:l.pos]
	kind := Ident
	if text == "_" {
		kind = Underscore
	} else if kw, ok := keywords[text]; ok {
		kind = kw
	}
	l.emitText(kind, text, start)
}

func (l *lexer) scanNumber() {
	start := l.pos
	for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
		l.pos++
	}
	kind := Int
	if l.pos+1 < len(l.src) && l.src[l.pos] == '.' && isDigit(l.src[l.pos+1]) {
		kind = Float
		l.pos++
		for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			l.pos++
		}
	}
	l.emitText(kind, l.src[start:l.pos], start)
}

func (l *lexer) scanString() error {
	start := l.pos
	l.pos++ // opening quote
	var b strings.Builder
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch c {
		case '"':
			l.pos++
			l.tokens = append(l.tokens, l.token(String, b.String(), start, l.pos))
			return nil
		case '\n':
			goto unterminated
		case '\\':
			if l.pos+1 >= len(l.src) {
				goto unterminated
			}
			esc := l.src[l.pos+1]
			switch esc {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '\\':
				b.WriteByte('\\')
			case '"':
				b.WriteByte('"')
			default:
				l.errs.AddHint(diag.InvalidEscape,
					fmt.Sprintf("unknown escape sequence '\\%c'", esc),
					`supported escapes are \n, \t, \r, \\, and \"`, l.pos, l.pos+2)
				return l.errs.Error()
			}
			l.pos += 2
		default:
			b.WriteByte(c)
			l.pos++
		}
	}
unterminated:
	l.errs.Add(diag.UnterminatedString, "string literal has no closing quote", start, l.pos)
	return l.errs.Error()
}

var operators = []struct {
	text string
	kind Kind
}{
	{"==", EqEq},
	{"!=", BangEq},
	{"<=", LtEq},
	{">=", GtEq},
	{"&&", AndAnd},
	{"||", OrOr},
	{"->", Arrow},
	{"=>", FatArrow},
	{"+", Plus},
	{"-", Minus},
	{"*", Star},
	{"/", Slash},
	{"%", Percent},
	{"=", Eq},
	{"<", Lt},
	{">", Gt},
	{"!", Bang},
	{"&", Amp},
	{"(", LParen},
	{")", RParen},
	{"[", LBracket},
	{"]", RBracket},
	{"{", LBrace},
	{"}", RBrace},
	{",", Comma},
	{":", Colon},
	{".", Dot},
	{";", Semicolon},
}

func (l *lexer) scanOperator() error {
	rest := l.src[l.pos:]
	for _, op := range operators {
		if strings.HasPrefix(rest, op.text) {
			start := l.pos
			l.pos += len(op.text)
			switch op.kind {
			case LParen, LBracket, LBrace:
				l.depth++
			case RParen, RBracket, RBrace:
				if l.depth > 0 {
					l.depth--
				}
			}
			l.emitText(op.kind, op.text, start)
			return nil
		}
	}
	l.errs.Add(diag.InvalidCharacter,
		fmt.Sprintf("invalid character %q", rune(l.src[l.pos])), l.pos, l.pos+1)
	return l.errs.Error()
}

func (l *lexer) emit(kind Kind, start, end int) {
	l.tokens = append(l.tokens, l.token(kind, l.src[start:end], start, end))
}

func (l *lexer) emitText(kind Kind, text string, start int) {
	l.tokens = append(l.tokens, l.token(kind, text, start, start+len(text)))
}

func (l *lexer) token(kind Kind, text string, start, end int) Token {
	p := l.file.Position(start)
	return Token{Kind: kind, Text: text, Pos: start, End: end, Line: p.Line, Column: p.Column}
}

func isIdentStart(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
