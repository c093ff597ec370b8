package lexer

import "fmt"

// Kind discriminates tokens.  Layout kinds (Newline, Indent, Dedent)
// are synthesized by the off-side rule and never correspond to source
// text of their own.
type Kind int

const (
	EOF Kind = iota
	Newline
	Indent
	Dedent

	// Literals and identifiers.
	Ident
	Int
	Float
	String

	// Keywords.
	KwLet
	KwVar
	KwFn
	KwReturn
	KwIf
	KwElif
	KwElse
	KwWhile
	KwLoop
	KwMatch
	KwBreak
	KwContinue
	KwStruct
	KwEnum
	KwUse
	KwGlobal
	KwIn
	KwTrue
	KwFalse

	// Operators.
	Plus
	Minus
	Star
	Slash
	Percent
	Eq
	EqEq
	BangEq
	Lt
	LtEq
	Gt
	GtEq
	AndAnd
	OrOr
	Bang
	Amp
	Arrow    // ->
	FatArrow // =>

	// Delimiters.
	LParen
	RParen
	LBracket
	RBracket
	LBrace
	RBrace
	Comma
	Colon
	Dot
	Semicolon
	Underscore
)

var keywords = map[string]Kind{
	"let":      KwLet,
	"var":      KwVar,
	"fn":       KwFn,
	"return":   KwReturn,
	"if":       KwIf,
	"elif":     KwElif,
	"else":     KwElse,
	"while":    KwWhile,
	"loop":     KwLoop,
	"match":    KwMatch,
	"break":    KwBreak,
	"continue": KwContinue,
	"struct":   KwStruct,
	"enum":     KwEnum,
	"use":      KwUse,
	"global":   KwGlobal,
	"in":       KwIn,
	"true":     KwTrue,
	"false":    KwFalse,
}

var kindNames = map[Kind]string{
	EOF:        "end of input",
	Newline:    "newline",
	Indent:     "indent",
	Dedent:     "dedent",
	Ident:      "identifier",
	Int:        "integer literal",
	Float:      "float literal",
	String:     "string literal",
	Plus:       "'+'",
	Minus:      "'-'",
	Star:       "'*'",
	Slash:      "'/'",
	Percent:    "'%'",
	Eq:         "'='",
	EqEq:       "'=='",
	BangEq:     "'!='",
	Lt:         "'<'",
	LtEq:       "'<='",
	Gt:         "'>'",
	GtEq:       "'>='",
	AndAnd:     "'&&'",
	OrOr:       "'||'",
	Bang:       "'!'",
	Amp:        "'&'",
	Arrow:      "'->'",
	FatArrow:   "'=>'",
	LParen:     "'('",
	RParen:     "')'",
	LBracket:   "'['",
	RBracket:   "']'",
	LBrace:     "'{'",
	RBrace:     "'}'",
	Comma:      "','",
	Colon:      "':'",
	Dot:        "'.'",
	Semicolon:  "';'",
	Underscore: "'_'",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	for text, kw := range keywords {
		if kw == k {
			return fmt.Sprintf("'%s'", text)
		}
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// A Token is immutable after lexing.  Pos and End are byte offsets
// into the source; layout tokens have an empty span at the offset
// where they were synthesized.  String tokens hold the decoded value
// in Text, so the span is measured in source bytes, not text bytes.
type Token struct {
	Kind   Kind
	Text   string
	Pos    int
	End    int
	Line   int // 1-based
	Column int // 1-based
}

func (t Token) String() string {
	switch t.Kind {
	case Ident, Int, Float:
		return fmt.Sprintf("%s %q", t.Kind, t.Text)
	case String:
		return fmt.Sprintf("string literal %q", t.Text)
	}
	return t.Kind.String()
}
