package lexer

import (
	"errors"
	"testing"

	"github.com/gul-lang/gul/compiler/diag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenize(t *testing.T, src string) []Token {
	tokens, err := Tokenize(diag.NewFile("test.frag", src))
	require.NoError(t, err)
	return tokens
}

func kinds(tokens []Token) []Kind {
	out := make([]Kind, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Kind
	}
	return out
}

func codeOf(t *testing.T, err error) diag.Code {
	var list diag.Errors
	require.True(t, errors.As(err, &list))
	require.NotEmpty(t, list)
	return list[0].Code
}

func TestOffsideRule(t *testing.T) {
	src := "if a:\n  b\n  if c:\n    d\ne\n"
	tokens := tokenize(t, src)
	var indents, dedents int
	depth := 0
	for _, tok := range tokens {
		switch tok.Kind {
		case Indent:
			indents++
			depth++
		case Dedent:
			dedents++
			depth--
		}
		assert.GreaterOrEqual(t, depth, 0, "dedent below the base level")
	}
	assert.Equal(t, 2, indents)
	assert.Equal(t, indents, dedents, "indent/dedent tokens must balance")
	assert.Equal(t, EOF, tokens[len(tokens)-1].Kind)
}

func TestDedentToOuterLevel(t *testing.T) {
	// A single line can close several blocks at once.
	tokens := tokenize(t, "if a:\n  if b:\n    c\nd\n")
	var run int
	max := 0
	for _, tok := range tokens {
		if tok.Kind == Dedent {
			run++
			if run > max {
				max = run
			}
		} else {
			run = 0
		}
	}
	assert.Equal(t, 2, max, "closing to the top level emits consecutive dedents")
}

func TestTabIndentation(t *testing.T) {
	// A tab advances to the next multiple of eight.
	tokens := tokenize(t, "if a:\n\tb\n        c\n")
	var indents, dedents int
	for _, tok := range tokens {
		switch tok.Kind {
		case Indent:
			indents++
		case Dedent:
			dedents++
		}
	}
	assert.Equal(t, 1, indents, "tab and eight spaces are the same level")
	assert.Equal(t, 1, dedents)
}

func TestBlankAndCommentLines(t *testing.T) {
	plain := tokenize(t, "a\nb\n")
	spaced := tokenize(t, "a\n\n   \n// note\nb\n")
	assert.Equal(t, kinds(plain), kinds(spaced),
		"blank and comment-only lines contribute no layout tokens")
}

func TestTrailingComment(t *testing.T) {
	tokens := tokenize(t, "let x = 1 // the answer\n")
	assert.Equal(t, []Kind{KwLet, Ident, Eq, Int, Newline, EOF}, kinds(tokens))
}

func TestBracketContinuation(t *testing.T) {
	tokens := tokenize(t, "let x = [1,\n    2,\n    3]\n")
	for _, tok := range tokens {
		assert.NotEqual(t, Indent, tok.Kind, "newlines inside brackets are plain whitespace")
	}
	var newlines int
	for _, tok := range tokens {
		if tok.Kind == Newline {
			newlines++
		}
	}
	assert.Equal(t, 1, newlines)
}

func TestMissingFinalNewline(t *testing.T) {
	tokens := tokenize(t, "if a:\n  b")
	n := len(tokens)
	require.GreaterOrEqual(t, n, 3)
	assert.Equal(t, EOF, tokens[n-1].Kind)
	assert.Equal(t, Dedent, tokens[n-2].Kind)
	assert.Equal(t, Newline, tokens[n-3].Kind, "the final line is terminated even without a newline")
}

func TestInconsistentIndent(t *testing.T) {
	_, err := Tokenize(diag.NewFile("test.frag", "if a:\n    b\n  c\n"))
	require.Error(t, err)
	assert.Equal(t, diag.InconsistentIndent, codeOf(t, err))
}

func TestKeywordsAndOperators(t *testing.T) {
	tokens := tokenize(t, "fn add(a: int) -> int:\n  return a\n")
	assert.Equal(t, []Kind{
		KwFn, Ident, LParen, Ident, Colon, Ident, RParen, Arrow, Ident, Colon, Newline,
		Indent, KwReturn, Ident, Newline, Dedent, EOF,
	}, kinds(tokens))
}

func TestOperatorLongestMatch(t *testing.T) {
	tokens := tokenize(t, "a <= b == c => d\n")
	assert.Equal(t, []Kind{Ident, LtEq, Ident, EqEq, Ident, FatArrow, Ident, Newline, EOF},
		kinds(tokens))
}

func TestNumbers(t *testing.T) {
	tokens := tokenize(t, "1 23 4.5 0.25\n")
	assert.Equal(t, []Kind{Int, Int, Float, Float, Newline, EOF}, kinds(tokens))
	assert.Equal(t, "4.5", tokens[2].Text)
}

func TestStringEscapes(t *testing.T) {
	tokens := tokenize(t, `let s = "a\n\t\"b\\"`+"\n")
	require.Equal(t, String, tokens[3].Kind)
	assert.Equal(t, "a\n\t\"b\\", tokens[3].Text)
	assert.Greater(t, tokens[3].End, tokens[3].Pos, "string span covers the quoted source")
}

func TestInvalidEscape(t *testing.T) {
	_, err := Tokenize(diag.NewFile("test.frag", `let s = "a\qb"`+"\n"))
	require.Error(t, err)
	assert.Equal(t, diag.InvalidEscape, codeOf(t, err))
}

func TestUnterminatedString(t *testing.T) {
	_, err := Tokenize(diag.NewFile("test.frag", "let s = \"abc\n"))
	require.Error(t, err)
	assert.Equal(t, diag.UnterminatedString, codeOf(t, err))
}

func TestInvalidCharacter(t *testing.T) {
	_, err := Tokenize(diag.NewFile("test.frag", "let x = 1 $ 2\n"))
	require.Error(t, err)
	assert.Equal(t, diag.InvalidCharacter, codeOf(t, err))
}

func TestPositions(t *testing.T) {
	f := diag.NewFile("test.frag", "let x = 1\nlet y = 2\n")
	tokens, err := Tokenize(f)
	require.NoError(t, err)
	for _, tok := range tokens {
		if tok.Kind == Ident && tok.Text == "y" {
			pos := f.Position(tok.Pos)
			assert.Equal(t, 2, pos.Line)
			assert.Equal(t, 5, pos.Column)
			return
		}
	}
	t.Fatal("token for y not found")
}
