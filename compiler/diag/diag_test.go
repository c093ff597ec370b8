package diag

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPositionMapping(t *testing.T) {
	f := NewFile("test.frag", "let x = 1\nlet y = 2\n")
	p := f.Position(0)
	assert.Equal(t, 1, p.Line)
	assert.Equal(t, 1, p.Column)
	p = f.Position(14) // the y
	assert.Equal(t, 2, p.Line)
	assert.Equal(t, 5, p.Column)
	assert.False(t, f.Position(-1).IsValid())
	assert.False(t, f.Position(100).IsValid())
}

func TestLineText(t *testing.T) {
	f := NewFile("test.frag", "first\nsecond\nthird")
	assert.Equal(t, "second", f.Line(8))
	assert.Equal(t, "third", f.Line(15))
}

func TestEmptyListHasNoError(t *testing.T) {
	l := NewList(NewFile("test.frag", ""))
	assert.NoError(t, l.Error())
}

func TestSortedStable(t *testing.T) {
	f := NewFile("test.frag", "abc def\n")
	l := NewList(f)
	l.Add(UseAfterMove, "second at same pos", 4, 7)
	l.Add(UnexpectedToken, "first", 0, 3)
	l.Add(UnconsumedValue, "third at same pos", 4, 7)
	all := l.All()
	require.Len(t, all, 3)
	assert.Equal(t, UnexpectedToken, all[0].Code)
	assert.Equal(t, UseAfterMove, all[1].Code)
	assert.Equal(t, UnconsumedValue, all[2].Code)
}

func TestSpanRendering(t *testing.T) {
	f := NewFile("move.frag", "let y = x\n")
	l := NewList(f)
	l.AddHint(UseAfterMove, `use of "x" after it was moved`, "value was moved at line 1, column 9", 8, 9)
	msg := l.Error().Error()
	assert.Contains(t, msg, "UseAfterMove")
	assert.Contains(t, msg, "move.frag")
	assert.Contains(t, msg, "at line 1, column 9")
	assert.Contains(t, msg, "let y = x")
	assert.Contains(t, msg, "hint: value was moved")
	// The span is underlined under its column.
	require.True(t, strings.Contains(msg, "\n        ~"), "got:\n%s", msg)
}

func TestPointRendering(t *testing.T) {
	f := NewFile("eof.frag", "let x = \n")
	l := NewList(f)
	l.Add(UnexpectedToken, "unexpected newline", 8, 8)
	msg := l.Error().Error()
	assert.Contains(t, msg, "^ ===")
}
