// Package diag defines the structured diagnostics emitted by every
// stage of the compiler pipeline.  A diagnostic carries a stable code,
// a byte span into the source text, and a human message with an
// optional hint.  Stages collect diagnostics into a List and return it;
// diagnostics are never thrown out-of-band.
package diag

import (
	"fmt"
	"sort"
	"strings"
)

// Code identifies the failure class of a diagnostic.  Codes are stable
// across releases and stages.
type Code string

const (
	// Lexer
	InconsistentIndent Code = "InconsistentIndent"
	InvalidEscape      Code = "InvalidEscape"
	UnterminatedString Code = "UnterminatedString"
	InvalidCharacter   Code = "InvalidCharacter"
	// Parser
	UnexpectedToken    Code = "UnexpectedToken"
	ExpectedBlock      Code = "ExpectedBlock"
	DisallowedTopLevel Code = "DisallowedTopLevel"
	// Ownership
	UseAfterMove      Code = "UseAfterMove"
	MoveInLoop        Code = "MoveInLoop"
	UnconsumedValue   Code = "UnconsumedValue"
	CannotMoveVar     Code = "CannotMoveVar"
	AssignToImmutable Code = "AssignToImmutable"
	// Lowering
	DuplicateInput Code = "DuplicateInput"
	// Executor
	MissingInput Code = "MissingInput"
	DivideByZero Code = "DivideByZero"
	Cancelled    Code = "Cancelled"
)

type Diagnostic struct {
	Code Code   `json:"code"`
	Msg  string `json:"msg"`
	Pos  int    `json:"pos"`
	End  int    `json:"end"`
	Hint string `json:"hint,omitempty"`
	file *File
}

func (d *Diagnostic) Error() string {
	if d.file == nil {
		return fmt.Sprintf("%s: %s", d.Code, d.Msg)
	}
	start := d.file.Position(d.Pos)
	end := d.file.Position(d.End)
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", d.Code, d.Msg)
	if d.file.Name != "" {
		fmt.Fprintf(&b, " in %s", d.file.Name)
	}
	line := d.file.Line(d.Pos)
	fmt.Fprintf(&b, " at line %d, column %d:\n%s\n", start.Line, start.Column, line)
	if end.IsValid() && end.Line == start.Line && end.Column > start.Column {
		b.WriteString(strings.Repeat(" ", start.Column-1))
		b.WriteString(strings.Repeat("~", end.Column-start.Column))
	} else {
		formatPointError(&b, start)
	}
	if d.Hint != "" {
		fmt.Fprintf(&b, "\nhint: %s", d.Hint)
	}
	return b.String()
}

func formatPointError(b *strings.Builder, start Position) {
	col := start.Column - 1
	for k := 0; k < col; k++ {
		if k >= col-4 && k != col-1 {
			b.WriteByte('=')
		} else {
			b.WriteByte(' ')
		}
	}
	b.WriteString("^ ===")
}

// List accumulates the diagnostics for a single stage over a single
// source file.
type List struct {
	file  *File
	diags []*Diagnostic
}

func NewList(f *File) *List {
	return &List{file: f}
}

func (l *List) File() *File { return l.file }

func (l *List) Add(code Code, msg string, pos, end int) {
	l.diags = append(l.diags, &Diagnostic{Code: code, Msg: msg, Pos: pos, End: end, file: l.file})
}

func (l *List) AddHint(code Code, msg, hint string, pos, end int) {
	l.diags = append(l.diags, &Diagnostic{Code: code, Msg: msg, Pos: pos, End: end, Hint: hint, file: l.file})
}

func (l *List) Len() int { return len(l.diags) }

// All returns the diagnostics sorted into source order.  Sorting is
// stable so diagnostics at the same position keep emission order.
func (l *List) All() []*Diagnostic {
	out := make([]*Diagnostic, len(l.diags))
	copy(out, l.diags)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Pos < out[j].Pos })
	return out
}

// Error returns nil when the list is empty so callers can write
// "return list.Error()" at the end of a stage.
func (l *List) Error() error {
	if len(l.diags) == 0 {
		return nil
	}
	return Errors(l.All())
}

// Errors is a non-empty diagnostic slice presented as a single error.
type Errors []*Diagnostic

func (e Errors) Error() string {
	var b strings.Builder
	for i, d := range e {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(d.Error())
	}
	return b.String()
}
