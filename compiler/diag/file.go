package diag

import "sort"

// File maps byte offsets in a source text to line/column positions.
type File struct {
	Name  string
	text  string
	lines []int
}

func NewFile(name, text string) *File {
	lines := []int{0}
	for offset, b := range []byte(text) {
		if b == '\n' {
			lines = append(lines, offset+1)
		}
	}
	return &File{Name: name, text: text, lines: lines}
}

func (f *File) Text() string { return f.text }

func (f *File) Position(pos int) Position {
	if pos < 0 || pos > len(f.text) {
		return Position{-1, -1, -1}
	}
	i := searchLine(f.lines, pos)
	return Position{
		Pos:    pos,
		Line:   i + 1,
		Column: pos - f.lines[i] + 1,
	}
}

// Line returns the text of the line containing pos, without its
// trailing newline.
func (f *File) Line(pos int) string {
	i := searchLine(f.lines, pos)
	start := f.lines[i]
	end := len(f.text)
	if i+1 < len(f.lines) {
		end = f.lines[i+1]
	}
	s := f.text[start:end]
	if n := len(s); n > 0 && s[n-1] == '\n' {
		s = s[:n-1]
	}
	return s
}

func searchLine(lines []int, offset int) int {
	i := sort.Search(len(lines), func(i int) bool { return lines[i] > offset }) - 1
	if i < 0 {
		i = 0
	}
	return i
}

type Position struct {
	Pos    int `json:"pos"`
	Line   int `json:"line"`   // 1-based line number.
	Column int `json:"column"` // 1-based column number.
}

func (p Position) IsValid() bool { return p.Pos >= 0 }
