// Package parser builds GUL abstract syntax trees from token streams.
// There are three entry grammars corresponding to the three file
// kinds; a file's kind decides which statement categories are
// admissible at top level.
package parser

import (
	"fmt"
	"path/filepath"

	"github.com/gul-lang/gul/compiler/ast"
	"github.com/gul-lang/gul/compiler/diag"
	"github.com/gul-lang/gul/compiler/lexer"
)

// FileKind selects the top-level grammar.
type FileKind int

const (
	// Main admits imports, globals, structs, enums, functions, and
	// exactly one main function.
	Main FileKind = iota
	// Definition admits imports, globals, structs, enums, and constant
	// bindings, but never functions.
	Definition
	// Fragment admits any statement or expression; used for inline
	// snippets and the REPL.
	Fragment
)

func (k FileKind) String() string {
	switch k {
	case Main:
		return "main"
	case Definition:
		return "definition"
	case Fragment:
		return "fragment"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// KindFromPath maps a file extension to its kind: .mn is a main file,
// .def a definition file, and .frag a fragment.
func KindFromPath(path string) (FileKind, error) {
	switch filepath.Ext(path) {
	case ".mn":
		return Main, nil
	case ".def":
		return Definition, nil
	case ".frag":
		return Fragment, nil
	}
	return 0, fmt.Errorf("%s: unknown GUL file extension", path)
}

// AST wraps a parsed file together with its source for error
// reporting downstream.
type AST struct {
	body ast.Seq
	kind FileKind
	file *diag.File
}

func (a *AST) Body() ast.Seq    { return a.body }
func (a *AST) Kind() FileKind   { return a.kind }
func (a *AST) File() *diag.File { return a.file }

// Parse tokenizes and parses source text under the given file kind.
// On parse errors the AST is still returned alongside the diagnostic
// error so tools can inspect the partial tree, but the pipeline must
// not run later stages on it.
func Parse(f *diag.File, kind FileKind) (*AST, error) {
	tokens, err := lexer.Tokenize(f)
	if err != nil {
		return nil, err
	}
	p := &parser{
		tokens: tokens,
		kind:   kind,
		errs:   diag.NewList(f),
	}
	body := p.parseFile()
	return &AST{body: body, kind: kind, file: f}, p.errs.Error()
}

// ParseFile reads path, infers the kind from the extension, and
// parses it.
func ParseFile(path string, src string) (*AST, error) {
	kind, err := KindFromPath(path)
	if err != nil {
		return nil, err
	}
	return Parse(diag.NewFile(path, src), kind)
}
