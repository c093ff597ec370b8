// Package compiler exposes the GUL front-end pipeline: tokenize,
// parse, ownership check, lower to the dataflow IR, and execute.  The
// pipeline is strictly one-way; a non-empty diagnostic list from any
// stage stops the stages after it.
package compiler

import (
	"context"
	"os"
	"sort"
	"sync"

	"github.com/gul-lang/gul/compiler/dag"
	"github.com/gul-lang/gul/compiler/diag"
	"github.com/gul-lang/gul/compiler/lexer"
	"github.com/gul-lang/gul/compiler/lowering"
	"github.com/gul-lang/gul/compiler/ownership"
	"github.com/gul-lang/gul/compiler/parser"
	"github.com/gul-lang/gul/runtime"
	"github.com/gul-lang/gul/runtime/exec"
	"golang.org/x/sync/errgroup"
)

func Tokenize(name, src string) ([]lexer.Token, error) {
	return lexer.Tokenize(diag.NewFile(name, src))
}

func Parse(name, src string, kind parser.FileKind) (*parser.AST, error) {
	return parser.Parse(diag.NewFile(name, src), kind)
}

func Check(a *parser.AST) error {
	return ownership.Check(a)
}

func Lower(a *parser.AST) (*dag.Graph, error) {
	return lowering.Lower(a)
}

func Execute(rctx *runtime.Context, g *dag.Graph, inputs map[string]exec.Value) ([]exec.Value, error) {
	return exec.Execute(rctx, g, inputs)
}

// Run chains the whole pipeline over one source text and returns the
// values at the graph's declared outputs.
func Run(ctx context.Context, name, src string, kind parser.FileKind, inputs map[string]exec.Value) ([]exec.Value, error) {
	a, err := Parse(name, src, kind)
	if err != nil {
		return nil, err
	}
	if err := Check(a); err != nil {
		return nil, err
	}
	g, err := Lower(a)
	if err != nil {
		return nil, err
	}
	rctx := runtime.NewContext(ctx)
	defer rctx.Cancel()
	return Execute(rctx, g, inputs)
}

// FileResult is the outcome of compiling one file with CompileFiles.
type FileResult struct {
	Path  string
	Graph *dag.Graph
	Err   error
}

// CompileFiles parses, checks, and lowers several files concurrently,
// inferring each file's kind from its extension.  Results come back
// sorted by path so output is deterministic regardless of scheduling.
func CompileFiles(ctx context.Context, paths ...string) ([]FileResult, error) {
	results := make([]FileResult, len(paths))
	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			graph, err := compileFile(path)
			mu.Lock()
			results[i] = FileResult{Path: path, Graph: graph, Err: err}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })
	return results, nil
}

func compileFile(path string) (*dag.Graph, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	a, err := parser.ParseFile(path, string(src))
	if err != nil {
		return nil, err
	}
	if err := ownership.Check(a); err != nil {
		return nil, err
	}
	return lowering.Lower(a)
}
