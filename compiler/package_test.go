package compiler

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/gul-lang/gul/compiler/parser"
	"github.com/gul-lang/gul/runtime/exec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunPipeline(t *testing.T) {
	values, err := Run(context.Background(), "inline", "let x = 2 * 21\n", parser.Fragment, nil)
	require.NoError(t, err)
	require.Len(t, values, 1)
	assert.Equal(t, exec.Int(42), values[0])
}

func TestRunStopsAtFirstFailingStage(t *testing.T) {
	_, err := Run(context.Background(), "inline", "let x = [1]\nlet y = x\nlet z = x\n", parser.Fragment, nil)
	require.Error(t, err)
}

func TestCompileFiles(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "a.mn")
	require.NoError(t, os.WriteFile(good, []byte("fn main():\n  let x = 1\n"), 0o644))
	bad := filepath.Join(dir, "b.def")
	require.NoError(t, os.WriteFile(bad, []byte("fn f():\n  return 1\n"), 0o644))
	results, err := CompileFiles(context.Background(), bad, good)
	require.NoError(t, err)
	require.Len(t, results, 2)
	// Sorted by path regardless of argument order.
	assert.Equal(t, good, results[0].Path)
	assert.NoError(t, results[0].Err)
	require.NotNil(t, results[0].Graph)
	assert.Equal(t, bad, results[1].Path)
	assert.Error(t, results[1].Err)
}

func TestCompileFilesUnknownExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("let x = 1\n"), 0o644))
	results, err := CompileFiles(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Error(t, results[0].Err)
}
