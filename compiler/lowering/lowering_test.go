package lowering

import (
	"testing"

	"github.com/gul-lang/gul/compiler/dag"
	"github.com/gul-lang/gul/compiler/diag"
	"github.com/gul-lang/gul/compiler/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lower(t *testing.T, kind parser.FileKind, src string) *dag.Graph {
	a, err := parser.Parse(diag.NewFile("test."+kind.String(), src), kind)
	require.NoError(t, err)
	g, err := Lower(a)
	require.NoError(t, err)
	return g
}

// acyclic reports whether the graph has no directed cycle.
func acyclic(g *dag.Graph) bool {
	succ := g.Successors()
	const (
		white = iota
		gray
		black
	)
	color := make([]int, len(g.Nodes))
	var visit func(int) bool
	visit = func(n int) bool {
		color[n] = gray
		for _, m := range succ[n] {
			switch color[m] {
			case gray:
				return false
			case white:
				if !visit(m) {
					return false
				}
			}
		}
		color[n] = black
		return true
	}
	for n := range g.Nodes {
		if color[n] == white && !visit(n) {
			return false
		}
	}
	return true
}

func opCount(g *dag.Graph, op string) int {
	var n int
	for _, node := range g.Nodes {
		if node.Op == op {
			n++
		}
	}
	return n
}

func TestConstantFolding(t *testing.T) {
	g := lower(t, parser.Fragment, "let x = 1 + 2\n")
	require.Len(t, g.Outputs, 1)
	assert.Equal(t, "x", g.Outputs[0].Name)
	// Two constants feeding one primitive.
	var constants int
	for _, n := range g.Nodes {
		if n.Kind == dag.Constant {
			constants++
			require.NotNil(t, n.Value)
			assert.Equal(t, "int", n.Value.Type)
		}
	}
	assert.Equal(t, 2, constants)
	assert.Equal(t, 1, opCount(g, "+"))
}

func TestFanInIsOne(t *testing.T) {
	g := lower(t, parser.Fragment, "let a = 1\nlet b = a + a\nlet c = b * b + a\n")
	seen := make(map[dag.Port]bool)
	for _, e := range g.Edges {
		require.False(t, seen[e.Target()], "two edges into %s", e.Target())
		seen[e.Target()] = true
	}
}

func TestAcyclic(t *testing.T) {
	src := "fn inc(n: int) -> int:\n  return n + 1\nfn main():\n  let a = inc(1)\n  let b = inc(a) * 2\n"
	g := lower(t, parser.Main, src)
	assert.True(t, acyclic(g))
	for _, n := range g.Nodes {
		if n.Kind == dag.SubGraph {
			assert.True(t, acyclic(n.Body))
		}
	}
}

func TestDeterministic(t *testing.T) {
	src := "fn f(x: int) -> int:\n  return x\nfn g(x: int) -> int:\n  return x\nfn main():\n  let a = f(1)\n  let b = g(2)\n"
	first := lower(t, parser.Main, src)
	second := lower(t, parser.Main, src)
	require.Len(t, second.Nodes, len(first.Nodes))
	require.Len(t, second.Edges, len(first.Edges))
	for i, n := range first.Nodes {
		assert.Equal(t, n.Name, second.Nodes[i].Name)
		assert.Equal(t, n.Kind, second.Nodes[i].Kind)
	}
	assert.Equal(t, first.Edges, second.Edges)
}

func TestFreshTags(t *testing.T) {
	g := lower(t, parser.Fragment, "let x = 1 + 2\n")
	tags := make(map[string]bool)
	for _, n := range g.Nodes {
		require.NotEmpty(t, n.Tag)
		require.False(t, tags[n.Tag], "duplicate node tag")
		tags[n.Tag] = true
	}
}

func TestExternalInputs(t *testing.T) {
	g := lower(t, parser.Fragment, "let y = x + 1\n")
	require.Len(t, g.Externs, 1)
	assert.Equal(t, "x", g.Externs[0].Name)
	target := g.Externs[0].Target
	assert.Equal(t, "lhs", target.Port)
	assert.Equal(t, "+", g.Nodes[target.Node].Op)
}

func TestExternAsOutputMaterializes(t *testing.T) {
	// A free name bound straight to an output goes through an identity
	// primitive so the output has a concrete source port.
	g := lower(t, parser.Fragment, "let y = x\n")
	require.Len(t, g.Outputs, 1)
	assert.Equal(t, 1, opCount(g, "id"))
}

func TestOutputsInDeclarationOrder(t *testing.T) {
	g := lower(t, parser.Fragment, "let a = 1\nlet b = 2\nlet c = 3\n")
	require.Len(t, g.Outputs, 3)
	assert.Equal(t, "a", g.Outputs[0].Name)
	assert.Equal(t, "b", g.Outputs[1].Name)
	assert.Equal(t, "c", g.Outputs[2].Name)
}

func TestSubGraphs(t *testing.T) {
	src := "fn add(a: int, b: int) -> int:\n  return a + b\nfn main():\n  let r = add(2, 3)\n"
	g := lower(t, parser.Main, src)
	var sub *dag.Node
	for _, n := range g.Nodes {
		if n.Kind == dag.SubGraph {
			require.Nil(t, sub, "one subgraph expected")
			sub = n
		}
	}
	require.NotNil(t, sub)
	assert.Equal(t, "add", sub.Name)
	assert.Equal(t, []string{"a", "b"}, sub.Inputs)
	require.NotNil(t, sub.Body)
	require.Len(t, sub.Body.Outputs, 1)
	assert.Equal(t, "out", sub.Body.Outputs[0].Name)
	var call *dag.Node
	for _, n := range g.Nodes {
		if n.Kind == dag.Function {
			call = n
		}
	}
	require.NotNil(t, call)
	assert.Equal(t, "add", call.Callee)
	assert.Equal(t, []string{"a", "b"}, call.Inputs)
}

func TestCallArity(t *testing.T) {
	a, err := parser.Parse(diag.NewFile("test.mn", "fn f(a: int) -> int:\n  return a\nfn main():\n  let r = f(1, 2)\n"), parser.Main)
	require.NoError(t, err)
	_, err = Lower(a)
	assert.Error(t, err)
}

func TestSelectExpansion(t *testing.T) {
	g := lower(t, parser.Fragment, "if c:\n  1\nelse:\n  2\n")
	assert.Equal(t, 1, opCount(g, "select"))
}

func TestMatchExpandsToNestedSelects(t *testing.T) {
	g := lower(t, parser.Fragment, "match n:\n  0 => 10\n  1 => 11\n  _ => 12\n")
	// Two guarded arms, each with an equality test and a select.
	assert.Equal(t, 2, opCount(g, "select"))
	assert.Equal(t, 2, opCount(g, "=="))
}

func TestStructAsTuple(t *testing.T) {
	g := lower(t, parser.Fragment, "let p = Point { x: 1, y: 2 }\nlet a = p.x\n")
	require.Equal(t, 1, opCount(g, "tuple"))
	var tuple *dag.Node
	var tupleAt int
	for i, n := range g.Nodes {
		if n.Op == "tuple" {
			tuple, tupleAt = n, i
		}
	}
	assert.Equal(t, []string{"x", "y", "out"}, tuple.Outputs)
	// Field access projects the tuple port with no extra node.
	require.Len(t, g.Outputs, 2)
	assert.Equal(t, dag.Port{Node: tupleAt, Port: "x"}, g.Outputs[1].Source)
}

func TestListAndIndex(t *testing.T) {
	g := lower(t, parser.Fragment, "let v = [1, 2, 3][0]\n")
	assert.Equal(t, 1, opCount(g, "list"))
	assert.Equal(t, 1, opCount(g, "index"))
}

func TestLoopsCannotLower(t *testing.T) {
	a, err := parser.Parse(diag.NewFile("test.frag", "loop:\n  x\n"), parser.Fragment)
	require.NoError(t, err)
	_, err = Lower(a)
	assert.Error(t, err)
}
