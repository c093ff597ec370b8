package exec

import (
	"errors"
	"testing"

	"github.com/gul-lang/gul/compiler/dag"
	"github.com/gul-lang/gul/compiler/diag"
	"github.com/gul-lang/gul/compiler/lowering"
	"github.com/gul-lang/gul/compiler/parser"
	"github.com/gul-lang/gul/runtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compile(t *testing.T, kind parser.FileKind, src string) *dag.Graph {
	a, err := parser.Parse(diag.NewFile("test."+kind.String(), src), kind)
	require.NoError(t, err)
	g, err := lowering.Lower(a)
	require.NoError(t, err)
	return g
}

func run(t *testing.T, kind parser.FileKind, src string, inputs map[string]Value) []Value {
	rctx := runtime.DefaultContext()
	defer rctx.Cancel()
	values, err := Execute(rctx, compile(t, kind, src), inputs)
	require.NoError(t, err)
	return values
}

func runErr(t *testing.T, kind parser.FileKind, src string, inputs map[string]Value) error {
	rctx := runtime.DefaultContext()
	defer rctx.Cancel()
	_, err := Execute(rctx, compile(t, kind, src), inputs)
	require.Error(t, err)
	return err
}

func code(t *testing.T, err error) diag.Code {
	var d *diag.Diagnostic
	require.True(t, errors.As(err, &d), "error %v carries no diagnostic", err)
	return d.Code
}

func TestStraightLine(t *testing.T) {
	values := run(t, parser.Fragment, "let x = 1 + 2 * 3\n", nil)
	require.Len(t, values, 1)
	assert.Equal(t, Int(7), values[0])
}

func TestExternalInput(t *testing.T) {
	values := run(t, parser.Fragment, "let y = x + 1\n", map[string]Value{"x": Int(41)})
	require.Len(t, values, 1)
	assert.Equal(t, Int(42), values[0])
}

func TestMissingInput(t *testing.T) {
	err := runErr(t, parser.Fragment, "let y = x + 1\n", nil)
	assert.Equal(t, diag.MissingInput, code(t, err))
}

func TestDivideByZero(t *testing.T) {
	err := runErr(t, parser.Fragment, "let r = 10 / 0\n", nil)
	assert.Equal(t, diag.DivideByZero, code(t, err))
	err = runErr(t, parser.Fragment, "let r = 7 % 0\n", nil)
	assert.Equal(t, diag.DivideByZero, code(t, err))
}

func TestSubgraphInvocation(t *testing.T) {
	src := "fn add(a: int, b: int) -> int:\n  return a + b\nfn main():\n  let r = add(2, 3)\n"
	values := run(t, parser.Main, src, nil)
	require.Len(t, values, 1)
	assert.Equal(t, Int(5), values[0])
}

func TestNestedSubgraphCalls(t *testing.T) {
	src := "fn inc(x: int) -> int:\n  return x + 1\n" +
		"fn twice(x: int) -> int:\n  return inc(x) * 2\n" +
		"fn main():\n  let r = twice(3)\n"
	values := run(t, parser.Main, src, nil)
	require.Len(t, values, 1)
	assert.Equal(t, Int(8), values[0])
}

func TestCancellation(t *testing.T) {
	rctx := runtime.DefaultContext()
	rctx.Cancel()
	g := compile(t, parser.Fragment, "let x = 1 + 2\n")
	_, err := Execute(rctx, g, nil)
	require.Error(t, err)
	assert.Equal(t, diag.Cancelled, code(t, err))
}

func TestStringConcat(t *testing.T) {
	values := run(t, parser.Fragment, `let s = "foo" + "bar"`+"\n", nil)
	assert.Equal(t, String("foobar"), values[0])
}

func TestListIndexOutOfRange(t *testing.T) {
	rctx := runtime.DefaultContext()
	defer rctx.Cancel()
	_, err := Execute(rctx, compile(t, parser.Fragment, "let v = [1, 2][5]\n"), nil)
	assert.Error(t, err)
}

func TestStringIndex(t *testing.T) {
	values := run(t, parser.Fragment, `let c = "abc"[1]`+"\n", nil)
	assert.Equal(t, String("b"), values[0])
}

func TestInOperator(t *testing.T) {
	values := run(t, parser.Fragment, "let a = 2 in [1, 2, 3]\nlet b = 5 in [1, 2, 3]\n", nil)
	assert.Equal(t, Bool(true), values[0])
	assert.Equal(t, Bool(false), values[1])
}

func newGraph(nodes ...*dag.Node) *dag.Graph {
	g := &dag.Graph{}
	for _, n := range nodes {
		g.Add(n)
	}
	return g
}

func constant(name string, v int64) *dag.Node {
	return &dag.Node{
		Name:    name,
		Kind:    dag.Constant,
		Outputs: []string{"out"},
		Value:   &dag.Literal{Type: "int", Int: v},
	}
}

func TestSelectPrimitive(t *testing.T) {
	for _, cond := range []bool{true, false} {
		g := newGraph(
			&dag.Node{
				Name:    "cond",
				Kind:    dag.Constant,
				Outputs: []string{"out"},
				Value:   &dag.Literal{Type: "bool", Bool: cond},
			},
			constant("t", 1),
			constant("e", 2),
			&dag.Node{
				Name:    "select",
				Kind:    dag.Primitive,
				Op:      "select",
				Inputs:  []string{"cond", "t", "e"},
				Outputs: []string{"out"},
			},
		)
		require.NoError(t, g.Connect(dag.Port{Node: 0, Port: "out"}, dag.Port{Node: 3, Port: "cond"}))
		require.NoError(t, g.Connect(dag.Port{Node: 1, Port: "out"}, dag.Port{Node: 3, Port: "t"}))
		require.NoError(t, g.Connect(dag.Port{Node: 2, Port: "out"}, dag.Port{Node: 3, Port: "e"}))
		g.Outputs = []dag.Output{{Name: "r", Source: dag.Port{Node: 3, Port: "out"}}}
		rctx := runtime.DefaultContext()
		values, err := Execute(rctx, g, nil)
		rctx.Cancel()
		require.NoError(t, err)
		want := Int(1)
		if !cond {
			want = Int(2)
		}
		assert.Equal(t, want, values[0])
	}
}

func TestTopoOrderTieBreak(t *testing.T) {
	// Independent nodes run in insertion order.
	g := newGraph(constant("a", 1), constant("b", 2), constant("c", 3))
	order, err := topoOrder(g)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, order)
}

func TestTopoOrderRespectsEdges(t *testing.T) {
	g := newGraph(
		&dag.Node{Name: "+", Kind: dag.Primitive, Op: "+", Inputs: []string{"lhs", "rhs"}, Outputs: []string{"out"}},
		constant("a", 1),
		constant("b", 2),
	)
	require.NoError(t, g.Connect(dag.Port{Node: 1, Port: "out"}, dag.Port{Node: 0, Port: "lhs"}))
	require.NoError(t, g.Connect(dag.Port{Node: 2, Port: "out"}, dag.Port{Node: 0, Port: "rhs"}))
	order, err := topoOrder(g)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 0}, order)
}

func TestCycleDetected(t *testing.T) {
	g := newGraph(
		&dag.Node{Name: "id1", Kind: dag.Primitive, Op: "id", Inputs: []string{"in"}, Outputs: []string{"out"}},
		&dag.Node{Name: "id2", Kind: dag.Primitive, Op: "id", Inputs: []string{"in"}, Outputs: []string{"out"}},
	)
	require.NoError(t, g.Connect(dag.Port{Node: 0, Port: "out"}, dag.Port{Node: 1, Port: "in"}))
	require.NoError(t, g.Connect(dag.Port{Node: 1, Port: "out"}, dag.Port{Node: 0, Port: "in"}))
	_, err := topoOrder(g)
	assert.Error(t, err)
}

func TestEdgeValuePropagation(t *testing.T) {
	// Values produced at a source port must arrive at the target port
	// of every edge, not just at externally seeded ports.
	g := newGraph(
		constant("a", 1),
		constant("b", 2),
		&dag.Node{Name: "+", Kind: dag.Primitive, Op: "+", Inputs: []string{"lhs", "rhs"}, Outputs: []string{"out"}},
	)
	require.NoError(t, g.Connect(dag.Port{Node: 0, Port: "out"}, dag.Port{Node: 2, Port: "lhs"}))
	require.NoError(t, g.Connect(dag.Port{Node: 1, Port: "out"}, dag.Port{Node: 2, Port: "rhs"}))
	g.Outputs = []dag.Output{{Name: "x", Source: dag.Port{Node: 2, Port: "out"}}}
	rctx := runtime.DefaultContext()
	defer rctx.Cancel()
	values, err := Execute(rctx, g, nil)
	require.NoError(t, err)
	assert.Equal(t, []Value{Int(3)}, values)
}

func TestFanOutSharedProducer(t *testing.T) {
	// One producer port can feed several target ports.
	values := run(t, parser.Fragment, "let a = 1 + 2\nlet b = a * a\n", nil)
	require.Len(t, values, 2)
	assert.Equal(t, Int(3), values[0])
	assert.Equal(t, Int(9), values[1])
}

func TestDuplicateProducerRejected(t *testing.T) {
	g := newGraph(
		constant("a", 1),
		constant("b", 2),
		&dag.Node{Name: "id", Kind: dag.Primitive, Op: "id", Inputs: []string{"in"}, Outputs: []string{"out"}},
	)
	require.NoError(t, g.Connect(dag.Port{Node: 0, Port: "out"}, dag.Port{Node: 2, Port: "in"}))
	assert.Error(t, g.Connect(dag.Port{Node: 1, Port: "out"}, dag.Port{Node: 2, Port: "in"}))
}
