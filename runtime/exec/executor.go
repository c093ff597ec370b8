// Package exec evaluates dataflow graphs.  Nodes run in a
// deterministic topological order computed by Kahn's algorithm with
// insertion-order tie-breaking; values flow through a disposable
// port-value table keyed by (node index, port name).
package exec

import (
	"fmt"

	"github.com/gul-lang/gul/compiler/dag"
	"github.com/gul-lang/gul/compiler/diag"
	"github.com/gul-lang/gul/runtime"
)

// Execute runs the graph to completion and returns the values at its
// declared outputs in declaration order.  The inputs map seeds the
// graph's external inputs by name.
func Execute(rctx *runtime.Context, g *dag.Graph, inputs map[string]Value) ([]Value, error) {
	e := &executor{subgraphs: make(map[string]*dag.Node)}
	e.collect(g)
	return e.run(rctx, g, inputs)
}

type executor struct {
	subgraphs map[string]*dag.Node
}

// collect indexes SubGraph declarations so function invocations inside
// nested bodies can resolve callees declared at the top level.
func (e *executor) collect(g *dag.Graph) {
	for _, n := range g.Nodes {
		if n.Kind == dag.SubGraph && n.Body != nil {
			e.subgraphs[n.Name] = n
			e.collect(n.Body)
		}
	}
}

func (e *executor) run(rctx *runtime.Context, g *dag.Graph, inputs map[string]Value) ([]Value, error) {
	table := make(map[dag.Port]Value)
	for _, ext := range g.Externs {
		v, ok := inputs[ext.Name]
		if !ok {
			return nil, &diag.Diagnostic{
				Code: diag.MissingInput,
				Msg:  fmt.Sprintf("external input %q was not provided", ext.Name),
			}
		}
		table[ext.Target] = v
	}
	order, err := topoOrder(g)
	if err != nil {
		return nil, err
	}
	inbound := g.Inbound()
	for _, i := range order {
		if rctx.Err() != nil {
			return nil, &diag.Diagnostic{Code: diag.Cancelled, Msg: "execution cancelled"}
		}
		if err := e.eval(rctx, g, i, table, inbound); err != nil {
			return nil, err
		}
	}
	out := make([]Value, len(g.Outputs))
	for i, o := range g.Outputs {
		v, ok := table[o.Source]
		if !ok {
			return nil, &diag.Diagnostic{
				Code: diag.MissingInput,
				Msg:  fmt.Sprintf("output %q has no computed value", o.Name),
			}
		}
		out[i] = v
	}
	return out, nil
}

// topoOrder computes a topological order by Kahn's algorithm.  Among
// ready nodes the lowest insertion index runs first, so equal graphs
// execute identically.
func topoOrder(g *dag.Graph) ([]int, error) {
	indegree := make([]int, len(g.Nodes))
	for _, e := range g.Edges {
		indegree[e.TargetNode]++
	}
	done := make([]bool, len(g.Nodes))
	var order []int
	for len(order) < len(g.Nodes) {
		next := -1
		for i := range g.Nodes {
			if !done[i] && indegree[i] == 0 {
				next = i
				break
			}
		}
		if next < 0 {
			return nil, fmt.Errorf("dataflow graph contains a cycle")
		}
		done[next] = true
		order = append(order, next)
		for _, e := range g.Edges {
			if e.SourceNode == next {
				indegree[e.TargetNode]--
			}
		}
	}
	return order, nil
}

func (e *executor) eval(rctx *runtime.Context, g *dag.Graph, i int, table map[dag.Port]Value, inbound map[dag.Port]dag.Edge) error {
	n := g.Nodes[i]
	switch n.Kind {
	case dag.Constant:
		table[dag.Port{Node: i, Port: "out"}] = fromLiteral(n.Value)
		return nil
	case dag.SubGraph:
		// A subgraph node is a declaration; it computes nothing until
		// a Function node invokes it.
		return nil
	case dag.Primitive:
		args, err := readInputs(n, i, table, inbound)
		if err != nil {
			return err
		}
		return applyPrimitive(n, i, args, table)
	case dag.Function:
		args, err := readInputs(n, i, table, inbound)
		if err != nil {
			return err
		}
		return e.invoke(rctx, n, i, args, table)
	}
	return fmt.Errorf("node %q has unknown kind %q", n.Name, n.Kind)
}

// readInputs resolves each input port of a node: external inputs are
// seeded at the port itself, everything else reads the source port of
// the inbound edge.
func readInputs(n *dag.Node, i int, table map[dag.Port]Value, inbound map[dag.Port]dag.Edge) ([]Value, error) {
	args := make([]Value, len(n.Inputs))
	for k, port := range n.Inputs {
		dst := dag.Port{Node: i, Port: port}
		if v, ok := table[dst]; ok {
			args[k] = v
			continue
		}
		if edge, ok := inbound[dst]; ok {
			if v, ok := table[edge.Source()]; ok {
				args[k] = v
				continue
			}
		}
		return nil, &diag.Diagnostic{
			Code: diag.MissingInput,
			Msg:  fmt.Sprintf("input port %q of node %q has no producer and no external input", port, n.Name),
		}
	}
	return args, nil
}

// invoke runs a Function node by executing the callee subgraph with
// the argument values bound to its input ports.
func (e *executor) invoke(rctx *runtime.Context, n *dag.Node, i int, args []Value, table map[dag.Port]Value) error {
	callee, ok := e.subgraphs[n.Callee]
	if !ok {
		return fmt.Errorf("call to undefined function %q", n.Callee)
	}
	inputs := make(map[string]Value, len(args))
	for k, port := range n.Inputs {
		name := port
		if k < len(callee.Inputs) {
			name = callee.Inputs[k]
		}
		inputs[name] = args[k]
	}
	results, err := e.run(rctx, callee.Body, inputs)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		table[dag.Port{Node: i, Port: "out"}] = Void()
		return nil
	}
	table[dag.Port{Node: i, Port: "out"}] = results[0]
	return nil
}
