// Package lowering translates a validated AST into the dataflow IR.
// The builder visits the tree bottom-up, so edges always run from
// already-emitted producers to the freshly-emitted consumer and the
// resulting graph is acyclic by construction.
package lowering

import (
	"fmt"
	"strconv"

	"github.com/gul-lang/gul/compiler/ast"
	"github.com/gul-lang/gul/compiler/dag"
	"github.com/gul-lang/gul/compiler/diag"
	"github.com/gul-lang/gul/compiler/parser"
)

// Lower converts a checked AST into a dataflow graph.  For a main
// file, the body of the main function is the program; every other
// function becomes a SubGraph node.  Top-level let bindings are
// declared as graph outputs in source order.
func Lower(a *parser.AST) (*dag.Graph, error) {
	b := &builder{
		graph: &dag.Graph{},
		errs:  diag.NewList(a.File()),
		decls: make(map[string]*ast.Function),
		scope: make(map[string]source),
	}
	body := a.Body()
	for _, s := range body {
		if fn, ok := s.(*ast.Function); ok {
			b.decls[fn.Name.Name] = fn
		}
	}
	for _, s := range body {
		fn, ok := s.(*ast.Function)
		if !ok {
			continue
		}
		if a.Kind() == parser.Main && fn.Name.Name == "main" {
			continue
		}
		if err := b.subgraph(fn); err != nil {
			return nil, err
		}
	}
	if a.Kind() == parser.Main {
		main, ok := b.decls["main"]
		if !ok {
			return nil, fmt.Errorf("main file has no main function")
		}
		body = main.Body
	}
	for _, s := range body {
		if _, ok := s.(*ast.Function); ok {
			continue
		}
		if err := b.stmt(s, true); err != nil {
			return nil, err
		}
	}
	if err := b.errs.Error(); err != nil {
		return nil, err
	}
	return b.graph, nil
}

type builder struct {
	graph *dag.Graph
	errs  *diag.List
	decls map[string]*ast.Function
	scope map[string]source
}

// source is where a value comes from: a concrete port of an emitted
// node, or a pending external input identified by name whose target
// port is not yet known.
type source struct {
	port   dag.Port
	extern string
	bound  bool // true when port is valid
}

func portSource(p dag.Port) source { return source{port: p, bound: true} }

func externSource(n string) source { return source{extern: n} }

// connect wires src into the target port, recording an external input
// when the source is a free name.  A second edge into the same target
// is DuplicateInput.
func (b *builder) connect(src source, dst dag.Port, at ast.Node) {
	if !src.bound {
		b.graph.Externs = append(b.graph.Externs, dag.ExternalInput{Name: src.extern, Target: dst})
		return
	}
	if err := b.graph.Connect(src.port, dst); err != nil {
		b.errs.Add(diag.DuplicateInput, err.Error(), at.Pos(), at.End())
	}
}

// materialize forces a source to a concrete port, inserting an
// identity primitive for pending externals.
func (b *builder) materialize(src source, at ast.Node) dag.Port {
	if src.bound {
		return src.port
	}
	n := b.graph.Add(&dag.Node{
		Name:    src.extern,
		Kind:    dag.Primitive,
		Op:      "id",
		Inputs:  []string{"in"},
		Outputs: []string{"out"},
	})
	b.connect(src, dag.Port{Node: n, Port: "in"}, at)
	return dag.Port{Node: n, Port: "out"}
}

// subgraph lowers a function declaration into a SubGraph node of the
// enclosing graph.  Parameters become named input ports; the return
// value becomes the single output port "out".
func (b *builder) subgraph(fn *ast.Function) error {
	inner := &builder{
		graph: &dag.Graph{},
		errs:  b.errs,
		decls: b.decls,
		scope: make(map[string]source),
	}
	var inputs []string
	for _, p := range fn.Params {
		inputs = append(inputs, p.Name.Name)
	}
	for _, s := range fn.Body {
		if err := inner.stmt(s, false); err != nil {
			return err
		}
	}
	b.graph.Add(&dag.Node{
		Name:    fn.Name.Name,
		Kind:    dag.SubGraph,
		Inputs:  inputs,
		Outputs: []string{"out"},
		Body:    inner.graph,
	})
	return nil
}

// stmt lowers one statement.  At the top level of the program, let
// bindings are additionally declared as graph outputs.
func (b *builder) stmt(s ast.Stmt, top bool) error {
	switch s := s.(type) {
	case *ast.Let:
		src, err := b.expr(s.Value)
		if err != nil {
			return err
		}
		b.scope[s.Name.Name] = src
		if top {
			p := b.materialize(src, s)
			b.graph.Outputs = append(b.graph.Outputs, dag.Output{Name: s.Name.Name, Source: p})
		}
	case *ast.Var:
		src, err := b.expr(s.Value)
		if err != nil {
			return err
		}
		b.scope[s.Name.Name] = src
	case *ast.Assignment:
		src, err := b.expr(s.Value)
		if err != nil {
			return err
		}
		b.scope[s.Name.Name] = src
	case *ast.ExprStmt:
		_, err := b.expr(s.Expr)
		return err
	case *ast.Return:
		if s.Value == nil {
			return nil
		}
		src, err := b.expr(s.Value)
		if err != nil {
			return err
		}
		p := b.materialize(src, s)
		b.graph.Outputs = append(b.graph.Outputs, dag.Output{Name: "out", Source: p})
	case *ast.If:
		_, err := b.selectStmt(s)
		return err
	case *ast.Match:
		_, err := b.matchExpr(s)
		return err
	case *ast.While, *ast.Loop:
		return fmt.Errorf("loops cannot be lowered into the dataflow graph")
	case *ast.Import, *ast.Global, *ast.StructDecl, *ast.EnumDecl, *ast.Break, *ast.Continue:
		// No dataflow content.
	case *ast.Function:
		return b.subgraph(s)
	case *ast.SetIndex:
		return fmt.Errorf("index assignment cannot be lowered into the dataflow graph")
	}
	return nil
}

func (b *builder) expr(e ast.Expr) (source, error) {
	switch e := e.(type) {
	case *ast.IntLit:
		v, _ := strconv.ParseInt(e.Text, 10, 64)
		return b.constant(e.Text, &dag.Literal{Type: "int", Int: v}), nil
	case *ast.FloatLit:
		v, _ := strconv.ParseFloat(e.Text, 64)
		return b.constant(e.Text, &dag.Literal{Type: "float", Float: v}), nil
	case *ast.StringLit:
		return b.constant(e.Value, &dag.Literal{Type: "string", Str: e.Value}), nil
	case *ast.BoolLit:
		return b.constant(strconv.FormatBool(e.Value), &dag.Literal{Type: "bool", Bool: e.Value}), nil
	case *ast.Identifier:
		if src, ok := b.scope[e.Name]; ok {
			return src, nil
		}
		// A free identifier at the graph boundary is an external
		// input, seeded by the caller at execution start.
		return externSource(e.Name), nil
	case *ast.BinaryExpr:
		return b.binary(e)
	case *ast.UnaryExpr:
		return b.unary(e)
	case *ast.Call:
		return b.call(e)
	case *ast.MethodCall:
		return b.methodCall(e)
	case *ast.List:
		return b.list(e)
	case *ast.Index:
		return b.index(e)
	case *ast.StructLiteral:
		return b.structLiteral(e)
	case *ast.FieldAccess:
		return b.fieldAccess(e)
	}
	return source{}, fmt.Errorf("expression cannot be lowered into the dataflow graph")
}

func (b *builder) constant(name string, lit *dag.Literal) source {
	n := b.graph.Add(&dag.Node{
		Name:    name,
		Kind:    dag.Constant,
		Outputs: []string{"out"},
		Value:   lit,
	})
	return portSource(dag.Port{Node: n, Port: "out"})
}

func (b *builder) binary(e *ast.BinaryExpr) (source, error) {
	lhs, err := b.expr(e.LHS)
	if err != nil {
		return source{}, err
	}
	rhs, err := b.expr(e.RHS)
	if err != nil {
		return source{}, err
	}
	n := b.graph.Add(&dag.Node{
		Name:    e.Op,
		Kind:    dag.Primitive,
		Op:      e.Op,
		Inputs:  []string{"lhs", "rhs"},
		Outputs: []string{"out"},
	})
	b.connect(lhs, dag.Port{Node: n, Port: "lhs"}, e.LHS)
	b.connect(rhs, dag.Port{Node: n, Port: "rhs"}, e.RHS)
	return portSource(dag.Port{Node: n, Port: "out"}), nil
}

func (b *builder) unary(e *ast.UnaryExpr) (source, error) {
	operand, err := b.expr(e.Operand)
	if err != nil {
		return source{}, err
	}
	op := "neg"
	if e.Op == "!" {
		op = "not"
	}
	n := b.graph.Add(&dag.Node{
		Name:    op,
		Kind:    dag.Primitive,
		Op:      op,
		Inputs:  []string{"in"},
		Outputs: []string{"out"},
	})
	b.connect(operand, dag.Port{Node: n, Port: "in"}, e.Operand)
	return portSource(dag.Port{Node: n, Port: "out"}), nil
}

func (b *builder) call(e *ast.Call) (source, error) {
	id, ok := e.Callee.(*ast.Identifier)
	if !ok {
		return source{}, fmt.Errorf("only named functions can be called in the dataflow graph")
	}
	inputs := make([]string, len(e.Args))
	if fn, ok := b.decls[id.Name]; ok {
		if len(e.Args) != len(fn.Params) {
			return source{}, fmt.Errorf("call to %q has %d arguments, want %d", id.Name, len(e.Args), len(fn.Params))
		}
		for i, p := range fn.Params {
			inputs[i] = p.Name.Name
		}
	} else {
		for i := range e.Args {
			inputs[i] = strconv.Itoa(i)
		}
	}
	n := b.graph.Add(&dag.Node{
		Name:    id.Name,
		Kind:    dag.Function,
		Callee:  id.Name,
		Inputs:  inputs,
		Outputs: []string{"out"},
	})
	for i, arg := range e.Args {
		src, err := b.expr(arg)
		if err != nil {
			return source{}, err
		}
		b.connect(src, dag.Port{Node: n, Port: inputs[i]}, arg)
	}
	return portSource(dag.Port{Node: n, Port: "out"}), nil
}

// methodCall lowers receiver.name(args) as a function invocation with
// the receiver wired to the leading "self" port.
func (b *builder) methodCall(e *ast.MethodCall) (source, error) {
	recv, err := b.expr(e.Receiver)
	if err != nil {
		return source{}, err
	}
	inputs := []string{"self"}
	for i := range e.Args {
		inputs = append(inputs, strconv.Itoa(i))
	}
	n := b.graph.Add(&dag.Node{
		Name:    e.Name.Name,
		Kind:    dag.Function,
		Callee:  e.Name.Name,
		Inputs:  inputs,
		Outputs: []string{"out"},
	})
	b.connect(recv, dag.Port{Node: n, Port: "self"}, e.Receiver)
	for i, arg := range e.Args {
		src, err := b.expr(arg)
		if err != nil {
			return source{}, err
		}
		b.connect(src, dag.Port{Node: n, Port: inputs[i+1]}, arg)
	}
	return portSource(dag.Port{Node: n, Port: "out"}), nil
}

func (b *builder) list(e *ast.List) (source, error) {
	inputs := make([]string, len(e.Items))
	for i := range e.Items {
		inputs[i] = strconv.Itoa(i)
	}
	n := b.graph.Add(&dag.Node{
		Name:    "list",
		Kind:    dag.Primitive,
		Op:      "list",
		Inputs:  inputs,
		Outputs: []string{"out"},
	})
	for i, item := range e.Items {
		src, err := b.expr(item)
		if err != nil {
			return source{}, err
		}
		b.connect(src, dag.Port{Node: n, Port: inputs[i]}, item)
	}
	return portSource(dag.Port{Node: n, Port: "out"}), nil
}

func (b *builder) index(e *ast.Index) (source, error) {
	target, err := b.expr(e.Target)
	if err != nil {
		return source{}, err
	}
	index, err := b.expr(e.Index)
	if err != nil {
		return source{}, err
	}
	n := b.graph.Add(&dag.Node{
		Name:    "index",
		Kind:    dag.Primitive,
		Op:      "index",
		Inputs:  []string{"target", "index"},
		Outputs: []string{"out"},
	})
	b.connect(target, dag.Port{Node: n, Port: "target"}, e.Target)
	b.connect(index, dag.Port{Node: n, Port: "index"}, e.Index)
	return portSource(dag.Port{Node: n, Port: "out"}), nil
}

// structLiteral lowers to a tuple primitive with one output port per
// field; field access projects a tuple output port directly.
func (b *builder) structLiteral(e *ast.StructLiteral) (source, error) {
	var ports []string
	for _, f := range e.Fields {
		ports = append(ports, f.Name.Name)
	}
	// Each field is projectable as its own output port; "out" carries
	// the whole tuple for bindings and graph outputs.
	n := b.graph.Add(&dag.Node{
		Name:    e.Name.Name,
		Kind:    dag.Primitive,
		Op:      "tuple",
		Inputs:  ports,
		Outputs: append(append([]string{}, ports...), "out"),
	})
	for _, f := range e.Fields {
		src, err := b.expr(f.Value)
		if err != nil {
			return source{}, err
		}
		b.connect(src, dag.Port{Node: n, Port: f.Name.Name}, f.Value)
	}
	return portSource(dag.Port{Node: n, Port: "out"}), nil
}

func (b *builder) fieldAccess(e *ast.FieldAccess) (source, error) {
	target, err := b.expr(e.Target)
	if err != nil {
		return source{}, err
	}
	if !target.bound {
		return source{}, fmt.Errorf("field access requires a struct produced in the graph")
	}
	n := b.graph.Nodes[target.port.Node]
	if n.Op != "tuple" {
		return source{}, fmt.Errorf("field access requires a struct produced in the graph")
	}
	for _, field := range n.Inputs {
		if field == e.Name.Name {
			return portSource(dag.Port{Node: target.port.Node, Port: field}), nil
		}
	}
	return source{}, fmt.Errorf("struct %q has no field %q", n.Name, e.Name.Name)
}

// selectStmt lowers a conditional to a select primitive with input
// ports cond, t, and e.  Bindings made inside the branches stay
// visible; conditionality is carried by the select node, not by
// control edges.
func (b *builder) selectStmt(s *ast.If) (source, error) {
	cond, err := b.expr(s.Cond)
	if err != nil {
		return source{}, err
	}
	thenSrc, thenOK, err := b.branch(s.Then)
	if err != nil {
		return source{}, err
	}
	elseSrc, elseOK, err := b.branch(s.Else)
	if err != nil {
		return source{}, err
	}
	if !thenOK && !elseOK {
		return source{}, nil
	}
	if !elseOK {
		elseSrc = b.constant("0", &dag.Literal{Type: "int"})
	}
	if !thenOK {
		thenSrc = b.constant("0", &dag.Literal{Type: "int"})
	}
	return b.selectNode(cond, thenSrc, elseSrc, s), nil
}

func (b *builder) selectNode(cond, t, e source, at ast.Node) source {
	n := b.graph.Add(&dag.Node{
		Name:    "select",
		Kind:    dag.Primitive,
		Op:      "select",
		Inputs:  []string{"cond", "t", "e"},
		Outputs: []string{"out"},
	})
	b.connect(cond, dag.Port{Node: n, Port: "cond"}, at)
	b.connect(t, dag.Port{Node: n, Port: "t"}, at)
	b.connect(e, dag.Port{Node: n, Port: "e"}, at)
	return portSource(dag.Port{Node: n, Port: "out"})
}

// branch lowers a statement sequence and reports the port of its last
// value-producing statement, if any.
func (b *builder) branch(seq ast.Seq) (source, bool, error) {
	var last source
	var ok bool
	for _, s := range seq {
		if es, isExpr := s.(*ast.ExprStmt); isExpr {
			src, err := b.expr(es.Expr)
			if err != nil {
				return source{}, false, err
			}
			last, ok = src, true
			continue
		}
		if err := b.stmt(s, false); err != nil {
			return source{}, false, err
		}
	}
	return last, ok, nil
}

// matchExpr expands match arms into nested selects, outermost arm
// first, with the wildcard (or final) arm as the innermost fallback.
func (b *builder) matchExpr(m *ast.Match) (source, error) {
	subject, err := b.expr(m.Expr)
	if err != nil {
		return source{}, err
	}
	if len(m.Arms) == 0 {
		return source{}, nil
	}
	return b.arm(subject, m, 0)
}

func (b *builder) arm(subject source, m *ast.Match, i int) (source, error) {
	arm := m.Arms[i]
	last := i == len(m.Arms)-1
	if id, ok := arm.Pattern.(*ast.Identifier); ok {
		// Identifier patterns bind the subject unconditionally.
		saved, had := b.scope[id.Name]
		b.scope[id.Name] = subject
		src, ok, err := b.branch(arm.Body)
		if had {
			b.scope[id.Name] = saved
		} else {
			delete(b.scope, id.Name)
		}
		if err != nil {
			return source{}, err
		}
		if !ok {
			src = b.constant("0", &dag.Literal{Type: "int"})
		}
		return src, nil
	}
	if _, ok := arm.Pattern.(*ast.Wildcard); ok || last {
		src, ok, err := b.branch(arm.Body)
		if err != nil {
			return source{}, err
		}
		if !ok {
			src = b.constant("0", &dag.Literal{Type: "int"})
		}
		return src, nil
	}
	pat, err := b.expr(arm.Pattern)
	if err != nil {
		return source{}, err
	}
	eq := b.graph.Add(&dag.Node{
		Name:    "==",
		Kind:    dag.Primitive,
		Op:      "==",
		Inputs:  []string{"lhs", "rhs"},
		Outputs: []string{"out"},
	})
	b.connect(subject, dag.Port{Node: eq, Port: "lhs"}, arm.Pattern)
	b.connect(pat, dag.Port{Node: eq, Port: "rhs"}, arm.Pattern)
	cond := portSource(dag.Port{Node: eq, Port: "out"})
	thenSrc, ok, err := b.branch(arm.Body)
	if err != nil {
		return source{}, err
	}
	if !ok {
		thenSrc = b.constant("0", &dag.Literal{Type: "int"})
	}
	elseSrc, err := b.arm(subject, m, i+1)
	if err != nil {
		return source{}, err
	}
	return b.selectNode(cond, thenSrc, elseSrc, arm), nil
}
