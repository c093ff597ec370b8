// Package ownership enforces the linear-use discipline on values
// introduced by let bindings.  The pass is a single abstract
// interpretation over the AST with a per-scope binding→state map;
// control-flow joins take the pointwise moved-wins join.
package ownership

import (
	"fmt"

	"github.com/gul-lang/gul/compiler/ast"
	"github.com/gul-lang/gul/compiler/diag"
	"github.com/gul-lang/gul/compiler/parser"
)

// Check validates the linear-use rules over a parsed file and returns
// the collected diagnostics as an error, or nil when the tree is
// clean.
func Check(a *parser.AST) error {
	c := &checker{
		errs:  diag.NewList(a.File()),
		scope: newScope(nil),
		funcs: make(map[string]*ast.Function),
	}
	// Functions are visible file-wide so calls that appear before the
	// declaration still resolve parameter modes.
	for _, s := range a.Body() {
		if fn, ok := s.(*ast.Function); ok {
			c.funcs[fn.Name.Name] = fn
		}
	}
	c.seq(a.Body())
	c.exitScope(c.scope)
	return c.errs.Error()
}

type checker struct {
	errs  *diag.List
	scope *scope
	funcs map[string]*ast.Function
	// loops holds the scope depth at each enclosing loop entry; a move
	// of a binding declared at a shallower depth than the innermost
	// entry would repeat across iterations.
	loops  []int
	infunc int
}

func (c *checker) seq(seq ast.Seq) {
	for _, s := range seq {
		c.stmt(s)
	}
}

// block runs a statement sequence in a child scope and applies the
// consume-at-exit rule to bindings the block introduced.
func (c *checker) block(seq ast.Seq) {
	c.scope = newScope(c.scope)
	c.seq(seq)
	inner := c.scope
	c.scope = inner.parent
	c.exitScope(inner)
}

func (c *checker) exitScope(s *scope) {
	for _, b := range s.order {
		if b.isVar || b.copyLike || b.exempt || b.tainted {
			continue
		}
		if b.state == live {
			c.errs.AddHint(diag.UnconsumedValue,
				fmt.Sprintf("owned value %q is never consumed", b.name),
				"move it, return it, or bind it to a copy-like type",
				b.declPos, b.declEnd)
		}
	}
}

func (c *checker) stmt(s ast.Stmt) {
	switch s := s.(type) {
	case *ast.Let:
		typ := c.expr(s.Value, true)
		c.define(s.Name, typ, false)
	case *ast.Var:
		typ := c.expr(s.Value, true)
		c.define(s.Name, typ, true)
	case *ast.Global:
		typ := c.expr(s.Value, true)
		c.define(s.Name, typ, true)
	case *ast.Assignment:
		c.expr(s.Value, true)
		b := c.scope.lookup(s.Name.Name)
		if b == nil {
			return
		}
		if !b.isVar {
			c.errs.AddHint(diag.AssignToImmutable,
				fmt.Sprintf("cannot assign to immutable binding %q", s.Name.Name),
				"declare it with 'var' to make it assignable",
				s.Name.Pos(), s.Name.End())
			return
		}
		// Assignment refreshes the storage; a var is live again even
		// if a previous value analysis marked it.
		b.state = live
	case *ast.SetIndex:
		c.expr(s.Target, false)
		c.expr(s.Index, false)
		c.expr(s.Value, true)
	case *ast.ExprStmt:
		c.expr(s.Expr, false)
	case *ast.Return:
		if c.infunc == 0 {
			c.errs.Add(diag.UnexpectedToken, "'return' outside of a function", s.Pos(), s.End())
		}
		if s.Value != nil {
			c.expr(s.Value, true)
		}
	case *ast.Function:
		c.function(s)
	case *ast.If:
		c.expr(s.Cond, false)
		pre := c.scope.snapshot()
		c.block(s.Then)
		then := c.scope.snapshot()
		pre.restore()
		c.block(s.Else)
		then.join()
	case *ast.While:
		c.expr(s.Cond, false)
		c.loop(s.Body)
	case *ast.Loop:
		c.loop(s.Body)
	case *ast.Match:
		c.match(s)
	case *ast.Break, *ast.Continue:
		if len(c.loops) == 0 {
			c.errs.Add(diag.UnexpectedToken, "loop control statement outside of a loop", s.Pos(), s.End())
		}
	case *ast.Import, *ast.StructDecl, *ast.EnumDecl:
		// Declarations introduce no owned values.
	}
}

func (c *checker) loop(body ast.Seq) {
	c.loops = append(c.loops, c.scope.depth)
	c.block(body)
	c.loops = c.loops[:len(c.loops)-1]
}

func (c *checker) match(m *ast.Match) {
	subject := c.expr(m.Expr, false)
	pre := c.scope.snapshot()
	var outcomes []snapshot
	for _, arm := range m.Arms {
		pre.restore()
		c.scope = newScope(c.scope)
		if id, ok := arm.Pattern.(*ast.Identifier); ok {
			c.scope.define(&binding{
				name:     id.Name,
				copyLike: subject.CopyLike(),
				exempt:   subject.Kind == ast.TypeUnknown,
				typ:      subject,
				declPos:  id.Pos(),
				declEnd:  id.End(),
			})
		}
		c.seq(arm.Body)
		inner := c.scope
		c.scope = inner.parent
		c.exitScope(inner)
		outcomes = append(outcomes, c.scope.snapshot())
	}
	pre.restore()
	for _, o := range outcomes {
		o.join()
	}
}

func (c *checker) function(fn *ast.Function) {
	c.scope = newScope(c.scope)
	for _, p := range fn.Params {
		typ := typeOfRef(p.Type)
		c.scope.define(&binding{
			name:     p.Name.Name,
			isVar:    p.ByRef,
			copyLike: typ.CopyLike(),
			exempt:   p.Type == nil,
			typ:      typ,
			declPos:  p.Pos(),
			declEnd:  p.End(),
		})
	}
	c.infunc++
	c.seq(fn.Body)
	c.infunc--
	inner := c.scope
	c.scope = inner.parent
	c.exitScope(inner)
}

func (c *checker) define(name *ast.ID, typ ast.Type, isVar bool) {
	c.scope.define(&binding{
		name:     name.Name,
		isVar:    isVar,
		copyLike: typ.CopyLike(),
		exempt:   typ.Kind == ast.TypeUnknown && isVar,
		typ:      typ,
		declPos:  name.Pos(),
		declEnd:  name.End(),
	})
}

// expr checks a use of an expression and returns its inferred type,
// annotating the node.  When move is true and the expression is a bare
// identifier, the use is a move position and the binding is consumed.
func (c *checker) expr(e ast.Expr, move bool) ast.Type {
	if e == nil {
		return ast.Unknown
	}
	var typ ast.Type
	switch e := e.(type) {
	case *ast.IntLit:
		typ = ast.Integer
	case *ast.FloatLit:
		typ = ast.Float
	case *ast.StringLit:
		typ = ast.String
	case *ast.BoolLit:
		typ = ast.Boolean
	case *ast.Identifier:
		typ = c.use(e, move)
	case *ast.BinaryExpr:
		typ = c.binary(e)
	case *ast.UnaryExpr:
		t := c.expr(e.Operand, false)
		if e.Op == "!" {
			typ = ast.Boolean
		} else {
			typ = t
		}
	case *ast.Call:
		typ = c.call(e)
	case *ast.MethodCall:
		// The receiver is borrowed by the method; arguments consume.
		c.expr(e.Receiver, false)
		for _, arg := range e.Args {
			c.expr(arg, true)
		}
		typ = ast.Unknown
	case *ast.List:
		var elem ast.Type
		for i, item := range e.Items {
			t := c.expr(item, true) // placed into an aggregate
			if i == 0 {
				elem = t
			}
		}
		typ = ast.ListOf(elem)
	case *ast.Index:
		t := c.expr(e.Target, false)
		c.expr(e.Index, false)
		if t.Kind == ast.TypeList && t.Elem != nil {
			typ = *t.Elem
		} else {
			typ = ast.Unknown
		}
	case *ast.StructLiteral:
		for _, f := range e.Fields {
			c.expr(f.Value, true)
		}
		typ = ast.Unknown
	case *ast.FieldAccess:
		c.expr(e.Target, false)
		typ = ast.Unknown
	case *ast.Wildcard:
		typ = ast.Unknown
	default:
		typ = ast.Unknown
	}
	e.Annotate(typ)
	return typ
}

func (c *checker) use(id *ast.Identifier, move bool) ast.Type {
	b := c.scope.lookup(id.Name)
	if b == nil {
		// Unresolved names are function references or external graph
		// inputs; they are not owned values.
		return ast.Unknown
	}
	if b.state == moved {
		b.tainted = true
		pos := c.errs.File().Position(b.movePos)
		c.errs.AddHint(diag.UseAfterMove,
			fmt.Sprintf("use of %q after it was moved", id.Name),
			fmt.Sprintf("value was moved at line %d, column %d", pos.Line, pos.Column),
			id.Pos(), id.End())
		return b.typ
	}
	if move {
		if b.isVar {
			b.tainted = true
			c.errs.AddHint(diag.CannotMoveVar,
				fmt.Sprintf("cannot move mutable binding %q", id.Name),
				"vars reference their storage; copy the value or use a let binding",
				id.Pos(), id.End())
			return b.typ
		}
		if len(c.loops) > 0 && b.depth <= c.loops[len(c.loops)-1] {
			b.tainted = true
			c.errs.AddHint(diag.MoveInLoop,
				fmt.Sprintf("cannot move %q inside a loop; it is declared outside the loop", id.Name),
				"a value can be moved at most once across iterations",
				id.Pos(), id.End())
			return b.typ
		}
		b.state = moved
		b.movePos = id.Pos()
	}
	return b.typ
}

func (c *checker) binary(e *ast.BinaryExpr) ast.Type {
	lt := c.expr(e.LHS, false)
	rt := c.expr(e.RHS, false)
	switch e.Op {
	case "==", "!=", "<", "<=", ">", ">=", "&&", "||", "in":
		return ast.Boolean
	}
	if lt.Kind != ast.TypeUnknown {
		return lt
	}
	return rt
}

func (c *checker) call(e *ast.Call) ast.Type {
	id, _ := e.Callee.(*ast.Identifier)
	var fn *ast.Function
	if id != nil {
		if b := c.scope.lookup(id.Name); b == nil {
			fn = c.funcs[id.Name]
		} else {
			c.use(id, false)
		}
	} else {
		c.expr(e.Callee, false)
	}
	for i, arg := range e.Args {
		consumes := true
		if fn != nil && i < len(fn.Params) {
			consumes = !fn.Params[i].ByRef
		}
		c.expr(arg, consumes)
	}
	if fn != nil {
		return typeOfRef(fn.Result)
	}
	return ast.Unknown
}

func typeOfRef(ref *ast.TypeRef) ast.Type {
	if ref == nil {
		return ast.Unknown
	}
	switch ref.Name {
	case "int":
		return ast.Integer
	case "float":
		return ast.Float
	case "string":
		return ast.String
	case "bool":
		return ast.Boolean
	case "void":
		return ast.Void
	case "list":
		elem := typeOfRef(ref.Elem)
		return ast.ListOf(elem)
	}
	return ast.Unknown
}
