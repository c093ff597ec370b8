package ast

// Expr is the interface implemented by all expression nodes.  Every
// expression carries a type-annotation slot filled in by later passes;
// it starts Unknown.
type Expr interface {
	Node
	ExprAST()
	TypeOf() Type
	Annotate(Type)
}

// TypeAnn is the embedded type-annotation slot.
type TypeAnn struct {
	Type Type `json:"type"`
}

func (a *TypeAnn) TypeOf() Type    { return a.Type }
func (a *TypeAnn) Annotate(t Type) { a.Type = t }

type (
	IntLit struct {
		Kind string `json:"kind"`
		Text string `json:"text"`
		TypeAnn
		Loc `json:"loc"`
	}
	FloatLit struct {
		Kind string `json:"kind"`
		Text string `json:"text"`
		TypeAnn
		Loc `json:"loc"`
	}
	StringLit struct {
		Kind  string `json:"kind"`
		Value string `json:"value"`
		TypeAnn
		Loc `json:"loc"`
	}
	BoolLit struct {
		Kind  string `json:"kind"`
		Value bool   `json:"value"`
		TypeAnn
		Loc `json:"loc"`
	}
	Identifier struct {
		Kind string `json:"kind"`
		Name string `json:"name"`
		TypeAnn
		Loc `json:"loc"`
	}
	// BinaryExpr is any expression of the form "lhs op rhs" including
	// arithmetic (+, -, *, /, %), logical (&&, ||), comparisons
	// (==, !=, <, <=, >, >=), and membership (in).
	BinaryExpr struct {
		Kind string `json:"kind"`
		Op   string `json:"op"`
		LHS  Expr   `json:"lhs"`
		RHS  Expr   `json:"rhs"`
		TypeAnn
		Loc `json:"loc"`
	}
	UnaryExpr struct {
		Kind    string `json:"kind"`
		Op      string `json:"op"`
		Operand Expr   `json:"operand"`
		TypeAnn
		Loc `json:"loc"`
	}
	Call struct {
		Kind   string `json:"kind"`
		Callee Expr   `json:"callee"`
		Args   []Expr `json:"args"`
		TypeAnn
		Loc `json:"loc"`
	}
	List struct {
		Kind  string `json:"kind"`
		Items []Expr `json:"items"`
		TypeAnn
		Loc `json:"loc"`
	}
	Index struct {
		Kind   string `json:"kind"`
		Target Expr   `json:"target"`
		Index  Expr   `json:"index"`
		TypeAnn
		Loc `json:"loc"`
	}
	StructLiteral struct {
		Kind   string        `json:"kind"`
		Name   *ID           `json:"name"`
		Fields []*FieldValue `json:"fields"`
		TypeAnn
		Loc `json:"loc"`
	}
	MethodCall struct {
		Kind     string `json:"kind"`
		Receiver Expr   `json:"receiver"`
		Name     *ID    `json:"name"`
		Args     []Expr `json:"args"`
		TypeAnn
		Loc `json:"loc"`
	}
	// FieldAccess is "expr.name" when not followed by a call.
	FieldAccess struct {
		Kind   string `json:"kind"`
		Target Expr   `json:"target"`
		Name   *ID    `json:"name"`
		TypeAnn
		Loc `json:"loc"`
	}
)

func (*IntLit) ExprAST()        {}
func (*FloatLit) ExprAST()      {}
func (*StringLit) ExprAST()     {}
func (*BoolLit) ExprAST()       {}
func (*Identifier) ExprAST()    {}
func (*BinaryExpr) ExprAST()    {}
func (*UnaryExpr) ExprAST()     {}
func (*Call) ExprAST()          {}
func (*List) ExprAST()          {}
func (*Index) ExprAST()         {}
func (*StructLiteral) ExprAST() {}
func (*MethodCall) ExprAST()    {}
func (*FieldAccess) ExprAST()   {}

// FieldValue is one "name: expr" entry of a struct literal.
type FieldValue struct {
	Kind  string `json:"kind"`
	Name  *ID    `json:"name"`
	Value Expr   `json:"value"`
	Loc   `json:"loc"`
}
