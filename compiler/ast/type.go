package ast

import "fmt"

// TypeKind enumerates the primitive type heads of the annotation
// lattice.
type TypeKind int

const (
	TypeUnknown TypeKind = iota
	TypeInteger
	TypeFloat
	TypeString
	TypeBoolean
	TypeVoid
	TypeList
)

// Type annotates an expression.  List types carry their element type;
// everything else is a bare head.
type Type struct {
	Kind TypeKind `json:"kind"`
	Elem *Type    `json:"elem,omitempty"`
}

var (
	Unknown = Type{Kind: TypeUnknown}
	Integer = Type{Kind: TypeInteger}
	Float   = Type{Kind: TypeFloat}
	String  = Type{Kind: TypeString}
	Boolean = Type{Kind: TypeBoolean}
	Void    = Type{Kind: TypeVoid}
)

func ListOf(elem Type) Type {
	return Type{Kind: TypeList, Elem: &elem}
}

// CopyLike reports whether values of this type are exempt from the
// linear-use rule: primitive numerics, booleans, and strings.
func (t Type) CopyLike() bool {
	switch t.Kind {
	case TypeInteger, TypeFloat, TypeBoolean, TypeString:
		return true
	}
	return false
}

func (t Type) String() string {
	switch t.Kind {
	case TypeInteger:
		return "int"
	case TypeFloat:
		return "float"
	case TypeString:
		return "string"
	case TypeBoolean:
		return "bool"
	case TypeVoid:
		return "void"
	case TypeList:
		if t.Elem == nil {
			return "list"
		}
		return fmt.Sprintf("list(%s)", t.Elem)
	}
	return "unknown"
}
