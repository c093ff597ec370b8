package exec

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gul-lang/gul/compiler/dag"
)

type ValueKind int

const (
	KindVoid ValueKind = iota
	KindInt
	KindFloat
	KindString
	KindBool
	KindList
)

// Value is the runtime representation of a GUL value, a small tagged
// union.
type Value struct {
	Kind  ValueKind
	Int   int64
	Float float64
	Str   string
	Bool  bool
	List  []Value
}

func Void() Value            { return Value{Kind: KindVoid} }
func Int(v int64) Value      { return Value{Kind: KindInt, Int: v} }
func Float(v float64) Value  { return Value{Kind: KindFloat, Float: v} }
func String(v string) Value  { return Value{Kind: KindString, Str: v} }
func Bool(v bool) Value      { return Value{Kind: KindBool, Bool: v} }
func ListOf(v []Value) Value { return Value{Kind: KindList, List: v} }

func fromLiteral(lit *dag.Literal) Value {
	switch lit.Type {
	case "int":
		return Int(lit.Int)
	case "float":
		return Float(lit.Float)
	case "string":
		return String(lit.Str)
	case "bool":
		return Bool(lit.Bool)
	}
	return Void()
}

func (v Value) Equal(w Value) bool {
	if v.Kind != w.Kind {
		return false
	}
	switch v.Kind {
	case KindInt:
		return v.Int == w.Int
	case KindFloat:
		return v.Float == w.Float
	case KindString:
		return v.Str == w.Str
	case KindBool:
		return v.Bool == w.Bool
	case KindList:
		if len(v.List) != len(w.List) {
			return false
		}
		for i := range v.List {
			if !v.List[i].Equal(w.List[i]) {
				return false
			}
		}
		return true
	}
	return true
}

func (v Value) Truthy() bool {
	switch v.Kind {
	case KindBool:
		return v.Bool
	case KindInt:
		return v.Int != 0
	}
	return false
}

func (v Value) String() string {
	switch v.Kind {
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case KindString:
		return v.Str
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindList:
		var b strings.Builder
		b.WriteByte('[')
		for i, item := range v.List {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(item.String())
		}
		b.WriteByte(']')
		return b.String()
	}
	return "void"
}

// asFloat widens ints for mixed arithmetic.
func (v Value) asFloat() (float64, bool) {
	switch v.Kind {
	case KindFloat:
		return v.Float, true
	case KindInt:
		return float64(v.Int), true
	}
	return 0, false
}

func typeName(v Value) string {
	switch v.Kind {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	}
	return "void"
}

func typeErr(op string, vals ...Value) error {
	names := make([]string, len(vals))
	for i, v := range vals {
		names[i] = typeName(v)
	}
	return fmt.Errorf("operator %q not defined on %s", op, strings.Join(names, ", "))
}
