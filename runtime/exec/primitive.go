package exec

import (
	"fmt"
	"strings"

	"github.com/gul-lang/gul/compiler/dag"
	"github.com/gul-lang/gul/compiler/diag"
)

// applyPrimitive evaluates a primitive node and writes its output
// ports into the table.
func applyPrimitive(n *dag.Node, i int, args []Value, table map[dag.Port]Value) error {
	out := dag.Port{Node: i, Port: "out"}
	switch n.Op {
	case "tuple":
		// One output port per field, same names as the inputs, plus
		// the whole tuple at "out".
		for k, port := range n.Inputs {
			table[dag.Port{Node: i, Port: port}] = args[k]
		}
		table[out] = ListOf(args)
		return nil
	case "id":
		table[out] = args[0]
		return nil
	case "neg":
		switch args[0].Kind {
		case KindInt:
			table[out] = Int(-args[0].Int)
		case KindFloat:
			table[out] = Float(-args[0].Float)
		default:
			return typeErr("-", args[0])
		}
		return nil
	case "not":
		table[out] = Bool(!args[0].Truthy())
		return nil
	case "select":
		if args[0].Truthy() {
			table[out] = args[1]
		} else {
			table[out] = args[2]
		}
		return nil
	case "list":
		table[out] = ListOf(args)
		return nil
	case "index":
		return applyIndex(args[0], args[1], out, table)
	}
	v, err := applyBinary(n.Op, args[0], args[1])
	if err != nil {
		return err
	}
	table[out] = v
	return nil
}

func applyIndex(target, index Value, out dag.Port, table map[dag.Port]Value) error {
	if index.Kind != KindInt {
		return typeErr("index", index)
	}
	k := index.Int
	switch target.Kind {
	case KindList:
		if k < 0 || k >= int64(len(target.List)) {
			return fmt.Errorf("index %d out of range for list of length %d", k, len(target.List))
		}
		table[out] = target.List[k]
	case KindString:
		if k < 0 || k >= int64(len(target.Str)) {
			return fmt.Errorf("index %d out of range for string of length %d", k, len(target.Str))
		}
		table[out] = String(string(target.Str[k]))
	default:
		return typeErr("index", target)
	}
	return nil
}

func applyBinary(op string, lhs, rhs Value) (Value, error) {
	switch op {
	case "&&":
		return Bool(lhs.Truthy() && rhs.Truthy()), nil
	case "||":
		return Bool(lhs.Truthy() || rhs.Truthy()), nil
	case "==":
		return Bool(lhs.Equal(rhs)), nil
	case "!=":
		return Bool(!lhs.Equal(rhs)), nil
	case "in":
		return applyIn(lhs, rhs)
	case "<", "<=", ">", ">=":
		return applyCompare(op, lhs, rhs)
	case "+":
		if lhs.Kind == KindString && rhs.Kind == KindString {
			return String(lhs.Str + rhs.Str), nil
		}
		fallthrough
	case "-", "*", "/", "%":
		return applyArith(op, lhs, rhs)
	}
	return Value{}, fmt.Errorf("unknown primitive operator %q", op)
}

func applyIn(lhs, rhs Value) (Value, error) {
	switch rhs.Kind {
	case KindList:
		for _, item := range rhs.List {
			if item.Equal(lhs) {
				return Bool(true), nil
			}
		}
		return Bool(false), nil
	case KindString:
		if lhs.Kind != KindString {
			return Value{}, typeErr("in", lhs, rhs)
		}
		return Bool(strings.Contains(rhs.Str, lhs.Str)), nil
	}
	return Value{}, typeErr("in", lhs, rhs)
}

func applyCompare(op string, lhs, rhs Value) (Value, error) {
	if lhs.Kind == KindString && rhs.Kind == KindString {
		c := strings.Compare(lhs.Str, rhs.Str)
		return compareResult(op, c < 0, c == 0), nil
	}
	lf, lok := lhs.asFloat()
	rf, rok := rhs.asFloat()
	if !lok || !rok {
		return Value{}, typeErr(op, lhs, rhs)
	}
	return compareResult(op, lf < rf, lf == rf), nil
}

func compareResult(op string, less, eq bool) Value {
	switch op {
	case "<":
		return Bool(less)
	case "<=":
		return Bool(less || eq)
	case ">":
		return Bool(!less && !eq)
	}
	return Bool(!less)
}

func applyArith(op string, lhs, rhs Value) (Value, error) {
	if lhs.Kind == KindInt && rhs.Kind == KindInt {
		switch op {
		case "+":
			return Int(lhs.Int + rhs.Int), nil
		case "-":
			return Int(lhs.Int - rhs.Int), nil
		case "*":
			return Int(lhs.Int * rhs.Int), nil
		case "/", "%":
			if rhs.Int == 0 {
				return Value{}, &diag.Diagnostic{
					Code: diag.DivideByZero,
					Msg:  fmt.Sprintf("integer %q by zero", op),
				}
			}
			if op == "/" {
				return Int(lhs.Int / rhs.Int), nil
			}
			return Int(lhs.Int % rhs.Int), nil
		}
	}
	lf, lok := lhs.asFloat()
	rf, rok := rhs.asFloat()
	if !lok || !rok {
		return Value{}, typeErr(op, lhs, rhs)
	}
	switch op {
	case "+":
		return Float(lf + rf), nil
	case "-":
		return Float(lf - rf), nil
	case "*":
		return Float(lf * rf), nil
	case "/":
		return Float(lf / rf), nil
	}
	return Value{}, typeErr(op, lhs, rhs)
}
