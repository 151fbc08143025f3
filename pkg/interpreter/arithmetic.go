package interpreter

import (
	"lox/interpreter-go/pkg/runtime"
	"lox/interpreter-go/pkg/token"
)

func applyBinaryOperator(op token.Token, left, right runtime.Value) (runtime.Value, error) {
	switch op.Type {
	case token.EqualEqual:
		return runtime.BoolValue{Val: runtime.ValuesEqual(left, right)}, nil
	case token.BangEqual:
		return runtime.BoolValue{Val: !runtime.ValuesEqual(left, right)}, nil
	case token.Plus:
		switch lv := left.(type) {
		case runtime.NumberValue:
			if rv, ok := right.(runtime.NumberValue); ok {
				return runtime.NumberValue{Val: lv.Val + rv.Val}, nil
			}
		case runtime.StringValue:
			if rv, ok := right.(runtime.StringValue); ok {
				return runtime.StringValue{Val: lv.Val + rv.Val}, nil
			}
		}
		return nil, newRuntimeError(op, "Operands must be two numbers or two strings.")
	}

	l, r, ok := numberOperands(left, right)
	if !ok {
		return nil, newRuntimeError(op, "Operand must be a number.")
	}
	switch op.Type {
	case token.Minus:
		return runtime.NumberValue{Val: l - r}, nil
	case token.Star:
		return runtime.NumberValue{Val: l * r}, nil
	case token.Slash:
		// IEEE semantics: x/0 is ±inf, 0/0 is NaN.
		return runtime.NumberValue{Val: l / r}, nil
	case token.Greater:
		return runtime.BoolValue{Val: l > r}, nil
	case token.GreaterEqual:
		return runtime.BoolValue{Val: l >= r}, nil
	case token.Less:
		return runtime.BoolValue{Val: l < r}, nil
	case token.LessEqual:
		return runtime.BoolValue{Val: l <= r}, nil
	default:
		return nil, newRuntimeError(op, "Unsupported binary operator %s.", op.Lexeme)
	}
}

func numberOperands(left, right runtime.Value) (float64, float64, bool) {
	l, ok := left.(runtime.NumberValue)
	if !ok {
		return 0, 0, false
	}
	r, ok := right.(runtime.NumberValue)
	if !ok {
		return 0, 0, false
	}
	return l.Val, r.Val, true
}
