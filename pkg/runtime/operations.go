package runtime

import (
	"math"
	"strconv"
	"strings"
)

// IsTruthy treats false and nil as falsy and everything else as truthy.
func IsTruthy(v Value) bool {
	switch val := v.(type) {
	case nil, NilValue:
		return false
	case BoolValue:
		return val.Val
	default:
		return true
	}
}

// ValuesEqual compares values of the same kind structurally. Values of
// different kinds are never equal; functions compare by identity.
func ValuesEqual(a, b Value) bool {
	if a == nil {
		a = Nil
	}
	if b == nil {
		b = Nil
	}
	switch av := a.(type) {
	case NilValue:
		_, ok := b.(NilValue)
		return ok
	case BoolValue:
		bv, ok := b.(BoolValue)
		return ok && av.Val == bv.Val
	case NumberValue:
		bv, ok := b.(NumberValue)
		return ok && av.Val == bv.Val
	case StringValue:
		bv, ok := b.(StringValue)
		return ok && av.Val == bv.Val
	case *FunctionValue:
		bv, ok := b.(*FunctionValue)
		return ok && av == bv
	case *NativeFunctionValue:
		bv, ok := b.(*NativeFunctionValue)
		return ok && av == bv
	default:
		return false
	}
}

// Stringify renders a value the way `print` shows it.
func Stringify(v Value) string {
	switch val := v.(type) {
	case nil, NilValue:
		return "nil"
	case BoolValue:
		return strconv.FormatBool(val.Val)
	case NumberValue:
		return FormatNumber(val.Val)
	case StringValue:
		return val.Val
	case *FunctionValue:
		return "<fn " + val.Name() + ">"
	case *NativeFunctionValue:
		return "<native fn>"
	default:
		return "<" + v.Kind().String() + ">"
	}
}

// FormatNumber prints integral numbers without a fractional part and falls
// back to exponent form only for very large or very small magnitudes.
func FormatNumber(n float64) string {
	switch {
	case math.IsNaN(n):
		return "NaN"
	case math.IsInf(n, 1):
		return "inf"
	case math.IsInf(n, -1):
		return "-inf"
	case n == 0:
		if math.Signbit(n) {
			return "-0"
		}
		return "0"
	}
	abs := math.Abs(n)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(n, 'e', -1, 64)
		// strconv writes 1e+21.
		return strings.Replace(s, "e+", "e", 1)
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}
