package runtime

import (
	"fmt"

	"lox/interpreter-go/pkg/ast"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindNumber Kind = iota
	KindBool
	KindString
	KindNil
	KindFunction
	KindNativeFunction
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindNil:
		return "nil"
	case KindFunction:
		return "function"
	case KindNativeFunction:
		return "native_function"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Value is the shared behaviour for all runtime values.
type Value interface {
	Kind() Kind
}

//-----------------------------------------------------------------------------
// Scalars
//-----------------------------------------------------------------------------

type NumberValue struct {
	Val float64
}

func (v NumberValue) Kind() Kind { return KindNumber }

type BoolValue struct {
	Val bool
}

func (v BoolValue) Kind() Kind { return KindBool }

type StringValue struct {
	Val string
}

func (v StringValue) Kind() Kind { return KindString }

type NilValue struct{}

func (NilValue) Kind() Kind { return KindNil }

// Nil is the canonical nil value.
var Nil Value = NilValue{}

// FromLiteral converts a literal produced by the scanner into a value.
func FromLiteral(literal any) Value {
	switch v := literal.(type) {
	case float64:
		return NumberValue{Val: v}
	case string:
		return StringValue{Val: v}
	case bool:
		return BoolValue{Val: v}
	default:
		return Nil
	}
}

//-----------------------------------------------------------------------------
// Functions & closures
//-----------------------------------------------------------------------------

// Callable is implemented by *FunctionValue and *NativeFunctionValue only;
// the unexported method keeps the set closed.
type Callable interface {
	Value
	Arity() int
	callable()
}

// FunctionValue is a user-defined function bound to the scope it was
// declared in.
type FunctionValue struct {
	Declaration *ast.FunctionDeclaration
	Closure     *Environment
}

func (v *FunctionValue) Kind() Kind { return KindFunction }

func (v *FunctionValue) Arity() int { return len(v.Declaration.Params) }

func (*FunctionValue) callable() {}

// Name returns the declared function name.
func (v *FunctionValue) Name() string { return v.Declaration.Name.Lexeme }

// NativeCallContext is handed to native implementations.
type NativeCallContext struct {
	Env *Environment
}

type NativeFunc func(ctx *NativeCallContext, args []Value) (Value, error)

// NativeFunctionValue is a host-provided callable. A negative ParamCount
// accepts any number of arguments.
type NativeFunctionValue struct {
	Name       string
	ParamCount int
	Impl       NativeFunc
}

func (v *NativeFunctionValue) Kind() Kind { return KindNativeFunction }

func (v *NativeFunctionValue) Arity() int { return v.ParamCount }

func (*NativeFunctionValue) callable() {}
