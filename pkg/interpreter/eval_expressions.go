package interpreter

import (
	"fmt"

	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/runtime"
	"lox/interpreter-go/pkg/token"
)

func (i *Interpreter) evaluateExpression(node ast.Expression, env *runtime.Environment) (runtime.Value, error) {
	switch n := node.(type) {
	case *ast.LiteralExpression:
		return runtime.FromLiteral(n.Value), nil
	case *ast.GroupingExpression:
		return i.evaluateExpression(n.Expression, env)
	case *ast.VariableExpression:
		i.line = n.Name.Line
		val, err := env.Get(n.Name.Lexeme)
		if err != nil {
			return nil, &RuntimeError{Token: n.Name, Message: err.Error()}
		}
		return val, nil
	case *ast.AssignmentExpression:
		return i.evaluateAssignment(n, env)
	case *ast.UnaryExpression:
		return i.evaluateUnary(n, env)
	case *ast.BinaryExpression:
		return i.evaluateBinary(n, env)
	case *ast.LogicalExpression:
		return i.evaluateLogical(n, env)
	case *ast.CallExpression:
		return i.evaluateCall(n, env)
	default:
		return nil, fmt.Errorf("unsupported expression %T", node)
	}
}

func (i *Interpreter) evaluateAssignment(n *ast.AssignmentExpression, env *runtime.Environment) (runtime.Value, error) {
	val, err := i.evaluateExpression(n.Value, env)
	if err != nil {
		return nil, err
	}
	i.line = n.Name.Line
	if err := env.Assign(n.Name.Lexeme, val); err != nil {
		return nil, &RuntimeError{Token: n.Name, Message: err.Error()}
	}
	return val, nil
}

func (i *Interpreter) evaluateUnary(n *ast.UnaryExpression, env *runtime.Environment) (runtime.Value, error) {
	right, err := i.evaluateExpression(n.Right, env)
	if err != nil {
		return nil, err
	}
	i.line = n.Operator.Line
	switch n.Operator.Type {
	case token.Minus:
		num, ok := right.(runtime.NumberValue)
		if !ok {
			return nil, newRuntimeError(n.Operator, "Operand must be a number.")
		}
		return runtime.NumberValue{Val: -num.Val}, nil
	case token.Bang:
		return runtime.BoolValue{Val: !runtime.IsTruthy(right)}, nil
	default:
		return nil, newRuntimeError(n.Operator, "Unsupported unary operator %s.", n.Operator.Lexeme)
	}
}

// evaluateBinary evaluates both operands left to right before applying the
// operator.
func (i *Interpreter) evaluateBinary(n *ast.BinaryExpression, env *runtime.Environment) (runtime.Value, error) {
	left, err := i.evaluateExpression(n.Left, env)
	if err != nil {
		return nil, err
	}
	right, err := i.evaluateExpression(n.Right, env)
	if err != nil {
		return nil, err
	}
	i.line = n.Operator.Line
	return applyBinaryOperator(n.Operator, left, right)
}

// evaluateLogical short-circuits and yields the deciding operand itself,
// not a coerced boolean.
func (i *Interpreter) evaluateLogical(n *ast.LogicalExpression, env *runtime.Environment) (runtime.Value, error) {
	left, err := i.evaluateExpression(n.Left, env)
	if err != nil {
		return nil, err
	}
	if n.Operator.Type == token.Or {
		if runtime.IsTruthy(left) {
			return left, nil
		}
	} else if !runtime.IsTruthy(left) {
		return left, nil
	}
	return i.evaluateExpression(n.Right, env)
}

func (i *Interpreter) evaluateCall(n *ast.CallExpression, env *runtime.Environment) (runtime.Value, error) {
	callee, err := i.evaluateExpression(n.Callee, env)
	if err != nil {
		return nil, err
	}
	args := make([]runtime.Value, 0, len(n.Arguments))
	for _, argExpr := range n.Arguments {
		val, err := i.evaluateExpression(argExpr, env)
		if err != nil {
			return nil, err
		}
		args = append(args, val)
	}
	i.line = n.Paren.Line

	fn, ok := callee.(runtime.Callable)
	if !ok {
		return nil, newRuntimeError(n.Paren, "Can only call functions.")
	}
	if arity := fn.Arity(); arity >= 0 && len(args) != arity {
		return nil, newRuntimeError(n.Paren, "Expected %d arguments but got %d.", arity, len(args))
	}
	if err := i.checkInterrupt(); err != nil {
		return nil, err
	}
	if i.depth >= i.maxDepth {
		return nil, newRuntimeError(n.Paren, "Stack overflow.")
	}
	i.depth++
	defer func() { i.depth-- }()

	switch fn := fn.(type) {
	case *runtime.FunctionValue:
		return i.invokeFunction(fn, args)
	case *runtime.NativeFunctionValue:
		return i.invokeNative(fn, args, n.Paren)
	default:
		return nil, newRuntimeError(n.Paren, "Can only call functions.")
	}
}

// invokeFunction binds arguments in a fresh scope under the closure and runs
// the body. Falling off the end yields nil.
func (i *Interpreter) invokeFunction(fn *runtime.FunctionValue, args []runtime.Value) (runtime.Value, error) {
	localEnv := runtime.NewEnvironment(fn.Closure)
	for idx, param := range fn.Declaration.Params {
		localEnv.Define(param.Lexeme, args[idx])
	}
	if _, err := i.evaluateBlock(fn.Declaration.Body, localEnv); err != nil {
		if ret, ok := err.(returnSignal); ok {
			return ret.value, nil
		}
		return nil, err
	}
	return runtime.Nil, nil
}

func (i *Interpreter) invokeNative(fn *runtime.NativeFunctionValue, args []runtime.Value, paren token.Token) (result runtime.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, newRuntimeError(paren, "%s: %v", fn.Name, r)
		}
	}()
	if fn.Impl == nil {
		return runtime.Nil, nil
	}
	val, err := fn.Impl(&runtime.NativeCallContext{Env: i.global}, args)
	if err != nil {
		if rerr, ok := err.(*RuntimeError); ok {
			return nil, rerr
		}
		return nil, &RuntimeError{Token: paren, Message: err.Error()}
	}
	if val == nil {
		return runtime.Nil, nil
	}
	return val, nil
}
