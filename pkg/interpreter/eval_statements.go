package interpreter

import (
	"fmt"

	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/runtime"
)

// evaluateStatement executes one statement in env. The value is only
// meaningful for expression statements.
func (i *Interpreter) evaluateStatement(node ast.Statement, env *runtime.Environment) (runtime.Value, error) {
	switch n := node.(type) {
	case *ast.ExpressionStatement:
		return i.evaluateExpression(n.Expression, env)
	case *ast.PrintStatement:
		return i.evaluatePrintStatement(n, env)
	case *ast.VarStatement:
		return i.evaluateVarStatement(n, env)
	case *ast.BlockStatement:
		return i.evaluateBlock(n.Statements, env.Extend())
	case *ast.IfStatement:
		return i.evaluateIfStatement(n, env)
	case *ast.WhileStatement:
		return i.evaluateWhileStatement(n, env)
	case *ast.FunctionDeclaration:
		env.Define(n.Name.Lexeme, &runtime.FunctionValue{Declaration: n, Closure: env})
		return runtime.Nil, nil
	case *ast.ReturnStatement:
		return i.evaluateReturnStatement(n, env)
	default:
		return nil, fmt.Errorf("unsupported statement %T", node)
	}
}

// evaluateBlock runs statements in an already-created scope. Leaving the
// block simply drops the scope.
func (i *Interpreter) evaluateBlock(statements []ast.Statement, env *runtime.Environment) (runtime.Value, error) {
	for _, stmt := range statements {
		if _, err := i.evaluateStatement(stmt, env); err != nil {
			return nil, err
		}
	}
	return runtime.Nil, nil
}

func (i *Interpreter) evaluatePrintStatement(n *ast.PrintStatement, env *runtime.Environment) (runtime.Value, error) {
	val, err := i.evaluateExpression(n.Expression, env)
	if err != nil {
		return nil, err
	}
	if _, err := fmt.Fprintln(i.stdout, runtime.Stringify(val)); err != nil {
		return nil, fmt.Errorf("print: %w", err)
	}
	return runtime.Nil, nil
}

func (i *Interpreter) evaluateVarStatement(n *ast.VarStatement, env *runtime.Environment) (runtime.Value, error) {
	var val runtime.Value = runtime.Nil
	if n.Initializer != nil {
		var err error
		if val, err = i.evaluateExpression(n.Initializer, env); err != nil {
			return nil, err
		}
	}
	env.Define(n.Name.Lexeme, val)
	return runtime.Nil, nil
}

func (i *Interpreter) evaluateIfStatement(n *ast.IfStatement, env *runtime.Environment) (runtime.Value, error) {
	cond, err := i.evaluateExpression(n.Condition, env)
	if err != nil {
		return nil, err
	}
	if runtime.IsTruthy(cond) {
		return i.evaluateStatement(n.ThenBranch, env)
	}
	if n.ElseBranch != nil {
		return i.evaluateStatement(n.ElseBranch, env)
	}
	return runtime.Nil, nil
}

func (i *Interpreter) evaluateWhileStatement(n *ast.WhileStatement, env *runtime.Environment) (runtime.Value, error) {
	for {
		if err := i.checkInterrupt(); err != nil {
			return nil, err
		}
		cond, err := i.evaluateExpression(n.Condition, env)
		if err != nil {
			return nil, err
		}
		if !runtime.IsTruthy(cond) {
			return runtime.Nil, nil
		}
		if _, err := i.evaluateStatement(n.Body, env); err != nil {
			return nil, err
		}
	}
}

func (i *Interpreter) evaluateReturnStatement(n *ast.ReturnStatement, env *runtime.Environment) (runtime.Value, error) {
	i.line = n.Keyword.Line
	var result runtime.Value = runtime.Nil
	if n.Value != nil {
		val, err := i.evaluateExpression(n.Value, env)
		if err != nil {
			return nil, err
		}
		result = val
	}
	return nil, returnSignal{keyword: n.Keyword, value: result}
}
