package ast

import "lox/interpreter-go/pkg/token"

// Convenience constructors for building trees by hand. Synthesised tokens
// carry line 0.

var operatorTypes = map[string]token.Type{
	"+":   token.Plus,
	"-":   token.Minus,
	"*":   token.Star,
	"/":   token.Slash,
	"!":   token.Bang,
	"!=":  token.BangEqual,
	"==":  token.EqualEqual,
	">":   token.Greater,
	">=":  token.GreaterEqual,
	"<":   token.Less,
	"<=":  token.LessEqual,
	"and": token.And,
	"or":  token.Or,
}

// Op synthesises an operator token from its lexeme.
func Op(lexeme string) token.Token {
	typ, ok := operatorTypes[lexeme]
	if !ok {
		panic("ast: unknown operator " + lexeme)
	}
	return token.New(typ, lexeme, nil, 0)
}

// Ident synthesises an identifier token.
func Ident(name string) token.Token {
	return token.New(token.Identifier, name, nil, 0)
}

func Num(value float64) *LiteralExpression {
	return NewLiteralExpression(value)
}

func Str(value string) *LiteralExpression {
	return NewLiteralExpression(value)
}

func Bool(value bool) *LiteralExpression {
	return NewLiteralExpression(value)
}

func Nil() *LiteralExpression {
	return NewLiteralExpression(nil)
}

func ID(name string) *VariableExpression {
	return NewVariableExpression(Ident(name))
}

func Bin(op string, left, right Expression) *BinaryExpression {
	return NewBinaryExpression(left, Op(op), right)
}

func Un(op string, right Expression) *UnaryExpression {
	return NewUnaryExpression(Op(op), right)
}

func Group(inner Expression) *GroupingExpression {
	return NewGroupingExpression(inner)
}

func Assign(name string, value Expression) *AssignmentExpression {
	return NewAssignmentExpression(Ident(name), value)
}

func And(left, right Expression) *LogicalExpression {
	return NewLogicalExpression(left, Op("and"), right)
}

func Or(left, right Expression) *LogicalExpression {
	return NewLogicalExpression(left, Op("or"), right)
}

func Call(callee Expression, args ...Expression) *CallExpression {
	return NewCallExpression(callee, token.New(token.RightParen, ")", nil, 0), args)
}

func ExprStmt(expr Expression) *ExpressionStatement {
	return NewExpressionStatement(expr)
}

func PrintStmt(expr Expression) *PrintStatement {
	return NewPrintStatement(expr)
}

func Var(name string, initializer Expression) *VarStatement {
	return NewVarStatement(Ident(name), initializer)
}

func Block(statements ...Statement) *BlockStatement {
	return NewBlockStatement(statements)
}

func If(condition Expression, thenBranch, elseBranch Statement) *IfStatement {
	return NewIfStatement(condition, thenBranch, elseBranch)
}

func While(condition Expression, body Statement) *WhileStatement {
	return NewWhileStatement(condition, body)
}

func Fn(name string, params []string, body ...Statement) *FunctionDeclaration {
	tokens := make([]token.Token, 0, len(params))
	for _, p := range params {
		tokens = append(tokens, Ident(p))
	}
	return NewFunctionDeclaration(Ident(name), tokens, body)
}

func Ret(value Expression) *ReturnStatement {
	return NewReturnStatement(token.New(token.Return, "return", nil, 0), value)
}
