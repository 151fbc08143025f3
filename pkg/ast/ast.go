package ast

import "lox/interpreter-go/pkg/token"

type NodeType string

const (
	NodeBinaryExpression     NodeType = "BinaryExpression"
	NodeGroupingExpression   NodeType = "GroupingExpression"
	NodeLiteralExpression    NodeType = "LiteralExpression"
	NodeUnaryExpression      NodeType = "UnaryExpression"
	NodeVariableExpression   NodeType = "VariableExpression"
	NodeAssignmentExpression NodeType = "AssignmentExpression"
	NodeLogicalExpression    NodeType = "LogicalExpression"
	NodeCallExpression       NodeType = "CallExpression"

	NodeExpressionStatement NodeType = "ExpressionStatement"
	NodePrintStatement      NodeType = "PrintStatement"
	NodeVarStatement        NodeType = "VarStatement"
	NodeBlockStatement      NodeType = "BlockStatement"
	NodeIfStatement         NodeType = "IfStatement"
	NodeWhileStatement      NodeType = "WhileStatement"
	NodeFunctionDeclaration NodeType = "FunctionDeclaration"
	NodeReturnStatement     NodeType = "ReturnStatement"
)

type Node interface {
	NodeType() NodeType
}

// Expression is the closed set of expression nodes.
type Expression interface {
	Node
	expressionNode()
}

// Statement is the closed set of statement nodes.
type Statement interface {
	Node
	statementNode()
}

// Expressions

type BinaryExpression struct {
	Left     Expression
	Operator token.Token
	Right    Expression
}

func NewBinaryExpression(left Expression, operator token.Token, right Expression) *BinaryExpression {
	return &BinaryExpression{Left: left, Operator: operator, Right: right}
}

func (*BinaryExpression) NodeType() NodeType { return NodeBinaryExpression }
func (*BinaryExpression) expressionNode()    {}

type GroupingExpression struct {
	Expression Expression
}

func NewGroupingExpression(inner Expression) *GroupingExpression {
	return &GroupingExpression{Expression: inner}
}

func (*GroupingExpression) NodeType() NodeType { return NodeGroupingExpression }
func (*GroupingExpression) expressionNode()    {}

// LiteralExpression holds a string, float64, bool or nil.
type LiteralExpression struct {
	Value any
}

func NewLiteralExpression(value any) *LiteralExpression {
	return &LiteralExpression{Value: value}
}

func (*LiteralExpression) NodeType() NodeType { return NodeLiteralExpression }
func (*LiteralExpression) expressionNode()    {}

type UnaryExpression struct {
	Operator token.Token
	Right    Expression
}

func NewUnaryExpression(operator token.Token, right Expression) *UnaryExpression {
	return &UnaryExpression{Operator: operator, Right: right}
}

func (*UnaryExpression) NodeType() NodeType { return NodeUnaryExpression }
func (*UnaryExpression) expressionNode()    {}

type VariableExpression struct {
	Name token.Token
}

func NewVariableExpression(name token.Token) *VariableExpression {
	return &VariableExpression{Name: name}
}

func (*VariableExpression) NodeType() NodeType { return NodeVariableExpression }
func (*VariableExpression) expressionNode()    {}

type AssignmentExpression struct {
	Name  token.Token
	Value Expression
}

func NewAssignmentExpression(name token.Token, value Expression) *AssignmentExpression {
	return &AssignmentExpression{Name: name, Value: value}
}

func (*AssignmentExpression) NodeType() NodeType { return NodeAssignmentExpression }
func (*AssignmentExpression) expressionNode()    {}

type LogicalExpression struct {
	Left     Expression
	Operator token.Token
	Right    Expression
}

func NewLogicalExpression(left Expression, operator token.Token, right Expression) *LogicalExpression {
	return &LogicalExpression{Left: left, Operator: operator, Right: right}
}

func (*LogicalExpression) NodeType() NodeType { return NodeLogicalExpression }
func (*LogicalExpression) expressionNode()    {}

// CallExpression keeps the closing paren so runtime errors can point at the
// call site.
type CallExpression struct {
	Callee    Expression
	Paren     token.Token
	Arguments []Expression
}

func NewCallExpression(callee Expression, paren token.Token, args []Expression) *CallExpression {
	return &CallExpression{Callee: callee, Paren: paren, Arguments: args}
}

func (*CallExpression) NodeType() NodeType { return NodeCallExpression }
func (*CallExpression) expressionNode()    {}

// Statements

type ExpressionStatement struct {
	Expression Expression
}

func NewExpressionStatement(expr Expression) *ExpressionStatement {
	return &ExpressionStatement{Expression: expr}
}

func (*ExpressionStatement) NodeType() NodeType { return NodeExpressionStatement }
func (*ExpressionStatement) statementNode()     {}

type PrintStatement struct {
	Expression Expression
}

func NewPrintStatement(expr Expression) *PrintStatement {
	return &PrintStatement{Expression: expr}
}

func (*PrintStatement) NodeType() NodeType { return NodePrintStatement }
func (*PrintStatement) statementNode()     {}

type VarStatement struct {
	Name        token.Token
	Initializer Expression // nil when omitted
}

func NewVarStatement(name token.Token, initializer Expression) *VarStatement {
	return &VarStatement{Name: name, Initializer: initializer}
}

func (*VarStatement) NodeType() NodeType { return NodeVarStatement }
func (*VarStatement) statementNode()     {}

type BlockStatement struct {
	Statements []Statement
}

func NewBlockStatement(statements []Statement) *BlockStatement {
	return &BlockStatement{Statements: statements}
}

func (*BlockStatement) NodeType() NodeType { return NodeBlockStatement }
func (*BlockStatement) statementNode()     {}

type IfStatement struct {
	Condition  Expression
	ThenBranch Statement
	ElseBranch Statement // nil when omitted
}

func NewIfStatement(condition Expression, thenBranch, elseBranch Statement) *IfStatement {
	return &IfStatement{Condition: condition, ThenBranch: thenBranch, ElseBranch: elseBranch}
}

func (*IfStatement) NodeType() NodeType { return NodeIfStatement }
func (*IfStatement) statementNode()     {}

type WhileStatement struct {
	Condition Expression
	Body      Statement
}

func NewWhileStatement(condition Expression, body Statement) *WhileStatement {
	return &WhileStatement{Condition: condition, Body: body}
}

func (*WhileStatement) NodeType() NodeType { return NodeWhileStatement }
func (*WhileStatement) statementNode()     {}

type FunctionDeclaration struct {
	Name   token.Token
	Params []token.Token
	Body   []Statement
}

func NewFunctionDeclaration(name token.Token, params []token.Token, body []Statement) *FunctionDeclaration {
	return &FunctionDeclaration{Name: name, Params: params, Body: body}
}

func (*FunctionDeclaration) NodeType() NodeType { return NodeFunctionDeclaration }
func (*FunctionDeclaration) statementNode()     {}

type ReturnStatement struct {
	Keyword token.Token
	Value   Expression // nil when omitted
}

func NewReturnStatement(keyword token.Token, value Expression) *ReturnStatement {
	return &ReturnStatement{Keyword: keyword, Value: value}
}

func (*ReturnStatement) NodeType() NodeType { return NodeReturnStatement }
func (*ReturnStatement) statementNode()     {}
