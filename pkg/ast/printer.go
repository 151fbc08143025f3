package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Print renders a node as a parenthesised prefix expression, e.g.
// `(* (- 123) (group 45.67))`.
func Print(node Node) string {
	var b strings.Builder
	writeNode(&b, node)
	return b.String()
}

func writeNode(b *strings.Builder, node Node) {
	switch n := node.(type) {
	case nil:
		b.WriteString("<nil>")
	case *BinaryExpression:
		parenthesize(b, n.Operator.Lexeme, n.Left, n.Right)
	case *LogicalExpression:
		parenthesize(b, n.Operator.Lexeme, n.Left, n.Right)
	case *GroupingExpression:
		parenthesize(b, "group", n.Expression)
	case *UnaryExpression:
		parenthesize(b, n.Operator.Lexeme, n.Right)
	case *LiteralExpression:
		b.WriteString(formatLiteral(n.Value))
	case *VariableExpression:
		b.WriteString(n.Name.Lexeme)
	case *AssignmentExpression:
		parenthesize(b, "= "+n.Name.Lexeme, n.Value)
	case *CallExpression:
		nodes := make([]Node, 0, len(n.Arguments)+1)
		nodes = append(nodes, n.Callee)
		for _, arg := range n.Arguments {
			nodes = append(nodes, arg)
		}
		parenthesize(b, "call", nodes...)
	case *ExpressionStatement:
		parenthesize(b, ";", n.Expression)
	case *PrintStatement:
		parenthesize(b, "print", n.Expression)
	case *VarStatement:
		if n.Initializer == nil {
			parenthesize(b, "var "+n.Name.Lexeme)
			return
		}
		parenthesize(b, "var "+n.Name.Lexeme, n.Initializer)
	case *BlockStatement:
		parenthesize(b, "block", statementNodes(n.Statements)...)
	case *IfStatement:
		if n.ElseBranch == nil {
			parenthesize(b, "if", n.Condition, n.ThenBranch)
			return
		}
		parenthesize(b, "if", n.Condition, n.ThenBranch, n.ElseBranch)
	case *WhileStatement:
		parenthesize(b, "while", n.Condition, n.Body)
	case *FunctionDeclaration:
		params := make([]string, 0, len(n.Params))
		for _, p := range n.Params {
			params = append(params, p.Lexeme)
		}
		head := fmt.Sprintf("fun %s (%s)", n.Name.Lexeme, strings.Join(params, " "))
		parenthesize(b, head, statementNodes(n.Body)...)
	case *ReturnStatement:
		if n.Value == nil {
			parenthesize(b, "return")
			return
		}
		parenthesize(b, "return", n.Value)
	default:
		fmt.Fprintf(b, "<%s>", node.NodeType())
	}
}

func parenthesize(b *strings.Builder, name string, nodes ...Node) {
	b.WriteByte('(')
	b.WriteString(name)
	for _, n := range nodes {
		b.WriteByte(' ')
		writeNode(b, n)
	}
	b.WriteByte(')')
}

func statementNodes(stmts []Statement) []Node {
	out := make([]Node, 0, len(stmts))
	for _, s := range stmts {
		out = append(out, s)
	}
	return out
}

func formatLiteral(value any) string {
	switch v := value.(type) {
	case nil:
		return "nil"
	case string:
		return strconv.Quote(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
