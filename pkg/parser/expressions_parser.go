package parser

import (
	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/token"
)

var (
	equalityOperators   = []token.Type{token.BangEqual, token.EqualEqual}
	comparisonOperators = []token.Type{token.Greater, token.GreaterEqual, token.Less, token.LessEqual}
	termOperators       = []token.Type{token.Minus, token.Plus}
	factorOperators     = []token.Type{token.Slash, token.Star}
)

func (p *Parser) expression() (ast.Expression, error) {
	return p.assignment()
}

// assignment parses the left side as an ordinary expression and only then
// checks whether it names a variable.
func (p *Parser) assignment() (ast.Expression, error) {
	expr, err := p.or()
	if err != nil {
		return nil, err
	}
	if !p.match(token.Equal) {
		return expr, nil
	}
	equals := p.previous()
	value, err := p.assignment()
	if err != nil {
		return nil, err
	}
	if variable, ok := expr.(*ast.VariableExpression); ok {
		return ast.NewAssignmentExpression(variable.Name, value), nil
	}
	p.report(equals, "Invalid assignment target.")
	return expr, nil
}

func (p *Parser) or() (ast.Expression, error) {
	return p.logical(token.Or, p.and)
}

func (p *Parser) and() (ast.Expression, error) {
	return p.logical(token.And, p.equality)
}

func (p *Parser) logical(op token.Type, next func() (ast.Expression, error)) (ast.Expression, error) {
	expr, err := next()
	if err != nil {
		return nil, err
	}
	for p.match(op) {
		operator := p.previous()
		right, err := next()
		if err != nil {
			return nil, err
		}
		expr = ast.NewLogicalExpression(expr, operator, right)
	}
	return expr, nil
}

func (p *Parser) equality() (ast.Expression, error) {
	return p.binary(equalityOperators, p.comparison)
}

func (p *Parser) comparison() (ast.Expression, error) {
	return p.binary(comparisonOperators, p.term)
}

func (p *Parser) term() (ast.Expression, error) {
	return p.binary(termOperators, p.factor)
}

func (p *Parser) factor() (ast.Expression, error) {
	return p.binary(factorOperators, p.unary)
}

// binary parses a left-associative chain of operators at one precedence level.
func (p *Parser) binary(ops []token.Type, next func() (ast.Expression, error)) (ast.Expression, error) {
	expr, err := next()
	if err != nil {
		return nil, err
	}
	for p.match(ops...) {
		operator := p.previous()
		right, err := next()
		if err != nil {
			return nil, err
		}
		expr = ast.NewBinaryExpression(expr, operator, right)
	}
	return expr, nil
}

func (p *Parser) unary() (ast.Expression, error) {
	if p.match(token.Bang, token.Minus) {
		operator := p.previous()
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		return ast.NewUnaryExpression(operator, right), nil
	}
	return p.call()
}

func (p *Parser) call() (ast.Expression, error) {
	expr, err := p.primary()
	if err != nil {
		return nil, err
	}
	for p.match(token.LeftParen) {
		if expr, err = p.finishCall(expr); err != nil {
			return nil, err
		}
	}
	return expr, nil
}

func (p *Parser) finishCall(callee ast.Expression) (ast.Expression, error) {
	args := make([]ast.Expression, 0)
	if !p.check(token.RightParen) {
		for {
			if len(args) >= MaxArity {
				p.report(p.peek(), "Can't have more than 255 arguments.")
			}
			arg, err := p.expression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if !p.match(token.Comma) {
				break
			}
		}
	}
	paren, err := p.consume(token.RightParen, "Expect ')' after arguments.")
	if err != nil {
		return nil, err
	}
	return ast.NewCallExpression(callee, paren, args), nil
}

func (p *Parser) primary() (ast.Expression, error) {
	switch {
	case p.match(token.False):
		return ast.NewLiteralExpression(false), nil
	case p.match(token.True):
		return ast.NewLiteralExpression(true), nil
	case p.match(token.Nil):
		return ast.NewLiteralExpression(nil), nil
	case p.match(token.Number, token.String):
		return ast.NewLiteralExpression(p.previous().Literal), nil
	case p.match(token.Identifier):
		return ast.NewVariableExpression(p.previous()), nil
	case p.match(token.LeftParen):
		expr, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(token.RightParen, "Expect ')' after expression."); err != nil {
			return nil, err
		}
		return ast.NewGroupingExpression(expr), nil
	}
	return nil, p.errorAt(p.peek(), "Expect expression.")
}
