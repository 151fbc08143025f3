// Package parser builds Lox syntax trees from a token stream by recursive
// descent.
//
// Errors are reported to a diagnostics.Reporter rather than returned. After
// an error the parser discards tokens up to the next statement boundary and
// carries on, so callers get every statement that did parse and must consult
// their reporter to learn whether anything failed.
package parser

import (
	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/diagnostics"
	"lox/interpreter-go/pkg/token"
)

// MaxArity caps argument and parameter lists.
const MaxArity = 255

// Parser holds the cursor for a single pass over a token stream.
type Parser struct {
	tokens   []token.Token
	current  int
	reporter diagnostics.Reporter
}

// New prepares a parser. A nil reporter discards diagnostics.
func New(tokens []token.Token, reporter diagnostics.Reporter) *Parser {
	if reporter == nil {
		reporter = diagnostics.Discard
	}
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != token.EOF {
		line := 1
		if len(tokens) > 0 {
			line = tokens[len(tokens)-1].Line
		}
		tokens = append(tokens[:len(tokens):len(tokens)], token.New(token.EOF, "", nil, line))
	}
	return &Parser{tokens: tokens, reporter: reporter}
}

// Parse is shorthand for New(tokens, reporter).Parse().
func Parse(tokens []token.Token, reporter diagnostics.Reporter) []ast.Statement {
	return New(tokens, reporter).Parse()
}

// Parse consumes the whole stream and returns the statements that parsed.
func (p *Parser) Parse() []ast.Statement {
	statements := make([]ast.Statement, 0)
	for !p.isAtEnd() {
		if stmt := p.declaration(); stmt != nil {
			statements = append(statements, stmt)
		}
	}
	return statements
}

// ParseExpression parses exactly one expression spanning the whole stream.
func (p *Parser) ParseExpression() (ast.Expression, error) {
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	if !p.isAtEnd() {
		return nil, p.errorAt(p.peek(), "Expect end of expression.")
	}
	return expr, nil
}

func (p *Parser) match(types ...token.Type) bool {
	for _, typ := range types {
		if p.check(typ) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) consume(typ token.Type, message string) (token.Token, error) {
	if p.check(typ) {
		return p.advance(), nil
	}
	return token.Token{}, p.errorAt(p.peek(), message)
}

func (p *Parser) check(typ token.Type) bool {
	if p.isAtEnd() {
		return false
	}
	return p.peek().Type == typ
}

func (p *Parser) advance() token.Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Type == token.EOF
}

func (p *Parser) peek() token.Token {
	return p.tokens[p.current]
}

func (p *Parser) previous() token.Token {
	return p.tokens[p.current-1]
}

// synchronize discards tokens until the start of the next statement.
func (p *Parser) synchronize() {
	p.advance()
	for !p.isAtEnd() {
		if p.previous().Type == token.Semicolon {
			return
		}
		switch p.peek().Type {
		case token.Class, token.Fun, token.Var, token.For, token.If, token.While, token.Print, token.Return:
			return
		}
		p.advance()
	}
}
