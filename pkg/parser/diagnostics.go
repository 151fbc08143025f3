package parser

import (
	"lox/interpreter-go/pkg/diagnostics"
	"lox/interpreter-go/pkg/token"
)

// ParseError is a syntax error at a specific token.
type ParseError struct {
	Token   token.Token
	Message string
}

func (e *ParseError) Error() string {
	return diagnostics.AtToken(diagnostics.KindParse, e.Token, e.Message).String()
}

// report records an error without unwinding the current rule.
func (p *Parser) report(tok token.Token, message string) {
	p.reporter.Report(diagnostics.AtToken(diagnostics.KindParse, tok, message))
}

// errorAt records an error and returns it so the caller can unwind to the
// enclosing declaration, which then synchronizes.
func (p *Parser) errorAt(tok token.Token, message string) *ParseError {
	p.report(tok, message)
	return &ParseError{Token: tok, Message: message}
}
