// Package scanner turns Lox source text into a token stream.
package scanner

import (
	"strconv"
	"unicode/utf8"

	"lox/interpreter-go/pkg/diagnostics"
	"lox/interpreter-go/pkg/token"
)

// Scanner holds the state of a single scan.
type Scanner struct {
	source   string
	reporter diagnostics.Reporter
	tokens   []token.Token
	start    int
	current  int
	line     int
}

// New prepares a scanner over source. A nil reporter discards errors.
func New(source string, reporter diagnostics.Reporter) *Scanner {
	if reporter == nil {
		reporter = diagnostics.Discard
	}
	return &Scanner{source: source, reporter: reporter, line: 1}
}

// Scan tokenizes source. The result always ends with an EOF token.
func Scan(source string, reporter diagnostics.Reporter) []token.Token {
	return New(source, reporter).ScanTokens()
}

// ScanTokens consumes the whole source. Lexical errors are reported and
// skipped.
func (s *Scanner) ScanTokens() []token.Token {
	for !s.isAtEnd() {
		s.start = s.current
		s.scanToken()
	}
	s.tokens = append(s.tokens, token.New(token.EOF, "", nil, s.line))
	return s.tokens
}

func (s *Scanner) scanToken() {
	c := s.advance()
	switch c {
	case '(':
		s.addToken(token.LeftParen)
	case ')':
		s.addToken(token.RightParen)
	case '{':
		s.addToken(token.LeftBrace)
	case '}':
		s.addToken(token.RightBrace)
	case ',':
		s.addToken(token.Comma)
	case '.':
		s.addToken(token.Dot)
	case '-':
		s.addToken(token.Minus)
	case '+':
		s.addToken(token.Plus)
	case ';':
		s.addToken(token.Semicolon)
	case '*':
		s.addToken(token.Star)
	case '!':
		s.addToken(s.either('=', token.BangEqual, token.Bang))
	case '=':
		s.addToken(s.either('=', token.EqualEqual, token.Equal))
	case '<':
		s.addToken(s.either('=', token.LessEqual, token.Less))
	case '>':
		s.addToken(s.either('=', token.GreaterEqual, token.Greater))
	case '/':
		if s.match('/') {
			for s.peek() != '\n' && !s.isAtEnd() {
				s.advance()
			}
		} else {
			s.addToken(token.Slash)
		}
	case ' ', '\r', '\t':
	case '\n':
		s.line++
	case '"':
		s.string()
	default:
		switch {
		case isDigit(c):
			s.number()
		case isAlpha(c):
			s.identifier()
		default:
			if c >= utf8.RuneSelf {
				// Skip the rest of a multi-byte character so it is reported once.
				_, size := utf8.DecodeRuneInString(s.source[s.start:])
				s.current = s.start + size
			}
			s.reporter.Report(diagnostics.AtLine(diagnostics.KindScan, s.line, "Unexpected character."))
		}
	}
}

func (s *Scanner) identifier() {
	for isAlphaNumeric(s.peek()) {
		s.advance()
	}
	text := s.source[s.start:s.current]
	typ, ok := token.Keywords[text]
	if !ok {
		s.addToken(token.Identifier)
		return
	}
	switch typ {
	case token.True:
		s.addLiteral(typ, true)
	case token.False:
		s.addLiteral(typ, false)
	default:
		s.addToken(typ)
	}
}

func (s *Scanner) string() {
	for s.peek() != '"' && !s.isAtEnd() {
		if s.peek() == '\n' {
			s.line++
		}
		s.advance()
	}
	if s.isAtEnd() {
		s.reporter.Report(diagnostics.AtLine(diagnostics.KindScan, s.line, "Unterminated string."))
		return
	}
	s.advance()
	s.addLiteral(token.String, s.source[s.start+1:s.current-1])
}

func (s *Scanner) number() {
	for isDigit(s.peek()) {
		s.advance()
	}
	if s.peek() == '.' && isDigit(s.peekNext()) {
		s.advance()
		for isDigit(s.peek()) {
			s.advance()
		}
	}
	// The lexeme is DIGIT+ ("." DIGIT+)? so ParseFloat cannot fail.
	value, _ := strconv.ParseFloat(s.source[s.start:s.current], 64)
	s.addLiteral(token.Number, value)
}

func (s *Scanner) either(expected byte, matched, otherwise token.Type) token.Type {
	if s.match(expected) {
		return matched
	}
	return otherwise
}

func (s *Scanner) match(expected byte) bool {
	if s.isAtEnd() || s.source[s.current] != expected {
		return false
	}
	s.current++
	return true
}

func (s *Scanner) peek() byte {
	if s.isAtEnd() {
		return 0
	}
	return s.source[s.current]
}

func (s *Scanner) peekNext() byte {
	if s.current+1 >= len(s.source) {
		return 0
	}
	return s.source[s.current+1]
}

func (s *Scanner) advance() byte {
	c := s.source[s.current]
	s.current++
	return c
}

func (s *Scanner) isAtEnd() bool {
	return s.current >= len(s.source)
}

func (s *Scanner) addToken(typ token.Type) {
	s.addLiteral(typ, nil)
}

func (s *Scanner) addLiteral(typ token.Type, literal any) {
	s.tokens = append(s.tokens, token.New(typ, s.source[s.start:s.current], literal, s.line))
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

func isAlphaNumeric(c byte) bool {
	return isAlpha(c) || isDigit(c)
}
