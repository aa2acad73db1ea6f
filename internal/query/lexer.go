package query

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// TokenType represents the type of a lexical token.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenIdent
	TokenString
	TokenColon // ':' or '='
	TokenLParen
	TokenRParen
	TokenAnd
	TokenOr
	TokenNot
	TokenNeq // !=
	TokenGt
	TokenGte
	TokenLt
	TokenLte
)

// Token represents a lexical token.
type Token struct {
	Type  TokenType
	Value string
}

// Lexer tokenizes a query.
type Lexer struct {
	input string
	pos   int
	// afterOp is set right after an operator, where a value may contain ':'.
	afterOp bool
}

// NewLexer creates a new Lexer for the given input.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// NextToken returns the next token from the input.
func (l *Lexer) NextToken() Token {
	tok := l.next()
	switch tok.Type {
	case TokenColon, TokenNeq, TokenGt, TokenGte, TokenLt, TokenLte:
		l.afterOp = true
	default:
		l.afterOp = false
	}
	return tok
}

func (l *Lexer) next() Token {
	for {
		l.skipWhitespace()
		if l.pos >= len(l.input) {
			return Token{Type: TokenEOF}
		}

		ch := l.input[l.pos]
		switch ch {
		case ':', '=':
			l.pos++
			return Token{Type: TokenColon, Value: string(ch)}
		case '(':
			l.pos++
			return Token{Type: TokenLParen, Value: "("}
		case ')':
			l.pos++
			return Token{Type: TokenRParen, Value: ")"}
		case '!':
			if l.peek() == '=' {
				l.pos += 2
				return Token{Type: TokenNeq, Value: OpNeq}
			}
		case '>':
			return l.comparison(TokenGt, TokenGte)
		case '<':
			return l.comparison(TokenLt, TokenLte)
		case '"':
			return l.readString()
		}

		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		if isIdentRune(r) {
			return l.readIdent()
		}
		// Unknown character, skip
		l.pos += size
	}
}

func (l *Lexer) peek() byte {
	if l.pos+1 < len(l.input) {
		return l.input[l.pos+1]
	}
	return 0
}

func (l *Lexer) comparison(strict, inclusive TokenType) Token {
	op := l.input[l.pos : l.pos+1]
	if l.peek() == '=' {
		l.pos += 2
		return Token{Type: inclusive, Value: op + "="}
	}
	l.pos++
	return Token{Type: strict, Value: op}
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) {
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		if !unicode.IsSpace(r) {
			return
		}
		l.pos += size
	}
}

// readString reads a double-quoted string, unescaping \" and \\.
func (l *Lexer) readString() Token {
	l.pos++ // skip opening quote
	var b strings.Builder
	for l.pos < len(l.input) && l.input[l.pos] != '"' {
		if l.input[l.pos] == '\\' && l.pos+1 < len(l.input) {
			l.pos++
		}
		b.WriteByte(l.input[l.pos])
		l.pos++
	}
	if l.pos < len(l.input) {
		l.pos++ // skip closing quote
	}
	return Token{Type: TokenString, Value: b.String()}
}

func (l *Lexer) readIdent() Token {
	start := l.pos
	for l.pos < len(l.input) {
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		if !isIdentRune(r) && !(l.afterOp && r == ':') {
			break
		}
		l.pos += size
	}
	value := l.input[start:l.pos]
	if l.afterOp {
		return Token{Type: TokenIdent, Value: value}
	}

	switch upper := strings.ToUpper(value); upper {
	case "AND", "OR", "NOT":
		return Token{Type: keywords[upper], Value: upper}
	}
	return Token{Type: TokenIdent, Value: value}
}

var keywords = map[string]TokenType{
	"AND": TokenAnd,
	"OR":  TokenOr,
	"NOT": TokenNot,
}

// Identifiers may start with a digit so bare values like 500 or 2026-10-19
// work without quotes. Values right after an operator may also contain ':',
// as in location:main.handler:42.
func isIdentRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' || r == '.' || r == '*' || r == '/'
}
