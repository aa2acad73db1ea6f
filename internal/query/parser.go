package query

import (
	"fmt"
)

// Parser parses queries into an AST.
type Parser struct {
	lexer   *Lexer
	current Token
}

// Parse parses the input string and returns the AST root node. An empty
// query yields a nil node, which matches everything.
func Parse(input string) (Node, error) {
	if input == "" {
		return nil, nil
	}
	p := &Parser{lexer: NewLexer(input)}
	p.advance()
	node, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.current.Type != TokenEOF {
		return nil, fmt.Errorf("unexpected %q after expression", p.current.Value)
	}
	return node, nil
}

func (p *Parser) advance() {
	p.current = p.lexer.NextToken()
}

// parseOr handles OR expressions (lowest precedence).
func (p *Parser) parseOr() (Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	for p.current.Type == TokenOr {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = BinaryExpr{Op: "OR", Left: left, Right: right}
	}

	return left, nil
}

// parseAnd handles AND expressions. Adjacent terms without an operator are
// joined with AND.
func (p *Parser) parseAnd() (Node, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}

	for {
		switch p.current.Type {
		case TokenAnd:
			p.advance()
		case TokenIdent, TokenString, TokenLParen, TokenNot:
		default:
			return left, nil
		}
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = BinaryExpr{Op: "AND", Left: left, Right: right}
	}
}

// parseNot handles NOT expressions.
func (p *Parser) parseNot() (Node, error) {
	if p.current.Type == TokenNot {
		p.advance()
		expr, err := p.parseNot() // NOT is right-associative
		if err != nil {
			return nil, err
		}
		return NotExpr{Expr: expr}, nil
	}
	return p.parsePrimary()
}

var comparisonOps = map[TokenType]string{
	TokenColon: OpEq,
	TokenNeq:   OpNeq,
	TokenGt:    OpGt,
	TokenGte:   OpGte,
	TokenLt:    OpLt,
	TokenLte:   OpLte,
}

// parsePrimary handles (expr), key:value, key>=value and "free text".
func (p *Parser) parsePrimary() (Node, error) {
	switch p.current.Type {
	case TokenLParen:
		p.advance()
		expr, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.current.Type != TokenRParen {
			return nil, fmt.Errorf("expected ')' but got %q", p.current.Value)
		}
		p.advance()
		return expr, nil

	case TokenString:
		value := p.current.Value
		p.advance()
		return MatchExpr{Value: value, Op: OpContains}, nil

	case TokenIdent:
		key := p.current.Value
		p.advance()

		if op, ok := comparisonOps[p.current.Type]; ok {
			p.advance()
			return p.parseValue(key, op)
		}

		// Bare identifier: treat as full-text search
		return MatchExpr{Value: key, Op: OpContains}, nil

	case TokenEOF:
		return nil, fmt.Errorf("unexpected end of query")

	default:
		return nil, fmt.Errorf("unexpected token %q", p.current.Value)
	}
}

// parseValue parses the value after key and operator.
func (p *Parser) parseValue(key, op string) (Node, error) {
	switch p.current.Type {
	case TokenString, TokenIdent:
		value := p.current.Value
		p.advance()
		return MatchExpr{Key: key, Value: value, Op: op}, nil
	default:
		return nil, fmt.Errorf("expected value after '%s%s'", key, op)
	}
}
