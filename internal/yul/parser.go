package yul

import (
	"fmt"

	"github.com/r3e-network/solx-go/internal/errs"
)

// Parser is a recursive-descent parser over a Lexer's token stream,
// ported from the teacher's YulParser and generalized to the real Yul
// grammar: object/code/data sections, the full statement set
// (variable declarations, assignments, if/switch/for, break/continue/
// leave, nested blocks), and function calls/identifiers/literals as
// the only expression forms Yul has.
type Parser struct {
	path    string
	tokens  []Token
	pos     int
}

// NewParser lexes source in full and returns a Parser positioned at
// the first token, or a lexing error.
func NewParser(path, source string) (*Parser, error) {
	tokens, err := NewLexer(path, source).ScanTokens()
	if err != nil {
		return nil, err
	}
	return &Parser{path: path, tokens: tokens}, nil
}

// ParseObject parses the single top-level Yul object expected in a
// standard-JSON Yul source unit.
func (p *Parser) ParseObject() (*Object, error) {
	obj, err := p.parseObject()
	if err != nil {
		return nil, err
	}
	if !p.check(TokenEOF) {
		return nil, p.errorf("unexpected trailing token %s after top-level object", p.current().Type)
	}
	return obj, nil
}

func (p *Parser) parseObject() (*Object, error) {
	start := p.current().Position
	if _, err := p.consume(TokenObject, "expected 'object'"); err != nil {
		return nil, err
	}
	nameTok, err := p.consume(TokenString, "expected object name string")
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(TokenLeftBrace, "expected '{'"); err != nil {
		return nil, err
	}

	obj := &Object{Name: nameTok.Lexeme, Position: start}

	for !p.check(TokenRightBrace) && !p.isAtEnd() {
		switch p.current().Type {
		case TokenCode:
			p.advance()
			if _, err := p.consume(TokenLeftBrace, "expected '{'"); err != nil {
				return nil, err
			}
			block, err := p.parseBlock()
			if err != nil {
				return nil, err
			}
			obj.Code = block
		case TokenData:
			p.advance()
			data, err := p.parseData()
			if err != nil {
				return nil, err
			}
			obj.Data = data
		case TokenObject:
			nested, err := p.parseObject()
			if err != nil {
				return nil, err
			}
			obj.Objects = append(obj.Objects, nested)
		default:
			return nil, p.errorf("unexpected token %s in object body", p.current().Type)
		}
	}
	if _, err := p.consume(TokenRightBrace, "expected '}'"); err != nil {
		return nil, err
	}
	return obj, nil
}

func (p *Parser) parseData() (*DataSection, error) {
	start := p.current().Position
	name, err := p.consume(TokenString, "expected data object name")
	if err != nil {
		return nil, err
	}
	switch p.current().Type {
	case TokenString:
		val := p.advance()
		return &DataSection{Name: name.Lexeme, Value: val.Lexeme, Position: start}, nil
	case TokenHex:
		val := p.advance()
		return &DataSection{Name: name.Lexeme, Value: val.Lexeme, IsHex: true, Position: start}, nil
	case TokenIdentifier:
		if p.current().Lexeme == "hex" && p.tokens[p.pos+1].Type == TokenString {
			p.advance()
			val := p.advance()
			return &DataSection{Name: name.Lexeme, Value: val.Lexeme, IsHex: true, Position: start}, nil
		}
	}
	return nil, p.errorf("expected data literal, got %s", p.current().Type)
}

func (p *Parser) parseBlock() (*Block, error) {
	start := p.current().Position
	block := &Block{Position: start}
	for !p.check(TokenRightBrace) && !p.isAtEnd() {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		block.Statements = append(block.Statements, stmt)
	}
	if _, err := p.consume(TokenRightBrace, "expected '}'"); err != nil {
		return nil, err
	}
	return block, nil
}

func (p *Parser) parseStatement() (Statement, error) {
	switch p.current().Type {
	case TokenLet:
		return p.parseVariableDeclaration()
	case TokenIf:
		return p.parseIf()
	case TokenSwitch:
		return p.parseSwitch()
	case TokenFor:
		return p.parseFor()
	case TokenFunction:
		return p.parseFunctionDefinition()
	case TokenBreak:
		pos := p.advance().Position
		return &Break{Position: pos}, nil
	case TokenContinue:
		pos := p.advance().Position
		return &Continue{Position: pos}, nil
	case TokenLeave:
		pos := p.advance().Position
		return &Leave{Position: pos}, nil
	case TokenLeftBrace:
		start := p.current().Position
		p.advance()
		block, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return &BlockStatement{Block: block, Position: start}, nil
	default:
		return p.parseExpressionOrAssignment()
	}
}

func (p *Parser) parseVariableDeclaration() (*VariableDeclaration, error) {
	start := p.current().Position
	p.advance() // 'let'

	var vars []TypedName
	for {
		name, err := p.consume(TokenIdentifier, "expected variable name")
		if err != nil {
			return nil, err
		}
		vars = append(vars, TypedName{Name: name.Lexeme, Position: name.Position})
		if !p.match(TokenComma) {
			break
		}
	}

	var value Expression
	if p.match(TokenColonEqual) {
		v, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		value = v
	}
	return &VariableDeclaration{Variables: vars, Value: value, Position: start}, nil
}

func (p *Parser) parseIf() (*If, error) {
	start := p.current().Position
	p.advance()
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(TokenLeftBrace, "expected '{'"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &If{Condition: cond, Body: body, Position: start}, nil
}

func (p *Parser) parseSwitch() (*Switch, error) {
	start := p.current().Position
	p.advance()
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	sw := &Switch{Expr: expr, Position: start}
	sawDefault := false
	for p.check(TokenCase) || p.check(TokenDefault) {
		if p.check(TokenCase) {
			casePos := p.current().Position
			p.advance()
			lit, err := p.parseLiteral()
			if err != nil {
				return nil, err
			}
			if _, err := p.consume(TokenLeftBrace, "expected '{'"); err != nil {
				return nil, err
			}
			body, err := p.parseBlock()
			if err != nil {
				return nil, err
			}
			sw.Cases = append(sw.Cases, &Case{Value: lit, Body: body, Position: casePos})
			continue
		}
		defaultPos := p.current().Position
		p.advance()
		if sawDefault {
			return nil, p.errorf("duplicate 'default' case in switch")
		}
		sawDefault = true
		if _, err := p.consume(TokenLeftBrace, "expected '{'"); err != nil {
			return nil, err
		}
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		sw.Cases = append(sw.Cases, &Case{Value: nil, Body: body, Position: defaultPos})
	}
	if len(sw.Cases) == 0 {
		return nil, p.errorf("switch requires at least one case or default branch")
	}
	return sw, nil
}

func (p *Parser) parseFor() (*ForLoop, error) {
	start := p.current().Position
	p.advance()

	if _, err := p.consume(TokenLeftBrace, "expected '{'"); err != nil {
		return nil, err
	}
	init, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(TokenLeftBrace, "expected '{'"); err != nil {
		return nil, err
	}
	post, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(TokenLeftBrace, "expected '{'"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ForLoop{Init: init, Condition: cond, Post: post, Body: body, Position: start}, nil
}

func (p *Parser) parseFunctionDefinition() (*FunctionDefinition, error) {
	start := p.current().Position
	p.advance()
	name, err := p.consume(TokenIdentifier, "expected function name")
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(TokenLeftParen, "expected '('"); err != nil {
		return nil, err
	}
	params, err := p.parseTypedNameList(TokenRightParen)
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(TokenRightParen, "expected ')'"); err != nil {
		return nil, err
	}

	var returns []TypedName
	if p.match(TokenArrow) {
		returns, err = p.parseTypedNameList(TokenLeftBrace)
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(TokenLeftBrace, "expected '{'"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &FunctionDefinition{Name: name.Lexeme, Parameters: params, Returns: returns, Body: body, Position: start}, nil
}

func (p *Parser) parseTypedNameList(terminator TokenType) ([]TypedName, error) {
	var names []TypedName
	if p.check(terminator) {
		return names, nil
	}
	for {
		tok, err := p.consume(TokenIdentifier, "expected identifier")
		if err != nil {
			return nil, err
		}
		names = append(names, TypedName{Name: tok.Lexeme, Position: tok.Position})
		if !p.match(TokenComma) {
			break
		}
	}
	return names, nil
}

func (p *Parser) parseExpressionOrAssignment() (Statement, error) {
	start := p.current().Position
	if p.check(TokenIdentifier) {
		checkpoint := p.pos
		names := []string{p.advance().Lexeme}
		for p.match(TokenComma) {
			tok, err := p.consume(TokenIdentifier, "expected identifier")
			if err != nil {
				return nil, err
			}
			names = append(names, tok.Lexeme)
		}
		if p.match(TokenColonEqual) {
			value, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			return &Assignment{Targets: names, Value: value, Position: start}, nil
		}
		p.pos = checkpoint
	}

	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &ExpressionStatement{Expr: expr, Position: start}, nil
}

func (p *Parser) parseExpression() (Expression, error) {
	if p.check(TokenIdentifier) {
		start := p.current().Position
		name := p.advance().Lexeme
		if p.match(TokenLeftParen) {
			var args []Expression
			if !p.check(TokenRightParen) {
				for {
					arg, err := p.parseExpression()
					if err != nil {
						return nil, err
					}
					args = append(args, arg)
					if !p.match(TokenComma) {
						break
					}
				}
			}
			if _, err := p.consume(TokenRightParen, "expected ')'"); err != nil {
				return nil, err
			}
			return &FunctionCall{Name: name, Arguments: args, Position: start}, nil
		}
		return &Identifier{Name: name, Position: start}, nil
	}
	return p.parseLiteral()
}

func (p *Parser) parseLiteral() (*Literal, error) {
	start := p.current().Position
	switch p.current().Type {
	case TokenNumber:
		return &Literal{Kind: LiteralNumber, Value: p.advance().Lexeme, Position: start}, nil
	case TokenHex:
		return &Literal{Kind: LiteralHex, Value: p.advance().Lexeme, Position: start}, nil
	case TokenString:
		return &Literal{Kind: LiteralString, Value: p.advance().Lexeme, Position: start}, nil
	case TokenTrue:
		p.advance()
		return &Literal{Kind: LiteralBool, Value: "true", Position: start}, nil
	case TokenFalse:
		p.advance()
		return &Literal{Kind: LiteralBool, Value: "false", Position: start}, nil
	default:
		return nil, p.errorf("expected expression, got %s", p.current().Type)
	}
}

func (p *Parser) current() Token {
	return p.tokens[p.pos]
}

func (p *Parser) isAtEnd() bool {
	return p.current().Type == TokenEOF
}

func (p *Parser) advance() Token {
	tok := p.current()
	if !p.isAtEnd() {
		p.pos++
	}
	return tok
}

func (p *Parser) check(tt TokenType) bool {
	return p.current().Type == tt
}

func (p *Parser) match(tt TokenType) bool {
	if p.check(tt) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) consume(tt TokenType, message string) (Token, error) {
	if p.check(tt) {
		return p.advance(), nil
	}
	return Token{}, p.errorf("%s (got %s)", message, p.current().Type)
}

func (p *Parser) errorf(format string, args ...interface{}) error {
	msg := fmt.Sprintf("line %d: %s", p.current().Position.Line, fmt.Sprintf(format, args...))
	return errs.New(errs.KindIRAnalysis, p.path, msg)
}
