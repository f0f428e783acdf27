// Copyright (c) 2014, Kevin Walsh.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package parser turns a ByteLog token stream into an ast.Program using
// straightforward recursive descent.
package parser

import (
	"fmt"

	"github.com/bigattichouse/bytelogic/ast"
	"github.com/bigattichouse/bytelogic/lexer"
)

// SyntaxError is a single parse failure, reported as "at line L, column C:
// <message>" per the language specification. Parsing fails fast: the first
// SyntaxError aborts the parse.
type SyntaxError struct {
	Line    int
	Column  int
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("at line %d, column %d: %s", e.Line, e.Column, e.Message)
}

// Parser is a recursive-descent parser over a single token stream.
type Parser struct {
	lex *lexer.Lexer
	tok lexer.Token
}

// New returns a Parser over src.
func New(src string) *Parser {
	p := &Parser{lex: lexer.New(src)}
	p.advance()
	return p
}

// Parse parses src into a Program.
func Parse(src string) (*ast.Program, error) {
	return New(src).Parse()
}

func (p *Parser) advance() {
	p.tok = p.lex.Next()
}

func (p *Parser) errorf(format string, args ...interface{}) error {
	return &SyntaxError{Line: p.tok.Line, Column: p.tok.Column, Message: fmt.Sprintf(format, args...)}
}

// Parse consumes the whole token stream and returns the resulting Program.
func (p *Parser) Parse() (*ast.Program, error) {
	var stmts []ast.Statement
	for p.tok.Kind != lexer.EOF {
		if p.tok.Kind == lexer.ERROR {
			return nil, p.errorf("%s", p.tok.Lexeme)
		}
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return &ast.Program{Statements: stmts}, nil
}

func (p *Parser) statement() (ast.Statement, error) {
	switch p.tok.Kind {
	case lexer.REL:
		return p.relDecl()
	case lexer.FACT:
		return p.fact()
	case lexer.RULE:
		return p.rule()
	case lexer.SOLVE:
		return p.solve()
	case lexer.QUERY:
		return p.query()
	default:
		return nil, p.errorf("expected REL, FACT, RULE, SOLVE, or QUERY, found %s", p.tok)
	}
}

func (p *Parser) expect(kind lexer.Kind, what string) (lexer.Token, error) {
	if p.tok.Kind != kind {
		return lexer.Token{}, p.errorf("expected %s, found %s", what, p.tok)
	}
	tok := p.tok
	p.advance()
	return tok, nil
}

func (p *Parser) relDecl() (ast.Statement, error) {
	pos := ast.Pos{Line: p.tok.Line, Column: p.tok.Column}
	p.advance() // REL
	name, err := p.expect(lexer.IDENTIFIER, "a relation name")
	if err != nil {
		return nil, err
	}
	return &ast.RelDecl{PosVal: pos, Name: name.Lexeme}, nil
}

func (p *Parser) solve() (ast.Statement, error) {
	pos := ast.Pos{Line: p.tok.Line, Column: p.tok.Column}
	p.advance() // SOLVE
	return &ast.Solve{PosVal: pos}, nil
}

func (p *Parser) fact() (ast.Statement, error) {
	pos := ast.Pos{Line: p.tok.Line, Column: p.tok.Column}
	p.advance() // FACT
	rel, err := p.expect(lexer.IDENTIFIER, "a relation name")
	if err != nil {
		return nil, err
	}
	aNum, aAtom, err := p.arg()
	if err != nil {
		return nil, err
	}
	bNum, bAtom, err := p.arg()
	if err != nil {
		return nil, err
	}
	return &ast.Fact{PosVal: pos, Relation: rel.Lexeme, ANum: aNum, BNum: bNum, AtomA: aAtom, AtomB: bAtom}, nil
}

// arg parses "IDENT | INTEGER". For an identifier the numeric slot is left
// sentinel-set (0) since it is filled at execute time by interning.
func (p *Parser) arg() (int64, *string, error) {
	switch p.tok.Kind {
	case lexer.IDENTIFIER:
		text := p.tok.Lexeme
		p.advance()
		return 0, &text, nil
	case lexer.INTEGER:
		n := p.tok.Int
		p.advance()
		return n, nil, nil
	default:
		return 0, nil, p.errorf("expected an identifier or integer, found %s", p.tok)
	}
}

// qarg parses "IDENT | INTEGER | '?'".
func (p *Parser) qarg() (int64, *string, error) {
	if p.tok.Kind == lexer.WILDCARD {
		p.advance()
		return ast.WildcardSlot, nil, nil
	}
	return p.arg()
}

func (p *Parser) query() (ast.Statement, error) {
	pos := ast.Pos{Line: p.tok.Line, Column: p.tok.Column}
	p.advance() // QUERY
	rel, err := p.expect(lexer.IDENTIFIER, "a relation name")
	if err != nil {
		return nil, err
	}
	aNum, aAtom, err := p.qarg()
	if err != nil {
		return nil, err
	}
	bNum, bAtom, err := p.qarg()
	if err != nil {
		return nil, err
	}
	return &ast.Query{PosVal: pos, Relation: rel.Lexeme, ANum: aNum, BNum: bNum, AtomA: aAtom, AtomB: bAtom}, nil
}

func (p *Parser) rule() (ast.Statement, error) {
	pos := ast.Pos{Line: p.tok.Line, Column: p.tok.Column}
	p.advance() // RULE
	target, err := p.expect(lexer.IDENTIFIER, "a rule target relation")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.COLON, "':'"); err != nil {
		return nil, err
	}

	var body []ast.BodyOp
	op, err := p.bodyOp()
	if err != nil {
		return nil, err
	}
	body = append(body, op)

	var emit *ast.Emit
	for {
		if _, err := p.expect(lexer.COMMA, "','"); err != nil {
			return nil, err
		}
		if p.tok.Kind == lexer.EMIT {
			e, err := p.emit()
			if err != nil {
				return nil, err
			}
			emit = e
			break
		}
		op, err := p.bodyOp()
		if err != nil {
			return nil, err
		}
		body = append(body, op)
	}

	return &ast.Rule{PosVal: pos, Target: target.Lexeme, Body: body, Emit: *emit}, nil
}

func (p *Parser) bodyOp() (ast.BodyOp, error) {
	switch p.tok.Kind {
	case lexer.SCAN:
		return p.scan()
	case lexer.JOIN:
		return p.join()
	default:
		return nil, p.errorf("expected SCAN or JOIN, found %s", p.tok)
	}
}

func (p *Parser) scan() (ast.BodyOp, error) {
	pos := ast.Pos{Line: p.tok.Line, Column: p.tok.Column}
	p.advance() // SCAN
	rel, err := p.expect(lexer.IDENTIFIER, "a relation name")
	if err != nil {
		return nil, err
	}
	scan := &ast.Scan{PosVal: pos, Relation: rel.Lexeme}
	if p.tok.Kind == lexer.MATCH {
		p.advance()
		v, err := p.expect(lexer.VARIABLE, "a variable after MATCH")
		if err != nil {
			return nil, err
		}
		m := int(v.Int)
		scan.MatchVar = &m
	}
	return scan, nil
}

func (p *Parser) join() (ast.BodyOp, error) {
	pos := ast.Pos{Line: p.tok.Line, Column: p.tok.Column}
	p.advance() // JOIN
	rel, err := p.expect(lexer.IDENTIFIER, "a relation name")
	if err != nil {
		return nil, err
	}
	v, err := p.expect(lexer.VARIABLE, "a variable")
	if err != nil {
		return nil, err
	}
	return &ast.Join{PosVal: pos, Relation: rel.Lexeme, MatchVar: int(v.Int)}, nil
}

func (p *Parser) emit() (*ast.Emit, error) {
	pos := ast.Pos{Line: p.tok.Line, Column: p.tok.Column}
	p.advance() // EMIT
	rel, err := p.expect(lexer.IDENTIFIER, "a relation name")
	if err != nil {
		return nil, err
	}
	a, err := p.expect(lexer.VARIABLE, "a variable")
	if err != nil {
		return nil, err
	}
	b, err := p.expect(lexer.VARIABLE, "a variable")
	if err != nil {
		return nil, err
	}
	return &ast.Emit{PosVal: pos, Relation: rel.Lexeme, VarA: int(a.Int), VarB: int(b.Int)}, nil
}
