// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package cnd

import (
	"fmt"
	"strings"
)

// Expr is the syntax tree of a boolean decision as written in a requirement,
// before any name has been resolved against a catalog.
type Expr interface {
	fmt.Stringer
	private()
}

// AndExpr is a conjunction of at least two operands.
type AndExpr struct{ Operands []Expr }

// OrExpr is a disjunction of at least two operands.
type OrExpr struct{ Operands []Expr }

type NotExpr struct{ Operand Expr }

// CompareExpr compares two operands, e.g. `x > 10`.
type CompareExpr struct {
	Left, Right Operand
	Op          string
}

// RefExpr is an operand used as a truth value, e.g. the boolean flag `a`
// in `a && b`.
type RefExpr struct{ Operand Operand }

// Operand is either a name (variable or symbolic constant) or a literal.
type Operand struct {
	Name    string // < set for names, including last(X) references
	Literal string // < set for numeric and boolean literals
}

func (o Operand) IsName() bool { return o.Name != "" }

func (o Operand) String() string {
	if o.IsName() {
		return o.Name
	}
	return o.Literal
}

func (e *AndExpr) String() string     { return joinExprs(e.Operands, " && ") }
func (e *OrExpr) String() string      { return joinExprs(e.Operands, " || ") }
func (e *NotExpr) String() string     { return "!" + parenthesize(e.Operand) }
func (e *CompareExpr) String() string { return fmt.Sprintf("%v %s %v", e.Left, e.Op, e.Right) }
func (e *RefExpr) String() string     { return e.Operand.String() }

func (*AndExpr) private()     {}
func (*OrExpr) private()      {}
func (*NotExpr) private()     {}
func (*CompareExpr) private() {}
func (*RefExpr) private()     {}

func parenthesize(e Expr) string {
	switch e.(type) {
	case *AndExpr, *OrExpr, *CompareExpr:
		return "(" + e.String() + ")"
	}
	return e.String()
}

func joinExprs(operands []Expr, sep string) string {
	parts := make([]string, 0, len(operands))
	for _, cur := range operands {
		parts = append(parts, parenthesize(cur))
	}
	return strings.Join(parts, sep)
}

// Parse parses a decision written in C-like notation. Supported are the
// combinators &&, ||, ! (or and, or, not), parentheses, the relations
// ==, =, !=, <>, <, <=, >, >=, numeric and boolean literals and references of
// the form last(X).
func Parse(text string) (Expr, error) {
	tokens, err := tokenize(Normalize(text))
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	res, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if next := p.peek(); next.kind != tokEnd {
		return nil, fmt.Errorf("%w: unexpected %v", ErrMalformedExpression, next)
	}
	return res, nil
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	res := p.tokens[p.pos]
	if res.kind != tokEnd {
		p.pos++
	}
	return res
}

func (p *parser) parseOr() (Expr, error) {
	first, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	operands := []Expr{first}
	for p.peek().kind == tokOr {
		p.next()
		cur, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		operands = append(operands, cur)
	}
	if len(operands) == 1 {
		return first, nil
	}
	return &OrExpr{Operands: operands}, nil
}

func (p *parser) parseAnd() (Expr, error) {
	first, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	operands := []Expr{first}
	for p.peek().kind == tokAnd {
		p.next()
		cur, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		operands = append(operands, cur)
	}
	if len(operands) == 1 {
		return first, nil
	}
	return &AndExpr{Operands: operands}, nil
}

func (p *parser) parseUnary() (Expr, error) {
	if p.peek().kind == tokNot {
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &NotExpr{Operand: operand}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Expr, error) {
	if p.peek().kind == tokOpen {
		open := p.next()
		res, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if close := p.next(); close.kind != tokClose {
			return nil, fmt.Errorf("%w: unbalanced parenthesis %v, got %v", ErrMalformedExpression, open, close)
		}
		return res, nil
	}

	left, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokRelation {
		return &RefExpr{Operand: left}, nil
	}
	op := p.next()
	right, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	return &CompareExpr{Left: left, Right: right, Op: op.text}, nil
}

func (p *parser) parseOperand() (Operand, error) {
	cur := p.next()
	switch cur.kind {
	case tokNumber:
		return Operand{Literal: cur.text}, nil
	case tokIdent:
		switch strings.ToLower(cur.text) {
		case "true", "false":
			return Operand{Literal: strings.ToLower(cur.text)}, nil
		}
		if cur.text != "last" || p.peek().kind != tokOpen {
			return Operand{Name: cur.text}, nil
		}
		p.next()
		inner := p.next()
		if inner.kind != tokIdent {
			return Operand{}, fmt.Errorf("%w: last() expects a variable, got %v", ErrMalformedExpression, inner)
		}
		if close := p.next(); close.kind != tokClose {
			return Operand{}, fmt.Errorf("%w: unterminated last(), got %v", ErrMalformedExpression, close)
		}
		return Operand{Name: LastName(inner.text)}, nil
	}
	return Operand{}, fmt.Errorf("%w: expected operand, got %v", ErrMalformedExpression, cur)
}

// LastName is the name of the pseudo-variable holding the previous cycle's
// value of the given variable.
func LastName(variable string) string {
	return "last(" + variable + ")"
}

// lastTarget is the inverse of LastName.
func lastTarget(name string) (string, bool) {
	if strings.HasPrefix(name, "last(") && strings.HasSuffix(name, ")") {
		return name[len("last(") : len(name)-1], true
	}
	return "", false
}
