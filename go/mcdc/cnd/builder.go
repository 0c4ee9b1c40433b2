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

	"github.com/Fantom-foundation/Certa/go/mcdc/common"
	"github.com/Fantom-foundation/Certa/go/mcdc/dom"
)

const ErrUnresolvedVariable = common.ConstErr("unresolved variable")

// Table interns atomic conditions such that decisions of the same module
// refer to a single instance per predicate.
type Table struct {
	conditions map[ConditionID]*AtomicCondition
}

func NewTable() *Table {
	return &Table{conditions: map[ConditionID]*AtomicCondition{}}
}

func (t *Table) intern(c *AtomicCondition) *AtomicCondition {
	if existing, found := t.conditions[c.ID]; found {
		return existing
	}
	t.conditions[c.ID] = c
	return c
}

func (t *Table) Lookup(id ConditionID) (*AtomicCondition, bool) {
	c, found := t.conditions[id]
	return c, found
}

func (t *Table) Len() int {
	return len(t.conditions)
}

// Builder resolves parsed expressions against a catalog, producing decisions
// whose leaves carry their variable's domain. A builder is meant to be used
// for the decisions of a single module.
type Builder struct {
	catalog *dom.Catalog
	table   *Table
}

func NewBuilder(catalog *dom.Catalog) *Builder {
	return &Builder{catalog: catalog, table: NewTable()}
}

func (b *Builder) Table() *Table {
	return b.table
}

// BuildText parses and resolves the given decision text.
func (b *Builder) BuildText(id, text string) (*Decision, error) {
	expr, err := Parse(text)
	if err != nil {
		return nil, fmt.Errorf("decision %s: %w", id, err)
	}
	return b.Build(id, expr)
}

// Build resolves a parsed expression. It fails with ErrUnresolvedVariable if
// a name is neither a variable nor a constant of the catalog and with
// ErrMalformedExpression if the expression is not a boolean combination of
// single-variable predicates.
func (b *Builder) Build(id string, expr Expr) (*Decision, error) {
	root, err := b.resolve(expr)
	if err != nil {
		return nil, fmt.Errorf("decision %s: %w", id, err)
	}
	res := &Decision{ID: id, Text: expr.String(), Root: root}
	seen := map[ConditionID]bool{}
	collectConditions(root, func(c *AtomicCondition) {
		if !seen[c.ID] {
			seen[c.ID] = true
			res.Conditions = append(res.Conditions, c)
		}
	})
	return res, nil
}

func collectConditions(node Node, consume func(*AtomicCondition)) {
	switch n := node.(type) {
	case *And:
		for _, cur := range n.Operands {
			collectConditions(cur, consume)
		}
	case *Or:
		for _, cur := range n.Operands {
			collectConditions(cur, consume)
		}
	case *Not:
		collectConditions(n.Operand, consume)
	case *Leaf:
		consume(n.Condition)
	}
}

func (b *Builder) resolve(expr Expr) (Node, error) {
	switch e := expr.(type) {
	case *AndExpr:
		operands, err := b.resolveAll(e.Operands)
		if err != nil {
			return nil, err
		}
		return NewAnd(operands...), nil
	case *OrExpr:
		operands, err := b.resolveAll(e.Operands)
		if err != nil {
			return nil, err
		}
		return NewOr(operands...), nil
	case *NotExpr:
		operand, err := b.resolve(e.Operand)
		if err != nil {
			return nil, err
		}
		return NewNot(operand), nil
	case *RefExpr:
		return b.resolveRef(e.Operand)
	case *CompareExpr:
		return b.resolveCompare(e)
	case nil:
		return nil, fmt.Errorf("%w: empty expression", ErrMalformedExpression)
	}
	return nil, fmt.Errorf("%w: unsupported combinator %T", ErrMalformedExpression, expr)
}

func (b *Builder) resolveAll(exprs []Expr) ([]Node, error) {
	if len(exprs) < 2 {
		return nil, fmt.Errorf("%w: combinator with %d operands", ErrMalformedExpression, len(exprs))
	}
	res := make([]Node, 0, len(exprs))
	for _, cur := range exprs {
		node, err := b.resolve(cur)
		if err != nil {
			return nil, err
		}
		res = append(res, node)
	}
	return res, nil
}

func (b *Builder) resolveRef(operand Operand) (Node, error) {
	if !operand.IsName() {
		return nil, fmt.Errorf("%w: constant %s used as condition", ErrMalformedExpression, operand)
	}
	variable, value, err := b.resolveOperand(operand)
	if err != nil {
		return nil, err
	}
	if variable == nil {
		return nil, fmt.Errorf("%w: constant %s=%v used as condition", ErrMalformedExpression, operand, value)
	}
	if variable.Kind != dom.Boolean {
		return nil, fmt.Errorf("%w: %s is not a boolean", ErrMalformedExpression, variable.Name)
	}
	return b.makeCondition(*variable, dom.Eq, 1)
}

func (b *Builder) resolveCompare(e *CompareExpr) (Node, error) {
	relation, ok := dom.ParseRelation(e.Op)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported relation %q", ErrMalformedExpression, e.Op)
	}
	lhsVar, lhsValue, err := b.resolveOperand(e.Left)
	if err != nil {
		return nil, err
	}
	rhsVar, rhsValue, err := b.resolveOperand(e.Right)
	if err != nil {
		return nil, err
	}
	switch {
	case lhsVar != nil && rhsVar == nil:
		return b.makeCondition(*lhsVar, relation, rhsValue)
	case lhsVar == nil && rhsVar != nil:
		return b.makeCondition(*rhsVar, relation.Mirror(), lhsValue)
	case lhsVar != nil && rhsVar != nil:
		return nil, fmt.Errorf("%w: %v compares two variables", ErrMalformedExpression, e)
	}
	return nil, fmt.Errorf("%w: %v compares two constants", ErrMalformedExpression, e)
}

// resolveOperand maps an operand to either a variable or a constant value.
func (b *Builder) resolveOperand(operand Operand) (*dom.Variable, dom.Value, error) {
	if !operand.IsName() {
		value, ok := dom.ParseValue(operand.Literal)
		if !ok {
			return nil, 0, fmt.Errorf("%w: invalid literal %q", ErrMalformedExpression, operand.Literal)
		}
		return nil, value, nil
	}
	if v, found := b.catalog.Variable(operand.Name); found {
		return &v, 0, nil
	}
	if target, ok := lastTarget(operand.Name); ok {
		if v, found := b.catalog.Variable(target); found {
			v.Name = operand.Name
			return &v, 0, nil
		}
		return nil, 0, fmt.Errorf("%w: %s", ErrUnresolvedVariable, target)
	}
	if value, found := b.catalog.Constant(operand.Name); found {
		return nil, value, nil
	}
	return nil, 0, fmt.Errorf("%w: %s", ErrUnresolvedVariable, operand.Name)
}

func (b *Builder) makeCondition(v dom.Variable, r dom.Relation, c dom.Value) (Node, error) {
	if v.Kind != dom.Boolean {
		return &Leaf{Condition: b.table.intern(newAtomicCondition(v, r, c))}, nil
	}

	// Predicates on booleans are normalized to the flag or its negation.
	flag := &Leaf{Condition: b.table.intern(newAtomicCondition(v, dom.Eq, 1))}
	onFalse, onTrue := r.Holds(0, c), r.Holds(1, c)
	switch {
	case onTrue && !onFalse:
		return flag, nil
	case onFalse && !onTrue:
		return NewNot(flag), nil
	}
	return nil, fmt.Errorf("%w: %s %v %v does not depend on %s", ErrMalformedExpression, v.Name, r, c, v.Name)
}
