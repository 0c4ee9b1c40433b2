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

	"github.com/Fantom-foundation/Certa/go/mcdc/dom"
)

// ConditionID identifies an AtomicCondition. Conditions with the same
// predicate share the same ID within a module.
type ConditionID string

// AtomicCondition is a predicate over exactly one variable. For boolean
// variables the predicate is the variable itself, i.e. `a == 1`.
type AtomicCondition struct {
	ID       ConditionID
	Variable dom.Variable
	Relation dom.Relation
	Constant dom.Value
}

func newAtomicCondition(v dom.Variable, r dom.Relation, c dom.Value) *AtomicCondition {
	res := &AtomicCondition{Variable: v, Relation: r, Constant: c}
	res.ID = ConditionID(res.String())
	return res
}

// Holds evaluates the predicate on a concrete value of its variable.
func (c *AtomicCondition) Holds(value dom.Value) bool {
	return c.Relation.Holds(value, c.Constant)
}

// IsBoolean reports whether the condition is a plain boolean flag.
func (c *AtomicCondition) IsBoolean() bool {
	return c.Variable.Kind == dom.Boolean
}

func (c *AtomicCondition) String() string {
	if c.IsBoolean() {
		return c.Variable.Name
	}
	return fmt.Sprintf("%s %v %v", c.Variable.Name, c.Relation, c.Constant)
}

// Node is an element of a resolved decision tree.
type Node interface {
	// Eval computes the truth value of the node given the truth values of
	// all atomic conditions.
	Eval(truth func(ConditionID) bool) bool
	fmt.Stringer
}

// And is a conjunction evaluated left to right with short-circuiting.
type And struct{ Operands []Node }

// Or is a disjunction evaluated left to right with short-circuiting.
type Or struct{ Operands []Node }

type Not struct{ Operand Node }

// Leaf references an atomic condition.
type Leaf struct{ Condition *AtomicCondition }

// NewAnd creates a conjunction, merging nested conjunctions into one.
func NewAnd(operands ...Node) Node {
	if len(operands) == 1 {
		return operands[0]
	}
	res := []Node{}
	for _, cur := range operands {
		if c, ok := cur.(*And); ok {
			res = append(res, c.Operands...)
		} else {
			res = append(res, cur)
		}
	}
	return &And{Operands: res}
}

// NewOr creates a disjunction, merging nested disjunctions into one.
func NewOr(operands ...Node) Node {
	if len(operands) == 1 {
		return operands[0]
	}
	res := []Node{}
	for _, cur := range operands {
		if c, ok := cur.(*Or); ok {
			res = append(res, c.Operands...)
		} else {
			res = append(res, cur)
		}
	}
	return &Or{Operands: res}
}

// NewNot negates the given node, cancelling double negations.
func NewNot(operand Node) Node {
	if n, ok := operand.(*Not); ok {
		return n.Operand
	}
	return &Not{Operand: operand}
}

func (n *And) Eval(truth func(ConditionID) bool) bool {
	for _, cur := range n.Operands {
		if !cur.Eval(truth) {
			return false
		}
	}
	return true
}

func (n *Or) Eval(truth func(ConditionID) bool) bool {
	for _, cur := range n.Operands {
		if cur.Eval(truth) {
			return true
		}
	}
	return false
}

func (n *Not) Eval(truth func(ConditionID) bool) bool {
	return !n.Operand.Eval(truth)
}

func (n *Leaf) Eval(truth func(ConditionID) bool) bool {
	return truth(n.Condition.ID)
}

func (n *And) String() string {
	return joinNodes(n.Operands, " ∧ ")
}

func (n *Or) String() string {
	return joinNodes(n.Operands, " ∨ ")
}

func (n *Not) String() string {
	if _, ok := n.Operand.(*Leaf); ok && n.Operand.(*Leaf).Condition.IsBoolean() {
		return "¬" + n.Operand.String()
	}
	return "¬(" + n.Operand.String() + ")"
}

func (n *Leaf) String() string {
	return n.Condition.String()
}

func joinNodes(operands []Node, sep string) string {
	parts := make([]string, 0, len(operands))
	for _, cur := range operands {
		switch cur.(type) {
		case *And, *Or:
			parts = append(parts, "("+cur.String()+")")
		default:
			parts = append(parts, cur.String())
		}
	}
	return strings.Join(parts, sep)
}
