// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package slv

import (
	"fmt"
	"strings"

	"github.com/Fantom-foundation/Certa/go/mcdc/dom"
)

// Formula is a propositional formula over single-variable predicates. It is
// the solver independent representation of constraints handed to an Oracle.
type Formula interface {
	fmt.Stringer
	// Eval computes the truth value of the formula under the given model.
	// Variables missing in the model render every predicate on them false.
	Eval(Model) bool
}

// Pred constrains a single finite-domain variable, e.g. `x#1 > 10`.
type Pred struct {
	Variable string
	Relation dom.Relation
	Constant dom.Value
}

// Conj is satisfied if all of its operands are.
type Conj struct{ Operands []Formula }

// Disj is satisfied if any of its operands is.
type Disj struct{ Operands []Formula }

type Neg struct{ Operand Formula }

// Equiv is satisfied if both operands have the same truth value.
type Equiv struct{ Lhs, Rhs Formula }

// Const is a constant truth value.
type Const bool

const (
	True  = Const(true)
	False = Const(false)
)

func Predicate(variable string, relation dom.Relation, constant dom.Value) Formula {
	return &Pred{Variable: variable, Relation: relation, Constant: constant}
}

// All builds the conjunction of the given formulas, dropping constant true
// operands and collapsing to False if any operand is constant false.
func All(operands ...Formula) Formula {
	res := []Formula{}
	for _, cur := range operands {
		switch f := cur.(type) {
		case Const:
			if !f {
				return False
			}
		case *Conj:
			res = append(res, f.Operands...)
		default:
			res = append(res, cur)
		}
	}
	switch len(res) {
	case 0:
		return True
	case 1:
		return res[0]
	}
	return &Conj{Operands: res}
}

// Any builds the disjunction of the given formulas, dropping constant false
// operands and collapsing to True if any operand is constant true.
func Any(operands ...Formula) Formula {
	res := []Formula{}
	for _, cur := range operands {
		switch f := cur.(type) {
		case Const:
			if f {
				return True
			}
		case *Disj:
			res = append(res, f.Operands...)
		default:
			res = append(res, cur)
		}
	}
	switch len(res) {
	case 0:
		return False
	case 1:
		return res[0]
	}
	return &Disj{Operands: res}
}

func Not(operand Formula) Formula {
	switch f := operand.(type) {
	case Const:
		return !f
	case *Neg:
		return f.Operand
	}
	return &Neg{Operand: operand}
}

func Iff(lhs, rhs Formula) Formula {
	return &Equiv{Lhs: lhs, Rhs: rhs}
}

func Xor(lhs, rhs Formula) Formula {
	return Not(Iff(lhs, rhs))
}

func Implies(premise, conclusion Formula) Formula {
	return Any(Not(premise), conclusion)
}

func (p *Pred) Eval(m Model) bool {
	value, found := m[p.Variable]
	return found && p.Relation.Holds(value, p.Constant)
}

func (f *Conj) Eval(m Model) bool {
	for _, cur := range f.Operands {
		if !cur.Eval(m) {
			return false
		}
	}
	return true
}

func (f *Disj) Eval(m Model) bool {
	for _, cur := range f.Operands {
		if cur.Eval(m) {
			return true
		}
	}
	return false
}

func (f *Neg) Eval(m Model) bool {
	return !f.Operand.Eval(m)
}

func (f *Equiv) Eval(m Model) bool {
	return f.Lhs.Eval(m) == f.Rhs.Eval(m)
}

func (c Const) Eval(Model) bool {
	return bool(c)
}

func (p *Pred) String() string {
	return fmt.Sprintf("%s %v %v", p.Variable, p.Relation, p.Constant)
}

func (f *Conj) String() string {
	return "(" + joinFormulas(f.Operands, " ∧ ") + ")"
}

func (f *Disj) String() string {
	return "(" + joinFormulas(f.Operands, " ∨ ") + ")"
}

func (f *Neg) String() string {
	return "¬" + f.Operand.String()
}

func (f *Equiv) String() string {
	return fmt.Sprintf("(%v ⇔ %v)", f.Lhs, f.Rhs)
}

func (c Const) String() string {
	if c {
		return "⊤"
	}
	return "⊥"
}

func joinFormulas(operands []Formula, sep string) string {
	parts := make([]string, 0, len(operands))
	for _, cur := range operands {
		parts = append(parts, cur.String())
	}
	return strings.Join(parts, sep)
}
