// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package obl

import (
	"fmt"

	"github.com/Fantom-foundation/Certa/go/mcdc/cnd"
	"github.com/Fantom-foundation/Certa/go/mcdc/common"
	"github.com/Fantom-foundation/Certa/go/mcdc/dom"
	"github.com/Fantom-foundation/Certa/go/mcdc/slv"
)

const (
	ErrUnsatisfiableObligation = common.ConstErr("unsatisfiable obligation")
	ErrNotAPair                = common.ConstErr("not an independence pair")
)

// Side identifies a member of an independence pair.
type Side int

const (
	First  Side = 1
	Second Side = 2
)

// VariableName is the name of the copy of a decision variable describing
// the given side of a pair within an obligation's problem.
func VariableName(variable string, side Side) string {
	return fmt.Sprintf("%s#%d", variable, side)
}

// Obligation requires an independence pair for one condition of a decision.
// Its problem is satisfied by exactly those pairs of assignments that
// witness the independence of the condition under the obligation's policy.
type Obligation struct {
	Decision  *cnd.Decision
	Condition *cnd.AtomicCondition
	Policy    Policy
	Problem   *slv.Problem
	// Infeasible is set if planning already proved that no pair exists.
	Infeasible error
}

func (o *Obligation) ID() string {
	return fmt.Sprintf("%s/%s", o.Decision.ID, o.Condition.ID)
}

// Split separates a model of the obligation's problem into the variable
// values of both sides.
func (o *Obligation) Split(model slv.Model) (first, second map[string]dom.Value) {
	first = map[string]dom.Value{}
	second = map[string]dom.Value{}
	for _, v := range o.Decision.Variables() {
		if value, found := model[VariableName(v.Name, First)]; found {
			first[v.Name] = value
		}
		if value, found := model[VariableName(v.Name, Second)]; found {
			second[v.Name] = value
		}
	}
	return first, second
}

// Block excludes the pair described by the model from further solutions.
func (o *Obligation) Block(model slv.Model) {
	names := make([]string, 0, len(o.Problem.Domains))
	for _, cur := range o.Problem.Domains {
		names = append(names, cur.Name)
	}
	o.Problem.Block(model, names...)
}

// Admits checks whether two truth assignments of the decision's conditions
// form an independence pair for the obligation's condition under its policy.
func (o *Obligation) Admits(first, second map[cnd.ConditionID]bool) error {
	if o.Decision.Evaluate(first) == o.Decision.Evaluate(second) {
		return fmt.Errorf("%w: outcome of %s does not flip", ErrNotAPair, o.ID())
	}
	id := o.Condition.ID
	if first[id] == second[id] {
		return fmt.Errorf("%w: condition of %s does not flip", ErrNotAPair, o.ID())
	}
	var evaluated1, evaluated2 map[cnd.ConditionID]bool
	if o.Policy == Masking {
		evaluated1 = o.Decision.Evaluated(first)
		evaluated2 = o.Decision.Evaluated(second)
		if !evaluated1[id] || !evaluated2[id] {
			return fmt.Errorf("%w: condition of %s is short-circuited", ErrNotAPair, o.ID())
		}
	}
	for _, c := range o.Decision.Conditions {
		if c.ID == id || first[c.ID] == second[c.ID] {
			continue
		}
		if o.Policy == Masking && evaluated1[c.ID] != evaluated2[c.ID] {
			continue
		}
		return fmt.Errorf("%w: %s changes %s", ErrNotAPair, o.ID(), c.ID)
	}
	return nil
}

func (o *Obligation) String() string {
	return fmt.Sprintf("%s (%v)", o.ID(), o.Policy)
}

// Plan derives one obligation per condition of the decision, in the order
// of the decision's conditions. Planning is deterministic: planning the same
// decision twice yields equal obligations.
func Plan(decision *cnd.Decision, policy Policy) []*Obligation {
	samples := Samples(decision)
	res := make([]*Obligation, 0, len(decision.Conditions))
	for _, c := range decision.Conditions {
		res = append(res, planCondition(decision, c, policy, samples))
	}
	return res
}

// Samples computes the candidate values of every variable of a decision.
// The constants compared against a variable serve as pivots, such that each
// candidate set covers all outcomes of the conditions on the variable.
func Samples(decision *cnd.Decision) map[string][]dom.Value {
	res := map[string][]dom.Value{}
	for _, v := range decision.Variables() {
		pivots := []dom.Value{}
		for _, c := range decision.ConditionsOn(v.Name) {
			pivots = append(pivots, c.Constant)
		}
		res[v.Name] = v.Samples(pivots)
	}
	return res
}

func planCondition(decision *cnd.Decision, c *cnd.AtomicCondition, policy Policy, samples map[string][]dom.Value) *Obligation {
	res := &Obligation{
		Decision:  decision,
		Condition: c,
		Policy:    policy,
		Problem:   slv.NewProblem(),
	}
	if err := checkToggleable(c, samples[c.Variable.Name]); err != nil {
		res.Infeasible = err
	}

	p := res.Problem
	for _, side := range []Side{First, Second} {
		for _, v := range decision.Variables() {
			p.Declare(VariableName(v.Name, side), samples[v.Name])
		}
	}

	first := newSideEncoder(decision, First)
	second := newSideEncoder(decision, Second)

	// The condition and the decision outcome flip between both sides.
	p.Require(
		slv.Xor(first.condition(c), second.condition(c)),
		slv.Xor(first.decision(), second.decision()),
	)

	for _, d := range decision.Conditions {
		if d.ID == c.ID {
			continue
		}
		same := slv.Iff(first.condition(d), second.condition(d))
		switch policy {
		case UniqueCause:
			p.Require(same)
		case Masking:
			// Conditions evaluated on one side only are masked.
			p.Require(slv.Implies(slv.Iff(first.evaluated[d.ID], second.evaluated[d.ID]), same))
		}
	}
	if policy == Masking {
		p.Require(first.evaluated[c.ID], second.evaluated[c.ID])
	}
	return res
}

// checkToggleable verifies that the condition can be both true and false
// within its variable's domain.
func checkToggleable(c *cnd.AtomicCondition, samples []dom.Value) error {
	canHold, canFail := false, false
	for _, value := range samples {
		if c.Holds(value) {
			canHold = true
		} else {
			canFail = true
		}
	}
	switch {
	case !canHold:
		return fmt.Errorf("%w: %s never holds for %v", ErrUnsatisfiableObligation, c, c.Variable)
	case !canFail:
		return fmt.Errorf("%w: %s always holds for %v", ErrUnsatisfiableObligation, c, c.Variable)
	}
	return nil
}

// sideEncoder translates a decision into formulas over the variables of one
// side of a pair.
type sideEncoder struct {
	root cnd.Node
	side Side
	// evaluated holds for each condition a formula stating that the
	// condition is examined under short-circuit evaluation.
	evaluated map[cnd.ConditionID]slv.Formula
}

func newSideEncoder(decision *cnd.Decision, side Side) *sideEncoder {
	res := &sideEncoder{
		root:      decision.Root,
		side:      side,
		evaluated: map[cnd.ConditionID]slv.Formula{},
	}
	for _, c := range decision.Conditions {
		res.evaluated[c.ID] = slv.False
	}
	res.collectEvaluated(decision.Root, slv.True)
	return res
}

func (e *sideEncoder) condition(c *cnd.AtomicCondition) slv.Formula {
	return slv.Predicate(VariableName(c.Variable.Name, e.side), c.Relation, c.Constant)
}

func (e *sideEncoder) decision() slv.Formula {
	return e.node(e.root)
}

func (e *sideEncoder) node(n cnd.Node) slv.Formula {
	switch n := n.(type) {
	case *cnd.And:
		operands := make([]slv.Formula, 0, len(n.Operands))
		for _, cur := range n.Operands {
			operands = append(operands, e.node(cur))
		}
		return slv.All(operands...)
	case *cnd.Or:
		operands := make([]slv.Formula, 0, len(n.Operands))
		for _, cur := range n.Operands {
			operands = append(operands, e.node(cur))
		}
		return slv.Any(operands...)
	case *cnd.Not:
		return slv.Not(e.node(n.Operand))
	case *cnd.Leaf:
		return e.condition(n.Condition)
	}
	panic(fmt.Sprintf("unsupported node type %T", n))
}

// collectEvaluated records for every leaf below the given node under which
// circumstances it is reached, given that the node itself is reached if
// `reached` holds. Operands of conjunctions and disjunctions are evaluated
// left to right and only as long as the outcome is undecided.
func (e *sideEncoder) collectEvaluated(n cnd.Node, reached slv.Formula) {
	switch n := n.(type) {
	case *cnd.And:
		for _, cur := range n.Operands {
			e.collectEvaluated(cur, reached)
			reached = slv.All(reached, e.node(cur))
		}
	case *cnd.Or:
		for _, cur := range n.Operands {
			e.collectEvaluated(cur, reached)
			reached = slv.All(reached, slv.Not(e.node(cur)))
		}
	case *cnd.Not:
		e.collectEvaluated(n.Operand, reached)
	case *cnd.Leaf:
		id := n.Condition.ID
		e.evaluated[id] = slv.Any(e.evaluated[id], reached)
	}
}
