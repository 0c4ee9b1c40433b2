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

const ErrMissingValue = common.ConstErr("missing value for variable")

// Decision is a boolean expression over atomic conditions belonging to a
// module. Its conditions are listed in order of their first occurrence when
// reading the expression from left to right.
type Decision struct {
	ID         string
	Text       string // < the decision as written in the requirement
	Root       Node
	Conditions []*AtomicCondition
}

// Evaluate computes the decision outcome from truth values of its
// conditions. Conditions missing in the map are considered false.
func (d *Decision) Evaluate(truth map[ConditionID]bool) bool {
	return d.Root.Eval(func(id ConditionID) bool { return truth[id] })
}

// Truth evaluates every condition of the decision on concrete variable
// values.
func (d *Decision) Truth(values map[string]dom.Value) (map[ConditionID]bool, error) {
	res := make(map[ConditionID]bool, len(d.Conditions))
	for _, cur := range d.Conditions {
		value, found := values[cur.Variable.Name]
		if !found {
			return nil, fmt.Errorf("%w: %s", ErrMissingValue, cur.Variable.Name)
		}
		res[cur.ID] = cur.Holds(value)
	}
	return res, nil
}

// EvaluateValues computes the decision outcome for concrete variable values.
func (d *Decision) EvaluateValues(values map[string]dom.Value) (bool, error) {
	truth, err := d.Truth(values)
	if err != nil {
		return false, err
	}
	return d.Evaluate(truth), nil
}

// Condition looks up a condition of this decision by its ID.
func (d *Decision) Condition(id ConditionID) (*AtomicCondition, bool) {
	for _, cur := range d.Conditions {
		if cur.ID == id {
			return cur, true
		}
	}
	return nil, false
}

// Variables lists the variables referenced by the decision in order of
// their first occurrence.
func (d *Decision) Variables() []dom.Variable {
	seen := map[string]bool{}
	res := []dom.Variable{}
	for _, cur := range d.Conditions {
		if !seen[cur.Variable.Name] {
			seen[cur.Variable.Name] = true
			res = append(res, cur.Variable)
		}
	}
	return res
}

// ConditionsOn lists the conditions of this decision constraining the named
// variable.
func (d *Decision) ConditionsOn(variable string) []*AtomicCondition {
	res := []*AtomicCondition{}
	for _, cur := range d.Conditions {
		if cur.Variable.Name == variable {
			res = append(res, cur)
		}
	}
	return res
}

func (d *Decision) String() string {
	return fmt.Sprintf("%s: %v", d.ID, d.Root)
}

// Evaluated computes the set of conditions examined when evaluating the
// decision left to right with short-circuiting.
func (d *Decision) Evaluated(truth map[ConditionID]bool) map[ConditionID]bool {
	res := map[ConditionID]bool{}
	var visit func(Node) bool
	visit = func(n Node) bool {
		switch n := n.(type) {
		case *And:
			for _, cur := range n.Operands {
				if !visit(cur) {
					return false
				}
			}
			return true
		case *Or:
			for _, cur := range n.Operands {
				if visit(cur) {
					return true
				}
			}
			return false
		case *Not:
			return !visit(n.Operand)
		case *Leaf:
			res[n.Condition.ID] = true
			return truth[n.Condition.ID]
		}
		panic(fmt.Sprintf("unsupported node type %T", n))
	}
	visit(d.Root)
	return res
}
