// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package vec

import (
	"fmt"
	"strings"

	"github.com/Fantom-foundation/Certa/go/mcdc/cnd"
	"github.com/Fantom-foundation/Certa/go/mcdc/common"
	"github.com/Fantom-foundation/Certa/go/mcdc/dom"
)

// Vector is a concrete test input of a decision together with the outcome
// it produces.
type Vector struct {
	ID       string
	Decision *cnd.Decision
	Values   map[string]dom.Value
	Truth    map[cnd.ConditionID]bool
	Outcome  bool
	// Discharges lists the obligations this vector is a pair member of.
	Discharges []string
}

func newVector(decision *cnd.Decision, values map[string]dom.Value) (*Vector, error) {
	truth, err := decision.Truth(values)
	if err != nil {
		return nil, err
	}
	return &Vector{
		Decision: decision,
		Values:   values,
		Truth:    truth,
		Outcome:  decision.Evaluate(truth),
	}, nil
}

// Key identifies the vector by its assignment. Vectors with equal keys are
// interchangeable.
func (v *Vector) Key() string {
	parts := make([]string, 0, len(v.Values))
	for _, name := range common.SortedKeys(v.Values) {
		parts = append(parts, fmt.Sprintf("%s=%v", name, v.Values[name]))
	}
	return strings.Join(parts, ",")
}

// Inputs renders the vector's values the way they are written in test rows,
// following the order of the decision's variables.
func (v *Vector) Inputs() []Input {
	res := []Input{}
	for _, variable := range v.Decision.Variables() {
		if value, found := v.Values[variable.Name]; found {
			res = append(res, Input{Name: variable.Name, Value: variable.Format(value)})
		}
	}
	return res
}

func (v *Vector) String() string {
	return fmt.Sprintf("%s{%s}→%t", v.ID, v.Key(), v.Outcome)
}

// Input is a single rendered input field.
type Input struct {
	Name  string
	Value string
}
