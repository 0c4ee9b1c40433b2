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
	"math"

	"github.com/Fantom-foundation/Certa/go/mcdc/cnd"
	"github.com/Fantom-foundation/Certa/go/mcdc/dom"
	"github.com/Fantom-foundation/Certa/go/mcdc/obl"
	"github.com/Fantom-foundation/Certa/go/mcdc/slv"
)

// Pair is a verified independence pair discharging an obligation.
type Pair struct {
	Obligation *obl.Obligation
	True       *Vector // < the member producing a true outcome
	False      *Vector // < the member producing a false outcome
}

func (p *Pair) String() string {
	return fmt.Sprintf("%s: %v / %v", p.Obligation.ID(), p.True, p.False)
}

// Resolve turns a model of an obligation's problem into a verified pair.
//
// Each side keeps the truth values the model induces on all conditions,
// while concrete values are re-chosen among the variable's candidates: the
// variable of the condition under test takes the values closest to that
// condition's constant, all other variables a canonical value for their
// truth profile. Pairs of different obligations thereby tend to share
// members. A model violating the obligation is reported as slv.ErrSolver.
func Resolve(o *obl.Obligation, model slv.Model) (*Pair, error) {
	first, second := o.Split(model)
	samples := obl.Samples(o.Decision)
	first, err := resolveSide(o, first, samples)
	if err != nil {
		return nil, err
	}
	second, err = resolveSide(o, second, samples)
	if err != nil {
		return nil, err
	}

	v1, err := newVector(o.Decision, first)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", slv.ErrSolver, err)
	}
	v2, err := newVector(o.Decision, second)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", slv.ErrSolver, err)
	}
	if err := verify(o, v1, v2); err != nil {
		return nil, err
	}
	if v1.Outcome {
		return &Pair{Obligation: o, True: v1, False: v2}, nil
	}
	return &Pair{Obligation: o, True: v2, False: v1}, nil
}

func resolveSide(o *obl.Obligation, values map[string]dom.Value, samples map[string][]dom.Value) (map[string]dom.Value, error) {
	res := make(map[string]dom.Value, len(values))
	for _, variable := range o.Decision.Variables() {
		value, found := values[variable.Name]
		if !found {
			return nil, fmt.Errorf("%w: model lacks %s", slv.ErrSolver, variable.Name)
		}
		conditions := o.Decision.ConditionsOn(variable.Name)
		targets := []dom.Value{}
		if variable.Name == o.Condition.Variable.Name {
			targets = append(targets, o.Condition.Constant)
		} else {
			for _, c := range conditions {
				targets = append(targets, c.Constant)
			}
		}
		res[variable.Name] = closestEquivalent(value, conditions, samples[variable.Name], targets)
	}
	return res, nil
}

// closestEquivalent selects among the candidates producing the same truth
// values as the given value on all conditions the one closest to any of the
// targets. Ties are resolved in favor of the smaller candidate.
func closestEquivalent(value dom.Value, conditions []*cnd.AtomicCondition, candidates []dom.Value, targets []dom.Value) dom.Value {
	res, best := value, math.Inf(1)
	for _, candidate := range candidates {
		if !sameProfile(value, candidate, conditions) {
			continue
		}
		for _, target := range targets {
			distance := math.Abs(float64(candidate - target))
			if distance < best || (distance == best && candidate < res) {
				res, best = candidate, distance
			}
		}
	}
	return res
}

func sameProfile(a, b dom.Value, conditions []*cnd.AtomicCondition) bool {
	for _, c := range conditions {
		if c.Holds(a) != c.Holds(b) {
			return false
		}
	}
	return true
}

// verify re-evaluates the decision on both members of a pair.
func verify(o *obl.Obligation, v1, v2 *Vector) error {
	if v1.Outcome == v2.Outcome {
		return fmt.Errorf("%w: outcome of %s does not flip between %s and %s", slv.ErrSolver, o.ID(), v1.Key(), v2.Key())
	}
	if err := o.Admits(v1.Truth, v2.Truth); err != nil {
		return fmt.Errorf("%w: %s vs %s: %w", slv.ErrSolver, v1.Key(), v2.Key(), err)
	}
	return nil
}
