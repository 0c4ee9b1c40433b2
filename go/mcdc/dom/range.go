// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package dom

import "golang.org/x/exp/constraints"

// Number is the set of types a Range can be defined over.
type Number interface {
	constraints.Integer | constraints.Float
}

// Range is the closed interval of values an ordered variable may take. Its
// bounds can only be tightened.
type Range[T Number] struct {
	min, max T // < inclusive
}

func NewRange[T Number](min, max T) *Range[T] {
	return &Range[T]{min: min, max: max}
}

// AddLowerBoundary raises the lower bound; weaker bounds are ignored.
func (r *Range[T]) AddLowerBoundary(bound T) {
	r.min = max(r.min, bound)
}

// AddUpperBoundary lowers the upper bound; weaker bounds are ignored.
func (r *Range[T]) AddUpperBoundary(bound T) {
	r.max = min(r.max, bound)
}

func (r *Range[T]) IsSatisfiable() bool {
	return r.min <= r.max
}

func (r *Range[T]) Contains(value T) bool {
	return r.min <= value && value <= r.max
}
