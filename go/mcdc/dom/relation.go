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

import "fmt"

// Relation is a comparison between a variable and a constant.
type Relation int

const (
	Eq Relation = iota
	Ne
	Lt
	Le
	Gt
	Ge
)

// ParseRelation maps an operator token onto a Relation. A single '=' is
// accepted as equality since requirement documents use it that way.
func ParseRelation(op string) (Relation, bool) {
	switch op {
	case "==", "=":
		return Eq, true
	case "!=", "<>":
		return Ne, true
	case "<":
		return Lt, true
	case "<=":
		return Le, true
	case ">":
		return Gt, true
	case ">=":
		return Ge, true
	}
	return 0, false
}

// Holds evaluates `lhs rel rhs`.
func (r Relation) Holds(lhs, rhs Value) bool {
	switch r {
	case Eq:
		return lhs == rhs
	case Ne:
		return lhs != rhs
	case Lt:
		return lhs < rhs
	case Le:
		return lhs <= rhs
	case Gt:
		return lhs > rhs
	case Ge:
		return lhs >= rhs
	}
	panic(fmt.Sprintf("unknown relation %d", int(r)))
}

// Negate returns the relation holding exactly when r does not.
func (r Relation) Negate() Relation {
	switch r {
	case Eq:
		return Ne
	case Ne:
		return Eq
	case Lt:
		return Ge
	case Le:
		return Gt
	case Gt:
		return Le
	case Ge:
		return Lt
	}
	panic(fmt.Sprintf("unknown relation %d", int(r)))
}

// Mirror returns the relation obtained by swapping both operands, such that
// `c r x` is equivalent to `x r.Mirror() c`.
func (r Relation) Mirror() Relation {
	switch r {
	case Lt:
		return Gt
	case Le:
		return Ge
	case Gt:
		return Lt
	case Ge:
		return Le
	}
	return r
}

// IsOrdering reports whether the relation requires an ordered domain.
func (r Relation) IsOrdering() bool {
	return r == Lt || r == Le || r == Gt || r == Ge
}

func (r Relation) String() string {
	switch r {
	case Eq:
		return "=="
	case Ne:
		return "!="
	case Lt:
		return "<"
	case Le:
		return "<="
	case Gt:
		return ">"
	case Ge:
		return ">="
	}
	return fmt.Sprintf("Relation(%d)", int(r))
}
