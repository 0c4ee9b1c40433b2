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

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/Fantom-foundation/Certa/go/mcdc/common"
)

const (
	ErrEmptyDomain   = common.ConstErr("empty variable domain")
	ErrUnknownKind   = common.ConstErr("unknown domain kind")
	ErrNotInDomain   = common.ConstErr("value outside of variable domain")
	ErrUnnamedDomain = common.ConstErr("variable without name")
)

// Kind classifies the domain of a Variable.
type Kind int

const (
	Boolean Kind = iota
	Enumerated
	Ordered
)

func ParseKind(text string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "bool", "boolean":
		return Boolean, nil
	case "enum", "enumerated", "enumeration":
		return Enumerated, nil
	case "int", "integer", "real", "float", "double", "number", "range", "ordered", "":
		return Ordered, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, text)
}

func (k Kind) String() string {
	switch k {
	case Boolean:
		return "boolean"
	case Enumerated:
		return "enumerated"
	case Ordered:
		return "ordered"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Variable is a named input of a module together with its domain. Variables
// are immutable once loaded into a catalog.
type Variable struct {
	Name     string
	Kind     Kind
	Integral bool    // < ordered domains only; restricts values to integers
	Min, Max Value   // < ordered domains only; inclusive bounds
	Values   []Value // < enumerated domains only
}

func NewBoolean(name string) Variable {
	return Variable{Name: name, Kind: Boolean, Integral: true, Min: 0, Max: 1}
}

func NewEnumerated(name string, values ...Value) Variable {
	values = common.RemoveDuplicates(values)
	slices.Sort(values)
	return Variable{Name: name, Kind: Enumerated, Values: values}
}

func NewInteger(name string, min, max int64) Variable {
	return Variable{Name: name, Kind: Ordered, Integral: true, Min: Value(min), Max: Value(max)}
}

func NewReal(name string, min, max float64) Variable {
	return Variable{Name: name, Kind: Ordered, Min: Value(min), Max: Value(max)}
}

// Validate checks that the variable's domain is non-empty.
func (v Variable) Validate() error {
	if v.Name == "" {
		return ErrUnnamedDomain
	}
	switch v.Kind {
	case Boolean:
		return nil
	case Enumerated:
		if len(v.Values) == 0 {
			return fmt.Errorf("%w: %s has no enumeration values", ErrEmptyDomain, v.Name)
		}
		return nil
	case Ordered:
		r := NewRange(float64(v.Min), float64(v.Max))
		if v.Integral {
			r.AddLowerBoundary(math.Ceil(float64(v.Min)))
			r.AddUpperBoundary(math.Floor(float64(v.Max)))
		}
		if !r.IsSatisfiable() {
			return fmt.Errorf("%w: %s has bounds [%v,%v]", ErrEmptyDomain, v.Name, v.Min, v.Max)
		}
		return nil
	}
	return fmt.Errorf("%w: %v", ErrUnknownKind, v.Kind)
}

// Contains reports whether the given value is a member of the domain.
func (v Variable) Contains(x Value) bool {
	switch v.Kind {
	case Boolean:
		return x == 0 || x == 1
	case Enumerated:
		return slices.Contains(v.Values, x)
	case Ordered:
		if v.Integral && !x.IsIntegral() {
			return false
		}
		return NewRange(v.Min, v.Max).Contains(x)
	}
	return false
}

// Format renders a value the way it is written in test rows.
func (v Variable) Format(x Value) string {
	if v.Kind == Boolean {
		if x != 0 {
			return "true"
		}
		return "false"
	}
	return x.String()
}

// Samples computes a finite set of domain members such that every region of
// the domain delimited by the given pivots is represented. Comparing the
// variable against any of the pivots thus yields every achievable outcome on
// at least one of the samples. The result is sorted in ascending order.
func (v Variable) Samples(pivots []Value) []Value {
	var res []Value
	switch v.Kind {
	case Boolean:
		res = []Value{0, 1}
	case Enumerated:
		res = slices.Clone(v.Values)
	case Ordered:
		if v.Integral {
			res = v.integerSamples(pivots)
		} else {
			res = v.realSamples(pivots)
		}
	}
	res = common.RemoveDuplicates(res)
	slices.Sort(res)
	return res
}

func (v Variable) integerSamples(pivots []Value) []Value {
	min := math.Ceil(float64(v.Min))
	max := math.Floor(float64(v.Max))
	bounds := NewRange(min, max)
	res := []Value{Value(min), Value(max)} // extreme values

	// Test every pivot off by one.
	for _, p := range pivots {
		lo := math.Floor(float64(p))
		hi := math.Ceil(float64(p))
		for _, c := range []float64{lo - 1, lo, hi, hi + 1} {
			if bounds.Contains(c) {
				res = append(res, Value(c))
			}
		}
	}
	return res
}

// RealStep is the distance of the samples closest to a pivot of a real
// variable.
const RealStep Value = 0.01

func (v Variable) realSamples(pivots []Value) []Value {
	bounds := NewRange(v.Min, v.Max)
	points := []Value{v.Min, v.Max}
	for _, p := range pivots {
		if bounds.Contains(p) {
			points = append(points, p)
		}
	}
	points = common.RemoveDuplicates(points)
	slices.Sort(points)

	// Every open interval between two neighbouring points is represented
	// by its midpoint, and every pivot by its close neighbours.
	res := slices.Clone(points)
	for i := 1; i < len(points); i++ {
		res = append(res, (points[i-1]+points[i])/2)
	}
	for _, p := range pivots {
		for _, c := range []Value{p - RealStep, p + RealStep} {
			if bounds.Contains(c) {
				res = append(res, c)
			}
		}
	}
	return res
}

func (v Variable) String() string {
	switch v.Kind {
	case Boolean:
		return fmt.Sprintf("%s: bool", v.Name)
	case Enumerated:
		parts := make([]string, 0, len(v.Values))
		for _, cur := range v.Values {
			parts = append(parts, cur.String())
		}
		return fmt.Sprintf("%s ∈ {%s}", v.Name, strings.Join(parts, ","))
	case Ordered:
		kind := "real"
		if v.Integral {
			kind = "int"
		}
		return fmt.Sprintf("%s ∈ [%v,%v] (%s)", v.Name, v.Min, v.Max, kind)
	}
	return v.Name
}
