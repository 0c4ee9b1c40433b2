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
	"testing"
)

func TestRange_ContainsBoundaries(t *testing.T) {
	tests := []struct {
		min, max int
	}{
		{math.MinInt, 12},
		{5, math.MaxInt},
		{5, 12},
		{6, 6},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("[%d,%d]", test.min, test.max), func(t *testing.T) {
			r := NewRange(test.min, test.max)
			if !r.Contains(test.min) || !r.Contains(test.max) {
				t.Errorf("range %v should contain its boundaries", r)
			}
			if test.min > math.MinInt && r.Contains(test.min-1) {
				t.Errorf("range %v should not contain %d", r, test.min-1)
			}
			if test.max < math.MaxInt && r.Contains(test.max+1) {
				t.Errorf("range %v should not contain %d", r, test.max+1)
			}
		})
	}
}

func TestRange_BoundariesCanOnlyBeTightened(t *testing.T) {
	r := NewRange[int32](1, 200)
	r.AddLowerBoundary(5)
	r.AddUpperBoundary(64)
	// weaker boundaries are ignored
	r.AddLowerBoundary(3)
	r.AddUpperBoundary(100)
	for value, want := range map[int32]bool{4: false, 5: true, 64: true, 65: false} {
		if got := r.Contains(value); want != got {
			t.Errorf("unexpected membership of %d, wanted %t, got %t", value, want, got)
		}
	}

	r.AddLowerBoundary(64)
	if !r.IsSatisfiable() {
		t.Errorf("range with a single value should be satisfiable")
	}
	r.AddLowerBoundary(65)
	if r.IsSatisfiable() {
		t.Errorf("range should be unsatisfiable")
	}
}

func TestRange_NaNBoundsAreUnsatisfiable(t *testing.T) {
	r := NewRange(0.0, math.NaN())
	if r.IsSatisfiable() || r.Contains(0) {
		t.Errorf("range with NaN bound should be empty")
	}
}

func TestValue_ParseValue(t *testing.T) {
	tests := []struct {
		text string
		want Value
		ok   bool
	}{
		{"12", 12, true},
		{"-3.5", -3.5, true},
		{"true", 1, true},
		{"FALSE", 0, true},
		{"301/10", 30.1, true},
		{"1/3", 0.33, true},
		{"1/0", 0, false},
		{"abc", 0, false},
		{"Inf", 0, false},
		{"", 0, false},
	}
	for _, test := range tests {
		got, ok := ParseValue(test.text)
		if ok != test.ok || (ok && got != test.want) {
			t.Errorf("ParseValue(%q) = %v,%t, wanted %v,%t", test.text, got, ok, test.want, test.ok)
		}
	}
}

func TestValue_String(t *testing.T) {
	tests := map[Value]string{
		0:    "0",
		11:   "11",
		-4:   "-4",
		2.5:  "2.5",
		0.01: "0.01",
	}
	for value, want := range tests {
		if got := value.String(); want != got {
			t.Errorf("unexpected print, wanted %s, got %s", want, got)
		}
	}
}

func TestRelation_NegateAndMirror(t *testing.T) {
	relations := []Relation{Eq, Ne, Lt, Le, Gt, Ge}
	values := []Value{-1, 0, 1, 2}
	for _, r := range relations {
		for _, a := range values {
			for _, b := range values {
				if r.Holds(a, b) == r.Negate().Holds(a, b) {
					t.Errorf("%v %v %v and its negation agree", a, r, b)
				}
				if r.Holds(a, b) != r.Mirror().Holds(b, a) {
					t.Errorf("%v %v %v and its mirror disagree", a, r, b)
				}
			}
		}
	}
}

func TestRelation_ParseRelation(t *testing.T) {
	for _, r := range []Relation{Eq, Ne, Lt, Le, Gt, Ge} {
		parsed, ok := ParseRelation(r.String())
		if !ok || parsed != r {
			t.Errorf("failed to parse %v, got %v", r, parsed)
		}
	}
	if r, ok := ParseRelation("="); !ok || r != Eq {
		t.Errorf("single '=' should be parsed as equality")
	}
	if _, ok := ParseRelation("=>"); ok {
		t.Errorf("'=>' should not be a relation")
	}
}
