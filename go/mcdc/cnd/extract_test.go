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
	"errors"
	"slices"
	"testing"
)

func TestExtractBranches_FindsConditionsAndResults(t *testing.T) {
	tests := map[string]struct {
		formula string
		want    []Branch
	}{
		"none": {
			formula: "out = x + 1;",
			want:    []Branch{},
		},
		"braced with else": {
			formula: "if (x > 10 && a) { out = 1; } else { out = 0; }",
			want:    []Branch{{"x > 10 && a", "out = 1;", "out = 0;"}},
		},
		"single statements": {
			formula: "if(y == 5) out = 2;\nif (a) out = 3",
			want:    []Branch{{"y == 5", "out = 2", ""}, {"a", "out = 3", ""}},
		},
		"else if chain": {
			formula: "if (a) {r=1} else if (b) {r=2} else {r=3}",
			want:    []Branch{{"a", "r=1", ""}, {"b", "r=2", "r=3"}},
		},
		"nested": {
			formula: "if (a) { if (b) {r=1} }",
			want:    []Branch{{"a", "if (b) {r=1}", ""}, {"b", "r=1", ""}},
		},
		"nested parentheses": {
			formula: "if ((a || b) && (x > 1)) {r=1}",
			want:    []Branch{{"(a || b) && (x > 1)", "r=1", ""}},
		},
		"full width": {
			formula: "if（a）{r=1}",
			want:    []Branch{{"a", "r=1", ""}},
		},
		"keyword inside identifier": {
			formula: "diff(x) + elif(y)",
			want:    []Branch{},
		},
	}
	for name, test := range tests {
		got, err := ExtractBranches(test.formula)
		if err != nil {
			t.Errorf("%s: failed to extract: %v", name, err)
			continue
		}
		if !slices.Equal(test.want, got) {
			t.Errorf("%s: unexpected branches, wanted %q, got %q", name, test.want, got)
		}
	}
}

func TestExtractBranches_RejectsUnbalancedConditions(t *testing.T) {
	if _, err := ExtractBranches("if (a { r = 1 }"); !errors.Is(err, ErrMalformedExpression) {
		t.Errorf("expected malformed expression, got %v", err)
	}
}
