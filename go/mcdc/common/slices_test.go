// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package common

import (
	"errors"
	"fmt"
	"slices"
	"testing"
)

func TestConstErr_CanBeMatchedWhenWrapped(t *testing.T) {
	const errSomething = ConstErr("something")
	err := fmt.Errorf("%w: detail", errSomething)
	if !errors.Is(err, errSomething) {
		t.Errorf("wrapped error should match its constant")
	}
	if want, got := "something: detail", err.Error(); want != got {
		t.Errorf("unexpected message, wanted %s, got %s", want, got)
	}
}

func TestSlices_RemoveDuplicates(t *testing.T) {
	tests := map[string]struct {
		input []int
		want  []int
	}{
		"empty":     {input: nil, want: []int{}},
		"unique":    {input: []int{3, 1, 2}, want: []int{3, 1, 2}},
		"repeated":  {input: []int{1, 2, 1, 3, 2}, want: []int{1, 2, 3}},
		"all equal": {input: []int{7, 7, 7}, want: []int{7}},
	}
	for name, test := range tests {
		if got := RemoveDuplicates(test.input); !slices.Equal(test.want, got) {
			t.Errorf("removing duplicates for %v failed, wanted %v, but got %v", name, test.want, got)
		}
	}
}

func TestSlices_SortedKeys(t *testing.T) {
	m := map[string]int{"c": 1, "a": 2, "b": 3}
	if want, got := []string{"a", "b", "c"}, SortedKeys(m); !slices.Equal(want, got) {
		t.Errorf("unexpected keys, wanted %v, got %v", want, got)
	}
}
