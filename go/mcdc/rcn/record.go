// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package rcn

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/Fantom-foundation/Certa/go/mcdc/common"
)

// Key identifies a test case. Rows sharing a key describe the same test case
// and are merged. Case distinguishes several test cases of the same module;
// generated rows use their vector id, external rows an optional label.
type Key struct {
	Requirement string
	Module      string
	Case        string
}

func (k Key) String() string {
	if k.Case == "" {
		return fmt.Sprintf("%s/%s", k.Requirement, k.Module)
	}
	return fmt.Sprintf("%s/%s/%s", k.Requirement, k.Module, k.Case)
}

// Expectation is the optional expected outcome of a test case.
type Expectation int

const (
	Unspecified Expectation = iota
	ExpectTrue
	ExpectFalse
)

func Expect(outcome bool) Expectation {
	if outcome {
		return ExpectTrue
	}
	return ExpectFalse
}

func (e Expectation) String() string {
	switch e {
	case ExpectTrue:
		return "True"
	case ExpectFalse:
		return "False"
	}
	return ""
}

// Record is a test case row. Inputs map field names to their textual
// values, which may reference symbolic constants until substituted.
type Record struct {
	Key
	Precondition string
	Condition    string
	Inputs       map[string]string
	Expected     Expectation
	// Result describes the behavior expected for the outcome, e.g. the
	// body of the branch taken.
	Result string
	// Provenance lists the obligations a generated row discharges and the
	// origins of external rows, sorted and free of duplicates.
	Provenance []string
}

func (r *Record) Clone() *Record {
	res := *r
	res.Inputs = maps.Clone(r.Inputs)
	if res.Inputs == nil {
		res.Inputs = map[string]string{}
	}
	res.Provenance = slices.Clone(r.Provenance)
	return &res
}

// Fields lists the input field names in sorted order.
func (r *Record) Fields() []string {
	return common.SortedKeys(r.Inputs)
}

// FormatInputs renders inputs as `a=1, b=2`.
func (r *Record) FormatInputs() string {
	parts := make([]string, 0, len(r.Inputs))
	for _, name := range r.Fields() {
		parts = append(parts, name+"="+r.Inputs[name])
	}
	return strings.Join(parts, ", ")
}

func (r *Record) String() string {
	return fmt.Sprintf("%v{%s}→%v", r.Key, r.FormatInputs(), r.Expected)
}

func unionSorted(a, b []string) []string {
	res := append(slices.Clone(a), b...)
	slices.Sort(res)
	return slices.Compact(res)
}
