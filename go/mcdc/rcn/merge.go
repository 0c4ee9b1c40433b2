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
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/Fantom-foundation/Certa/go/mcdc/common"
	"github.com/Fantom-foundation/Certa/go/mcdc/dom"
)

const (
	ErrConflictingAssignment      = common.ConstErr("conflicting assignment")
	ErrInconsistentExpectedOutput = common.ConstErr("inconsistent expected output")
	ErrUnresolvedConstant         = common.ConstErr("unresolved constant")
	ErrUnknownConflictPolicy      = common.ConstErr("unknown conflict policy")
)

// ConflictPolicy determines how an input field given different values by
// two rows of the same test case is handled.
type ConflictPolicy int

const (
	// Reject marks the test case as defective.
	Reject ConflictPolicy = iota
	// KeepFirst retains the value of the row added first.
	KeepFirst
	// KeepLast retains the value of the row added last.
	KeepLast
)

func ParseConflictPolicy(text string) (ConflictPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "reject", "error", "":
		return Reject, nil
	case "keep-first", "first":
		return KeepFirst, nil
	case "keep-last", "last", "override":
		return KeepLast, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownConflictPolicy, text)
}

func (p ConflictPolicy) String() string {
	switch p {
	case Reject:
		return "reject"
	case KeepFirst:
		return "keep-first"
	case KeepLast:
		return "keep-last"
	}
	return fmt.Sprintf("ConflictPolicy(%d)", int(p))
}

func (p *ConflictPolicy) UnmarshalText(text []byte) error {
	res, err := ParseConflictPolicy(string(text))
	if err != nil {
		return err
	}
	*p = res
	return nil
}

func (p ConflictPolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Merge combines two rows of the same test case. Inputs are united; a field
// present in both rows with different values is a conflict handled
// according to the policy. Expected outcomes are united if consistent.
// Under the Reject policy merging is commutative and idempotent.
func Merge(first, second *Record, policy ConflictPolicy) (*Record, error) {
	if first.Key != second.Key {
		return nil, fmt.Errorf("can not merge records of %v and %v", first.Key, second.Key)
	}
	res := first.Clone()

	var errs []error
	for name, value := range second.Inputs {
		existing, found := res.Inputs[name]
		if !found {
			res.Inputs[name] = value
			continue
		}
		if sameValue(existing, value) {
			res.Inputs[name] = min(existing, value)
			continue
		}
		switch policy {
		case KeepFirst:
		case KeepLast:
			res.Inputs[name] = value
		default:
			errs = append(errs, fmt.Errorf("%w: %s=%s vs %s=%s", ErrConflictingAssignment, name, existing, name, value))
		}
	}

	switch {
	case res.Expected == Unspecified:
		res.Expected = second.Expected
	case second.Expected != Unspecified && second.Expected != res.Expected:
		errs = append(errs, fmt.Errorf("%w: %v vs %v", ErrInconsistentExpectedOutput, res.Expected, second.Expected))
	}

	res.Precondition = mergeText(res.Precondition, second.Precondition)
	res.Condition = mergeText(res.Condition, second.Condition)
	res.Result = mergeText(res.Result, second.Result)
	res.Provenance = unionSorted(res.Provenance, second.Provenance)

	if len(errs) > 0 {
		return nil, fmt.Errorf("%v: %w", first.Key, errors.Join(errs...))
	}
	return res, nil
}

// sameValue compares two input values, numerically if both are numbers.
func sameValue(a, b string) bool {
	if a == b {
		return true
	}
	x, okA := dom.ParseValue(a)
	y, okB := dom.ParseValue(b)
	return okA && okB && x == y
}

// mergeText retains the non-empty description, or the smaller one if both
// are given, keeping the result independent of the merge order.
func mergeText(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return min(a, b)
}

// Substitute replaces references to symbolic constants among the inputs of
// the record by their literal values.
func Substitute(r *Record, constants map[string]dom.Value) error {
	var errs []error
	for _, name := range r.Fields() {
		text := strings.TrimSpace(r.Inputs[name])
		if text == "" {
			continue
		}
		if _, ok := dom.ParseValue(text); ok || !isReference(text) {
			continue
		}
		value, found := constants[text]
		if !found {
			errs = append(errs, fmt.Errorf("%w: %s=%s", ErrUnresolvedConstant, name, text))
			continue
		}
		r.Inputs[name] = value.String()
	}
	return errors.Join(errs...)
}

func isReference(text string) bool {
	for i, r := range text {
		if !(r == '_' || unicode.IsLetter(r) || (i > 0 && (unicode.IsDigit(r) || r == '.'))) {
			return false
		}
	}
	return true
}
