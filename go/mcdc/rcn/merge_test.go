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
	"testing"

	"github.com/Fantom-foundation/Certa/go/mcdc/dom"
	"github.com/google/go-cmp/cmp"
)

var testKey = Key{Requirement: "REQ-1", Module: "brake"}

func newRecord(inputs map[string]string, expected Expectation, provenance ...string) *Record {
	return &Record{Key: testKey, Inputs: inputs, Expected: expected, Provenance: provenance}
}

func TestMerge_UnitesMissingFieldsWithoutConflict(t *testing.T) {
	a := newRecord(map[string]string{"x": "11", "y": "1"}, ExpectTrue, "sheet:2")
	b := newRecord(map[string]string{"x": "11", "z": "true"}, Unspecified, "sheet:3")
	got, err := Merge(a, b, Reject)
	if err != nil {
		t.Fatalf("failed to merge: %v", err)
	}
	want := newRecord(map[string]string{"x": "11", "y": "1", "z": "true"}, ExpectTrue, "sheet:2", "sheet:3")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected merge result (-want +got):\n%s", diff)
	}
}

func TestMerge_IsCommutativeAndIdempotent(t *testing.T) {
	rows := []*Record{
		newRecord(map[string]string{"x": "11"}, ExpectTrue, "a"),
		newRecord(map[string]string{"y": "1.0", "x": "11"}, Unspecified, "b"),
		{Key: testKey, Condition: "x > 10", Inputs: map[string]string{"y": "1"}, Provenance: []string{"c"}},
		{Key: testKey, Precondition: "power on", Inputs: map[string]string{}},
	}
	for i, a := range rows {
		for j, b := range rows {
			ab, err := Merge(a, b, Reject)
			if err != nil {
				t.Fatalf("failed to merge %d and %d: %v", i, j, err)
			}
			ba, err := Merge(b, a, Reject)
			if err != nil {
				t.Fatalf("failed to merge %d and %d: %v", j, i, err)
			}
			if diff := cmp.Diff(ab, ba); diff != "" {
				t.Errorf("merging %d and %d is not commutative (-ab +ba):\n%s", i, j, diff)
			}
			again, err := Merge(ab, ab, Reject)
			if err != nil {
				t.Fatalf("failed to merge merged record with itself: %v", err)
			}
			if diff := cmp.Diff(ab, again); diff != "" {
				t.Errorf("merging %d and %d is not idempotent (-once +twice):\n%s", i, j, diff)
			}
		}
	}
}

func TestMerge_DifferentValuesConflict(t *testing.T) {
	a := newRecord(map[string]string{"x": "11"}, ExpectTrue)
	b := newRecord(map[string]string{"x": "10"}, ExpectTrue)
	if _, err := Merge(a, b, Reject); !errors.Is(err, ErrConflictingAssignment) {
		t.Errorf("expected conflicting assignment, got %v", err)
	}

	first, err := Merge(a, b, KeepFirst)
	if err != nil {
		t.Fatalf("keep-first should not fail: %v", err)
	}
	if want, got := "11", first.Inputs["x"]; want != got {
		t.Errorf("unexpected value, wanted %s, got %s", want, got)
	}
	last, err := Merge(a, b, KeepLast)
	if err != nil {
		t.Fatalf("keep-last should not fail: %v", err)
	}
	if want, got := "10", last.Inputs["x"]; want != got {
		t.Errorf("unexpected value, wanted %s, got %s", want, got)
	}
}

func TestMerge_NumericallyEqualValuesDoNotConflict(t *testing.T) {
	a := newRecord(map[string]string{"x": "0.50", "b": "true"}, Unspecified)
	b := newRecord(map[string]string{"x": "0.5", "b": "1"}, Unspecified)
	if _, err := Merge(a, b, Reject); err != nil {
		t.Errorf("numerically equal values should not conflict, got %v", err)
	}
}

func TestMerge_InconsistentExpectedOutputs(t *testing.T) {
	a := newRecord(map[string]string{}, ExpectTrue)
	b := newRecord(map[string]string{}, ExpectFalse)
	for _, policy := range []ConflictPolicy{Reject, KeepFirst, KeepLast} {
		if _, err := Merge(a, b, policy); !errors.Is(err, ErrInconsistentExpectedOutput) {
			t.Errorf("expected inconsistent output under %v, got %v", policy, err)
		}
	}
}

func TestMerge_RecordsOfDifferentKeysCanNotBeMerged(t *testing.T) {
	a := newRecord(map[string]string{}, ExpectTrue)
	b := a.Clone()
	b.Case = "other"
	if _, err := Merge(a, b, Reject); err == nil {
		t.Errorf("merging records of different keys should fail")
	}
}

func TestSubstitute_ReplacesConstants(t *testing.T) {
	r := newRecord(map[string]string{"x": "MAX_SPEED", "y": "3", "z": "1/3", "w": ""}, Unspecified)
	err := Substitute(r, map[string]dom.Value{"MAX_SPEED": 120})
	if err != nil {
		t.Fatalf("failed to substitute: %v", err)
	}
	want := map[string]string{"x": "120", "y": "3", "z": "1/3", "w": ""}
	if diff := cmp.Diff(want, r.Inputs); diff != "" {
		t.Errorf("unexpected inputs (-want +got):\n%s", diff)
	}
}

func TestSubstitute_ReportsUnresolvedConstants(t *testing.T) {
	r := newRecord(map[string]string{"x": "MAX_SPEED", "y": "MIN_SPEED"}, Unspecified)
	err := Substitute(r, map[string]dom.Value{"MAX_SPEED": 120})
	if !errors.Is(err, ErrUnresolvedConstant) {
		t.Errorf("expected unresolved constant, got %v", err)
	}
	if want, got := "120", r.Inputs["x"]; want != got {
		t.Errorf("resolvable constants should still be substituted, wanted %s, got %s", want, got)
	}
}

func TestParseConflictPolicy(t *testing.T) {
	tests := map[string]ConflictPolicy{
		"reject":     Reject,
		"":           Reject,
		"keep-first": KeepFirst,
		"Keep-Last":  KeepLast,
	}
	for input, want := range tests {
		got, err := ParseConflictPolicy(input)
		if err != nil || want != got {
			t.Errorf("unexpected policy for %q, wanted %v, got %v (%v)", input, want, got, err)
		}
	}
	if _, err := ParseConflictPolicy("random"); !errors.Is(err, ErrUnknownConflictPolicy) {
		t.Errorf("unknown policy should be rejected, got %v", err)
	}
}
