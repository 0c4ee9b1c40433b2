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

	"github.com/Fantom-foundation/Certa/go/mcdc/cnd"
	"github.com/Fantom-foundation/Certa/go/mcdc/dom"
)

func TestReconciler_StateMachine(t *testing.T) {
	r := NewReconciler([]Module{{Name: "brake", Requirement: "REQ-1"}}, nil, Reject)
	if _, found := r.State(testKey); found {
		t.Fatalf("unknown key should have no state")
	}
	r.Add(newRecord(map[string]string{"x": "1"}, ExpectTrue))
	if state, _ := r.State(testKey); state != Matched {
		t.Errorf("unexpected state after first row, wanted %v, got %v", Matched, state)
	}
	r.Add(newRecord(map[string]string{"y": "2"}, Unspecified))
	if state, _ := r.State(testKey); state != Merged {
		t.Errorf("unexpected state after second row, wanted %v, got %v", Merged, state)
	}

	res := r.Finish()
	if want, got := 1, len(res.Records); want != got {
		t.Fatalf("unexpected number of records, wanted %d, got %d", want, got)
	}
	if want, got := "x=1, y=2", res.Records[0].FormatInputs(); want != got {
		t.Errorf("unexpected inputs, wanted %s, got %s", want, got)
	}
	if len(res.Defects) != 0 {
		t.Errorf("unexpected defects: %v", res.Defects)
	}
}

func TestReconciler_UnknownModulesAreReported(t *testing.T) {
	r := NewReconciler([]Module{{Name: "brake", Requirement: "REQ-1"}}, nil, Reject)
	unknown := Key{Requirement: "REQ-1", Module: "steer"}
	wrongRequirement := Key{Requirement: "REQ-2", Module: "brake"}
	r.Add(&Record{Key: unknown, Inputs: map[string]string{}})
	r.Add(&Record{Key: wrongRequirement, Inputs: map[string]string{}})

	res := r.Finish()
	if len(res.Records) != 0 {
		t.Errorf("unmatched rows should be excluded, got %v", res.Records)
	}
	if want, got := 2, len(res.Defects); want != got {
		t.Fatalf("unexpected number of defects, wanted %d, got %d", want, got)
	}
	for _, defect := range res.Defects {
		if !errors.Is(defect.Err, ErrUnmatchedRecord) {
			t.Errorf("unexpected defect %v", defect)
		}
	}
}

func TestReconciler_WithoutCatalogEveryRowMatches(t *testing.T) {
	r := NewReconciler(nil, nil, Reject)
	r.Add(&Record{Key: Key{Module: "any"}, Inputs: map[string]string{}})
	if want, got := 1, len(r.Finish().Records); want != got {
		t.Errorf("unexpected number of records, wanted %d, got %d", want, got)
	}
}

func TestReconciler_DefectiveRowsAreExcludedButReported(t *testing.T) {
	constants := map[string]dom.Value{"LIMIT": 10}
	r := NewReconciler(nil, constants, Reject)
	conflict := Key{Module: "m", Case: "conflict"}
	unresolved := Key{Module: "m", Case: "unresolved"}
	inconsistent := Key{Module: "m", Case: "inconsistent"}
	good := Key{Module: "m", Case: "good"}

	r.Add(&Record{Key: conflict, Inputs: map[string]string{"x": "1"}})
	r.Add(&Record{Key: conflict, Inputs: map[string]string{"x": "2"}})
	r.Add(&Record{Key: unresolved, Inputs: map[string]string{"x": "UNKNOWN"}})
	r.Add(&Record{Key: inconsistent, Expected: ExpectTrue})
	r.Add(&Record{Key: inconsistent, Expected: ExpectFalse})
	r.Add(&Record{Key: good, Inputs: map[string]string{"x": "LIMIT"}})
	r.Add(&Record{Key: good, Inputs: map[string]string{"x": "10"}})

	res := r.Finish()
	if want, got := 1, len(res.Records); want != got {
		t.Fatalf("unexpected number of records, wanted %d, got %d", want, got)
	}
	if want, got := "10", res.Records[0].Inputs["x"]; want != got {
		t.Errorf("constant not substituted, wanted %s, got %s", want, got)
	}
	wantErrs := map[Key]error{
		conflict:     ErrConflictingAssignment,
		unresolved:   ErrUnresolvedConstant,
		inconsistent: ErrInconsistentExpectedOutput,
	}
	if want, got := len(wantErrs), len(res.Defects); want != got {
		t.Fatalf("unexpected number of defects, wanted %d, got %d: %v", want, got, res.Defects)
	}
	for _, defect := range res.Defects {
		if want := wantErrs[defect.Key]; !errors.Is(defect.Err, want) {
			t.Errorf("unexpected defect for %v, wanted %v, got %v", defect.Key, want, defect.Err)
		}
	}
}

func TestReconciler_AddDoesNotModifyRows(t *testing.T) {
	r := NewReconciler(nil, map[string]dom.Value{"LIMIT": 10}, Reject)
	row := newRecord(map[string]string{"x": "LIMIT"}, ExpectTrue)
	r.Add(row)
	r.Add(newRecord(map[string]string{"y": "1"}, ExpectTrue))
	if want, got := "LIMIT", row.Inputs["x"]; want != got {
		t.Errorf("row was modified, wanted %s, got %s", want, got)
	}
	if _, found := row.Inputs["y"]; found {
		t.Errorf("row was modified by merge")
	}
}

func TestReconciler_ResultsAreTakenFromMatchingBranches(t *testing.T) {
	module := Module{
		Name:        "brake",
		Requirement: "REQ-1",
		Branches: []cnd.Branch{
			{Condition: "(speed > 10) && (gear == 2)", TrueResult: "out = 1;", FalseResult: "out = 0;"},
		},
	}
	r := NewReconciler([]Module{module}, nil, Reject)
	onTrue := Key{Requirement: "REQ-1", Module: "brake", Case: "t"}
	onFalse := Key{Requirement: "REQ-1", Module: "brake", Case: "f"}
	given := Key{Requirement: "REQ-1", Module: "brake", Case: "given"}
	r.Add(&Record{Key: onTrue, Condition: "((speed>10)&&(gear==2))", Expected: ExpectTrue})
	r.Add(&Record{Key: onFalse, Condition: "(speed > 10) && (gear == 2)", Expected: ExpectFalse})
	r.Add(&Record{Key: given, Condition: "(speed > 10) && (gear == 2)", Expected: ExpectFalse, Result: "stop"})

	res := r.Finish()
	want := map[Key]string{onTrue: "out = 1;", onFalse: "out = 0;", given: "stop"}
	for _, record := range res.Records {
		if want, got := want[record.Key], record.Result; want != got {
			t.Errorf("unexpected result for %v, wanted %q, got %q", record.Key, want, got)
		}
	}
}

func TestCanonicalCondition(t *testing.T) {
	tests := map[string]string{
		"a && b":     "a&&b",
		"((a && b))": "a&&b",
		"(a) && (b)": "(a)&&(b)",
		"（x ＞ 1）":    "x>1",
		"":           "",
	}
	for input, want := range tests {
		if got := canonicalCondition(input); want != got {
			t.Errorf("unexpected canonical form of %q, wanted %q, got %q", input, want, got)
		}
	}
}
