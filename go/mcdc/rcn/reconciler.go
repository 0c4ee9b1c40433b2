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
	"strings"
	"unicode"

	"github.com/Fantom-foundation/Certa/go/mcdc/cnd"
	"github.com/Fantom-foundation/Certa/go/mcdc/common"
	"github.com/Fantom-foundation/Certa/go/mcdc/dom"
)

const ErrUnmatchedRecord = common.ConstErr("unmatched record")

// State is the reconciliation state of a test case.
type State int

const (
	// Unmatched test cases refer to no known module.
	Unmatched State = iota
	// Matched test cases refer to a known module and consist of one row.
	Matched
	// Merged test cases combine several rows.
	Merged
)

func (s State) String() string {
	switch s {
	case Unmatched:
		return "unmatched"
	case Matched:
		return "matched"
	case Merged:
		return "merged"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Module identifies a module of the catalog test cases are matched against.
type Module struct {
	Name        string
	Requirement string
	// Branches of the module's formula provide the expected results of
	// rows stating one of their conditions.
	Branches []cnd.Branch
}

type entry struct {
	record *Record
	state  State
	err    error // < set for defective test cases
}

// Defect is a test case excluded from the output.
type Defect struct {
	Key    Key
	Record *Record
	State  State
	Err    error
}

func (d Defect) String() string {
	return fmt.Sprintf("%v (%v): %v", d.Key, d.State, d.Err)
}

// Result is the outcome of a reconciliation.
type Result struct {
	Records []*Record
	Defects []Defect
}

// Reconciler matches rows against a module catalog, substitutes symbolic
// constants and merges rows sharing a key. A Reconciler is not safe for
// concurrent use.
type Reconciler struct {
	modules   map[string]map[string]bool // < module name → requirement ids
	branches  map[string][]cnd.Branch
	constants map[string]dom.Value
	policy    ConflictPolicy
	entries   map[Key]*entry
	order     []Key
}

// NewReconciler creates a reconciler for the given catalog. Without any
// modules, every row is considered matched.
func NewReconciler(modules []Module, constants map[string]dom.Value, policy ConflictPolicy) *Reconciler {
	res := &Reconciler{
		constants: constants,
		policy:    policy,
		entries:   map[Key]*entry{},
		branches:  map[string][]cnd.Branch{},
	}
	if len(modules) > 0 {
		res.modules = map[string]map[string]bool{}
		for _, m := range modules {
			if res.modules[m.Name] == nil {
				res.modules[m.Name] = map[string]bool{}
			}
			res.modules[m.Name][m.Requirement] = true
			res.branches[m.Name] = append(res.branches[m.Name], m.Branches...)
		}
	}
	return res
}

func (r *Reconciler) matches(key Key) bool {
	if r.modules == nil {
		return true
	}
	requirements, found := r.modules[key.Module]
	return found && (key.Requirement == "" || requirements[key.Requirement] || requirements[""])
}

// Add feeds a row into the reconciliation. The row is not modified.
func (r *Reconciler) Add(row *Record) {
	record := row.Clone()
	substitutionErr := Substitute(record, r.constants)

	e, found := r.entries[record.Key]
	if !found {
		e = &entry{record: record, state: Unmatched, err: substitutionErr}
		if r.matches(record.Key) {
			e.state = Matched
		}
		r.entries[record.Key] = e
		r.order = append(r.order, record.Key)
		return
	}

	if substitutionErr != nil && e.err == nil {
		e.err = substitutionErr
	}
	merged, err := Merge(e.record, record, r.policy)
	if err != nil {
		if e.err == nil {
			e.err = err
		}
		return
	}
	e.record = merged
	if e.state == Matched {
		e.state = Merged
	}
}

// State reports the current state of the test case with the given key.
func (r *Reconciler) State(key Key) (State, bool) {
	e, found := r.entries[key]
	if !found {
		return Unmatched, false
	}
	return e.state, true
}

// Finish produces the reconciled records in order of their first row.
// Defective and unmatched test cases are excluded and reported as defects.
func (r *Reconciler) Finish() *Result {
	res := &Result{Records: []*Record{}, Defects: []Defect{}}
	for _, key := range r.order {
		e := r.entries[key]
		switch {
		case e.err != nil:
			res.Defects = append(res.Defects, Defect{Key: key, Record: e.record, State: e.state, Err: e.err})
		case e.state == Unmatched:
			err := fmt.Errorf("%w: module %q of requirement %q not in catalog", ErrUnmatchedRecord, key.Module, key.Requirement)
			res.Defects = append(res.Defects, Defect{Key: key, Record: e.record, State: e.state, Err: err})
		default:
			r.fillResult(e.record)
			res.Records = append(res.Records, e.record)
		}
	}
	return res
}

// fillResult looks up the branch of the record's condition and sets the
// result according to the expected outcome, unless a result is given.
func (r *Reconciler) fillResult(record *Record) {
	if record.Result != "" || record.Condition == "" || record.Expected == Unspecified {
		return
	}
	condition := canonicalCondition(record.Condition)
	for _, branch := range r.branches[record.Module] {
		if canonicalCondition(branch.Condition) != condition {
			continue
		}
		if record.Expected == ExpectTrue {
			record.Result = branch.TrueResult
		} else {
			record.Result = branch.FalseResult
		}
		return
	}
}

// canonicalCondition removes white space and enclosing parentheses.
func canonicalCondition(text string) string {
	res := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, cnd.Normalize(text))
	for len(res) > 1 && res[0] == '(' && res[len(res)-1] == ')' && enclosed(res) {
		res = res[1 : len(res)-1]
	}
	return res
}

// enclosed reports whether the opening parenthesis at the start of the text
// is closed at its very end.
func enclosed(text string) bool {
	depth := 0
	for i, r := range text {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i == len(text)-1
			}
		}
	}
	return false
}
