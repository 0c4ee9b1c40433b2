// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package eng

import (
	"fmt"

	"github.com/Fantom-foundation/Certa/go/mcdc/cnd"
	"github.com/Fantom-foundation/Certa/go/mcdc/vec"
)

// Status is the coverage state of an obligation.
type Status int

const (
	// Discharged obligations are witnessed by a pair of the suite.
	Discharged Status = iota
	// Unsatisfiable obligations have no independence pair.
	Unsatisfiable
	// Errored obligations could not be processed.
	Errored
)

func (s Status) String() string {
	switch s {
	case Discharged:
		return "discharged"
	case Unsatisfiable:
		return "unsatisfiable"
	case Errored:
		return "errored"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Entry is the coverage state of a single condition of a decision. Entries
// of decisions that could not be built have no condition.
type Entry struct {
	Requirement string
	Module      string
	Decision    string
	Text        string
	Condition   cnd.ConditionID
	Status      Status
	Pair        *vec.Pair // < set for discharged obligations
	Err         error     // < set for all other obligations
}

func (e Entry) String() string {
	target := e.Decision
	if e.Condition != "" {
		target = fmt.Sprintf("%s/%s", e.Decision, e.Condition)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v: %v", target, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", target, e.Status)
}

// Report lists the coverage state of every obligation of a run, ordered by
// module, decision, and condition.
type Report struct {
	Entries []Entry
}

// Summary counts the entries of a report per status.
type Summary struct {
	Discharged    int
	Unsatisfiable int
	Errored       int
}

func (s Summary) String() string {
	return fmt.Sprintf("discharged %d, unsatisfiable %d, errored %d", s.Discharged, s.Unsatisfiable, s.Errored)
}

func (r *Report) Summary() Summary {
	res := Summary{}
	for _, cur := range r.Entries {
		switch cur.Status {
		case Discharged:
			res.Discharged++
		case Unsatisfiable:
			res.Unsatisfiable++
		case Errored:
			res.Errored++
		}
	}
	return res
}

// Complete reports whether no obligation errored. Unsatisfiable obligations
// do not render a report incomplete.
func (r *Report) Complete() bool {
	return r.Summary().Errored == 0
}

// Lookup finds the entry of the given condition of a decision.
func (r *Report) Lookup(decision string, condition cnd.ConditionID) (Entry, bool) {
	for _, cur := range r.Entries {
		if cur.Decision == decision && cur.Condition == condition {
			return cur, true
		}
	}
	return Entry{}, false
}
