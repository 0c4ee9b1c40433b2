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
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRunContext_RunsHaveDistinctIds(t *testing.T) {
	a := NewRunContext(nil)
	b := NewRunContext(zap.NewNop())
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("runs should have distinct ids, got %q and %q", a.ID, b.ID)
	}
	a.Stats.Discharged.Add(2)
	if want, got := int64(0), b.Stats.Discharged.Load(); want != got {
		t.Errorf("runs should not share counters, wanted %d, got %d", want, got)
	}
}

func TestRunContext_LogsCarryTheRunId(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	run := NewRunContext(zap.New(core))
	run.Log.Info("hello")
	entries := logs.All()
	if want, got := 1, len(entries); want != got {
		t.Fatalf("unexpected number of log entries, wanted %d, got %d", want, got)
	}
	if want, got := run.ID, entries[0].ContextMap()["run"]; want != got {
		t.Errorf("unexpected run id, wanted %v, got %v", want, got)
	}
}

func TestReport_SummaryCountsStates(t *testing.T) {
	report := &Report{Entries: []Entry{
		{Decision: "d", Condition: "a", Status: Discharged},
		{Decision: "d", Condition: "b", Status: Unsatisfiable, Err: errors.New("no pair")},
		{Decision: "d", Condition: "c", Status: Discharged},
	}}
	if want, got := (Summary{Discharged: 2, Unsatisfiable: 1}), report.Summary(); want != got {
		t.Errorf("unexpected summary, wanted %v, got %v", want, got)
	}
	if !report.Complete() {
		t.Errorf("unsatisfiable obligations should not render the report incomplete")
	}
	entry, found := report.Lookup("d", "b")
	if !found || entry.Status != Unsatisfiable {
		t.Errorf("failed to look up entry, got %v", entry)
	}
	if want, got := "d/b: unsatisfiable: no pair", entry.String(); want != got {
		t.Errorf("unexpected print, wanted %q, got %q", want, got)
	}
	if _, found := report.Lookup("d", "x"); found {
		t.Errorf("unknown condition should not be found")
	}

	report.Entries = append(report.Entries, Entry{Decision: "e", Status: Errored})
	if report.Complete() {
		t.Errorf("errored obligations should render the report incomplete")
	}
}

func TestStatus_String(t *testing.T) {
	tests := map[Status]string{
		Discharged:    "discharged",
		Unsatisfiable: "unsatisfiable",
		Errored:       "errored",
		Status(7):     "Status(7)",
	}
	for status, want := range tests {
		if got := status.String(); want != got {
			t.Errorf("unexpected print, wanted %s, got %s", want, got)
		}
	}
}

func TestProgress_FinalStateIsLoggedWhenStopping(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	run := NewRunContext(zap.New(core))
	stop := startProgress(run, time.Hour, 3)
	run.Stats.Solved.Add(3)
	stop()

	entries := logs.FilterMessage("progress").All()
	if want, got := 1, len(entries); want != got {
		t.Fatalf("unexpected number of progress messages, wanted %d, got %d", want, got)
	}
	if want, got := int64(3), entries[0].ContextMap()["solved"]; want != got {
		t.Errorf("unexpected number of solved obligations, wanted %v, got %v", want, got)
	}
}

func TestProgress_DisabledWithoutInterval(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	run := NewRunContext(zap.New(core))
	startProgress(run, 0, 1)()
	if want, got := 0, logs.Len(); want != got {
		t.Errorf("unexpected number of log messages, wanted %d, got %d", want, got)
	}
}
