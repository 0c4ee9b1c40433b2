// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Fantom-foundation/Certa/go/mcdc/rcn"
	"github.com/Fantom-foundation/Certa/go/mcdc/xls"
	"github.com/xuri/excelize/v2"
)

const testCatalog = `
variables:
  - name: speed
    kind: int
    min: 0
    max: 200
  - name: gear
    values: [1, 2, 3]
  - name: brake
    kind: bool
constants:
  LIMIT: 120
modules:
  - name: brake_ctrl
    requirement: REQ-1
    decisions:
      - text: speed > LIMIT && brake
    formula: |
      if (gear == 3 || brake) {
        out = 1;
      } else {
        out = 0;
      }
`

func writeCatalog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(testCatalog), 0600); err != nil {
		t.Fatalf("failed to write catalog: %v", err)
	}
	return path
}

func TestGenerate_WritesTestCaseWorkbook(t *testing.T) {
	catalog := writeCatalog(t)
	output := filepath.Join(t.TempDir(), "out.xlsx")
	args := []string{"mcdc", "generate", "--env-file", "", "--jobs", "2", "--output", output, catalog}
	if err := newApp().Run(args); err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	records, err := xls.ReadRecords(output, xls.TestCaseSheet)
	if err != nil {
		t.Fatalf("failed to read generated workbook: %v", err)
	}
	if want, got := 6, len(records); want != got {
		t.Fatalf("unexpected number of test cases, wanted %d, got %d", want, got)
	}
	for _, record := range records {
		if record.Expected == rcn.Unspecified {
			t.Errorf("test case %v lacks an expected outcome", record)
		}
		if strings.HasPrefix(record.Case, "brake_ctrl.if1") && record.Result == "" {
			t.Errorf("test case %v lacks the result of its branch", record)
		}
	}

	f, err := excelize.OpenFile(output)
	if err != nil {
		t.Fatalf("failed to open workbook: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(xls.CoverageSheet)
	if err != nil {
		t.Fatalf("failed to read coverage: %v", err)
	}
	if want, got := 5, len(rows); want != got {
		t.Errorf("unexpected number of coverage rows, wanted %d, got %d", want, got)
	}
}

func TestGenerate_FailsOnDefectiveRows(t *testing.T) {
	dir := t.TempDir()
	rowsPath := filepath.Join(dir, "rows.xlsx")
	f := excelize.NewFile()
	mustSetRow(t, f, "A1", []any{"requirement", "module", "inputs"})
	mustSetRow(t, f, "A2", []any{"REQ-1", "unknown", "speed=1"})
	if err := f.SaveAs(rowsPath); err != nil {
		t.Fatalf("failed to save rows: %v", err)
	}
	f.Close()

	output := filepath.Join(dir, "out.xlsx")
	args := []string{"mcdc", "generate", "--env-file", "", "--rows", rowsPath, "--output", output, writeCatalog(t)}
	err := newApp().Run(args)
	if err == nil || !strings.Contains(err.Error(), "1 test cases defective") {
		t.Errorf("unexpected error: %v", err)
	}
	if _, err := os.Stat(output); err != nil {
		t.Errorf("workbook should be written despite defects: %v", err)
	}
}

func TestReconcile_MergesRowsOfWorkbooks(t *testing.T) {
	dir := t.TempDir()
	rowsPath := filepath.Join(dir, "rows.xlsx")
	f := excelize.NewFile()
	mustSetRow(t, f, "A1", []any{"requirement", "module", "condition", "inputs"})
	mustSetRow(t, f, "A2", []any{"REQ-1", "brake_ctrl", "gear == 3 || brake", "gear=3"})
	mustSetRow(t, f, "A3", []any{"", "", "", "brake=0, speed=LIMIT"})
	if err := f.SaveAs(rowsPath); err != nil {
		t.Fatalf("failed to save rows: %v", err)
	}
	f.Close()

	output := filepath.Join(dir, "out.xlsx")
	args := []string{"mcdc", "reconcile", "--env-file", "", "--catalog", writeCatalog(t), "--output", output, rowsPath}
	if err := newApp().Run(args); err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	records, err := xls.ReadRecords(output, "")
	if err != nil {
		t.Fatalf("failed to read workbook: %v", err)
	}
	if want, got := 1, len(records); want != got {
		t.Fatalf("unexpected number of test cases, wanted %d, got %d", want, got)
	}
	if want, got := "brake=0, gear=3, speed=120", records[0].FormatInputs(); want != got {
		t.Errorf("unexpected inputs, wanted %s, got %s", want, got)
	}
	if want, got := "out = 1;", records[0].Result; want != got {
		t.Errorf("unexpected result, wanted %q, got %q", want, got)
	}
}

func TestPlan_RejectsUnresolvedDecisions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	content := testCatalog + "  - name: broken\n    requirement: REQ-2\n    decisions:\n      - text: unknown > 1\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write catalog: %v", err)
	}
	err := newApp().Run([]string{"mcdc", "plan", "--env-file", "", path})
	if err == nil || !strings.Contains(err.Error(), "failed to resolve 1 decisions") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestIndent(t *testing.T) {
	if want, got := "  a\n  b\n", indent("a\nb\n", "  "); want != got {
		t.Errorf("unexpected result, wanted %q, got %q", want, got)
	}
}

func mustSetRow(t *testing.T, f *excelize.File, cell string, row []any) {
	t.Helper()
	if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
		t.Fatalf("failed to set row: %v", err)
	}
}
