// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package xls

import (
	"fmt"
	"strings"

	"github.com/Fantom-foundation/Certa/go/mcdc/eng"
	"github.com/Fantom-foundation/Certa/go/mcdc/rcn"
	"github.com/xuri/excelize/v2"
)

const (
	TestCaseSheet = "TestCases"
	CoverageSheet = "Coverage"
	DefectSheet   = "Defects"
)

// Workbook is the content of an output workbook. Sheets without content are
// omitted, except for the test case sheet.
type Workbook struct {
	Records  []*rcn.Record
	Coverage *eng.Report
	Defects  []rcn.Defect
}

// Write stores the workbook at the given path. Test cases are written in a
// layout accepted by ReadRecords.
func Write(path string, workbook Workbook) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", TestCaseSheet); err != nil {
		return err
	}
	testCases := [][]any{testCaseHeader()}
	for _, record := range workbook.Records {
		testCases = append(testCases, []any{
			record.Requirement,
			record.Module,
			record.Case,
			record.Precondition,
			record.Condition,
			record.FormatInputs(),
			record.Expected.String(),
			record.Result,
			strings.Join(record.Provenance, ", "),
		})
	}
	if err := writeRows(f, TestCaseSheet, testCases); err != nil {
		return err
	}

	if workbook.Coverage != nil {
		coverage := [][]any{{"requirement", "module", "decision", "condition", "status", "true vector", "false vector", "error"}}
		for _, entry := range workbook.Coverage.Entries {
			row := []any{entry.Requirement, entry.Module, entry.Decision, string(entry.Condition), entry.Status.String(), "", "", ""}
			if entry.Pair != nil {
				row[5] = entry.Pair.True.ID
				row[6] = entry.Pair.False.ID
			}
			if entry.Err != nil {
				row[7] = entry.Err.Error()
			}
			coverage = append(coverage, row)
		}
		if err := writeSheet(f, CoverageSheet, coverage); err != nil {
			return err
		}
	}

	if len(workbook.Defects) > 0 {
		defects := [][]any{{"requirement", "module", "case", "state", "inputs", "error"}}
		for _, defect := range workbook.Defects {
			inputs := ""
			if defect.Record != nil {
				inputs = defect.Record.FormatInputs()
			}
			defects = append(defects, []any{
				defect.Key.Requirement,
				defect.Key.Module,
				defect.Key.Case,
				defect.State.String(),
				inputs,
				defect.Err.Error(),
			})
		}
		if err := writeSheet(f, DefectSheet, defects); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func testCaseHeader() []any {
	res := make([]any, 0, numColumns)
	for c := column(0); c < numColumns; c++ {
		res = append(res, headers[c][0])
	}
	return res
}

func writeSheet(f *excelize.File, sheet string, rows [][]any) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	return writeRows(f, sheet, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d of %s: %w", i+1, sheet, err)
		}
	}
	return nil
}
