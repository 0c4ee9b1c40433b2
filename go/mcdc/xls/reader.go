// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package xls reads externally authored test case rows from spreadsheets and
// writes reconciled test cases together with coverage reports.
package xls

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Fantom-foundation/Certa/go/mcdc/cnd"
	"github.com/Fantom-foundation/Certa/go/mcdc/common"
	"github.com/Fantom-foundation/Certa/go/mcdc/dom"
	"github.com/Fantom-foundation/Certa/go/mcdc/rcn"
	"github.com/xuri/excelize/v2"
)

const (
	ErrMissingColumn = common.ConstErr("missing column")
	ErrMalformedRow  = common.ConstErr("malformed row")
	ErrUnknownSheet  = common.ConstErr("unknown sheet")
	ErrEmptyWorkbook = common.ConstErr("workbook has no rows")
)

type column int

const (
	colRequirement column = iota
	colModule
	colCase
	colPrecondition
	colCondition
	colInputs
	colExpected
	colResult
	colProvenance
	numColumns
)

// headers lists the accepted header names per column, in lower case. The
// first name is used when writing.
var headers = [numColumns][]string{
	colRequirement:  {"requirement", "requirement id", "req", "需求编号"},
	colModule:       {"module", "module name", "模块名称"},
	colCase:         {"case", "case id", "用例编号"},
	colPrecondition: {"precondition", "前置条件"},
	colCondition:    {"condition", "判断条件"},
	colInputs:       {"inputs", "test case", "测试用例"},
	colExpected:     {"expected", "预期结果"},
	colResult:       {"result", "输出"},
	colProvenance:   {"provenance"},
}

// carried columns inherit the last non-blank value of previous rows, the way
// merged cells are read.
var carried = []column{colRequirement, colModule, colPrecondition, colCondition}

// ReadRecords reads test case rows from the given sheet of a workbook. If no
// sheet name is given, the first sheet is read. Rows are tagged with the file
// name and row number as their provenance.
func ReadRecords(path, sheet string) ([]*rcn.Record, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, ErrEmptyWorkbook
		}
		sheet = sheets[0]
	}
	if index, err := f.GetSheetIndex(sheet); err != nil || index < 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSheet, sheet)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	return ParseRows(filepath.Base(path), rows)
}

// ParseRows converts the cells of a sheet into records. The first row holds
// the column headers. Blank requirement, module, precondition, and condition
// cells take the value of the previous row. A condition starting with '!'
// expects a false outcome, any other condition a true one, unless an
// expected column states otherwise. Rows without a case label are labeled by
// their condition.
//
// Malformed rows are reported as a joined error while all other rows are
// still returned.
func ParseRows(source string, rows [][]string) ([]*rcn.Record, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyWorkbook
	}
	index, err := parseHeader(rows[0])
	if err != nil {
		return nil, err
	}

	res := []*rcn.Record{}
	var errs []error
	last := map[column]string{}
	for i, row := range rows[1:] {
		number := i + 2
		cell := func(c column) string {
			if index[c] < 0 || index[c] >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[index[c]])
		}
		if isBlank(row) {
			continue
		}

		values := map[column]string{}
		for c := column(0); c < numColumns; c++ {
			values[c] = cell(c)
		}
		for _, c := range carried {
			if values[c] == "" {
				values[c] = last[c]
			}
			last[c] = values[c]
		}

		record, err := parseRow(values)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s:%d: %w", source, number, err))
			continue
		}
		record.Provenance = append(record.Provenance, fmt.Sprintf("%s:%d", source, number))
		res = append(res, record)
	}
	return res, errors.Join(errs...)
}

func parseHeader(row []string) ([numColumns]int, error) {
	res := [numColumns]int{}
	for c := range res {
		res[c] = -1
	}
	for i, cell := range row {
		name := strings.ToLower(strings.TrimSpace(cnd.Normalize(cell)))
		for c, names := range headers {
			for _, cur := range names {
				if name == cur && res[c] < 0 {
					res[c] = i
				}
			}
		}
	}
	for _, c := range []column{colRequirement, colModule} {
		if res[c] < 0 {
			return res, fmt.Errorf("%w: %s", ErrMissingColumn, headers[c][0])
		}
	}
	return res, nil
}

func parseRow(values map[column]string) (*rcn.Record, error) {
	if values[colRequirement] == "" || values[colModule] == "" {
		return nil, fmt.Errorf("%w: no requirement or module", ErrMalformedRow)
	}

	condition := cnd.Normalize(values[colCondition])
	label := values[colCase]
	if label == "" {
		label = condition
	}
	expected := rcn.Unspecified
	if condition != "" {
		expected = rcn.ExpectTrue
		if strings.HasPrefix(condition, "!") {
			expected = rcn.ExpectFalse
			condition = strings.TrimSpace(condition[1:])
		}
	}
	if text := values[colExpected]; text != "" {
		outcome, err := strconv.ParseBool(text)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid expected output %q", ErrMalformedRow, text)
		}
		expected = rcn.Expect(outcome)
	}

	inputs, err := parseInputs(values[colInputs])
	if err != nil {
		return nil, err
	}

	res := &rcn.Record{
		Key: rcn.Key{
			Requirement: cnd.Normalize(values[colRequirement]),
			Module:      cnd.Normalize(values[colModule]),
			Case:        label,
		},
		Precondition: values[colPrecondition],
		Condition:    condition,
		Inputs:       inputs,
		Expected:     expected,
		Result:       values[colResult],
	}
	if text := values[colProvenance]; text != "" {
		for _, cur := range strings.Split(text, ",") {
			if cur = strings.TrimSpace(cur); cur != "" {
				res.Provenance = append(res.Provenance, cur)
			}
		}
	}
	return res, nil
}

// parseInputs splits assignments like "a=1, b=2" or "a=1; b=2". Fractions
// are converted to decimals.
func parseInputs(text string) (map[string]string, error) {
	res := map[string]string{}
	parts := strings.FieldsFunc(cnd.Normalize(text), func(r rune) bool {
		return r == ',' || r == ';' || r == '\n'
	})
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, value, found := strings.Cut(part, "=")
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(strings.TrimLeft(value, "="))
		if !found || name == "" {
			return nil, fmt.Errorf("%w: invalid input %q", ErrMalformedRow, part)
		}
		if strings.Contains(value, "/") {
			if v, ok := dom.ParseValue(value); ok {
				value = v.String()
			}
		}
		if previous, found := res[name]; found && previous != value {
			return nil, fmt.Errorf("%w: %s=%s and %s=%s", rcn.ErrConflictingAssignment, name, previous, name, value)
		}
		res[name] = value
	}
	return res, nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
