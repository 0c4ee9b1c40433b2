// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package dom

import (
	"math"
	"strconv"
)

// Value is a concrete value of a variable. Booleans are encoded as 0 and 1,
// enumerations and ordered ranges use their numeric literal.
type Value float64

// BoolValue converts a truth value into its Value encoding.
func BoolValue(b bool) Value {
	if b {
		return 1
	}
	return 0
}

// IsIntegral reports whether the value has no fractional part.
func (v Value) IsIntegral() bool {
	f := float64(v)
	return !math.IsInf(f, 0) && f == math.Trunc(f)
}

func (v Value) String() string {
	if v.IsIntegral() && math.Abs(float64(v)) < 1<<53 {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(float64(v), 'g', -1, 64)
}

// ParseValue parses a literal as it appears in catalogs and test rows.
// Accepted are decimal numbers, fractions of the form a/b, and the
// boolean literals true and false.
func ParseValue(text string) (Value, bool) {
	switch text {
	case "true", "TRUE", "True":
		return 1, true
	case "false", "FALSE", "False":
		return 0, true
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return Value(f), true
	}
	for i := 1; i < len(text)-1; i++ {
		if text[i] != '/' {
			continue
		}
		num, err1 := strconv.ParseFloat(text[:i], 64)
		den, err2 := strconv.ParseFloat(text[i+1:], 64)
		if err1 != nil || err2 != nil || den == 0 {
			return 0, false
		}
		// Fractions are rounded to two decimal places.
		return Value(math.Round(num/den*100) / 100), true
	}
	return 0, false
}
