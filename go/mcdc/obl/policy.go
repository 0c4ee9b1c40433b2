// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package obl

import (
	"fmt"
	"strings"

	"github.com/Fantom-foundation/Certa/go/mcdc/common"
)

const ErrUnknownPolicy = common.ConstErr("unknown MC/DC policy")

// Policy selects the MC/DC variant independence pairs have to satisfy.
type Policy int

const (
	// UniqueCause requires every condition other than the one under test
	// to keep its truth value between both members of a pair.
	UniqueCause Policy = iota
	// Masking tolerates changes of conditions that are evaluated on only
	// one side of a pair due to short-circuit evaluation. Conditions
	// evaluated on both sides, or on neither, must keep their value.
	Masking
)

func ParsePolicy(text string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "unique-cause", "unique_cause", "uniquecause", "unique", "":
		return UniqueCause, nil
	case "masking", "mask":
		return Masking, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPolicy, text)
}

func (p Policy) String() string {
	switch p {
	case UniqueCause:
		return "unique-cause"
	case Masking:
		return "masking"
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// UnmarshalText enables policies to be used in configuration files.
func (p *Policy) UnmarshalText(text []byte) error {
	res, err := ParsePolicy(string(text))
	if err != nil {
		return err
	}
	*p = res
	return nil
}

func (p Policy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}
