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
	"fmt"
	"maps"

	"github.com/Fantom-foundation/Certa/go/mcdc/common"
)

const ErrDuplicateVariable = common.ConstErr("duplicate variable")

// Catalog is the set of variables and symbolic constants known to a run.
// It is filled while loading inputs and read-only afterwards.
type Catalog struct {
	variables map[string]Variable
	constants map[string]Value
}

func NewCatalog() *Catalog {
	return &Catalog{
		variables: map[string]Variable{},
		constants: map[string]Value{},
	}
}

// AddVariable registers a variable after validating its domain.
func (c *Catalog) AddVariable(v Variable) error {
	if err := v.Validate(); err != nil {
		return err
	}
	if _, found := c.variables[v.Name]; found {
		return fmt.Errorf("%w: %s", ErrDuplicateVariable, v.Name)
	}
	if _, found := c.constants[v.Name]; found {
		return fmt.Errorf("%w: %s is already a constant", ErrDuplicateVariable, v.Name)
	}
	c.variables[v.Name] = v
	return nil
}

// AddConstant registers a symbolic constant. Constants shadow nothing; a
// name may not be both a variable and a constant.
func (c *Catalog) AddConstant(name string, value Value) error {
	if _, found := c.variables[name]; found {
		return fmt.Errorf("%w: %s is already a variable", ErrDuplicateVariable, name)
	}
	c.constants[name] = value
	return nil
}

func (c *Catalog) Variable(name string) (Variable, bool) {
	v, found := c.variables[name]
	return v, found
}

func (c *Catalog) Constant(name string) (Value, bool) {
	v, found := c.constants[name]
	return v, found
}

// Constants provides a copy of all symbolic constants.
func (c *Catalog) Constants() map[string]Value {
	return maps.Clone(c.constants)
}

// VariableNames lists all variable names in ascending order.
func (c *Catalog) VariableNames() []string {
	return common.SortedKeys(c.variables)
}
