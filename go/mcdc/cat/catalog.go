// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package cat

import (
	"errors"
	"fmt"
	"os"

	"github.com/Fantom-foundation/Certa/go/mcdc/cnd"
	"github.com/Fantom-foundation/Certa/go/mcdc/common"
	"github.com/Fantom-foundation/Certa/go/mcdc/dom"
	"gopkg.in/yaml.v3"
)

const (
	ErrInvalidCatalog = common.ConstErr("invalid catalog")
	ErrInvalidLiteral = common.ConstErr("invalid literal")
)

// Literal is a numeric or boolean value as written in catalog files.
// Fractions like 1/3 are accepted.
type Literal struct {
	Value dom.Value
	Set   bool
}

func (l *Literal) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("%w: expected scalar at line %d", ErrInvalidLiteral, node.Line)
	}
	if node.Tag == "!!null" || node.Value == "" {
		*l = Literal{}
		return nil
	}
	value, ok := dom.ParseValue(node.Value)
	if !ok {
		return fmt.Errorf("%w: %q at line %d", ErrInvalidLiteral, node.Value, node.Line)
	}
	*l = Literal{Value: value, Set: true}
	return nil
}

// VariableSpec is a row of the variable table.
type VariableSpec struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description,omitempty"`
	Kind        string    `yaml:"kind,omitempty"`
	Integral    *bool     `yaml:"integral,omitempty"`
	Initial     Literal   `yaml:"initial,omitempty"`
	Min         Literal   `yaml:"min,omitempty"`
	Max         Literal   `yaml:"max,omitempty"`
	Values      []Literal `yaml:"values,omitempty"`
}

// DecisionSpec is a decision stated explicitly for a module.
type DecisionSpec struct {
	ID   string `yaml:"id"`
	Text string `yaml:"text"`
}

// ModuleSpec describes a module of the requirements document.
type ModuleSpec struct {
	Name         string         `yaml:"name"`
	Requirement  string         `yaml:"requirement"`
	Function     string         `yaml:"function,omitempty"`
	Precondition string         `yaml:"precondition,omitempty"`
	Formula      string         `yaml:"formula,omitempty"`
	Decisions    []DecisionSpec `yaml:"decisions,omitempty"`
}

// File is the on-disk layout of a catalog.
type File struct {
	Variables []VariableSpec     `yaml:"variables"`
	Constants map[string]Literal `yaml:"constants,omitempty"`
	Modules   []ModuleSpec       `yaml:"modules"`
}

// Catalog holds the variables, constants, and modules of a requirements
// document.
type Catalog struct {
	Domain  *dom.Catalog
	Modules []*Module
}

// Module is a module of the catalog with its decisions in textual form.
type Module struct {
	Name         string
	Requirement  string
	Precondition string
	Decisions    []Decision
	// Branches are the conditional statements of the module's formula.
	Branches []cnd.Branch
}

// Decision is a decision of a module before it is resolved.
type Decision struct {
	ID          string
	Text        string
	TrueResult  string
	FalseResult string
	// Err is set if the decision could not be extracted from the formula.
	Err error
}

// Load reads a catalog from a YAML file. JSON files are accepted as well.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes a catalog from YAML data.
func Parse(data []byte) (*Catalog, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}
	return file.Build()
}

// Build converts the file contents into a catalog. Variable rows that
// describe a single value are registered as constants.
func (f *File) Build() (*Catalog, error) {
	domain := dom.NewCatalog()
	var errs []error
	for _, name := range common.SortedKeys(f.Constants) {
		literal := f.Constants[name]
		if !literal.Set {
			errs = append(errs, fmt.Errorf("%w: constant %s has no value", ErrInvalidCatalog, name))
			continue
		}
		if err := domain.AddConstant(name, literal.Value); err != nil {
			errs = append(errs, err)
		}
	}
	for _, spec := range f.Variables {
		if value, isConstant := spec.ConstantValue(); isConstant {
			if err := domain.AddConstant(spec.Name, value); err != nil {
				errs = append(errs, err)
			}
			continue
		}
		variable, err := spec.Variable()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := domain.AddVariable(variable); err != nil {
			errs = append(errs, err)
		}
	}

	res := &Catalog{Domain: domain}
	for _, spec := range f.Modules {
		module, err := spec.Module()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		res.Modules = append(res.Modules, module)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return res, nil
}

// ConstantValue determines whether the row describes a constant. This is the
// case if minimum and maximum coincide and the initial value, if given,
// agrees with them, or if only an initial value is given.
func (s *VariableSpec) ConstantValue() (dom.Value, bool) {
	if len(s.Values) > 0 {
		return 0, false
	}
	switch {
	case s.Min.Set && s.Max.Set && s.Min.Value == s.Max.Value:
		if !s.Initial.Set || s.Initial.Value == s.Min.Value {
			return s.Min.Value, true
		}
	case !s.Min.Set && !s.Max.Set && s.Initial.Set && s.Kind == "":
		return s.Initial.Value, true
	}
	return 0, false
}

// Variable converts the row into a domain variable.
func (s *VariableSpec) Variable() (dom.Variable, error) {
	kind, err := dom.ParseKind(s.Kind)
	if err != nil {
		return dom.Variable{}, fmt.Errorf("variable %s: %w", s.Name, err)
	}
	if len(s.Values) > 0 && kind == dom.Ordered && s.Kind == "" {
		kind = dom.Enumerated
	}
	var res dom.Variable
	switch kind {
	case dom.Boolean:
		res = dom.NewBoolean(s.Name)
	case dom.Enumerated:
		values := make([]dom.Value, 0, len(s.Values))
		for _, cur := range s.Values {
			values = append(values, cur.Value)
		}
		res = dom.NewEnumerated(s.Name, values...)
	case dom.Ordered:
		if !s.Min.Set || !s.Max.Set {
			return dom.Variable{}, fmt.Errorf("%w: %s lacks bounds", ErrInvalidCatalog, s.Name)
		}
		res = dom.Variable{
			Name:     s.Name,
			Kind:     dom.Ordered,
			Integral: isIntegral(s),
			Min:      s.Min.Value,
			Max:      s.Max.Value,
		}
	}
	if err := res.Validate(); err != nil {
		return dom.Variable{}, err
	}
	return res, nil
}

// isIntegral decides whether an ordered variable ranges over integers. If
// not stated explicitly, real kinds and fractional bounds imply reals.
func isIntegral(s *VariableSpec) bool {
	if s.Integral != nil {
		return *s.Integral
	}
	switch s.Kind {
	case "real", "float", "double":
		return false
	}
	return s.Min.Value.IsIntegral() && s.Max.Value.IsIntegral()
}

// Module collects the decisions of a module: explicitly listed ones first,
// followed by the conditions of the if statements in its formula. A formula
// that can not be split into branches is kept as a single failed decision.
func (s *ModuleSpec) Module() (*Module, error) {
	if s.Name == "" {
		return nil, fmt.Errorf("%w: module without name", ErrInvalidCatalog)
	}
	branches, formulaErr := cnd.ExtractBranches(s.Formula)
	res := &Module{
		Name:         cnd.Normalize(s.Name),
		Requirement:  cnd.Normalize(s.Requirement),
		Precondition: s.Precondition,
		Branches:     branches,
	}
	for i, d := range s.Decisions {
		id := d.ID
		if id == "" {
			id = fmt.Sprintf("%s.d%d", res.Name, i+1)
		}
		res.Decisions = append(res.Decisions, Decision{ID: id, Text: d.Text})
	}
	for i, b := range branches {
		res.Decisions = append(res.Decisions, Decision{
			ID:          fmt.Sprintf("%s.if%d", res.Name, i+1),
			Text:        b.Condition,
			TrueResult:  b.TrueResult,
			FalseResult: b.FalseResult,
		})
	}
	if formulaErr != nil {
		res.Decisions = append(res.Decisions, Decision{
			ID:   res.Name + ".formula",
			Text: s.Formula,
			Err:  fmt.Errorf("module %s: %w", res.Name, formulaErr),
		})
	}
	return res, nil
}
