// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package slv

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/Fantom-foundation/Certa/go/mcdc/common"
	"github.com/Fantom-foundation/Certa/go/mcdc/dom"
)

const ErrInvalidModel = common.ConstErr("model does not satisfy the problem")

// Model assigns a concrete value to every variable of a problem.
type Model map[string]dom.Value

func (m Model) Clone() Model {
	return maps.Clone(m)
}

func (m Model) String() string {
	parts := []string{}
	for _, name := range common.SortedKeys(m) {
		parts = append(parts, fmt.Sprintf("%s=%v", name, m[name]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Domain lists the candidate values a problem variable may take.
type Domain struct {
	Name       string
	Candidates []dom.Value
}

// Problem is a conjunction of constraints over finite-domain variables.
// Ordered domains are represented by boundary samples, which keeps the
// problem finite while preserving every outcome of the predicates it
// contains.
type Problem struct {
	Domains     []Domain
	Constraints []Formula
}

func NewProblem() *Problem {
	return &Problem{}
}

// Declare adds a variable with the given candidate values. Redeclaring a
// variable restricts it to the intersection of both candidate sets.
func (p *Problem) Declare(name string, candidates []dom.Value) {
	candidates = common.RemoveDuplicates(slices.Clone(candidates))
	slices.Sort(candidates)
	for i, cur := range p.Domains {
		if cur.Name == name {
			p.Domains[i].Candidates = slices.DeleteFunc(cur.Candidates, func(v dom.Value) bool {
				return !slices.Contains(candidates, v)
			})
			return
		}
	}
	p.Domains = append(p.Domains, Domain{Name: name, Candidates: candidates})
}

// Require adds constraints to the problem.
func (p *Problem) Require(constraints ...Formula) {
	p.Constraints = append(p.Constraints, constraints...)
}

func (p *Problem) Domain(name string) (Domain, bool) {
	for _, cur := range p.Domains {
		if cur.Name == name {
			return cur, true
		}
	}
	return Domain{}, false
}

// Clone creates a copy of the problem that can be extended independently.
func (p *Problem) Clone() *Problem {
	res := &Problem{
		Domains:     make([]Domain, 0, len(p.Domains)),
		Constraints: slices.Clone(p.Constraints),
	}
	for _, cur := range p.Domains {
		res.Domains = append(res.Domains, Domain{Name: cur.Name, Candidates: slices.Clone(cur.Candidates)})
	}
	return res
}

// Verify checks that the model assigns a candidate value to every variable
// and satisfies all constraints.
func (p *Problem) Verify(m Model) error {
	for _, cur := range p.Domains {
		value, found := m[cur.Name]
		if !found {
			return fmt.Errorf("%w: no value for %s", ErrInvalidModel, cur.Name)
		}
		if !slices.Contains(cur.Candidates, value) {
			return fmt.Errorf("%w: %s=%v is not a candidate", ErrInvalidModel, cur.Name, value)
		}
	}
	for _, cur := range p.Constraints {
		if !cur.Eval(m) {
			return fmt.Errorf("%w: %v violated by %v", ErrInvalidModel, cur, m)
		}
	}
	return nil
}

// Block excludes the given model from the solutions of the problem,
// considering only the listed variables.
func (p *Problem) Block(m Model, variables ...string) {
	same := make([]Formula, 0, len(variables))
	for _, name := range variables {
		if value, found := m[name]; found {
			same = append(same, Predicate(name, dom.Eq, value))
		}
	}
	p.Require(Not(All(same...)))
}

// String produces a canonical description of the problem, used as its
// fingerprint.
func (p *Problem) String() string {
	var builder strings.Builder
	for _, cur := range p.Domains {
		parts := make([]string, 0, len(cur.Candidates))
		for _, value := range cur.Candidates {
			parts = append(parts, value.String())
		}
		fmt.Fprintf(&builder, "%s ∈ {%s}\n", cur.Name, strings.Join(parts, ","))
	}
	for _, cur := range p.Constraints {
		fmt.Fprintf(&builder, "%v\n", cur)
	}
	return builder.String()
}
