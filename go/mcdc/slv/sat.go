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
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/crillab/gophersat/solver"
)

// SATOracle decides problems using the gophersat SAT solver. Every
// variable is one-hot encoded over its candidates; a predicate becomes the
// disjunction of the candidates satisfying it. Compound formulas are
// translated into clauses by a Tseitin encoding. Each call uses an isolated
// solver instance, so a SATOracle may be used concurrently.
type SATOracle struct {
	timeout time.Duration
}

// NewSATOracle creates an oracle bounding each check by the given timeout.
// A non-positive timeout disables the bound.
func NewSATOracle(timeout time.Duration) *SATOracle {
	return &SATOracle{timeout: timeout}
}

type satResult struct {
	model []bool // < nil if unsatisfiable
	err   error
}

func (o *SATOracle) Check(ctx context.Context, problem *Problem) (Model, error) {
	enc, err := encode(problem)
	if err != nil {
		return nil, err
	}
	if enc.trivial {
		if !enc.holds {
			return nil, ErrUnsatisfiable
		}
		return Model{}, nil
	}

	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	// gophersat can not be interrupted; on timeout the search keeps running
	// in the background until it completes.
	done := make(chan satResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- satResult{err: fmt.Errorf("%w: %v", ErrSolver, r)}
			}
		}()
		done <- satResult{model: solve(enc.clauses)}
	}()

	var res satResult
	select {
	case res = <-done:
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", ErrSolverTimeout, ctx.Err())
		}
		return nil, ctx.Err()
	}
	if res.err != nil {
		return nil, res.err
	}
	if res.model == nil {
		return nil, ErrUnsatisfiable
	}

	model, err := enc.decode(res.model)
	if err != nil {
		return nil, err
	}
	if err := problem.Verify(model); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSolver, err)
	}
	return model, nil
}

// solve runs gophersat on clauses in DIMACS notation. The result holds the
// value of variable i at index i-1, or is nil if the clauses are
// unsatisfiable.
func solve(clauses [][]int) []bool {
	pb := solver.ParseSlice(clauses)
	switch pb.Status {
	case solver.Unsat:
		return nil
	case solver.Sat:
		// Unit propagation alone satisfied all clauses.
		res := make([]bool, pb.NbVars)
		for i, lvl := range pb.Model {
			res[i] = lvl > 0
		}
		return res
	}
	s := solver.New(pb)
	if s.Solve() != solver.Sat {
		return nil
	}
	return s.Model()
}

type encoding struct {
	problem *Problem
	clauses [][]int
	trivial bool // < set if decided without running the solver
	holds   bool // < the outcome of a trivial problem
	// literals holds per problem variable the SAT variable of each
	// candidate.
	literals map[string][]int
	numVars  int
	truth    int // < a SAT variable fixed to true, 0 until needed
}

func encode(problem *Problem) (*encoding, error) {
	res := &encoding{problem: problem, literals: map[string][]int{}}
	if len(problem.Domains) == 0 {
		res.trivial = true
		res.holds = All(problem.Constraints...).Eval(Model{})
		return res, nil
	}

	for _, domain := range problem.Domains {
		if len(domain.Candidates) == 0 {
			res.trivial = true
			return res, nil
		}
		literals := make([]int, 0, len(domain.Candidates))
		for range domain.Candidates {
			literals = append(literals, res.fresh())
		}
		res.literals[domain.Name] = literals
		res.exactlyOne(literals)
	}
	for _, cur := range problem.Constraints {
		cur = res.simplify(cur)
		if c, ok := cur.(Const); ok {
			if !c {
				res.trivial = true
				return res, nil
			}
			continue
		}
		lit, err := res.translate(cur)
		if err != nil {
			return nil, err
		}
		res.clauses = append(res.clauses, []int{lit})
	}
	return res, nil
}

func (e *encoding) fresh() int {
	e.numVars++
	return e.numVars
}

func (e *encoding) exactlyOne(literals []int) {
	e.clauses = append(e.clauses, append([]int(nil), literals...))
	for i := range literals {
		for j := i + 1; j < len(literals); j++ {
			e.clauses = append(e.clauses, []int{-literals[i], -literals[j]})
		}
	}
}

func (e *encoding) constant(value bool) int {
	if e.truth == 0 {
		e.truth = e.fresh()
		e.clauses = append(e.clauses, []int{e.truth})
	}
	if value {
		return e.truth
	}
	return -e.truth
}

// conjunction introduces a variable equivalent to the conjunction of the
// given literals.
func (e *encoding) conjunction(operands []int) int {
	res := e.fresh()
	back := []int{res}
	for _, cur := range operands {
		e.clauses = append(e.clauses, []int{-res, cur})
		back = append(back, -cur)
	}
	e.clauses = append(e.clauses, back)
	return res
}

// disjunction introduces a variable equivalent to the disjunction of the
// given literals.
func (e *encoding) disjunction(operands []int) int {
	res := e.fresh()
	forth := []int{-res}
	for _, cur := range operands {
		e.clauses = append(e.clauses, []int{res, -cur})
		forth = append(forth, cur)
	}
	e.clauses = append(e.clauses, forth)
	return res
}

// translate produces a literal equivalent to the given formula.
func (e *encoding) translate(f Formula) (int, error) {
	switch f := f.(type) {
	case *Pred:
		domain, found := e.problem.Domain(f.Variable)
		if !found {
			return 0, fmt.Errorf("%w: undeclared variable %s", ErrSolver, f.Variable)
		}
		options := []int{}
		for i, value := range domain.Candidates {
			if f.Relation.Holds(value, f.Constant) {
				options = append(options, e.literals[f.Variable][i])
			}
		}
		switch len(options) {
		case 0:
			return e.constant(false), nil
		case 1:
			return options[0], nil
		}
		return e.disjunction(options), nil
	case *Conj:
		operands, err := e.translateAll(f.Operands)
		if err != nil {
			return 0, err
		}
		return e.conjunction(operands), nil
	case *Disj:
		operands, err := e.translateAll(f.Operands)
		if err != nil {
			return 0, err
		}
		return e.disjunction(operands), nil
	case *Neg:
		operand, err := e.translate(f.Operand)
		if err != nil {
			return 0, err
		}
		return -operand, nil
	case *Equiv:
		lhs, err := e.translate(f.Lhs)
		if err != nil {
			return 0, err
		}
		rhs, err := e.translate(f.Rhs)
		if err != nil {
			return 0, err
		}
		res := e.fresh()
		e.clauses = append(e.clauses,
			[]int{-res, -lhs, rhs},
			[]int{-res, lhs, -rhs},
			[]int{res, lhs, rhs},
			[]int{res, -lhs, -rhs},
		)
		return res, nil
	case Const:
		return e.constant(bool(f)), nil
	}
	return 0, fmt.Errorf("%w: unsupported formula %T", ErrSolver, f)
}

func (e *encoding) translateAll(formulas []Formula) ([]int, error) {
	res := make([]int, 0, len(formulas))
	for _, cur := range formulas {
		lit, err := e.translate(cur)
		if err != nil {
			return nil, err
		}
		res = append(res, lit)
	}
	return res, nil
}

// simplify folds predicates that hold for all or none of the candidates of
// their variable into constants.
func (e *encoding) simplify(f Formula) Formula {
	switch f := f.(type) {
	case *Pred:
		domain, found := e.problem.Domain(f.Variable)
		if !found {
			return f // < reported by translate
		}
		holds := 0
		for _, value := range domain.Candidates {
			if f.Relation.Holds(value, f.Constant) {
				holds++
			}
		}
		switch holds {
		case 0:
			return False
		case len(domain.Candidates):
			return True
		}
		return f
	case *Conj:
		operands := make([]Formula, 0, len(f.Operands))
		for _, cur := range f.Operands {
			operands = append(operands, e.simplify(cur))
		}
		return All(operands...)
	case *Disj:
		operands := make([]Formula, 0, len(f.Operands))
		for _, cur := range f.Operands {
			operands = append(operands, e.simplify(cur))
		}
		return Any(operands...)
	case *Neg:
		return Not(e.simplify(f.Operand))
	case *Equiv:
		lhs, rhs := e.simplify(f.Lhs), e.simplify(f.Rhs)
		if c, ok := lhs.(Const); ok {
			lhs, rhs = rhs, c
		}
		if c, ok := rhs.(Const); ok {
			if c {
				return lhs
			}
			return Not(lhs)
		}
		return Iff(lhs, rhs)
	}
	return f
}

func (e *encoding) decode(assignment []bool) (Model, error) {
	res := make(Model, len(e.problem.Domains))
	for _, domain := range e.problem.Domains {
		for i, lit := range e.literals[domain.Name] {
			if lit <= len(assignment) && assignment[lit-1] {
				res[domain.Name] = domain.Candidates[i]
				break
			}
		}
		if _, found := res[domain.Name]; !found {
			return nil, fmt.Errorf("%w: no candidate selected for %s", ErrSolver, domain.Name)
		}
	}
	return res, nil
}
