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
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/Fantom-foundation/Certa/go/mcdc/cat"
	"github.com/Fantom-foundation/Certa/go/mcdc/cnd"
	"github.com/Fantom-foundation/Certa/go/mcdc/dom"
	"github.com/Fantom-foundation/Certa/go/mcdc/obl"
	"github.com/Fantom-foundation/Certa/go/mcdc/rcn"
	"github.com/Fantom-foundation/Certa/go/mcdc/slv"
	"github.com/Fantom-foundation/Certa/go/mcdc/vec"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Options control the generation of test suites.
type Options struct {
	Policy obl.Policy
	// Jobs is the number of obligations solved in parallel.
	Jobs int
	// Alternatives is the maximum number of pairs collected per obligation
	// for the minimization of the suite.
	Alternatives int
	// ProgressInterval is the period of progress log messages. Progress is
	// not logged if zero.
	ProgressInterval time.Duration
}

func DefaultOptions() Options {
	return Options{
		Policy:           obl.UniqueCause,
		Jobs:             runtime.NumCPU(),
		Alternatives:     4,
		ProgressInterval: 5 * time.Second,
	}
}

// Engine generates MC/DC test suites for the decisions of a catalog.
type Engine struct {
	oracle  slv.Oracle
	options Options
}

// New creates an engine solving obligations with the given oracle. The
// oracle is called concurrently if more than one job is configured.
func New(oracle slv.Oracle, options Options) *Engine {
	if options.Jobs <= 0 {
		options.Jobs = runtime.NumCPU()
	}
	if options.Alternatives <= 0 {
		options.Alternatives = 1
	}
	return &Engine{oracle: oracle, options: options}
}

// PlannedDecision is a resolved decision of a module with its obligations.
type PlannedDecision struct {
	Module      *cat.Module
	Source      cat.Decision
	Decision    *cnd.Decision
	Obligations []*obl.Obligation
}

// Plan is the outcome of the planning stage of a run.
type Plan struct {
	Decisions []*PlannedDecision
	// Failures lists the decisions that could not be built.
	Failures []Entry
}

// Plan resolves all decisions of the catalog and derives their obligations.
// Decisions failing to resolve are reported and skipped; they do not affect
// other decisions.
func (e *Engine) Plan(run *RunContext, catalog *cat.Catalog) *Plan {
	res := &Plan{}
	for _, module := range catalog.Modules {
		builder := cnd.NewBuilder(catalog.Domain)
		for _, source := range module.Decisions {
			var decision *cnd.Decision
			err := source.Err
			if err == nil {
				decision, err = builder.BuildText(source.ID, source.Text)
			}
			if err != nil {
				run.Log.Warn("skipping decision",
					zap.String("module", module.Name),
					zap.String("decision", source.ID),
					zap.Error(err),
				)
				run.Stats.Errored.Add(1)
				res.Failures = append(res.Failures, Entry{
					Requirement: module.Requirement,
					Module:      module.Name,
					Decision:    source.ID,
					Text:        source.Text,
					Status:      Errored,
					Err:         err,
				})
				continue
			}
			obligations := obl.Plan(decision, e.options.Policy)
			run.Stats.Decisions.Add(1)
			run.Stats.Obligations.Add(int64(len(obligations)))
			run.Log.Debug("planned decision",
				zap.String("decision", decision.ID),
				zap.Stringer("root", decision.Root),
				zap.Int("obligations", len(obligations)),
			)
			res.Decisions = append(res.Decisions, &PlannedDecision{
				Module:      module,
				Source:      source,
				Decision:    decision,
				Obligations: obligations,
			})
		}
	}
	return res
}

// DecisionSuite is the test suite generated for a decision.
type DecisionSuite struct {
	Module *cat.Module
	Source cat.Decision
	Suite  *vec.Suite
}

// Output is the result of a generation run.
type Output struct {
	Suites   []*DecisionSuite
	Records  []*rcn.Record
	Coverage *Report
}

type outcome struct {
	pairs  []*vec.Pair
	status Status
	err    error
}

type job struct {
	decision   int
	obligation int
}

// Generate plans and solves the obligations of all decisions in the catalog
// and assembles a minimal suite per decision. Abnormal outcomes of single
// obligations are recorded in the coverage report; an error is only
// returned if the context is cancelled.
func (e *Engine) Generate(ctx context.Context, run *RunContext, catalog *cat.Catalog) (*Output, error) {
	plan := e.Plan(run, catalog)

	jobs := []job{}
	outcomes := make([][]outcome, len(plan.Decisions))
	for i, planned := range plan.Decisions {
		outcomes[i] = make([]outcome, len(planned.Obligations))
		for j := range planned.Obligations {
			jobs = append(jobs, job{decision: i, obligation: j})
		}
	}

	run.Log.Info("solving obligations",
		zap.Int("decisions", len(plan.Decisions)),
		zap.Int("obligations", len(jobs)),
		zap.Stringer("policy", e.options.Policy),
		zap.Int("jobs", e.options.Jobs),
	)
	stop := startProgress(run, e.options.ProgressInterval, len(jobs))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(e.options.Jobs)
	for _, cur := range jobs {
		cur := cur
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			o := plan.Decisions[cur.decision].Obligations[cur.obligation]
			outcomes[cur.decision][cur.obligation] = e.solve(groupCtx, run, o)
			run.Stats.Solved.Add(1)
			return nil
		})
	}
	err := group.Wait()
	stop()
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		return nil, err
	}

	type key struct{ module, decision string }
	planned := map[key]int{}
	for i, cur := range plan.Decisions {
		planned[key{cur.Module.Name, cur.Source.ID}] = i
	}
	failed := map[key]Entry{}
	for _, failure := range plan.Failures {
		failed[key{failure.Module, failure.Decision}] = failure
	}

	res := &Output{Coverage: &Report{}}
	for _, module := range catalog.Modules {
		for _, source := range module.Decisions {
			if failure, found := failed[key{module.Name, source.ID}]; found {
				res.Coverage.Entries = append(res.Coverage.Entries, failure)
				continue
			}
			i, found := planned[key{module.Name, source.ID}]
			if !found {
				continue
			}
			suite := e.assemble(run, plan.Decisions[i], outcomes[i], res.Coverage)
			res.Suites = append(res.Suites, &DecisionSuite{
				Module: module,
				Source: source,
				Suite:  suite,
			})
			res.Records = append(res.Records, Records(module, source, suite)...)
		}
	}

	run.Log.Info("generation finished",
		zap.Stringer("coverage", res.Coverage.Summary()),
		zap.Int("records", len(res.Records)),
		zap.Stringer("stats", &run.Stats),
	)
	return res, nil
}

// solve collects up to the configured number of alternative pairs for an
// obligation. Only the first solver call decides on the obligation's
// status; failures while looking for further alternatives end the search.
func (e *Engine) solve(ctx context.Context, run *RunContext, o *obl.Obligation) outcome {
	if o.Infeasible != nil {
		return outcome{status: Unsatisfiable, err: o.Infeasible}
	}

	// Alternatives are excluded from a private copy of the problem.
	scratch := *o
	scratch.Problem = o.Problem.Clone()

	res := outcome{status: Discharged}
	for len(res.pairs) < e.options.Alternatives {
		model, err := e.oracle.Check(ctx, scratch.Problem)
		run.Stats.SolverCalls.Add(1)
		if err == nil {
			var pair *vec.Pair
			pair, err = vec.Resolve(o, model)
			if err == nil {
				res.pairs = append(res.pairs, pair)
				scratch.Block(model)
				continue
			}
		}
		if len(res.pairs) > 0 {
			if !errors.Is(err, slv.ErrUnsatisfiable) {
				run.Log.Debug("search for alternatives aborted",
					zap.String("obligation", o.ID()),
					zap.Error(err),
				)
			}
			break
		}
		if errors.Is(err, slv.ErrUnsatisfiable) {
			return outcome{status: Unsatisfiable, err: fmt.Errorf("%w: %v: %w", obl.ErrUnsatisfiableObligation, o, err)}
		}
		run.Log.Warn("obligation failed",
			zap.String("obligation", o.ID()),
			zap.Error(err),
		)
		return outcome{status: Errored, err: fmt.Errorf("%v: %w", o, err)}
	}
	return res
}

// assemble selects the suite of a decision and records the coverage of its
// obligations.
func (e *Engine) assemble(run *RunContext, planned *PlannedDecision, outcomes []outcome, report *Report) *vec.Suite {
	alternatives := make([][]*vec.Pair, len(outcomes))
	for i, cur := range outcomes {
		alternatives[i] = cur.pairs
	}
	suite := vec.Select(planned.Decision, alternatives)

	for i, o := range planned.Obligations {
		entry := Entry{
			Requirement: planned.Module.Requirement,
			Module:      planned.Module.Name,
			Decision:    planned.Decision.ID,
			Text:        planned.Decision.Text,
			Condition:   o.Condition.ID,
			Status:      outcomes[i].status,
			Err:         outcomes[i].err,
		}
		switch entry.Status {
		case Discharged:
			entry.Pair, _ = suite.Pair(o.Condition.ID)
			run.Stats.Discharged.Add(1)
		case Unsatisfiable:
			run.Stats.Unsatisfiable.Add(1)
		case Errored:
			run.Stats.Errored.Add(1)
		}
		report.Entries = append(report.Entries, entry)
	}
	return suite
}

// Records converts the vectors of a suite into test case records, one per
// vector. The vector id serves as the case label.
func Records(module *cat.Module, source cat.Decision, suite *vec.Suite) []*rcn.Record {
	res := make([]*rcn.Record, 0, len(suite.Vectors))
	for _, vector := range suite.Vectors {
		record := &rcn.Record{
			Key: rcn.Key{
				Requirement: module.Requirement,
				Module:      module.Name,
				Case:        vector.ID,
			},
			Precondition: module.Precondition,
			Condition:    source.Text,
			Inputs:       map[string]string{},
			Expected:     rcn.Expect(vector.Outcome),
			Result:       source.FalseResult,
			Provenance:   append([]string(nil), vector.Discharges...),
		}
		if vector.Outcome {
			record.Result = source.TrueResult
		}
		for _, input := range vector.Inputs() {
			record.Inputs[input.Name] = input.Value
		}
		res = append(res, record)
	}
	return res
}

// Reconcile matches generated and external records against the modules and
// constants of the catalog. Rows are fed in the given order.
func Reconcile(run *RunContext, catalog *cat.Catalog, policy rcn.ConflictPolicy, rows ...[]*rcn.Record) *rcn.Result {
	var modules []rcn.Module
	var constants map[string]dom.Value
	if catalog != nil {
		for _, module := range catalog.Modules {
			modules = append(modules, rcn.Module{
				Name:        module.Name,
				Requirement: module.Requirement,
				Branches:    module.Branches,
			})
		}
		constants = catalog.Domain.Constants()
	}
	reconciler := rcn.NewReconciler(modules, constants, policy)
	for _, list := range rows {
		for _, row := range list {
			reconciler.Add(row)
		}
	}
	res := reconciler.Finish()
	for _, defect := range res.Defects {
		run.Log.Warn("defective test case",
			zap.Stringer("key", defect.Key),
			zap.Stringer("state", defect.State),
			zap.Error(defect.Err),
		)
	}
	run.Log.Info("reconciliation finished",
		zap.Int("records", len(res.Records)),
		zap.Int("defects", len(res.Defects)),
	)
	return res
}
