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

//go:generate mockgen -source oracle.go -destination oracle_mock.go -package slv

import (
	"context"
	"errors"

	"github.com/Fantom-foundation/Certa/go/mcdc/common"
)

const (
	ErrUnsatisfiable = common.ConstErr("unsatisfiable")
	ErrSolver        = common.ConstErr("solver error")
	ErrSolverTimeout = common.ConstErr("solver timeout")
)

// Oracle decides the satisfiability of a Problem. If satisfiable, a model
// assigning a candidate value to every declared variable is returned. An
// unsatisfiable problem yields ErrUnsatisfiable; failures of the underlying
// decision procedure are reported as ErrSolver or ErrSolverTimeout.
type Oracle interface {
	Check(ctx context.Context, problem *Problem) (Model, error)
}

// IsSolverFailure reports whether the error is an abnormal solver outcome,
// as opposed to a regular answer.
func IsSolverFailure(err error) bool {
	return errors.Is(err, ErrSolver) || errors.Is(err, ErrSolverTimeout)
}

// RetryingOracle repeats a failed check exactly once, using a fresh oracle
// obtained from the factory.
type RetryingOracle struct {
	factory func() Oracle
}

func NewRetryingOracle(factory func() Oracle) *RetryingOracle {
	return &RetryingOracle{factory: factory}
}

func (o *RetryingOracle) Check(ctx context.Context, problem *Problem) (Model, error) {
	model, err := o.factory().Check(ctx, problem)
	if !IsSolverFailure(err) || ctx.Err() != nil {
		return model, err
	}
	model, retryErr := o.factory().Check(ctx, problem)
	if IsSolverFailure(retryErr) {
		return nil, errors.Join(err, retryErr)
	}
	return model, retryErr
}
