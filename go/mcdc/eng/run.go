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
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RunContext carries the state shared by all stages of a single generation
// run. Runs do not share any state, such that several runs may be executed
// side by side.
type RunContext struct {
	ID    string
	Log   *zap.Logger
	Stats Stats
}

// NewRunContext creates a context with a fresh run id. A nil logger
// disables logging.
func NewRunContext(log *zap.Logger) *RunContext {
	if log == nil {
		log = zap.NewNop()
	}
	id := uuid.NewString()
	return &RunContext{
		ID:  id,
		Log: log.With(zap.String("run", id)),
	}
}

// Stats are the counters of a run. They may be updated concurrently.
type Stats struct {
	Decisions     atomic.Int64
	Obligations   atomic.Int64
	SolverCalls   atomic.Int64
	Solved        atomic.Int64 // < obligations processed by the solving stage
	Discharged    atomic.Int64
	Unsatisfiable atomic.Int64
	Errored       atomic.Int64
}

func (s *Stats) String() string {
	return fmt.Sprintf(
		"decisions %d, obligations %d, solver calls %d, discharged %d, unsatisfiable %d, errored %d",
		s.Decisions.Load(), s.Obligations.Load(), s.SolverCalls.Load(),
		s.Discharged.Load(), s.Unsatisfiable.Load(), s.Errored.Load(),
	)
}
