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
	"time"

	"github.com/dsnet/golib/unitconv"
	"go.uber.org/zap"
)

// startProgress periodically logs the number of solved obligations of a run
// until the returned function is called. A final message is logged when
// stopping.
func startProgress(run *RunContext, interval time.Duration, total int) (stop func()) {
	if interval <= 0 {
		return func() {}
	}

	done := make(chan struct{})
	printerDone := make(chan struct{})
	go func() {
		defer close(printerDone)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		startTime := time.Now()
		lastTime := startTime
		lastSolved := int64(0)

		report := func(now time.Time) {
			cur := run.Stats.Solved.Load()
			rate := 0.0
			if elapsed := now.Sub(lastTime).Seconds(); elapsed > 0 {
				rate = float64(cur-lastSolved) / elapsed
			}
			lastTime = now
			lastSolved = cur

			relativeTime := now.Sub(startTime)
			run.Log.Info("progress",
				zap.String("t", fmt.Sprintf("%d:%02d", int(relativeTime.Seconds())/60, int(relativeTime.Seconds())%60)),
				zap.String("rate", unitconv.FormatPrefix(rate, unitconv.SI, 0)+"/s"),
				zap.Int64("solved", cur),
				zap.Int("total", total),
				zap.Int64("solver_calls", run.Stats.SolverCalls.Load()),
			)
		}

		for {
			select {
			case <-done:
				report(time.Now())
				return
			case now := <-ticker.C:
				report(now)
			}
		}
	}()

	return func() {
		close(done)
		<-printerDone
	}
}
