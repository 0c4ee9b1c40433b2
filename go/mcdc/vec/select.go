// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package vec

import (
	"fmt"
	"slices"

	"github.com/Fantom-foundation/Certa/go/mcdc/cnd"
)

// Suite is the test suite of a decision. Every pair refers to vectors of the
// suite; a vector may be a member of pairs of several obligations.
type Suite struct {
	Decision *cnd.Decision
	Vectors  []*Vector
	Pairs    []*Pair
}

// Pair looks up the pair discharging the obligation of the given condition.
func (s *Suite) Pair(condition cnd.ConditionID) (*Pair, bool) {
	for _, cur := range s.Pairs {
		if cur.Obligation.Condition.ID == condition {
			return cur, true
		}
	}
	return nil, false
}

// maxSearchSteps limits the exact search of Select. Beyond it, the best
// choice found so far is used.
const maxSearchSteps = 1 << 20

// Select assembles a suite from alternative pairs per obligation, choosing
// exactly one pair for each obligation such that the number of distinct
// vectors is minimal. Obligations without alternatives are skipped. Vectors
// are numbered in order of first use, the true member of a pair first.
func Select(decision *cnd.Decision, alternatives [][]*Pair) *Suite {
	candidates := [][]*Pair{}
	for _, cur := range alternatives {
		if len(cur) > 0 {
			candidates = append(candidates, cur)
		}
	}

	chosen := make([]int, len(candidates))
	usage := map[string]int{}
	use := func(p *Pair, delta int) {
		usage[p.True.Key()] += delta
		usage[p.False.Key()] += delta
	}
	cost := func(p *Pair) int {
		res := 0
		if usage[p.True.Key()] == 0 {
			res++
		}
		if usage[p.False.Key()] == 0 {
			res++
		}
		return res
	}

	// Greedy initial choice, followed by local improvements until no single
	// obligation can switch to a pair adding fewer vectors.
	for i, options := range candidates {
		chosen[i] = cheapest(options, cost, 0)
		use(options[chosen[i]], 1)
	}
	for round := 0; round < len(candidates); round++ {
		changed := false
		for i, options := range candidates {
			use(options[chosen[i]], -1)
			next := cheapest(options, cost, chosen[i])
			if next != chosen[i] {
				chosen[i] = next
				changed = true
			}
			use(options[chosen[i]], 1)
		}
		if !changed {
			break
		}
	}

	// Branch and bound over all combinations, starting with the improved
	// greedy choice as the bound. Ties keep the earlier choice.
	best, bound := slices.Clone(chosen), 0
	for _, count := range usage {
		if count > 0 {
			bound++
		}
	}
	clear(usage)
	current := make([]int, len(candidates))
	distinct, steps := 0, 0
	var search func(i int)
	search = func(i int) {
		if steps >= maxSearchSteps {
			return
		}
		steps++
		if i == len(candidates) {
			if distinct < bound {
				bound = distinct
				copy(best, current)
			}
			return
		}
		for j, option := range candidates[i] {
			added := cost(option)
			if distinct+added >= bound {
				continue
			}
			current[i] = j
			use(option, 1)
			distinct += added
			search(i + 1)
			use(option, -1)
			distinct -= added
		}
	}
	search(0)
	chosen = best

	res := &Suite{Decision: decision}
	index := map[string]*Vector{}
	intern := func(v *Vector, obligation string) *Vector {
		key := v.Key()
		existing, found := index[key]
		if !found {
			existing = &Vector{
				ID:       fmt.Sprintf("%s#%d", decision.ID, len(res.Vectors)+1),
				Decision: v.Decision,
				Values:   v.Values,
				Truth:    v.Truth,
				Outcome:  v.Outcome,
			}
			index[key] = existing
			res.Vectors = append(res.Vectors, existing)
		}
		existing.Discharges = append(existing.Discharges, obligation)
		return existing
	}
	for i, options := range candidates {
		p := options[chosen[i]]
		id := p.Obligation.ID()
		res.Pairs = append(res.Pairs, &Pair{
			Obligation: p.Obligation,
			True:       intern(p.True, id),
			False:      intern(p.False, id),
		})
	}
	return res
}

// cheapest picks the option of minimal cost, preferring the current one and
// otherwise the earliest among equally cheap options.
func cheapest(options []*Pair, cost func(*Pair) int, current int) int {
	res, best := current, cost(options[current])
	for i, option := range options {
		if c := cost(option); c < best {
			res, best = i, c
		}
	}
	return res
}
