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
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/crypto/sha3"
)

// CachingOracle memoizes the answers of another oracle by the fingerprint
// of the checked problem. Models and unsatisfiability verdicts are cached;
// solver failures are not.
type CachingOracle struct {
	oracle Oracle
	cache  *lru.Cache[[32]byte, cachedAnswer]
	hits   atomic.Uint64
	misses atomic.Uint64
}

type cachedAnswer struct {
	model Model // < nil if unsatisfiable
}

func NewCachingOracle(oracle Oracle, size int) (*CachingOracle, error) {
	cache, err := lru.New[[32]byte, cachedAnswer](size)
	if err != nil {
		return nil, err
	}
	return &CachingOracle{oracle: oracle, cache: cache}, nil
}

func (o *CachingOracle) Check(ctx context.Context, problem *Problem) (Model, error) {
	key := sha3.Sum256([]byte(problem.String()))
	if answer, found := o.cache.Get(key); found {
		o.hits.Add(1)
		if answer.model == nil {
			return nil, ErrUnsatisfiable
		}
		return answer.model.Clone(), nil
	}
	o.misses.Add(1)

	model, err := o.oracle.Check(ctx, problem)
	switch {
	case err == nil:
		o.cache.Add(key, cachedAnswer{model: model.Clone()})
	case errors.Is(err, ErrUnsatisfiable):
		o.cache.Add(key, cachedAnswer{})
	}
	return model, err
}

// Stats returns the number of cache hits and misses.
func (o *CachingOracle) Stats() (hits, misses uint64) {
	return o.hits.Load(), o.misses.Load()
}
