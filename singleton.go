// Copyright (c) 2022 Ilya Toropchenko <eliastor@users.noreply.github.com>
//
// Use if this source code is covered by an MIT-style
// license that can be found in the LICENSE file

package pbb

import (
	"fmt"
	"os"
	"strconv"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// EnvDefaultWorkers is the environment variable that overrides the
// hardware-reported parallelism used by Default's pool, read once on first
// access. Zero or unset means "use the hardware default"; a negative value
// is rejected.
const EnvDefaultWorkers = "PBB_DEFAULT_WORKERS"

var (
	defaultPool  atomic.Pointer[Pool]
	defaultErr   atomic.Pointer[error]
	defaultGroup singleflight.Group
)

// Default returns the process-wide default Pool, constructing it (and
// spawning its workers) on the first call. The worker count is fixed by
// PBB_DEFAULT_WORKERS at that point and cannot change afterward. Default
// panics if PBB_DEFAULT_WORKERS is set to a value that is not an integer or
// to a negative integer - the only ways this external collaborator can
// fail, and a programming/deployment
// error rather than a runtime condition callers are expected to recover
// from.
//
// Default is itself outside pbb's core (spec.md §1): it is ergonomics over
// NewPool, not a new concurrency mechanism. Concurrent first-touch callers
// are deduplicated by singleflight, which shares the one construction
// attempt's result - success or failure - with every caller that joined
// while it was in flight; the result is then cached so later callers never
// re-enter singleflight at all.
func Default() *Pool {
	if p := defaultPool.Load(); p != nil {
		return p
	}
	if e := defaultErr.Load(); e != nil {
		panic(*e)
	}

	v, err, _ := defaultGroup.Do("default", func() (any, error) {
		n, perr := defaultWorkerCountFromEnv()
		if perr != nil {
			return nil, perr
		}
		return NewPool(n), nil
	})
	if err != nil {
		defaultErr.Store(&err)
		panic(err)
	}
	p := v.(*Pool)
	defaultPool.Store(p)
	return p
}

func defaultWorkerCountFromEnv() (int, error) {
	raw := os.Getenv(EnvDefaultWorkers)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("pbb: invalid %s=%q: %w", EnvDefaultWorkers, raw, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("pbb: %s must not be negative, got %d", EnvDefaultWorkers, n)
	}
	return n, nil
}
