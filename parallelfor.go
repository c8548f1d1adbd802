// Copyright (c) 2022 Ilya Toropchenko <eliastor@users.noreply.github.com>
//
// Use if this source code is covered by an MIT-style
// license that can be found in the LICENSE file

package pbb

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Functor is the per-chunk callable ParallelFor dispatches. Acc is the
// caller-chosen per-worker accumulator type, zero-valued on first touch by
// each worker that runs a chunk of this functor.
type Functor[Acc any] interface {
	Run(begin, end int, acc *Acc)
}

// FunctorFunc adapts a plain function to the Functor interface, the same
// way http.HandlerFunc adapts a function to http.Handler. A FunctorFunc
// never exposes Initialize or Reduce.
type FunctorFunc[Acc any] func(begin, end int, acc *Acc)

// Run implements Functor.
func (f FunctorFunc[Acc]) Run(begin, end int, acc *Acc) { f(begin, end, acc) }

// Initializer is implemented by a Functor that needs a per-worker setup
// step, run on a worker strictly before that worker's first Run (and again
// if the worker processed an envelope of another key in between).
// Presence is detected with a type assertion, the Go analogue of the
// source material's compile-time trait detection.
type Initializer interface {
	Initialize() error
}

// Reducer is implemented by a Functor that wants a single final reduction
// step, invoked on the calling goroutine once every chunk has completed
// without error, over every worker's accumulator in first-touch order.
type Reducer[Acc any] interface {
	Reduce(workers []*Acc)
}

// AggregateError collects every per-chunk failure from a ParallelFor call,
// in chunk submission order. It is never empty when returned.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		parts[i] = err.Error()
	}
	return fmt.Sprintf("pbb: %d chunk(s) failed: %s", len(e.Errors), strings.Join(parts, "; "))
}

// ParallelFor slices [begin, end) into at most maxChunks chunks (maxChunks
// <= 0 means "one chunk per worker"), submits one envelope per non-empty
// chunk to pool, waits on every handle without short-circuiting on the
// first failure, and - only if every chunk succeeded - invokes f's Reduce
// exactly once on the calling goroutine. An empty range returns nil
// without invoking Run or Reduce.
func ParallelFor[Acc any](pool *Pool, begin, end int, f Functor[Acc], maxChunks int) error {
	if end <= begin {
		return nil
	}

	chunks := pool.NumWorkers()
	if maxChunks > 0 && maxChunks < chunks {
		chunks = maxChunks
	}
	total := end - begin
	chunkSize := (total + chunks - 1) / chunks

	type span struct{ begin, end int }
	var spans []span
	for i := 0; i < chunks; i++ {
		chunkBegin := begin + i*chunkSize
		chunkEnd := chunkBegin + chunkSize
		if chunkEnd > end {
			chunkEnd = end
		}
		if chunkBegin < chunkEnd {
			spans = append(spans, span{chunkBegin, chunkEnd})
		}
	}

	locals := NewWorkerLocal[Acc]()

	// callKey must be a value pool.go can safely use as a map key and in a
	// != comparison (pool.go's worker loop does both). f's own dynamic type
	// is whatever the caller chose - a *struct works, but a plain func value
	// (e.g. FunctorFunc) is not comparable and panics on first use. A fresh
	// *int minted per call is always comparable and always unique.
	callKey := new(int)
	if init, ok := f.(Initializer); ok {
		pool.RegisterInitialize(callKey, init.Initialize)
		defer pool.RemoveInitialize(callKey)
	}

	handles := make([]*ResultHandle[struct{}], len(spans))
	for i, sp := range spans {
		sp := sp
		handles[i] = submitChunk(pool, callKey, func(id workerID) error {
			f.Run(sp.begin, sp.end, locals.Local(id))
			return nil
		})
	}

	// Wait on every handle concurrently, without short-circuiting: each
	// goroutine only ever returns nil to errgroup.Group, recording its own
	// chunk's real error (if any) into errs by index instead, so the full
	// set of failures - not just the first - survives to aggregation.
	errs := make([]error, len(handles))
	var g errgroup.Group
	for i, h := range handles {
		i, h := i, h
		g.Go(func() error {
			if _, err := h.Get(context.Background()); err != nil {
				errs[i] = err
			}
			return nil
		})
	}
	_ = g.Wait()

	var collected []error
	for _, err := range errs {
		if err != nil {
			collected = append(collected, err)
		}
	}
	if len(collected) > 0 {
		return &AggregateError{Errors: collected}
	}

	if r, ok := f.(Reducer[Acc]); ok {
		mu := locals.Mutex()
		mu.RLock()
		r.Reduce(locals.Registry())
		mu.RUnlock()
	}

	return nil
}
