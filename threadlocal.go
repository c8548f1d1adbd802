// Copyright (c) 2022 Ilya Toropchenko <eliastor@users.noreply.github.com>
//
// Use if this source code is covered by an MIT-style
// license that can be found in the LICENSE file

package pbb

import "sync"

// workerID identifies one of a Pool's fixed worker goroutines. Go has no
// goroutine-local storage, so a worker's identity is its index, assigned at
// spawn time and threaded explicitly through envelope handling rather than
// recovered from the runtime.
type workerID int

// WorkerLocal maps worker identity to an owned, cache-line-padded T,
// lazily constructed on first touch. Registry() exposes every live T, in
// the order workers first touched the structure, for use by a reducer once
// every worker's task has completed - mirrors PBB::SafeThreadLocal.
type WorkerLocal[T any] struct {
	mu    sync.RWMutex
	cells map[workerID]*cacheAlignedCell[T]
	order []*T
}

// NewWorkerLocal constructs an empty registry.
func NewWorkerLocal[T any]() *WorkerLocal[T] {
	return &WorkerLocal[T]{cells: make(map[workerID]*cacheAlignedCell[T])}
}

// Local returns the T owned by worker id, constructing it (zero-valued) on
// first call for that worker. Subsequent calls from the same worker id
// always return the same *T.
func (w *WorkerLocal[T]) Local(id workerID) *T {
	w.mu.RLock()
	if c, ok := w.cells[id]; ok {
		w.mu.RUnlock()
		return c.get()
	}
	w.mu.RUnlock()

	w.mu.Lock()
	defer w.mu.Unlock()
	// double-check: another goroutine may have inserted id concurrently
	if c, ok := w.cells[id]; ok {
		return c.get()
	}
	c := new(cacheAlignedCell[T])
	w.cells[id] = c
	w.order = append(w.order, c.get())
	return c.get()
}

// Mutex exposes the registration/reduction mutex. A caller must hold it for
// the duration of any call to Registry, per the contract the dispatcher
// relies on for its happens-before guarantee.
func (w *WorkerLocal[T]) Mutex() *sync.RWMutex { return &w.mu }

// Registry returns every live *T, in first-touch order. The caller must
// hold Mutex() for the duration of use.
func (w *WorkerLocal[T]) Registry() []*T { return w.order }

// Len reports the number of distinct workers that have ever called Local.
func (w *WorkerLocal[T]) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.order)
}
