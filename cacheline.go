// Copyright (c) 2022 Ilya Toropchenko <eliastor@users.noreply.github.com>
//
// Use if this source code is covered by an MIT-style
// license that can be found in the LICENSE file

package pbb

import "golang.org/x/sys/cpu"

// cacheAlignedCell holds one T padded so that successive cells in a slice
// never share a CPU cache line, avoiding false sharing between workers that
// concurrently write to neighboring per-worker accumulators. Mirrors
// PBB::CacheAlignedCell from the source material; cpu.CacheLinePad is the
// Go ecosystem's standard padding primitive for this.
type cacheAlignedCell[T any] struct {
	v T
	_ cpu.CacheLinePad
}

func (c *cacheAlignedCell[T]) get() *T { return &c.v }
