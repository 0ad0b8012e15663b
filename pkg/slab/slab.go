// Package slab provides a fixed-capacity pool of uniformly sized records.
//
// A pool reserves its whole backing region up front, so after construction
// every Alloc and Free is O(1) with a small constant and no trips into the
// Go allocator. Record addresses are stable for the life of the pool, which
// lets intrusive data structures keep raw pointers between records.
//
// Clear resets the pool in O(1) without releasing the backing region; a
// workload that is replayed many times pays for its memory exactly once.
//
// A Pool is not safe for concurrent use and must not be copied after first
// use.
package slab

import (
	"fmt"

	"github.com/flier/gopq/internal/debug"
)

// noCopy triggers `go vet -copylocks` when a Pool is copied by value.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Pool hands out zeroed records of type T from a single contiguous backing
// slice. Freed records are recycled through a free list before the unused
// region is consumed.
type Pool[T any] struct {
	_ noCopy

	// Backing region; record addresses point into this slice.
	records []T

	// Records returned through Free, most recently freed last.
	free []*T

	// Index of the first as-of-yet-unused record.
	unused uint32
}

// New creates a pool with room for capacity records.
//
// The whole backing region is reserved immediately; the pool never grows.
func New[T any](capacity uint32) *Pool[T] {
	p := &Pool[T]{
		records: make([]T, capacity),
		free:    make([]*T, 0, capacity),
	}

	p.log("create", "capacity %d", capacity)

	return p
}

// Alloc returns a zeroed record.
//
// Records come from the free list when one is available, otherwise from the
// unused region. Alloc panics when the pool is exhausted: capacity is part
// of the pool's contract and running out means the caller's sizing was
// wrong.
func (p *Pool[T]) Alloc() *T {
	var rec *T

	if n := len(p.free); n > 0 {
		rec = p.free[n-1]
		p.free = p.free[:n-1]
	} else {
		if p.unused >= uint32(len(p.records)) {
			panic(fmt.Sprintf("slab: pool exhausted (capacity %d)", len(p.records)))
		}
		rec = &p.records[p.unused]
		p.unused++
	}

	var zero T
	*rec = zero

	p.log("alloc", "%p, free %d, unused %d", rec, len(p.free), p.unused)

	return rec
}

// Free returns rec to the pool.
//
// The record is not zeroed until it is handed out again. rec must have been
// returned by Alloc on this pool and must not be used after the call.
func (p *Pool[T]) Free(rec *T) {
	p.free = append(p.free, rec)

	p.log("free", "%p, free %d", rec, len(p.free))
}

// Clear invalidates every record handed out so far in O(1).
//
// The free list is emptied and the unused region rewound to the start of
// the backing slice. Previously issued record pointers must not be used
// afterwards: they will be handed out again.
func (p *Pool[T]) Clear() {
	p.free = p.free[:0]
	p.unused = 0

	p.log("clear", "capacity %d", len(p.records))
}

// Cap returns the number of records the pool was created with.
func (p *Pool[T]) Cap() uint32 {
	return uint32(len(p.records))
}

// Live returns the number of records currently allocated.
func (p *Pool[T]) Live() uint32 {
	return p.unused - uint32(len(p.free))
}

// Destroy releases the backing region.
//
// The pool must not be used afterwards.
func (p *Pool[T]) Destroy() {
	p.log("destroy", "capacity %d", len(p.records))

	p.records = nil
	p.free = nil
	p.unused = 0
}

func (p *Pool[T]) log(op, format string, args ...any) {
	if debug.Enabled {
		debug.Log([]any{"%p", p}, op, format, args...)
	}
}
