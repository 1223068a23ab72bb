// Package respool provides a fixed-capacity pool mapping integer handles to
// values. A sparse set tracks the live handles while a parallel dense slice
// holds the values, so insert, erase, and lookup are O(1) and the pool never
// allocates after construction.
package respool

import (
	"errors"

	"github.com/etclab/oramstore/container/sparseset"
)

var (
	ErrCapacityExceeded = errors.New("respool: capacity exceeded")
	ErrKeyNotFound      = errors.New("respool: handle not found")
)

// Pool associates handles from a fixed universe with values of type V.
// The value slice mirrors the sparse set's dense array: erasing a handle
// swaps its value with the last live value.
type Pool[V any] struct {
	handles *sparseset.Set
	values  []V
}

// New creates a pool for handles in [0, universe) holding at most capacity
// live entries.
func New[V any](universe, capacity int) *Pool[V] {
	set := sparseset.NewWithCapacity(universe, capacity)
	return &Pool[V]{
		handles: set,
		values:  make([]V, set.Cap()),
	}
}

// Emplace associates h with v. If h is already live its value is left
// untouched and created is false. Returns ErrCapacityExceeded when the pool
// is full.
func (p *Pool[V]) Emplace(h uint32, v V) (created bool, err error) {
	slot, created, err := p.EmplaceEmpty(h)
	if err != nil {
		return false, err
	}
	if created {
		*slot = v
	}
	return created, nil
}

// EmplaceEmpty locates h's value slot, inserting h with a zero value if it is
// not yet live. The returned pointer stays valid until the next Erase or
// Clear.
func (p *Pool[V]) EmplaceEmpty(h uint32) (slot *V, created bool, err error) {
	if idx, ok := p.handles.IndexOf(h); ok {
		return &p.values[idx], false, nil
	}
	if !p.handles.Insert(h) {
		return nil, false, ErrCapacityExceeded
	}
	idx := p.handles.Len() - 1
	var zero V
	p.values[idx] = zero
	return &p.values[idx], true, nil
}

// At returns a pointer to h's value, or ErrKeyNotFound if h is not live.
func (p *Pool[V]) At(h uint32) (*V, error) {
	idx, ok := p.handles.IndexOf(h)
	if !ok {
		return nil, ErrKeyNotFound
	}
	return &p.values[idx], nil
}

// Contains reports whether h is live.
func (p *Pool[V]) Contains(h uint32) bool {
	return p.handles.Contains(h)
}

// Erase removes h and its value, keeping the value slice in lockstep with the
// handle set's swap-with-last discipline. It reports whether h was live.
func (p *Pool[V]) Erase(h uint32) bool {
	idx, ok := p.handles.IndexOf(h)
	if !ok {
		return false
	}
	last := p.handles.Len() - 1
	p.values[idx] = p.values[last]
	var zero V
	p.values[last] = zero
	return p.handles.Erase(h)
}

// Clear removes every entry.
func (p *Pool[V]) Clear() {
	var zero V
	for i := 0; i < p.handles.Len(); i++ {
		p.values[i] = zero
	}
	p.handles.Clear()
}

// Handles returns the live handles as a view into the dense array. The view
// is invalidated by Emplace and Erase. Reverse iteration tolerates erasure of
// the current handle.
func (p *Pool[V]) Handles() []uint32 {
	return p.handles.Values()
}

// Len returns the number of live entries.
func (p *Pool[V]) Len() int {
	return p.handles.Len()
}

// Cap returns the maximum number of live entries.
func (p *Pool[V]) Cap() int {
	return p.handles.Cap()
}

// Empty reports whether the pool has no entries.
func (p *Pool[V]) Empty() bool {
	return p.handles.Empty()
}
