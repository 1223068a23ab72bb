// Package sparseset implements a bounded-universe membership set with O(1)
// insert, erase, and lookup. Values live in a compact dense array, so the
// structure performs no allocation after construction and iteration touches
// only live elements.
package sparseset

// Set holds unsigned values from a fixed universe [0, Universe).
// At most Cap values are live at once.
//
// Two parallel arrays back the set: dense[0:size] holds the live values and
// sparse[v] holds v's position in dense. Membership is verified by the
// dense[sparse[v]] == v round trip, which tolerates stale sparse entries
// left behind by Clear.
type Set struct {
	dense  []uint32
	sparse []uint32
	size   int
}

// New creates a set over the universe [0, universe) with dense capacity equal
// to the universe size.
func New(universe int) *Set {
	return NewWithCapacity(universe, universe)
}

// NewWithCapacity creates a set over [0, universe) holding at most capacity
// live values. capacity is clamped to the universe size.
func NewWithCapacity(universe, capacity int) *Set {
	if universe < 0 {
		universe = 0
	}
	if capacity > universe {
		capacity = universe
	}
	if capacity < 0 {
		capacity = 0
	}
	return &Set{
		dense:  make([]uint32, capacity),
		sparse: make([]uint32, universe),
	}
}

// Contains reports whether v is live in the set.
func (s *Set) Contains(v uint32) bool {
	return int(v) < len(s.sparse) &&
		int(s.sparse[v]) < s.size &&
		s.dense[s.sparse[v]] == v
}

// IndexOf returns v's position in the dense array.
// The second result is false if v is not in the set.
func (s *Set) IndexOf(v uint32) (int, bool) {
	if !s.Contains(v) {
		return 0, false
	}
	return int(s.sparse[v]), true
}

// Insert adds v to the set. It reports whether v was inserted: false means v
// was already present, outside the universe, or the set is full.
func (s *Set) Insert(v uint32) bool {
	if int(v) >= len(s.sparse) || s.size >= len(s.dense) {
		return false
	}
	if s.Contains(v) {
		return false
	}
	s.sparse[v] = uint32(s.size)
	s.dense[s.size] = v
	s.size++
	return true
}

// Erase removes v from the set by swapping it with the last live value.
// It reports whether v was present.
func (s *Set) Erase(v uint32) bool {
	if !s.Contains(v) {
		return false
	}
	last := s.dense[s.size-1]
	s.dense[s.sparse[v]] = last
	s.sparse[last] = s.sparse[v]
	s.size--
	return true
}

// Clear empties the set. Only the size is reset; stale sparse entries are
// tolerated by Contains.
func (s *Set) Clear() {
	s.size = 0
}

// Len returns the number of live values.
func (s *Set) Len() int {
	return s.size
}

// Cap returns the dense capacity.
func (s *Set) Cap() int {
	return len(s.dense)
}

// Universe returns the exclusive upper bound on storable values.
func (s *Set) Universe() int {
	return len(s.sparse)
}

// Empty reports whether no values are live.
func (s *Set) Empty() bool {
	return s.size == 0
}

// At returns the value at position i in the dense array, 0 <= i < Len().
func (s *Set) At(i int) uint32 {
	return s.dense[i]
}

// Values returns the live values as a view into the dense array. The view is
// invalidated by Insert and Erase. Iterating it in reverse tolerates erasure
// of the current element.
func (s *Set) Values() []uint32 {
	return s.dense[:s.size]
}
