// Package heapmap implements a fixed-depth ordered map laid out as an
// implicit binary search tree. A key's array slot is determined purely by the
// sequence of comparisons from the root: slot 0, then 2i+1 or 2i+2 at each
// step. No parent or child pointers are stored, which keeps nodes compact but
// bounds the depth: an insertion that would descend past the configured
// height fails.
package heapmap

import "errors"

var (
	ErrCapacityExceeded = errors.New("heapmap: insertion exceeds depth bound")
	ErrKeyNotFound      = errors.New("heapmap: key not found")
)

type node[K comparable, V any] struct {
	valid bool
	key   K
	val   V
}

// Map is a bounded ordered map from K to V over an implicit tree of the given
// height. The ordering comparator is fixed at construction.
type Map[K comparable, V any] struct {
	less   func(a, b K) bool
	nodes  []node[K, V]
	height int
	size   int
}

// New creates a map over an implicit tree with height levels below the root,
// holding at most 2^(height+1)-1 entries (fewer in practice, since slots are
// fixed by key comparisons). less must be a strict weak order.
func New[K comparable, V any](height int, less func(a, b K) bool) *Map[K, V] {
	return &Map[K, V]{
		less:   less,
		nodes:  make([]node[K, V], (1<<(height+1))-1),
		height: height,
	}
}

func (m *Map[K, V]) equal(a, b K) bool {
	return !m.less(a, b) && !m.less(b, a)
}

// Len returns the number of entries.
func (m *Map[K, V]) Len() int {
	return m.size
}

// Cap returns the total number of slots.
func (m *Map[K, V]) Cap() int {
	return len(m.nodes)
}

// Height returns the depth bound.
func (m *Map[K, V]) Height() int {
	return m.height
}

// Insert adds key with value v. If key is present the stored value is left
// untouched and created is false. Returns ErrCapacityExceeded when the
// comparison walk runs past the depth bound.
func (m *Map[K, V]) Insert(key K, v V) (created bool, err error) {
	slot, created, err := m.GetOrInsert(key)
	if err != nil {
		return false, err
	}
	if created {
		*slot = v
	}
	return created, nil
}

// GetOrInsert locates key's value slot, inserting key with a zero value if
// absent. The returned pointer stays valid until key is erased.
func (m *Map[K, V]) GetOrInsert(key K) (slot *V, created bool, err error) {
	i := m.findInsertionSlot(key)
	if i >= len(m.nodes) {
		return nil, false, ErrCapacityExceeded
	}
	n := &m.nodes[i]
	if n.valid {
		return &n.val, false, nil
	}
	n.valid = true
	n.key = key
	m.size++
	return &n.val, true, nil
}

// Find returns a pointer to key's value, or false if absent.
func (m *Map[K, V]) Find(key K) (*V, bool) {
	i := m.findSlot(key)
	if i >= len(m.nodes) {
		return nil, false
	}
	return &m.nodes[i].val, true
}

// Contains reports whether key is present.
func (m *Map[K, V]) Contains(key K) bool {
	return m.findSlot(key) < len(m.nodes)
}

// At returns key's value, or ErrKeyNotFound.
func (m *Map[K, V]) At(key K) (V, error) {
	i := m.findSlot(key)
	if i >= len(m.nodes) {
		var zero V
		return zero, ErrKeyNotFound
	}
	return m.nodes[i].val, nil
}

// Erase removes key, reporting whether it was present. Since nodes carry no
// parent links, deleting an interior node repositions its in-order-successor
// subtree explicitly, moving it up one level at a time.
func (m *Map[K, V]) Erase(key K) bool {
	i := m.findSlot(key)
	if i >= len(m.nodes) {
		return false
	}

	// Slots at the deepest level have no children.
	if i >= (1<<m.height)-1 {
		m.nodes[i].valid = false
		m.size--
		return true
	}

	left := 2*i + 1
	right := 2*i + 2
	hasLeft := m.validSlot(left)
	hasRight := m.validSlot(right)

	switch {
	case hasLeft && hasRight:
		succ := m.findMin(right)
		m.nodes[i] = m.nodes[succ]
		m.nodes[succ].valid = false
		// The successor has no left child; its right subtree (if any) takes
		// its place.
		if succRight := 2*succ + 2; m.validSlot(succRight) {
			m.moveSubtree(succRight, succ)
		}
	case hasLeft:
		m.moveSubtree(left, i)
	case hasRight:
		m.moveSubtree(right, i)
	default:
		m.nodes[i].valid = false
	}
	m.size--
	return true
}

// Min returns the smallest key and its value.
func (m *Map[K, V]) Min() (K, V, bool) {
	i := m.findMin(0)
	if i >= len(m.nodes) {
		var zk K
		var zv V
		return zk, zv, false
	}
	return m.nodes[i].key, m.nodes[i].val, true
}

// Each calls fn for every entry in key order, stopping early if fn returns
// false. Entries must not be inserted or erased during the walk.
func (m *Map[K, V]) Each(fn func(key K, v V) bool) {
	m.each(0, fn)
}

// Keys returns the keys in order. Allocates; intended for tests and
// diagnostics.
func (m *Map[K, V]) Keys() []K {
	keys := make([]K, 0, m.size)
	m.Each(func(k K, _ V) bool {
		keys = append(keys, k)
		return true
	})
	return keys
}

func (m *Map[K, V]) each(i int, fn func(K, V) bool) bool {
	if !m.validSlot(i) {
		return true
	}
	if !m.each(2*i+1, fn) {
		return false
	}
	if !fn(m.nodes[i].key, m.nodes[i].val) {
		return false
	}
	return m.each(2*i+2, fn)
}

func (m *Map[K, V]) validSlot(i int) bool {
	return i < len(m.nodes) && m.nodes[i].valid
}

// findSlot walks the comparison path for key, returning its slot or
// len(nodes) if the path ends at an empty slot or leaves the array.
func (m *Map[K, V]) findSlot(key K) int {
	i := 0
	for i < len(m.nodes) && m.nodes[i].valid {
		if m.equal(key, m.nodes[i].key) {
			return i
		}
		if m.less(key, m.nodes[i].key) {
			i = 2*i + 1
		} else {
			i = 2*i + 2
		}
	}
	return len(m.nodes)
}

// findInsertionSlot walks the comparison path for key until it finds key
// itself or the empty slot where key belongs.
func (m *Map[K, V]) findInsertionSlot(key K) int {
	i := 0
	for i < len(m.nodes) && m.nodes[i].valid && !m.equal(key, m.nodes[i].key) {
		if m.less(key, m.nodes[i].key) {
			i = 2*i + 1
		} else {
			i = 2*i + 2
		}
	}
	if i >= len(m.nodes) {
		return len(m.nodes)
	}
	return i
}

func (m *Map[K, V]) findMin(i int) int {
	if !m.validSlot(i) {
		return len(m.nodes)
	}
	for m.validSlot(2*i + 1) {
		i = 2*i + 1
	}
	return i
}

// moveSubtree relocates the whole subtree rooted at from into the slot at to,
// one level at a time. Within each level the subtree's slots are contiguous,
// so the level is copied as a run. Only intended for Erase, which guarantees
// the destination subtree's occupied slots are a superset-safe target.
func (m *Map[K, V]) moveSubtree(from, to int) {
	levels := m.height - depthOf(from) + 1

	srcStart, dstStart := from, to
	for lvl := 0; lvl < levels; lvl++ {
		width := 1 << lvl
		for n := 0; n < width; n++ {
			src := &m.nodes[srcStart+n]
			if src.valid {
				m.nodes[dstStart+n] = *src
				src.valid = false
			}
		}
		srcStart = 2*srcStart + 1
		dstStart = 2*dstStart + 1
	}
}

// depthOf returns the level of slot i, i.e. floor(log2(i+1)).
func depthOf(i int) int {
	d := 0
	for n := i + 1; n > 1; n >>= 1 {
		d++
	}
	return d
}
