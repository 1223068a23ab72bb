// Package btreemap implements a fixed-capacity ordered map backed by an
// unbalanced binary search tree. Nodes live in a preallocated arena and link
// to each other through integer indices; a free-list stack recycles erased
// nodes. The map never allocates after construction and offers in-order
// iteration, at the cost of O(n) worst-case depth since there is no
// rebalancing.
package btreemap

import "errors"

var (
	ErrCapacityExceeded = errors.New("btreemap: capacity exceeded")
	ErrKeyNotFound      = errors.New("btreemap: key not found")
)

type node[K comparable, V any] struct {
	valid  bool
	parent uint32
	left   uint32
	right  uint32
	key    K
	val    V
}

// Map is a bounded ordered map from K to V. The ordering comparator is fixed
// at construction.
type Map[K comparable, V any] struct {
	less  func(a, b K) bool
	nodes []node[K, V]
	free  []uint32
	root  uint32
	size  int
}

// New creates a map holding at most nodeCount entries, ordered by less, which
// must be a strict weak order.
func New[K comparable, V any](nodeCount int, less func(a, b K) bool) *Map[K, V] {
	m := &Map[K, V]{
		less:  less,
		nodes: make([]node[K, V], nodeCount),
		free:  make([]uint32, 0, nodeCount),
		root:  uint32(nodeCount),
	}
	for i := nodeCount - 1; i >= 0; i-- {
		m.nodes[i].parent = m.invalid()
		m.nodes[i].left = m.invalid()
		m.nodes[i].right = m.invalid()
		m.free = append(m.free, uint32(i))
	}
	return m
}

func (m *Map[K, V]) invalid() uint32 {
	return uint32(len(m.nodes))
}

func (m *Map[K, V]) equal(a, b K) bool {
	return !m.less(a, b) && !m.less(b, a)
}

// Len returns the number of entries.
func (m *Map[K, V]) Len() int {
	return m.size
}

// Cap returns the maximum number of entries.
func (m *Map[K, V]) Cap() int {
	return len(m.nodes)
}

// Insert adds key with value v. If key is already present the stored value is
// left untouched and created is false. Returns ErrCapacityExceeded when the
// arena is exhausted.
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
	if m.root == m.invalid() {
		if len(m.free) == 0 {
			return nil, false, ErrCapacityExceeded
		}
		id := m.popFree()
		m.nodes[id].key = key
		m.root = id
		m.size++
		return &m.nodes[id].val, true, nil
	}

	nearest := m.findNearest(key)
	n := &m.nodes[nearest]
	if m.equal(key, n.key) {
		return &n.val, false, nil
	}
	if len(m.free) == 0 {
		return nil, false, ErrCapacityExceeded
	}

	id := m.popFree()
	m.nodes[id].key = key
	m.nodes[id].parent = nearest
	if m.less(key, n.key) {
		n.left = id
	} else {
		n.right = id
	}
	m.size++
	return &m.nodes[id].val, true, nil
}

// Find returns a pointer to key's value, or false if absent.
func (m *Map[K, V]) Find(key K) (*V, bool) {
	id := m.findExact(key)
	if id == m.invalid() {
		return nil, false
	}
	return &m.nodes[id].val, true
}

// Contains reports whether key is present.
func (m *Map[K, V]) Contains(key K) bool {
	return m.findExact(key) != m.invalid()
}

// At returns key's value, or ErrKeyNotFound.
func (m *Map[K, V]) At(key K) (V, error) {
	id := m.findExact(key)
	if id == m.invalid() {
		var zero V
		return zero, ErrKeyNotFound
	}
	return m.nodes[id].val, nil
}

// Erase removes key, reporting whether it was present. A node with two
// children is replaced by its in-order successor (the minimum of its right
// subtree), spliced by index with the successor's own right subtree relinked
// to the successor's old parent.
func (m *Map[K, V]) Erase(key K) bool {
	id := m.findExact(key)
	if id == m.invalid() {
		return false
	}

	n := &m.nodes[id]
	hasLeft := n.left != m.invalid()
	hasRight := n.right != m.invalid()

	switch {
	case hasLeft && hasRight:
		succ := m.findMin(n.right)
		sn := &m.nodes[succ]
		if succ != n.right {
			// Detach the successor, promoting its right subtree into its
			// old spot, then take over the erased node's right subtree.
			p := sn.parent
			m.nodes[p].left = sn.right
			if sn.right != m.invalid() {
				m.nodes[sn.right].parent = p
			}
			sn.right = n.right
			m.nodes[n.right].parent = succ
		}
		sn.left = n.left
		m.nodes[n.left].parent = succ
		sn.parent = n.parent
		m.replaceChild(n.parent, id, succ)
	case hasLeft:
		m.nodes[n.left].parent = n.parent
		m.replaceChild(n.parent, id, n.left)
	case hasRight:
		m.nodes[n.right].parent = n.parent
		m.replaceChild(n.parent, id, n.right)
	default:
		m.replaceChild(n.parent, id, m.invalid())
	}

	m.pushFree(id)
	m.size--
	return true
}

// Min returns the smallest key and its value.
func (m *Map[K, V]) Min() (K, V, bool) {
	id := m.findMin(m.root)
	if id == m.invalid() {
		var zk K
		var zv V
		return zk, zv, false
	}
	return m.nodes[id].key, m.nodes[id].val, true
}

// Each calls fn for every entry in key order, stopping early if fn returns
// false. Entries must not be inserted or erased during the walk.
func (m *Map[K, V]) Each(fn func(key K, v V) bool) {
	for id := m.findMin(m.root); id != m.invalid(); id = m.successor(id) {
		if !fn(m.nodes[id].key, m.nodes[id].val) {
			return
		}
	}
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

// invalidNode mirrors the original arena discipline: a link is dead if it
// points past the arena or at a free-listed node.
func (m *Map[K, V]) invalidNode(id uint32) bool {
	return id >= m.invalid() || !m.nodes[id].valid
}

func (m *Map[K, V]) findExact(key K) uint32 {
	id := m.root
	for !m.invalidNode(id) {
		n := &m.nodes[id]
		if m.equal(key, n.key) {
			return id
		}
		if m.less(key, n.key) {
			id = n.left
		} else {
			id = n.right
		}
	}
	return m.invalid()
}

// findNearest returns the node with the given key or, if absent, the node
// that would be its parent. Must not be called on an empty tree.
func (m *Map[K, V]) findNearest(key K) uint32 {
	id := m.root
	for {
		n := &m.nodes[id]
		if m.equal(key, n.key) {
			return id
		}
		var next uint32
		if m.less(key, n.key) {
			next = n.left
		} else {
			next = n.right
		}
		if next == m.invalid() {
			return id
		}
		id = next
	}
}

func (m *Map[K, V]) findMin(id uint32) uint32 {
	if id == m.invalid() {
		return m.invalid()
	}
	for m.nodes[id].left != m.invalid() {
		id = m.nodes[id].left
	}
	return id
}

// successor returns the next node in key order: the minimum of the right
// subtree, or the first ancestor reached from a left child.
func (m *Map[K, V]) successor(id uint32) uint32 {
	if m.nodes[id].right != m.invalid() {
		return m.findMin(m.nodes[id].right)
	}
	for {
		p := m.nodes[id].parent
		if p == m.invalid() {
			return m.invalid()
		}
		if m.nodes[p].left == id {
			return p
		}
		id = p
	}
}

func (m *Map[K, V]) replaceChild(parent, old, repl uint32) {
	if parent == m.invalid() {
		m.root = repl
		return
	}
	if m.nodes[parent].left == old {
		m.nodes[parent].left = repl
	} else {
		m.nodes[parent].right = repl
	}
}

func (m *Map[K, V]) popFree() uint32 {
	id := m.free[len(m.free)-1]
	m.free = m.free[:len(m.free)-1]
	m.nodes[id].valid = true
	return id
}

func (m *Map[K, V]) pushFree(id uint32) {
	var zero node[K, V]
	m.nodes[id] = zero
	m.nodes[id].parent = m.invalid()
	m.nodes[id].left = m.invalid()
	m.nodes[id].right = m.invalid()
	m.free = append(m.free, id)
}
