package oram

import "github.com/etclab/oramstore/container/btreemap"

// PositionMap tracks block-to-leaf assignments.
// For recursive ORAM, this can be implemented as another ORAM instance.
type PositionMap interface {
	// Get returns the leaf position for blockID.
	// Returns (leaf, true) if found, (0, false) if not.
	Get(blockID int) (leaf int, exists bool)

	// Set assigns blockID to leaf.
	Set(blockID int, leaf int)

	// Size returns the number of blocks with assigned positions.
	Size() int
}

// ArrayPositionMap implements PositionMap as a dense array with one entry per
// logical block id. This matches the engine's fixed id space, where Init
// assigns every id a leaf up front.
type ArrayPositionMap struct {
	leaves   []int32
	assigned int
}

// NewArrayPositionMap creates a position map for ids 0..numBlocks-1, all
// unassigned.
func NewArrayPositionMap(numBlocks int) *ArrayPositionMap {
	leaves := make([]int32, numBlocks)
	for i := range leaves {
		leaves[i] = -1
	}
	return &ArrayPositionMap{leaves: leaves}
}

// Get returns the leaf position for blockID.
func (p *ArrayPositionMap) Get(blockID int) (int, bool) {
	if blockID < 0 || blockID >= len(p.leaves) || p.leaves[blockID] < 0 {
		return 0, false
	}
	return int(p.leaves[blockID]), true
}

// Set assigns blockID to leaf.
func (p *ArrayPositionMap) Set(blockID int, leaf int) {
	if blockID < 0 || blockID >= len(p.leaves) {
		return
	}
	if p.leaves[blockID] < 0 {
		p.assigned++
	}
	p.leaves[blockID] = int32(leaf)
}

// Size returns the number of blocks with assigned positions.
func (p *ArrayPositionMap) Size() int {
	return p.assigned
}

// TreePositionMap implements PositionMap over a bounded ordered map, for
// callers that need to enumerate assigned block ids in order. Capacity is
// fixed at construction; assigning more distinct ids than that is a
// configuration defect and panics.
type TreePositionMap struct {
	m *btreemap.Map[int, int]
}

// NewTreePositionMap creates a tree-backed position map holding at most
// numBlocks assignments.
func NewTreePositionMap(numBlocks int) *TreePositionMap {
	return &TreePositionMap{
		m: btreemap.New[int, int](numBlocks, func(a, b int) bool { return a < b }),
	}
}

// Get returns the leaf position for blockID.
func (p *TreePositionMap) Get(blockID int) (int, bool) {
	v, ok := p.m.Find(blockID)
	if !ok {
		return 0, false
	}
	return *v, true
}

// Set assigns blockID to leaf.
func (p *TreePositionMap) Set(blockID int, leaf int) {
	slot, _, err := p.m.GetOrInsert(blockID)
	if err != nil {
		panic("oram: position map capacity exceeded: " + err.Error())
	}
	*slot = leaf
}

// Size returns the number of blocks with assigned positions.
func (p *TreePositionMap) Size() int {
	return p.m.Len()
}

// Each calls fn for every assigned (blockID, leaf) pair in id order,
// stopping early if fn returns false.
func (p *TreePositionMap) Each(fn func(blockID, leaf int) bool) {
	p.m.Each(fn)
}
