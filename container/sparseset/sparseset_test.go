package sparseset

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertContains(t *testing.T) {
	s := New(16)

	require.True(t, s.Insert(3))
	require.True(t, s.Insert(7))
	require.True(t, s.Insert(0))

	assert.True(t, s.Contains(3))
	assert.True(t, s.Contains(7))
	assert.True(t, s.Contains(0))
	assert.False(t, s.Contains(1))
	assert.Equal(t, 3, s.Len())
}

func TestInsertDuplicate(t *testing.T) {
	s := New(8)

	require.True(t, s.Insert(5))
	assert.False(t, s.Insert(5))
	assert.Equal(t, 1, s.Len())
}

func TestInsertOutOfUniverse(t *testing.T) {
	s := New(8)

	assert.False(t, s.Insert(8))
	assert.False(t, s.Insert(100))
	assert.Equal(t, 0, s.Len())
}

func TestInsertFull(t *testing.T) {
	s := NewWithCapacity(16, 2)

	require.True(t, s.Insert(1))
	require.True(t, s.Insert(2))
	assert.False(t, s.Insert(3))
	assert.Equal(t, 2, s.Len())
	assert.False(t, s.Contains(3))
}

func TestEraseSwapsLast(t *testing.T) {
	s := New(16)
	for _, v := range []uint32{4, 9, 2, 11} {
		require.True(t, s.Insert(v))
	}

	require.True(t, s.Erase(9))

	assert.False(t, s.Contains(9))
	assert.Equal(t, 3, s.Len())
	// 11 was the last dense element and must have taken 9's slot.
	idx, ok := s.IndexOf(11)
	require.True(t, ok)
	assert.Equal(t, 1, idx)

	assert.False(t, s.Erase(9))
}

func TestClearLeavesStaleSparseEntries(t *testing.T) {
	s := New(8)
	require.True(t, s.Insert(6))
	require.True(t, s.Insert(1))

	s.Clear()

	assert.Equal(t, 0, s.Len())
	assert.True(t, s.Empty())
	assert.False(t, s.Contains(6))
	assert.False(t, s.Contains(1))

	// Re-insertion after clear must work with the stale sparse array.
	require.True(t, s.Insert(1))
	assert.True(t, s.Contains(1))
	assert.Equal(t, 1, s.Len())
}

func TestReverseIterationWithErase(t *testing.T) {
	s := New(32)
	for v := uint32(0); v < 10; v++ {
		require.True(t, s.Insert(v))
	}

	// Erasing the current element while walking the dense array in reverse
	// must not skip any other element.
	seen := make(map[uint32]bool)
	for i := s.Len() - 1; i >= 0; i-- {
		v := s.At(i)
		seen[v] = true
		if v%2 == 0 {
			s.Erase(v)
		}
	}

	assert.Len(t, seen, 10)
	assert.Equal(t, 5, s.Len())
	for v := uint32(0); v < 10; v++ {
		assert.Equal(t, v%2 == 1, s.Contains(v), "value %d", v)
	}
}

// Membership law: after any op sequence, Contains reflects net membership,
// the dense array has no duplicates, and Len equals the live count.
func TestMembershipLaw(t *testing.T) {
	const universe = 64

	rng := rand.New(rand.NewSource(1))
	s := New(universe)
	ref := make(map[uint32]bool)

	for op := 0; op < 10000; op++ {
		v := uint32(rng.Intn(universe))
		if rng.Intn(2) == 0 {
			inserted := s.Insert(v)
			assert.Equal(t, !ref[v], inserted)
			ref[v] = true
		} else {
			erased := s.Erase(v)
			assert.Equal(t, ref[v], erased)
			delete(ref, v)
		}
	}

	require.Equal(t, len(ref), s.Len())
	dense := s.Values()
	seen := make(map[uint32]bool, len(dense))
	for _, v := range dense {
		assert.False(t, seen[v], "duplicate dense value %d", v)
		seen[v] = true
		assert.True(t, ref[v])
	}
	for v := range ref {
		assert.True(t, s.Contains(v))
	}
}
