package oram

import (
	"errors"

	"github.com/etclab/oramstore/container/respool"
)

// stash holds blocks between a path read and the following write-back,
// backed by a fixed-capacity resource pool keyed by block id. Overflow is a
// sizing defect, surfaced as ErrStashOverflow rather than silent eviction.
type stash struct {
	pool      *respool.Pool[[]byte]
	blockSize int
}

func newStash(numBlocks, capacity, blockSize int) *stash {
	return &stash{
		pool:      respool.New[[]byte](numBlocks, capacity),
		blockSize: blockSize,
	}
}

func (s *stash) contains(id int) bool {
	return s.pool.Contains(uint32(id))
}

// get returns the stashed block data for id. The slice is the live stash
// copy; callers must copy out of it before mutating the stash.
func (s *stash) get(id int) ([]byte, bool) {
	v, err := s.pool.At(uint32(id))
	if err != nil {
		return nil, false
	}
	return *v, true
}

// slot returns id's data buffer, inserting a zeroed block if absent.
func (s *stash) slot(id int) ([]byte, error) {
	v, created, err := s.pool.EmplaceEmpty(uint32(id))
	if err != nil {
		if errors.Is(err, respool.ErrCapacityExceeded) {
			return nil, ErrStashOverflow
		}
		return nil, err
	}
	if created {
		*v = make([]byte, s.blockSize)
	}
	return *v, nil
}

// put copies data into id's stash entry, creating it if needed.
func (s *stash) put(id int, data []byte) error {
	buf, err := s.slot(id)
	if err != nil {
		return err
	}
	copy(buf, data)
	return nil
}

func (s *stash) remove(id int) {
	s.pool.Erase(uint32(id))
}

// handles returns the live block ids in dense order. The view is invalidated
// by put and remove.
func (s *stash) handles() []uint32 {
	return s.pool.Handles()
}

func (s *stash) len() int {
	return s.pool.Len()
}

func (s *stash) cap() int {
	return s.pool.Cap()
}
