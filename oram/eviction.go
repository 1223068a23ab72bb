package oram

// evictLevelByLevel writes the stash back along the path, rebuilding each
// bucket from the deepest level up to the root. At each level it selects up
// to Z stash blocks whose current leaf passes through that level's bucket,
// in stash handle order, and pads the remaining slots with the empty
// sentinel. Deepest-first order maximizes the chance each block lands in the
// deepest bucket it is eligible for, keeping the stash small.
func (o *PathORAM) evictLevelByLevel(path []int) error {
	for level := 0; level < len(path); level++ {
		bucketIdx := path[level]
		bucket := o.emptyBucket()
		filled := 0

		for _, h := range o.snapshotStash() {
			if filled == o.cfg.BucketSize {
				break
			}
			id := int(h)
			leaf, _ := o.posMap.Get(id)
			if !o.placeable(leaf, bucketIdx) {
				continue
			}
			data, _ := o.stash.get(id)
			blk, err := o.blockToStorage(id, data)
			if err != nil {
				return err
			}
			bucket[filled] = blk
			o.stash.remove(id)
			filled++
		}

		if err := o.storage.WriteBucket(bucketIdx, bucket); err != nil {
			return err
		}
	}

	if o.stash.len() > o.cfg.StashLimit {
		return ErrStashOverflow
	}
	return nil
}

// evictTwoPath evicts greedily along the accessed path, then along a second
// uniformly random path. The second path's buckets are first read into the
// stash, so blocks already resident there survive the rewrite; the hard stash
// capacity's transient headroom covers the extra path read.
func (o *PathORAM) evictTwoPath(path []int) error {
	if err := o.evictGreedyByDepth(path); err != nil {
		return err
	}
	secondPath := o.Path(o.randomLeaf())
	if err := o.readPathIntoStash(secondPath); err != nil {
		return err
	}
	return o.evictGreedyByDepth(secondPath)
}

// evictGreedyByDepth assigns each stash block to its deepest eligible bucket
// with free space, then writes the whole path back. Compared to
// evictLevelByLevel it considers every block for every level before moving
// on, which can pack buckets slightly tighter when many blocks share path
// prefixes.
func (o *PathORAM) evictGreedyByDepth(path []int) error {
	buckets := make([][]Block, len(path))
	counts := make([]int, len(path))
	for i := range buckets {
		buckets[i] = o.emptyBucket()
	}

	for _, h := range o.snapshotStash() {
		id := int(h)
		leaf, _ := o.posMap.Get(id)

		// path[0] is the leaf bucket, so the first eligible level with
		// space is the deepest one.
		for level := 0; level < len(path); level++ {
			if counts[level] == o.cfg.BucketSize {
				continue
			}
			if !o.placeable(leaf, path[level]) {
				continue
			}
			data, _ := o.stash.get(id)
			blk, err := o.blockToStorage(id, data)
			if err != nil {
				return err
			}
			buckets[level][counts[level]] = blk
			counts[level]++
			o.stash.remove(id)
			break
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
