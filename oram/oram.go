// Package oram implements a client-side Path ORAM engine over pluggable
// bucket storage. Every access touches a full root-to-leaf path and
// re-randomizes the block's leaf assignment, hiding both the accessed block
// and the operation type from an observer of the storage access pattern.
//
// The engine is single-owner: concurrent Access calls against the same
// instance are not safe.
package oram

// OpType represents the type of ORAM operation.
type OpType int

const (
	OpRead OpType = iota
	OpWrite
)

// PathORAM implements the Path ORAM protocol over a complete binary tree of
// buckets. The logical id space covers every bucket slot:
// BucketSize * (2^(Height+1)-1) blocks.
type PathORAM struct {
	cfg         Config
	numLeaves   int
	numBuckets  int
	numBlocks   int
	payloadSize int

	storage Storage     // pluggable storage backend
	posMap  PositionMap // pluggable position map
	encrypt Encryptor   // pluggable encryption
	rng     LeafSource  // pluggable leaf randomness

	stash *stash // blocks not yet written back to tree
}

// New creates a new PathORAM instance with explicit dependencies.
// Use this constructor when you need custom storage, position map,
// encryption, or a deterministic leaf source.
func New(cfg Config, storage Storage, posMap PositionMap, enc Encryptor, rng LeafSource) (*PathORAM, error) {
	cfg, err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	numLeaves, numBuckets, numBlocks := cfg.TreeParams()
	payloadSize := cfg.BlockSize + enc.Overhead()

	if storage.NumBuckets() != numBuckets ||
		storage.BucketSize() != cfg.BucketSize ||
		storage.PayloadSize() != payloadSize {
		return nil, ErrStorageMismatch
	}

	// The stash's hard capacity leaves headroom above the quiescent limit:
	// a path read parks up to Z*(Height+1) extra blocks before write-back
	// drains them again.
	stashCap := cfg.StashLimit + cfg.BucketSize*(cfg.Height+1)

	return &PathORAM{
		cfg:         cfg,
		numLeaves:   numLeaves,
		numBuckets:  numBuckets,
		numBlocks:   numBlocks,
		payloadSize: payloadSize,
		storage:     storage,
		posMap:      posMap,
		encrypt:     enc,
		rng:         rng,
		stash:       newStash(numBlocks, stashCap, cfg.BlockSize),
	}, nil
}

// NewInMemory creates a new PathORAM instance with in-memory storage, a
// dense position map, no encryption, and crypto/rand leaf draws. This is the
// simplest way to create a PathORAM for testing or in-memory use.
func NewInMemory(cfg Config) (*PathORAM, error) {
	cfg, err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	_, numBuckets, numBlocks := cfg.TreeParams()
	enc := NoOpEncryptor{}

	storage := NewByteStore(numBuckets, cfg.BucketSize, cfg.BlockSize+enc.Overhead())
	posMap := NewArrayPositionMap(numBlocks)

	return New(cfg, storage, posMap, enc, CryptoSource{})
}

// Init prepares the server store and position map: every bucket slot is
// stamped with the empty sentinel and every logical block id draws a uniform
// random leaf. Must be called once before the first Access.
func (o *PathORAM) Init() error {
	empty := make([]Block, o.cfg.BucketSize)
	for i := range empty {
		empty[i] = Block{ID: EmptyBlockID}
	}
	for idx := 0; idx < o.numBuckets; idx++ {
		if err := o.storage.WriteBucket(idx, empty); err != nil {
			return err
		}
	}
	for id := 0; id < o.numBlocks; id++ {
		o.posMap.Set(id, o.randomLeaf())
	}
	return nil
}

// Capacity returns the number of blocks this ORAM can store.
func (o *PathORAM) Capacity() int {
	return o.numBlocks
}

// Height returns the height of the binary tree (edges from root to leaf).
func (o *PathORAM) Height() int {
	return o.cfg.Height
}

// NumLeaves returns the number of leaf nodes in the tree.
func (o *PathORAM) NumLeaves() int {
	return o.numLeaves
}

// NumBuckets returns the total number of buckets in the tree.
func (o *PathORAM) NumBuckets() int {
	return o.numBuckets
}

// BlockSize returns the configured block size.
func (o *PathORAM) BlockSize() int {
	return o.cfg.BlockSize
}

// StashSize returns the current number of blocks in the stash.
func (o *PathORAM) StashSize() int {
	return o.stash.len()
}

// Size returns the number of block ids with assigned positions.
func (o *PathORAM) Size() int {
	return o.posMap.Size()
}

// Position returns blockID's current position-map leaf. Reading it does not
// count as an access and does not re-randomize.
func (o *PathORAM) Position(blockID int) (int, bool) {
	if blockID < 0 || blockID >= o.numBlocks {
		return 0, false
	}
	return o.posMap.Get(blockID)
}

// Access performs an oblivious read or write operation.
// For OpRead: returns the block's current data (zeros if never written),
// data param ignored. For OpWrite: stores data, returns nil.
func (o *PathORAM) Access(op OpType, blockID int, data []byte) ([]byte, error) {
	if op != OpRead && op != OpWrite {
		return nil, ErrInvalidOp
	}
	if blockID < 0 || blockID >= o.numBlocks {
		return nil, ErrInvalidBlockID
	}
	if op == OpRead {
		return o.access(blockID, nil)
	}
	if len(data) != o.cfg.BlockSize {
		return nil, ErrInvalidDataSize
	}
	return o.access(blockID, data)
}

// Read reads the block with the given ID.
func (o *PathORAM) Read(blockID int) ([]byte, error) {
	if blockID < 0 || blockID >= o.numBlocks {
		return nil, ErrInvalidBlockID
	}
	return o.access(blockID, nil)
}

// Write writes data to the block with the given ID.
func (o *PathORAM) Write(blockID int, data []byte) error {
	if blockID < 0 || blockID >= o.numBlocks {
		return ErrInvalidBlockID
	}
	if len(data) != o.cfg.BlockSize {
		return ErrInvalidDataSize
	}
	_, err := o.access(blockID, data)
	return err
}

// randomLeaf draws a uniform leaf index. numLeaves is a power of two, so
// masking the generator output reproduces fixed-width truncation exactly.
func (o *PathORAM) randomLeaf() int {
	return int(o.rng.Uint64() & uint64(o.numLeaves-1))
}

// access performs the core PathORAM access operation.
// If newData is nil, it's a read; otherwise it's a write.
func (o *PathORAM) access(blockID int, newData []byte) ([]byte, error) {
	// Step 1: Resolve the block's current leaf and immediately redraw it.
	// The redraw happens before any I/O, independent of the operation type.
	leaf, ok := o.posMap.Get(blockID)
	if !ok {
		leaf = o.randomLeaf()
	}
	o.posMap.Set(blockID, o.randomLeaf())

	// Step 2: Read every bucket on the old path into the stash.
	path := o.Path(leaf)
	if err := o.readPathIntoStash(path); err != nil {
		return nil, err
	}

	// Step 3: Serve the operation against the stash.
	var result []byte
	if newData == nil {
		var found bool
		if o.cfg.ConstantTime {
			found, result = o.findInStashConstantTime(blockID)
		} else {
			result = make([]byte, o.cfg.BlockSize)
			var data []byte
			if data, found = o.stash.get(blockID); found {
				copy(result, data)
			}
		}
		if !found {
			// Never-written id: explicit zero-fill policy. The zero block
			// is materialized so later reads hit a real entry.
			if err := o.stash.put(blockID, result); err != nil {
				return nil, err
			}
		}
	} else {
		if err := o.stash.put(blockID, newData); err != nil {
			return nil, err
		}
	}

	// Step 4: Write the path back, deepest level first. Constant-time mode
	// overrides the strategy choice.
	var err error
	switch {
	case o.cfg.ConstantTime:
		err = o.evictConstantTime(path)
	case o.cfg.EvictionStrategy == EvictGreedyByDepth:
		err = o.evictGreedyByDepth(path)
	case o.cfg.EvictionStrategy == EvictDeterministicTwoPath:
		err = o.evictTwoPath(path)
	default:
		err = o.evictLevelByLevel(path)
	}
	if err != nil {
		return nil, err
	}

	return result, nil
}

// readPathIntoStash reads all valid blocks from path into the stash. The
// stale server copies need not be cleared: eviction rewrites every bucket on
// the path.
func (o *PathORAM) readPathIntoStash(path []int) error {
	for _, bucketIdx := range path {
		bucket, err := o.storage.ReadBucket(bucketIdx)
		if err != nil {
			return err
		}
		for i := range bucket {
			if bucket[i].ID == EmptyBlockID {
				continue
			}
			plaintext, err := o.encrypt.Decrypt(bucket[i].ID, bucket[i].Data)
			if err != nil {
				return err
			}
			if err := o.stash.put(bucket[i].ID, plaintext); err != nil {
				return err
			}
		}
	}
	return nil
}

// blockToStorage converts a stash entry to a storage Block with encryption.
func (o *PathORAM) blockToStorage(id int, data []byte) (Block, error) {
	ciphertext, err := o.encrypt.Encrypt(id, data)
	if err != nil {
		return Block{}, err
	}
	return Block{ID: id, Data: ciphertext}, nil
}

// Path returns bucket indices from leaf to root.
// Leaf index is 0-based among all leaves.
func (o *PathORAM) Path(leaf int) []int {
	path := make([]int, o.cfg.Height+1)
	// Convert leaf index to bucket index: leaves start at index numLeaves-1
	bucket := o.numLeaves - 1 + leaf
	for i := range path {
		path[i] = bucket
		bucket = (bucket - 1) / 2 // parent
	}
	return path
}

// canPlaceAt returns true if a block assigned to the given leaf can be
// placed in the bucket at bucketIdx. Uses ancestry: bucket B is on leaf L's
// path iff L's leaf bucket is in the subtree rooted at B.
func (o *PathORAM) canPlaceAt(leaf, bucketIdx int) bool {
	for b := o.numLeaves - 1 + leaf; ; b = (b - 1) / 2 {
		if b == bucketIdx {
			return true
		}
		if b == 0 {
			return false
		}
	}
}

func (o *PathORAM) placeable(leaf, bucketIdx int) bool {
	if o.cfg.ConstantTime {
		return o.canPlaceAtConstantTime(leaf, bucketIdx)
	}
	return o.canPlaceAt(leaf, bucketIdx)
}

func (o *PathORAM) emptyBucket() []Block {
	bucket := make([]Block, o.cfg.BucketSize)
	for i := range bucket {
		bucket[i] = Block{ID: EmptyBlockID}
	}
	return bucket
}

// snapshotStash copies the current stash handle set so it can be iterated
// while entries are removed.
func (o *PathORAM) snapshotStash() []uint32 {
	return append([]uint32(nil), o.stash.handles()...)
}
