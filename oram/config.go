package oram

import "errors"

// EmptyBlockID marks a block slot as empty/dummy. On the wire it is encoded
// as an all-ones 64-bit id.
const EmptyBlockID = -1

// maxHeight keeps block ids within uint32 range for the stash's handle set.
const maxHeight = 24

var (
	ErrInvalidConfig    = errors.New("invalid PathORAM configuration")
	ErrInvalidOp        = errors.New("invalid operation type")
	ErrInvalidBlockID   = errors.New("invalid block ID")
	ErrInvalidDataSize  = errors.New("data size doesn't match block size")
	ErrStashOverflow    = errors.New("stash overflow")
	ErrStorageMismatch  = errors.New("storage dimensions don't match configuration")
	ErrBucketOutOfRange = errors.New("bucket index out of range")
	ErrEncryptionFailed = errors.New("block encryption failed")
	ErrDecryptionFailed = errors.New("block decryption failed")
)

// EvictionStrategy defines how blocks are evicted from stash to tree.
type EvictionStrategy int

const (
	// EvictLevelByLevel rebuilds each path bucket from the deepest level up
	// to the root, filling it with up to Z stash blocks whose current leaf
	// intersects that bucket. This is the baseline strategy.
	EvictLevelByLevel EvictionStrategy = iota

	// EvictGreedyByDepth places each stash block at its deepest possible
	// level first. Reduces stash pressure by maximizing depth utilization.
	EvictGreedyByDepth

	// EvictDeterministicTwoPath evicts greedily along the accessed path,
	// then reads a second uniformly random path into the stash and evicts
	// along that one too. The extra path drains the stash faster at the cost
	// of double the bucket I/O per access.
	EvictDeterministicTwoPath
)

// Config holds PathORAM configuration parameters. The tree shape is given by
// Height: a complete binary tree with 2^(Height+1)-1 buckets and 2^Height
// leaves. Every bucket slot corresponds to one logical block id, so the
// engine addresses BucketSize * (2^(Height+1)-1) blocks.
type Config struct {
	Height           int              // Tree height (edges from root to leaf)
	BlockSize        int              // Size of each block in bytes
	BucketSize       int              // Number of blocks per bucket (Z parameter)
	StashLimit       int              // Maximum stash size before error
	EvictionStrategy EvictionStrategy // Eviction strategy to use
	ConstantTime     bool             // Constant-time stash search, placement, and eviction
}

// Validate checks the configuration for errors and applies defaults.
// Returns a copy of the config with defaults applied.
func (c Config) Validate() (Config, error) {
	if c.Height <= 0 || c.Height > maxHeight || c.BlockSize <= 0 {
		return c, ErrInvalidConfig
	}
	if c.BucketSize == 0 {
		c.BucketSize = 4
	}
	if c.StashLimit == 0 {
		// A classical Path ORAM stash bound: a small constant per tree
		// level. Callers with tighter tail-probability requirements should
		// size this explicitly.
		c.StashLimit = c.BucketSize * (c.Height + 1)
	}
	return c, nil
}

// TreeParams calculates tree dimensions from config.
// Returns (numLeaves, numBuckets, numBlocks).
func (c Config) TreeParams() (numLeaves, numBuckets, numBlocks int) {
	numLeaves = 1 << c.Height
	numBuckets = (1 << (c.Height + 1)) - 1
	numBlocks = c.BucketSize * numBuckets
	return
}
