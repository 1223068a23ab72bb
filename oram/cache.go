package oram

// BlockReader is the read side of the engine, satisfied by *PathORAM and
// *BlockCache.
type BlockReader interface {
	Read(blockID int) ([]byte, error)
	BlockSize() int
}

// BlockCache is a single-slot read-through memo in front of a BlockReader.
// A repeated request for the cached block number returns the held bytes with
// no ORAM traffic; any other request issues one underlying Read and replaces
// the slot. There is no write-back: the cache is only valid over a region
// that stays read-only for the cache's lifetime, the typical pattern when
// extracting several packed elements from one block.
//
// Caching does not weaken obliviousness: the position-map re-randomization
// for the cached block already happened at the single underlying Read.
type BlockCache struct {
	src      BlockReader
	blockNum int
	data     []byte
}

// NewBlockCache creates an empty cache in front of src.
func NewBlockCache(src BlockReader) *BlockCache {
	return &BlockCache{
		src:      src,
		blockNum: EmptyBlockID,
	}
}

// Read returns the block's data, from the cache when blockID matches the
// held block. The returned slice is the cache's slot; callers must not
// modify it.
func (c *BlockCache) Read(blockID int) ([]byte, error) {
	if c.blockNum != blockID {
		data, err := c.src.Read(blockID)
		if err != nil {
			return nil, err
		}
		c.data = data
		c.blockNum = blockID
	}
	return c.data, nil
}

// BlockSize returns the underlying reader's block size.
func (c *BlockCache) BlockSize() int {
	return c.src.BlockSize()
}

// Invalidate empties the cache slot, forcing the next Read through.
func (c *BlockCache) Invalidate() {
	c.blockNum = EmptyBlockID
	c.data = nil
}
