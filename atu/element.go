package atu

// BlockReader provides block access for element reads. *oram.PathORAM and
// *oram.BlockCache both satisfy it; wrapping the engine in a BlockCache is
// worthwhile here since consecutive elements usually share a block.
type BlockReader interface {
	Read(blockID int) ([]byte, error)
	BlockSize() int
}

// readElement extracts size bytes at offset from the given block and
// reassembles them as a little-endian integer.
func readElement(r BlockReader, block, offset, size int) (uint64, error) {
	if size > 8 {
		return 0, ErrElementTooWide
	}

	data, err := r.Read(block)
	if err != nil {
		return 0, err
	}
	if offset+size > len(data) {
		return 0, ErrShortBlock
	}

	var v uint64
	for i := size - 1; i >= 0; i-- {
		v = v<<8 | uint64(data[offset+i])
	}
	return v, nil
}
