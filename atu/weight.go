// Package atu maps multi-dimensional layer coordinates onto (block, byte
// offset) locations inside an oblivious block store. Translators are pure
// index arithmetic: each layer packs fixed-width elements into blocks
// without straddling block boundaries, and layers occupy disjoint contiguous
// block ranges laid out by prefix sum.
package atu

import "errors"

var (
	ErrInvalidConfig    = errors.New("atu: invalid translator configuration")
	ErrIndexOutOfRange  = errors.New("atu: coordinate out of range")
	ErrElementTooLarge  = errors.New("atu: element does not fit in a block")
	ErrShortBlock       = errors.New("atu: block shorter than element span")
	ErrElementTooWide   = errors.New("atu: element wider than 8 bytes")
)

func ceilDiv(num, denom int) int {
	return num/denom + boolToInt(num%denom != 0)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// layout holds the per-layer packing computed at construction, shared by the
// weight and threshold translators.
type layout struct {
	elementSizes  []int
	blockElements []int
	startBlocks   []int
	blockCounts   []int
}

// computeLayout packs elementBits[i]-wide elements, elementCounts[i] of them
// per layer, into blockSize-byte blocks starting at blockOffset.
func computeLayout(blockSize, blockOffset int, elementBits, elementCounts []int) (layout, error) {
	n := len(elementBits)
	l := layout{
		elementSizes:  make([]int, n),
		blockElements: make([]int, n),
		startBlocks:   make([]int, n),
		blockCounts:   make([]int, n),
	}

	for i := 0; i < n; i++ {
		if elementBits[i] <= 0 || elementCounts[i] <= 0 {
			return layout{}, ErrInvalidConfig
		}
		size := ceilDiv(elementBits[i], 8)
		if size > blockSize {
			return layout{}, ErrElementTooLarge
		}
		l.elementSizes[i] = size
		// Remainder bytes at the end of a block stay unused: elements never
		// straddle a block boundary.
		l.blockElements[i] = blockSize / size
		l.blockCounts[i] = ceilDiv(elementCounts[i], l.blockElements[i])
		if i == 0 {
			l.startBlocks[i] = blockOffset
		} else {
			l.startBlocks[i] = l.startBlocks[i-1] + l.blockCounts[i-1]
		}
	}
	return l, nil
}

// locate flattens a row-major element index into (block, byte offset).
func (l *layout) locate(layer, element int) (block, offset int) {
	perBlock := l.blockElements[layer]
	block = l.startBlocks[layer] + element/perBlock
	offset = l.elementSizes[layer] * (element % perBlock)
	return
}

// WeightLayer describes one layer's weight geometry: PE processing elements
// by Tiles weight tiles, each element packing SIMD lanes of WT-bit weights.
type WeightLayer struct {
	SIMD  int // Input lanes folded into one element
	WT    int // Weight bit width
	PE    int // Processing elements
	Tiles int // Weight tiles per processing element
}

// WeightTranslator maps (layer, pe, tile) weight coordinates to block
// locations. Flattening is row-major: pe varies slower than tile, matching
// the consumer's iteration order.
type WeightTranslator struct {
	layers []WeightLayer
	layout layout
}

// NewWeightTranslator builds the packing for the given layers over
// blockSize-byte blocks. blockOffset shifts the whole region, letting
// several translators share one store.
func NewWeightTranslator(blockSize int, layers []WeightLayer, blockOffset int) (*WeightTranslator, error) {
	if blockSize <= 0 || len(layers) == 0 {
		return nil, ErrInvalidConfig
	}

	bits := make([]int, len(layers))
	counts := make([]int, len(layers))
	for i, l := range layers {
		if l.SIMD <= 0 || l.WT <= 0 || l.PE <= 0 || l.Tiles <= 0 {
			return nil, ErrInvalidConfig
		}
		bits[i] = l.WT * l.SIMD
		counts[i] = l.PE * l.Tiles
	}

	lay, err := computeLayout(blockSize, blockOffset, bits, counts)
	if err != nil {
		return nil, err
	}
	return &WeightTranslator{layers: append([]WeightLayer(nil), layers...), layout: lay}, nil
}

// Layers returns the number of configured layers.
func (t *WeightTranslator) Layers() int {
	return len(t.layers)
}

// ElementSize returns the byte size of one element of the given layer.
func (t *WeightTranslator) ElementSize(layer int) int {
	return t.layout.elementSizes[layer]
}

// BlockElements returns how many elements of the given layer fit in a block.
func (t *WeightTranslator) BlockElements(layer int) int {
	return t.layout.blockElements[layer]
}

// StartBlock returns the first block of the given layer's range.
func (t *WeightTranslator) StartBlock(layer int) int {
	return t.layout.startBlocks[layer]
}

// BlockCount returns the number of blocks allocated to the given layer.
func (t *WeightTranslator) BlockCount(layer int) int {
	return t.layout.blockCounts[layer]
}

// EndBlock returns the first block past the last layer's range.
func (t *WeightTranslator) EndBlock() int {
	last := len(t.layers) - 1
	return t.layout.startBlocks[last] + t.layout.blockCounts[last]
}

// IndexToBlock returns the (block, byte offset) holding the element at
// (layer, pe, tile).
func (t *WeightTranslator) IndexToBlock(layer, pe, tile int) (block, offset int, err error) {
	if layer < 0 || layer >= len(t.layers) {
		return 0, 0, ErrIndexOutOfRange
	}
	l := t.layers[layer]
	if pe < 0 || pe >= l.PE || tile < 0 || tile >= l.Tiles {
		return 0, 0, ErrIndexOutOfRange
	}
	element := pe*l.Tiles + tile
	block, offset = t.layout.locate(layer, element)
	return block, offset, nil
}

// ReadElement fetches the element at (layer, pe, tile) through r and
// reassembles it little-endian.
func (t *WeightTranslator) ReadElement(r BlockReader, layer, pe, tile int) (uint64, error) {
	block, offset, err := t.IndexToBlock(layer, pe, tile)
	if err != nil {
		return 0, err
	}
	return readElement(r, block, offset, t.ElementSize(layer))
}
