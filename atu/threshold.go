package atu

// ThresholdLayer describes one layer's threshold geometry: PE processing
// elements by NF neuron folds by NumTH thresholds per fold, each threshold
// TA bits wide.
type ThresholdLayer struct {
	PE    int // Processing elements
	NF    int // Neuron folds per processing element
	NumTH int // Thresholds per neuron fold
	TA    int // Threshold accumulator bit width
}

// ThresholdTranslator maps (layer, pe, nf, th) threshold coordinates to block
// locations. Flattening is row-major: pe slowest, then nf, then th.
type ThresholdTranslator struct {
	layers []ThresholdLayer
	layout layout
}

// NewThresholdTranslator builds the packing for the given layers over
// blockSize-byte blocks starting at blockOffset.
func NewThresholdTranslator(blockSize int, layers []ThresholdLayer, blockOffset int) (*ThresholdTranslator, error) {
	if blockSize <= 0 || len(layers) == 0 {
		return nil, ErrInvalidConfig
	}

	bits := make([]int, len(layers))
	counts := make([]int, len(layers))
	for i, l := range layers {
		if l.PE <= 0 || l.NF <= 0 || l.NumTH <= 0 || l.TA <= 0 {
			return nil, ErrInvalidConfig
		}
		bits[i] = l.TA
		counts[i] = l.PE * l.NF * l.NumTH
	}

	lay, err := computeLayout(blockSize, blockOffset, bits, counts)
	if err != nil {
		return nil, err
	}
	return &ThresholdTranslator{layers: append([]ThresholdLayer(nil), layers...), layout: lay}, nil
}

// Layers returns the number of configured layers.
func (t *ThresholdTranslator) Layers() int {
	return len(t.layers)
}

// ElementSize returns the byte size of one threshold of the given layer.
func (t *ThresholdTranslator) ElementSize(layer int) int {
	return t.layout.elementSizes[layer]
}

// BlockElements returns how many thresholds of the given layer fit in a block.
func (t *ThresholdTranslator) BlockElements(layer int) int {
	return t.layout.blockElements[layer]
}

// StartBlock returns the first block of the given layer's range.
func (t *ThresholdTranslator) StartBlock(layer int) int {
	return t.layout.startBlocks[layer]
}

// BlockCount returns the number of blocks allocated to the given layer.
func (t *ThresholdTranslator) BlockCount(layer int) int {
	return t.layout.blockCounts[layer]
}

// EndBlock returns the first block past the last layer's range.
func (t *ThresholdTranslator) EndBlock() int {
	last := len(t.layers) - 1
	return t.layout.startBlocks[last] + t.layout.blockCounts[last]
}

// IndexToBlock returns the (block, byte offset) holding the threshold at
// (layer, pe, nf, th).
func (t *ThresholdTranslator) IndexToBlock(layer, pe, nf, th int) (block, offset int, err error) {
	if layer < 0 || layer >= len(t.layers) {
		return 0, 0, ErrIndexOutOfRange
	}
	l := t.layers[layer]
	if pe < 0 || pe >= l.PE || nf < 0 || nf >= l.NF || th < 0 || th >= l.NumTH {
		return 0, 0, ErrIndexOutOfRange
	}
	element := (pe*l.NF+nf)*l.NumTH + th
	block, offset = t.layout.locate(layer, element)
	return block, offset, nil
}

// ReadElement fetches the threshold at (layer, pe, nf, th) through r and
// reassembles it little-endian.
func (t *ThresholdTranslator) ReadElement(r BlockReader, layer, pe, nf, th int) (uint64, error) {
	block, offset, err := t.IndexToBlock(layer, pe, nf, th)
	if err != nil {
		return 0, err
	}
	return readElement(r, block, offset, t.ElementSize(layer))
}
