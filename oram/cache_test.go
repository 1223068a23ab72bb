package oram

import (
	"bytes"
	"testing"
)

// countingReader serves fixed blocks and counts how many reads reach it.
type countingReader struct {
	blocks map[int][]byte
	reads  int
}

func (r *countingReader) Read(blockID int) ([]byte, error) {
	r.reads++
	data, ok := r.blocks[blockID]
	if !ok {
		return nil, ErrInvalidBlockID
	}
	return data, nil
}

func (r *countingReader) BlockSize() int { return 4 }

func TestBlockCacheHit(t *testing.T) {
	src := &countingReader{blocks: map[int][]byte{
		0: {0, 0, 0, 0},
		1: {1, 1, 1, 1},
	}}
	c := NewBlockCache(src)

	for i := 0; i < 5; i++ {
		data, err := c.Read(1)
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		if !bytes.Equal(data, []byte{1, 1, 1, 1}) {
			t.Fatalf("Read(1) = %v", data)
		}
	}
	if src.reads != 1 {
		t.Errorf("underlying reads = %d, want 1", src.reads)
	}
}

func TestBlockCacheMissReplacesSlot(t *testing.T) {
	src := &countingReader{blocks: map[int][]byte{
		0: {0, 0, 0, 0},
		1: {1, 1, 1, 1},
	}}
	c := NewBlockCache(src)

	c.Read(0)
	c.Read(1)
	c.Read(0)
	if src.reads != 3 {
		t.Errorf("underlying reads = %d, want 3 (alternating blocks never hit)", src.reads)
	}
}

func TestBlockCacheInvalidate(t *testing.T) {
	src := &countingReader{blocks: map[int][]byte{0: {9, 9, 9, 9}}}
	c := NewBlockCache(src)

	c.Read(0)
	c.Invalidate()
	c.Read(0)
	if src.reads != 2 {
		t.Errorf("underlying reads = %d, want 2 after Invalidate", src.reads)
	}
}

func TestBlockCacheErrorNotCached(t *testing.T) {
	src := &countingReader{blocks: map[int][]byte{}}
	c := NewBlockCache(src)

	if _, err := c.Read(5); err == nil {
		t.Fatal("Read of missing block succeeded")
	}
	if _, err := c.Read(5); err == nil {
		t.Fatal("Read of missing block succeeded")
	}
	if src.reads != 2 {
		t.Errorf("underlying reads = %d, want 2 (errors must not populate the slot)", src.reads)
	}
}

func TestBlockCacheBlockSize(t *testing.T) {
	c := NewBlockCache(&countingReader{})
	if c.BlockSize() != 4 {
		t.Errorf("BlockSize() = %d, want 4", c.BlockSize())
	}
}
