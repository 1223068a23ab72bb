package oram

import "encoding/binary"

// Serialized bucket-slot layout, shared by every storage backend:
// each of the Z slots in a bucket is an 8-byte little-endian block id
// followed by the fixed-size payload. An all-ones id marks an empty slot.

const idWireSize = 8

const wireEmptyID = ^uint64(0)

// SlotBytes returns the serialized size of one bucket slot.
func SlotBytes(payloadSize int) int {
	return idWireSize + payloadSize
}

// BucketBytes returns the serialized size of one bucket.
func BucketBytes(bucketSize, payloadSize int) int {
	return bucketSize * SlotBytes(payloadSize)
}

// MarshalBucket serializes blocks into dst, which must hold
// BucketBytes(len(blocks), payloadSize) bytes. Block payloads shorter than
// payloadSize are zero padded.
func MarshalBucket(dst []byte, blocks []Block, payloadSize int) error {
	if len(dst) < BucketBytes(len(blocks), payloadSize) {
		return ErrInvalidDataSize
	}
	for i, b := range blocks {
		slot := dst[i*SlotBytes(payloadSize):]
		id := wireEmptyID
		if b.ID != EmptyBlockID {
			id = uint64(b.ID)
		}
		binary.LittleEndian.PutUint64(slot[:idWireSize], id)
		payload := slot[idWireSize : idWireSize+payloadSize]
		n := copy(payload, b.Data)
		for j := n; j < payloadSize; j++ {
			payload[j] = 0
		}
	}
	return nil
}

// UnmarshalBucket parses bucketSize slots from src. Payloads are copied out
// of src.
func UnmarshalBucket(src []byte, bucketSize, payloadSize int) ([]Block, error) {
	if len(src) < BucketBytes(bucketSize, payloadSize) {
		return nil, ErrInvalidDataSize
	}
	blocks := make([]Block, bucketSize)
	for i := range blocks {
		slot := src[i*SlotBytes(payloadSize):]
		id := binary.LittleEndian.Uint64(slot[:idWireSize])
		blocks[i].ID = EmptyBlockID
		if id != wireEmptyID {
			blocks[i].ID = int(id)
		}
		blocks[i].Data = make([]byte, payloadSize)
		copy(blocks[i].Data, slot[idWireSize:idWireSize+payloadSize])
	}
	return blocks, nil
}
