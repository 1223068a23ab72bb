package oram

// Storage provides bucket-level access to the ORAM tree structure. The
// engine treats it as untrusted: it only ever sees serialized, optionally
// encrypted block payloads. Implementations may keep the data in memory,
// files, or remote services.
type Storage interface {
	// ReadBucket returns all blocks in the bucket at the given index.
	ReadBucket(idx int) ([]Block, error)

	// WriteBucket writes all blocks to the bucket at the given index.
	WriteBucket(idx int, blocks []Block) error

	// NumBuckets returns the total number of buckets in storage.
	NumBuckets() int

	// BucketSize returns the number of block slots per bucket.
	BucketSize() int

	// PayloadSize returns the stored size of each block's payload in bytes
	// (block size plus encryption overhead).
	PayloadSize() int
}

// Block represents a single data block in storage.
// For encrypted storage, Data contains ciphertext.
type Block struct {
	ID   int    // Block ID (EmptyBlockID = empty/dummy)
	Data []byte // Block payload (plaintext or ciphertext depending on encryptor)
}

// ByteStore implements Storage over a single linear byte buffer holding
// every bucket's slots serialized back-to-back in the wire layout. The
// buffer may be caller supplied, so the same bytes can be transported to an
// external storage medium between accesses.
type ByteStore struct {
	buf         []byte
	numBuckets  int
	bucketSize  int
	payloadSize int
}

// NewByteStore creates an in-memory byte store with a freshly allocated
// buffer. All slot ids are zero, not the empty sentinel; the engine's Init
// stamps the sentinel into every slot.
func NewByteStore(numBuckets, bucketSize, payloadSize int) *ByteStore {
	buf := make([]byte, numBuckets*BucketBytes(bucketSize, payloadSize))
	s, _ := NewByteStoreBuffer(buf, numBuckets, bucketSize, payloadSize)
	return s
}

// NewByteStoreBuffer wraps a caller-supplied buffer. The buffer must hold
// exactly numBuckets serialized buckets.
func NewByteStoreBuffer(buf []byte, numBuckets, bucketSize, payloadSize int) (*ByteStore, error) {
	if numBuckets <= 0 || bucketSize <= 0 || payloadSize <= 0 {
		return nil, ErrInvalidConfig
	}
	if len(buf) != numBuckets*BucketBytes(bucketSize, payloadSize) {
		return nil, ErrInvalidDataSize
	}
	return &ByteStore{
		buf:         buf,
		numBuckets:  numBuckets,
		bucketSize:  bucketSize,
		payloadSize: payloadSize,
	}, nil
}

// Bytes returns the underlying serialized buffer.
func (s *ByteStore) Bytes() []byte {
	return s.buf
}

// ReadBucket parses the bucket at idx out of the buffer.
func (s *ByteStore) ReadBucket(idx int) ([]Block, error) {
	if idx < 0 || idx >= s.numBuckets {
		return nil, ErrBucketOutOfRange
	}
	off := idx * BucketBytes(s.bucketSize, s.payloadSize)
	return UnmarshalBucket(s.buf[off:], s.bucketSize, s.payloadSize)
}

// WriteBucket serializes blocks into the bucket at idx.
func (s *ByteStore) WriteBucket(idx int, blocks []Block) error {
	if idx < 0 || idx >= s.numBuckets {
		return ErrBucketOutOfRange
	}
	if len(blocks) != s.bucketSize {
		return ErrInvalidConfig
	}
	off := idx * BucketBytes(s.bucketSize, s.payloadSize)
	return MarshalBucket(s.buf[off:], blocks, s.payloadSize)
}

// NumBuckets returns the total number of buckets.
func (s *ByteStore) NumBuckets() int {
	return s.numBuckets
}

// BucketSize returns slots per bucket.
func (s *ByteStore) BucketSize() int {
	return s.bucketSize
}

// PayloadSize returns stored bytes per block payload.
func (s *ByteStore) PayloadSize() int {
	return s.payloadSize
}
