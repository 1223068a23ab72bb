// Package badgerstore implements oram.Storage on top of BadgerDB, persisting
// each bucket as one serialized record in the shared wire layout. The engine
// still treats the contents as untrusted: with an encrypting engine the
// database only ever holds ciphertext payloads and sentinel ids.
package badgerstore

import (
	"encoding/binary"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/etclab/oramstore/oram"
)

const bucketKeyPrefix = "bucket:"

// Store is a BadgerDB-backed bucket store.
type Store struct {
	db          *badger.DB
	numBuckets  int
	bucketSize  int
	payloadSize int
}

// Open creates or reopens a bucket store at path.
func Open(path string, numBuckets, bucketSize, payloadSize int) (*Store, error) {
	if numBuckets <= 0 || bucketSize <= 0 || payloadSize <= 0 {
		return nil, oram.ErrInvalidConfig
	}

	opts := badger.DefaultOptions(path)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}

	return &Store{
		db:          db,
		numBuckets:  numBuckets,
		bucketSize:  bucketSize,
		payloadSize: payloadSize,
	}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func bucketKey(idx int) []byte {
	key := make([]byte, len(bucketKeyPrefix)+8)
	copy(key, bucketKeyPrefix)
	binary.BigEndian.PutUint64(key[len(bucketKeyPrefix):], uint64(idx))
	return key
}

// ReadBucket returns all blocks in the bucket at idx. A bucket that was
// never written reads as all-empty slots.
func (s *Store) ReadBucket(idx int) ([]oram.Block, error) {
	if idx < 0 || idx >= s.numBuckets {
		return nil, oram.ErrBucketOutOfRange
	}

	var blocks []oram.Block
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(bucketKey(idx))
		if err == badger.ErrKeyNotFound {
			blocks = make([]oram.Block, s.bucketSize)
			for i := range blocks {
				blocks[i] = oram.Block{ID: oram.EmptyBlockID}
			}
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			blocks, err = oram.UnmarshalBucket(val, s.bucketSize, s.payloadSize)
			return err
		})
	})
	if err != nil {
		return nil, fmt.Errorf("read bucket %d: %w", idx, err)
	}
	return blocks, nil
}

// WriteBucket persists all blocks to the bucket at idx.
func (s *Store) WriteBucket(idx int, blocks []oram.Block) error {
	if idx < 0 || idx >= s.numBuckets {
		return oram.ErrBucketOutOfRange
	}
	if len(blocks) != s.bucketSize {
		return oram.ErrInvalidConfig
	}

	buf := make([]byte, oram.BucketBytes(s.bucketSize, s.payloadSize))
	if err := oram.MarshalBucket(buf, blocks, s.payloadSize); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(bucketKey(idx), buf)
	})
	if err != nil {
		return fmt.Errorf("write bucket %d: %w", idx, err)
	}
	return nil
}

// NumBuckets returns the total number of buckets.
func (s *Store) NumBuckets() int {
	return s.numBuckets
}

// BucketSize returns slots per bucket.
func (s *Store) BucketSize() int {
	return s.bucketSize
}

// PayloadSize returns stored bytes per block payload.
func (s *Store) PayloadSize() int {
	return s.payloadSize
}
