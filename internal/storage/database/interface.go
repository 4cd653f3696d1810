// Package database defines the key-value store contract shared by the
// on-disk and in-memory backends.
package database

import (
	"context"
)

// DB defines the basic operations any database implementation must support
type DB interface {
	// Basic operations
	Read(ctx context.Context, key []byte) ([]byte, error)
	Write(ctx context.Context, key []byte, value []byte) error
	Delete(ctx context.Context, key []byte) error

	// Batch applies every operation atomically
	Batch(ctx context.Context, ops []BatchOperation) error

	// Iterator walks keys in [start, end) in ascending order. A nil bound is open.
	Iterator(ctx context.Context, start, end []byte) (Iterator, error)

	Close() error
}

// Iterator allows traversing over database entries
type Iterator interface {
	Next() bool
	Key() []byte
	Value() []byte
	Error() error
	Close() error
}

// BatchOperation represents a single operation in a batch
type BatchOperation struct {
	Type  BatchOpType
	Key   []byte
	Value []byte
}

type BatchOpType int

const (
	BatchPut BatchOpType = iota
	BatchDelete
)

// Put builds a BatchPut operation.
func Put(key, value []byte) BatchOperation {
	return BatchOperation{Type: BatchPut, Key: key, Value: value}
}

// Del builds a BatchDelete operation.
func Del(key []byte) BatchOperation {
	return BatchOperation{Type: BatchDelete, Key: key}
}

// PrefixEnd returns the smallest key greater than every key with the given
// prefix, or nil if there is none.
func PrefixEnd(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}
