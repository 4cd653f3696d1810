// Package bbolt is a database.DB backend on a single bbolt bucket.
package bbolt

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"go.etcd.io/bbolt"

	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/storage/database"
)

// DefaultBucket holds every key.
var DefaultBucket = []byte("state")

type DB struct {
	mu     sync.RWMutex
	db     *bbolt.DB
	bucket []byte
}

// Open opens or creates the bbolt file at path with the default bucket.
func Open(path string) (*DB, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bbolt database %s: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(DefaultBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket %s: %w", DefaultBucket, err)
	}
	return &DB{db: db, bucket: DefaultBucket}, nil
}

func (b *DB) handle() (*bbolt.DB, func(), error) {
	b.mu.RLock()
	if b.db == nil {
		b.mu.RUnlock()
		return nil, nil, database.ErrDBClosed
	}
	return b.db, b.mu.RUnlock, nil
}

func (b *DB) Read(ctx context.Context, key []byte) ([]byte, error) {
	db, release, err := b.handle()
	if err != nil {
		return nil, err
	}
	defer release()

	var value []byte
	err = db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(b.bucket).Get(key)
		if v == nil {
			return database.ErrKeyNotFound
		}
		// bbolt values are only valid inside the transaction
		value = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (b *DB) Write(ctx context.Context, key []byte, value []byte) error {
	db, release, err := b.handle()
	if err != nil {
		return err
	}
	defer release()

	return db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(b.bucket).Put(key, value)
	})
}

func (b *DB) Delete(ctx context.Context, key []byte) error {
	db, release, err := b.handle()
	if err != nil {
		return err
	}
	defer release()

	return db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(b.bucket).Delete(key)
	})
}

func (b *DB) Batch(ctx context.Context, ops []database.BatchOperation) error {
	db, release, err := b.handle()
	if err != nil {
		return err
	}
	defer release()

	return db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(b.bucket)
		for _, op := range ops {
			var err error
			switch op.Type {
			case database.BatchPut:
				err = bucket.Put(op.Key, op.Value)
			case database.BatchDelete:
				err = bucket.Delete(op.Key)
			default:
				return fmt.Errorf("%w: %d", database.ErrUnknownBatchOp, op.Type)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// Iterator materializes the range inside one read transaction so the
// returned iterator does not pin the database.
func (b *DB) Iterator(ctx context.Context, start, end []byte) (database.Iterator, error) {
	db, release, err := b.handle()
	if err != nil {
		return nil, err
	}
	defer release()

	it := &Iterator{pos: -1}
	err = db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(b.bucket).Cursor()
		var k, v []byte
		if start == nil {
			k, v = c.First()
		} else {
			k, v = c.Seek(start)
		}
		for ; k != nil; k, v = c.Next() {
			if end != nil && bytes.Compare(k, end) >= 0 {
				break
			}
			it.keys = append(it.keys, append([]byte(nil), k...))
			it.values = append(it.values, append([]byte(nil), v...))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return it, nil
}

func (b *DB) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.db == nil {
		return nil
	}
	err := b.db.Close()
	b.db = nil
	return err
}

type Iterator struct {
	keys   [][]byte
	values [][]byte
	pos    int
}

func (it *Iterator) Next() bool {
	it.pos++
	return it.pos < len(it.keys)
}

func (it *Iterator) Key() []byte   { return it.keys[it.pos] }
func (it *Iterator) Value() []byte { return it.values[it.pos] }
func (it *Iterator) Error() error  { return nil }
func (it *Iterator) Close() error  { return nil }
