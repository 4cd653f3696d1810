// Package leveldb is a database.DB backend on goleveldb.
package leveldb

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/storage/database"
)

var syncWrite = &opt.WriteOptions{Sync: true}

type DB struct {
	mu sync.RWMutex
	db *leveldb.DB
}

// Open opens or creates a leveldb store in dir.
func Open(dir string) (*DB, error) {
	db, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open leveldb database %s: %w", dir, err)
	}
	return &DB{db: db}, nil
}

// OpenMemory opens a leveldb store backed by memory.
func OpenMemory() (*DB, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory leveldb: %w", err)
	}
	return &DB{db: db}, nil
}

func (l *DB) handle() (*leveldb.DB, func(), error) {
	l.mu.RLock()
	if l.db == nil {
		l.mu.RUnlock()
		return nil, nil, database.ErrDBClosed
	}
	return l.db, l.mu.RUnlock, nil
}

func (l *DB) Read(ctx context.Context, key []byte) ([]byte, error) {
	db, release, err := l.handle()
	if err != nil {
		return nil, err
	}
	defer release()

	val, err := db.Get(key, nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, database.ErrKeyNotFound
		}
		return nil, err
	}
	return val, nil
}

func (l *DB) Write(ctx context.Context, key, value []byte) error {
	db, release, err := l.handle()
	if err != nil {
		return err
	}
	defer release()
	return db.Put(key, value, syncWrite)
}

func (l *DB) Delete(ctx context.Context, key []byte) error {
	db, release, err := l.handle()
	if err != nil {
		return err
	}
	defer release()
	return db.Delete(key, syncWrite)
}

func (l *DB) Batch(ctx context.Context, ops []database.BatchOperation) error {
	db, release, err := l.handle()
	if err != nil {
		return err
	}
	defer release()

	batch := new(leveldb.Batch)
	for _, op := range ops {
		switch op.Type {
		case database.BatchPut:
			batch.Put(op.Key, op.Value)
		case database.BatchDelete:
			batch.Delete(op.Key)
		default:
			return fmt.Errorf("%w: %d", database.ErrUnknownBatchOp, op.Type)
		}
	}
	return db.Write(batch, syncWrite)
}

func (l *DB) Iterator(ctx context.Context, start, end []byte) (database.Iterator, error) {
	db, release, err := l.handle()
	if err != nil {
		return nil, err
	}
	defer release()

	return &Iterator{iter: db.NewIterator(&util.Range{Start: start, Limit: end}, nil)}, nil
}

func (l *DB) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.db == nil {
		return nil
	}
	err := l.db.Close()
	l.db = nil
	return err
}

type Iterator struct {
	iter iterator.Iterator
}

func (it *Iterator) Next() bool {
	return it.iter.Next()
}

func (it *Iterator) Key() []byte {
	return append([]byte(nil), it.iter.Key()...)
}

func (it *Iterator) Value() []byte {
	return append([]byte(nil), it.iter.Value()...)
}

func (it *Iterator) Error() error {
	return it.iter.Error()
}

func (it *Iterator) Close() error {
	it.iter.Release()
	return nil
}
