// Package pebble is the default on-disk database.DB backend.
package pebble

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble"

	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/storage/database"
)

type DB struct {
	mu sync.RWMutex
	db *pebble.DB
}

// Open opens or creates a pebble store in dir.
func Open(dir string) (*DB, error) {
	opts := &pebble.Options{}
	db, err := pebble.Open(dir, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open pebble database %s: %w", dir, err)
	}
	return &DB{db: db}, nil
}

func (p *DB) handle() (*pebble.DB, func(), error) {
	p.mu.RLock()
	if p.db == nil {
		p.mu.RUnlock()
		return nil, nil, database.ErrDBClosed
	}
	return p.db, p.mu.RUnlock, nil
}

func (p *DB) Read(ctx context.Context, key []byte) ([]byte, error) {
	db, release, err := p.handle()
	if err != nil {
		return nil, err
	}
	defer release()

	val, closer, err := db.Get(key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, database.ErrKeyNotFound
		}
		return nil, err
	}
	defer closer.Close()

	// Copy the value out
	valCopy := make([]byte, len(val))
	copy(valCopy, val)
	return valCopy, nil
}

func (p *DB) Write(ctx context.Context, key, value []byte) error {
	db, release, err := p.handle()
	if err != nil {
		return err
	}
	defer release()
	return db.Set(key, value, pebble.Sync)
}

func (p *DB) Delete(ctx context.Context, key []byte) error {
	db, release, err := p.handle()
	if err != nil {
		return err
	}
	defer release()
	return db.Delete(key, pebble.Sync)
}

func (p *DB) Batch(ctx context.Context, ops []database.BatchOperation) error {
	db, release, err := p.handle()
	if err != nil {
		return err
	}
	defer release()

	batch := db.NewBatch()
	defer batch.Close()

	for _, op := range ops {
		switch op.Type {
		case database.BatchPut:
			if err := batch.Set(op.Key, op.Value, nil); err != nil {
				return err
			}
		case database.BatchDelete:
			if err := batch.Delete(op.Key, nil); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: %d", database.ErrUnknownBatchOp, op.Type)
		}
	}

	return batch.Commit(pebble.Sync)
}

func (p *DB) Iterator(ctx context.Context, start, end []byte) (database.Iterator, error) {
	db, release, err := p.handle()
	if err != nil {
		return nil, err
	}
	defer release()

	iter, err := db.NewIter(&pebble.IterOptions{
		LowerBound: start,
		UpperBound: end,
	})
	if err != nil {
		return nil, err
	}
	return &Iterator{iter: iter}, nil
}

func (p *DB) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.db == nil {
		return nil
	}
	err := p.db.Close()
	p.db = nil
	return err
}

type Iterator struct {
	iter    *pebble.Iterator
	started bool
	key     []byte
	value   []byte
}

func (it *Iterator) Next() bool {
	if !it.started {
		it.started = true
		it.iter.First()
	} else {
		it.iter.Next()
	}
	if !it.iter.Valid() {
		return false
	}
	it.key = append([]byte(nil), it.iter.Key()...)
	it.value = append([]byte(nil), it.iter.Value()...)
	return true
}

func (it *Iterator) Key() []byte {
	return it.key
}

func (it *Iterator) Value() []byte {
	return it.value
}

func (it *Iterator) Error() error {
	return it.iter.Error()
}

func (it *Iterator) Close() error {
	return it.iter.Close()
}
