// Package memory is an in-process database.DB used for ephemeral nodes and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/storage/database"
)

type DB struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
}

// New returns an empty in-memory database.
func New() *DB {
	return &DB{data: make(map[string][]byte)}
}

func (m *DB) Read(ctx context.Context, key []byte) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, database.ErrDBClosed
	}
	v, ok := m.data[string(key)]
	if !ok {
		return nil, database.ErrKeyNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *DB) Write(ctx context.Context, key, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return database.ErrDBClosed
	}
	m.data[string(key)] = append([]byte(nil), value...)
	return nil
}

func (m *DB) Delete(ctx context.Context, key []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return database.ErrDBClosed
	}
	delete(m.data, string(key))
	return nil
}

func (m *DB) Batch(ctx context.Context, ops []database.BatchOperation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return database.ErrDBClosed
	}
	for _, op := range ops {
		if op.Type != database.BatchPut && op.Type != database.BatchDelete {
			return fmt.Errorf("%w: %d", database.ErrUnknownBatchOp, op.Type)
		}
	}
	for _, op := range ops {
		if op.Type == database.BatchPut {
			m.data[string(op.Key)] = append([]byte(nil), op.Value...)
		} else {
			delete(m.data, string(op.Key))
		}
	}
	return nil
}

func (m *DB) Iterator(ctx context.Context, start, end []byte) (database.Iterator, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, database.ErrDBClosed
	}

	it := &Iterator{pos: -1}
	for k, v := range m.data {
		if start != nil && k < string(start) {
			continue
		}
		if end != nil && k >= string(end) {
			continue
		}
		it.keys = append(it.keys, k)
		it.values = append(it.values, append([]byte(nil), v...))
	}
	sort.Sort(it)
	return it, nil
}

func (m *DB) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.data = nil
	return nil
}

// Iterator walks a sorted snapshot taken when it was created.
type Iterator struct {
	keys   []string
	values [][]byte
	pos    int
}

func (it *Iterator) Len() int           { return len(it.keys) }
func (it *Iterator) Less(i, j int) bool { return it.keys[i] < it.keys[j] }
func (it *Iterator) Swap(i, j int) {
	it.keys[i], it.keys[j] = it.keys[j], it.keys[i]
	it.values[i], it.values[j] = it.values[j], it.values[i]
}

func (it *Iterator) Next() bool {
	it.pos++
	return it.pos < len(it.keys)
}

func (it *Iterator) Key() []byte {
	return []byte(it.keys[it.pos])
}

func (it *Iterator) Value() []byte {
	return it.values[it.pos]
}

func (it *Iterator) Error() error { return nil }
func (it *Iterator) Close() error { return nil }
