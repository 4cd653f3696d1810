// Package backend opens a database.DB by configured backend name.
package backend

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/storage/database"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/storage/database/bbolt"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/storage/database/leveldb"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/storage/database/memory"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/storage/database/pebble"
)

// Backend names accepted by Open.
const (
	Memory  = "memory"
	Pebble  = "pebble"
	LevelDB = "leveldb"
	BBolt   = "bbolt"
)

// Names lists the supported backends.
func Names() []string {
	return []string{Memory, Pebble, LevelDB, BBolt}
}

// Open opens the named database under dir with the given backend. The memory
// backend ignores dir.
func Open(kind, dir, name string) (database.DB, error) {
	if kind != Memory {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory %s: %w", dir, err)
		}
	}

	switch kind {
	case Memory:
		return memory.New(), nil
	case Pebble:
		db, err := pebble.Open(filepath.Join(dir, name+".pebble"))
		if err != nil {
			return nil, err
		}
		return db, nil
	case LevelDB:
		db, err := leveldb.Open(filepath.Join(dir, name+".leveldb"))
		if err != nil {
			return nil, err
		}
		return db, nil
	case BBolt:
		db, err := bbolt.Open(filepath.Join(dir, name+".db"))
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, fmt.Errorf("%w: %q", database.ErrInvalidBackend, kind)
	}
}
