// Package statestore persists token snapshots in a key-value database.
//
// The global record lives under "meta" and each account under
// "acct/<hex address>". Records are msgpack-encoded and framed by the
// compression codec. A save is a single database batch.
package statestore

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/ugorji/go/codec"

	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/address"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/token"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/crypto"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/storage/compression"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/storage/database"
)

var (
	// ErrUnsupportedVersion is returned when the stored meta record was
	// written by an incompatible format.
	ErrUnsupportedVersion = errors.New("statestore: unsupported record version")

	// ErrCorruptRecord wraps decode failures.
	ErrCorruptRecord = errors.New("statestore: corrupt record")
)

var (
	metaKey       = []byte("meta")
	accountPrefix = []byte("acct/")
)

// DefaultCacheSize bounds the written-record cache.
const DefaultCacheSize = 8192

func accountKey(a address.Address) []byte {
	key := make([]byte, len(accountPrefix), len(accountPrefix)+2*address.Length)
	copy(key, accountPrefix)
	return append(key, hex.EncodeToString(a.Bytes())...)
}

type Option func(*options)

type options struct {
	compressor string
	cacheSize  int
	logger     *slog.Logger
}

// WithCompression selects the record codec by registry name.
func WithCompression(name string) Option {
	return func(o *options) { o.compressor = name }
}

// WithCacheSize sets how many written-record digests are remembered.
func WithCacheSize(n int) Option {
	return func(o *options) { o.cacheSize = n }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Store reads and writes token state.
type Store struct {
	db      database.DB
	codec   *compression.Codec
	handle  codec.MsgpackHandle
	written *lru.Cache[string, [crypto.HashLength]byte]
	logger  *slog.Logger
}

// New wraps db. Close closes it.
func New(db database.DB, opts ...Option) (*Store, error) {
	o := options{
		compressor: compression.LZ4,
		cacheSize:  DefaultCacheSize,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	c, err := compression.NewCodec(o.compressor)
	if err != nil {
		return nil, fmt.Errorf("statestore: %w", err)
	}
	written, err := lru.New[string, [crypto.HashLength]byte](o.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("statestore: %w", err)
	}

	s := &Store{
		db:      db,
		codec:   c,
		written: written,
		logger:  o.logger.With("component", "statestore"),
	}
	s.handle.Canonical = true
	return s, nil
}

func (s *Store) encode(v any) ([]byte, error) {
	var raw []byte
	if err := codec.NewEncoderBytes(&raw, &s.handle).Encode(v); err != nil {
		return nil, err
	}
	return s.codec.Encode(raw)
}

func (s *Store) decode(frame []byte, v any) error {
	raw, err := s.codec.Decode(frame)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	if err := codec.NewDecoderBytes(raw, &s.handle).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	return nil
}

// stage appends a put for key unless the same frame was the last one written.
func (s *Store) stage(ops []database.BatchOperation, pending map[string][crypto.HashLength]byte, key, frame []byte) []database.BatchOperation {
	digest := crypto.Keccak256(frame)
	if prev, ok := s.written.Get(string(key)); ok && prev == digest {
		return ops
	}
	pending[string(key)] = digest
	return append(ops, database.Put(key, frame))
}

// Save writes the global record and every account in st. Accounts with no
// state are deleted.
func (s *Store) Save(ctx context.Context, st token.State) error {
	meta, err := s.encode(newMetaRecord(st))
	if err != nil {
		return fmt.Errorf("encode meta: %w", err)
	}

	pending := make(map[string][crypto.HashLength]byte)
	var deleted [][]byte
	ops := s.stage(nil, pending, metaKey, meta)

	accounts := make([]address.Address, 0, len(st.Accounts))
	for a := range st.Accounts {
		accounts = append(accounts, a)
	}
	sortAddresses(accounts)

	for _, a := range accounts {
		key := accountKey(a)
		acc := st.Accounts[a]
		if acc.IsEmpty() {
			ops = append(ops, database.Del(key))
			deleted = append(deleted, key)
			continue
		}
		frame, err := s.encode(newAccountRecord(acc))
		if err != nil {
			return fmt.Errorf("encode account %s: %w", a, err)
		}
		ops = s.stage(ops, pending, key, frame)
	}

	if len(ops) == 0 {
		return nil
	}
	if err := s.db.Batch(ctx, ops); err != nil {
		return fmt.Errorf("save state: %w", err)
	}

	for k, d := range pending {
		s.written.Add(k, d)
	}
	for _, k := range deleted {
		s.written.Remove(string(k))
	}
	s.logger.Debug("state saved", "seq", st.Seq, "writes", len(ops))
	return nil
}

// Load reads the stored state. ok is false when nothing has been saved yet.
func (s *Store) Load(ctx context.Context) (st token.State, ok bool, err error) {
	frame, err := s.db.Read(ctx, metaKey)
	if errors.Is(err, database.ErrKeyNotFound) {
		return st, false, nil
	}
	if err != nil {
		return st, false, fmt.Errorf("load meta: %w", err)
	}

	var meta metaRecord
	if err := s.decode(frame, &meta); err != nil {
		return st, false, fmt.Errorf("load meta: %w", err)
	}
	if meta.Version != formatVersion {
		return st, false, fmt.Errorf("%w: %d", ErrUnsupportedVersion, meta.Version)
	}
	if err := meta.apply(&st); err != nil {
		return st, false, fmt.Errorf("load meta: %w: %v", ErrCorruptRecord, err)
	}
	s.written.Add(string(metaKey), crypto.Keccak256(frame))

	it, err := s.db.Iterator(ctx, accountPrefix, database.PrefixEnd(accountPrefix))
	if err != nil {
		return st, false, fmt.Errorf("load accounts: %w", err)
	}
	defer it.Close()

	st.Accounts = make(map[address.Address]token.AccountState)
	for it.Next() {
		key := it.Key()
		raw, err := hex.DecodeString(string(key[len(accountPrefix):]))
		if err != nil {
			return st, false, fmt.Errorf("load account key %q: %w: %v", key, ErrCorruptRecord, err)
		}
		a, err := address.FromBytes(raw)
		if err != nil {
			return st, false, fmt.Errorf("load account key %q: %w: %v", key, ErrCorruptRecord, err)
		}

		var rec accountRecord
		if err := s.decode(it.Value(), &rec); err != nil {
			return st, false, fmt.Errorf("load account %s: %w", a, err)
		}
		acc, err := rec.state()
		if err != nil {
			return st, false, fmt.Errorf("load account %s: %w: %v", a, ErrCorruptRecord, err)
		}
		st.Accounts[a] = acc
		s.written.Add(string(key), crypto.Keccak256(it.Value()))
	}
	if err := it.Error(); err != nil {
		return st, false, fmt.Errorf("load accounts: %w", err)
	}

	s.logger.Info("state loaded", "seq", st.Seq, "accounts", len(st.Accounts), "holders", len(st.Holders))
	return st, true, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func sortAddresses(as []address.Address) {
	sort.Slice(as, func(i, j int) bool { return as[i].Less(as[j]) })
}
