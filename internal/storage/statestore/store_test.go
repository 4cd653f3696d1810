package statestore

import (
	"context"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/address"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/fee"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/token"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/storage/compression"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/storage/database"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/storage/database/memory"
)

var (
	owner = address.MustParse("0x00000000000000000000000000000000000000a1")
	alice = address.MustParse("0x00000000000000000000000000000000000000b2")
	bob   = address.MustParse("0x00000000000000000000000000000000000000c3")
)

// countingDB records how many operations each batch carries.
type countingDB struct {
	database.DB
	batches []int
}

func (c *countingDB) Batch(ctx context.Context, ops []database.BatchOperation) error {
	c.batches = append(c.batches, len(ops))
	return c.DB.Batch(ctx, ops)
}

func newToken(t *testing.T) *token.Token {
	t.Helper()
	tok, err := token.New(owner, uint256.NewInt(10_000), fee.Params{
		BaseTxFee:       uint256.NewInt(1),
		FeeIncrement:    uint256.NewInt(1),
		VolumeThreshold: uint256.NewInt(1000),
	}, token.WithFeeRecipient(bob))
	require.NoError(t, err)
	return tok
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	for _, comp := range compression.Available() {
		t.Run(comp, func(t *testing.T) {
			store, err := New(memory.New(), WithCompression(comp))
			require.NoError(t, err)
			defer store.Close()

			_, ok, err := store.Load(ctx)
			require.NoError(t, err)
			assert.False(t, ok)

			tok := newToken(t)
			require.NoError(t, tok.Transfer(owner, alice, uint256.NewInt(1500)))
			require.NoError(t, tok.Approve(alice, bob, uint256.NewInt(40)))
			require.NoError(t, tok.Rebase(owner, 150))

			want := tok.Export()
			require.NoError(t, store.Save(ctx, want))

			got, ok, err := store.Load(ctx)
			require.NoError(t, err)
			require.True(t, ok)

			assert.Equal(t, want.Name, got.Name)
			assert.Equal(t, want.Owner, got.Owner)
			assert.Equal(t, want.FeeRecipient, got.FeeRecipient)
			assert.Equal(t, want.Factor.Uint64(), got.Factor.Uint64())
			assert.Equal(t, want.TotalNormalized.Uint64(), got.TotalNormalized.Uint64())
			assert.Equal(t, want.CumulativeVolume.Uint64(), got.CumulativeVolume.Uint64())
			assert.Equal(t, want.Seq, got.Seq)
			assert.Equal(t, want.Holders, got.Holders)
			require.Len(t, got.Accounts, len(want.Accounts))
			assert.Equal(t, uint64(40), got.Accounts[alice].Allowances[bob].Uint64())

			restored, err := token.Restore(got)
			require.NoError(t, err)
			assert.Equal(t, tok.BalanceOf(alice), restored.BalanceOf(alice))
			assert.Equal(t, tok.TotalSupply(), restored.TotalSupply())
			assert.Equal(t, tok.Holders(), restored.Holders())
		})
	}
}

func TestSaveSkipsUnchangedRecords(t *testing.T) {
	ctx := context.Background()
	db := &countingDB{DB: memory.New()}
	store, err := New(db)
	require.NoError(t, err)

	tok := newToken(t)
	require.NoError(t, tok.Transfer(owner, alice, uint256.NewInt(100)))
	require.NoError(t, store.Save(ctx, tok.Export()))
	// meta plus owner, alice and the fee recipient
	assert.Equal(t, []int{4}, db.batches)

	require.NoError(t, store.Save(ctx, tok.Export()))
	assert.Len(t, db.batches, 1)

	require.NoError(t, tok.Approve(alice, bob, uint256.NewInt(5)))
	require.NoError(t, store.Save(ctx, tok.Snapshot(tok.TakeDirty())))
	assert.Equal(t, []int{4, 2}, db.batches)
}

func TestSaveDeletesEmptyAccounts(t *testing.T) {
	ctx := context.Background()
	store, err := New(memory.New())
	require.NoError(t, err)

	tok := newToken(t)
	require.NoError(t, tok.Approve(alice, bob, uint256.NewInt(5)))
	require.NoError(t, store.Save(ctx, tok.Export()))

	require.NoError(t, tok.Approve(alice, bob, uint256.NewInt(0)))
	require.NoError(t, store.Save(ctx, tok.Snapshot([]address.Address{alice})))

	got, ok, err := store.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	_, found := got.Accounts[alice]
	assert.False(t, found)
}

func TestLoadRejectsCorruptRecords(t *testing.T) {
	ctx := context.Background()

	t.Run("meta", func(t *testing.T) {
		db := memory.New()
		require.NoError(t, db.Write(ctx, metaKey, []byte{0xff, 0x01, 0x02}))
		store, err := New(db)
		require.NoError(t, err)

		_, _, err = store.Load(ctx)
		assert.ErrorIs(t, err, ErrCorruptRecord)
	})

	t.Run("account key", func(t *testing.T) {
		store, err := New(memory.New())
		require.NoError(t, err)
		require.NoError(t, store.Save(ctx, newToken(t).Export()))
		require.NoError(t, store.db.Write(ctx, []byte("acct/zz"), []byte{0}))

		_, _, err = store.Load(ctx)
		assert.ErrorIs(t, err, ErrCorruptRecord)
	})

	t.Run("version", func(t *testing.T) {
		store, err := New(memory.New())
		require.NoError(t, err)
		frame, err := store.encode(metaRecord{Version: formatVersion + 1})
		require.NoError(t, err)
		require.NoError(t, store.db.Write(ctx, metaKey, frame))

		_, _, err = store.Load(ctx)
		assert.ErrorIs(t, err, ErrUnsupportedVersion)
	})
}

func TestNewUnknownCompressor(t *testing.T) {
	_, err := New(memory.New(), WithCompression("brotli"))
	assert.Error(t, err)
}

func TestAccountKey(t *testing.T) {
	assert.Equal(t, "acct/00000000000000000000000000000000000000b2", string(accountKey(alice)))
}
