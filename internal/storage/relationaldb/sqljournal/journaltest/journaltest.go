// Package journaltest holds the behavioural suite every journal driver runs.
package journaltest

import (
	"context"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/address"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/ledger"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/storage/relationaldb"
)

// RunJournalTests exercises a fresh, empty journal against the
// relationaldb.Journal contract.
func RunJournalTests(t *testing.T, j relationaldb.Journal) {
	ctx := context.Background()
	alice := address.MustParse("0x00000000000000000000000000000000000000a1")
	bob := address.MustParse("0x00000000000000000000000000000000000000b2")
	carol := address.MustParse("0x00000000000000000000000000000000000000c3")
	at := time.UnixMilli(1_700_000_000_000).UTC()

	big, err := uint256.FromDecimal("115792089237316195423570985008687907853269984665640564039457584007913129639935")
	require.NoError(t, err)

	events := []ledger.Event{
		ledger.TransferEvent(address.Zero, alice, uint256.NewInt(1000)),
		ledger.TransferEvent(alice, bob, uint256.NewInt(500)),
		ledger.ApprovalEvent(bob, carol, big),
		ledger.RebaseEvent(uint256.NewInt(100), uint256.NewInt(150)),
	}
	for i := range events {
		events[i].Seq = uint64(i + 1)
	}

	require.NoError(t, j.Append(ctx, relationaldb.RecordsFromEvents("transfer", events, at)))
	// duplicates are skipped
	require.NoError(t, j.Append(ctx, relationaldb.RecordsFromEvents("transfer", events[:1], at)))

	latest, err := j.Latest(ctx, 0)
	require.NoError(t, err)
	require.Len(t, latest, 4)
	assert.Equal(t, uint64(4), latest[0].Seq)
	assert.Equal(t, "Rebase", latest[0].Kind)
	assert.Nil(t, latest[0].Amount)
	assert.Equal(t, uint64(150), latest[0].NewFactor.Uint64())
	assert.Equal(t, at, latest[0].CreatedAt)

	limited, err := j.Latest(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	byBob, err := j.ByAccount(ctx, bob, 10)
	require.NoError(t, err)
	require.Len(t, byBob, 2)
	assert.Equal(t, "Approval", byBob[0].Kind)
	assert.Equal(t, big, byBob[0].Amount)
	assert.Equal(t, carol, byBob[0].To)
	assert.Equal(t, alice, byBob[1].From)

	none, err := j.ByAccount(ctx, address.MustParse("0x00000000000000000000000000000000000000ff"), 10)
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = j.Latest(ctx, -1)
	assert.ErrorIs(t, err, relationaldb.ErrInvalidLimit)

	require.NoError(t, j.Close())
	_, err = j.Latest(ctx, 1)
	assert.ErrorIs(t, err, relationaldb.ErrDatabaseClosed)
	assert.NoError(t, j.Close())
}
