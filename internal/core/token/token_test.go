package token

import (
	"fmt"
	"sync"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/address"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/fee"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/ledger"
)

func addr(b byte) address.Address {
	var a address.Address
	a[0] = 0xaa
	a[19] = b
	return a
}

func u(v uint64) *uint256.Int {
	return uint256.NewInt(v)
}

func feeParams(base, inc, threshold uint64) fee.Params {
	return fee.Params{BaseTxFee: u(base), FeeIncrement: u(inc), VolumeThreshold: u(threshold)}
}

var (
	owner    = addr(1)
	addr1    = addr(2)
	addr2    = addr(3)
	addr3    = addr(4)
	treasury = addr(9)
)

type recorder struct {
	mu      sync.Mutex
	commits []Commit
}

func (r *recorder) hooks() Hooks {
	return Hooks{OnCommit: func(c Commit) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.commits = append(r.commits, c)
	}}
}

func (r *recorder) last() Commit {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.commits[len(r.commits)-1]
}

func mustNew(t *testing.T, premint uint64, params fee.Params, opts ...Option) *Token {
	t.Helper()
	tok, err := New(owner, u(premint), params, opts...)
	require.NoError(t, err)
	return tok
}

func balance(tok *Token, a address.Address) uint64 {
	return tok.BalanceOf(a).Uint64()
}

func assertInvariants(t *testing.T, tok *Token) {
	t.Helper()
	s := tok.Snapshot(nil)
	sum := new(uint256.Int)
	for _, acc := range s.Accounts {
		sum.Add(sum, acc.Normalized)
	}
	assert.Equal(t, s.TotalNormalized.Dec(), sum.Dec(), "normalized balances must sum to total")

	holders := make(map[address.Address]bool)
	for _, h := range s.Holders {
		assert.False(t, holders[h], "duplicate holder %s", h)
		holders[h] = true
	}
	for a := range s.Accounts {
		assert.Equal(t, !tok.BalanceOf(a).IsZero(), holders[a], "holder membership for %s", a)
	}
}

func TestNewMintsPremintToOwner(t *testing.T) {
	tok := mustNew(t, 1000, feeParams(1, 1, 1000))

	assert.Equal(t, uint64(1000), balance(tok, owner))
	assert.Equal(t, uint64(1000), tok.TotalSupply().Uint64())
	assert.Equal(t, []address.Address{owner}, tok.Holders())
	assert.Equal(t, uint64(100), tok.ScalingFactor().Uint64())
	assert.Equal(t, uint64(1), tok.TxFee().Uint64())
	assert.Equal(t, DefaultName, tok.Name())
	assert.Equal(t, DefaultSymbol, tok.Symbol())
	assert.Equal(t, uint8(DefaultDecimals), tok.Decimals())
	assert.Equal(t, owner, tok.Owner())
}

func TestNewValidation(t *testing.T) {
	_, err := New(address.Zero, u(1), feeParams(1, 1, 1))
	assert.ErrorIs(t, err, ErrInvalidRecipient)

	_, err = New(owner, u(1), feeParams(1, 1, 0))
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestTransferScenario(t *testing.T) {
	rec := &recorder{}
	tok := mustNew(t, 1000, feeParams(1, 1, 1000), WithHooks(rec.hooks()))

	require.NoError(t, tok.Transfer(owner, addr1, u(500)))

	assert.Equal(t, uint64(1), tok.TxFee().Uint64())
	assert.Equal(t, uint64(500), balance(tok, addr1))
	assert.Equal(t, uint64(499), balance(tok, owner))
	assert.Equal(t, []address.Address{owner, addr1}, tok.Holders())
	assert.Equal(t, uint64(500), tok.CumulativeVolume().Uint64())

	c := rec.last()
	assert.Equal(t, "transfer", c.Op)
	require.Len(t, c.Events, 2)
	assert.Equal(t, ledger.EventTransfer, c.Events[0].Kind)
	assert.Equal(t, owner, c.Events[0].From)
	assert.Equal(t, addr1, c.Events[0].To)
	assert.Equal(t, uint64(500), c.Events[0].Amount.Uint64())
	assert.Equal(t, address.Zero, c.Events[1].To, "unconfigured fee recipient burns the fee")
	assert.Equal(t, uint64(1), c.Events[1].Amount.Uint64())
	assert.Less(t, c.Events[0].Seq, c.Events[1].Seq)
	assert.ElementsMatch(t, []address.Address{owner, addr1}, c.Touched)

	assertInvariants(t, tok)
}

func TestTransferFeeRecipient(t *testing.T) {
	tok := mustNew(t, 1000, feeParams(1, 1, 1000), WithFeeRecipient(treasury))

	require.NoError(t, tok.Transfer(owner, addr1, u(500)))
	assert.Equal(t, uint64(1), balance(tok, treasury))
	assert.Equal(t, uint64(499), balance(tok, owner))
	assert.Equal(t, uint64(1000), tok.TotalSupply().Uint64())
	assert.Equal(t, []address.Address{owner, addr1, treasury}, tok.Holders())
	assertInvariants(t, tok)
}

func TestTransferFeeTiers(t *testing.T) {
	tok := mustNew(t, 10000, feeParams(1, 1, 1000))

	require.NoError(t, tok.Transfer(owner, addr1, u(900)))
	assert.Equal(t, uint64(1), tok.TxFee().Uint64())

	require.NoError(t, tok.Transfer(owner, addr1, u(100)))
	assert.Equal(t, uint64(2), tok.TxFee().Uint64())

	require.NoError(t, tok.Transfer(owner, addr1, u(2000)))
	assert.Equal(t, uint64(4), tok.TxFee().Uint64())

	quote, err := tok.QuoteFee(u(0))
	require.NoError(t, err)
	assert.Equal(t, uint64(4), quote.Uint64())
}

func TestTransferFailuresAreAtomic(t *testing.T) {
	tok := mustNew(t, 1000, feeParams(1, 1, 1000))
	require.NoError(t, tok.Transfer(owner, addr1, u(500)))

	err := tok.Transfer(addr1, addr2, u(500))
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, uint64(500), balance(tok, addr1))
	assert.Equal(t, uint64(500), tok.CumulativeVolume().Uint64(), "failed transfer must not record volume")
	assert.Equal(t, uint64(1), tok.TxFee().Uint64())

	err = tok.Transfer(owner, address.Zero, u(1))
	assert.ErrorIs(t, err, ErrInvalidRecipient)

	require.NoError(t, tok.Transfer(addr1, addr2, u(499)))
	assert.True(t, tok.BalanceOf(addr1).IsZero())
	assert.Equal(t, []address.Address{owner, addr2}, tok.Holders())
	assertInvariants(t, tok)
}

func TestAllowances(t *testing.T) {
	rec := &recorder{}
	tok := mustNew(t, 1000, feeParams(1, 0, 1000), WithHooks(rec.hooks()))

	require.NoError(t, tok.Approve(owner, addr1, u(100)))
	c := rec.last()
	require.Len(t, c.Events, 1)
	assert.Equal(t, ledger.EventApproval, c.Events[0].Kind)
	assert.Equal(t, owner, c.Events[0].From)
	assert.Equal(t, addr1, c.Events[0].To)

	require.NoError(t, tok.IncreaseAllowance(owner, addr1, u(50)))
	assert.Equal(t, uint64(150), tok.Allowance(owner, addr1).Uint64())

	err := tok.DecreaseAllowance(owner, addr1, u(200))
	assert.ErrorIs(t, err, ErrInvalidAllowance)
	assert.Equal(t, uint64(150), tok.Allowance(owner, addr1).Uint64())

	require.NoError(t, tok.DecreaseAllowance(owner, addr1, u(50)))
	assert.Equal(t, uint64(100), tok.Allowance(owner, addr1).Uint64())

	require.NoError(t, tok.TransferFrom(addr1, owner, addr3, u(100)))
	assert.True(t, tok.Allowance(owner, addr1).IsZero())
	assert.Equal(t, uint64(100), balance(tok, addr3))
	assert.Equal(t, uint64(899), balance(tok, owner))

	err = tok.TransferFrom(addr1, owner, addr3, u(1))
	assert.ErrorIs(t, err, ErrInsufficientAllowance)

	err = tok.Approve(owner, address.Zero, u(1))
	assert.ErrorIs(t, err, ErrInvalidRecipient)
	assertInvariants(t, tok)
}

func TestTransferFromRollsBackAllowance(t *testing.T) {
	tok := mustNew(t, 100, feeParams(1, 0, 1000))
	require.NoError(t, tok.Approve(owner, addr1, u(1000)))

	err := tok.TransferFrom(addr1, owner, addr2, u(100))
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, uint64(1000), tok.Allowance(owner, addr1).Uint64())
	assert.Equal(t, uint64(100), balance(tok, owner))
}

func TestUnlimitedAllowance(t *testing.T) {
	tok := mustNew(t, 1000, feeParams(0, 0, 1000))
	max := new(uint256.Int).SetAllOne()
	require.NoError(t, tok.Approve(owner, addr1, max))

	require.NoError(t, tok.TransferFrom(addr1, owner, addr2, u(10)))
	assert.Equal(t, max, tok.Allowance(owner, addr1))

	err := tok.IncreaseAllowance(owner, addr1, u(1))
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestMint(t *testing.T) {
	tok := mustNew(t, 0, feeParams(1, 1, 1000))
	assert.Empty(t, tok.Holders())

	err := tok.Mint(addr1, addr1, u(10))
	assert.ErrorIs(t, err, ErrNotOwner)

	err = tok.Mint(owner, address.Zero, u(10))
	assert.ErrorIs(t, err, ErrInvalidRecipient)

	require.NoError(t, tok.Mint(owner, addr1, u(10)))
	assert.Equal(t, uint64(10), balance(tok, addr1))
	assert.Equal(t, []address.Address{addr1}, tok.Holders())
	assert.True(t, tok.CumulativeVolume().IsZero(), "minting is not transfer volume")
}

func TestMintTruncatesUnderRebase(t *testing.T) {
	tok := mustNew(t, 1000, feeParams(1, 1, 1000))
	require.NoError(t, tok.Rebase(owner, 110))
	assert.Equal(t, uint64(1100), balance(tok, owner))

	// 10 scaled is 1000/110 = 9 normalized, which scales back to 9.
	require.NoError(t, tok.Mint(owner, addr1, u(10)))
	assert.Equal(t, uint64(9), tok.NormalizedBalanceOf(addr1).Uint64())
	assert.Equal(t, uint64(9), balance(tok, addr1))

	require.NoError(t, tok.DistributeReward(owner, []address.Address{addr2}, u(10), 0, 1))
	assert.Equal(t, uint64(9), tok.NormalizedBalanceOf(addr2).Uint64())
	assert.Equal(t, uint64(9), balance(tok, addr2))

	// 1018 normalized at factor 110.
	assert.Equal(t, uint64(1119), tok.TotalSupply().Uint64())
	assertInvariants(t, tok)
}

func TestRebaseScenario(t *testing.T) {
	tok := mustNew(t, 0, feeParams(1, 1, 1000))
	require.NoError(t, tok.Mint(owner, owner, u(1000)))
	require.NoError(t, tok.Mint(owner, addr1, u(1000)))

	require.NoError(t, tok.Rebase(owner, 110))
	assert.Equal(t, uint64(110), tok.ScalingFactor().Uint64())
	assert.Equal(t, uint64(2200), tok.TotalSupply().Uint64())
	assert.Equal(t, uint64(1100), balance(tok, owner))
	assert.Equal(t, balance(tok, owner), balance(tok, addr1), "shares are preserved")

	assert.Equal(t, uint64(1100), tok.ScaledAmount(u(1000)).Uint64())
	assert.Equal(t, uint64(1000), tok.NormalizedAmount(u(1100)).Uint64())
	assert.Equal(t, uint64(1000), tok.NormalizedBalanceOf(owner).Uint64())
	assertInvariants(t, tok)
}

func TestRebaseValidation(t *testing.T) {
	tok := mustNew(t, 1000, feeParams(1, 1, 1000))

	assert.ErrorIs(t, tok.Rebase(owner, 0), ErrInvalidPercentage)
	assert.ErrorIs(t, tok.Rebase(owner, 1001), ErrInvalidPercentage)
	assert.ErrorIs(t, tok.Rebase(addr1, 110), ErrNotOwner)
	assert.Equal(t, uint64(100), tok.ScalingFactor().Uint64())

	require.NoError(t, tok.Rebase(owner, 1000))
	assert.Equal(t, uint64(1000), tok.ScalingFactor().Uint64())
	require.NoError(t, tok.Rebase(owner, 1))
	assert.Equal(t, uint64(10), tok.ScalingFactor().Uint64())
	assertInvariants(t, tok)
}

func TestTransferAfterRebase(t *testing.T) {
	tok := mustNew(t, 1000, feeParams(0, 0, 1000))
	require.NoError(t, tok.Rebase(owner, 200))
	assert.Equal(t, uint64(2000), balance(tok, owner))

	require.NoError(t, tok.Transfer(owner, addr1, u(2000)))
	assert.Equal(t, uint64(2000), balance(tok, addr1))
	assert.True(t, tok.BalanceOf(owner).IsZero())
	assert.Equal(t, []address.Address{addr1}, tok.Holders())
	assertInvariants(t, tok)
}

func TestSetFeeParams(t *testing.T) {
	tok := mustNew(t, 1000, feeParams(1, 1, 1000))

	assert.ErrorIs(t, tok.SetFeeParams(addr1, feeParams(2, 2, 10)), ErrNotOwner)
	assert.ErrorIs(t, tok.SetFeeParams(owner, feeParams(2, 2, 0)), ErrInvalidParameter)

	require.NoError(t, tok.SetFeeParams(owner, feeParams(5, 2, 100)))
	p := tok.FeeParams()
	assert.Equal(t, uint64(5), p.BaseTxFee.Uint64())
	assert.Equal(t, uint64(2), p.FeeIncrement.Uint64())
	assert.Equal(t, uint64(100), p.VolumeThreshold.Uint64())

	require.NoError(t, tok.Transfer(owner, addr1, u(250)))
	assert.Equal(t, uint64(5+2*2), tok.TxFee().Uint64())

	require.NoError(t, tok.SetFeeParams(owner, feeParams(7, 1, 100)))
	assert.Equal(t, uint64(9), tok.TxFee().Uint64(), "last charged fee is kept once volume accrued")
}

func TestSetFeeParamsBeforeAnyTransfer(t *testing.T) {
	tok := mustNew(t, 1000, feeParams(1, 1, 1000))
	assert.Equal(t, uint64(1), tok.TxFee().Uint64())

	require.NoError(t, tok.SetFeeParams(owner, feeParams(5, 2, 100)))
	assert.Equal(t, uint64(5), tok.TxFee().Uint64())

	assert.ErrorIs(t, tok.SetFeeParams(addr1, feeParams(8, 2, 100)), ErrNotOwner)
	assert.Equal(t, uint64(5), tok.TxFee().Uint64())
}

func TestDistributeReward(t *testing.T) {
	tok := mustNew(t, 1000, feeParams(1, 1, 1000))
	a, b, c := addr(20), addr(21), addr(22)
	recipients := []address.Address{a, b, c}

	require.NoError(t, tok.DistributeReward(owner, recipients, u(10), 0, 2))
	assert.Equal(t, uint64(10), balance(tok, a))
	assert.Equal(t, uint64(10), balance(tok, b))
	assert.True(t, tok.BalanceOf(c).IsZero())
	assert.Equal(t, []address.Address{owner, a, b}, tok.Holders())
	assert.True(t, tok.CumulativeVolume().IsZero(), "rewards are fee-free")
	assert.Equal(t, uint64(1020), tok.TotalSupply().Uint64())

	for _, bounds := range [][2]int{{0, 4}, {2, 1}, {-1, 1}} {
		err := tok.DistributeReward(owner, recipients, u(10), bounds[0], bounds[1])
		assert.ErrorIs(t, err, ErrIndexOutOfRange, "bounds %v", bounds)
	}

	require.NoError(t, tok.DistributeReward(owner, recipients, u(10), 3, 3))
	assert.ErrorIs(t, tok.DistributeReward(addr1, recipients, u(10), 0, 1), ErrNotOwner)

	err := tok.DistributeReward(owner, []address.Address{c, address.Zero}, u(10), 0, 2)
	assert.ErrorIs(t, err, ErrInvalidRecipient)
	assert.True(t, tok.BalanceOf(c).IsZero(), "batch must not partially apply")
	assertInvariants(t, tok)
}

func TestRebaseAllAccounts(t *testing.T) {
	tok := mustNew(t, 1000, feeParams(0, 0, 1000))
	require.NoError(t, tok.Transfer(owner, addr1, u(250)))

	require.NoError(t, tok.RebaseAllAccounts(owner, u(100), true))
	assert.Equal(t, uint64(825), balance(tok, owner))
	assert.Equal(t, uint64(275), balance(tok, addr1))
	assert.Equal(t, uint64(1100), tok.TotalSupply().Uint64())

	require.NoError(t, tok.RebaseAllAccounts(owner, u(100), false))
	assert.Equal(t, uint64(750), balance(tok, owner))
	assert.Equal(t, uint64(250), balance(tok, addr1))

	err := tok.RebaseAllAccounts(owner, u(2000), false)
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, uint64(750), balance(tok, owner), "contraction must not partially apply")
	assert.Equal(t, uint64(250), balance(tok, addr1))

	assert.ErrorIs(t, tok.RebaseAllAccounts(addr1, u(1), true), ErrNotOwner)

	require.NoError(t, tok.RebaseAllAccounts(owner, u(1000), false))
	assert.True(t, tok.TotalSupply().IsZero())
	assert.Empty(t, tok.Holders())
	assertInvariants(t, tok)

	require.NoError(t, tok.RebaseAllAccounts(owner, u(1000), true), "no holders is a no-op")
	assert.True(t, tok.TotalSupply().IsZero())
}

func TestTransferAuthorized(t *testing.T) {
	tok := mustNew(t, 1000, feeParams(1, 1, 1000))
	require.NoError(t, tok.Transfer(owner, addr1, u(100)))
	relayer := addr(50)

	var seen uint64
	err := tok.TransferAuthorized(relayer, addr1, addr2, u(5), func(nonce uint64) error {
		seen = nonce
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(0), seen)
	assert.Equal(t, uint64(1), tok.Nonces(addr1))
	assert.Equal(t, uint64(1), balance(tok, relayer))
	assert.Equal(t, uint64(94), balance(tok, addr1))

	err = tok.TransferAuthorized(relayer, addr1, addr2, u(5), func(uint64) error {
		return ErrInvalidSignature
	})
	assert.ErrorIs(t, err, ErrInvalidSignature)
	assert.Equal(t, uint64(1), tok.Nonces(addr1))

	err = tok.TransferAuthorized(relayer, addr1, addr2, u(1000), func(uint64) error { return nil })
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, uint64(1), tok.Nonces(addr1), "nonce must roll back with the transfer")
}

func TestSnapshotRestore(t *testing.T) {
	tok := mustNew(t, 1000, feeParams(1, 1, 1000), WithName("Test"), WithSymbol("TST"), WithDecimals(6), WithFeeRecipient(treasury))
	require.NoError(t, tok.Transfer(owner, addr1, u(300)))
	require.NoError(t, tok.Approve(addr1, addr2, u(40)))
	require.NoError(t, tok.TransferAuthorized(addr3, addr1, addr2, u(10), func(uint64) error { return nil }))
	require.NoError(t, tok.Rebase(owner, 150))

	restored, err := Restore(tok.Snapshot(nil))
	require.NoError(t, err)

	assert.Equal(t, "Test", restored.Name())
	assert.Equal(t, "TST", restored.Symbol())
	assert.Equal(t, uint8(6), restored.Decimals())
	assert.Equal(t, treasury, restored.FeeRecipient())
	assert.Equal(t, tok.Holders(), restored.Holders())
	assert.Equal(t, tok.TotalSupply(), restored.TotalSupply())
	assert.Equal(t, tok.ScalingFactor(), restored.ScalingFactor())
	assert.Equal(t, tok.CumulativeVolume(), restored.CumulativeVolume())
	assert.Equal(t, tok.TxFee(), restored.TxFee())
	assert.Equal(t, uint64(1), restored.Nonces(addr1))
	assert.Equal(t, uint64(40), restored.Allowance(addr1, addr2).Uint64())
	for _, a := range []address.Address{owner, addr1, addr2, addr3, treasury} {
		assert.Equal(t, tok.BalanceOf(a), restored.BalanceOf(a), "balance of %s", a)
	}

	rec := &recorder{}
	restored, err = Restore(tok.Snapshot(nil), WithHooks(rec.hooks()))
	require.NoError(t, err)
	require.NoError(t, restored.Transfer(addr1, addr2, u(1)))
	assert.Greater(t, rec.last().Events[0].Seq, tok.Snapshot(nil).Seq)
	assertInvariants(t, restored)
}

func TestRestoreRejectsCorruptSupply(t *testing.T) {
	tok := mustNew(t, 1000, feeParams(1, 1, 1000))
	s := tok.Snapshot(nil)
	s.TotalNormalized = u(999)

	_, err := Restore(s)
	assert.ErrorIs(t, err, ledger.ErrSupplyMismatch)
}

func TestSnapshotSelectedAccounts(t *testing.T) {
	tok := mustNew(t, 1000, feeParams(0, 0, 1000))
	require.NoError(t, tok.Transfer(owner, addr1, u(10)))

	s := tok.Snapshot([]address.Address{addr1, addr2})
	require.Len(t, s.Accounts, 2)
	assert.Equal(t, uint64(10), s.Accounts[addr1].Normalized.Uint64())
	assert.True(t, s.Accounts[addr2].IsEmpty())
}

func TestConcurrentTransfers(t *testing.T) {
	tok := mustNew(t, 1000, feeParams(1, 0, 1000))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, tok.Transfer(owner, addr(byte(100+i)), u(1)))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, uint64(900), balance(tok, owner))
	assert.Equal(t, uint64(950), tok.TotalSupply().Uint64())
	assert.Equal(t, uint64(50), tok.CumulativeVolume().Uint64())
	assert.Len(t, tok.Holders(), 51)
	assertInvariants(t, tok)
}

func TestIsUserError(t *testing.T) {
	assert.True(t, IsUserError(fmt.Errorf("wrapped: %w", ErrNotOwner)))
	assert.True(t, IsUserError(ledger.ErrInsufficientBalance))
	assert.False(t, IsUserError(fmt.Errorf("disk on fire")))
}

func TestTakeDirty(t *testing.T) {
	tok := mustNew(t, 1000, feeParams(1, 0, 1000))
	assert.Equal(t, []address.Address{owner}, tok.TakeDirty())
	assert.Empty(t, tok.TakeDirty())

	require.NoError(t, tok.Transfer(owner, addr2, u(10)))
	require.NoError(t, tok.Approve(addr1, addr3, u(5)))
	assert.Equal(t, []address.Address{owner, addr1, addr2}, tok.TakeDirty())

	// failed operations leave nothing dirty
	assert.Error(t, tok.Transfer(addr3, addr1, u(1)))
	assert.Empty(t, tok.TakeDirty())
}

func TestExportCoversEveryAccount(t *testing.T) {
	tok := mustNew(t, 1000, feeParams(1, 0, 1000))
	require.NoError(t, tok.Transfer(owner, addr1, u(10)))
	require.NoError(t, tok.Approve(addr2, addr3, u(7)))

	s := tok.Export()
	assert.Len(t, s.Accounts, 3)
	assert.Equal(t, uint64(7), s.Accounts[addr2].Allowances[addr3].Uint64())
	assert.Equal(t, uint64(10), s.Accounts[addr1].Normalized.Uint64())
}
