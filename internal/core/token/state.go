package token

import (
	"fmt"
	"sort"

	"github.com/holiman/uint256"

	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/address"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/amount"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/fee"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/ledger"
)

// AccountState is the persisted form of one account.
type AccountState struct {
	Normalized *uint256.Int
	Nonce      uint64
	Allowances map[address.Address]*uint256.Int
}

// IsEmpty reports whether the account carries no state worth keeping.
func (a AccountState) IsEmpty() bool {
	return amount.IsZero(a.Normalized) && a.Nonce == 0 && len(a.Allowances) == 0
}

// State is a point-in-time copy of the whole token.
type State struct {
	Name         string
	Symbol       string
	Decimals     uint8
	Owner        address.Address
	FeeRecipient address.Address

	Factor           *uint256.Int
	TotalNormalized  *uint256.Int
	Fees             fee.Params
	CumulativeVolume *uint256.Int
	LastFee          *uint256.Int
	Seq              uint64
	Holders          []address.Address

	Accounts map[address.Address]AccountState
}

// Snapshot copies the global state and the listed accounts. A nil list copies
// every known account.
func (t *Token) Snapshot(accounts []address.Address) State {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := State{
		Name:             t.name,
		Symbol:           t.symbol,
		Decimals:         t.decimals,
		Owner:            t.owner,
		FeeRecipient:     t.feeRecipient,
		Factor:           t.ledger.Factor(),
		TotalNormalized:  t.ledger.TotalNormalized(),
		Fees:             t.fees.Params(),
		CumulativeVolume: t.fees.CumulativeVolume(),
		LastFee:          amount.Clone(t.lastFee),
		Seq:              t.seq,
		Holders:          t.ledger.Holders(),
	}

	if accounts == nil {
		seen := make(map[address.Address]struct{})
		for a := range t.ledger.Balances() {
			seen[a] = struct{}{}
		}
		for a := range t.nonces {
			seen[a] = struct{}{}
		}
		for a := range t.allowances {
			seen[a] = struct{}{}
		}
		accounts = make([]address.Address, 0, len(seen))
		for a := range seen {
			accounts = append(accounts, a)
		}
	}

	s.Accounts = make(map[address.Address]AccountState, len(accounts))
	for _, a := range accounts {
		s.Accounts[a] = t.accountState(a)
	}
	return s
}

// Export snapshots the whole token.
func (t *Token) Export() State {
	return t.Snapshot(nil)
}

// TakeDirty returns the accounts touched by commits since the previous call,
// sorted, and clears the set.
func (t *Token) TakeDirty() []address.Address {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]address.Address, 0, len(t.dirty))
	for a := range t.dirty {
		out = append(out, a)
	}
	clear(t.dirty)
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

func (t *Token) accountState(a address.Address) AccountState {
	acc := AccountState{
		Normalized: t.ledger.NormalizedBalance(a),
		Nonce:      t.nonces[a],
	}
	if spenders := t.allowances[a]; len(spenders) > 0 {
		acc.Allowances = make(map[address.Address]*uint256.Int, len(spenders))
		for sp, v := range spenders {
			acc.Allowances[sp] = amount.Clone(v)
		}
	}
	return acc
}

// Restore rebuilds a token from a snapshot. Options are applied after the
// snapshot, so a logger or hooks can be attached; metadata options override
// the stored values.
func Restore(s State, opts ...Option) (*Token, error) {
	balances := make(map[address.Address]*uint256.Int, len(s.Accounts))
	for a, acc := range s.Accounts {
		balances[a] = acc.Normalized
	}
	l, err := ledger.Restore(s.Factor, s.TotalNormalized, balances, s.Holders)
	if err != nil {
		return nil, fmt.Errorf("restore token: %w", err)
	}
	fees, err := fee.Restore(s.Fees, s.CumulativeVolume)
	if err != nil {
		return nil, fmt.Errorf("restore token: %w", err)
	}

	base := []Option{
		WithName(s.Name),
		WithSymbol(s.Symbol),
		WithDecimals(s.Decimals),
		WithFeeRecipient(s.FeeRecipient),
	}
	t := newToken(s.Owner, append(base, opts...))
	t.ledger = l
	t.fees = fees
	t.lastFee = amount.Clone(s.LastFee)
	t.seq = s.Seq

	for a, acc := range s.Accounts {
		if acc.Nonce > 0 {
			t.nonces[a] = acc.Nonce
		}
		for sp, v := range acc.Allowances {
			if amount.IsZero(v) {
				continue
			}
			if t.allowances[a] == nil {
				t.allowances[a] = make(map[address.Address]*uint256.Int)
			}
			t.allowances[a][sp] = amount.Clone(v)
		}
	}

	t.logger.Info("token restored",
		"name", t.name,
		"holders", len(s.Holders),
		"accounts", len(s.Accounts),
		"seq", t.seq,
	)
	return t, nil
}
