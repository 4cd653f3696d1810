// Package ledger implements the rebasing balance store.
//
// Balances are stored in normalized units that are invariant under rebase.
// The externally visible scaled balance is normalized*factor/100 with
// truncating division, where factor is a base-100 fixed-point multiplier
// starting at 100 (1.00x). The inverse conversion, scaled*100/factor, also
// truncates, so converting a scaled amount to normalized and back never yields
// more than the original.
package ledger

import (
	"sort"

	"github.com/holiman/uint256"

	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/address"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/amount"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/holders"
)

// FactorBase is the scaling factor representing 1.00x.
const FactorBase = 100

// Rebase percentage bounds, inclusive.
const (
	MinRebasePercentage = 1
	MaxRebasePercentage = 1000
)

var factorBase = uint256.NewInt(FactorBase)

// Ledger is the committed balance state. Mutations go through a View that is
// applied with Commit.
//
// Ledger is not safe for concurrent use; the owning token serializes access.
type Ledger struct {
	factor   *uint256.Int
	total    *uint256.Int
	balances map[address.Address]*uint256.Int
	holders  *holders.Registry
}

// New returns an empty ledger at factor 1.00x.
func New() *Ledger {
	return &Ledger{
		factor:   uint256.NewInt(FactorBase),
		total:    new(uint256.Int),
		balances: make(map[address.Address]*uint256.Int),
		holders:  holders.New(),
	}
}

// Restore rebuilds a ledger from persisted state. The total normalized supply
// is recomputed from balances and compared with total. The holder order is
// kept where it agrees with the balances and corrected where it does not.
func Restore(factor, total *uint256.Int, balances map[address.Address]*uint256.Int, holderOrder []address.Address) (*Ledger, error) {
	if amount.IsZero(factor) {
		return nil, ErrInvalidFactor
	}
	l := &Ledger{
		factor:   amount.Clone(factor),
		total:    new(uint256.Int),
		balances: make(map[address.Address]*uint256.Int, len(balances)),
		holders:  holders.FromList(holderOrder),
	}

	addrs := make([]address.Address, 0, len(balances))
	for a, n := range balances {
		if amount.IsZero(n) {
			continue
		}
		sum, err := amount.Add(l.total, n)
		if err != nil {
			return nil, err
		}
		l.total = sum
		l.balances[a] = amount.Clone(n)
		addrs = append(addrs, a)
	}
	if total != nil && !l.total.Eq(total) {
		return nil, ErrSupplyMismatch
	}

	for _, a := range l.holders.List() {
		l.holders.Reconcile(a, l.ScaledBalanceOf(a))
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i].Less(addrs[j]) })
	for _, a := range addrs {
		l.holders.Reconcile(a, l.ScaledBalanceOf(a))
	}
	return l, nil
}

// scale converts normalized units at factor. Mint, credit and rebase keep the
// scaled total supply within 256 bits, so no single balance can overflow here.
func scale(n, factor *uint256.Int) *uint256.Int {
	z, _ := new(uint256.Int).MulDivOverflow(n, factor, factorBase)
	return z
}

// normalize converts scaled units at factor, truncating.
func normalize(s, factor *uint256.Int) *uint256.Int {
	z, overflow := new(uint256.Int).MulDivOverflow(s, factorBase, factor)
	if overflow {
		// only reachable for factors below 100 and amounts near 2^256
		return new(uint256.Int).SetAllOne()
	}
	return z
}

// Factor returns the current scaling factor.
func (l *Ledger) Factor() *uint256.Int {
	return amount.Clone(l.factor)
}

// TotalNormalized returns the sum of all normalized balances.
func (l *Ledger) TotalNormalized() *uint256.Int {
	return amount.Clone(l.total)
}

// TotalSupply returns the scaled total supply.
func (l *Ledger) TotalSupply() *uint256.Int {
	return scale(l.total, l.factor)
}

// NormalizedBalance returns the stored balance of a.
func (l *Ledger) NormalizedBalance(a address.Address) *uint256.Int {
	return amount.Clone(l.balances[a])
}

// ScaledBalanceOf returns the visible balance of a.
func (l *Ledger) ScaledBalanceOf(a address.Address) *uint256.Int {
	n, ok := l.balances[a]
	if !ok {
		return new(uint256.Int)
	}
	return scale(n, l.factor)
}

// ScaledOf converts a normalized amount at the current factor.
func (l *Ledger) ScaledOf(normalized *uint256.Int) *uint256.Int {
	return scale(normalized, l.factor)
}

// NormalizedOf converts a scaled amount at the current factor.
func (l *Ledger) NormalizedOf(scaled *uint256.Int) *uint256.Int {
	return normalize(scaled, l.factor)
}

// Holders returns the current holder list.
func (l *Ledger) Holders() []address.Address {
	return l.holders.List()
}

// IsHolder reports whether a is in the holder list.
func (l *Ledger) IsHolder(a address.Address) bool {
	return l.holders.Contains(a)
}

// Balances returns a copy of every non-zero normalized balance.
func (l *Ledger) Balances() map[address.Address]*uint256.Int {
	out := make(map[address.Address]*uint256.Int, len(l.balances))
	for a, n := range l.balances {
		out[a] = amount.Clone(n)
	}
	return out
}

// Begin opens a view for a single atomic operation.
func (l *Ledger) Begin() *View {
	return &View{
		base:    l,
		entries: make(map[address.Address]*entry),
	}
}
