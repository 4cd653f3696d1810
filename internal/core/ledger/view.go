package ledger

import (
	"fmt"
	"sort"

	"github.com/holiman/uint256"

	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/address"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/amount"
)

// action records how a view touched an account.
type action uint8

const (
	actionCache action = iota
	actionModify
)

// entry tracks one account inside a view.
type entry struct {
	action   action
	original *uint256.Int
	current  *uint256.Int
}

// View is a copy-on-write overlay over a Ledger. Every change made through a
// view stays private until Commit; dropping the view discards it. Events are
// buffered alongside and released by Commit.
type View struct {
	base    *Ledger
	factor  *uint256.Int
	total   *uint256.Int
	entries map[address.Address]*entry
	touched []address.Address
	events  []Event
}

func (v *View) currentFactor() *uint256.Int {
	if v.factor != nil {
		return v.factor
	}
	return v.base.factor
}

func (v *View) currentTotal() *uint256.Int {
	if v.total != nil {
		return v.total
	}
	return v.base.total
}

func (v *View) lookup(a address.Address) *entry {
	if e, ok := v.entries[a]; ok {
		return e
	}
	n := v.base.balances[a]
	if n == nil {
		n = new(uint256.Int)
	}
	e := &entry{action: actionCache, original: n, current: n}
	v.entries[a] = e
	return e
}

func (v *View) set(a address.Address, n *uint256.Int) {
	e := v.lookup(a)
	if e.action == actionCache {
		e.action = actionModify
		v.touched = append(v.touched, a)
	}
	e.current = n
}

// Factor returns the scaling factor as seen by this view.
func (v *View) Factor() *uint256.Int {
	return amount.Clone(v.currentFactor())
}

// TotalNormalized returns the normalized supply as seen by this view.
func (v *View) TotalNormalized() *uint256.Int {
	return amount.Clone(v.currentTotal())
}

// TotalSupply returns the scaled supply as seen by this view.
func (v *View) TotalSupply() *uint256.Int {
	return scale(v.currentTotal(), v.currentFactor())
}

// NormalizedBalance returns the normalized balance of a as seen by this view.
func (v *View) NormalizedBalance(a address.Address) *uint256.Int {
	return amount.Clone(v.lookup(a).current)
}

// ScaledBalanceOf returns the scaled balance of a as seen by this view.
func (v *View) ScaledBalanceOf(a address.Address) *uint256.Int {
	return scale(v.lookup(a).current, v.currentFactor())
}

// ScaledOf converts a normalized amount at the view's factor.
func (v *View) ScaledOf(normalized *uint256.Int) *uint256.Int {
	return scale(normalized, v.currentFactor())
}

// NormalizedOf converts a scaled amount at the view's factor, truncating.
func (v *View) NormalizedOf(scaled *uint256.Int) *uint256.Int {
	return normalize(scaled, v.currentFactor())
}

// Holders returns the holder list with this view's pending changes applied.
func (v *View) Holders() []address.Address {
	if len(v.touched) == 0 && v.factor == nil {
		return v.base.holders.List()
	}
	reg := v.base.holders.Clone()
	for _, a := range v.touched {
		reg.OnBalanceChanged(a, v.base.ScaledBalanceOf(a), v.ScaledBalanceOf(a))
	}
	return reg.List()
}

// Emit buffers an event to be released on Commit.
func (v *View) Emit(ev Event) {
	v.events = append(v.events, ev)
}

// Events returns the events buffered so far.
func (v *View) Events() []Event {
	out := make([]Event, len(v.events))
	copy(out, v.events)
	return out
}

// CreditNormalized adds delta to the normalized balance of a.
func (v *View) CreditNormalized(a address.Address, delta *uint256.Int) error {
	total, err := amount.Add(v.currentTotal(), delta)
	if err != nil {
		return fmt.Errorf("credit %s: %w", a, err)
	}
	if _, overflow := new(uint256.Int).MulDivOverflow(total, v.currentFactor(), factorBase); overflow {
		return fmt.Errorf("credit %s: scaled supply: %w", a, ErrOverflow)
	}
	// the account balance is bounded by the total
	bal := new(uint256.Int).Add(v.lookup(a).current, delta)
	v.set(a, bal)
	v.total = total
	return nil
}

// DebitNormalized subtracts delta from the normalized balance of a.
func (v *View) DebitNormalized(a address.Address, delta *uint256.Int) error {
	bal, ok := amount.Sub(v.lookup(a).current, delta)
	if !ok {
		return fmt.Errorf("debit %s: %w", a, ErrInsufficientBalance)
	}
	v.set(a, bal)
	v.total = new(uint256.Int).Sub(v.currentTotal(), delta)
	return nil
}

// Transfer moves a scaled amount from one account to another and emits a
// Transfer record. It fails with ErrInsufficientBalance when amt exceeds the
// sender's scaled balance.
func (v *View) Transfer(from, to address.Address, amt *uint256.Int) error {
	if v.ScaledBalanceOf(from).Lt(amt) {
		return fmt.Errorf("transfer from %s: %w", from, ErrInsufficientBalance)
	}
	n := v.NormalizedOf(amt)
	if err := v.DebitNormalized(from, n); err != nil {
		return err
	}
	if err := v.CreditNormalized(to, n); err != nil {
		return err
	}
	v.Emit(TransferEvent(from, to, amt))
	return nil
}

// Mint creates a scaled amount for a and emits a Transfer from the zero address.
func (v *View) Mint(a address.Address, amt *uint256.Int) error {
	if err := v.CreditNormalized(a, v.NormalizedOf(amt)); err != nil {
		return fmt.Errorf("mint: %w", err)
	}
	v.Emit(TransferEvent(address.Zero, a, amt))
	return nil
}

// Burn destroys a scaled amount held by a and emits a Transfer to the zero address.
func (v *View) Burn(a address.Address, amt *uint256.Int) error {
	if v.ScaledBalanceOf(a).Lt(amt) {
		return fmt.Errorf("burn from %s: %w", a, ErrInsufficientBalance)
	}
	if err := v.DebitNormalized(a, v.NormalizedOf(amt)); err != nil {
		return fmt.Errorf("burn: %w", err)
	}
	v.Emit(TransferEvent(a, address.Zero, amt))
	return nil
}

// Rebase multiplies the scaling factor by percentage/100. The percentage must
// be within [1,1000]. Every funded account is marked touched so holder
// membership follows balances that cross zero.
func (v *View) Rebase(percentage uint64) error {
	if percentage < MinRebasePercentage || percentage > MaxRebasePercentage {
		return fmt.Errorf("rebase %d: %w", percentage, ErrInvalidPercentage)
	}
	old := v.currentFactor()
	next, err := amount.MulDiv(old, uint256.NewInt(percentage), factorBase)
	if err != nil {
		return fmt.Errorf("rebase %d: %w", percentage, err)
	}
	if next.IsZero() {
		return fmt.Errorf("rebase %d: factor would reach zero: %w", percentage, ErrInvalidPercentage)
	}
	if _, overflow := new(uint256.Int).MulDivOverflow(v.currentTotal(), next, factorBase); overflow {
		return fmt.Errorf("rebase %d: scaled supply: %w", percentage, ErrOverflow)
	}

	var funded []address.Address
	for a := range v.base.balances {
		if _, ok := v.entries[a]; !ok {
			funded = append(funded, a)
		}
	}
	for a, e := range v.entries {
		if e.action == actionCache && !e.current.IsZero() {
			funded = append(funded, a)
		}
	}
	sort.Slice(funded, func(i, j int) bool { return funded[i].Less(funded[j]) })
	for _, a := range funded {
		e := v.lookup(a)
		e.action = actionModify
		v.touched = append(v.touched, a)
	}

	v.factor = next
	v.Emit(RebaseEvent(old, next))
	return nil
}

// Commit applies the view to its ledger, updates the holder list for every
// touched account and returns the buffered events and the touched addresses.
// The view must not be used afterwards.
func (v *View) Commit() ([]Event, []address.Address) {
	l := v.base
	type transition struct {
		addr     address.Address
		old, new *uint256.Int
	}
	transitions := make([]transition, 0, len(v.touched))
	for _, a := range v.touched {
		transitions = append(transitions, transition{
			addr: a,
			old:  l.ScaledBalanceOf(a),
			new:  v.ScaledBalanceOf(a),
		})
	}

	for _, a := range v.touched {
		n := v.entries[a].current
		if n.IsZero() {
			delete(l.balances, a)
		} else {
			l.balances[a] = n
		}
	}
	if v.factor != nil {
		l.factor = v.factor
	}
	if v.total != nil {
		l.total = v.total
	}
	for _, t := range transitions {
		l.holders.OnBalanceChanged(t.addr, t.old, t.new)
	}

	events, touched := v.events, v.touched
	v.events, v.touched, v.entries = nil, nil, nil
	return events, touched
}
