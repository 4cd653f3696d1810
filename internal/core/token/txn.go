package token

import (
	"github.com/holiman/uint256"

	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/address"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/amount"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/fee"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/ledger"
)

type allowanceKey struct {
	owner, spender address.Address
}

// txn buffers every change an operation makes. Balances live in a ledger
// view; fee volume, allowances and nonces are overlaid here.
type txn struct {
	t          *Token
	view       *ledger.View
	fees       *fee.Schedule
	allowances map[allowanceKey]*uint256.Int
	nonces     map[address.Address]uint64
	lastFee    *uint256.Int
	touched    []address.Address
}

func (t *Token) begin() *txn {
	return &txn{
		t:          t,
		view:       t.ledger.Begin(),
		allowances: make(map[allowanceKey]*uint256.Int),
		nonces:     make(map[address.Address]uint64),
	}
}

func (tx *txn) schedule() *fee.Schedule {
	if tx.fees == nil {
		tx.fees = tx.t.fees.Clone()
	}
	return tx.fees
}

func (tx *txn) allowance(owner, spender address.Address) *uint256.Int {
	if v, ok := tx.allowances[allowanceKey{owner, spender}]; ok {
		return v
	}
	return amount.Clone(tx.t.allowances[owner][spender])
}

func (tx *txn) setAllowance(owner, spender address.Address, v *uint256.Int) {
	k := allowanceKey{owner, spender}
	if _, ok := tx.allowances[k]; !ok {
		tx.touched = append(tx.touched, owner)
	}
	tx.allowances[k] = v
	tx.view.Emit(ledger.ApprovalEvent(owner, spender, v))
}

func (tx *txn) nonce(a address.Address) uint64 {
	if n, ok := tx.nonces[a]; ok {
		return n
	}
	return tx.t.nonces[a]
}

func (tx *txn) setNonce(a address.Address, n uint64) {
	if _, ok := tx.nonces[a]; !ok {
		tx.touched = append(tx.touched, a)
	}
	tx.nonces[a] = n
}

// commit publishes tx into t. The caller holds t.mu.
func (t *Token) commit(op string, tx *txn) {
	events, balanceTouched := tx.view.Commit()

	if tx.fees != nil {
		t.fees = tx.fees
	}
	for k, v := range tx.allowances {
		spenders := t.allowances[k.owner]
		if spenders == nil {
			spenders = make(map[address.Address]*uint256.Int)
			t.allowances[k.owner] = spenders
		}
		if v.IsZero() {
			delete(spenders, k.spender)
			if len(spenders) == 0 {
				delete(t.allowances, k.owner)
			}
		} else {
			spenders[k.spender] = v
		}
	}
	for a, n := range tx.nonces {
		t.nonces[a] = n
	}
	if tx.lastFee != nil {
		t.lastFee = tx.lastFee
	}

	for i := range events {
		t.seq++
		events[i].Seq = t.seq
	}

	touched := dedupe(append(balanceTouched, tx.touched...))
	for _, a := range touched {
		t.dirty[a] = struct{}{}
	}
	t.logger.Debug("operation committed", "op", op, "events", len(events), "accounts", len(touched))

	if t.hooks.OnCommit != nil {
		t.hooks.OnCommit(Commit{Op: op, Events: events, Touched: touched})
	}
}

func dedupe(in []address.Address) []address.Address {
	seen := make(map[address.Address]struct{}, len(in))
	out := in[:0]
	for _, a := range in {
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}
