package token

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/address"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/amount"
)

// maxAllowance is treated as unlimited and never consumed.
var maxAllowance = new(uint256.Int).SetAllOne()

// transfer is the shared transfer path. The sender pays amt plus the fee; the
// recipient receives amt and feeTo receives the fee. A zero feeTo burns it.
func (tx *txn) transfer(sender, recipient address.Address, amt *uint256.Int, feeTo address.Address) error {
	if recipient.IsZero() {
		return fmt.Errorf("transfer to %s: %w", recipient, ErrInvalidRecipient)
	}

	charged, err := tx.schedule().ApplyVolume(amt)
	if err != nil {
		return fmt.Errorf("transfer: %w", err)
	}
	need, err := amount.Add(amt, charged)
	if err != nil {
		return fmt.Errorf("transfer: %w", err)
	}
	if tx.view.ScaledBalanceOf(sender).Lt(need) {
		return fmt.Errorf("transfer of %s plus fee %s from %s: %w", amt.Dec(), charged.Dec(), sender, ErrInsufficientBalance)
	}

	if err := tx.view.Transfer(sender, recipient, amt); err != nil {
		return err
	}
	if !charged.IsZero() {
		if feeTo.IsZero() {
			err = tx.view.Burn(sender, charged)
		} else {
			err = tx.view.Transfer(sender, feeTo, charged)
		}
		if err != nil {
			return fmt.Errorf("transfer fee: %w", err)
		}
	}
	tx.lastFee = charged
	return nil
}

// Transfer moves amt from sender to recipient. The sender also pays the
// volume-tiered fee, credited to the configured fee recipient.
func (t *Token) Transfer(sender, recipient address.Address, amt *uint256.Int) error {
	return t.apply("transfer", func(tx *txn) error {
		return tx.transfer(sender, recipient, amt, t.feeRecipient)
	})
}

// Approve sets the allowance of spender over owner's balance.
func (t *Token) Approve(owner, spender address.Address, amt *uint256.Int) error {
	return t.apply("approve", func(tx *txn) error {
		if spender.IsZero() {
			return fmt.Errorf("approve spender %s: %w", spender, ErrInvalidRecipient)
		}
		tx.setAllowance(owner, spender, amount.Clone(amt))
		return nil
	})
}

// IncreaseAllowance raises the allowance of spender by delta.
func (t *Token) IncreaseAllowance(owner, spender address.Address, delta *uint256.Int) error {
	return t.apply("increase_allowance", func(tx *txn) error {
		if spender.IsZero() {
			return fmt.Errorf("approve spender %s: %w", spender, ErrInvalidRecipient)
		}
		next, err := amount.Add(tx.allowance(owner, spender), delta)
		if err != nil {
			return fmt.Errorf("increase allowance: %w", err)
		}
		tx.setAllowance(owner, spender, next)
		return nil
	})
}

// DecreaseAllowance lowers the allowance of spender by delta. It fails with
// ErrInvalidAllowance if the allowance would go below zero.
func (t *Token) DecreaseAllowance(owner, spender address.Address, delta *uint256.Int) error {
	return t.apply("decrease_allowance", func(tx *txn) error {
		next, ok := amount.Sub(tx.allowance(owner, spender), delta)
		if !ok {
			return fmt.Errorf("decrease allowance of %s by %s: %w", spender, delta.Dec(), ErrInvalidAllowance)
		}
		tx.setAllowance(owner, spender, next)
		return nil
	})
}

// TransferFrom moves amt from owner to recipient on spender's allowance. The
// allowance covers amt only; the fee is paid from owner's balance.
func (t *Token) TransferFrom(spender, owner, recipient address.Address, amt *uint256.Int) error {
	return t.apply("transfer_from", func(tx *txn) error {
		current := tx.allowance(owner, spender)
		if current.Lt(amt) {
			return fmt.Errorf("transfer from %s by %s: %w", owner, spender, ErrInsufficientAllowance)
		}
		if !current.Eq(maxAllowance) {
			tx.setAllowance(owner, spender, new(uint256.Int).Sub(current, amt))
		}
		return tx.transfer(owner, recipient, amt, t.feeRecipient)
	})
}

// TransferAuthorized runs a meta-transfer. authorize receives the signer's
// current nonce and must return nil for the transfer to proceed; it runs under
// the token lock, so the nonce it sees is the one consumed. On success the
// nonce is incremented and the fee is credited to relayer.
func (t *Token) TransferAuthorized(relayer, signer, recipient address.Address, amt *uint256.Int, authorize func(nonce uint64) error) error {
	return t.apply("transfer_with_signature", func(tx *txn) error {
		n := tx.nonce(signer)
		if err := authorize(n); err != nil {
			return err
		}
		tx.setNonce(signer, n+1)
		return tx.transfer(signer, recipient, amt, relayer)
	})
}
