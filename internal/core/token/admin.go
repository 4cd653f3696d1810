package token

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/address"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/amount"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/fee"
)

// Mint creates amt for to. Owner only.
func (t *Token) Mint(caller, to address.Address, amt *uint256.Int) error {
	return t.apply("mint", func(tx *txn) error {
		if err := t.requireOwner(caller); err != nil {
			return err
		}
		if to.IsZero() {
			return fmt.Errorf("mint to %s: %w", to, ErrInvalidRecipient)
		}
		return tx.view.Mint(to, amt)
	})
}

// SetFeeParams replaces the fee parameters. Owner only.
func (t *Token) SetFeeParams(caller address.Address, params fee.Params) error {
	return t.apply("set_fee_params", func(tx *txn) error {
		if err := t.requireOwner(caller); err != nil {
			return err
		}
		s := tx.schedule()
		if err := s.SetParams(params); err != nil {
			return err
		}
		// With no volume accrued the reported fee is still the base fee.
		if s.CumulativeVolume().IsZero() {
			tx.lastFee = amount.Clone(params.BaseTxFee)
		}
		return nil
	})
}

// Rebase multiplies the scaling factor by percentage/100. Owner only.
func (t *Token) Rebase(caller address.Address, percentage uint64) error {
	return t.apply("rebase", func(tx *txn) error {
		if err := t.requireOwner(caller); err != nil {
			return err
		}
		return tx.view.Rebase(percentage)
	})
}

// RebaseAllAccounts grows or shrinks the supply by delta, split across the
// current holders in proportion to their balances. Each share is
// delta*balance/totalSupply, truncated; the rounding remainder is not
// distributed. Contraction fails with ErrInsufficientBalance if any share
// exceeds its holder's balance. Owner only.
func (t *Token) RebaseAllAccounts(caller address.Address, delta *uint256.Int, increase bool) error {
	return t.apply("rebase_all", func(tx *txn) error {
		if err := t.requireOwner(caller); err != nil {
			return err
		}
		total := tx.view.TotalSupply()
		if total.IsZero() {
			return nil
		}

		holders := tx.view.Holders()
		shares := make([]*uint256.Int, len(holders))
		for i, h := range holders {
			share, err := amount.MulDiv(delta, tx.view.ScaledBalanceOf(h), total)
			if err != nil {
				return fmt.Errorf("rebase all: share of %s: %w", h, err)
			}
			shares[i] = share
		}

		for i, h := range holders {
			if shares[i].IsZero() {
				continue
			}
			var err error
			if increase {
				err = tx.view.Mint(h, shares[i])
			} else {
				err = tx.view.Burn(h, shares[i])
			}
			if err != nil {
				return fmt.Errorf("rebase all: %w", err)
			}
		}
		return nil
	})
}

// DistributeReward mints amountEach to every address in
// recipients[start:end], fee-free. Either every recipient is paid or none is.
// Owner only.
func (t *Token) DistributeReward(caller address.Address, recipients []address.Address, amountEach *uint256.Int, start, end int) error {
	return t.apply("distribute_reward", func(tx *txn) error {
		if err := t.requireOwner(caller); err != nil {
			return err
		}
		if start < 0 || end > len(recipients) || start > end {
			return fmt.Errorf("distribute [%d:%d] of %d: %w", start, end, len(recipients), ErrIndexOutOfRange)
		}
		for _, r := range recipients[start:end] {
			if r.IsZero() {
				return fmt.Errorf("distribute to %s: %w", r, ErrInvalidRecipient)
			}
			if err := tx.view.Mint(r, amountEach); err != nil {
				return fmt.Errorf("distribute to %s: %w", r, err)
			}
		}
		return nil
	})
}
