package ledger

import (
	"errors"

	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/amount"
)

var (
	// ErrInsufficientBalance is returned when a debit would drive a balance negative.
	ErrInsufficientBalance = errors.New("ledger: insufficient balance")

	// ErrInvalidPercentage is returned for rebase percentages outside [1,1000].
	ErrInvalidPercentage = errors.New("ledger: percentage change should be between 1% and 1000%")

	// ErrOverflow is returned when a balance or the total supply would exceed 256 bits.
	ErrOverflow = amount.ErrOverflow

	// ErrSupplyMismatch is returned when restored balances disagree with the recorded total.
	ErrSupplyMismatch = errors.New("ledger: normalized balances do not sum to total supply")

	// ErrInvalidFactor is returned when restoring a zero scaling factor.
	ErrInvalidFactor = errors.New("ledger: scaling factor must be non-zero")
)
