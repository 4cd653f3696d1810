package token

import (
	"errors"

	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/fee"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/ledger"
)

// Sentinel errors. Every failed operation leaves the token unchanged.
var (
	ErrInsufficientBalance   = ledger.ErrInsufficientBalance
	ErrInvalidPercentage     = ledger.ErrInvalidPercentage
	ErrOverflow              = ledger.ErrOverflow
	ErrInvalidParameter      = fee.ErrInvalidParameter
	ErrInsufficientAllowance = errors.New("token: insufficient allowance")
	ErrInvalidAllowance      = errors.New("token: decreased allowance below zero")
	ErrInvalidRecipient      = errors.New("token: invalid recipient")
	ErrIndexOutOfRange       = errors.New("token: index out of range")
	ErrNotOwner              = errors.New("token: caller is not the owner")
	ErrSignatureExpired      = errors.New("token: signature expired")
	ErrInvalidSignature      = errors.New("token: invalid signature")
)

// IsUserError reports whether err is a rejected request rather than an
// internal failure.
func IsUserError(err error) bool {
	for _, target := range []error{
		ErrInsufficientBalance,
		ErrInvalidPercentage,
		ErrOverflow,
		ErrInvalidParameter,
		ErrInsufficientAllowance,
		ErrInvalidAllowance,
		ErrInvalidRecipient,
		ErrIndexOutOfRange,
		ErrNotOwner,
		ErrSignatureExpired,
		ErrInvalidSignature,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
