package token

import (
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/address"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/ledger"
)

// Commit describes the effects of one successful operation.
type Commit struct {
	// Op is the operation name, e.g. "transfer" or "rebase".
	Op string

	// Events are the records emitted, in order, with sequence numbers assigned.
	Events []ledger.Event

	// Touched lists every account whose balance, allowance or nonce changed.
	Touched []address.Address
}

// Hooks lets callers observe committed operations without the token depending
// on storage or transport.
type Hooks struct {
	// OnCommit runs while the token lock is held, so commits are observed in
	// order. It must not call back into the token.
	OnCommit func(c Commit)
}
