package ledger

import (
	"github.com/holiman/uint256"

	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/address"
)

// EventKind identifies a state-change record.
type EventKind uint8

const (
	EventTransfer EventKind = iota + 1
	EventApproval
	EventRebase
)

func (k EventKind) String() string {
	switch k {
	case EventTransfer:
		return "Transfer"
	case EventApproval:
		return "Approval"
	case EventRebase:
		return "Rebase"
	default:
		return "Unknown"
	}
}

// Event is a state-change record. Transfer uses From/To/Amount, Approval uses
// From as owner and To as spender, Rebase uses OldFactor/NewFactor.
// Mints are transfers from the zero address and burns are transfers to it.
type Event struct {
	Seq       uint64
	Kind      EventKind
	From      address.Address
	To        address.Address
	Amount    *uint256.Int
	OldFactor *uint256.Int
	NewFactor *uint256.Int
}

// TransferEvent builds a Transfer record.
func TransferEvent(from, to address.Address, amt *uint256.Int) Event {
	return Event{Kind: EventTransfer, From: from, To: to, Amount: new(uint256.Int).Set(amt)}
}

// ApprovalEvent builds an Approval record.
func ApprovalEvent(owner, spender address.Address, amt *uint256.Int) Event {
	return Event{Kind: EventApproval, From: owner, To: spender, Amount: new(uint256.Int).Set(amt)}
}

// RebaseEvent builds a Rebase record.
func RebaseEvent(oldFactor, newFactor *uint256.Int) Event {
	return Event{
		Kind:      EventRebase,
		OldFactor: new(uint256.Int).Set(oldFactor),
		NewFactor: new(uint256.Int).Set(newFactor),
	}
}
