// Package relationaldb holds the SQL event journal: the record type, the
// Journal contract and the configuration shared by its drivers.
package relationaldb

import (
	"context"
	"time"

	"github.com/holiman/uint256"

	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/address"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/ledger"
)

// Query limits.
const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// Record is one journaled event. For approvals From is the owner and To the
// spender. Rebase records carry the factors and no accounts.
type Record struct {
	Seq       uint64          `json:"seq"`
	Op        string          `json:"op"`
	Kind      string          `json:"kind"`
	From      address.Address `json:"from"`
	To        address.Address `json:"to"`
	Amount    *uint256.Int    `json:"amount,omitempty"`
	OldFactor *uint256.Int    `json:"old_factor,omitempty"`
	NewFactor *uint256.Int    `json:"new_factor,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

//go:generate mockgen -destination=mock_relationaldb/journal.go . Journal

// Journal is an append-only store of committed events.
type Journal interface {
	// Append stores records. Records whose sequence already exists are skipped.
	Append(ctx context.Context, records []Record) error

	// ByAccount returns the newest records naming a as sender, recipient,
	// owner or spender.
	ByAccount(ctx context.Context, a address.Address, limit int) ([]Record, error)

	// Latest returns the newest records.
	Latest(ctx context.Context, limit int) ([]Record, error)

	Close() error
}

// RecordsFromEvents converts the events of one committed operation.
func RecordsFromEvents(op string, events []ledger.Event, at time.Time) []Record {
	out := make([]Record, len(events))
	for i, e := range events {
		out[i] = Record{
			Seq:       e.Seq,
			Op:        op,
			Kind:      e.Kind.String(),
			From:      e.From,
			To:        e.To,
			Amount:    e.Amount,
			OldFactor: e.OldFactor,
			NewFactor: e.NewFactor,
			CreatedAt: at.UTC(),
		}
	}
	return out
}

// NormalizeLimit maps a requested limit onto [1, MaxLimit]; zero selects
// DefaultLimit.
func NormalizeLimit(limit int) (int, error) {
	switch {
	case limit < 0:
		return 0, ErrInvalidLimit
	case limit == 0:
		return DefaultLimit, nil
	case limit > MaxLimit:
		return MaxLimit, nil
	default:
		return limit, nil
	}
}
