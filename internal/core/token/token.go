// Package token is the rebasing, fee-charging token aggregate. It combines the
// scaling ledger, the holder registry, the fee schedule, allowances and
// meta-transfer nonces behind a single lock, so every operation runs to
// completion without interleaving and either commits entirely or not at all.
package token

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/holiman/uint256"

	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/address"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/amount"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/fee"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/ledger"
)

// Token is the ledger aggregate.
type Token struct {
	mu sync.Mutex

	name     string
	symbol   string
	decimals uint8

	owner        address.Address
	feeRecipient address.Address

	ledger     *ledger.Ledger
	fees       *fee.Schedule
	allowances map[address.Address]map[address.Address]*uint256.Int
	nonces     map[address.Address]uint64
	lastFee    *uint256.Int
	seq        uint64
	dirty      map[address.Address]struct{}

	hooks  Hooks
	logger *slog.Logger
}

func newToken(owner address.Address, opts []Option) *Token {
	t := &Token{
		name:         DefaultName,
		symbol:       DefaultSymbol,
		decimals:     DefaultDecimals,
		owner:        owner,
		feeRecipient: address.Zero,
		ledger:       ledger.New(),
		allowances:   make(map[address.Address]map[address.Address]*uint256.Int),
		nonces:       make(map[address.Address]uint64),
		dirty:        make(map[address.Address]struct{}),
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// New creates a token owned by owner, minting premint to the owner, who becomes
// the first holder.
func New(owner address.Address, premint *uint256.Int, params fee.Params, opts ...Option) (*Token, error) {
	if owner.IsZero() {
		return nil, fmt.Errorf("new token: owner: %w", ErrInvalidRecipient)
	}
	t := newToken(owner, opts)

	fees, err := fee.NewSchedule(params)
	if err != nil {
		return nil, fmt.Errorf("new token: %w", err)
	}
	t.fees = fees
	t.lastFee = amount.Clone(params.BaseTxFee)

	if !amount.IsZero(premint) {
		err := t.apply("premint", func(tx *txn) error {
			return tx.view.Mint(owner, premint)
		})
		if err != nil {
			return nil, fmt.Errorf("new token: premint: %w", err)
		}
	}

	t.logger.Info("token created",
		"name", t.name,
		"symbol", t.symbol,
		"owner", owner,
		"premint", amount.Clone(premint).Dec(),
		"fee_recipient", t.feeRecipient,
	)
	return t, nil
}

// Name returns the token name.
func (t *Token) Name() string { return t.name }

// Symbol returns the token symbol.
func (t *Token) Symbol() string { return t.symbol }

// Decimals returns the display precision.
func (t *Token) Decimals() uint8 { return t.decimals }

// Owner returns the administrative identity.
func (t *Token) Owner() address.Address { return t.owner }

// FeeRecipient returns where direct-transfer fees go. Zero means burned.
func (t *Token) FeeRecipient() address.Address { return t.feeRecipient }

// BalanceOf returns the scaled balance of a.
func (t *Token) BalanceOf(a address.Address) *uint256.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ledger.ScaledBalanceOf(a)
}

// NormalizedBalanceOf returns the stored, rebase-invariant balance of a.
func (t *Token) NormalizedBalanceOf(a address.Address) *uint256.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ledger.NormalizedBalance(a)
}

// TotalSupply returns the scaled total supply.
func (t *Token) TotalSupply() *uint256.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ledger.TotalSupply()
}

// Holders returns the addresses with a non-zero balance.
func (t *Token) Holders() []address.Address {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ledger.Holders()
}

// FeeParams returns the current fee parameters.
func (t *Token) FeeParams() fee.Params {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fees.Params()
}

// CumulativeVolume returns the transfer volume that drives the fee tier.
func (t *Token) CumulativeVolume() *uint256.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fees.CumulativeVolume()
}

// QuoteFee previews the fee for a transfer of amt without recording volume.
func (t *Token) QuoteFee(amt *uint256.Int) (*uint256.Int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fees.QuoteFee(amt)
}

// TxFee returns the fee charged by the most recent transfer, or the current
// base fee while no transfer volume has accrued.
func (t *Token) TxFee() *uint256.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return amount.Clone(t.lastFee)
}

// ScalingFactor returns the base-100 scaling factor.
func (t *Token) ScalingFactor() *uint256.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ledger.Factor()
}

// ScaledAmount converts a normalized amount at the current factor.
func (t *Token) ScaledAmount(normalized *uint256.Int) *uint256.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ledger.ScaledOf(normalized)
}

// NormalizedAmount converts a scaled amount at the current factor, truncating.
func (t *Token) NormalizedAmount(scaled *uint256.Int) *uint256.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ledger.NormalizedOf(scaled)
}

// Nonces returns the next meta-transfer nonce of a.
func (t *Token) Nonces(a address.Address) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.nonces[a]
}

// Allowance returns what spender may still move on behalf of owner.
func (t *Token) Allowance(owner, spender address.Address) *uint256.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return amount.Clone(t.allowances[owner][spender])
}

// apply runs fn against a fresh transaction under the token lock and commits
// it only if fn succeeds.
func (t *Token) apply(op string, fn func(tx *txn) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	tx := t.begin()
	if err := fn(tx); err != nil {
		t.logger.Debug("operation rejected", "op", op, "error", err)
		return err
	}
	t.commit(op, tx)
	return nil
}

func (t *Token) requireOwner(caller address.Address) error {
	if caller != t.owner {
		return fmt.Errorf("%s: %w", caller, ErrNotOwner)
	}
	return nil
}
