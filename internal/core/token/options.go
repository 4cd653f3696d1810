package token

import (
	"log/slog"

	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/address"
)

// Default token metadata.
const (
	DefaultName     = "ThermCoin"
	DefaultSymbol   = "THERM"
	DefaultDecimals = 18
)

// Option configures a Token.
type Option func(*Token)

// WithName sets the token name.
func WithName(name string) Option {
	return func(t *Token) {
		t.name = name
	}
}

// WithSymbol sets the token symbol.
func WithSymbol(symbol string) Option {
	return func(t *Token) {
		t.symbol = symbol
	}
}

// WithDecimals sets the display precision. It does not affect arithmetic.
func WithDecimals(decimals uint8) Option {
	return func(t *Token) {
		t.decimals = decimals
	}
}

// WithFeeRecipient sets where direct-transfer fees are credited. The zero
// address burns them. Meta-transfer fees always go to the relayer.
func WithFeeRecipient(a address.Address) Option {
	return func(t *Token) {
		t.feeRecipient = a
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Token) {
		t.logger = logger
	}
}

// WithHooks registers commit callbacks.
func WithHooks(h Hooks) Option {
	return func(t *Token) {
		t.hooks = h
	}
}
