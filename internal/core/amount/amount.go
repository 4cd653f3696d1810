// Package amount holds helpers for the unsigned 256-bit token amounts used
// throughout the ledger.
package amount

import (
	"errors"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

var (
	// ErrOverflow is returned when an arithmetic result does not fit in 256 bits.
	ErrOverflow = errors.New("amount: overflow")

	// ErrInvalidAmount is returned for malformed decimal strings.
	ErrInvalidAmount = errors.New("amount: invalid amount")
)

// Zero returns a new zero amount.
func Zero() *uint256.Int {
	return new(uint256.Int)
}

// Clone returns a copy of a, treating nil as zero.
func Clone(a *uint256.Int) *uint256.Int {
	if a == nil {
		return new(uint256.Int)
	}
	return new(uint256.Int).Set(a)
}

// IsZero reports whether a is nil or zero.
func IsZero(a *uint256.Int) bool {
	return a == nil || a.IsZero()
}

// Add returns a+b or ErrOverflow.
func Add(a, b *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).AddOverflow(a, b)
	if overflow {
		return nil, ErrOverflow
	}
	return z, nil
}

// Sub returns a-b. The boolean is false when b > a.
func Sub(a, b *uint256.Int) (*uint256.Int, bool) {
	if a.Lt(b) {
		return nil, false
	}
	return new(uint256.Int).Sub(a, b), true
}

// Mul returns a*b or ErrOverflow.
func Mul(a, b *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).MulOverflow(a, b)
	if overflow {
		return nil, ErrOverflow
	}
	return z, nil
}

// MulDiv returns floor(a*b/d) computed with a 512-bit intermediate.
// A zero divisor yields zero, mirroring uint256.Div.
func MulDiv(a, b, d *uint256.Int) (*uint256.Int, error) {
	if d.IsZero() {
		return new(uint256.Int), nil
	}
	z, overflow := new(uint256.Int).MulDivOverflow(a, b, d)
	if overflow {
		return nil, ErrOverflow
	}
	return z, nil
}

// Parse reads a base-10 integer string in smallest units.
func Parse(s string) (*uint256.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty string", ErrInvalidAmount)
	}
	z, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidAmount, s, err)
	}
	return z, nil
}

// ParseUnits converts a decimal token string such as "12.5" into smallest
// units for a token with the given number of decimals.
func ParseUnits(s string, decimals uint8) (*uint256.Int, error) {
	s = strings.TrimSpace(s)
	whole, frac, hasFrac := strings.Cut(s, ".")
	if whole == "" && (!hasFrac || frac == "") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if len(frac) > int(decimals) {
		return nil, fmt.Errorf("%w: %q has more than %d decimals", ErrInvalidAmount, s, decimals)
	}
	if whole == "" {
		whole = "0"
	}
	digits := whole + frac + strings.Repeat("0", int(decimals)-len(frac))
	digits = strings.TrimLeft(digits, "0")
	if digits == "" {
		return new(uint256.Int), nil
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
		}
	}
	z, err := uint256.FromDecimal(digits)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidAmount, s, err)
	}
	return z, nil
}

// FormatUnits renders a smallest-unit amount as a decimal token string,
// trimming trailing fractional zeros.
func FormatUnits(a *uint256.Int, decimals uint8) string {
	if a == nil {
		return "0"
	}
	s := a.Dec()
	if decimals == 0 {
		return s
	}
	d := int(decimals)
	if len(s) <= d {
		s = strings.Repeat("0", d-len(s)+1) + s
	}
	whole, frac := s[:len(s)-d], strings.TrimRight(s[len(s)-d:], "0")
	if frac == "" {
		return whole
	}
	return whole + "." + frac
}
