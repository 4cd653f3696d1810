// Package address defines the 20-byte account identifier used by the ledger.
package address

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Length is the byte length of an address.
const Length = 20

// ErrInvalidAddress is returned when a string cannot be parsed as an address.
var ErrInvalidAddress = errors.New("address: invalid address")

// Address is a 20-byte account identifier derived from a secp256k1 public key.
type Address [Length]byte

// Zero is the null address. It is never a valid transfer recipient.
var Zero Address

// FromBytes copies b into an address. b must be exactly Length bytes.
func FromBytes(b []byte) (Address, error) {
	var a Address
	if len(b) != Length {
		return a, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidAddress, Length, len(b))
	}
	copy(a[:], b)
	return a, nil
}

// Parse decodes a hex address with or without the 0x prefix.
// Mixed-case input must carry a valid EIP-55 checksum.
func Parse(s string) (Address, error) {
	var a Address
	raw := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(raw) != 2*Length {
		return a, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	b, err := hex.DecodeString(raw)
	if err != nil {
		return a, fmt.Errorf("%w: %q: %v", ErrInvalidAddress, s, err)
	}
	copy(a[:], b)
	if raw != strings.ToLower(raw) && raw != strings.ToUpper(raw) {
		if a.Hex()[2:] != raw {
			return Address{}, fmt.Errorf("%w: bad checksum %q", ErrInvalidAddress, s)
		}
	}
	return a, nil
}

// MustParse is like Parse but panics on error. Intended for tests and constants.
func MustParse(s string) Address {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// IsZero reports whether a is the null address.
func (a Address) IsZero() bool {
	return a == Zero
}

// Bytes returns a copy of the raw address bytes.
func (a Address) Bytes() []byte {
	return append([]byte(nil), a[:]...)
}

// Hex returns the EIP-55 checksummed representation.
func (a Address) Hex() string {
	lower := hex.EncodeToString(a[:])

	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(lower))
	digest := h.Sum(nil)

	out := []byte(lower)
	for i := range out {
		if out[i] < 'a' {
			continue
		}
		nibble := digest[i/2]
		if i%2 == 0 {
			nibble >>= 4
		}
		if nibble&0x0f >= 8 {
			out[i] -= 'a' - 'A'
		}
	}
	return "0x" + string(out)
}

func (a Address) String() string {
	return a.Hex()
}

// Less orders addresses bytewise.
func (a Address) Less(b Address) bool {
	return bytes.Compare(a[:], b[:]) < 0
}

// MarshalText implements encoding.TextMarshaler.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
