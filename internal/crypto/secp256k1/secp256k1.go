// Package secp256k1 signs and recovers Ethereum-style 65-byte recoverable
// signatures and derives 20-byte addresses from public keys.
package secp256k1

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	secp "github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/address"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/crypto"
)

const (
	// SignatureLength is the size of an R||S||V signature.
	SignatureLength = 65
	// PrivateKeyLength is the size of a raw private key scalar.
	PrivateKeyLength = 32

	compactMagic = 27
)

var (
	ErrInvalidPrivateKey = errors.New("secp256k1: invalid private key")
	ErrInvalidSignature  = errors.New("secp256k1: invalid signature")
)

// GenerateKey returns a fresh random private key.
func GenerateKey() (*btcec.PrivateKey, error) {
	key, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return key, nil
}

// PrivateKeyFromBytes parses a 32-byte big-endian scalar. Zero and values at
// or above the curve order are rejected.
func PrivateKeyFromBytes(b []byte) (*btcec.PrivateKey, error) {
	if len(b) != PrivateKeyLength {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidPrivateKey, PrivateKeyLength, len(b))
	}
	var scalar secp.ModNScalar
	if overflow := scalar.SetByteSlice(b); overflow || scalar.IsZero() {
		return nil, ErrInvalidPrivateKey
	}
	key, _ := btcec.PrivKeyFromBytes(b)
	return key, nil
}

// ParsePrivateKey decodes a hex private key with or without the 0x prefix.
func ParsePrivateKey(s string) (*btcec.PrivateKey, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPrivateKey, err)
	}
	defer crypto.SecureErase(raw)
	return PrivateKeyFromBytes(raw)
}

// EncodePrivateKey returns the 0x-prefixed hex form of key.
func EncodePrivateKey(key *btcec.PrivateKey) string {
	raw := key.Serialize()
	defer crypto.SecureErase(raw)
	return "0x" + hex.EncodeToString(raw)
}

// PubkeyToAddress derives the account address: the last 20 bytes of the
// Keccak-256 digest of the uncompressed public key without its 0x04 tag.
func PubkeyToAddress(pub *btcec.PublicKey) address.Address {
	digest := crypto.Keccak256(pub.SerializeUncompressed()[1:])
	var a address.Address
	copy(a[:], digest[crypto.HashLength-address.Length:])
	return a
}

// KeyAddress is shorthand for PubkeyToAddress(key.PubKey()).
func KeyAddress(key *btcec.PrivateKey) address.Address {
	return PubkeyToAddress(key.PubKey())
}

// Sign produces a 65-byte R||S||V signature over hash with V in {27, 28}.
func Sign(hash [crypto.HashLength]byte, key *btcec.PrivateKey) []byte {
	compact := ecdsa.SignCompact(key, hash[:], false)

	sig := make([]byte, SignatureLength)
	copy(sig, compact[1:])
	sig[64] = compact[0]
	return sig
}

// RecoverPubkey recovers the public key that produced sig over hash.
// V may be given as 0/1 or 27/28.
func RecoverPubkey(hash [crypto.HashLength]byte, sig []byte) (*btcec.PublicKey, error) {
	if len(sig) != SignatureLength {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidSignature, SignatureLength, len(sig))
	}
	v := sig[64]
	if v >= compactMagic {
		v -= compactMagic
	}
	if v > 1 {
		return nil, fmt.Errorf("%w: recovery id %d", ErrInvalidSignature, sig[64])
	}

	compact := make([]byte, SignatureLength)
	compact[0] = compactMagic + v
	copy(compact[1:], sig[:64])

	pub, _, err := ecdsa.RecoverCompact(compact, hash[:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return pub, nil
}

// RecoverAddress recovers the signer address of sig over hash.
func RecoverAddress(hash [crypto.HashLength]byte, sig []byte) (address.Address, error) {
	pub, err := RecoverPubkey(hash, sig)
	if err != nil {
		return address.Zero, err
	}
	return PubkeyToAddress(pub), nil
}
