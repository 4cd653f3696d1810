package metatx

import (
	"encoding/binary"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/holiman/uint256"

	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/address"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/crypto"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/crypto/secp256k1"
)

// Authorization is an off-chain signed transfer request.
type Authorization struct {
	Signer    address.Address
	Recipient address.Address
	Amount    *uint256.Int
	Nonce     uint64
	Deadline  uint64
}

// Digest is keccak256 over the tightly packed fields:
// signer(20) || recipient(20) || amount(32) || nonce(32) || deadline(32),
// with integers big-endian.
func (a Authorization) Digest() [crypto.HashLength]byte {
	buf := make([]byte, 0, 2*address.Length+3*32)
	buf = append(buf, a.Signer[:]...)
	buf = append(buf, a.Recipient[:]...)

	amt := new(uint256.Int)
	if a.Amount != nil {
		amt.Set(a.Amount)
	}
	word := amt.Bytes32()
	buf = append(buf, word[:]...)

	buf = appendUint64Word(buf, a.Nonce)
	buf = appendUint64Word(buf, a.Deadline)
	return crypto.Keccak256(buf)
}

// SigningHash is the hash actually signed: the digest wrapped in the
// personal-message envelope.
func (a Authorization) SigningHash() [crypto.HashLength]byte {
	return crypto.TextHash(a.Digest())
}

// Sign signs the authorization with key. The signer field is not checked
// against the key; a mismatch yields a signature that will not verify.
func (a Authorization) Sign(key *btcec.PrivateKey) []byte {
	return secp256k1.Sign(a.SigningHash(), key)
}

func appendUint64Word(buf []byte, v uint64) []byte {
	var word [32]byte
	binary.BigEndian.PutUint64(word[24:], v)
	return append(buf, word[:]...)
}
