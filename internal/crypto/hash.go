package crypto

import "golang.org/x/crypto/sha3"

// HashLength is the size of a Keccak-256 digest.
const HashLength = 32

// Keccak256 returns the legacy Keccak-256 digest of the concatenated inputs.
func Keccak256(data ...[]byte) [HashLength]byte {
	var out [HashLength]byte
	h := sha3.NewLegacyKeccak256()
	for _, b := range data {
		h.Write(b)
	}
	h.Sum(out[:0])
	return out
}

// signedMessagePrefix is prepended to 32-byte digests before signing so a
// signature over a transfer authorization can never double as a raw
// transaction signature.
const signedMessagePrefix = "\x19Ethereum Signed Message:\n32"

// TextHash wraps a 32-byte digest in the personal-message envelope and
// hashes it again.
func TextHash(digest [HashLength]byte) [HashLength]byte {
	return Keccak256([]byte(signedMessagePrefix), digest[:])
}
