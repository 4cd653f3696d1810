package crypto

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeccak256(t *testing.T) {
	empty := Keccak256()
	assert.Equal(t, "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470", hex.EncodeToString(empty[:]))

	joined := Keccak256([]byte("ab"), []byte("c"))
	whole := Keccak256([]byte("abc"))
	assert.Equal(t, whole, joined)
}

func TestTextHash(t *testing.T) {
	digest := Keccak256([]byte("transfer"))
	want := Keccak256(append([]byte("\x19Ethereum Signed Message:\n32"), digest[:]...))
	assert.Equal(t, want, TextHash(digest))
	assert.NotEqual(t, digest, TextHash(digest))
}
