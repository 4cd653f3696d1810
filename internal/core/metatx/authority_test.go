package metatx

import (
	"testing"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/address"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/fee"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/token"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/crypto/secp256k1"
)

var (
	owner     = address.MustParse("0x00000000000000000000000000000000000000a1")
	recipient = address.MustParse("0x00000000000000000000000000000000000000b2")
	relayer   = address.MustParse("0x00000000000000000000000000000000000000c3")
)

type fixture struct {
	tok    *token.Token
	auth   *Authority
	key    *btcec.PrivateKey
	signer address.Address
	now    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	key, err := secp256k1.GenerateKey()
	require.NoError(t, err)

	params := fee.Params{
		BaseTxFee:       uint256.NewInt(1),
		FeeIncrement:    uint256.NewInt(1),
		VolumeThreshold: uint256.NewInt(1000),
	}
	tok, err := token.New(owner, uint256.NewInt(1000), params)
	require.NoError(t, err)

	f := &fixture{
		tok:    tok,
		key:    key,
		signer: secp256k1.KeyAddress(key),
		now:    time.Unix(1_700_000_000, 0),
	}
	f.auth, err = New(tok, WithClock(func() time.Time { return f.now }), WithCacheSize(16))
	require.NoError(t, err)

	require.NoError(t, tok.Mint(owner, f.signer, uint256.NewInt(100)))
	return f
}

func (f *fixture) sign(amt, nonce, deadline uint64) []byte {
	return Authorization{
		Signer:    f.signer,
		Recipient: recipient,
		Amount:    uint256.NewInt(amt),
		Nonce:     nonce,
		Deadline:  deadline,
	}.Sign(f.key)
}

func TestTransferWithSignature(t *testing.T) {
	f := newFixture(t)
	deadline := uint64(f.now.Add(time.Hour).Unix())
	sig := f.sign(5, 0, deadline)

	require.NoError(t, f.auth.TransferWithSignature(relayer, f.signer, recipient, uint256.NewInt(5), deadline, sig))

	assert.Equal(t, uint64(1), f.auth.Nonces(f.signer))
	assert.Equal(t, uint64(5), f.tok.BalanceOf(recipient).Uint64())
	assert.Equal(t, uint64(1), f.tok.BalanceOf(relayer).Uint64(), "relayer earns the fee")
	assert.Equal(t, uint64(94), f.tok.BalanceOf(f.signer).Uint64())

	t.Run("replay is rejected", func(t *testing.T) {
		err := f.auth.TransferWithSignature(relayer, f.signer, recipient, uint256.NewInt(5), deadline, sig)
		assert.ErrorIs(t, err, token.ErrInvalidSignature)
		assert.Equal(t, uint64(1), f.auth.Nonces(f.signer))
		assert.Equal(t, uint64(5), f.tok.BalanceOf(recipient).Uint64())
	})

	t.Run("next nonce succeeds", func(t *testing.T) {
		sig := f.sign(5, 1, deadline)
		require.NoError(t, f.auth.TransferWithSignature(relayer, f.signer, recipient, uint256.NewInt(5), deadline, sig))
		assert.Equal(t, uint64(2), f.auth.Nonces(f.signer))
	})
}

func TestTransferWithSignatureRejections(t *testing.T) {
	f := newFixture(t)
	deadline := uint64(f.now.Add(time.Minute).Unix())
	sig := f.sign(5, 0, deadline)

	tests := []struct {
		name      string
		signer    address.Address
		recipient address.Address
		amount    uint64
		deadline  uint64
		sig       []byte
		want      error
	}{
		{"tampered amount", f.signer, recipient, 6, deadline, sig, token.ErrInvalidSignature},
		{"tampered recipient", f.signer, relayer, 5, deadline, sig, token.ErrInvalidSignature},
		{"tampered deadline", f.signer, recipient, 5, deadline + 1, sig, token.ErrInvalidSignature},
		{"wrong signer", owner, recipient, 5, deadline, sig, token.ErrInvalidSignature},
		{"future nonce", f.signer, recipient, 5, deadline, f.sign(5, 1, deadline), token.ErrInvalidSignature},
		{"malformed signature", f.signer, recipient, 5, deadline, sig[:10], token.ErrInvalidSignature},
		{"expired", f.signer, recipient, 5, uint64(f.now.Unix()) - 1, f.sign(5, 0, uint64(f.now.Unix())-1), token.ErrSignatureExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.auth.TransferWithSignature(relayer, tt.signer, tt.recipient, uint256.NewInt(tt.amount), tt.deadline, tt.sig)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, uint64(0), f.auth.Nonces(f.signer))
			assert.True(t, f.tok.BalanceOf(relayer).IsZero())
		})
	}

	// the deadline itself is still valid
	sig = f.sign(5, 0, uint64(f.now.Unix()))
	require.NoError(t, f.auth.TransferWithSignature(relayer, f.signer, recipient, uint256.NewInt(5), uint64(f.now.Unix()), sig))
}

func TestTransferWithSignatureInsufficientBalance(t *testing.T) {
	f := newFixture(t)
	deadline := uint64(f.now.Add(time.Hour).Unix())
	sig := f.sign(100, 0, deadline)

	err := f.auth.TransferWithSignature(relayer, f.signer, recipient, uint256.NewInt(100), deadline, sig)
	assert.ErrorIs(t, err, token.ErrInsufficientBalance)
	assert.Equal(t, uint64(0), f.auth.Nonces(f.signer), "nonce is only consumed by a successful transfer")
}

func TestVerifyUsesCache(t *testing.T) {
	f := newFixture(t)
	auth := Authorization{Signer: f.signer, Recipient: recipient, Amount: uint256.NewInt(1), Deadline: 10}
	sig := auth.Sign(f.key)

	assert.True(t, f.auth.Verify(auth, sig))
	assert.Equal(t, 1, f.auth.recovered.Len())
	assert.True(t, f.auth.Verify(auth, sig))
	assert.Equal(t, 1, f.auth.recovered.Len())

	other := auth
	other.Signer = owner
	assert.False(t, f.auth.Verify(other, sig))
}

func TestDigestLayout(t *testing.T) {
	a := Authorization{
		Signer:    owner,
		Recipient: recipient,
		Amount:    uint256.NewInt(5),
		Nonce:     0,
		Deadline:  1,
	}
	b := a
	b.Nonce = 1
	assert.NotEqual(t, a.Digest(), b.Digest())
	assert.NotEqual(t, a.Digest(), a.SigningHash())

	c := a
	c.Amount = nil
	d := a
	d.Amount = uint256.NewInt(0)
	assert.Equal(t, c.Digest(), d.Digest())
}
