// Package metatx executes transfers authorized by an off-chain signature and
// submitted by a relayer, who receives the transfer fee.
package metatx

import (
	"fmt"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/holiman/uint256"

	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/address"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/token"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/crypto"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/crypto/secp256k1"
)

// DefaultCacheSize bounds the signature recovery cache.
const DefaultCacheSize = 4096

// Authority verifies signed transfer authorizations and runs them against a token.
type Authority struct {
	token     *token.Token
	now       func() time.Time
	cacheSize int
	recovered *lru.Cache[[crypto.HashLength]byte, address.Address]
	logger    *slog.Logger
}

// Option configures an Authority.
type Option func(*Authority)

// WithClock overrides the time source used for deadline checks.
func WithClock(now func() time.Time) Option {
	return func(a *Authority) {
		a.now = now
	}
}

// WithCacheSize sets the number of recovered signers kept in memory.
func WithCacheSize(n int) Option {
	return func(a *Authority) {
		a.cacheSize = n
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Authority) {
		a.logger = logger
	}
}

// New returns an Authority bound to tok.
func New(tok *token.Token, opts ...Option) (*Authority, error) {
	a := &Authority{
		token:     tok,
		now:       time.Now,
		cacheSize: DefaultCacheSize,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.cacheSize <= 0 {
		a.cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[[crypto.HashLength]byte, address.Address](a.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("metatx: recovery cache: %w", err)
	}
	a.recovered = cache
	return a, nil
}

// Nonces returns the nonce the next authorization from account must carry.
func (a *Authority) Nonces(account address.Address) uint64 {
	return a.token.Nonces(account)
}

// Verify is the pure signature check: it reports whether sig is signer's
// signature over auth. Nonce freshness is not part of it.
func (a *Authority) Verify(auth Authorization, sig []byte) bool {
	hash := auth.SigningHash()
	key := crypto.Keccak256(hash[:], sig)
	if got, ok := a.recovered.Get(key); ok {
		return got == auth.Signer
	}
	got, err := secp256k1.RecoverAddress(hash, sig)
	if err != nil {
		return false
	}
	a.recovered.Add(key, got)
	return got == auth.Signer
}

// TransferWithSignature moves amt from signer to recipient on the strength of
// sig, charging signer the fee and crediting it to relayer. It fails with
// token.ErrSignatureExpired once the deadline has passed and with
// token.ErrInvalidSignature when the signature does not match the signer's
// current nonce, whatever the reason.
func (a *Authority) TransferWithSignature(relayer, signer, recipient address.Address, amt *uint256.Int, deadline uint64, sig []byte) error {
	now := a.now().Unix()
	if now > 0 && uint64(now) > deadline {
		return fmt.Errorf("deadline %d passed at %d: %w", deadline, now, token.ErrSignatureExpired)
	}

	err := a.token.TransferAuthorized(relayer, signer, recipient, amt, func(nonce uint64) error {
		auth := Authorization{
			Signer:    signer,
			Recipient: recipient,
			Amount:    amt,
			Nonce:     nonce,
			Deadline:  deadline,
		}
		if !a.Verify(auth, sig) {
			return fmt.Errorf("signer %s: %w", signer, token.ErrInvalidSignature)
		}
		return nil
	})
	if err != nil {
		return err
	}

	a.logger.Debug("meta-transfer executed",
		"relayer", relayer,
		"signer", signer,
		"recipient", recipient,
		"amount", amt.Dec(),
	)
	return nil
}
