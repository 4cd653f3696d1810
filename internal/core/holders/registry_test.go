package holders

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"

	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/address"
)

func addr(b byte) address.Address {
	var a address.Address
	a[19] = b
	return a
}

var (
	zero = uint256.NewInt(0)
	one  = uint256.NewInt(1)
	ten  = uint256.NewInt(10)
)

func TestOnBalanceChanged(t *testing.T) {
	r := New()

	r.OnBalanceChanged(addr(1), zero, ten)
	r.OnBalanceChanged(addr(2), zero, one)
	r.OnBalanceChanged(addr(3), nil, one)
	assert.Equal(t, []address.Address{addr(1), addr(2), addr(3)}, r.List())

	// non-zero to non-zero is a no-op
	r.OnBalanceChanged(addr(2), one, ten)
	assert.Equal(t, 3, r.Len())

	// zero to zero is a no-op
	r.OnBalanceChanged(addr(9), zero, zero)
	assert.False(t, r.Contains(addr(9)))

	r.OnBalanceChanged(addr(1), ten, zero)
	assert.False(t, r.Contains(addr(1)))
	assert.ElementsMatch(t, []address.Address{addr(2), addr(3)}, r.List())

	r.OnBalanceChanged(addr(3), one, zero)
	r.OnBalanceChanged(addr(2), one, zero)
	assert.Empty(t, r.List())
}

func TestRemoveKeepsIndexConsistent(t *testing.T) {
	r := New()
	for i := byte(1); i <= 5; i++ {
		r.OnBalanceChanged(addr(i), zero, one)
	}

	r.OnBalanceChanged(addr(2), one, zero)
	r.OnBalanceChanged(addr(5), one, zero)
	r.OnBalanceChanged(addr(1), one, zero)

	list := r.List()
	assert.ElementsMatch(t, []address.Address{addr(3), addr(4)}, list)
	for i, a := range list {
		assert.Equal(t, i, r.index[a])
	}

	// re-adding appends at the end
	r.OnBalanceChanged(addr(1), zero, one)
	list = r.List()
	assert.Equal(t, addr(1), list[len(list)-1])
}

func TestListIsSnapshot(t *testing.T) {
	r := New()
	r.OnBalanceChanged(addr(1), zero, one)

	list := r.List()
	list[0] = addr(7)
	assert.True(t, r.Contains(addr(1)))
	assert.Equal(t, addr(1), r.List()[0])
}

func TestFromListAndClone(t *testing.T) {
	r := FromList([]address.Address{addr(1), addr(2), addr(1)})
	assert.Equal(t, []address.Address{addr(1), addr(2)}, r.List())

	c := r.Clone()
	c.Reconcile(addr(1), zero)
	c.Reconcile(addr(3), one)
	assert.True(t, r.Contains(addr(1)))
	assert.False(t, r.Contains(addr(3)))
	assert.ElementsMatch(t, []address.Address{addr(2), addr(3)}, c.List())
}
