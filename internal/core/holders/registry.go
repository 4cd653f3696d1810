// Package holders tracks the ordered set of addresses holding a non-zero
// scaled balance.
package holders

import (
	"github.com/holiman/uint256"

	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/address"
)

// Registry is an insertion-ordered, duplicate-free list of holders with an
// index for O(1) removal. Removal moves the last entry into the vacated slot.
//
// Registry is not safe for concurrent use; the owning token serializes access.
type Registry struct {
	list  []address.Address
	index map[address.Address]int
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{index: make(map[address.Address]int)}
}

// FromList rebuilds a registry from a persisted ordering. Duplicates are dropped.
func FromList(list []address.Address) *Registry {
	r := &Registry{
		list:  make([]address.Address, 0, len(list)),
		index: make(map[address.Address]int, len(list)),
	}
	for _, a := range list {
		r.add(a)
	}
	return r
}

// OnBalanceChanged records a scaled balance transition for account.
func (r *Registry) OnBalanceChanged(account address.Address, oldScaled, newScaled *uint256.Int) {
	wasHolder := oldScaled != nil && !oldScaled.IsZero()
	isHolder := newScaled != nil && !newScaled.IsZero()

	switch {
	case !wasHolder && isHolder:
		r.add(account)
	case wasHolder && !isHolder:
		r.remove(account)
	}
}

// Reconcile sets membership of account from its current scaled balance
// regardless of the previous value.
func (r *Registry) Reconcile(account address.Address, scaled *uint256.Int) {
	if scaled != nil && !scaled.IsZero() {
		r.add(account)
	} else {
		r.remove(account)
	}
}

func (r *Registry) add(a address.Address) {
	if _, ok := r.index[a]; ok {
		return
	}
	r.index[a] = len(r.list)
	r.list = append(r.list, a)
}

func (r *Registry) remove(a address.Address) {
	i, ok := r.index[a]
	if !ok {
		return
	}
	last := len(r.list) - 1
	if i != last {
		moved := r.list[last]
		r.list[i] = moved
		r.index[moved] = i
	}
	r.list = r.list[:last]
	delete(r.index, a)
}

// List returns a snapshot of the holders.
func (r *Registry) List() []address.Address {
	out := make([]address.Address, len(r.list))
	copy(out, r.list)
	return out
}

// Contains reports whether a is a holder.
func (r *Registry) Contains(a address.Address) bool {
	_, ok := r.index[a]
	return ok
}

// Len returns the number of holders.
func (r *Registry) Len() int {
	return len(r.list)
}

// Clone returns an independent copy.
func (r *Registry) Clone() *Registry {
	return FromList(r.list)
}
