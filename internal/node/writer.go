package node

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/address"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/fee"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/token"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/rpc"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/storage/relationaldb"
)

var _ rpc.Writer = (*Node)(nil)

// execute runs one token operation and, if it committed, persists, journals
// and publishes its effects before returning.
func (n *Node) execute(ctx context.Context, op func() error) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := op(); err != nil {
		return err
	}
	// The operation has committed in memory; finish persisting even if the
	// caller gives up.
	return n.persist(context.WithoutCancel(ctx))
}

// persist writes the accounts touched since the last save, appends the
// pending commits to the journal and publishes them. Callers hold n.mu.
func (n *Node) persist(ctx context.Context) error {
	commits := n.drain()
	if len(commits) == 0 && !n.fullSave {
		return nil
	}

	dirty := n.token.TakeDirty()
	var st token.State
	if n.fullSave {
		st = n.token.Export()
	} else {
		st = n.token.Snapshot(dirty)
	}
	if err := n.store.Save(ctx, st); err != nil {
		// The dirty set is gone; rewrite everything next time. The commits
		// are journaled and published once a save succeeds.
		n.fullSave = true
		n.requeue(commits)
		n.logger.Error("failed to persist state", "seq", st.Seq, "error", err)
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	n.fullSave = false

	if n.journal != nil {
		at := n.now()
		var records []relationaldb.Record
		for _, c := range commits {
			records = append(records, relationaldb.RecordsFromEvents(c.Op, c.Events, at)...)
		}
		if len(records) > 0 {
			if err := n.journal.Append(ctx, records); err != nil {
				n.logger.Warn("failed to journal events", "first_seq", records[0].Seq, "count", len(records), "error", err)
			}
		}
	}

	for _, c := range commits {
		n.publisher.PublishCommit(c)
	}
	return nil
}

func (n *Node) Transfer(ctx context.Context, sender, recipient address.Address, amt *uint256.Int) error {
	return n.execute(ctx, func() error {
		return n.token.Transfer(sender, recipient, amt)
	})
}

func (n *Node) Approve(ctx context.Context, owner, spender address.Address, amt *uint256.Int) error {
	return n.execute(ctx, func() error {
		return n.token.Approve(owner, spender, amt)
	})
}

func (n *Node) IncreaseAllowance(ctx context.Context, owner, spender address.Address, delta *uint256.Int) error {
	return n.execute(ctx, func() error {
		return n.token.IncreaseAllowance(owner, spender, delta)
	})
}

func (n *Node) DecreaseAllowance(ctx context.Context, owner, spender address.Address, delta *uint256.Int) error {
	return n.execute(ctx, func() error {
		return n.token.DecreaseAllowance(owner, spender, delta)
	})
}

func (n *Node) TransferFrom(ctx context.Context, spender, owner, recipient address.Address, amt *uint256.Int) error {
	return n.execute(ctx, func() error {
		return n.token.TransferFrom(spender, owner, recipient, amt)
	})
}

// TransferWithSignature verifies and runs a relayed transfer.
func (n *Node) TransferWithSignature(ctx context.Context, relayer, signer, recipient address.Address, amt *uint256.Int, deadline uint64, sig []byte) error {
	return n.execute(ctx, func() error {
		return n.auth.TransferWithSignature(relayer, signer, recipient, amt, deadline, sig)
	})
}

func (n *Node) Mint(ctx context.Context, caller, to address.Address, amt *uint256.Int) error {
	return n.execute(ctx, func() error {
		return n.token.Mint(caller, to, amt)
	})
}

func (n *Node) SetFeeParams(ctx context.Context, caller address.Address, params fee.Params) error {
	return n.execute(ctx, func() error {
		return n.token.SetFeeParams(caller, params)
	})
}

func (n *Node) Rebase(ctx context.Context, caller address.Address, percentage uint64) error {
	return n.execute(ctx, func() error {
		return n.token.Rebase(caller, percentage)
	})
}

func (n *Node) RebaseAllAccounts(ctx context.Context, caller address.Address, delta *uint256.Int, increase bool) error {
	return n.execute(ctx, func() error {
		return n.token.RebaseAllAccounts(caller, delta, increase)
	})
}

func (n *Node) DistributeReward(ctx context.Context, caller address.Address, recipients []address.Address, amountEach *uint256.Int, start, end int) error {
	return n.execute(ctx, func() error {
		return n.token.DistributeReward(caller, recipients, amountEach, start, end)
	})
}
