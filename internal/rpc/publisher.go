package rpc

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/address"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/ledger"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/token"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/rpc/rpc_types"
)

// EventPublisher publishes committed token events to WebSocket subscribers.
// The node calls it after each committed operation, without depending on the
// subscription implementation.
type EventPublisher interface {
	// PublishCommit fans out every event of c to stream and account
	// subscribers.
	PublishCommit(c token.Commit)

	// SubscriberCount returns the number of active subscribers for a stream type
	SubscriberCount(streamType SubscriptionType) int
}

// Publisher implements EventPublisher using SubscriptionManager
type Publisher struct {
	manager *SubscriptionManager
	logger  *slog.Logger
}

// NewPublisher creates a new Publisher with the given subscription manager
func NewPublisher(manager *SubscriptionManager, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		manager: manager,
		logger:  logger.With("component", "publisher"),
	}
}

func (p *Publisher) PublishCommit(c token.Commit) {
	if p.manager == nil {
		return
	}
	for _, e := range c.Events {
		msg, stream, accounts := StreamMessageFor(c.Op, e)
		data, err := json.Marshal(msg)
		if err != nil {
			p.logger.Warn("failed to marshal stream message", "seq", e.Seq, "error", err)
			continue
		}
		p.manager.Broadcast(stream, accounts, data)
	}
}

func (p *Publisher) SubscriberCount(streamType SubscriptionType) int {
	if p.manager == nil {
		return 0
	}
	return p.manager.SubscriberCount(streamType)
}

// StreamMessageFor renders e for subscribers and returns the stream it
// belongs to and the accounts it names.
func StreamMessageFor(op string, e ledger.Event) (StreamMessage, SubscriptionType, []address.Address) {
	msg := StreamMessage{
		Type: strings.ToLower(e.Kind.String()),
		Seq:  e.Seq,
		Op:   op,
	}
	if e.Amount != nil {
		msg.Amount = e.Amount.Dec()
	}

	switch e.Kind {
	case ledger.EventApproval:
		msg.Owner = e.From.Hex()
		msg.Spender = e.To.Hex()
		return msg, rpc_types.SubApprovals, []address.Address{e.From, e.To}
	case ledger.EventRebase:
		msg.OldFactor = e.OldFactor.Dec()
		msg.NewFactor = e.NewFactor.Dec()
		return msg, rpc_types.SubRebases, nil
	default:
		msg.From = e.From.Hex()
		msg.To = e.To.Hex()
		return msg, rpc_types.SubTransfers, []address.Address{e.From, e.To}
	}
}

// NoOpPublisher is a publisher that does nothing (for testing or when subscriptions are disabled)
type NoOpPublisher struct{}

func NewNoOpPublisher() *NoOpPublisher {
	return &NoOpPublisher{}
}

func (p *NoOpPublisher) PublishCommit(c token.Commit)                       {}
func (p *NoOpPublisher) SubscriberCount(streamType SubscriptionType) int { return 0 }

// Ensure implementations satisfy the interface
var _ EventPublisher = (*Publisher)(nil)
var _ EventPublisher = (*NoOpPublisher)(nil)
