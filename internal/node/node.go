// Package node assembles a running thermd instance: the token aggregate, its
// state store, the event journal and the RPC and gRPC transports.
package node

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/config"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/metatx"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/token"
	grpcserver "github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/grpc"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/rpc"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/storage/database"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/storage/database/backend"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/storage/relationaldb"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/storage/statestore"
)

// stateDBName is the file stem of the state database under storage.path.
const stateDBName = "state"

var (
	// ErrNoOwner is returned when genesis is needed but token.owner is unset.
	ErrNoOwner = errors.New("node: genesis requires token.owner")

	// ErrPersist wraps a failure to save state after a committed operation.
	// The operation itself took effect in memory.
	ErrPersist = errors.New("node: state not persisted")
)

type options struct {
	logger     *slog.Logger
	db         database.DB
	journal    relationaldb.Journal
	journalSet bool
	now        func() time.Time
}

// Option configures a Node.
type Option func(*options)

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithDatabase uses db instead of opening the configured backend.
func WithDatabase(db database.DB) Option {
	return func(o *options) { o.db = db }
}

// WithJournal uses j instead of opening the configured journal. A nil j
// disables journaling.
func WithJournal(j relationaldb.Journal) Option {
	return func(o *options) {
		o.journal = j
		o.journalSet = true
	}
}

// WithClock sets the time source for journal timestamps and signature
// deadlines.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// Node owns the token and everything that persists or serves it.
type Node struct {
	cfg    *config.Config
	logger *slog.Logger
	now    func() time.Time

	store   *statestore.Store
	journal relationaldb.Journal
	token   *token.Token
	auth    *metatx.Authority

	subscriptions *rpc.SubscriptionManager
	publisher     rpc.EventPublisher

	// mu serializes write operations with their persistence, so storage and
	// journal order match commit order.
	mu       sync.Mutex
	fullSave bool

	pendingMu sync.Mutex
	pending   []token.Commit

	rpcServer  *rpc.Server
	wsServer   *rpc.WebSocketServer
	grpcServer *grpcserver.Server

	addrMu   sync.RWMutex
	rpcAddr  string
	grpcAddr string

	closeOnce sync.Once
}

// New opens storage and the journal, then restores the token from the store
// or, when the store is empty, creates it from the genesis configuration.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Node, error) {
	o := options{
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	n := &Node{
		cfg:           cfg,
		logger:        o.logger.With("component", "node"),
		now:           o.now,
		subscriptions: rpc.NewSubscriptionManager(),
	}
	n.publisher = rpc.NewPublisher(n.subscriptions, o.logger)

	db := o.db
	if db == nil {
		var err error
		db, err = backend.Open(cfg.Storage.Backend, cfg.Storage.Path, stateDBName)
		if err != nil {
			return nil, fmt.Errorf("open state database: %w", err)
		}
	}
	store, err := statestore.New(db,
		statestore.WithCompression(cfg.Storage.Compression),
		statestore.WithCacheSize(cfg.Storage.CacheSize),
		statestore.WithLogger(o.logger),
	)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	n.store = store

	if o.journalSet {
		n.journal = o.journal
	} else if n.journal, err = openJournal(ctx, cfg.Journal, o.logger); err != nil {
		_ = n.store.Close()
		return nil, err
	}

	if err := n.initToken(ctx); err != nil {
		n.Close()
		return nil, err
	}

	n.auth, err = metatx.New(n.token,
		metatx.WithClock(n.now),
		metatx.WithLogger(o.logger),
	)
	if err != nil {
		n.Close()
		return nil, err
	}

	if err := n.initTransports(); err != nil {
		n.Close()
		return nil, err
	}
	return n, nil
}

func (n *Node) initToken(ctx context.Context) error {
	tokenOpts := []token.Option{
		token.WithLogger(n.logger),
		token.WithHooks(token.Hooks{OnCommit: n.capture}),
	}

	st, ok, err := n.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	if ok {
		n.token, err = token.Restore(st, tokenOpts...)
		if err != nil {
			return err
		}
		n.token.TakeDirty()
		return nil
	}

	tc := n.cfg.Token
	owner, err := tc.OwnerAddress()
	if err != nil {
		return err
	}
	if owner.IsZero() {
		return ErrNoOwner
	}
	premint, err := tc.PremintUnits()
	if err != nil {
		return err
	}
	params, err := tc.FeeParams()
	if err != nil {
		return err
	}
	recipient, err := tc.FeeRecipientAddress()
	if err != nil {
		return err
	}

	n.token, err = token.New(owner, premint, params, append([]token.Option{
		token.WithName(tc.Name),
		token.WithSymbol(tc.Symbol),
		token.WithDecimals(tc.Decimals),
		token.WithFeeRecipient(recipient),
	}, tokenOpts...)...)
	if err != nil {
		return fmt.Errorf("genesis: %w", err)
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	n.fullSave = true
	if err := n.persist(ctx); err != nil {
		return fmt.Errorf("genesis: %w", err)
	}
	n.logger.Info("genesis written", "owner", owner, "premint", premint.Dec())
	return nil
}

// capture records commits. It runs under the token lock and must not call
// back into the token.
func (n *Node) capture(c token.Commit) {
	n.pendingMu.Lock()
	defer n.pendingMu.Unlock()
	n.pending = append(n.pending, c)
}

func (n *Node) drain() []token.Commit {
	n.pendingMu.Lock()
	defer n.pendingMu.Unlock()
	out := n.pending
	n.pending = nil
	return out
}

// requeue puts commits back ahead of anything captured since they were
// drained.
func (n *Node) requeue(commits []token.Commit) {
	if len(commits) == 0 {
		return
	}
	n.pendingMu.Lock()
	defer n.pendingMu.Unlock()
	n.pending = append(commits, n.pending...)
}

// Token returns the token aggregate for reads.
func (n *Node) Token() *token.Token {
	return n.token
}

// Subscriptions returns the WebSocket subscription registry.
func (n *Node) Subscriptions() *rpc.SubscriptionManager {
	return n.subscriptions
}

// Close releases storage and the journal. It is safe to call more than once.
func (n *Node) Close() error {
	var errs []error
	n.closeOnce.Do(func() {
		if n.journal != nil {
			if err := n.journal.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close journal: %w", err))
			}
		}
		if err := n.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close state store: %w", err))
		}
	})
	return errors.Join(errs...)
}
