package rpc

import (
	"sync"

	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/address"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/rpc/rpc_types"
)

// Connection is the subscription state of one WebSocket client.
type Connection struct {
	ID       string
	send     chan []byte
	streams  map[SubscriptionType]struct{}
	accounts map[address.Address]struct{}
}

func newConnection(id string, buffer int) *Connection {
	return &Connection{
		ID:       id,
		send:     make(chan []byte, buffer),
		streams:  make(map[SubscriptionType]struct{}),
		accounts: make(map[address.Address]struct{}),
	}
}

// SubscriptionManager tracks which connections want which events.
type SubscriptionManager struct {
	mu          sync.RWMutex
	connections map[string]*Connection
	dropped     uint64
}

func NewSubscriptionManager() *SubscriptionManager {
	return &SubscriptionManager{
		connections: make(map[string]*Connection),
	}
}

func (sm *SubscriptionManager) AddConnection(conn *Connection) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.connections[conn.ID] = conn
}

func (sm *SubscriptionManager) RemoveConnection(connID string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	delete(sm.connections, connID)
}

func parseSubscription(request SubscriptionRequest) ([]address.Address, *RpcError) {
	if len(request.Streams) == 0 && len(request.Accounts) == 0 {
		return nil, RpcErrorInvalidParams("Nothing to subscribe to")
	}
	for _, s := range request.Streams {
		if !rpc_types.ValidStreams[s] {
			return nil, NewRpcError(rpc_types.RpcSTREAM_MALFORMED, "malformedStream", "malformedStream", "Unknown stream '"+string(s)+"'.")
		}
	}
	accounts := make([]address.Address, len(request.Accounts))
	for i, s := range request.Accounts {
		a, err := address.Parse(s)
		if err != nil {
			return nil, RpcErrorInvalidField("accounts")
		}
		accounts[i] = a
	}
	return accounts, nil
}

// HandleSubscribe adds the requested streams and accounts to conn. Nothing is
// applied if any entry is invalid.
func (sm *SubscriptionManager) HandleSubscribe(conn *Connection, request SubscriptionRequest) *RpcError {
	accounts, rpcErr := parseSubscription(request)
	if rpcErr != nil {
		return rpcErr
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()
	for _, s := range request.Streams {
		conn.streams[s] = struct{}{}
	}
	for _, a := range accounts {
		conn.accounts[a] = struct{}{}
	}
	return nil
}

// HandleUnsubscribe removes the requested streams and accounts from conn.
func (sm *SubscriptionManager) HandleUnsubscribe(conn *Connection, request SubscriptionRequest) *RpcError {
	accounts, rpcErr := parseSubscription(request)
	if rpcErr != nil {
		return rpcErr
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()
	for _, s := range request.Streams {
		delete(conn.streams, s)
	}
	for _, a := range accounts {
		delete(conn.accounts, a)
	}
	return nil
}

// Broadcast delivers data once to every connection subscribed to stream or
// to any of accounts. Slow connections whose buffer is full miss the message.
func (sm *SubscriptionManager) Broadcast(stream SubscriptionType, accounts []address.Address, data []byte) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	for _, conn := range sm.connections {
		if !conn.wants(stream, accounts) {
			continue
		}
		select {
		case conn.send <- data:
		default:
			sm.dropped++
		}
	}
}

func (c *Connection) wants(stream SubscriptionType, accounts []address.Address) bool {
	if _, ok := c.streams[stream]; ok {
		return true
	}
	for _, a := range accounts {
		if _, ok := c.accounts[a]; ok {
			return true
		}
	}
	return false
}

// SubscriberCount returns the number of connections subscribed to stream.
// SubAccounts counts connections following at least one account.
func (sm *SubscriptionManager) SubscriberCount(stream SubscriptionType) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	n := 0
	for _, conn := range sm.connections {
		if stream == rpc_types.SubAccounts {
			if len(conn.accounts) > 0 {
				n++
			}
			continue
		}
		if _, ok := conn.streams[stream]; ok {
			n++
		}
	}
	return n
}

// Dropped returns how many messages were skipped because a subscriber was
// not reading fast enough.
func (sm *SubscriptionManager) Dropped() uint64 {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.dropped
}
