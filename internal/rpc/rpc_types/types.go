package rpc_types

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/holiman/uint256"

	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/amount"
)

// RPC Context contains request-specific information
type RpcContext struct {
	Context  context.Context
	ClientIP string
}

// Method handler interface - all RPC methods implement this
type MethodHandler interface {
	Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError)
}

// MethodFunc adapts a function to MethodHandler.
type MethodFunc func(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError)

func (f MethodFunc) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	return f(ctx, params)
}

// Method registry for dynamic method registration
type MethodRegistry struct {
	methods map[string]MethodHandler
}

func NewMethodRegistry() *MethodRegistry {
	return &MethodRegistry{
		methods: make(map[string]MethodHandler),
	}
}

func (r *MethodRegistry) Register(name string, handler MethodHandler) {
	r.methods[name] = handler
}

func (r *MethodRegistry) Get(name string) (MethodHandler, bool) {
	handler, exists := r.methods[name]
	return handler, exists
}

// List returns the registered method names, sorted.
func (r *MethodRegistry) List() []string {
	methods := make([]string, 0, len(r.methods))
	for name := range r.methods {
		methods = append(methods, name)
	}
	sort.Strings(methods)
	return methods
}

// Amount is a smallest-unit token amount. It decodes from a JSON decimal
// string or number and encodes as a decimal string.
type Amount struct {
	*uint256.Int
}

func NewAmount(v *uint256.Int) Amount {
	return Amount{Int: v}
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		a.Int = nil
		return nil
	}
	var s string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
	} else {
		s = string(data)
	}
	v, err := amount.Parse(s)
	if err != nil {
		return err
	}
	a.Int = v
	return nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	if a.Int == nil {
		return []byte("null"), nil
	}
	return json.Marshal(a.Int.Dec())
}

// IsSet reports whether the field was present.
func (a Amount) IsSet() bool { return a.Int != nil }

// WebSocket specific structures
type WebSocketCommand struct {
	Command string          `json:"command"`
	ID      interface{}     `json:"id,omitempty"`
	Params  json.RawMessage `json:"-"`
}

// WebSocketResponse represents a WebSocket API response
type WebSocketResponse struct {
	Status       string      `json:"status"`
	Type         string      `json:"type"`
	Result       interface{} `json:"result,omitempty"`
	ID           interface{} `json:"id,omitempty"`
	Error        string      `json:"error,omitempty"`
	ErrorCode    int         `json:"error_code,omitempty"`
	ErrorMessage string      `json:"error_message,omitempty"`
}

// Subscription types for WebSocket streams
type SubscriptionType string

const (
	SubTransfers SubscriptionType = "transfers"
	SubApprovals SubscriptionType = "approvals"
	SubRebases   SubscriptionType = "rebases"
	SubAccounts  SubscriptionType = "accounts"
)

// ValidStreams lists the streams a client may subscribe to by name.
var ValidStreams = map[SubscriptionType]bool{
	SubTransfers: true,
	SubApprovals: true,
	SubRebases:   true,
}

// Subscription request structure
type SubscriptionRequest struct {
	Streams  []SubscriptionType `json:"streams,omitempty"`
	Accounts []string           `json:"accounts,omitempty"`
}

// StreamMessage is one committed event pushed to subscribers.
type StreamMessage struct {
	Type      string `json:"type"`
	Seq       uint64 `json:"seq"`
	Op        string `json:"op"`
	From      string `json:"from,omitempty"`
	To        string `json:"to,omitempty"`
	Owner     string `json:"owner,omitempty"`
	Spender   string `json:"spender,omitempty"`
	Amount    string `json:"amount,omitempty"`
	OldFactor string `json:"old_factor,omitempty"`
	NewFactor string `json:"new_factor,omitempty"`
}

func (m StreamMessage) String() string {
	return fmt.Sprintf("%s#%d", m.Type, m.Seq)
}
