package rpc

import (
	"context"

	"github.com/holiman/uint256"

	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/address"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/fee"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/rpc/rpc_types"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/storage/relationaldb"
)

type (
	RpcContext          = rpc_types.RpcContext
	RpcError            = rpc_types.RpcError
	MethodHandler       = rpc_types.MethodHandler
	MethodFunc          = rpc_types.MethodFunc
	MethodRegistry      = rpc_types.MethodRegistry
	SubscriptionType    = rpc_types.SubscriptionType
	SubscriptionRequest = rpc_types.SubscriptionRequest
	StreamMessage       = rpc_types.StreamMessage
	WebSocketCommand    = rpc_types.WebSocketCommand
	WebSocketResponse   = rpc_types.WebSocketResponse
	Amount              = rpc_types.Amount
)

var (
	NewMethodRegistry      = rpc_types.NewMethodRegistry
	NewRpcError            = rpc_types.NewRpcError
	RpcErrorInvalidParams  = rpc_types.RpcErrorInvalidParams
	RpcErrorMethodNotFound = rpc_types.RpcErrorMethodNotFound
	RpcErrorInternal       = rpc_types.RpcErrorInternal
	RpcErrorMissingField   = rpc_types.RpcErrorMissingField
	RpcErrorInvalidField   = rpc_types.RpcErrorInvalidField
	RpcErrorNotEnabled     = rpc_types.RpcErrorNotEnabled
	RpcErrorFrom           = rpc_types.RpcErrorFrom
)

// Reader is the read side of the token. *token.Token satisfies it.
type Reader interface {
	Name() string
	Symbol() string
	Decimals() uint8
	Owner() address.Address
	FeeRecipient() address.Address
	TotalSupply() *uint256.Int
	ScalingFactor() *uint256.Int
	BalanceOf(a address.Address) *uint256.Int
	NormalizedBalanceOf(a address.Address) *uint256.Int
	Allowance(owner, spender address.Address) *uint256.Int
	Holders() []address.Address
	FeeParams() fee.Params
	CumulativeVolume() *uint256.Int
	QuoteFee(amt *uint256.Int) (*uint256.Int, error)
	TxFee() *uint256.Int
	Nonces(a address.Address) uint64
}

// Writer commits and persists state changes. Each call is one atomic
// operation.
type Writer interface {
	Transfer(ctx context.Context, sender, recipient address.Address, amt *uint256.Int) error
	Approve(ctx context.Context, owner, spender address.Address, amt *uint256.Int) error
	IncreaseAllowance(ctx context.Context, owner, spender address.Address, delta *uint256.Int) error
	DecreaseAllowance(ctx context.Context, owner, spender address.Address, delta *uint256.Int) error
	TransferFrom(ctx context.Context, spender, owner, recipient address.Address, amt *uint256.Int) error
	TransferWithSignature(ctx context.Context, relayer, signer, recipient address.Address, amt *uint256.Int, deadline uint64, sig []byte) error
	Mint(ctx context.Context, caller, to address.Address, amt *uint256.Int) error
	SetFeeParams(ctx context.Context, caller address.Address, params fee.Params) error
	Rebase(ctx context.Context, caller address.Address, percentage uint64) error
	RebaseAllAccounts(ctx context.Context, caller address.Address, delta *uint256.Int, increase bool) error
	DistributeReward(ctx context.Context, caller address.Address, recipients []address.Address, amountEach *uint256.Int, start, end int) error
}

// Services bundles what the method handlers use. Journal may be nil.
type Services struct {
	Reader  Reader
	Writer  Writer
	Journal relationaldb.Journal
}
