package rpc

import (
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/address"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/fee"
)

// Write methods name the acting account explicitly in "caller". Callers are
// not authenticated; transfer_with_signature carries its own authorization.

func (svc *Services) writer() (Writer, *RpcError) {
	if svc.Writer == nil {
		return nil, RpcErrorNotEnabled("Writes")
	}
	return svc.Writer, nil
}

func committed(op string, fields map[string]interface{}) map[string]interface{} {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	fields["op"] = op
	fields["committed"] = true
	return fields
}

type transferRequest struct {
	Caller string `json:"caller"`
	To     string `json:"to"`
	Amount Amount `json:"amount"`
}

// TransferMethod handles the transfer RPC method
type TransferMethod struct{ svc *Services }

func (m *TransferMethod) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var request transferRequest
	if rpcErr := parseParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	caller, rpcErr := parseAddress("caller", request.Caller)
	if rpcErr != nil {
		return nil, rpcErr
	}
	to, rpcErr := parseAddress("to", request.To)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if rpcErr := requireAmount("amount", request.Amount); rpcErr != nil {
		return nil, rpcErr
	}
	w, rpcErr := m.svc.writer()
	if rpcErr != nil {
		return nil, rpcErr
	}

	if err := w.Transfer(ctx.Context, caller, to, request.Amount.Int); err != nil {
		return nil, RpcErrorFrom(err)
	}
	return committed("transfer", map[string]interface{}{
		"from":   caller.Hex(),
		"to":     to.Hex(),
		"amount": request.Amount.Dec(),
	}), nil
}

type allowanceRequest struct {
	Caller  string `json:"caller"`
	Spender string `json:"spender"`
	Amount  Amount `json:"amount"`
}

func (r allowanceRequest) parse() (owner, spender address.Address, rpcErr *RpcError) {
	if owner, rpcErr = parseAddress("caller", r.Caller); rpcErr != nil {
		return
	}
	if spender, rpcErr = parseAddress("spender", r.Spender); rpcErr != nil {
		return
	}
	rpcErr = requireAmount("amount", r.Amount)
	return
}

// ApproveMethod handles the approve RPC method
type ApproveMethod struct{ svc *Services }

func (m *ApproveMethod) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var request allowanceRequest
	if rpcErr := parseParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	owner, spender, rpcErr := request.parse()
	if rpcErr != nil {
		return nil, rpcErr
	}
	w, rpcErr := m.svc.writer()
	if rpcErr != nil {
		return nil, rpcErr
	}

	if err := w.Approve(ctx.Context, owner, spender, request.Amount.Int); err != nil {
		return nil, RpcErrorFrom(err)
	}
	return committed("approve", map[string]interface{}{
		"owner":   owner.Hex(),
		"spender": spender.Hex(),
		"amount":  request.Amount.Dec(),
	}), nil
}

// IncreaseAllowanceMethod handles the increase_allowance RPC method
type IncreaseAllowanceMethod struct{ svc *Services }

func (m *IncreaseAllowanceMethod) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var request allowanceRequest
	if rpcErr := parseParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	owner, spender, rpcErr := request.parse()
	if rpcErr != nil {
		return nil, rpcErr
	}
	w, rpcErr := m.svc.writer()
	if rpcErr != nil {
		return nil, rpcErr
	}

	if err := w.IncreaseAllowance(ctx.Context, owner, spender, request.Amount.Int); err != nil {
		return nil, RpcErrorFrom(err)
	}
	return committed("increase_allowance", map[string]interface{}{
		"owner":   owner.Hex(),
		"spender": spender.Hex(),
	}), nil
}

// DecreaseAllowanceMethod handles the decrease_allowance RPC method
type DecreaseAllowanceMethod struct{ svc *Services }

func (m *DecreaseAllowanceMethod) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var request allowanceRequest
	if rpcErr := parseParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	owner, spender, rpcErr := request.parse()
	if rpcErr != nil {
		return nil, rpcErr
	}
	w, rpcErr := m.svc.writer()
	if rpcErr != nil {
		return nil, rpcErr
	}

	if err := w.DecreaseAllowance(ctx.Context, owner, spender, request.Amount.Int); err != nil {
		return nil, RpcErrorFrom(err)
	}
	return committed("decrease_allowance", map[string]interface{}{
		"owner":   owner.Hex(),
		"spender": spender.Hex(),
	}), nil
}

// TransferFromMethod handles the transfer_from RPC method. The caller is the
// spender.
type TransferFromMethod struct{ svc *Services }

func (m *TransferFromMethod) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var request struct {
		Caller string `json:"caller"`
		From   string `json:"from"`
		To     string `json:"to"`
		Amount Amount `json:"amount"`
	}
	if rpcErr := parseParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	spender, rpcErr := parseAddress("caller", request.Caller)
	if rpcErr != nil {
		return nil, rpcErr
	}
	owner, rpcErr := parseAddress("from", request.From)
	if rpcErr != nil {
		return nil, rpcErr
	}
	to, rpcErr := parseAddress("to", request.To)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if rpcErr := requireAmount("amount", request.Amount); rpcErr != nil {
		return nil, rpcErr
	}
	w, rpcErr := m.svc.writer()
	if rpcErr != nil {
		return nil, rpcErr
	}

	if err := w.TransferFrom(ctx.Context, spender, owner, to, request.Amount.Int); err != nil {
		return nil, RpcErrorFrom(err)
	}
	return committed("transfer_from", map[string]interface{}{
		"spender": spender.Hex(),
		"from":    owner.Hex(),
		"to":      to.Hex(),
		"amount":  request.Amount.Dec(),
	}), nil
}

// TransferWithSignatureMethod handles the transfer_with_signature RPC method.
// The caller is the relayer that submits the signer's authorization.
type TransferWithSignatureMethod struct{ svc *Services }

func (m *TransferWithSignatureMethod) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var request struct {
		Caller    string `json:"caller"`
		Signer    string `json:"signer"`
		To        string `json:"to"`
		Amount    Amount `json:"amount"`
		Deadline  uint64 `json:"deadline"`
		Signature string `json:"signature"`
	}
	if rpcErr := parseParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	relayer, rpcErr := parseAddress("caller", request.Caller)
	if rpcErr != nil {
		return nil, rpcErr
	}
	signer, rpcErr := parseAddress("signer", request.Signer)
	if rpcErr != nil {
		return nil, rpcErr
	}
	to, rpcErr := parseAddress("to", request.To)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if rpcErr := requireAmount("amount", request.Amount); rpcErr != nil {
		return nil, rpcErr
	}
	if request.Signature == "" {
		return nil, RpcErrorMissingField("signature")
	}
	sig, err := hex.DecodeString(strings.TrimPrefix(strings.TrimPrefix(request.Signature, "0x"), "0X"))
	if err != nil {
		return nil, RpcErrorInvalidField("signature")
	}
	w, rpcErr := m.svc.writer()
	if rpcErr != nil {
		return nil, rpcErr
	}

	if err := w.TransferWithSignature(ctx.Context, relayer, signer, to, request.Amount.Int, request.Deadline, sig); err != nil {
		return nil, RpcErrorFrom(err)
	}
	return committed("transfer_with_signature", map[string]interface{}{
		"relayer": relayer.Hex(),
		"from":    signer.Hex(),
		"to":      to.Hex(),
		"amount":  request.Amount.Dec(),
	}), nil
}

// MintMethod handles the mint RPC method
type MintMethod struct{ svc *Services }

func (m *MintMethod) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var request transferRequest
	if rpcErr := parseParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	caller, rpcErr := parseAddress("caller", request.Caller)
	if rpcErr != nil {
		return nil, rpcErr
	}
	to, rpcErr := parseAddress("to", request.To)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if rpcErr := requireAmount("amount", request.Amount); rpcErr != nil {
		return nil, rpcErr
	}
	w, rpcErr := m.svc.writer()
	if rpcErr != nil {
		return nil, rpcErr
	}

	if err := w.Mint(ctx.Context, caller, to, request.Amount.Int); err != nil {
		return nil, RpcErrorFrom(err)
	}
	return committed("mint", map[string]interface{}{
		"to":     to.Hex(),
		"amount": request.Amount.Dec(),
	}), nil
}

// SetFeeParamsMethod handles the set_fee_params RPC method
type SetFeeParamsMethod struct{ svc *Services }

func (m *SetFeeParamsMethod) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var request struct {
		Caller          string `json:"caller"`
		BaseTxFee       Amount `json:"base_tx_fee"`
		FeeIncrement    Amount `json:"fee_increment"`
		VolumeThreshold Amount `json:"volume_threshold"`
	}
	if rpcErr := parseParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	caller, rpcErr := parseAddress("caller", request.Caller)
	if rpcErr != nil {
		return nil, rpcErr
	}
	for field, a := range map[string]Amount{
		"base_tx_fee":      request.BaseTxFee,
		"fee_increment":    request.FeeIncrement,
		"volume_threshold": request.VolumeThreshold,
	} {
		if rpcErr := requireAmount(field, a); rpcErr != nil {
			return nil, rpcErr
		}
	}
	w, rpcErr := m.svc.writer()
	if rpcErr != nil {
		return nil, rpcErr
	}

	p := fee.Params{
		BaseTxFee:       request.BaseTxFee.Int,
		FeeIncrement:    request.FeeIncrement.Int,
		VolumeThreshold: request.VolumeThreshold.Int,
	}
	if err := w.SetFeeParams(ctx.Context, caller, p); err != nil {
		return nil, RpcErrorFrom(err)
	}
	return committed("set_fee_params", map[string]interface{}{
		"base_tx_fee":      p.BaseTxFee.Dec(),
		"fee_increment":    p.FeeIncrement.Dec(),
		"volume_threshold": p.VolumeThreshold.Dec(),
	}), nil
}

// RebaseMethod handles the rebase RPC method. Percentage is in whole
// percent of the current factor, 1 to 1000.
type RebaseMethod struct{ svc *Services }

func (m *RebaseMethod) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var request struct {
		Caller     string  `json:"caller"`
		Percentage *uint64 `json:"percentage"`
	}
	if rpcErr := parseParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	caller, rpcErr := parseAddress("caller", request.Caller)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if request.Percentage == nil {
		return nil, RpcErrorMissingField("percentage")
	}
	w, rpcErr := m.svc.writer()
	if rpcErr != nil {
		return nil, rpcErr
	}

	if err := w.Rebase(ctx.Context, caller, *request.Percentage); err != nil {
		return nil, RpcErrorFrom(err)
	}
	return committed("rebase", map[string]interface{}{
		"percentage": *request.Percentage,
	}), nil
}

// RebaseAllMethod handles the rebase_all RPC method
type RebaseAllMethod struct{ svc *Services }

func (m *RebaseAllMethod) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var request struct {
		Caller   string `json:"caller"`
		Amount   Amount `json:"amount"`
		Increase bool   `json:"increase"`
	}
	if rpcErr := parseParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	caller, rpcErr := parseAddress("caller", request.Caller)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if rpcErr := requireAmount("amount", request.Amount); rpcErr != nil {
		return nil, rpcErr
	}
	w, rpcErr := m.svc.writer()
	if rpcErr != nil {
		return nil, rpcErr
	}

	if err := w.RebaseAllAccounts(ctx.Context, caller, request.Amount.Int, request.Increase); err != nil {
		return nil, RpcErrorFrom(err)
	}
	return committed("rebase_all", map[string]interface{}{
		"amount":   request.Amount.Dec(),
		"increase": request.Increase,
	}), nil
}

// DistributeRewardMethod handles the distribute_reward RPC method. The
// range [start, end) defaults to every recipient.
type DistributeRewardMethod struct{ svc *Services }

func (m *DistributeRewardMethod) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var request struct {
		Caller     string   `json:"caller"`
		Recipients []string `json:"recipients"`
		Amount     Amount   `json:"amount"`
		Start      int      `json:"start,omitempty"`
		End        *int     `json:"end,omitempty"`
	}
	if rpcErr := parseParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	caller, rpcErr := parseAddress("caller", request.Caller)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if len(request.Recipients) == 0 {
		return nil, RpcErrorMissingField("recipients")
	}
	recipients := make([]address.Address, len(request.Recipients))
	for i, s := range request.Recipients {
		a, err := address.Parse(s)
		if err != nil {
			return nil, RpcErrorInvalidField("recipients")
		}
		recipients[i] = a
	}
	if rpcErr := requireAmount("amount", request.Amount); rpcErr != nil {
		return nil, rpcErr
	}
	end := len(recipients)
	if request.End != nil {
		end = *request.End
	}
	w, rpcErr := m.svc.writer()
	if rpcErr != nil {
		return nil, rpcErr
	}

	if err := w.DistributeReward(ctx.Context, caller, recipients, request.Amount.Int, request.Start, end); err != nil {
		return nil, RpcErrorFrom(err)
	}
	return committed("distribute_reward", map[string]interface{}{
		"amount": request.Amount.Dec(),
		"start":  request.Start,
		"end":    end,
	}), nil
}
