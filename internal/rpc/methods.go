package rpc

import (
	"encoding/json"
	"strings"

	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/address"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/amount"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/storage/relationaldb"
)

// registerAllMethods registers every token method.
// This function is called by NewServer to set up the method registry.
func (s *Server) registerAllMethods() {
	svc := &s.services

	// Token reads
	s.registry.Register("token_info", &TokenInfoMethod{svc})
	s.registry.Register("balance", &BalanceMethod{svc})
	s.registry.Register("allowance", &AllowanceMethod{svc})
	s.registry.Register("holders", &HoldersMethod{svc})
	s.registry.Register("fee_info", &FeeInfoMethod{svc})
	s.registry.Register("fee_quote", &FeeQuoteMethod{svc})
	s.registry.Register("nonce", &NonceMethod{svc})
	s.registry.Register("journal", &JournalMethod{svc})

	// Transfers and allowances
	s.registry.Register("transfer", &TransferMethod{svc})
	s.registry.Register("approve", &ApproveMethod{svc})
	s.registry.Register("increase_allowance", &IncreaseAllowanceMethod{svc})
	s.registry.Register("decrease_allowance", &DecreaseAllowanceMethod{svc})
	s.registry.Register("transfer_from", &TransferFromMethod{svc})
	s.registry.Register("transfer_with_signature", &TransferWithSignatureMethod{svc})

	// Owner methods
	s.registry.Register("mint", &MintMethod{svc})
	s.registry.Register("set_fee_params", &SetFeeParamsMethod{svc})
	s.registry.Register("rebase", &RebaseMethod{svc})
	s.registry.Register("rebase_all", &RebaseAllMethod{svc})
	s.registry.Register("distribute_reward", &DistributeRewardMethod{svc})
}

// parseParams decodes the request object. Absent params decode to the zero value.
func parseParams(params json.RawMessage, v interface{}) *RpcError {
	if len(params) == 0 {
		return nil
	}
	if err := json.Unmarshal(params, v); err != nil {
		return RpcErrorInvalidParams("Invalid parameters: " + err.Error())
	}
	return nil
}

func parseAddress(field, value string) (address.Address, *RpcError) {
	if strings.TrimSpace(value) == "" {
		return address.Zero, RpcErrorMissingField(field)
	}
	a, err := address.Parse(value)
	if err != nil {
		return address.Zero, RpcErrorInvalidField(field)
	}
	return a, nil
}

func requireAmount(field string, a Amount) *RpcError {
	if !a.IsSet() {
		return RpcErrorMissingField(field)
	}
	return nil
}

func (svc *Services) reader() (Reader, *RpcError) {
	if svc.Reader == nil {
		return nil, RpcErrorInternal("Token service not available")
	}
	return svc.Reader, nil
}

// TokenInfoMethod handles the token_info RPC method
type TokenInfoMethod struct{ svc *Services }

func (m *TokenInfoMethod) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	r, rpcErr := m.svc.reader()
	if rpcErr != nil {
		return nil, rpcErr
	}

	supply := r.TotalSupply()
	return map[string]interface{}{
		"name":           r.Name(),
		"symbol":         r.Symbol(),
		"decimals":       r.Decimals(),
		"owner":          r.Owner().Hex(),
		"fee_recipient":  r.FeeRecipient().Hex(),
		"total_supply":   supply.Dec(),
		"display_supply": amount.FormatUnits(supply, r.Decimals()),
		"scaling_factor": r.ScalingFactor().Dec(),
		"holder_count":   len(r.Holders()),
	}, nil
}

// BalanceMethod handles the balance RPC method
type BalanceMethod struct{ svc *Services }

func (m *BalanceMethod) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var request struct {
		Account string `json:"account"`
	}
	if rpcErr := parseParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	account, rpcErr := parseAddress("account", request.Account)
	if rpcErr != nil {
		return nil, rpcErr
	}
	r, rpcErr := m.svc.reader()
	if rpcErr != nil {
		return nil, rpcErr
	}

	balance := r.BalanceOf(account)
	return map[string]interface{}{
		"account":            account.Hex(),
		"balance":            balance.Dec(),
		"display_balance":    amount.FormatUnits(balance, r.Decimals()),
		"normalized_balance": r.NormalizedBalanceOf(account).Dec(),
		"nonce":              r.Nonces(account),
	}, nil
}

// AllowanceMethod handles the allowance RPC method
type AllowanceMethod struct{ svc *Services }

func (m *AllowanceMethod) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var request struct {
		Owner   string `json:"owner"`
		Spender string `json:"spender"`
	}
	if rpcErr := parseParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	owner, rpcErr := parseAddress("owner", request.Owner)
	if rpcErr != nil {
		return nil, rpcErr
	}
	spender, rpcErr := parseAddress("spender", request.Spender)
	if rpcErr != nil {
		return nil, rpcErr
	}
	r, rpcErr := m.svc.reader()
	if rpcErr != nil {
		return nil, rpcErr
	}

	return map[string]interface{}{
		"owner":     owner.Hex(),
		"spender":   spender.Hex(),
		"allowance": r.Allowance(owner, spender).Dec(),
	}, nil
}

// HoldersMethod handles the holders RPC method. Results are paged in
// registry order.
type HoldersMethod struct{ svc *Services }

func (m *HoldersMethod) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var request struct {
		Offset int `json:"offset,omitempty"`
		Limit  int `json:"limit,omitempty"`
	}
	if rpcErr := parseParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	if request.Offset < 0 {
		return nil, RpcErrorInvalidField("offset")
	}
	limit, err := relationaldb.NormalizeLimit(request.Limit)
	if err != nil {
		return nil, RpcErrorInvalidField("limit")
	}
	r, rpcErr := m.svc.reader()
	if rpcErr != nil {
		return nil, rpcErr
	}

	all := r.Holders()
	start := min(request.Offset, len(all))
	end := min(start+limit, len(all))

	holders := make([]map[string]interface{}, 0, end-start)
	for _, h := range all[start:end] {
		holders = append(holders, map[string]interface{}{
			"account": h.Hex(),
			"balance": r.BalanceOf(h).Dec(),
		})
	}
	return map[string]interface{}{
		"holders": holders,
		"offset":  start,
		"total":   len(all),
	}, nil
}

// FeeInfoMethod handles the fee_info RPC method
type FeeInfoMethod struct{ svc *Services }

func (m *FeeInfoMethod) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	r, rpcErr := m.svc.reader()
	if rpcErr != nil {
		return nil, rpcErr
	}

	p := r.FeeParams()
	return map[string]interface{}{
		"base_tx_fee":       p.BaseTxFee.Dec(),
		"fee_increment":     p.FeeIncrement.Dec(),
		"volume_threshold":  p.VolumeThreshold.Dec(),
		"cumulative_volume": r.CumulativeVolume().Dec(),
		"tx_fee":            r.TxFee().Dec(),
		"fee_recipient":     r.FeeRecipient().Hex(),
	}, nil
}

// FeeQuoteMethod handles the fee_quote RPC method
type FeeQuoteMethod struct{ svc *Services }

func (m *FeeQuoteMethod) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var request struct {
		Amount Amount `json:"amount"`
	}
	if rpcErr := parseParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	if rpcErr := requireAmount("amount", request.Amount); rpcErr != nil {
		return nil, rpcErr
	}
	r, rpcErr := m.svc.reader()
	if rpcErr != nil {
		return nil, rpcErr
	}

	quote, err := r.QuoteFee(request.Amount.Int)
	if err != nil {
		return nil, RpcErrorFrom(err)
	}
	return map[string]interface{}{
		"amount": request.Amount.Dec(),
		"fee":    quote.Dec(),
	}, nil
}

// NonceMethod handles the nonce RPC method
type NonceMethod struct{ svc *Services }

func (m *NonceMethod) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var request struct {
		Account string `json:"account"`
	}
	if rpcErr := parseParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	account, rpcErr := parseAddress("account", request.Account)
	if rpcErr != nil {
		return nil, rpcErr
	}
	r, rpcErr := m.svc.reader()
	if rpcErr != nil {
		return nil, rpcErr
	}

	return map[string]interface{}{
		"account": account.Hex(),
		"nonce":   r.Nonces(account),
	}, nil
}

// JournalMethod handles the journal RPC method. Without an account it
// returns the newest records overall.
type JournalMethod struct{ svc *Services }

func (m *JournalMethod) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var request struct {
		Account string `json:"account,omitempty"`
		Limit   int    `json:"limit,omitempty"`
	}
	if rpcErr := parseParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	if m.svc.Journal == nil {
		return nil, RpcErrorNotEnabled("Journal")
	}

	var (
		records []relationaldb.Record
		err     error
	)
	if request.Account != "" {
		account, rpcErr := parseAddress("account", request.Account)
		if rpcErr != nil {
			return nil, rpcErr
		}
		records, err = m.svc.Journal.ByAccount(ctx.Context, account, request.Limit)
	} else {
		records, err = m.svc.Journal.Latest(ctx.Context, request.Limit)
	}
	if err != nil {
		return nil, RpcErrorFrom(err)
	}

	events := make([]map[string]interface{}, 0, len(records))
	for _, rec := range records {
		events = append(events, recordJSON(rec))
	}
	response := map[string]interface{}{
		"events": events,
	}
	if request.Account != "" {
		response["account"] = request.Account
	}
	return response, nil
}

func recordJSON(rec relationaldb.Record) map[string]interface{} {
	out := map[string]interface{}{
		"seq":        rec.Seq,
		"op":         rec.Op,
		"kind":       rec.Kind,
		"created_at": rec.CreatedAt.UnixMilli(),
	}
	if !rec.From.IsZero() || rec.Amount != nil {
		out["from"] = rec.From.Hex()
		out["to"] = rec.To.Hex()
	}
	if rec.Amount != nil {
		out["amount"] = rec.Amount.Dec()
	}
	if rec.OldFactor != nil {
		out["old_factor"] = rec.OldFactor.Dec()
		out["new_factor"] = rec.NewFactor.Dec()
	}
	return out
}
