package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/address"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/fee"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/metatx"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/token"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/storage/relationaldb"
)

var (
	ownerAddr = address.MustParse("0x00000000000000000000000000000000000000a1")
	aliceAddr = address.MustParse("0x00000000000000000000000000000000000000b2")
	bobAddr   = address.MustParse("0x00000000000000000000000000000000000000c3")
)

// tokenWriter drives a token directly, without persistence.
type tokenWriter struct {
	tok  *token.Token
	auth *metatx.Authority
}

func (w *tokenWriter) Transfer(_ context.Context, sender, recipient address.Address, amt *uint256.Int) error {
	return w.tok.Transfer(sender, recipient, amt)
}

func (w *tokenWriter) Approve(_ context.Context, owner, spender address.Address, amt *uint256.Int) error {
	return w.tok.Approve(owner, spender, amt)
}

func (w *tokenWriter) IncreaseAllowance(_ context.Context, owner, spender address.Address, delta *uint256.Int) error {
	return w.tok.IncreaseAllowance(owner, spender, delta)
}

func (w *tokenWriter) DecreaseAllowance(_ context.Context, owner, spender address.Address, delta *uint256.Int) error {
	return w.tok.DecreaseAllowance(owner, spender, delta)
}

func (w *tokenWriter) TransferFrom(_ context.Context, spender, owner, recipient address.Address, amt *uint256.Int) error {
	return w.tok.TransferFrom(spender, owner, recipient, amt)
}

func (w *tokenWriter) TransferWithSignature(_ context.Context, relayer, signer, recipient address.Address, amt *uint256.Int, deadline uint64, sig []byte) error {
	return w.auth.TransferWithSignature(relayer, signer, recipient, amt, deadline, sig)
}

func (w *tokenWriter) Mint(_ context.Context, caller, to address.Address, amt *uint256.Int) error {
	return w.tok.Mint(caller, to, amt)
}

func (w *tokenWriter) SetFeeParams(_ context.Context, caller address.Address, params fee.Params) error {
	return w.tok.SetFeeParams(caller, params)
}

func (w *tokenWriter) Rebase(_ context.Context, caller address.Address, percentage uint64) error {
	return w.tok.Rebase(caller, percentage)
}

func (w *tokenWriter) RebaseAllAccounts(_ context.Context, caller address.Address, delta *uint256.Int, increase bool) error {
	return w.tok.RebaseAllAccounts(caller, delta, increase)
}

func (w *tokenWriter) DistributeReward(_ context.Context, caller address.Address, recipients []address.Address, amountEach *uint256.Int, start, end int) error {
	return w.tok.DistributeReward(caller, recipients, amountEach, start, end)
}

// memJournal is an in-memory relationaldb.Journal.
type memJournal struct {
	mu      sync.Mutex
	records []relationaldb.Record
}

func (j *memJournal) Append(_ context.Context, records []relationaldb.Record) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.records = append(j.records, records...)
	return nil
}

func (j *memJournal) ByAccount(ctx context.Context, a address.Address, limit int) ([]relationaldb.Record, error) {
	return j.query(limit, func(r relationaldb.Record) bool { return r.From == a || r.To == a })
}

func (j *memJournal) Latest(ctx context.Context, limit int) ([]relationaldb.Record, error) {
	return j.query(limit, func(relationaldb.Record) bool { return true })
}

func (j *memJournal) query(limit int, keep func(relationaldb.Record) bool) ([]relationaldb.Record, error) {
	limit, err := relationaldb.NormalizeLimit(limit)
	if err != nil {
		return nil, err
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	var out []relationaldb.Record
	for i := len(j.records) - 1; i >= 0 && len(out) < limit; i-- {
		if keep(j.records[i]) {
			out = append(out, j.records[i])
		}
	}
	return out, nil
}

func (j *memJournal) Close() error { return nil }

type fixture struct {
	tok     *token.Token
	journal *memJournal
	server  *Server
	handler http.Handler
}

func defaultParams() fee.Params {
	return fee.Params{
		BaseTxFee:       uint256.NewInt(1),
		FeeIncrement:    uint256.NewInt(1),
		VolumeThreshold: uint256.NewInt(1000),
	}
}

func newFixture(t *testing.T, opts ...token.Option) *fixture {
	t.Helper()
	tok, err := token.New(ownerAddr, uint256.NewInt(1000), defaultParams(), opts...)
	require.NoError(t, err)
	auth, err := metatx.New(tok)
	require.NoError(t, err)

	f := &fixture{tok: tok, journal: &memJournal{}}
	f.server = NewServer(Services{
		Reader:  tok,
		Writer:  &tokenWriter{tok: tok, auth: auth},
		Journal: f.journal,
	})
	f.handler = f.server.Handler(nil, "/ws")
	return f
}

// call posts a JSON-RPC request and returns the result object.
func call(t *testing.T, h http.Handler, method string, params interface{}) map[string]interface{} {
	t.Helper()
	body := map[string]interface{}{"method": method}
	if params != nil {
		body["params"] = []interface{}{params}
	}
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/rpc", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Result map[string]interface{} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Result)
	return resp.Result
}

func requireSuccess(t *testing.T, result map[string]interface{}) {
	t.Helper()
	require.Equal(t, "success", result["status"], "unexpected error: %v", result["error_message"])
}

func requireError(t *testing.T, result map[string]interface{}, name string, code int) {
	t.Helper()
	require.Equal(t, "error", result["status"])
	require.Equal(t, name, result["error"])
	require.EqualValues(t, code, result["error_code"])
}
