package node

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/gorilla/websocket"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/config"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/address"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/token"
	grpcserver "github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/grpc"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/logging"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/storage/database"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/storage/database/memory"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/storage/relationaldb"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/storage/relationaldb/mock_relationaldb"
)

var (
	owner = address.MustParse("0x00000000000000000000000000000000000000a1")
	alice = address.MustParse("0x00000000000000000000000000000000000000b2")
	bob   = address.MustParse("0x00000000000000000000000000000000000000c3")
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Token.Owner = owner.Hex()
	cfg.Token.Decimals = 0
	cfg.Token.Premint = "1000"
	cfg.Storage.Backend = "memory"
	cfg.Storage.Path = t.TempDir()
	cfg.RPC.Address = "127.0.0.1:0"
	cfg.GRPC.Address = "127.0.0.1:0"
	return cfg
}

func newNode(t *testing.T, cfg *config.Config, opts ...Option) *Node {
	t.Helper()
	opts = append([]Option{WithLogger(logging.Discard())}, opts...)
	n, err := New(context.Background(), cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { n.Close() })
	return n
}

func assertSameState(t *testing.T, want, got token.State) {
	t.Helper()
	assert.Equal(t, want.Owner, got.Owner)
	assert.Equal(t, want.Factor.Dec(), got.Factor.Dec())
	assert.Equal(t, want.TotalNormalized.Dec(), got.TotalNormalized.Dec())
	assert.Equal(t, want.CumulativeVolume.Dec(), got.CumulativeVolume.Dec())
	assert.Equal(t, want.Seq, got.Seq)
	assert.Equal(t, want.Holders, got.Holders)
	for a, acc := range want.Accounts {
		if acc.IsEmpty() {
			continue
		}
		require.Contains(t, got.Accounts, a)
		assert.Equal(t, acc.Normalized.Dec(), got.Accounts[a].Normalized.Dec(), "account %s", a)
		assert.Equal(t, acc.Nonce, got.Accounts[a].Nonce, "account %s", a)
	}
}

func TestGenesisRequiresOwner(t *testing.T) {
	cfg := testConfig(t)
	cfg.Token.Owner = ""
	_, err := New(context.Background(), cfg, WithLogger(logging.Discard()))
	assert.ErrorIs(t, err, ErrNoOwner)
}

func TestGenesis(t *testing.T) {
	cfg := testConfig(t)
	cfg.Token.Name = "Heat"
	cfg.Token.Symbol = "HEAT"
	n := newNode(t, cfg)

	tok := n.Token()
	assert.Equal(t, "Heat", tok.Name())
	assert.Equal(t, "HEAT", tok.Symbol())
	assert.Equal(t, owner, tok.Owner())
	assert.Equal(t, uint256.NewInt(1000), tok.BalanceOf(owner))
	assert.Equal(t, []address.Address{owner}, tok.Holders())
}

func TestGenesisPremintScalesByDecimals(t *testing.T) {
	cfg := testConfig(t)
	cfg.Token.Decimals = 2
	cfg.Token.Premint = "1.5"
	n := newNode(t, cfg)
	assert.Equal(t, uint256.NewInt(150), n.Token().BalanceOf(owner))
}

func TestRestoreFromStore(t *testing.T) {
	for _, backendName := range []string{"pebble", "leveldb", "bbolt"} {
		t.Run(backendName, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.Storage.Backend = backendName
			ctx := context.Background()

			n, err := New(ctx, cfg, WithLogger(logging.Discard()))
			require.NoError(t, err)
			require.NoError(t, n.Transfer(ctx, owner, alice, uint256.NewInt(500)))
			require.NoError(t, n.Approve(ctx, alice, bob, uint256.NewInt(40)))
			require.NoError(t, n.Rebase(ctx, owner, 110))
			want := n.Token().Export()
			require.NoError(t, n.Close())

			// Genesis settings no longer apply once state exists.
			cfg.Token.Premint = "5"
			cfg.Token.Owner = bob.Hex()
			restored := newNode(t, cfg)

			tok := restored.Token()
			assert.Equal(t, owner, tok.Owner())
			assertSameState(t, want, tok.Export())
			assert.Equal(t, uint256.NewInt(40), tok.Allowance(alice, bob))
			assert.Equal(t, uint256.NewInt(110), tok.ScalingFactor())
			assert.Equal(t, []address.Address{owner, alice}, tok.Holders())
		})
	}
}

func TestWritesAreJournaled(t *testing.T) {
	ctrl := gomock.NewController(t)
	journal := mock_relationaldb.NewMockJournal(ctrl)
	at := time.Unix(1_700_000_000, 0)

	var appended [][]relationaldb.Record
	record := func(_ context.Context, records []relationaldb.Record) error {
		appended = append(appended, records)
		return nil
	}
	gomock.InOrder(
		journal.EXPECT().Append(gomock.Any(), gomock.Len(1)).DoAndReturn(record),
		journal.EXPECT().Append(gomock.Any(), gomock.Len(2)).DoAndReturn(record),
		journal.EXPECT().Close().Return(nil),
	)

	n := newNode(t, testConfig(t), WithJournal(journal), WithClock(func() time.Time { return at }))
	require.NoError(t, n.Transfer(context.Background(), owner, alice, uint256.NewInt(500)))

	require.Len(t, appended, 2)
	premint := appended[0][0]
	assert.Equal(t, "premint", premint.Op)
	assert.Equal(t, "Transfer", premint.Kind)
	assert.True(t, premint.From.IsZero())
	assert.Equal(t, owner, premint.To)

	transfer, burn := appended[1][0], appended[1][1]
	assert.Equal(t, "transfer", transfer.Op)
	assert.Equal(t, alice, transfer.To)
	assert.Equal(t, uint256.NewInt(500), transfer.Amount)
	assert.True(t, burn.To.IsZero())
	assert.Equal(t, uint256.NewInt(1), burn.Amount)
	assert.Less(t, premint.Seq, transfer.Seq)
	assert.Less(t, transfer.Seq, burn.Seq)
	assert.Equal(t, at.UTC(), transfer.CreatedAt)
}

func TestFailedWriteIsNotJournaled(t *testing.T) {
	ctrl := gomock.NewController(t)
	journal := mock_relationaldb.NewMockJournal(ctrl)
	journal.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil).Times(1)
	journal.EXPECT().Close().Return(nil)

	n := newNode(t, testConfig(t), WithJournal(journal))
	err := n.Transfer(context.Background(), alice, bob, uint256.NewInt(1))
	assert.ErrorIs(t, err, token.ErrInsufficientBalance)
	err = n.Mint(context.Background(), alice, alice, uint256.NewInt(1))
	assert.ErrorIs(t, err, token.ErrNotOwner)
}

func TestJournalFailureDoesNotFailWrite(t *testing.T) {
	ctrl := gomock.NewController(t)
	journal := mock_relationaldb.NewMockJournal(ctrl)
	journal.EXPECT().Append(gomock.Any(), gomock.Any()).Return(errors.New("disk full")).Times(2)
	journal.EXPECT().Close().Return(nil)

	n := newNode(t, testConfig(t), WithJournal(journal))
	require.NoError(t, n.Transfer(context.Background(), owner, alice, uint256.NewInt(5)))
	assert.Equal(t, uint256.NewInt(5), n.Token().BalanceOf(alice))
}

func TestCancelledContextRejectsWrite(t *testing.T) {
	n := newNode(t, testConfig(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, n.Transfer(ctx, owner, alice, uint256.NewInt(5)), context.Canceled)
	assert.True(t, n.Token().BalanceOf(alice).IsZero())
}

// flakyDB fails batches while failing is set.
type flakyDB struct {
	database.DB
	failing atomic.Bool
}

func (f *flakyDB) Batch(ctx context.Context, ops []database.BatchOperation) error {
	if f.failing.Load() {
		return errors.New("io error")
	}
	return f.DB.Batch(ctx, ops)
}

func TestPersistFailureRecoversWithFullSave(t *testing.T) {
	ctx := context.Background()
	db := &flakyDB{DB: memory.New()}
	cfg := testConfig(t)

	journal := mock_relationaldb.NewMockJournal(gomock.NewController(t))
	var ops []string
	record := func(_ context.Context, records []relationaldb.Record) error {
		for _, r := range records {
			ops = append(ops, r.Op)
		}
		return nil
	}
	gomock.InOrder(
		journal.EXPECT().Append(gomock.Any(), gomock.Len(1)).DoAndReturn(record),
		// The failed save's events arrive with the next successful one.
		journal.EXPECT().Append(gomock.Any(), gomock.Len(4)).DoAndReturn(record),
		journal.EXPECT().Close().Return(nil),
	)
	n := newNode(t, cfg, WithDatabase(db), WithJournal(journal))

	db.failing.Store(true)
	err := n.Transfer(ctx, owner, alice, uint256.NewInt(100))
	require.ErrorIs(t, err, ErrPersist)
	// The transfer took effect in memory.
	assert.Equal(t, uint256.NewInt(100), n.Token().BalanceOf(alice))

	db.failing.Store(false)
	require.NoError(t, n.Transfer(ctx, owner, bob, uint256.NewInt(10)))

	assert.Equal(t, []string{"premint", "transfer", "transfer", "transfer", "transfer"}, ops)

	// Restore from the same database and compare.
	want := n.Token().Export()
	restored, err := New(ctx, cfg, WithDatabase(&flakyDB{DB: db.DB}), WithJournal(nil), WithLogger(logging.Discard()))
	require.NoError(t, err)
	assertSameState(t, want, restored.Token().Export())
	assert.Equal(t, uint256.NewInt(100), restored.Token().BalanceOf(alice))
	assert.Equal(t, uint256.NewInt(10), restored.Token().BalanceOf(bob))
}

func TestSQLiteJournal(t *testing.T) {
	cfg := testConfig(t)
	cfg.Journal.Driver = "sqlite"
	cfg.Journal.Path = filepath.Join(t.TempDir(), "journal", "events.db")
	n := newNode(t, cfg)

	ctx := context.Background()
	require.NoError(t, n.Transfer(ctx, owner, alice, uint256.NewInt(7)))
	require.NoError(t, n.Approve(ctx, alice, bob, uint256.NewInt(3)))

	records, err := n.journal.ByAccount(ctx, bob, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Approval", records[0].Kind)
	assert.Equal(t, alice, records[0].From)

	latest, err := n.journal.Latest(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, latest, 4)
}

func TestRunServesTransports(t *testing.T) {
	n := newNode(t, testConfig(t))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- n.Run(ctx) }()
	require.Eventually(t, func() bool { return n.RPCAddr() != "" && n.GRPCAddr() != "" }, 5*time.Second, 10*time.Millisecond)

	// WebSocket subscriber
	ws, _, err := websocket.DefaultDialer.Dial("ws://"+n.RPCAddr()+"/ws", nil)
	require.NoError(t, err)
	defer ws.Close()
	require.NoError(t, ws.WriteJSON(map[string]interface{}{"command": "subscribe", "streams": []string{"transfers"}}))
	var subResp map[string]interface{}
	require.NoError(t, ws.ReadJSON(&subResp))
	require.Equal(t, "success", subResp["status"])

	// JSON-RPC transfer
	body, err := json.Marshal(map[string]interface{}{
		"method": "transfer",
		"params": []interface{}{map[string]interface{}{
			"caller": owner.Hex(), "to": alice.Hex(), "amount": "250",
		}},
	})
	require.NoError(t, err)
	resp, err := http.Post("http://"+n.RPCAddr()+"/rpc", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	var rpcResp struct {
		Result map[string]interface{} `json:"result"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rpcResp))
	resp.Body.Close()
	require.Equal(t, "success", rpcResp.Result["status"])

	require.NoError(t, ws.SetReadDeadline(time.Now().Add(5*time.Second)))
	var event map[string]interface{}
	require.NoError(t, ws.ReadJSON(&event))
	assert.Equal(t, "transfer", event["type"])
	assert.Equal(t, "250", event["amount"])
	assert.True(t, strings.EqualFold(alice.Hex(), event["to"].(string)))

	// gRPC health
	conn, err := grpc.NewClient(n.GRPCAddr(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()
	health := healthpb.NewHealthClient(conn)
	require.Eventually(t, func() bool {
		hctx, hcancel := context.WithTimeout(context.Background(), time.Second)
		defer hcancel()
		resp, err := health.Check(hctx, &healthpb.HealthCheckRequest{Service: grpcserver.TokenService})
		return err == nil && resp.GetStatus() == healthpb.HealthCheckResponse_SERVING
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
